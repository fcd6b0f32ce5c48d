package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/account"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/alerts"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/analytics"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/config"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/importer"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/log"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/report"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/store"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/tracker"
)

const version = "0.1.0"

var (
	versionFlag = flag.Bool("version", false, "Show version")

	inputPath = flag.String("input", "", "Statement file or directory to import")
	owner     = flag.String("owner", "me", "Tracker owner name (used when creating fresh state)")
	dryRun    = flag.Bool("dry-run", false, "Import and report without saving state")
	verbose   = flag.Bool("verbose", false, "Show debug logs")

	configFile = flag.String("config", "", "Configuration YAML file (default: built-in)")
	alertsFile = flag.String("alerts", "", "Alert rules YAML file (default: built-in)")
	stateFile  = flag.String("state", "", "SQLite state file (default: in-memory only)")

	recentN    = flag.Int("recent", 10, "Number of recent transactions to show")
	exportCSV  = flag.String("export-csv", "", "Write transactions as CSV to this file")
	exportJSON = flag.String("export-json", "", "Write full state as JSON to this file")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `fintrack - Personal finance tracking and analytics

Usage:
  fintrack [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Import statements and print the report
  fintrack -input ~/statements

  # Import with persistent state and custom rules
  fintrack -input ~/statements -state finances.db -config config.yaml

  # Report over saved state only
  fintrack -state finances.db

  # Dry run a new statement file
  fintrack -input december.csv -state finances.db -dry-run

`)
	}
	flag.Parse()

	if *versionFlag {
		fmt.Printf("fintrack version %s\n", version)
		os.Exit(0)
	}
	if *inputPath == "" && *stateFile == "" {
		fmt.Fprintf(os.Stderr, "Error: at least one of -input or -state is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, Component: log.ComponentApp})

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	alertEngine, err := loadAlerts()
	if err != nil {
		return err
	}

	tr, st, err := openTracker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	var importRes *tracker.ImportResult
	if *inputPath != "" {
		res, err := importStatements(ctx, tr, cfg, logger)
		if err != nil {
			return err
		}
		importRes = res
	}

	renderReport(tr, cfg, alertEngine, importRes)

	if err := writeExports(tr); err != nil {
		return err
	}

	if st != nil && !*dryRun {
		if err := st.Save(ctx, tr); err != nil {
			return fmt.Errorf("failed to save state: %w", err)
		}
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if *configFile != "" {
		return config.LoadFromFile(*configFile)
	}
	return config.Default()
}

func loadAlerts() (*alerts.Engine, error) {
	if *alertsFile != "" {
		return alerts.LoadFromFile(*alertsFile)
	}
	return alerts.LoadEmbedded()
}

// openTracker loads persisted state when a state file exists, otherwise
// starts fresh for the named owner.
func openTracker(ctx context.Context, cfg *config.Config, logger *log.Logger) (*tracker.Tracker, *store.Store, error) {
	if *stateFile == "" {
		return tracker.New(*owner, cfg, logger), nil, nil
	}

	_, statErr := os.Stat(*stateFile)
	existing := statErr == nil

	st, err := store.Open(*stateFile, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open state file: %w", err)
	}
	if !existing {
		return tracker.New(*owner, cfg, logger), st, nil
	}

	tr, err := st.Load(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to load state: %w", err)
	}
	return tr, st, nil
}

// importStatements scans the input, imports every detected statement file,
// and registers a checking account with the configured defaults for any
// account id the files mention that the tracker does not know yet.
func importStatements(ctx context.Context, tr *tracker.Tracker, cfg *config.Config, logger *log.Logger) (*tracker.ImportResult, error) {
	files, err := importer.Scan(*inputPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no statement files found under %s", *inputPath)
	}

	reg := importer.New()
	var batch []domain.RawRecord
	for _, path := range files {
		records, err := reg.ImportFile(ctx, path)
		if err != nil {
			return nil, err
		}
		logger.Debug("statement imported", log.FieldInput, path, log.FieldRecords, len(records))
		batch = append(batch, records...)
	}

	for _, rec := range batch {
		if rec.AccountID == "" {
			continue
		}
		if _, ok := tr.Account(rec.AccountID); ok {
			continue
		}
		a, err := account.NewChecking(rec.AccountID, rec.AccountID, tr.Owner(),
			cfg.Checking.OverdraftLimit, cfg.Checking.MonthlyFee)
		if err != nil {
			return nil, fmt.Errorf("failed to create account %s: %w", rec.AccountID, err)
		}
		if err := tr.AddAccount(a); err != nil {
			return nil, err
		}
		logger.Debug("account auto-registered", log.FieldAccountID, rec.AccountID)
	}

	res := tr.ImportBatch(batch)
	return &res, nil
}

func renderReport(tr *tracker.Tracker, cfg *config.Config, alertEngine *alerts.Engine, importRes *tracker.ImportResult) {
	engine := analytics.New(analytics.Config{
		AmountTolerancePct:    cfg.RecurrenceAmountTolerancePct,
		IntervalToleranceDays: cfg.RecurrenceToleranceDays,
		SpikeThreshold:        cfg.SpikeThreshold,
	})
	txns := tr.Transactions()

	r := report.NewRenderer(os.Stdout)
	r.Header(tr.Owner())
	r.Accounts(tr.Accounts())
	r.Flows("Outflow by category", engine.OutflowByCategory(txns, nil))
	if buckets, err := engine.PeriodSummary(txns, analytics.GranularityMonthly); err == nil {
		r.MonthlySummary(buckets)
	}
	r.Recent(analytics.RecentTransactions(txns, *recentN))
	r.Recurring(engine.DetectRecurringPayments(txns))
	r.Alerts(alertEngine.Evaluate(txns))
	if importRes != nil {
		r.ImportSummary(*importRes)
	}
}

func writeExports(tr *tracker.Tracker) error {
	if *exportCSV != "" {
		f, err := os.Create(*exportCSV)
		if err != nil {
			return fmt.Errorf("failed to create CSV export: %w", err)
		}
		defer f.Close()
		if err := report.ExportCSV(f, tr.Transactions()); err != nil {
			return err
		}
	}
	if *exportJSON != "" {
		f, err := os.Create(*exportJSON)
		if err != nil {
			return fmt.Errorf("failed to create JSON export: %w", err)
		}
		defer f.Close()
		if err := report.ExportJSON(f, tr); err != nil {
			return err
		}
	}
	return nil
}
