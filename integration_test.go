package fintrack_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/account"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/alerts"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/analytics"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/config"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/importer"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/report"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/store"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/tracker"
)

func init() {
	color.NoColor = true
}

const statementCSV = `id,date,amount,category,account_id,type,description
s1,2024-10-01,9.99,Subscription,ACC001,debit,Streaming TRN0001
s2,2024-11-01,9.99,Subscription,ACC001,debit,Streaming TRN0002
s3,2024-12-01,9.99,Subscription,ACC001,debit,Streaming TRN0003
g1,2024-12-01,50.00,Groceries,ACC001,debit,Corner Market
g2,12/01/2024,50.00,Groceries,ACC001,debit,corner market
p1,2024-12-05,750.00,Income,ACC001,credit,Paycheck
bad1,2024-12-06,not-a-number,Food,ACC001,debit,Broken row
`

func setupTracker(t *testing.T, cfg *config.Config) *tracker.Tracker {
	t.Helper()
	tr := tracker.New("alice", cfg, nil)
	checking, err := account.NewChecking("ACC001", "Everyday", "alice",
		cfg.Checking.OverdraftLimit, cfg.Checking.MonthlyFee)
	require.NoError(t, err)
	require.NoError(t, tr.AddAccount(checking))
	return tr
}

func importRecords(t *testing.T, csvContent string) []domain.RawRecord {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvContent), 0644))
	records, err := importer.New().ImportFile(context.Background(), path)
	require.NoError(t, err)
	return records
}

func TestEndToEndImportAnalyzeReport(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.Default()
	require.NoError(t, err)
	tr := setupTracker(t, cfg)

	dir := t.TempDir()
	path := filepath.Join(dir, "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(statementCSV), 0644))

	files, err := importer.Scan(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	records, err := importer.New().ImportFile(ctx, files[0])
	require.NoError(t, err)
	require.Len(t, records, 7)

	res := tr.ImportBatch(records)
	assert.Equal(t, 5, res.Accepted)
	assert.Equal(t, 1, res.Rejected, "the malformed amount row is rejected alone")
	assert.Equal(t, 1, res.DuplicatesDropped, "date-variant groceries row is a duplicate")

	checking, _ := tr.Account("ACC001")
	// 750 in, 3 x 9.99 + 50 out
	assert.InDelta(t, 670.03, checking.Balance, 0.001)

	engine := analytics.New(analytics.Config{})
	txns := tr.Transactions()

	groups := engine.DetectRecurringPayments(txns)
	require.Len(t, groups, 1)
	assert.Equal(t, analytics.CadenceMonthly, groups[0].Cadence)
	assert.InDelta(t, 9.99, groups[0].AverageAmount, 0.001)

	outflow := engine.OutflowByCategory(txns, nil)
	assert.InDelta(t, 50.0, outflow[domain.CategoryGroceries], 0.001)
	assert.InDelta(t, 29.97, outflow[domain.CategorySubscription], 0.001)

	alertEngine, err := alerts.LoadEmbedded()
	require.NoError(t, err)
	found := alertEngine.Evaluate(txns)
	require.NotEmpty(t, found, "the 750.00 paycheck trips the large transaction rule")

	var buf bytes.Buffer
	r := report.NewRenderer(&buf)
	r.Header(tr.Owner())
	r.Accounts(tr.Accounts())
	r.Flows("Outflow by category", outflow)
	r.Recurring(groups)
	r.Alerts(found)
	r.ImportSummary(res)

	out := buf.String()
	assert.Contains(t, out, "Financial report for alice")
	assert.Contains(t, out, "monthly")
	assert.Contains(t, out, "accepted 5, rejected 1, duplicates dropped 1")
}

func TestEndToEndPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.Default()
	require.NoError(t, err)
	tr := setupTracker(t, cfg)

	res := tr.ImportBatch(importRecords(t, statementCSV))
	require.Equal(t, 5, res.Accepted)

	statePath := filepath.Join(t.TempDir(), "state.db")
	st, err := store.Open(statePath, nil)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Save(ctx, tr))
	loaded, err := st.Load(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, tr.NetWorth(), loaded.NetWorth())
	assert.Len(t, loaded.Transactions(), 5)

	// Re-importing the same statement into the loaded state drops every
	// valid row as a duplicate, including the date-variant groceries row.
	again := loaded.ImportBatch(importRecords(t, statementCSV))
	assert.Equal(t, 0, again.Accepted)
	assert.Equal(t, 6, again.DuplicatesDropped)
	assert.Equal(t, 1, again.Rejected)
	assert.Equal(t, tr.NetWorth(), loaded.NetWorth())
}

func TestEndToEndExportReimport(t *testing.T) {
	cfg, err := config.Default()
	require.NoError(t, err)
	tr := setupTracker(t, cfg)
	require.Equal(t, 5, tr.ImportBatch(importRecords(t, statementCSV)).Accepted)

	var buf bytes.Buffer
	require.NoError(t, report.ExportCSV(&buf, tr.Transactions()))

	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	records, err := importer.New().ImportFile(context.Background(), path)
	require.NoError(t, err)

	res := tr.ImportBatch(records)
	assert.Equal(t, 0, res.Accepted, "an exported file re-imports as pure duplicates")
	assert.Equal(t, 5, res.DuplicatesDropped)
}
