// Package store persists the full tracker state to a local SQLite file.
// Loading does not restore balances directly: every transaction is replayed
// through the tracker's own acceptance path in insertion order, so the
// account invariants are re-verified on the way back in. Out-of-band
// balance movements (monthly fee passes) are reconciled afterwards from the
// saved balances.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/account"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/config"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/log"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/tracker"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS accounts (
	position         INTEGER NOT NULL,
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	owner            TEXT NOT NULL,
	kind             TEXT NOT NULL,
	balance          REAL NOT NULL,
	overdraft_limit  REAL NOT NULL DEFAULT 0,
	monthly_fee      REAL NOT NULL DEFAULT 0,
	minimum_balance  REAL NOT NULL DEFAULT 0,
	interest_rate    REAL NOT NULL DEFAULT 0,
	withdrawal_limit INTEGER NOT NULL DEFAULT 0,
	credit_limit     REAL NOT NULL DEFAULT 0,
	current_debt     REAL NOT NULL DEFAULT 0,
	apr              REAL NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS savings_withdrawals (
	account_id TEXT NOT NULL,
	month      TEXT NOT NULL,
	count      INTEGER NOT NULL,
	PRIMARY KEY (account_id, month)
);
CREATE TABLE IF NOT EXISTS transactions (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL,
	date        TEXT NOT NULL,
	amount      REAL NOT NULL,
	direction   TEXT NOT NULL,
	category    TEXT NOT NULL,
	account_id  TEXT NOT NULL,
	description TEXT NOT NULL
);
`

// Store wraps the SQLite handle.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Open creates or opens the state file and applies the schema.
func Open(path string, logger *log.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{db: db, logger: logger.WithComponent(log.ComponentStore)}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the persisted state with the tracker's current state.
func (s *Store) Save(ctx context.Context, tr *tracker.Tracker) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"meta", "accounts", "savings_withdrawals", "transactions"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO meta (key, value) VALUES ('owner', ?)", tr.Owner()); err != nil {
		return fmt.Errorf("save owner: %w", err)
	}

	for i, a := range tr.Accounts() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO accounts (position, id, name, owner, kind, balance,
				overdraft_limit, monthly_fee, minimum_balance, interest_rate,
				withdrawal_limit, credit_limit, current_debt, apr)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i, a.ID, a.Name, a.Owner, string(a.Kind), a.Balance,
			a.OverdraftLimit, a.MonthlyFee, a.MinimumBalance, a.InterestRate,
			a.WithdrawalLimit, a.CreditLimit, a.CurrentDebt, a.APR)
		if err != nil {
			return fmt.Errorf("save account %s: %w", a.ID, err)
		}
		for month, count := range a.WithdrawalCounts() {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO savings_withdrawals (account_id, month, count)
				VALUES (?, ?, ?)`, a.ID, month, count)
			if err != nil {
				return fmt.Errorf("save withdrawal count for %s: %w", a.ID, err)
			}
		}
	}

	for _, t := range tr.Transactions() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, date, amount, direction, category, account_id, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Date, t.Amount, string(t.Direction), string(t.Category),
			t.AccountID, t.Description)
		if err != nil {
			return fmt.Errorf("save transaction %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	s.logger.Info("state saved",
		"accounts", len(tr.Accounts()), log.FieldRecords, len(tr.Transactions()))
	return nil
}

// Load rebuilds a tracker from the persisted state, replaying every
// transaction through the acceptance path.
func (s *Store) Load(ctx context.Context, cfg *config.Config) (*tracker.Tracker, error) {
	var owner string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM meta WHERE key = 'owner'").Scan(&owner)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	tr := tracker.New(owner, cfg, s.logger)

	saved, err := s.loadAccounts(ctx, tr)
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.loadWithdrawalCounts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.replayTransactions(ctx, tr); err != nil {
		return nil, err
	}

	// Fee passes move balances and card debt without a ledger entry, so
	// the replayed figures can legitimately trail the saved ones. The
	// saved values are the truth at save time.
	for _, a := range tr.Accounts() {
		st := saved[a.ID]
		if math.Abs(a.Balance-st.balance) > 0.005 {
			s.logger.Warn("replayed balance reconciled to saved state",
				log.FieldAccountID, a.ID, "replayed", a.Balance, "saved", st.balance)
			a.Balance = st.balance
		}
		if math.Abs(a.CurrentDebt-st.debt) > 0.005 {
			a.CurrentDebt = st.debt
		}
		for month, count := range withdrawals[a.ID] {
			a.RecordWithdrawals(month, count)
		}
	}
	return tr, nil
}

type savedState struct {
	balance float64
	debt    float64
}

func (s *Store) loadAccounts(ctx context.Context, tr *tracker.Tracker) (map[string]savedState, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, owner, kind, balance,
			overdraft_limit, monthly_fee, minimum_balance, interest_rate,
			withdrawal_limit, credit_limit, current_debt, apr
		FROM accounts ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	defer rows.Close()

	saved := make(map[string]savedState)
	for rows.Next() {
		var (
			id, name, owner, kind                              string
			balance, overdraft, fee, minBal, rate, limit, debt float64
			apr                                                float64
			wLimit                                             int
		)
		if err := rows.Scan(&id, &name, &owner, &kind, &balance,
			&overdraft, &fee, &minBal, &rate,
			&wLimit, &limit, &debt, &apr); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}

		var a *account.Account
		switch account.Kind(kind) {
		case account.KindChecking:
			a, err = account.NewChecking(id, name, owner, overdraft, fee)
		case account.KindSavings:
			a, err = account.NewSavings(id, name, owner, minBal, rate, wLimit)
		case account.KindCreditCard:
			a, err = account.NewCreditCard(id, name, owner, limit, apr)
		default:
			return nil, fmt.Errorf("unknown account kind %q for %s", kind, id)
		}
		if err != nil {
			return nil, fmt.Errorf("rebuild account %s: %w", id, err)
		}
		if err := tr.AddAccount(a); err != nil {
			return nil, fmt.Errorf("register account %s: %w", id, err)
		}
		saved[id] = savedState{balance: balance, debt: debt}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account rows: %w", err)
	}
	return saved, nil
}

func (s *Store) loadWithdrawalCounts(ctx context.Context) (map[string]map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT account_id, month, count FROM savings_withdrawals")
	if err != nil {
		return nil, fmt.Errorf("load withdrawal counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]map[string]int)
	for rows.Next() {
		var accountID, month string
		var count int
		if err := rows.Scan(&accountID, &month, &count); err != nil {
			return nil, fmt.Errorf("scan withdrawal count row: %w", err)
		}
		if counts[accountID] == nil {
			counts[accountID] = make(map[string]int)
		}
		counts[accountID][month] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate withdrawal count rows: %w", err)
	}
	return counts, nil
}

func (s *Store) replayTransactions(ctx context.Context, tr *tracker.Tracker) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, amount, direction, category, account_id, description
		FROM transactions ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.Transaction
		var direction, category string
		if err := rows.Scan(&t.ID, &t.Date, &t.Amount, &direction, &category,
			&t.AccountID, &t.Description); err != nil {
			return fmt.Errorf("scan transaction row: %w", err)
		}
		t.Direction = domain.Direction(direction)
		t.Category = domain.Category(category)
		if err := tr.AddTransaction(t); err != nil {
			return fmt.Errorf("replay transaction %s: %w", t.ID, err)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate transaction rows: %w", err)
	}
	return nil
}
