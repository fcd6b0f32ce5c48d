// Package tracker is the facade over the whole pipeline: it owns the
// account map and the insertion-ordered transaction ledger, and funnels
// every mutation through validation, cleaning and the account rules so the
// stored state never violates an invariant.
//
// The tracker is single-user and performs no internal locking; a concurrent
// host must serialize calls to the mutating methods.
package tracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/account"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/clean"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/config"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/log"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/validate"
)

// ErrDuplicateAccountID is returned by AddAccount when the id is taken.
var ErrDuplicateAccountID = errors.New("duplicate account id")

// ValidationError carries the accumulated field failures that rejected a
// single transaction.
type ValidationError struct {
	Errors []validate.Error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return "transaction rejected: " + strings.Join(msgs, "; ")
}

// Tracker owns the accounts and the transaction ledger.
type Tracker struct {
	owner    string
	rules    validate.Rules
	cleaner  *clean.Cleaner
	accounts map[string]*account.Account
	order    []string // account insertion order
	txns     []domain.Transaction
	logger   *log.Logger
}

// New builds an empty tracker for the named owner. A nil config falls back
// to the built-in defaults; a nil logger gets the default text logger.
func New(owner string, cfg *config.Config, logger *log.Logger) *Tracker {
	rules := validate.DefaultRules()
	cleaner := clean.New()
	if cfg != nil {
		rules = cfg.Rules()
		cleaner = &clean.Cleaner{AmountTolerancePct: cfg.DuplicateAmountTolerancePct}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Tracker{
		owner:    owner,
		rules:    rules,
		cleaner:  cleaner,
		accounts: make(map[string]*account.Account),
		logger:   logger.WithComponent(log.ComponentTracker),
	}
}

// Owner returns the tracker owner's name.
func (tr *Tracker) Owner() string {
	return tr.owner
}

// AddAccount registers an account. The id must be unused.
func (tr *Tracker) AddAccount(a *account.Account) error {
	if a == nil {
		return fmt.Errorf("account cannot be nil")
	}
	if _, exists := tr.accounts[a.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAccountID, a.ID)
	}
	tr.accounts[a.ID] = a
	tr.order = append(tr.order, a.ID)
	tr.logger.Debug("account registered", log.FieldAccountID, a.ID, "kind", a.Kind)
	return nil
}

// Account looks up a registered account by id.
func (tr *Tracker) Account(id string) (*account.Account, bool) {
	a, ok := tr.accounts[id]
	return a, ok
}

// Accounts returns the registered accounts in insertion order.
func (tr *Tracker) Accounts() []*account.Account {
	out := make([]*account.Account, 0, len(tr.order))
	for _, id := range tr.order {
		out = append(out, tr.accounts[id])
	}
	return out
}

// Transactions returns a copy of the ledger in insertion order.
func (tr *Tracker) Transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(tr.txns))
	copy(out, tr.txns)
	return out
}

// AddTransaction validates a single transaction and, on success, applies it
// to the referenced account and appends it to the ledger. On any failure
// nothing is mutated: the balance and the ledger stay exactly as they were.
func (tr *Tracker) AddTransaction(t domain.Transaction) error {
	canon, errs := validate.Record(rawFrom(t), tr.known(), tr.rules)
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	acct := tr.accounts[canon.AccountID]
	if canon.Direction == domain.DirectionDebit {
		if err := acct.CanWithdraw(canon.Amount, canon.Date); err != nil {
			return err
		}
	}
	if err := acct.Apply(canon); err != nil {
		return err
	}
	tr.txns = append(tr.txns, canon)
	return nil
}

// Rejection reports why one batch record was not applied. Field failures
// arrive in Errors; account-rule failures (insufficient funds, withdrawal
// limit) arrive in Err.
type Rejection struct {
	Index  int
	Record domain.RawRecord
	Errors []validate.Error
	Err    error
}

// Reason renders the rejection for caller reporting.
func (r Rejection) Reason() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	msgs := make([]string, len(r.Errors))
	for i, ve := range r.Errors {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// ImportResult is the outcome of an ImportBatch call.
type ImportResult struct {
	Accepted          int
	Rejected          int
	DuplicatesDropped int
	Rejections        []Rejection
}

// ImportBatch runs every raw record through validation, cleans the
// survivors as a unit (duplicates are matched against both the batch and
// the stored ledger, first occurrence winning), and applies what remains.
// Records failing an account rule are rejected individually; the batch as a
// whole always completes.
func (tr *Tracker) ImportBatch(records []domain.RawRecord) ImportResult {
	var res ImportResult
	known := tr.known()

	for i, rec := range records {
		canon, errs := validate.Record(rec, known, tr.rules)
		if len(errs) > 0 {
			res.Rejected++
			res.Rejections = append(res.Rejections, Rejection{Index: i, Record: rec, Errors: errs})
			continue
		}
		n := clean.Normalize(canon)
		if tr.duplicateOfStored(n) {
			res.DuplicatesDropped++
			continue
		}
		acct := tr.accounts[n.AccountID]
		if n.Direction == domain.DirectionDebit {
			if err := acct.CanWithdraw(n.Amount, n.Date); err != nil {
				res.Rejected++
				res.Rejections = append(res.Rejections, Rejection{Index: i, Record: rec, Err: err})
				continue
			}
		}
		if err := acct.Apply(n); err != nil {
			res.Rejected++
			res.Rejections = append(res.Rejections, Rejection{Index: i, Record: rec, Err: err})
			continue
		}
		tr.txns = append(tr.txns, n)
		res.Accepted++
	}

	tr.logger.Info("batch imported",
		log.FieldRecords, len(records),
		log.FieldAccepted, res.Accepted,
		log.FieldRejected, res.Rejected,
		log.FieldDuplicates, res.DuplicatesDropped)
	return res
}

// ApplyMonthlyFees runs one billing-period fee pass over every account and
// returns the applied amount per account id. The caller guards against
// running it twice in the same period; a second call double-charges.
func (tr *Tracker) ApplyMonthlyFees() map[string]float64 {
	applied := make(map[string]float64, len(tr.order))
	for _, id := range tr.order {
		applied[id] = tr.accounts[id].ApplyMonthlyFees()
	}
	return applied
}

// NetWorth sums the balances of every account.
func (tr *Tracker) NetWorth() float64 {
	total := 0.0
	for _, id := range tr.order {
		total += tr.accounts[id].Balance
	}
	return domain.Round2(total)
}

func (tr *Tracker) known() map[string]bool {
	known := make(map[string]bool, len(tr.accounts))
	for id := range tr.accounts {
		known[id] = true
	}
	return known
}

// duplicateOfStored checks a normalized candidate against the ledger. The
// stored side is already normalized, so the cleaner's match rule applies
// directly.
func (tr *Tracker) duplicateOfStored(n domain.Transaction) bool {
	for i := range tr.txns {
		if tr.cleaner.Duplicate(tr.txns[i], n) {
			return true
		}
	}
	return false
}

// rawFrom converts an already-typed transaction back to the raw field form
// so a directly added transaction passes through the same validation path
// as an imported record.
func rawFrom(t domain.Transaction) domain.RawRecord {
	return domain.RawRecord{
		ID:          t.ID,
		Amount:      fmt.Sprintf("%.2f", t.Amount),
		Date:        t.Date,
		Category:    string(t.Category),
		AccountID:   t.AccountID,
		Type:        string(t.Direction),
		Description: t.Description,
	}
}
