package tracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/account"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/validate"
)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	tr := New("alice", nil, nil)
	checking, err := account.NewChecking("ACC001", "Everyday", "alice", 500, 10)
	require.NoError(t, err)
	require.NoError(t, tr.AddAccount(checking))
	return tr
}

func TestAddAccountDuplicate(t *testing.T) {
	tr := newTestTracker(t)
	dup, err := account.NewChecking("ACC001", "Shadow", "alice", 0, 0)
	require.NoError(t, err)

	err = tr.AddAccount(dup)
	assert.ErrorIs(t, err, ErrDuplicateAccountID)
	assert.Len(t, tr.Accounts(), 1)
}

func TestAddTransactionAppliesBalance(t *testing.T) {
	tr := newTestTracker(t)

	err := tr.AddTransaction(domain.Transaction{
		ID: "t1", Date: "2024-12-01", Amount: 250, Direction: domain.DirectionCredit,
		Category: domain.CategoryIncome, AccountID: "ACC001",
	})
	require.NoError(t, err)

	acct, _ := tr.Account("ACC001")
	assert.Equal(t, 250.0, acct.Balance)
	assert.Len(t, tr.Transactions(), 1)

	err = tr.AddTransaction(domain.Transaction{
		ID: "t2", Date: "2024-12-02", Amount: 100, Direction: domain.DirectionDebit,
		Category: domain.CategoryFood, AccountID: "ACC001",
	})
	require.NoError(t, err)
	assert.Equal(t, 150.0, acct.Balance)
}

func TestAddTransactionNoPartialEffects(t *testing.T) {
	tr := newTestTracker(t)

	err := tr.AddTransaction(domain.Transaction{
		ID: "bad", Date: "not-a-date", Amount: 50, Direction: domain.DirectionDebit,
		Category: domain.CategoryFood, AccountID: "ACC001",
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, validate.KindInvalidDate, verr.Errors[0].Kind)

	acct, _ := tr.Account("ACC001")
	assert.Equal(t, 0.0, acct.Balance, "rejected transaction must not move the balance")
	assert.Empty(t, tr.Transactions())
}

func TestAddTransactionUnknownAccount(t *testing.T) {
	tr := newTestTracker(t)

	err := tr.AddTransaction(domain.Transaction{
		ID: "t1", Date: "2024-12-01", Amount: 50, Direction: domain.DirectionCredit,
		Category: domain.CategoryIncome, AccountID: "NOPE",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validate.KindUnknownAccount, verr.Errors[0].Kind)
}

func TestAddTransactionInsufficientFunds(t *testing.T) {
	tr := New("alice", nil, nil)
	checking, err := account.NewChecking("ACC001", "Everyday", "alice", 0, 0)
	require.NoError(t, err)
	require.NoError(t, tr.AddAccount(checking))

	err = tr.AddTransaction(domain.Transaction{
		ID: "t1", Date: "2024-12-01", Amount: 50, Direction: domain.DirectionDebit,
		Category: domain.CategoryFood, AccountID: "ACC001",
	})
	assert.ErrorIs(t, err, account.ErrInsufficientFunds)
	assert.Empty(t, tr.Transactions())
	assert.Equal(t, 0.0, checking.Balance)
}

func TestImportBatchDedup(t *testing.T) {
	tr := newTestTracker(t)
	require.NoError(t, tr.AddTransaction(domain.Transaction{
		ID: "seed", Date: "2024-11-01", Amount: 500, Direction: domain.DirectionCredit,
		Category: domain.CategoryIncome, AccountID: "ACC001",
	}))

	res := tr.ImportBatch([]domain.RawRecord{
		{ID: "a1", Amount: "50.00", Date: "2024-12-01", Category: "Groceries",
			AccountID: "ACC001", Type: "debit", Description: "Groceries"},
		{ID: "a2", Amount: "50.00", Date: "12/01/2024", Category: "Groceries",
			AccountID: "ACC001", Type: "debit", Description: "groceries"},
	})

	assert.Equal(t, 1, res.Accepted)
	assert.Equal(t, 0, res.Rejected)
	assert.Equal(t, 1, res.DuplicatesDropped)

	acct, _ := tr.Account("ACC001")
	assert.Equal(t, 450.0, acct.Balance, "the duplicate must be applied only once")
}

func TestImportBatchRejectionsReported(t *testing.T) {
	tr := newTestTracker(t)

	res := tr.ImportBatch([]domain.RawRecord{
		{ID: "ok", Amount: "100.00", Date: "2024-12-01", Category: "Income",
			AccountID: "ACC001", Type: "credit"},
		{ID: "bad-amount", Amount: "oops", Date: "2024-12-01", Category: "Food",
			AccountID: "ACC001", Type: "debit"},
		{ID: "missing-date", Amount: "10.00", Category: "Food",
			AccountID: "ACC001", Type: "debit"},
		{ID: "overdrawn", Amount: "9000.00", Date: "2024-12-02", Category: "Food",
			AccountID: "ACC001", Type: "debit"},
	})

	assert.Equal(t, 1, res.Accepted)
	assert.Equal(t, 3, res.Rejected)
	assert.Equal(t, 0, res.DuplicatesDropped)
	require.Len(t, res.Rejections, 3)

	assert.Equal(t, validate.KindInvalidAmount, res.Rejections[0].Errors[0].Kind)
	assert.Equal(t, validate.KindMalformedBatch, res.Rejections[1].Errors[0].Kind)
	assert.True(t, errors.Is(res.Rejections[2].Err, account.ErrInsufficientFunds))
	assert.NotEmpty(t, res.Rejections[2].Reason())

	acct, _ := tr.Account("ACC001")
	assert.Equal(t, 100.0, acct.Balance)
}

func TestImportBatchIdempotent(t *testing.T) {
	tr := newTestTracker(t)
	batch := []domain.RawRecord{
		{ID: "a1", Amount: "75.00", Date: "2024-12-01", Category: "Income",
			AccountID: "ACC001", Type: "credit", Description: "Paycheck"},
	}

	first := tr.ImportBatch(batch)
	second := tr.ImportBatch(batch)

	assert.Equal(t, 1, first.Accepted)
	assert.Equal(t, 0, second.Accepted)
	assert.Equal(t, 1, second.DuplicatesDropped)
	assert.Len(t, tr.Transactions(), 1)
}

func TestNetWorthSumsBalances(t *testing.T) {
	tr := newTestTracker(t)
	savings, err := account.NewSavings("SAV001", "Nest Egg", "alice", 0, 0.04, 6)
	require.NoError(t, err)
	require.NoError(t, tr.AddAccount(savings))

	require.NoError(t, tr.AddTransaction(domain.Transaction{
		ID: "t1", Date: "2024-12-01", Amount: 300, Direction: domain.DirectionCredit,
		Category: domain.CategoryIncome, AccountID: "ACC001",
	}))
	require.NoError(t, tr.AddTransaction(domain.Transaction{
		ID: "t2", Date: "2024-12-01", Amount: 200, Direction: domain.DirectionCredit,
		Category: domain.CategoryIncome, AccountID: "SAV001",
	}))

	assert.Equal(t, 500.0, tr.NetWorth())
}

func TestApplyMonthlyFees(t *testing.T) {
	tr := newTestTracker(t)
	require.NoError(t, tr.AddTransaction(domain.Transaction{
		ID: "t1", Date: "2024-12-01", Amount: 100, Direction: domain.DirectionCredit,
		Category: domain.CategoryIncome, AccountID: "ACC001",
	}))

	applied := tr.ApplyMonthlyFees()
	assert.Len(t, applied, 1)

	acct, _ := tr.Account("ACC001")
	assert.Equal(t, 90.0, acct.Balance, "checking charges its flat monthly fee")
}

func TestImportBatchPastDateWithFixedRules(t *testing.T) {
	// Dates far in the past but above the epoch floor are fine.
	tr := newTestTracker(t)
	res := tr.ImportBatch([]domain.RawRecord{
		{ID: "old", Amount: "20.00", Date: "1999-01-15", Category: "Other",
			AccountID: "ACC001", Type: "credit"},
	})
	assert.Equal(t, 1, res.Accepted)
}
