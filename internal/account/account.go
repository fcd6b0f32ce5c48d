// Package account implements the account variants (checking, savings,
// credit card) behind a single closed type. The three contract operations
// (AvailableFunds, ApplyMonthlyFees, CanWithdraw) dispatch on the variant
// kind, so every variant answers the same calls with its own formula.
package account

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
)

// Kind tags the account variant.
type Kind string

const (
	KindChecking   Kind = "checking"
	KindSavings    Kind = "savings"
	KindCreditCard Kind = "credit_card"
)

// ValidKind checks if the kind is one of the three variants.
func ValidKind(k Kind) bool {
	return k == KindChecking || k == KindSavings || k == KindCreditCard
}

var (
	// ErrInsufficientFunds is returned by CanWithdraw when a debit would
	// exceed the variant's spendable capacity.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrWithdrawalLimitExceeded is returned by savings accounts once the
	// per-month withdrawal cap has been reached.
	ErrWithdrawalLimitExceeded = errors.New("withdrawal limit exceeded")
)

// DefaultSavingsWithdrawalLimit mirrors the Regulation D style cap of six
// withdrawals per statement period.
const DefaultSavingsWithdrawalLimit = 6

// Account is the closed variant type. Fields past Kind apply only to the
// variant that owns them; constructors keep the irrelevant ones zeroed.
type Account struct {
	ID          string
	Name        string
	Owner       string
	Kind        Kind
	Balance     float64
	CreatedAt   time.Time
	Deactivated bool

	// Checking.
	OverdraftLimit float64
	MonthlyFee     float64

	// Savings. Withdrawals are counted per calendar month of the
	// transaction date (documented assumption; the billing-cycle boundary
	// upstream is unspecified).
	MinimumBalance  float64
	InterestRate    float64 // annual rate, e.g. 0.04
	WithdrawalLimit int
	withdrawals     map[string]int // YYYY-MM -> debits counted that month

	// Credit card.
	CreditLimit float64
	CurrentDebt float64
	APR         float64 // annual rate applied monthly to outstanding debt
}

func validateCommon(id, name, owner string) error {
	if id == "" {
		return fmt.Errorf("account ID cannot be empty")
	}
	if name == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if owner == "" {
		return fmt.Errorf("account owner cannot be empty")
	}
	return nil
}

// NewChecking creates a checking account with overdraft protection and a
// flat monthly fee.
func NewChecking(id, name, owner string, overdraftLimit, monthlyFee float64) (*Account, error) {
	if err := validateCommon(id, name, owner); err != nil {
		return nil, err
	}
	if overdraftLimit < 0 {
		return nil, fmt.Errorf("overdraft limit cannot be negative, got %.2f", overdraftLimit)
	}
	if monthlyFee < 0 {
		return nil, fmt.Errorf("monthly fee cannot be negative, got %.2f", monthlyFee)
	}
	return &Account{
		ID: id, Name: name, Owner: owner,
		Kind:           KindChecking,
		OverdraftLimit: overdraftLimit,
		MonthlyFee:     monthlyFee,
		CreatedAt:      time.Now(),
	}, nil
}

// NewSavings creates a savings account with an interest rate, a minimum
// balance and the per-month withdrawal cap.
func NewSavings(id, name, owner string, minimumBalance, interestRate float64, withdrawalLimit int) (*Account, error) {
	if err := validateCommon(id, name, owner); err != nil {
		return nil, err
	}
	if minimumBalance < 0 {
		return nil, fmt.Errorf("minimum balance cannot be negative, got %.2f", minimumBalance)
	}
	if interestRate < 0 {
		return nil, fmt.Errorf("interest rate cannot be negative, got %.4f", interestRate)
	}
	if withdrawalLimit <= 0 {
		withdrawalLimit = DefaultSavingsWithdrawalLimit
	}
	return &Account{
		ID: id, Name: name, Owner: owner,
		Kind:            KindSavings,
		MinimumBalance:  minimumBalance,
		InterestRate:    interestRate,
		WithdrawalLimit: withdrawalLimit,
		CreatedAt:       time.Now(),
	}, nil
}

// NewCreditCard creates a credit card account. The credit limit must be
// strictly positive.
func NewCreditCard(id, name, owner string, creditLimit, apr float64) (*Account, error) {
	if err := validateCommon(id, name, owner); err != nil {
		return nil, err
	}
	if creditLimit <= 0 {
		return nil, fmt.Errorf("credit limit must be positive, got %.2f", creditLimit)
	}
	if apr < 0 {
		return nil, fmt.Errorf("APR cannot be negative, got %.4f", apr)
	}
	return &Account{
		ID: id, Name: name, Owner: owner,
		Kind:        KindCreditCard,
		CreditLimit: creditLimit,
		APR:         apr,
		CreatedAt:   time.Now(),
	}, nil
}

// AvailableFunds returns the variant-specific spendable capacity, which is
// distinct from the raw balance.
func (a *Account) AvailableFunds() float64 {
	switch a.Kind {
	case KindChecking:
		return domain.Round2(a.Balance + a.OverdraftLimit)
	case KindSavings:
		return domain.Round2(a.Balance - a.MinimumBalance)
	case KindCreditCard:
		return domain.Round2(a.CreditLimit - a.CurrentDebt)
	}
	return 0
}

// ApplyMonthlyFees runs the once-per-period step for the variant and
// returns the signed balance delta (negative for charges, positive for
// credited interest). The caller must guarantee at most one invocation per
// billing period; a second call in the same period double-charges.
func (a *Account) ApplyMonthlyFees() float64 {
	switch a.Kind {
	case KindChecking:
		a.Balance = domain.Round2(a.Balance - a.MonthlyFee)
		return -a.MonthlyFee
	case KindSavings:
		interest := domain.Round2(a.Balance * a.InterestRate / 12)
		if interest < 0 {
			interest = 0
		}
		a.Balance = domain.Round2(a.Balance + interest)
		return interest
	case KindCreditCard:
		if a.CurrentDebt <= 0 {
			return 0
		}
		charge := domain.Round2(a.CurrentDebt * a.APR / 12)
		a.CurrentDebt = domain.Round2(a.CurrentDebt + charge)
		a.Balance = domain.Round2(a.Balance - charge)
		return -charge
	}
	return 0
}

// CanWithdraw checks whether a debit of the given amount dated on the given
// calendar date would violate the variant's constraint. It never mutates
// state; Apply performs the actual movement.
func (a *Account) CanWithdraw(amount float64, date string) error {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("withdrawal amount must be a positive finite number, got %v", amount)
	}
	switch a.Kind {
	case KindChecking:
		if amount > a.AvailableFunds() {
			return fmt.Errorf("%w: requested %.2f, available %.2f", ErrInsufficientFunds, amount, a.AvailableFunds())
		}
	case KindSavings:
		if count := a.withdrawalsInMonth(monthOf(date)); count >= a.WithdrawalLimit {
			return fmt.Errorf("%w: %d withdrawals already this month (limit %d)",
				ErrWithdrawalLimitExceeded, count, a.WithdrawalLimit)
		}
		if amount > a.AvailableFunds() {
			return fmt.Errorf("%w: requested %.2f, available %.2f above minimum balance", ErrInsufficientFunds, amount, a.AvailableFunds())
		}
	case KindCreditCard:
		if amount > a.AvailableFunds() {
			return fmt.Errorf("%w: charge %.2f exceeds available credit %.2f", ErrInsufficientFunds, amount, a.AvailableFunds())
		}
	}
	return nil
}

// Apply moves the transaction amount through the account: credits add to
// the balance, debits subtract. Credit card debt mirrors the movement.
// Callers are expected to have passed CanWithdraw for debits first.
func (a *Account) Apply(t domain.Transaction) error {
	if t.AccountID != a.ID {
		return fmt.Errorf("transaction %s belongs to account %s, not %s", t.ID, t.AccountID, a.ID)
	}
	switch t.Direction {
	case domain.DirectionCredit:
		a.Balance = domain.Round2(a.Balance + t.Amount)
		if a.Kind == KindCreditCard {
			a.CurrentDebt = domain.Round2(math.Max(0, a.CurrentDebt-t.Amount))
		}
	case domain.DirectionDebit:
		a.Balance = domain.Round2(a.Balance - t.Amount)
		if a.Kind == KindCreditCard {
			a.CurrentDebt = domain.Round2(a.CurrentDebt + t.Amount)
		}
		if a.Kind == KindSavings {
			a.recordWithdrawal(monthOf(t.Date))
		}
	default:
		return fmt.Errorf("invalid direction: %s", t.Direction)
	}
	return nil
}

// RecordWithdrawals seeds the savings withdrawal counter for a month.
// Used when reconstructing accounts from persisted state.
func (a *Account) RecordWithdrawals(month string, count int) {
	if a.withdrawals == nil {
		a.withdrawals = make(map[string]int)
	}
	a.withdrawals[month] = count
}

// WithdrawalCounts exposes a copy of the per-month savings withdrawal
// counters for persistence, keyed by YYYY-MM.
func (a *Account) WithdrawalCounts() map[string]int {
	out := make(map[string]int, len(a.withdrawals))
	for month, count := range a.withdrawals {
		out[month] = count
	}
	return out
}

// WithdrawalsThisMonth reports the savings withdrawal count for the month
// of the given date.
func (a *Account) WithdrawalsThisMonth(date string) int {
	return a.withdrawalsInMonth(monthOf(date))
}

func (a *Account) withdrawalsInMonth(month string) int {
	return a.withdrawals[month]
}

func (a *Account) recordWithdrawal(month string) {
	if a.withdrawals == nil {
		a.withdrawals = make(map[string]int)
	}
	a.withdrawals[month]++
}

// monthOf extracts the YYYY-MM prefix of a canonical date string.
func monthOf(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}
