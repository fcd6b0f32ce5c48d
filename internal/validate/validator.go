// Package validate checks raw imported records field by field. All checks
// are pure: expected bad input is reported as a typed Error value, never a
// panic, and callers accumulate failures per record instead of aborting a
// batch.
package validate

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
)

// Kind identifies which rule a record failed.
type Kind string

const (
	KindInvalidAmount   Kind = "InvalidAmount"
	KindInvalidDate     Kind = "InvalidDate"
	KindInvalidCategory Kind = "InvalidCategory"
	KindUnknownAccount  Kind = "UnknownAccount"
	// KindMalformedBatch marks a record that is structurally unusable
	// (a required field is absent). Only the record is rejected, never
	// the batch it arrived in.
	KindMalformedBatch Kind = "MalformedBatch"
)

// Error describes a single failed check on a single field.
type Error struct {
	Kind    Kind
	Field   string
	Value   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s %q: %s", e.Kind, e.Field, e.Value, e.Message)
}

// DateLayouts are the textual date forms accepted on input, tried in order.
var DateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"01-02-2006",
}

// Rules is the immutable validation configuration threaded into every
// check. Construct via DefaultRules and adjust, or build one from the
// config package.
type Rules struct {
	// MaxAmount is the sanity ceiling used to catch data-entry typos.
	MaxAmount float64
	// EpochFloor is the earliest acceptable transaction date.
	EpochFloor time.Time
	// FutureTolerance is how far past "now" a date may still be accepted.
	FutureTolerance time.Duration
	// Now returns the reference time for the future check; zero means
	// time.Now. Tests pin it.
	Now func() time.Time
	// Allowed is the canonical category set. Empty means the full
	// domain set.
	Allowed []domain.Category
}

// DefaultRules returns the standard configuration: a one million ceiling,
// a 1900 epoch floor and one day of future tolerance.
func DefaultRules() Rules {
	return Rules{
		MaxAmount:       1_000_000,
		EpochFloor:      time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC),
		FutureTolerance: 24 * time.Hour,
		Allowed:         domain.Categories(),
	}
}

func (r Rules) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Rules) allowed() []domain.Category {
	if len(r.Allowed) == 0 {
		return domain.Categories()
	}
	return r.Allowed
}

// Amount parses and checks a textual amount. Currency symbols and thousands
// separators are tolerated. The returned value is the positive magnitude;
// a leading minus sign is preserved in the sign return so the caller can
// derive the direction.
func Amount(raw string, rules Rules) (value float64, negative bool, verr *Error) {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false, &Error{Kind: KindInvalidAmount, Field: "amount", Value: raw, Message: "amount cannot be empty"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, &Error{Kind: KindInvalidAmount, Field: "amount", Value: raw, Message: "amount is not numeric"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, &Error{Kind: KindInvalidAmount, Field: "amount", Value: raw, Message: "amount must be finite"}
	}
	negative = v < 0
	v = math.Abs(v)
	if v == 0 {
		return 0, false, &Error{Kind: KindInvalidAmount, Field: "amount", Value: raw, Message: "amount must be positive"}
	}
	if v > rules.MaxAmount {
		return 0, false, &Error{Kind: KindInvalidAmount, Field: "amount", Value: raw,
			Message: fmt.Sprintf("amount exceeds ceiling of %.2f", rules.MaxAmount)}
	}
	return v, negative, nil
}

// Date parses a textual date against the accepted layouts and checks the
// [epoch floor, now+tolerance] range. Returns the parsed calendar date.
func Date(raw string, rules Rules) (time.Time, *Error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &Error{Kind: KindInvalidDate, Field: "date", Value: raw, Message: "date cannot be empty"}
	}
	var parsed time.Time
	var ok bool
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			parsed, ok = t, true
			break
		}
	}
	if !ok {
		return time.Time{}, &Error{Kind: KindInvalidDate, Field: "date", Value: raw,
			Message: "unsupported date format (expected YYYY-MM-DD or MM/DD/YYYY)"}
	}
	if parsed.Before(rules.EpochFloor) {
		return time.Time{}, &Error{Kind: KindInvalidDate, Field: "date", Value: raw,
			Message: fmt.Sprintf("date before epoch floor %s", rules.EpochFloor.Format(domain.DateLayout))}
	}
	if parsed.After(rules.now().Add(rules.FutureTolerance)) {
		return time.Time{}, &Error{Kind: KindInvalidDate, Field: "date", Value: raw, Message: "date is in the future"}
	}
	return parsed, nil
}

// Category checks a textual category against the allowed set with
// case-insensitive matching; the literal fallback "Uncategorized" always
// passes. Returns the canonical spelling.
func Category(raw string, rules Rules) (domain.Category, *Error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", &Error{Kind: KindInvalidCategory, Field: "category", Value: raw, Message: "category cannot be empty"}
	}
	if strings.EqualFold(s, string(domain.CategoryUncategorized)) {
		return domain.CategoryUncategorized, nil
	}
	for _, c := range rules.allowed() {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", &Error{Kind: KindInvalidCategory, Field: "category", Value: raw,
		Message: "not a recognized category"}
}

// AccountRef checks that the referenced account is known.
func AccountRef(accountID string, known map[string]bool) *Error {
	if strings.TrimSpace(accountID) == "" {
		return &Error{Kind: KindUnknownAccount, Field: "account_id", Value: accountID, Message: "account reference cannot be empty"}
	}
	if !known[accountID] {
		return &Error{Kind: KindUnknownAccount, Field: "account_id", Value: accountID,
			Message: "references a non-existent account"}
	}
	return nil
}

// Record runs a raw record through every field check and accumulates all
// failures. On success the returned transaction carries the canonical date
// form and category spelling; the caller still passes it through the
// cleaner before storage.
func Record(rec domain.RawRecord, known map[string]bool, rules Rules) (domain.Transaction, []Error) {
	var errs []Error

	missing := func(field, value string) bool {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, Error{Kind: KindMalformedBatch, Field: field, Value: value,
				Message: "required field is missing"})
			return true
		}
		return false
	}
	// Structural check first: a record missing required fields is rejected
	// outright without running the field rules on absent values.
	m := false
	m = missing("amount", rec.Amount) || m
	m = missing("date", rec.Date) || m
	m = missing("category", rec.Category) || m
	m = missing("account_id", rec.AccountID) || m
	if m {
		return domain.Transaction{}, errs
	}

	amount, negative, aerr := Amount(rec.Amount, rules)
	if aerr != nil {
		errs = append(errs, *aerr)
	}

	date, derr := Date(rec.Date, rules)
	if derr != nil {
		errs = append(errs, *derr)
	}

	category, cerr := Category(rec.Category, rules)
	if cerr != nil {
		errs = append(errs, *cerr)
	}

	if rerr := AccountRef(rec.AccountID, known); rerr != nil {
		errs = append(errs, *rerr)
	}

	dir, direrr := direction(rec.Type, negative)
	if direrr != nil {
		errs = append(errs, *direrr)
	}

	if len(errs) > 0 {
		return domain.Transaction{}, errs
	}

	return domain.Transaction{
		ID:          strings.TrimSpace(rec.ID),
		Date:        date.Format(domain.DateLayout),
		Amount:      domain.Round2(amount),
		Direction:   dir,
		Category:    category,
		AccountID:   rec.AccountID,
		Description: strings.TrimSpace(rec.Description),
	}, nil
}

// direction resolves the type tag; an absent tag falls back to the amount
// sign convention (negative = debit).
func direction(rawType string, negative bool) (domain.Direction, *Error) {
	s := strings.ToLower(strings.TrimSpace(rawType))
	switch s {
	case "":
		if negative {
			return domain.DirectionDebit, nil
		}
		return domain.DirectionCredit, nil
	case string(domain.DirectionCredit), "deposit", "income", "inflow":
		return domain.DirectionCredit, nil
	case string(domain.DirectionDebit), "withdrawal", "expense", "outflow", "charge", "purchase":
		return domain.DirectionDebit, nil
	}
	return "", &Error{Kind: KindMalformedBatch, Field: "type", Value: rawType,
		Message: "type must be credit or debit"}
}
