// Package domain defines the core entities shared by the validation,
// cleaning and analytics layers: transactions, directions and the
// canonical category set.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the canonical textual date form used everywhere after
// cleaning: ISO YYYY-MM-DD.
const DateLayout = "2006-01-02"

// Direction represents the sign of a money movement.
// Use ValidDirection to ensure validity before use.
type Direction string

const (
	// DirectionCredit adds money to an account (income, deposits, refunds).
	DirectionCredit Direction = "credit"
	// DirectionDebit removes money from an account (purchases, withdrawals).
	DirectionDebit Direction = "debit"
)

// ValidDirection checks if the direction is one of the two allowed values.
func ValidDirection(d Direction) bool {
	return d == DirectionCredit || d == DirectionDebit
}

// Category represents a canonical spending/income category.
// Use ValidCategory or Standardize before storing one.
type Category string

const (
	CategorySubscription   Category = "Subscription"
	CategoryBills          Category = "Bills"
	CategoryFood           Category = "Food"
	CategoryGroceries      Category = "Groceries"
	CategoryEntertainment  Category = "Entertainment"
	CategoryTransportation Category = "Transportation"
	CategoryUtilities      Category = "Utilities"
	CategoryHealthcare     Category = "Healthcare"
	CategoryShopping       Category = "Shopping"
	CategoryDebt           Category = "Debt"
	CategoryIncome         Category = "Income"
	CategoryOther          Category = "Other"
	// CategoryUncategorized is the explicit fallback for records whose
	// category could not be matched to the canonical set.
	CategoryUncategorized Category = "Uncategorized"
)

// Categories returns the canonical category set in a stable order.
// CategoryUncategorized is a valid value but not part of the set itself.
func Categories() []Category {
	return []Category{
		CategorySubscription, CategoryBills, CategoryFood, CategoryGroceries,
		CategoryEntertainment, CategoryTransportation, CategoryUtilities,
		CategoryHealthcare, CategoryShopping, CategoryDebt, CategoryIncome,
		CategoryOther,
	}
}

var validCategories = map[Category]struct{}{
	CategorySubscription: {}, CategoryBills: {}, CategoryFood: {},
	CategoryGroceries: {}, CategoryEntertainment: {}, CategoryTransportation: {},
	CategoryUtilities: {}, CategoryHealthcare: {}, CategoryShopping: {},
	CategoryDebt: {}, CategoryIncome: {}, CategoryOther: {},
	CategoryUncategorized: {},
}

// ValidCategory checks if category is an exact member of the canonical set
// (including the Uncategorized fallback).
func ValidCategory(c Category) bool {
	_, ok := validCategories[c]
	return ok
}

// aliases maps lowercase spellings and common variants to canonical categories.
var aliases = map[string]Category{
	"subscription": CategorySubscription, "subscriptions": CategorySubscription,
	"subs": CategorySubscription, "subscr": CategorySubscription,
	"bill": CategoryBills, "bills": CategoryBills,
	"food": CategoryFood, "dining": CategoryFood, "restaurant": CategoryFood,
	"coffee": CategoryFood, "cafe": CategoryFood, "cafes": CategoryFood,
	"groceries": CategoryGroceries, "grocery": CategoryGroceries,
	"entertainment": CategoryEntertainment,
	"transport":     CategoryTransportation, "transportation": CategoryTransportation,
	"uber": CategoryTransportation, "lyft": CategoryTransportation,
	"gas": CategoryTransportation, "fuel": CategoryTransportation,
	"utilities": CategoryUtilities, "internet": CategoryUtilities,
	"electric": CategoryUtilities, "water": CategoryUtilities,
	"health": CategoryHealthcare, "healthcare": CategoryHealthcare,
	"shopping": CategoryShopping, "retail": CategoryShopping,
	"debt": CategoryDebt, "loan": CategoryDebt,
	"income": CategoryIncome, "salary": CategoryIncome,
	"other":         CategoryOther,
	"uncategorized": CategoryUncategorized,
}

// substring fallbacks, checked in order after the exact alias table misses.
var aliasContains = []struct {
	substr string
	cat    Category
}{
	{"subscr", CategorySubscription},
	{"groc", CategoryGroceries},
	{"restaur", CategoryFood}, {"dining", CategoryFood}, {"cafe", CategoryFood},
	{"coffee", CategoryFood}, {"food", CategoryFood},
	{"transport", CategoryTransportation}, {"uber", CategoryTransportation},
	{"lyft", CategoryTransportation}, {"fuel", CategoryTransportation},
	{"utilit", CategoryUtilities}, {"internet", CategoryUtilities},
	{"electric", CategoryUtilities},
	{"retail", CategoryShopping}, {"shop", CategoryShopping},
	{"health", CategoryHealthcare}, {"care", CategoryHealthcare},
	{"loan", CategoryDebt}, {"debt", CategoryDebt},
	{"salary", CategoryIncome}, {"income", CategoryIncome}, {"pay", CategoryIncome},
}

// Standardize maps a free-form category string to its canonical spelling.
// Matching is case-insensitive; exact aliases are tried first, then substring
// heuristics. Returns (CategoryUncategorized, false) when nothing matches.
func Standardize(raw string) (Category, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return CategoryUncategorized, false
	}
	if c, ok := aliases[s]; ok {
		return c, true
	}
	for _, a := range aliasContains {
		if strings.Contains(s, a.substr) {
			return a.cat, true
		}
	}
	return CategoryUncategorized, false
}

// Transaction is a single money movement. Amount is always a positive
// magnitude; Direction carries the sign. Date is textual and, once a
// transaction has passed through cleaning, always in DateLayout form.
type Transaction struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Amount      float64   `json:"amount"`
	Direction   Direction `json:"direction"`
	Category    Category  `json:"category"`
	AccountID   string    `json:"accountId"`
	Description string    `json:"description,omitempty"`
}

// NewTransaction creates a validated transaction. The date must already be
// in DateLayout form; raw imported records go through the validator instead.
func NewTransaction(id, date string, amount float64, dir Direction, category Category, accountID, description string) (*Transaction, error) {
	if id == "" {
		return nil, fmt.Errorf("transaction ID cannot be empty")
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date format: %w", err)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, fmt.Errorf("amount must be a positive finite number, got %v", amount)
	}
	if !ValidDirection(dir) {
		return nil, fmt.Errorf("invalid direction: %s", dir)
	}
	if !ValidCategory(category) {
		return nil, fmt.Errorf("invalid category: %s", category)
	}
	if accountID == "" {
		return nil, fmt.Errorf("account ID cannot be empty")
	}
	return &Transaction{
		ID:          id,
		Date:        date,
		Amount:      Round2(amount),
		Direction:   dir,
		Category:    category,
		AccountID:   accountID,
		Description: description,
	}, nil
}

// SignedAmount returns the amount with the direction's sign applied:
// positive for credits, negative for debits.
func (t Transaction) SignedAmount() float64 {
	if t.Direction == DirectionDebit {
		return -t.Amount
	}
	return t.Amount
}

// Time parses the transaction date. Only meaningful after cleaning, when the
// date is guaranteed to be in DateLayout form.
func (t Transaction) Time() (time.Time, error) {
	return time.Parse(DateLayout, t.Date)
}

// RawRecord is the field mapping handed over by import adapters. All values
// arrive as text; the validator parses and checks them. Missing ID, Type and
// Description are tolerated, the rest are required.
type RawRecord struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	AccountID   string `json:"account_id"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Cents converts a decimal amount to integer cents, rounding half away
// from zero. Used wherever amounts are compared for equality.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Round2 rounds to fixed-point two-decimal precision.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
