package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
)

func txn(id, date string, amount float64, dir domain.Direction, cat domain.Category, account, desc string) domain.Transaction {
	return domain.Transaction{
		ID: id, Date: date, Amount: amount, Direction: dir,
		Category: cat, AccountID: account, Description: desc,
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"2024-12-01", "2024-12-01", true},
		{"12/01/2024", "2024-12-01", true},
		{"2024/12/01", "2024-12-01", true},
		{"12-01-2024", "2024-12-01", true},
		{" 2024-12-01 ", "2024-12-01", true},
		{"1st of December", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := NormalizeDate(tt.raw)
		if tt.ok {
			require.NoError(t, err, tt.raw)
			assert.Equal(t, tt.want, got)
		} else {
			assert.Error(t, err, tt.raw)
		}
	}
}

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "Spotify", "Spotify"},
		{"collapse whitespace", "  Whole   Foods  ", "Whole Foods"},
		{"trailing hash token", "Spotify #123", "Spotify"},
		{"trailing code token", "Starbucks TRN0001", "Starbucks"},
		{"trailing dashed token", "Amazon ORD-9981", "Amazon"},
		{"ordinary words kept", "Corner Coffee Shop", "Corner Coffee Shop"},
		{"single code-like token kept", "TRN0001", "TRN0001"},
		{"stacked code tokens all stripped", "Netflix TRN-001 REF-002", "Netflix"},
		{"code tokens only keep the first", "TRN0001 REF-002", "TRN0001"},
		{"accents folded", "Café Crème", "Cafe Creme"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.raw))
		})
	}
}

func TestCleanDropsDuplicates(t *testing.T) {
	c := New()

	// Same account, date (once normalized), amount and direction with a
	// case-insensitive description match: later record dropped.
	in := []domain.Transaction{
		txn("T1", "2024-12-01", 50.00, domain.DirectionDebit, domain.CategoryGroceries, "ACC001", "Groceries"),
		txn("T2", "12/01/2024", 50.00, domain.DirectionDebit, domain.CategoryGroceries, "ACC001", "GROCERIES"),
	}
	out, res := c.Clean(in)
	require.Len(t, out, 1)
	assert.Equal(t, "T1", out[0].ID, "first occurrence wins")
	assert.Equal(t, 1, res.DuplicatesDropped)
	assert.Equal(t, 2, res.Input)
	assert.Equal(t, 1, res.Kept)
}

func TestCleanDuplicateRule(t *testing.T) {
	c := New()
	base := txn("", "2024-12-01", 9.99, domain.DirectionDebit, domain.CategorySubscription, "ACC001", "Spotify")

	t.Run("same external id different descriptions", func(t *testing.T) {
		a, b := base, base
		a.ID, b.ID = "X1", "X1"
		b.Description = "Spotify Premium"
		out, res := c.Clean([]domain.Transaction{a, b})
		assert.Len(t, out, 1)
		assert.Equal(t, 1, res.DuplicatesDropped)
	})

	t.Run("both descriptions empty", func(t *testing.T) {
		a, b := base, base
		a.ID, b.ID = "X1", "X2"
		a.Description, b.Description = "", ""
		out, _ := c.Clean([]domain.Transaction{a, b})
		assert.Len(t, out, 1)
	})

	t.Run("different ids and descriptions kept", func(t *testing.T) {
		a, b := base, base
		a.ID, b.ID = "X1", "X2"
		b.Description = "Netflix"
		out, _ := c.Clean([]domain.Transaction{a, b})
		assert.Len(t, out, 2)
	})

	t.Run("different amount kept", func(t *testing.T) {
		a, b := base, base
		b.Amount = 10.99
		out, _ := c.Clean([]domain.Transaction{a, b})
		assert.Len(t, out, 2)
	})

	t.Run("different direction kept", func(t *testing.T) {
		a, b := base, base
		b.Direction = domain.DirectionCredit
		out, _ := c.Clean([]domain.Transaction{a, b})
		assert.Len(t, out, 2)
	})

	t.Run("different account kept", func(t *testing.T) {
		a, b := base, base
		b.AccountID = "ACC002"
		out, _ := c.Clean([]domain.Transaction{a, b})
		assert.Len(t, out, 2)
	})
}

func TestCleanAmountTolerance(t *testing.T) {
	c := &Cleaner{AmountTolerancePct: 1}
	a := txn("X1", "2024-12-01", 100.00, domain.DirectionDebit, domain.CategoryShopping, "ACC001", "Store")
	b := txn("X2", "2024-12-01", 100.50, domain.DirectionDebit, domain.CategoryShopping, "ACC001", "Store")
	out, _ := c.Clean([]domain.Transaction{a, b})
	assert.Len(t, out, 1, "amounts within 1%% match")

	b.Amount = 102.00
	out, _ = c.Clean([]domain.Transaction{a, b})
	assert.Len(t, out, 2, "amounts beyond 1%% do not match")
}

func TestCleanIdempotent(t *testing.T) {
	c := New()
	in := []domain.Transaction{
		txn("T1", "12/01/2024", 50.004, domain.DirectionDebit, domain.Category("groc"), "ACC001", "  Whole   Foods #991 "),
		txn("T2", "2024-12-01", 50.00, domain.DirectionDebit, domain.Category("Groceries"), "ACC001", "Whole Foods"),
		txn("T3", "2024-12-02", 12.00, domain.DirectionCredit, domain.Category("salary"), "ACC001", "Refund"),
		txn("T4", "2024-12-03", 15.49, domain.DirectionDebit, domain.Category("Subscription"), "ACC001", "Netflix TRN-001 REF-002"),
	}
	once, _ := c.Clean(in)
	twice, res := c.Clean(once)
	assert.Equal(t, once, twice)
	assert.Zero(t, res.DuplicatesDropped)
	assert.Equal(t, "Netflix", once[len(once)-1].Description,
		"stacked reference codes must not survive the first pass")
}

func TestNormalizeCanonicalizesFields(t *testing.T) {
	n := Normalize(txn("T1", "09/01/2025", 9.994, domain.DirectionDebit, domain.Category("subscr"), "visa", "Spotify #123"))
	assert.Equal(t, "2025-09-01", n.Date)
	assert.Equal(t, domain.CategorySubscription, n.Category)
	assert.Equal(t, "Spotify", n.Description)
	assert.Equal(t, 9.99, n.Amount)

	unknown := Normalize(txn("T2", "2025-09-01", 1, domain.DirectionDebit, domain.Category("llama rides"), "visa", ""))
	assert.Equal(t, domain.CategoryUncategorized, unknown.Category)
}

func TestFingerprintDeterministic(t *testing.T) {
	a := txn("T1", "2024-12-01", 50.00, domain.DirectionDebit, domain.CategoryGroceries, "ACC001", "Whole Foods")
	b := a
	b.Description = "WHOLE FOODS"
	assert.Equal(t, Fingerprint(a), Fingerprint(b), "description casing does not change the fingerprint")
	assert.Len(t, Fingerprint(a), 64)

	b.Amount = 50.01
	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}
