package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
)

// pinned reference time so future-date checks are deterministic
func testRules() Rules {
	r := DefaultRules()
	r.Now = func() time.Time {
		return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	}
	return r
}

func TestAmount(t *testing.T) {
	rules := testRules()

	tests := []struct {
		name     string
		raw      string
		want     float64
		negative bool
		kind     Kind
	}{
		{name: "plain", raw: "49.99", want: 49.99},
		{name: "currency symbol and separators", raw: "$1,250.00", want: 1250.00},
		{name: "negative keeps magnitude", raw: "-15.50", want: 15.50, negative: true},
		{name: "whitespace", raw: "  20 ", want: 20},
		{name: "non-numeric", raw: "abc", kind: KindInvalidAmount},
		{name: "empty", raw: "", kind: KindInvalidAmount},
		{name: "zero", raw: "0", kind: KindInvalidAmount},
		{name: "exceeds ceiling", raw: "2000000", kind: KindInvalidAmount},
		{name: "nan", raw: "NaN", kind: KindInvalidAmount},
		{name: "infinity", raw: "Inf", kind: KindInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, negative, verr := Amount(tt.raw, rules)
			if tt.kind != "" {
				require.NotNil(t, verr)
				assert.Equal(t, tt.kind, verr.Kind)
				return
			}
			require.Nil(t, verr)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.negative, negative)
		})
	}
}

func TestDate(t *testing.T) {
	rules := testRules()

	tests := []struct {
		name string
		raw  string
		want string
		kind Kind
	}{
		{name: "iso", raw: "2024-12-01", want: "2024-12-01"},
		{name: "us slashes", raw: "12/01/2024", want: "2024-12-01"},
		{name: "iso slashes", raw: "2024/12/01", want: "2024-12-01"},
		{name: "us dashes", raw: "12-01-2024", want: "2024-12-01"},
		{name: "tomorrow within tolerance", raw: "2025-06-16", want: "2025-06-16"},
		{name: "far future", raw: "2026-01-01", kind: KindInvalidDate},
		{name: "before epoch floor", raw: "1899-12-31", kind: KindInvalidDate},
		{name: "nonsense month", raw: "2024-13-45", kind: KindInvalidDate},
		{name: "unparseable", raw: "yesterday", kind: KindInvalidDate},
		{name: "empty", raw: "", kind: KindInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, verr := Date(tt.raw, rules)
			if tt.kind != "" {
				require.NotNil(t, verr)
				assert.Equal(t, tt.kind, verr.Kind)
				return
			}
			require.Nil(t, verr)
			assert.Equal(t, tt.want, got.Format(domain.DateLayout))
		})
	}
}

func TestCategory(t *testing.T) {
	rules := testRules()

	got, verr := Category("food", rules)
	require.Nil(t, verr)
	assert.Equal(t, domain.CategoryFood, got, "matching is case-insensitive, result canonical")

	got, verr = Category("uncategorized", rules)
	require.Nil(t, verr)
	assert.Equal(t, domain.CategoryUncategorized, got)

	_, verr = Category("Llama Rides", rules)
	require.NotNil(t, verr)
	assert.Equal(t, KindInvalidCategory, verr.Kind)

	_, verr = Category("  ", rules)
	require.NotNil(t, verr)
	assert.Equal(t, KindInvalidCategory, verr.Kind)
}

func TestAccountRef(t *testing.T) {
	known := map[string]bool{"ACC001": true}

	assert.Nil(t, AccountRef("ACC001", known))

	verr := AccountRef("ACC999", known)
	require.NotNil(t, verr)
	assert.Equal(t, KindUnknownAccount, verr.Kind)

	verr = AccountRef("", known)
	require.NotNil(t, verr)
	assert.Equal(t, KindUnknownAccount, verr.Kind)
}

func TestRecord(t *testing.T) {
	rules := testRules()
	known := map[string]bool{"ACC001": true}

	t.Run("valid record", func(t *testing.T) {
		txn, errs := Record(domain.RawRecord{
			ID: "TXN001", Amount: "50.00", Date: "12/01/2024",
			Category: "groceries", AccountID: "ACC001", Type: "debit",
			Description: " Weekly shop ",
		}, known, rules)
		require.Empty(t, errs)
		assert.Equal(t, "2024-12-01", txn.Date, "date is canonicalized")
		assert.Equal(t, domain.CategoryGroceries, txn.Category)
		assert.Equal(t, domain.DirectionDebit, txn.Direction)
		assert.Equal(t, 50.00, txn.Amount)
		assert.Equal(t, "Weekly shop", txn.Description)
	})

	t.Run("direction from amount sign", func(t *testing.T) {
		txn, errs := Record(domain.RawRecord{
			Amount: "-15.50", Date: "2024-12-01", Category: "Shopping", AccountID: "ACC001",
		}, known, rules)
		require.Empty(t, errs)
		assert.Equal(t, domain.DirectionDebit, txn.Direction)
		assert.Equal(t, 15.50, txn.Amount)
	})

	t.Run("all failures accumulated", func(t *testing.T) {
		_, errs := Record(domain.RawRecord{
			Amount: "-50", Date: "2024-99-01", Category: "nope", AccountID: "ACC999",
		}, known, rules)
		require.Len(t, errs, 3)
		kinds := map[Kind]bool{}
		for _, e := range errs {
			kinds[e.Kind] = true
		}
		assert.True(t, kinds[KindInvalidDate])
		assert.True(t, kinds[KindInvalidCategory])
		assert.True(t, kinds[KindUnknownAccount])
	})

	t.Run("missing required fields reject the record only", func(t *testing.T) {
		_, errs := Record(domain.RawRecord{Description: "orphan"}, known, rules)
		require.NotEmpty(t, errs)
		for _, e := range errs {
			assert.Equal(t, KindMalformedBatch, e.Kind)
		}
	})

	t.Run("unknown type tag", func(t *testing.T) {
		_, errs := Record(domain.RawRecord{
			Amount: "5", Date: "2024-12-01", Category: "Food", AccountID: "ACC001", Type: "transfer",
		}, known, rules)
		require.Len(t, errs, 1)
		assert.Equal(t, KindMalformedBatch, errs[0].Kind)
	})
}
