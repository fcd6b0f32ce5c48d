// Package clean turns a validated transaction sequence into the canonical
// sequence stored by the tracker: dates in ISO form, descriptions collapsed
// and stripped of trailing reference codes, categories in canonical
// spelling, duplicates removed with first occurrence winning.
//
// Clean is idempotent: running it on its own output yields the same output,
// which makes repeated imports of the same files safe.
package clean

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/validate"
)

// Cleaner normalizes and deduplicates transaction sequences.
type Cleaner struct {
	// AmountTolerancePct widens the duplicate amount match: two amounts
	// within this percentage of the larger one are treated as equal.
	// Zero means exact cent equality.
	AmountTolerancePct float64
}

// New returns a cleaner with exact amount matching.
func New() *Cleaner {
	return &Cleaner{}
}

// Result reports what a cleaning pass did, for caller observability.
type Result struct {
	Input             int
	Kept              int
	DuplicatesDropped int
}

// Clean normalizes every transaction and drops later duplicates. The input
// slice is not mutated.
func (c *Cleaner) Clean(txns []domain.Transaction) ([]domain.Transaction, Result) {
	kept := make([]domain.Transaction, 0, len(txns))
	// candidate indexes into kept, grouped by the exact part of the
	// duplicate key (account, date, direction)
	groups := make(map[string][]int)

	res := Result{Input: len(txns)}
	for _, txn := range txns {
		n := Normalize(txn)
		key := groupKey(n)
		dup := false
		for _, i := range groups[key] {
			if c.isDuplicate(kept[i], n) {
				dup = true
				break
			}
		}
		if dup {
			res.DuplicatesDropped++
			continue
		}
		groups[key] = append(groups[key], len(kept))
		kept = append(kept, n)
	}
	res.Kept = len(kept)
	return kept, res
}

// Normalize rewrites a single transaction into canonical form: ISO date,
// cleaned description, canonical category spelling, cent-rounded amount.
func Normalize(txn domain.Transaction) domain.Transaction {
	out := txn
	if iso, err := NormalizeDate(txn.Date); err == nil {
		out.Date = iso
	}
	out.Description = CleanDescription(txn.Description)
	if cat, ok := domain.Standardize(string(txn.Category)); ok {
		out.Category = cat
	} else {
		out.Category = domain.CategoryUncategorized
	}
	out.Amount = domain.Round2(txn.Amount)
	return out
}

// NormalizeDate rewrites any accepted textual date form to ISO YYYY-MM-DD.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range validate.DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(domain.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unsupported date format %q", raw)
}

// CleanDescription trims the text, collapses internal whitespace, folds
// accented characters to ASCII and strips trailing code-like tokens
// (a token with three or more digits, a leading '#', or an embedded dash,
// typically a merchant reference like "TRN0001" or "#123"). Stripping runs
// to a fixed point so cleaning an already-clean description is a no-op.
func CleanDescription(raw string) string {
	folded := foldAccents(raw)
	s := strings.Join(strings.Fields(folded), " ")
	if s == "" {
		return ""
	}
	tokens := strings.Split(s, " ")
	for len(tokens) > 1 && isCodeToken(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

func isCodeToken(token string) bool {
	digits := 0
	for _, r := range token {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= 3 || strings.HasPrefix(token, "#") || strings.Contains(token, "-")
}

// foldAccents removes combining marks so "Café" and "Cafe" fingerprint
// identically.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Duplicate reports whether two normalized transactions match the duplicate
// rule end to end: same account, date and direction, amounts within
// tolerance, and same external id or case-insensitive description.
func (c *Cleaner) Duplicate(a, b domain.Transaction) bool {
	if groupKey(a) != groupKey(b) {
		return false
	}
	return c.isDuplicate(a, b)
}

// Fingerprint hashes the exact duplicate key of a normalized transaction:
// SHA256("{account}|{date}|{cents}|{direction}|{lowercased description}").
func Fingerprint(txn domain.Transaction) string {
	input := fmt.Sprintf("%s|%s|%d|%s|%s",
		txn.AccountID, txn.Date, domain.Cents(txn.Amount), txn.Direction,
		strings.ToLower(txn.Description))
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])
}

func groupKey(txn domain.Transaction) string {
	return txn.AccountID + "|" + txn.Date + "|" + string(txn.Direction)
}

// isDuplicate applies the match rule to two transactions already known to
// share account, date and direction: amounts must match (within tolerance)
// and either the external ids are equal or the descriptions match
// case-insensitively (two empty descriptions match).
func (c *Cleaner) isDuplicate(a, b domain.Transaction) bool {
	if !c.amountsMatch(a.Amount, b.Amount) {
		return false
	}
	if a.ID != "" && a.ID == b.ID {
		return true
	}
	return strings.EqualFold(a.Description, b.Description)
}

func (c *Cleaner) amountsMatch(a, b float64) bool {
	if c.AmountTolerancePct <= 0 {
		return domain.Cents(a) == domain.Cents(b)
	}
	larger := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= larger*c.AmountTolerancePct/100
}
