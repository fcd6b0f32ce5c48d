package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/account"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/tracker"
)

// csvHeader matches the raw record field-mapping, so an exported file can
// be re-imported unchanged.
var csvHeader = []string{"id", "date", "amount", "category", "account_id", "type", "description"}

// ExportCSV writes the transactions as a header-mapped CSV document.
func ExportCSV(w io.Writer, txns []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range txns {
		row := []string{
			t.ID,
			t.Date,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			string(t.Category),
			t.AccountID,
			string(t.Direction),
			t.Description,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}

// accountSnapshot is the exported view of one account.
type accountSnapshot struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Kind           string  `json:"kind"`
	Balance        float64 `json:"balance"`
	AvailableFunds float64 `json:"available_funds"`
}

// snapshot is the full exported tracker state.
type snapshot struct {
	Owner        string               `json:"owner"`
	NetWorth     float64              `json:"net_worth"`
	Accounts     []accountSnapshot    `json:"accounts"`
	Transactions []domain.Transaction `json:"transactions"`
}

// ExportJSON writes the tracker state as indented JSON.
func ExportJSON(w io.Writer, tr *tracker.Tracker) error {
	if tr == nil {
		return fmt.Errorf("tracker cannot be nil")
	}
	accounts := tr.Accounts()
	snap := snapshot{
		Owner:        tr.Owner(),
		NetWorth:     tr.NetWorth(),
		Accounts:     make([]accountSnapshot, 0, len(accounts)),
		Transactions: tr.Transactions(),
	}
	for _, a := range accounts {
		snap.Accounts = append(snap.Accounts, snapshotOf(a))
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode state as JSON: %w", err)
	}
	return nil
}

func snapshotOf(a *account.Account) accountSnapshot {
	return accountSnapshot{
		ID:             a.ID,
		Name:           a.Name,
		Kind:           string(a.Kind),
		Balance:        a.Balance,
		AvailableFunds: a.AvailableFunds(),
	}
}
