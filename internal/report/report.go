// Package report renders tracker state and analytics results for people:
// a colored terminal report plus CSV/JSON exports. It only reads; all
// figures come from the tracker and the analytics engine.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/account"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/alerts"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/analytics"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/tracker"
)

var (
	header  = color.New(color.FgGreen, color.Bold)
	section = color.New(color.FgBlue, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	alarm   = color.New(color.FgRed)
)

// Renderer writes the terminal report.
type Renderer struct {
	w io.Writer
}

// NewRenderer builds a renderer targeting the given writer.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Header prints the report banner with the owner's name.
func (r *Renderer) Header(owner string) {
	line := strings.Repeat("=", 60)
	header.Fprintf(r.w, "%s\n", line)
	header.Fprintf(r.w, "  Financial report for %s\n", owner)
	header.Fprintf(r.w, "%s\n", line)
}

// Accounts prints one line per account with balance and available funds.
func (r *Renderer) Accounts(accounts []*account.Account) {
	section.Fprintf(r.w, "\nAccounts\n")
	if len(accounts) == 0 {
		fmt.Fprintf(r.w, "  (none)\n")
		return
	}
	total := 0.0
	for _, a := range accounts {
		fmt.Fprintf(r.w, "  %-12s %-20s %-12s balance %10.2f  available %10.2f\n",
			a.ID, a.Name, a.Kind, a.Balance, a.AvailableFunds())
		total += a.Balance
	}
	fmt.Fprintf(r.w, "  %-46s net worth %10.2f\n", "", domain.Round2(total))
}

// Flows prints category totals, largest first.
func (r *Renderer) Flows(title string, flows map[domain.Category]float64) {
	section.Fprintf(r.w, "\n%s\n", title)
	if len(flows) == 0 {
		fmt.Fprintf(r.w, "  (none)\n")
		return
	}
	type entry struct {
		cat    domain.Category
		amount float64
	}
	entries := make([]entry, 0, len(flows))
	for cat, amount := range flows {
		entries = append(entries, entry{cat, amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].amount != entries[j].amount {
			return entries[i].amount > entries[j].amount
		}
		return entries[i].cat < entries[j].cat
	})
	for _, e := range entries {
		fmt.Fprintf(r.w, "  %-18s %10.2f\n", e.cat, e.amount)
	}
}

// Recent prints the most recent transactions.
func (r *Renderer) Recent(txns []domain.Transaction) {
	section.Fprintf(r.w, "\nRecent transactions\n")
	if len(txns) == 0 {
		fmt.Fprintf(r.w, "  (none)\n")
		return
	}
	for _, t := range txns {
		sign := "+"
		if t.Direction == domain.DirectionDebit {
			sign = "-"
		}
		fmt.Fprintf(r.w, "  %s  %s%9.2f  %-14s %-12s %s\n",
			t.Date, sign, t.Amount, t.Category, t.AccountID, t.Description)
	}
}

// Recurring prints detected recurring payment groups.
func (r *Renderer) Recurring(groups []analytics.RecurringGroup) {
	section.Fprintf(r.w, "\nRecurring payments\n")
	if len(groups) == 0 {
		fmt.Fprintf(r.w, "  (none detected)\n")
		return
	}
	for _, g := range groups {
		fmt.Fprintf(r.w, "  %-12s %-14s %-8s avg %9.2f  (%d occurrences)\n",
			g.AccountID, g.Category, g.Cadence, g.AverageAmount, len(g.Transactions))
	}
}

// Alerts prints triggered alerts, if any.
func (r *Renderer) Alerts(found []alerts.Alert) {
	if len(found) == 0 {
		return
	}
	warn.Fprintf(r.w, "\nAlerts\n")
	for _, a := range found {
		alarm.Fprintf(r.w, "  [%s] %s (transaction %s)\n", a.RuleName, a.Message, a.TransactionID)
	}
}

// ImportSummary prints the outcome of a batch import, including the
// per-record rejection reasons.
func (r *Renderer) ImportSummary(res tracker.ImportResult) {
	section.Fprintf(r.w, "\nImport summary\n")
	fmt.Fprintf(r.w, "  accepted %d, rejected %d, duplicates dropped %d\n",
		res.Accepted, res.Rejected, res.DuplicatesDropped)
	for _, rej := range res.Rejections {
		warn.Fprintf(r.w, "  record %d rejected: %s\n", rej.Index, rej.Reason())
	}
}

// MonthlySummary prints per-bucket credit/debit/net rows.
func (r *Renderer) MonthlySummary(buckets []analytics.BucketSummary) {
	section.Fprintf(r.w, "\nMonthly summary\n")
	if len(buckets) == 0 {
		fmt.Fprintf(r.w, "  (none)\n")
		return
	}
	for _, b := range buckets {
		fmt.Fprintf(r.w, "  %-9s credits %10.2f  debits %10.2f  net %10.2f\n",
			b.Bucket, b.Credits, b.Debits, b.Net)
	}
}
