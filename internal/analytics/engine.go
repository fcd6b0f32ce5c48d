// Package analytics computes derived views over a cleaned transaction
// sequence and an account set: category flows, recurring payments, period
// summaries and net-worth queries. Every method is a read-only query.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/account"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
)

// Config holds the analytics tolerances. The zero value is usable; unset
// fields fall back to the defaults below.
type Config struct {
	// AmountTolerancePct groups near-equal amounts when detecting
	// recurring payments. Default 1 (±1%).
	AmountTolerancePct float64
	// IntervalToleranceDays widens the weekly/monthly cadence bands.
	// Default 3.
	IntervalToleranceDays int
	// SpikeThreshold flags debits at or above this amount. Default 500.
	SpikeThreshold float64
}

const (
	defaultAmountTolerancePct    = 1.0
	defaultIntervalToleranceDays = 3
	defaultSpikeThreshold        = 500.0
)

// Engine answers analytics queries. Create one with New and reuse it; the
// engine itself holds no transaction state.
type Engine struct {
	cfg Config
}

// New creates an engine, filling unset config fields with defaults.
func New(cfg Config) *Engine {
	if cfg.AmountTolerancePct <= 0 {
		cfg.AmountTolerancePct = defaultAmountTolerancePct
	}
	if cfg.IntervalToleranceDays <= 0 {
		cfg.IntervalToleranceDays = defaultIntervalToleranceDays
	}
	if cfg.SpikeThreshold <= 0 {
		cfg.SpikeThreshold = defaultSpikeThreshold
	}
	return &Engine{cfg: cfg}
}

// Period is an inclusive date range in canonical YYYY-MM-DD form. A nil
// *Period means "all time".
type Period struct {
	Start string
	End   string
}

func (p *Period) contains(date string) bool {
	if p == nil {
		return true
	}
	return date >= p.Start && date <= p.End
}

// OutflowByCategory sums debit magnitudes per category, optionally
// restricted to a period. Answers "where is my money going?".
func (e *Engine) OutflowByCategory(txns []domain.Transaction, period *Period) map[domain.Category]float64 {
	return e.flowByCategory(txns, domain.DirectionDebit, period)
}

// InflowByCategory sums credit magnitudes per category, optionally
// restricted to a period. Answers "where is my money coming from?".
func (e *Engine) InflowByCategory(txns []domain.Transaction, period *Period) map[domain.Category]float64 {
	return e.flowByCategory(txns, domain.DirectionCredit, period)
}

func (e *Engine) flowByCategory(txns []domain.Transaction, dir domain.Direction, period *Period) map[domain.Category]float64 {
	totals := make(map[domain.Category]float64)
	for _, t := range txns {
		if t.Direction != dir || !period.contains(t.Date) {
			continue
		}
		totals[t.Category] = domain.Round2(totals[t.Category] + t.Amount)
	}
	return totals
}

// Cadence names a detected recurrence interval.
type Cadence string

const (
	CadenceWeekly  Cadence = "weekly"
	CadenceMonthly Cadence = "monthly"
)

// RecurringGroup is a detected recurring payment: transactions on one
// account in one category with near-equal amounts and near-constant
// spacing, ordered by date ascending.
type RecurringGroup struct {
	AccountID     string
	Category      domain.Category
	Cadence       Cadence
	AverageAmount float64
	Transactions  []domain.Transaction
}

// DetectRecurringPayments finds groups of two or more transactions sharing
// account and category whose amounts agree within the configured tolerance
// and whose dates are spaced at a near-constant weekly or monthly interval.
func (e *Engine) DetectRecurringPayments(txns []domain.Transaction) []RecurringGroup {
	byKey := make(map[string][]domain.Transaction)
	var keys []string
	for _, t := range txns {
		key := t.AccountID + "|" + string(t.Category)
		if _, seen := byKey[key]; !seen {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], t)
	}
	sort.Strings(keys)

	var groups []RecurringGroup
	for _, key := range keys {
		for _, cluster := range e.clusterByAmount(byKey[key]) {
			if len(cluster) < 2 {
				continue
			}
			sort.SliceStable(cluster, func(i, j int) bool { return cluster[i].Date < cluster[j].Date })
			cadence, ok := e.inferCadence(cluster)
			if !ok {
				continue
			}
			var sum float64
			for _, t := range cluster {
				sum += t.Amount
			}
			groups = append(groups, RecurringGroup{
				AccountID:     cluster[0].AccountID,
				Category:      cluster[0].Category,
				Cadence:       cadence,
				AverageAmount: domain.Round2(sum / float64(len(cluster))),
				Transactions:  cluster,
			})
		}
	}
	return groups
}

// clusterByAmount partitions a group into clusters whose amounts stay
// within the tolerance of the cluster's running average.
func (e *Engine) clusterByAmount(txns []domain.Transaction) [][]domain.Transaction {
	var clusters [][]domain.Transaction
	var averages []float64
	for _, t := range txns {
		placed := false
		for i, avg := range averages {
			if math.Abs(t.Amount-avg) <= avg*e.cfg.AmountTolerancePct/100 {
				clusters[i] = append(clusters[i], t)
				n := float64(len(clusters[i]))
				averages[i] = avg + (t.Amount-avg)/n
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, []domain.Transaction{t})
			averages = append(averages, t.Amount)
		}
	}
	return clusters
}

// inferCadence checks that every gap between consecutive dates falls in the
// weekly band (7 days) or the monthly band (30 days), each widened by the
// configured tolerance.
func (e *Engine) inferCadence(sorted []domain.Transaction) (Cadence, bool) {
	tol := float64(e.cfg.IntervalToleranceDays)
	weekly, monthly := true, true
	for i := 1; i < len(sorted); i++ {
		prev, err1 := sorted[i-1].Time()
		cur, err2 := sorted[i].Time()
		if err1 != nil || err2 != nil {
			return "", false
		}
		gap := cur.Sub(prev).Hours() / 24
		if math.Abs(gap-7) > tol {
			weekly = false
		}
		if math.Abs(gap-30) > tol+1 { // calendar months run 28–31 days
			monthly = false
		}
	}
	switch {
	case weekly:
		return CadenceWeekly, true
	case monthly:
		return CadenceMonthly, true
	}
	return "", false
}

// Granularity selects the period summary bucketing.
type Granularity string

const (
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
)

// BucketSummary reports totals for one calendar-aligned bucket.
type BucketSummary struct {
	Bucket  string // "2024-12" for monthly, "2024-W49" for weekly
	Credits float64
	Debits  float64
	Net     float64
}

// PeriodSummary buckets all transactions into calendar-aligned weekly or
// monthly windows and reports per-bucket credits, debits and net. Buckets
// come back sorted ascending; empty buckets are not materialized.
func (e *Engine) PeriodSummary(txns []domain.Transaction, g Granularity) ([]BucketSummary, error) {
	if g != GranularityWeekly && g != GranularityMonthly {
		return nil, fmt.Errorf("unsupported granularity %q (must be weekly or monthly)", g)
	}
	byBucket := make(map[string]*BucketSummary)
	for _, t := range txns {
		when, err := t.Time()
		if err != nil {
			continue
		}
		label := monthLabel(when)
		if g == GranularityWeekly {
			label = weekLabel(when)
		}
		b, ok := byBucket[label]
		if !ok {
			b = &BucketSummary{Bucket: label}
			byBucket[label] = b
		}
		switch t.Direction {
		case domain.DirectionCredit:
			b.Credits = domain.Round2(b.Credits + t.Amount)
		case domain.DirectionDebit:
			b.Debits = domain.Round2(b.Debits + t.Amount)
		}
		b.Net = domain.Round2(b.Credits - b.Debits)
	}

	out := make([]BucketSummary, 0, len(byBucket))
	for _, b := range byBucket {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out, nil
}

func monthLabel(t time.Time) string {
	return t.Format("2006-01")
}

func weekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// AverageMonthlySpending returns the mean of monthly debit totals over the
// months that contain at least one transaction. Months with no activity at
// all are excluded rather than counted as zero, so sparse history does not
// drag the average down.
func (e *Engine) AverageMonthlySpending(txns []domain.Transaction) float64 {
	debitByMonth := make(map[string]float64)
	for _, t := range txns {
		when, err := t.Time()
		if err != nil {
			continue
		}
		m := monthLabel(when)
		if _, seen := debitByMonth[m]; !seen {
			debitByMonth[m] = 0
		}
		if t.Direction == domain.DirectionDebit {
			debitByMonth[m] += t.Amount
		}
	}
	if len(debitByMonth) == 0 {
		return 0
	}
	var sum float64
	for _, total := range debitByMonth {
		sum += total
	}
	return domain.Round2(sum / float64(len(debitByMonth)))
}

// MonthStat summarizes debit activity in a single month.
type MonthStat struct {
	Total   float64
	Average float64
	Count   int
}

// MonthlyStats reports per-month debit totals, mean debit size and debit
// count, keyed by "YYYY-MM".
func (e *Engine) MonthlyStats(txns []domain.Transaction) map[string]MonthStat {
	stats := make(map[string]MonthStat)
	for _, t := range txns {
		if t.Direction != domain.DirectionDebit {
			continue
		}
		when, err := t.Time()
		if err != nil {
			continue
		}
		m := monthLabel(when)
		s := stats[m]
		s.Total = domain.Round2(s.Total + t.Amount)
		s.Count++
		stats[m] = s
	}
	for m, s := range stats {
		s.Average = domain.Round2(s.Total / float64(s.Count))
		stats[m] = s
	}
	return stats
}

// RecentTransactions returns the last n transactions by date descending.
// Same-date ties are broken by insertion order, most recently added first.
// The input slice must be in insertion order and is not mutated.
func RecentTransactions(txns []domain.Transaction, n int) []domain.Transaction {
	if n <= 0 {
		return nil
	}
	idx := make([]int, len(txns))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ta, tb := txns[idx[a]], txns[idx[b]]
		if ta.Date != tb.Date {
			return ta.Date > tb.Date
		}
		return idx[a] > idx[b]
	})
	if n > len(idx) {
		n = len(idx)
	}
	out := make([]domain.Transaction, n)
	for i := 0; i < n; i++ {
		out[i] = txns[idx[i]]
	}
	return out
}

// SpendingSpikes returns debits at or above the configured threshold, in
// input order.
func (e *Engine) SpendingSpikes(txns []domain.Transaction) []domain.Transaction {
	var flagged []domain.Transaction
	for _, t := range txns {
		if t.Direction == domain.DirectionDebit && t.Amount >= e.cfg.SpikeThreshold {
			flagged = append(flagged, t)
		}
	}
	return flagged
}

// LargestTransactions returns the top n transactions by magnitude,
// descending; insertion order breaks ties.
func LargestTransactions(txns []domain.Transaction, n int) []domain.Transaction {
	if n <= 0 {
		return nil
	}
	out := append([]domain.Transaction(nil), txns...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Amount > out[j].Amount })
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}

// TransactionsInRange returns transactions whose canonical date falls
// inside the inclusive range, in input order.
func TransactionsInRange(txns []domain.Transaction, start, end string) ([]domain.Transaction, error) {
	if _, err := time.Parse(domain.DateLayout, start); err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	if _, err := time.Parse(domain.DateLayout, end); err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if start > end {
		return nil, fmt.Errorf("start date %s is after end date %s", start, end)
	}
	p := &Period{Start: start, End: end}
	var out []domain.Transaction
	for _, t := range txns {
		if p.contains(t.Date) {
			out = append(out, t)
		}
	}
	return out, nil
}

// RichestAccount returns the account with the highest available funds.
// The first account in the slice wins ties; nil for an empty slice.
func RichestAccount(accounts []*account.Account) *account.Account {
	var richest *account.Account
	for _, a := range accounts {
		if richest == nil || a.AvailableFunds() > richest.AvailableFunds() {
			richest = a
		}
	}
	return richest
}

// TotalNetWorth sums the current balances of all accounts.
func TotalNetWorth(accounts []*account.Account) float64 {
	var sum float64
	for _, a := range accounts {
		sum += a.Balance
	}
	return domain.Round2(sum)
}
