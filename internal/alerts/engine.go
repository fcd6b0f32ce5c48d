// Package alerts provides a YAML-based rules engine that flags suspicious
// or noteworthy transactions after cleaning: large amounts, per-category
// per-transaction limits, and suspicious description keywords.
package alerts

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
)

//go:embed alerts.yaml
var embeddedRules []byte

// RuleType selects what a rule checks.
type RuleType string

const (
	// RuleLargeTransaction flags any transaction at or above Threshold.
	RuleLargeTransaction RuleType = "large_transaction"
	// RuleCategoryLimit flags transactions in Category above Limit.
	RuleCategoryLimit RuleType = "category_limit"
	// RuleSuspiciousDescription flags descriptions containing any of the
	// Keywords (case-insensitive substring match).
	RuleSuspiciousDescription RuleType = "suspicious_description"
)

// Rule is a single alert rule. Rules should be created via YAML loading
// (NewEngine, LoadEmbedded, LoadFromFile), which validates all invariants:
// a known type, a non-empty name, positive thresholds/limits for the
// amount rules, a valid category for category_limit, and at least one
// keyword for suspicious_description.
type Rule struct {
	Name      string   `yaml:"name"`
	Type      RuleType `yaml:"type"`
	Priority  int      `yaml:"priority"`
	Threshold float64  `yaml:"threshold"`
	Category  string   `yaml:"category"`
	Limit     float64  `yaml:"limit"`
	Keywords  []string `yaml:"keywords"`
}

// RuleSet is the top-level YAML structure.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Alert is one rule firing on one transaction.
type Alert struct {
	RuleName      string
	TransactionID string
	Message       string
}

// Engine evaluates alert rules against transactions.
type Engine struct {
	rules []Rule // sorted by priority, highest first
}

// NewEngine creates an engine from YAML data, validating every rule.
func NewEngine(data []byte) (*Engine, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse YAML alert rules (check syntax, indentation, and field names): %w", err)
	}

	for i, rule := range rs.Rules {
		if strings.TrimSpace(rule.Name) == "" {
			return nil, fmt.Errorf("rule %d: name cannot be empty", i)
		}
		switch rule.Type {
		case RuleLargeTransaction:
			if rule.Threshold <= 0 {
				return nil, fmt.Errorf("rule %d (%s): threshold must be positive, got %.2f", i, rule.Name, rule.Threshold)
			}
		case RuleCategoryLimit:
			if rule.Limit <= 0 {
				return nil, fmt.Errorf("rule %d (%s): limit must be positive, got %.2f", i, rule.Name, rule.Limit)
			}
			if !domain.ValidCategory(domain.Category(rule.Category)) {
				return nil, fmt.Errorf("rule %d (%s): invalid category %q", i, rule.Name, rule.Category)
			}
		case RuleSuspiciousDescription:
			if len(rule.Keywords) == 0 {
				return nil, fmt.Errorf("rule %d (%s): at least one keyword is required", i, rule.Name)
			}
			for _, kw := range rule.Keywords {
				if strings.TrimSpace(kw) == "" {
					return nil, fmt.Errorf("rule %d (%s): keywords cannot be empty", i, rule.Name)
				}
			}
		default:
			return nil, fmt.Errorf("rule %d (%s): unknown rule type %q", i, rule.Name, rule.Type)
		}
	}

	// Stable sort preserves file order for equal priorities, so alert
	// ordering is deterministic.
	sorted := make([]Rule, len(rs.Rules))
	copy(sorted, rs.Rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })

	return &Engine{rules: sorted}, nil
}

// LoadEmbedded loads the embedded default rule set.
func LoadEmbedded() (*Engine, error) {
	e, err := NewEngine(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded alert rules: %w", err)
	}
	return e, nil
}

// LoadFromFile loads alert rules from a filesystem path.
func LoadFromFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alert rules file: %w", err)
	}
	e, err := NewEngine(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load alert rules from %q: %w", path, err)
	}
	return e, nil
}

// Evaluate runs every rule over every transaction and returns all alerts,
// in (rule priority, transaction) order.
func (e *Engine) Evaluate(txns []domain.Transaction) []Alert {
	var alerts []Alert
	for _, rule := range e.rules {
		for _, t := range txns {
			if msg, ok := rule.check(t); ok {
				alerts = append(alerts, Alert{
					RuleName:      rule.Name,
					TransactionID: t.ID,
					Message:       msg,
				})
			}
		}
	}
	return alerts
}

func (r Rule) check(t domain.Transaction) (string, bool) {
	switch r.Type {
	case RuleLargeTransaction:
		if t.Amount >= r.Threshold {
			return fmt.Sprintf("%s: $%.2f on %s (%s)", r.Name, t.Amount, t.Date, orUnknown(t.Description)), true
		}
	case RuleCategoryLimit:
		if string(t.Category) == r.Category && t.Amount > r.Limit {
			return fmt.Sprintf("%s exceeded: $%.2f on %s (%s)", r.Name, t.Amount, t.Date, orUnknown(t.Description)), true
		}
	case RuleSuspiciousDescription:
		desc := strings.ToLower(t.Description)
		for _, kw := range r.Keywords {
			if strings.Contains(desc, strings.ToLower(kw)) {
				return fmt.Sprintf("%s: matched %q in %q on %s", r.Name, kw, t.Description, t.Date), true
			}
		}
	}
	return "", false
}

func orUnknown(desc string) string {
	if desc == "" {
		return "Unknown"
	}
	return desc
}

// Rules returns a copy of the rules in evaluation order.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
