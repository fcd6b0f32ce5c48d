// Package config loads the tracker configuration: allowed categories,
// validation bounds, cleaning and recurrence tolerances, and per-variant
// account defaults. The loaded value is immutable by convention and is
// threaded explicitly into the components that need it.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/domain"
	"github.com/uzit001/INST326-Financial-Transaction-Analytics-System/internal/validate"
)

//go:embed config.yaml
var embeddedConfig []byte

// CheckingDefaults are the constructor defaults for checking accounts.
type CheckingDefaults struct {
	OverdraftLimit float64 `yaml:"overdraft_limit"`
	MonthlyFee     float64 `yaml:"monthly_fee"`
}

// SavingsDefaults are the constructor defaults for savings accounts.
type SavingsDefaults struct {
	MinimumBalance  float64 `yaml:"minimum_balance"`
	InterestRate    float64 `yaml:"interest_rate"`
	WithdrawalLimit int     `yaml:"withdrawal_limit"`
}

// CreditCardDefaults are the constructor defaults for credit card accounts.
type CreditCardDefaults struct {
	CreditLimit float64 `yaml:"credit_limit"`
	APR         float64 `yaml:"apr"`
}

// Config is the full tracker configuration.
type Config struct {
	// Categories restricts the allowed category set. Empty means the
	// full canonical set.
	Categories []string `yaml:"categories"`

	// Validation bounds.
	MaxAmount           float64 `yaml:"max_amount"`
	EpochFloor          string  `yaml:"epoch_floor"` // YYYY-MM-DD
	FutureToleranceDays int     `yaml:"future_tolerance_days"`

	// Cleaning and analytics tolerances.
	DuplicateAmountTolerancePct  float64 `yaml:"duplicate_amount_tolerance_pct"`
	RecurrenceAmountTolerancePct float64 `yaml:"recurrence_amount_tolerance_pct"`
	RecurrenceToleranceDays      int     `yaml:"recurrence_tolerance_days"`
	SpikeThreshold               float64 `yaml:"spike_threshold"`

	// Account variant defaults.
	Checking   CheckingDefaults   `yaml:"checking"`
	Savings    SavingsDefaults    `yaml:"savings"`
	CreditCard CreditCardDefaults `yaml:"credit_card"`
}

// Default returns the embedded configuration.
func Default() (*Config, error) {
	cfg, err := parse(embeddedConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %q: %w", path, err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxAmount <= 0 {
		return fmt.Errorf("max_amount must be positive, got %.2f", c.MaxAmount)
	}
	if c.EpochFloor != "" {
		if _, err := time.Parse(domain.DateLayout, c.EpochFloor); err != nil {
			return fmt.Errorf("epoch_floor must be YYYY-MM-DD: %w", err)
		}
	}
	if c.FutureToleranceDays < 0 {
		return fmt.Errorf("future_tolerance_days cannot be negative, got %d", c.FutureToleranceDays)
	}
	if c.DuplicateAmountTolerancePct < 0 {
		return fmt.Errorf("duplicate_amount_tolerance_pct cannot be negative, got %.2f", c.DuplicateAmountTolerancePct)
	}
	if c.RecurrenceToleranceDays < 0 {
		return fmt.Errorf("recurrence_tolerance_days cannot be negative, got %d", c.RecurrenceToleranceDays)
	}
	for _, name := range c.Categories {
		if _, ok := domain.Standardize(name); !ok {
			return fmt.Errorf("unknown category %q in allowed set", name)
		}
	}
	if c.Savings.WithdrawalLimit < 0 {
		return fmt.Errorf("savings withdrawal_limit cannot be negative, got %d", c.Savings.WithdrawalLimit)
	}
	return nil
}

// Rules builds the validation rules from the configuration.
func (c *Config) Rules() validate.Rules {
	rules := validate.DefaultRules()
	rules.MaxAmount = c.MaxAmount
	if c.EpochFloor != "" {
		floor, _ := time.Parse(domain.DateLayout, c.EpochFloor) // validated on load
		rules.EpochFloor = floor
	}
	if c.FutureToleranceDays > 0 {
		rules.FutureTolerance = time.Duration(c.FutureToleranceDays) * 24 * time.Hour
	}
	if len(c.Categories) > 0 {
		allowed := make([]domain.Category, 0, len(c.Categories))
		for _, name := range c.Categories {
			cat, _ := domain.Standardize(name) // validated on load
			allowed = append(allowed, cat)
		}
		rules.Allowed = allowed
	}
	return rules
}
