// Package config loads and validates the explicit simulation configuration.
// Nothing here is ambient or global: a Config is built once and passed into
// the engine and runner constructors, so concurrent simulations with
// different settings never interfere.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantlab/backsim/money"
	"github.com/quantlab/backsim/sim"
)

// Config is the complete simulation configuration.
type Config struct {
	Account    AccountConfig    `json:"account" yaml:"account"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Strategy   StrategyConfig   `json:"strategy" yaml:"strategy"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
	Workers    int              `json:"workers" yaml:"workers"`
}

// AccountConfig funds the account and picks the buying-power model.
type AccountConfig struct {
	Currency string  `json:"currency" yaml:"currency"`
	Deposit  float64 `json:"deposit" yaml:"deposit"`
	Model    string  `json:"model" yaml:"model"` // "cash" or "margin"
	Leverage float64 `json:"leverage,omitempty" yaml:"leverage,omitempty"`
}

// SimulationConfig selects the pricing and fee behavior of the engine.
type SimulationConfig struct {
	SpreadBips float64 `json:"spread_bips" yaml:"spread_bips"`
	FeeModel   string  `json:"fee_model" yaml:"fee_model"` // "none", "percentage", "default"
	FeePct     float64 `json:"fee_pct,omitempty" yaml:"fee_pct,omitempty"`
	TIF        string  `json:"tif" yaml:"tif"` // "gtc" or "day"
	TIFMaxDays int     `json:"tif_max_days,omitempty" yaml:"tif_max_days,omitempty"`
}

// StrategyConfig parameterizes the bundled EMA crossover strategy and the
// flex sizing policy.
type StrategyConfig struct {
	Fast     int     `json:"fast" yaml:"fast"`
	Slow     int     `json:"slow" yaml:"slow"`
	OrderPct float64 `json:"order_pct" yaml:"order_pct"`
	Shorting bool    `json:"shorting" yaml:"shorting"`
}

// JournalConfig selects where run output is persisted.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "none", "csv" or "sqlite"
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads a config from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Account.Currency == "" {
		return fmt.Errorf("account.currency is required")
	}
	if c.Account.Deposit <= 0 {
		return fmt.Errorf("account.deposit must be positive")
	}
	switch c.Account.Model {
	case "", "cash":
	case "margin":
		if c.Account.Leverage <= 0 {
			return fmt.Errorf("account.leverage must be positive for a margin account")
		}
	default:
		return fmt.Errorf("account.model must be 'cash' or 'margin'")
	}
	switch c.Simulation.FeeModel {
	case "", "none", "percentage", "default":
	default:
		return fmt.Errorf("simulation.fee_model must be 'none', 'percentage' or 'default'")
	}
	switch c.Simulation.TIF {
	case "", "gtc", "day":
	default:
		return fmt.Errorf("simulation.tif must be 'gtc' or 'day'")
	}
	if c.Strategy.Fast > 0 && c.Strategy.Slow > 0 && c.Strategy.Fast >= c.Strategy.Slow {
		return fmt.Errorf("strategy.fast must be below strategy.slow")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal trades_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'none', 'csv' or 'sqlite'")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// EngineConfig translates the file settings into an engine configuration.
// Pure translation: calling it twice yields two independent configs.
func (c *Config) EngineConfig() sim.Config {
	currency := money.Currency(c.Account.Currency)

	cfg := sim.Config{
		BaseCurrency: currency,
		Deposit:      money.NewWallet(money.NewAmount(currency, c.Account.Deposit)),
	}

	if c.Simulation.SpreadBips > 0 {
		cfg.Pricing = sim.SpreadPricing{Bips: c.Simulation.SpreadBips}
	}

	switch c.Simulation.FeeModel {
	case "percentage":
		cfg.Fees = sim.PercentageFee{Pct: c.Simulation.FeePct}
	case "default":
		cfg.Fees = sim.DefaultFee{Pct: c.Simulation.FeePct}
	}

	if c.Account.Model == "margin" {
		cfg.AccountModel = sim.MarginAccount{Leverage: c.Account.Leverage}
	}

	switch c.Simulation.TIF {
	case "day":
		cfg.TIF = sim.Day{}
	default:
		cfg.TIF = sim.GTC{MaxDays: c.Simulation.TIFMaxDays}
	}

	return cfg
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency: "USD",
			Deposit:  100_000,
			Model:    "cash",
		},
		Simulation: SimulationConfig{
			FeeModel: "none",
			TIF:      "gtc",
		},
		Strategy: StrategyConfig{
			Fast:     20,
			Slow:     50,
			OrderPct: 0.05,
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Workers: 4,
	}
}
