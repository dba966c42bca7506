// Package config loads the YAML configuration of a costbasis run.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/etnz/costbasis"
)

// Tax methods.
const (
	TaxNone        = "none"
	TaxFlat        = "flat"
	TaxProgressive = "progressive"
)

// Config is the configuration of a run.
type Config struct {
	Currency               string `yaml:"currency"`
	AllowNegativeInventory bool   `yaml:"allow_negative_inventory"`
	QuantityScale          uint8  `yaml:"quantity_scale"`
	FiatScale              uint8  `yaml:"fiat_scale"`
	Database               string `yaml:"database"`
	Tax                    Tax    `yaml:"tax"`
}

// Tax selects the illustrative tax rule applied to realized gains.
type Tax struct {
	Method   string    `yaml:"method"`
	Rate     string    `yaml:"rate,omitempty"`
	Brackets []Bracket `yaml:"brackets,omitempty"`
}

// Bracket is a progressive tax bracket. An empty UpTo means unbounded.
type Bracket struct {
	UpTo string `yaml:"up_to"`
	Rate string `yaml:"rate"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		QuantityScale: costbasis.DefaultQuantityScale,
		FiatScale:     costbasis.DefaultFiatScale,
		Database:      "costbasis.db",
		Tax:           Tax{Method: TaxNone},
	}
}

// Load reads the configuration at path on top of the defaults.
// A missing file is not an error, the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %q", path)
	}
	return Parse(data)
}

// Parse decodes a YAML configuration on top of the defaults and validates it.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(costbasis.ErrInvalidConfig, "yaml: %v", err)
	}
	cfg.Currency = strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if err := cfg.Engine().Validate(); err != nil {
		return Config{}, err
	}
	if _, err := cfg.TaxRule(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Engine returns the matching parameters.
func (c Config) Engine() costbasis.Config {
	return costbasis.Config{
		AllowNegativeInventory: c.AllowNegativeInventory,
		QuantityScale:          c.QuantityScale,
		FiatScale:              c.FiatScale,
	}
}

// TaxRule builds the configured tax rule.
func (c Config) TaxRule() (costbasis.TaxRule, error) {
	switch strings.ToLower(c.Tax.Method) {
	case "", TaxNone:
		return costbasis.NoTax, nil
	case TaxFlat:
		rate, err := parseRate(c.Tax.Rate)
		if err != nil {
			return nil, err
		}
		return costbasis.FlatRate(rate), nil
	case TaxProgressive:
		if len(c.Tax.Brackets) == 0 {
			return nil, errors.Wrap(costbasis.ErrInvalidConfig, "progressive tax without brackets")
		}
		brackets := make([]costbasis.Bracket, 0, len(c.Tax.Brackets))
		for i, b := range c.Tax.Brackets {
			rate, err := parseRate(b.Rate)
			if err != nil {
				return nil, errors.Wrapf(err, "bracket %d", i)
			}
			var upTo decimal.Decimal
			if s := strings.TrimSpace(b.UpTo); s != "" {
				if upTo, err = decimal.NewFromString(s); err != nil {
					return nil, errors.Wrapf(costbasis.ErrInvalidConfig, "bracket %d: up_to %q: %v", i, b.UpTo, err)
				}
			}
			brackets = append(brackets, costbasis.Bracket{UpTo: upTo, Rate: rate})
		}
		return costbasis.Progressive(brackets...)
	default:
		return nil, errors.Wrapf(costbasis.ErrInvalidConfig, "unknown tax method %q", c.Tax.Method)
	}
}

func parseRate(s string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(costbasis.ErrInvalidConfig, "rate %q: %v", s, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, errors.Wrapf(costbasis.ErrInvalidConfig, "rate %s is outside [0, 1]", rate)
	}
	return rate, nil
}
