// Package config loads syllabus runtime configuration through viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/papapumpkin/syllabus/internal/planner"
)

// LegacyUnreachable is the heuristic distance used for unreachable skills
// when legacy_heuristic is set.
const LegacyUnreachable = 1

// Config holds all runtime configuration for syllabus.
// Values are populated from .syllabus.yaml, SYLLABUS_* env vars, and CLI flags.
type Config struct {
	Catalog         string            `mapstructure:"catalog"`
	DB              string            `mapstructure:"db"`
	Alternatives    int               `mapstructure:"alternatives"`
	Cost            string            `mapstructure:"cost"`
	Penalties       planner.Penalties `mapstructure:"penalties"`
	MaxDepth        int               `mapstructure:"max_depth"`
	MaxExpansions   int               `mapstructure:"max_expansions"`
	LegacyHeuristic bool              `mapstructure:"legacy_heuristic"`
	BatchLimit      int               `mapstructure:"batch_limit"`
	LogMode         string            `mapstructure:"log_mode"`
	TelemetryPath   string            `mapstructure:"telemetry_path"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	pen := planner.DefaultPenalties()

	viper.SetDefault("catalog", "catalog.toml")
	viper.SetDefault("db", "")
	viper.SetDefault("alternatives", 1)
	viper.SetDefault("cost", "count")
	viper.SetDefault("penalties.context_switch", pen.ContextSwitch)
	viper.SetDefault("penalties.suggestion_violation", pen.SuggestionViolation)
	viper.SetDefault("penalties.composite_reimbursement", pen.CompositeReimbursement)
	viper.SetDefault("max_depth", planner.DefaultMaxDepth)
	viper.SetDefault("max_expansions", 0)
	viper.SetDefault("legacy_heuristic", false)
	viper.SetDefault("batch_limit", 4)
	viper.SetDefault("log_mode", "quiet")
	viper.SetDefault("telemetry_path", "")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// PlannerOptions translates the search settings into planner options.
// Logger and emitter are left to the caller.
func (c Config) PlannerOptions() ([]planner.Option, error) {
	cost, err := planner.CostByName(c.Cost)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Penalties.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	opts := []planner.Option{
		planner.WithCost(cost),
		planner.WithPenalties(c.Penalties),
		planner.WithAlternatives(c.Alternatives),
		planner.WithMaxDepth(c.MaxDepth),
		planner.WithMaxExpansions(c.MaxExpansions),
	}
	if c.LegacyHeuristic {
		opts = append(opts, planner.WithUnreachableDistance(LegacyUnreachable))
	}
	return opts, nil
}
