package analyzer

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config controls which metric tables are computed and how rows are
// filtered. Any change to a live analyzer's config invalidates the whole
// table cache; there is no finer-grained dependency tracking.
type Config struct {
	IncludeBots bool `env:"INCLUDE_BOTS"`

	// Row floors. MinPlayerDamage gates KDA and damage rows on the
	// player-vs-player damage column; MinDamage and MinHealing gate the
	// damage and healing tables on their own totals.
	MinPlayerDamage float64 `env:"MIN_PLAYER_DAMAGE"`
	MinDamage       float64 `env:"MIN_DAMAGE"`
	MinHealing      float64 `env:"MIN_HEALING"`

	IncludeDamagePerMinute bool `env:"INCLUDE_DAMAGE_PER_MINUTE"`
	IncludeGoldStats       bool `env:"INCLUDE_GOLD_STATS"`
	IncludeHealingStats    bool `env:"INCLUDE_HEALING_STATS"`
	IncludeAdvancedMetrics bool `env:"INCLUDE_ADVANCED_METRICS"`
	CalculateComparative   bool `env:"CALCULATE_COMPARATIVE"`
	CalculateEfficiency    bool `env:"CALCULATE_EFFICIENCY"`

	SurvivalWeightKills   float64 `env:"SURVIVAL_WEIGHT_KILLS"`
	SurvivalWeightAssists float64 `env:"SURVIVAL_WEIGHT_ASSISTS"`

	// TargetPriorityWeights weighs damage by target entity type for the
	// weighted_priority metric; HighPriorityTargets defines the numerator of
	// target_prioritization.
	TargetPriorityWeights map[string]float64 `env:"TARGET_PRIORITY_WEIGHTS"`
	HighPriorityTargets   []string           `env:"HIGH_PRIORITY_TARGETS"`

	// Exact-match filters. PlayerName filters KDA/damage rows; TeamID and
	// Role restrict the base roster every table is seeded from.
	PlayerName string `env:"PLAYER_NAME"`
	TeamID     string `env:"TEAM_ID"`
	Role       string `env:"ROLE"`
}

// DefaultConfig returns the stock configuration: every table enabled, no
// filters, stock weights.
func DefaultConfig() Config {
	return Config{
		IncludeBots:            false,
		IncludeDamagePerMinute: true,
		IncludeGoldStats:       true,
		IncludeHealingStats:    true,
		IncludeAdvancedMetrics: true,
		CalculateComparative:   true,
		CalculateEfficiency:    true,
		SurvivalWeightKills:    1.0,
		SurvivalWeightAssists:  0.5,
		TargetPriorityWeights: map[string]float64{
			"Player":      1.0,
			"Objective":   0.7,
			"Jungle Camp": 0.3,
			"Minion":      0.1,
		},
		HighPriorityTargets: []string{"Player"},
	}
}

// envPrefix namespaces the analyzer's environment overrides.
const envPrefix = "SMITEMETRICS_"

// ConfigFromEnv layers SMITEMETRICS_* environment overrides over the
// defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return cfg, fmt.Errorf("parse env config: %w", err)
	}
	return cfg, nil
}

func (c Config) highPriority() map[string]bool {
	m := make(map[string]bool, len(c.HighPriorityTargets))
	for _, t := range c.HighPriorityTargets {
		m[t] = true
	}
	return m
}
