package model

import "time"

// MatchSummary is the stored record of one parsed log.
type MatchSummary struct {
	MatchID     string
	SourceFile  string
	Mode        string
	StartTime   time.Time
	EndTime     time.Time
	ParsedAt    time.Time
	Players     int
	Events      int
	ParseErrors int
}

// DurationMinutes mirrors Match.DurationMinutes for stored summaries.
func (s *MatchSummary) DurationMinutes() (float64, bool) {
	if s == nil || s.StartTime.IsZero() || s.EndTime.IsZero() {
		return 0, false
	}
	return s.EndTime.Sub(s.StartTime).Minutes(), true
}

// PlayerMetrics is the flattened per-player row persisted for a match. It
// carries the merged output of the metric tables; fields for disabled tables
// stay zero.
type PlayerMetrics struct {
	MatchID    string
	PlayerID   int
	PlayerName string
	GodName    string
	Role       string
	TeamID     string

	Kills    int
	Deaths   int
	Assists  int
	KDARatio float64

	TotalDamage     float64
	PlayerDamage    float64
	ObjectiveDamage float64
	MinionDamage    float64
	JungleDamage    float64
	DamagePerMinute float64
	MitigatedDamage float64
	DamageReceived  float64
	CriticalHits    int
	HighestDamage   float64

	HealingDone float64

	TotalGold     float64
	GoldEarned    float64
	GoldSpent     float64
	GoldPerMinute float64
	TotalXP       float64
	XPPerMinute   float64

	DamageEfficiency     float64
	GoldEfficiency       float64
	SurvivalEfficiency   float64
	CombatContribution   float64
	TargetPrioritization float64
	WeightedPriority     float64
}
