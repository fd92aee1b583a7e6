package analyzer

import (
	"github.com/pable/go-smite-metrics/internal/model"
	"github.com/pable/go-smite-metrics/internal/table"
)

// PlayerMetricsRows flattens the merged metric table into the rows the
// storage layer persists. Role and team come from the roster since the
// metric tables do not carry them.
func PlayerMetricsRows(matchID string, merged, roster *table.Table) []model.PlayerMetrics {
	type ident struct{ role, team string }
	byName := make(map[string]ident, roster.Len())
	for _, r := range roster.Rows {
		name, _ := r["player_name"].(string)
		role, _ := r["role"].(string)
		team, _ := r["team_id"].(string)
		byName[name] = ident{role: role, team: team}
	}

	out := make([]model.PlayerMetrics, 0, merged.Len())
	for _, r := range merged.Rows {
		name := rowString(r, "player_name")
		id := byName[name]
		out = append(out, model.PlayerMetrics{
			MatchID:    matchID,
			PlayerID:   int(rowFloat(r, "player_id")),
			PlayerName: name,
			GodName:    rowString(r, "god_name"),
			Role:       id.role,
			TeamID:     id.team,

			Kills:    int(rowFloat(r, "kills")),
			Deaths:   int(rowFloat(r, "deaths")),
			Assists:  int(rowFloat(r, "assists")),
			KDARatio: rowFloat(r, "kda_ratio"),

			TotalDamage:     rowFloat(r, "total_damage"),
			PlayerDamage:    rowFloat(r, "player_damage"),
			ObjectiveDamage: rowFloat(r, "objective_damage"),
			MinionDamage:    rowFloat(r, "minion_damage"),
			JungleDamage:    rowFloat(r, "jungle_damage"),
			DamagePerMinute: rowFloat(r, "damage_per_minute"),
			MitigatedDamage: rowFloat(r, "mitigated_damage"),
			DamageReceived:  rowFloat(r, "damage_received"),
			CriticalHits:    int(rowFloat(r, "critical_hits")),
			HighestDamage:   rowFloat(r, "highest_damage"),

			HealingDone: rowFloat(r, "healing_done"),

			TotalGold:     rowFloat(r, "total_gold"),
			GoldEarned:    rowFloat(r, "gold_earned"),
			GoldSpent:     rowFloat(r, "gold_spent"),
			GoldPerMinute: rowFloat(r, "gold_per_minute"),
			TotalXP:       rowFloat(r, "total_xp"),
			XPPerMinute:   rowFloat(r, "xp_per_minute"),

			DamageEfficiency:     rowFloat(r, "damage_efficiency"),
			GoldEfficiency:       rowFloat(r, "gold_efficiency"),
			SurvivalEfficiency:   rowFloat(r, "survival_efficiency"),
			CombatContribution:   rowFloat(r, "combat_contribution"),
			TargetPrioritization: rowFloat(r, "target_prioritization"),
			WeightedPriority:     rowFloat(r, "weighted_priority"),
		})
	}
	return out
}
