package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pable/go-smite-metrics/internal/table"
)

// Result is the full output of one analysis pass: the six metric tables plus
// the rollups derived from their merge. Error carries per-table failure
// notes; the pass itself only fails on validation.
type Result struct {
	MatchID string `json:"match_id,omitempty"`

	KDA         *table.Table `json:"kda"`
	Damage      *table.Table `json:"damage"`
	Healing     *table.Table `json:"healing,omitempty"`
	Economy     *table.Table `json:"economy,omitempty"`
	Efficiency  *table.Table `json:"efficiency,omitempty"`
	Comparative *table.Table `json:"comparative,omitempty"`

	Summary         *table.Table            `json:"summary"`
	TeamSummary     *table.Table            `json:"team_summary"`
	DamageBreakdown *table.Table            `json:"damage_breakdown"`
	Roster          *table.Table            `json:"roster"`
	TopPerformers   map[string]*table.Table `json:"top_performers"`

	Error string `json:"error,omitempty"`
}

// topPerformerMetrics maps the category names surfaced in Result to the
// merged-table column they rank by. The advanced categories only appear when
// their column made it into the merge.
var topPerformerMetrics = []struct {
	category string
	column   string
	always   bool
}{
	{"kda", "kda_ratio", true},
	{"kills", "kills", true},
	{"damage", "player_damage", true},
	{"damage_efficiency", "damage_efficiency", false},
	{"survival_efficiency", "survival_efficiency", false},
	{"gold_efficiency", "gold_efficiency", false},
	{"target_prioritization", "target_prioritization", false},
}

// Analyze implements Analyzer. It validates once, computes every enabled
// table and derives the rollups. Single-table failures do not abort the
// pass; they degrade to empty tables and are reported in Result.Error.
func (a *Performance) Analyze() (*Result, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		MatchID:     a.parser.Match.ID,
		KDA:         a.KDA(),
		Damage:      a.Damage(),
		Healing:     a.Healing(),
		Economy:     a.Economy(),
		Efficiency:  a.Efficiency(),
		Comparative: a.Comparative(),
		Roster:      a.parser.PlayersTable(),
	}

	merged := a.MergedTable()
	res.Summary = a.summaryTable(merged)
	res.TeamSummary = a.teamSummaryTable(merged)
	res.DamageBreakdown = a.damageBreakdownTable()

	res.TopPerformers = make(map[string]*table.Table)
	for _, m := range topPerformerMetrics {
		if !m.always && !merged.HasCol(m.column) {
			continue
		}
		res.TopPerformers[m.category] = a.topFrom(merged, m.column, 3)
	}

	if len(a.tableErrs) > 0 {
		keys := make([]string, 0, len(a.tableErrs))
		for k := range a.tableErrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, k+": "+a.tableErrs[k])
		}
		res.Error = strings.Join(parts, "; ")
	}

	a.log.Info("analysis complete",
		"match", res.MatchID,
		"players", res.Roster.Len(),
		"tables_failed", len(a.tableErrs))
	return res, nil
}

// MergedTable joins the computed metric tables into one wide per-player
// table. The first non-empty table in KDA/damage/healing/economy/efficiency/
// comparative order is the base; tables that share no join key with the base
// are skipped with a warning.
func (a *Performance) MergedTable() *table.Table {
	ordered := []*table.Table{
		a.KDA(), a.Damage(), a.Healing(),
		a.Economy(), a.Efficiency(), a.Comparative(),
	}

	var nonEmpty []*table.Table
	for _, t := range ordered {
		if !t.Empty() {
			nonEmpty = append(nonEmpty, t)
		}
	}
	if len(nonEmpty) == 0 {
		return table.New("merged")
	}

	// god_name only joins when every participating table carries it,
	// otherwise a missing column would split players across rows.
	keys := []string{"player_id", "player_name"}
	allHaveGod := true
	for _, t := range nonEmpty {
		if !t.HasCol("god_name") {
			allHaveGod = false
			break
		}
	}
	if allHaveGod {
		keys = append(keys, "god_name")
	}

	merged := nonEmpty[0]
	for _, t := range nonEmpty[1:] {
		joinKeys := sharedKeys(keys, merged, t)
		if len(joinKeys) == 0 {
			a.log.Warn("skipping table in merge, no shared key", "table", t.Name)
			continue
		}
		m, err := merged.LeftJoin(t, joinKeys)
		if err != nil {
			a.log.Warn("merge failed, skipping table", "table", t.Name, "err", err)
			continue
		}
		merged = m
	}

	out := *merged
	out.Name = "merged"
	return &out
}

// TopPerformers ranks the merged table by one numeric metric, descending,
// keeping at most limit rows. Unknown metrics yield an empty table.
func (a *Performance) TopPerformers(metric string, limit int) *table.Table {
	return a.topFrom(a.MergedTable(), metric, limit)
}

func (a *Performance) topFrom(merged *table.Table, metric string, limit int) *table.Table {
	if !merged.HasCol(metric) {
		a.log.Warn("top performers for unknown metric", "metric", metric)
		return table.New("top_"+metric, "player_id", "player_name", "god_name", metric)
	}
	ranked := merged.Filter(func(r table.Row) bool {
		_, ok := table.AsFloat(r[metric])
		return ok
	})
	ranked.SortByDesc(metric)
	if limit <= 0 {
		limit = 3
	}
	out := ranked.Head(limit).Select("player_id", "player_name", "god_name", metric)
	out.Name = "top_" + metric
	return out
}

// PlayerPerformance returns the merged row for one player by exact name.
func (a *Performance) PlayerPerformance(name string) (table.Row, error) {
	merged := a.MergedTable()
	if merged.Empty() {
		return nil, fmt.Errorf("%w: %q (no metric data)", ErrPlayerNotFound, name)
	}
	for _, r := range merged.Rows {
		if rowString(r, "player_name") == name {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
}

// summaryTable is the one-row match rollup.
func (a *Performance) summaryTable(merged *table.Table) *table.Table {
	t := table.New("summary",
		"match_id", "duration_minutes", "players",
		"total_kills", "total_deaths", "total_assists",
		"total_player_damage", "total_gold_earned", "total_healing")

	duration, _ := a.durationMinutes()
	row := table.Row{
		"match_id":            a.parser.Match.ID,
		"duration_minutes":    table.Round2(duration),
		"players":             a.basePlayers().Len(),
		"total_kills":         merged.Sum("kills"),
		"total_deaths":        merged.Sum("deaths"),
		"total_assists":       merged.Sum("assists"),
		"total_player_damage": merged.Sum("player_damage"),
		"total_gold_earned":   merged.Sum("gold_earned"),
		"total_healing":       merged.Sum("healing_done"),
	}
	t.Rows = append(t.Rows, row)
	return t
}

// teamSummaryTable groups the merged table by team, summing the headline
// counters. team_kda folds assists in the same way the per-player ratio
// does, except a zero-death team divides by 1 via SafeDivide's default.
func (a *Performance) teamSummaryTable(merged *table.Table) *table.Table {
	out := table.New("team_summary",
		"team_id", "players", "kills", "deaths", "assists",
		"player_damage", "gold_earned", "team_kda")
	if merged.Empty() {
		return out
	}

	roster := a.basePlayers()
	teamByName := make(map[string]string, roster.Len())
	for _, r := range roster.Rows {
		teamByName[rowString(r, "player_name")] = rowString(r, "team_id")
	}

	type teamAcc struct {
		players                              int
		kills, deaths, assists, damage, gold float64
	}
	acc := make(map[string]*teamAcc)
	for _, r := range merged.Rows {
		team := teamByName[rowString(r, "player_name")]
		if team == "" {
			team = "unknown"
		}
		ta := acc[team]
		if ta == nil {
			ta = &teamAcc{}
			acc[team] = ta
		}
		ta.players++
		ta.kills += rowFloat(r, "kills")
		ta.deaths += rowFloat(r, "deaths")
		ta.assists += rowFloat(r, "assists")
		ta.damage += rowFloat(r, "player_damage")
		ta.gold += rowFloat(r, "gold_earned")
	}

	teams := make([]string, 0, len(acc))
	for t := range acc {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	for _, team := range teams {
		ta := acc[team]
		kda := table.Round2(table.SafeDivide(ta.kills+ta.assists, ta.deaths, ta.kills+ta.assists))
		out.Rows = append(out.Rows, table.Row{
			"team_id":       team,
			"players":       ta.players,
			"kills":         ta.kills,
			"deaths":        ta.deaths,
			"assists":       ta.assists,
			"player_damage": ta.damage,
			"gold_earned":   ta.gold,
			"team_kda":      kda,
		})
	}
	return out
}

// damageBreakdownTable totals outgoing damage per target entity type across
// the whole match.
func (a *Performance) damageBreakdownTable() *table.Table {
	out := table.New("damage_breakdown", "target_type", "total_damage", "events", "share")
	combat := a.parser.EnhancedCombatTable()
	if combat.Empty() {
		return out
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	var grand float64
	for _, r := range combat.Rows {
		st := rowString(r, "event_subtype")
		if st != "Damage" && st != "CritDamage" {
			continue
		}
		typ := rowString(r, "target_entity_type")
		if typ == "" {
			typ = "Other"
		}
		amount := rowFloat(r, "damage_amount")
		totals[typ] += amount
		counts[typ]++
		grand += amount
	}

	types := make([]string, 0, len(totals))
	for t := range totals {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return totals[types[i]] > totals[types[j]] })
	for _, typ := range types {
		out.Rows = append(out.Rows, table.Row{
			"target_type":  typ,
			"total_damage": totals[typ],
			"events":       counts[typ],
			"share":        table.Round2(table.SafeDivide(totals[typ], grand, 0) * 100),
		})
	}
	return out
}

// sharedKeys narrows the merge keys to the ones both sides carry.
func sharedKeys(keys []string, left, right *table.Table) []string {
	var out []string
	for _, k := range keys {
		if left.HasCol(k) && right.HasCol(k) {
			out = append(out, k)
		}
	}
	return out
}
