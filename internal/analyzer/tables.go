package analyzer

import (
	"strings"

	"github.com/pable/go-smite-metrics/internal/table"
)

var (
	kdaCols = []string{
		"player_id", "player_name", "god_name",
		"kills", "deaths", "assists", "kda_ratio",
	}
	damageCols = []string{
		"player_id", "player_name", "god_name",
		"total_damage", "player_damage", "objective_damage", "minion_damage",
		"jungle_damage", "damage_per_minute", "mitigated_damage",
		"damage_received", "critical_hits", "highest_damage",
	}
	healingCols = []string{
		"player_id", "player_name", "god_name",
		"healing_done", "healing_received", "self_healing", "ally_healing",
	}
	economyCols = []string{
		"player_id", "player_name", "god_name",
		"total_gold", "gold_earned", "gold_spent", "gold_per_minute",
		"gold_from_kills", "gold_from_objectives", "gold_from_minions",
		"total_xp", "xp_per_minute",
	}
	efficiencyCols = []string{
		"player_id", "player_name", "god_name", "team_id",
		"damage_efficiency", "gold_efficiency", "survival_efficiency",
		"combat_contribution", "target_prioritization", "weighted_priority",
	}
	comparativeCols = []string{
		"player_id", "player_name", "god_name",
		"kills_vs_avg", "deaths_vs_avg", "kda_vs_avg", "damage_vs_avg",
		"damage_efficiency_vs_avg", "gold_efficiency_vs_avg",
		"kills_vs_role", "deaths_vs_role", "kda_vs_role", "damage_vs_role",
	}
)

// KDA computes kills/deaths/assists per player from KillingBlow and Assist
// events.
func (a *Performance) KDA() *table.Table {
	return a.cached("kda_metrics", a.computeKDA)
}

func (a *Performance) computeKDA() (*table.Table, error) {
	combat := a.parser.EnhancedCombatTable()
	if combat.Empty() {
		a.log.Warn("no combat data for kda")
		return table.New("kda", kdaCols...), nil
	}
	players := a.basePlayers()
	if players.Empty() {
		a.log.Warn("no players for kda")
		return table.New("kda", kdaCols...), nil
	}

	kills := make(map[string]int)
	deaths := make(map[string]int)
	assists := make(map[string]int)
	for _, r := range combat.Rows {
		switch rowString(r, "event_subtype") {
		case "KillingBlow":
			if src := rowString(r, "source_owner"); src != "" {
				kills[src]++
			}
			if tgt := rowString(r, "target_owner"); tgt != "" {
				deaths[tgt]++
			}
		case "Assist":
			if src := rowString(r, "source_owner"); src != "" {
				assists[src]++
			}
		}
	}

	t := table.New("kda", kdaCols...)
	for _, pr := range players.Rows {
		name := rowString(pr, "player_name")
		k, d, as := kills[name], deaths[name], assists[name]
		den := d
		if den < 1 {
			den = 1
		}
		t.Rows = append(t.Rows, table.Row{
			"player_id":   pr["player_id"],
			"player_name": name,
			"god_name":    orUnknown(pr["god_name"]),
			"kills":       k,
			"deaths":      d,
			"assists":     as,
			"kda_ratio":   float64(k+as) / float64(den),
		})
	}

	// The player-damage floor is checked against the damage table, not the
	// raw events, so both tables agree on exclusions.
	if a.cfg.MinPlayerDamage > 0 {
		damage := a.Damage()
		valid := make(map[string]bool)
		for _, dr := range damage.Rows {
			if rowFloat(dr, "player_damage") >= a.cfg.MinPlayerDamage {
				valid[rowString(dr, "player_name")] = true
			}
		}
		t = t.Filter(func(r table.Row) bool { return valid[rowString(r, "player_name")] })
	}
	if a.cfg.PlayerName != "" {
		t = t.Filter(func(r table.Row) bool { return rowString(r, "player_name") == a.cfg.PlayerName })
	}
	t.SortByAsc("player_id")
	return t, nil
}

// Damage computes outgoing damage partitioned by target entity type plus
// received/mitigated/critical aggregates.
func (a *Performance) Damage() *table.Table {
	return a.cached("damage_stats", a.computeDamage)
}

func (a *Performance) computeDamage() (*table.Table, error) {
	combat := a.parser.EnhancedCombatTable()
	if combat.Empty() {
		a.log.Warn("no combat data for damage stats")
		return table.New("damage", damageCols...), nil
	}
	damageEvents := combat.Filter(func(r table.Row) bool {
		st := rowString(r, "event_subtype")
		return st == "Damage" || st == "CritDamage"
	})
	if damageEvents.Empty() {
		a.log.Warn("no damage events")
		return table.New("damage", damageCols...), nil
	}
	players := a.basePlayers()
	if players.Empty() {
		a.log.Warn("no players for damage stats")
		return table.New("damage", damageCols...), nil
	}

	duration, durationOK := a.durationMinutes()

	t := table.New("damage", damageCols...)
	for _, pr := range players.Rows {
		name := rowString(pr, "player_name")

		var total, playerDmg, objectiveDmg, minionDmg, jungleDmg float64
		var mitigated, received, highest float64
		crits := 0

		for _, r := range damageEvents.Rows {
			amount := rowFloat(r, "damage_amount")
			if rowString(r, "source_owner") == name {
				total += amount
				mitigated += rowFloat(r, "mitigated_amount")
				if amount > highest {
					highest = amount
				}
				if rowString(r, "event_subtype") == "CritDamage" {
					crits++
				}
				switch rowString(r, "target_entity_type") {
				case "Player":
					playerDmg += amount
				case "Objective":
					objectiveDmg += amount
				case "Minion":
					minionDmg += amount
				case "Jungle Camp":
					jungleDmg += amount
				}
			}
			if rowString(r, "target_owner") == name {
				received += amount
			}
		}

		dpm := 0.0
		if a.cfg.IncludeDamagePerMinute && durationOK && duration > 0 {
			dpm = total / duration
		}

		t.Rows = append(t.Rows, table.Row{
			"player_id":         pr["player_id"],
			"player_name":       name,
			"god_name":          orUnknown(pr["god_name"]),
			"total_damage":      total,
			"player_damage":     playerDmg,
			"objective_damage":  objectiveDmg,
			"minion_damage":     minionDmg,
			"jungle_damage":     jungleDmg,
			"damage_per_minute": dpm,
			"mitigated_damage":  mitigated,
			"damage_received":   received,
			"critical_hits":     crits,
			"highest_damage":    highest,
		})
	}

	if a.cfg.MinPlayerDamage > 0 {
		t = t.Filter(func(r table.Row) bool {
			return rowFloat(r, "player_damage") >= a.cfg.MinPlayerDamage
		})
	}
	if a.cfg.MinDamage > 0 {
		t = t.Filter(func(r table.Row) bool {
			return rowFloat(r, "total_damage") >= a.cfg.MinDamage
		})
	}
	if a.cfg.PlayerName != "" {
		t = t.Filter(func(r table.Row) bool { return rowString(r, "player_name") == a.cfg.PlayerName })
	}
	return t, nil
}

// Healing aggregates Healing-subtype combat events by source and target.
func (a *Performance) Healing() *table.Table {
	return a.cached("healing_metrics", a.computeHealing)
}

func (a *Performance) computeHealing() (*table.Table, error) {
	if !a.cfg.IncludeHealingStats {
		return table.New("healing"), nil
	}
	combat := a.parser.EnhancedCombatTable()
	healing := combat.Filter(func(r table.Row) bool {
		return rowString(r, "event_subtype") == "Healing"
	})
	if healing.Empty() {
		a.log.Warn("no healing events")
		return table.New("healing", healingCols...), nil
	}

	players := a.basePlayers()

	// Prefer the registry; fall back to the union of healing-event owners
	// when no player records were seen.
	type subject struct {
		id      int
		name    string
		godName any
	}
	var subjects []subject
	if !players.Empty() {
		for _, pr := range players.Rows {
			subjects = append(subjects, subject{
				id:      int(rowFloat(pr, "player_id")),
				name:    rowString(pr, "player_name"),
				godName: orUnknown(pr["god_name"]),
			})
		}
	} else {
		seen := make(map[string]bool)
		idx := 0
		for _, r := range healing.Rows {
			for _, col := range []string{"source_owner", "target_owner"} {
				n := rowString(r, col)
				if n == "" || seen[n] {
					continue
				}
				seen[n] = true
				idx++
				subjects = append(subjects, subject{id: idx, name: n, godName: "Unknown"})
			}
		}
	}

	t := table.New("healing", healingCols...)
	for _, s := range subjects {
		var done, received, self float64
		for _, r := range healing.Rows {
			amount := rowFloat(r, "value1")
			src := rowString(r, "source_owner") == s.name
			tgt := rowString(r, "target_owner") == s.name
			if src {
				done += amount
			}
			if tgt {
				received += amount
			}
			if src && tgt {
				self += amount
			}
		}
		if a.cfg.MinHealing > 0 && done < a.cfg.MinHealing {
			continue
		}
		t.Rows = append(t.Rows, table.Row{
			"player_id":        s.id,
			"player_name":      s.name,
			"god_name":         s.godName,
			"healing_done":     done,
			"healing_received": received,
			"self_healing":     self,
			"ally_healing":     done - self,
		})
	}
	return t, nil
}

// Economy aggregates reward events per player: currency and experience
// totals, source-type breakdowns and per-minute rates. Absent data yields an
// all-zero row per known player rather than an empty table.
func (a *Performance) Economy() *table.Table {
	return a.cached("economy_metrics", a.computeEconomy)
}

func (a *Performance) computeEconomy() (*table.Table, error) {
	if !a.cfg.IncludeGoldStats {
		return table.New("economy"), nil
	}

	players := a.basePlayers()
	econ := a.parser.EnhancedEconomyTable()
	items := a.parser.ItemsTable()

	// An unknown duration degrades to zero per-minute rates instead of
	// failing the table.
	duration, ok := a.durationMinutes()
	if !ok {
		a.log.Warn("match duration unknown, per-minute rates will be zero")
		duration = 0
	}

	t := table.New("economy", economyCols...)
	for _, pr := range players.Rows {
		name := rowString(pr, "player_name")

		var gold, xp, goldKills, goldObjectives, goldMinions, spent float64
		for _, r := range econ.Rows {
			if rowString(r, "target_owner") != name {
				continue
			}
			amount := rowFloat(r, "amount")
			switch {
			case strings.EqualFold(rowString(r, "reward_type"), "currency"):
				gold += amount
				switch rowString(r, "source_entity_type") {
				case "Player":
					goldKills += amount
				case "Objective":
					goldObjectives += amount
				case "Minion":
					goldMinions += amount
				}
			case strings.EqualFold(rowString(r, "reward_type"), "experience"):
				xp += amount
			}
		}
		for _, r := range items.Rows {
			if rowString(r, "source_owner") == name {
				spent += rowFloat(r, "value1")
			}
		}

		gpm, xpm := 0.0, 0.0
		if duration > 0 {
			gpm = table.Round2(gold / duration)
			xpm = table.Round2(xp / duration)
		}

		t.Rows = append(t.Rows, table.Row{
			"player_id":            pr["player_id"],
			"player_name":          name,
			"god_name":             orUnknown(pr["god_name"]),
			"total_gold":           gold,
			"gold_earned":          gold,
			"gold_spent":           spent,
			"gold_per_minute":      gpm,
			"gold_from_kills":      goldKills,
			"gold_from_objectives": goldObjectives,
			"gold_from_minions":    goldMinions,
			"total_xp":             xp,
			"xp_per_minute":        xpm,
		})
	}
	return t, nil
}

// Efficiency derives cost- and time-normalized ratios from the damage, KDA
// and economy tables. When the three inputs disagree on membership the
// result is restricted to their name intersection.
func (a *Performance) Efficiency() *table.Table {
	return a.cached("efficiency_metrics", a.computeEfficiency)
}

func (a *Performance) computeEfficiency() (*table.Table, error) {
	if !a.cfg.CalculateEfficiency {
		return table.New("efficiency"), nil
	}

	damage := a.Damage()
	kda := a.KDA()
	economy := a.Economy()
	players := a.basePlayers()

	base := table.New("efficiency", efficiencyCols...)
	if !players.Empty() {
		for _, pr := range players.Rows {
			base.Rows = append(base.Rows, table.Row{
				"player_id":   pr["player_id"],
				"player_name": rowString(pr, "player_name"),
				"god_name":    orUnknown(pr["god_name"]),
				"team_id":     orDefault(pr["team_id"], "unknown"),
			})
		}
	} else {
		// Fall back to whichever metric table has rows.
		for _, src := range []*table.Table{damage, kda, economy} {
			if src.Empty() {
				continue
			}
			for _, r := range src.Rows {
				base.Rows = append(base.Rows, table.Row{
					"player_id":   r["player_id"],
					"player_name": rowString(r, "player_name"),
					"god_name":    orUnknown(r["god_name"]),
					"team_id":     "unknown",
				})
			}
			break
		}
	}
	if base.Empty() {
		a.log.Warn("no player information for efficiency metrics")
		return table.New("efficiency", efficiencyCols...), nil
	}

	if !damage.Empty() && !kda.Empty() && !economy.Empty() {
		common := nameSet(damage)
		intersect(common, nameSet(kda))
		intersect(common, nameSet(economy))
		base = base.Filter(func(r table.Row) bool { return common[rowString(r, "player_name")] })
	}

	damageBy := indexByName(damage)
	kdaBy := indexByName(kda)
	economyBy := indexByName(economy)

	duration, durationOK := a.durationMinutes()
	highPriority := a.cfg.highPriority()

	for _, r := range base.Rows {
		name := rowString(r, "player_name")
		r["damage_efficiency"] = 0.0
		r["gold_efficiency"] = 0.0
		r["survival_efficiency"] = 0.0
		r["combat_contribution"] = 0.0
		r["target_prioritization"] = 0.0
		r["weighted_priority"] = 0.0

		d := damageBy[name]
		e := economyBy[name]
		if d != nil && e != nil {
			r["damage_efficiency"] = table.Round2(
				table.SafeDivide(rowFloat(d, "total_damage"), rowFloat(e, "gold_spent"), 0))
			if durationOK && duration > 0 {
				r["gold_efficiency"] = table.Round2(rowFloat(e, "gold_earned") / duration)
			} else {
				r["gold_efficiency"] = rowFloat(e, "gold_per_minute")
			}
		}

		if k := kdaBy[name]; k != nil {
			kills := rowFloat(k, "kills")
			deaths := rowFloat(k, "deaths")
			assists := rowFloat(k, "assists")
			r["survival_efficiency"] = table.Round2(
				(a.cfg.SurvivalWeightKills*kills + a.cfg.SurvivalWeightAssists*assists) / (deaths + 1))
		}

		if d != nil {
			total := rowFloat(d, "total_damage")
			buckets := map[string]float64{
				"Player":      rowFloat(d, "player_damage"),
				"Objective":   rowFloat(d, "objective_damage"),
				"Minion":      rowFloat(d, "minion_damage"),
				"Jungle Camp": rowFloat(d, "jungle_damage"),
			}
			var weighted, high float64
			for typ, dmg := range buckets {
				weighted += a.cfg.TargetPriorityWeights[typ] * dmg
				if highPriority[typ] {
					high += dmg
				}
			}
			r["weighted_priority"] = table.Round2(table.SafeDivide(weighted, total, 0))
			r["target_prioritization"] = table.Round2(table.SafeDivide(high, total, 0) * 100)
		}
	}

	// Combat contribution needs the per-team damage totals from the final
	// membership, so it runs after the intersection filter.
	teamDamage := make(map[string]float64)
	for _, r := range base.Rows {
		if d := damageBy[rowString(r, "player_name")]; d != nil {
			teamDamage[rowString(r, "team_id")] += rowFloat(d, "player_damage")
		}
	}
	for _, r := range base.Rows {
		d := damageBy[rowString(r, "player_name")]
		if d == nil {
			continue
		}
		if total := teamDamage[rowString(r, "team_id")]; total > 0 {
			r["combat_contribution"] = table.Round2(rowFloat(d, "player_damage") / total * 100)
		}
	}

	a.log.Info("efficiency metrics calculated", "players", base.Len())
	return base, nil
}

// Comparative computes percentage deviations of each base metric against the
// match-wide mean and, where roles are known, against the role-restricted
// mean. A non-positive mean yields a zero deviation.
func (a *Performance) Comparative() *table.Table {
	return a.cached("comparative_metrics", a.computeComparative)
}

func (a *Performance) computeComparative() (*table.Table, error) {
	if !a.cfg.IncludeAdvancedMetrics || !a.cfg.CalculateComparative {
		return table.New("comparative"), nil
	}
	kda := a.KDA()
	damage := a.Damage()
	if kda.Empty() || damage.Empty() {
		a.log.Warn("no data for comparative metrics")
		return table.New("comparative", comparativeCols...), nil
	}

	keys := []string{"player_id", "player_name"}
	if kda.HasCol("god_name") && damage.HasCol("god_name") {
		keys = append(keys, "god_name")
	}
	merged, err := kda.LeftJoin(damage, keys)
	if err != nil {
		return nil, err
	}
	if a.cfg.IncludeAdvancedMetrics {
		if eff := a.Efficiency(); !eff.Empty() {
			if m, err := merged.LeftJoin(eff, keys); err == nil {
				merged = m
			}
		}
	}
	if a.cfg.IncludeGoldStats {
		if econ := a.Economy(); !econ.Empty() {
			if m, err := merged.LeftJoin(econ, keys); err == nil {
				merged = m
			}
		}
	}

	avgMetrics := [][2]string{
		{"kills", "kills_vs_avg"},
		{"deaths", "deaths_vs_avg"},
		{"kda_ratio", "kda_vs_avg"},
		{"player_damage", "damage_vs_avg"},
	}
	if merged.HasCol("damage_efficiency") {
		avgMetrics = append(avgMetrics, [2]string{"damage_efficiency", "damage_efficiency_vs_avg"})
	}
	if merged.HasCol("gold_efficiency") {
		avgMetrics = append(avgMetrics, [2]string{"gold_efficiency", "gold_efficiency_vs_avg"})
	}

	out := table.New("comparative", comparativeCols...)
	for _, r := range merged.Rows {
		nr := table.Row{
			"player_id":   r["player_id"],
			"player_name": r["player_name"],
		}
		if merged.HasCol("god_name") {
			nr["god_name"] = orUnknown(r["god_name"])
		}
		out.Rows = append(out.Rows, nr)
	}

	for _, m := range avgMetrics {
		src, dst := m[0], m[1]
		mean := merged.Mean(src)
		for i, r := range merged.Rows {
			if mean > 0 {
				out.Rows[i][dst] = table.Round2((rowFloat(r, src)/mean - 1) * 100)
			} else {
				out.Rows[i][dst] = 0.0
			}
		}
	}

	roleMetrics := [][2]string{
		{"kills", "kills_vs_role"},
		{"deaths", "deaths_vs_role"},
		{"kda_ratio", "kda_vs_role"},
		{"player_damage", "damage_vs_role"},
	}
	for _, m := range roleMetrics {
		for i := range out.Rows {
			out.Rows[i][m[1]] = 0.0
		}
	}

	// Role deviations use the registry's role assignments.
	roleByName := make(map[string]string)
	for _, pl := range a.parser.Players {
		if pl.Role != "" {
			roleByName[pl.Name] = pl.Role
		}
	}
	if len(roleByName) > 0 {
		byRole := make(map[string][]int) // role -> merged row indexes
		for i, r := range merged.Rows {
			if role := roleByName[rowString(r, "player_name")]; role != "" {
				byRole[role] = append(byRole[role], i)
			}
		}
		for _, idxs := range byRole {
			for _, m := range roleMetrics {
				src, dst := m[0], m[1]
				var sum float64
				for _, i := range idxs {
					sum += rowFloat(merged.Rows[i], src)
				}
				mean := sum / float64(len(idxs))
				if mean <= 0 {
					continue
				}
				for _, i := range idxs {
					out.Rows[i][dst] = table.Round2((rowFloat(merged.Rows[i], src)/mean - 1) * 100)
				}
			}
		}
	}

	return out, nil
}

func orUnknown(v any) any { return orDefault(v, "Unknown") }

func orDefault(v any, def string) any {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	if v == nil {
		return def
	}
	if _, ok := v.(string); ok {
		return def
	}
	return v
}

func nameSet(t *table.Table) map[string]bool {
	s := make(map[string]bool, t.Len())
	for _, r := range t.Rows {
		s[rowString(r, "player_name")] = true
	}
	return s
}

func intersect(dst map[string]bool, other map[string]bool) {
	for k := range dst {
		if !other[k] {
			delete(dst, k)
		}
	}
}

func indexByName(t *table.Table) map[string]table.Row {
	idx := make(map[string]table.Row, t.Len())
	for _, r := range t.Rows {
		name := rowString(r, "player_name")
		if _, seen := idx[name]; !seen {
			idx[name] = r
		}
	}
	return idx
}
