package analyzer

import (
	"errors"
	"strings"
	"testing"

	"github.com/pable/go-smite-metrics/internal/parser"
	"github.com/pable/go-smite-metrics/internal/table"
)

// scenarioLog is a 10-minute match with three players: Alice and Carol on
// team 1, Bob on team 2. Alice kills Bob with Carol assisting; Alice also
// damages an objective, heals herself and Carol, and buys an item.
const scenarioLog = `{"eventType":"start","matchID":"m1","logMode":"Conquest","time":"2026.01.15-20.00.00"}
{"eventType":"playermsg","type":"RoleAssigned","sourceowner":"Alice","itemname":"Solo","value1":1,"time":"2026.01.15-20.00.01"}
{"eventType":"playermsg","type":"RoleAssigned","sourceowner":"Bob","itemname":"Mid","value1":2,"time":"2026.01.15-20.00.02"}
{"eventType":"playermsg","type":"RoleAssigned","sourceowner":"Carol","itemname":"Jungle","value1":1,"time":"2026.01.15-20.00.03"}
{"eventType":"playermsg","type":"GodPicked","sourceowner":"Alice","itemid":101,"itemname":"Anubis","value1":1,"time":"2026.01.15-20.00.04"}
{"eventType":"playermsg","type":"GodPicked","sourceowner":"Bob","itemid":202,"itemname":"Ra","value1":2,"time":"2026.01.15-20.00.05"}
{"eventType":"playermsg","type":"GodPicked","sourceowner":"Carol","itemid":303,"itemname":"Loki","value1":1,"time":"2026.01.15-20.00.06"}
{"eventType":"CombatMsg","type":"Damage","sourceowner":"Alice","targetowner":"Bob","value1":100,"value2":40,"time":"2026.01.15-20.01.00"}
{"eventType":"CombatMsg","type":"CritDamage","sourceowner":"Alice","targetowner":"Bob","value1":20,"time":"2026.01.15-20.01.10"}
{"eventType":"CombatMsg","type":"Damage","sourceowner":"Alice","targetowner":"Gold Fury","value1":50,"time":"2026.01.15-20.02.00"}
{"eventType":"CombatMsg","type":"Damage","sourceowner":"Bob","targetowner":"Alice","value1":80,"time":"2026.01.15-20.02.30"}
{"eventType":"CombatMsg","type":"Healing","sourceowner":"Alice","targetowner":"Alice","value1":30,"time":"2026.01.15-20.03.00"}
{"eventType":"CombatMsg","type":"Healing","sourceowner":"Alice","targetowner":"Carol","value1":20,"time":"2026.01.15-20.03.10"}
{"eventType":"RewardMsg","type":"Currency","sourceowner":"Bob","targetowner":"Alice","itemname":"Currency","value1":300,"value2":"kill","time":"2026.01.15-20.04.00"}
{"eventType":"RewardMsg","type":"Currency","sourceowner":"Gold Fury","targetowner":"Alice","itemname":"Currency","value1":150,"value2":"objective","time":"2026.01.15-20.04.10"}
{"eventType":"RewardMsg","type":"Experience","sourceowner":"Bob","targetowner":"Alice","itemname":"Experience","value1":200,"value2":"kill","time":"2026.01.15-20.04.20"}
{"eventType":"itemmsg","type":"ItemPurchase","sourceowner":"Alice","itemname":"Deathbringer","value1":3000,"time":"2026.01.15-20.05.00"}
{"eventType":"CombatMsg","type":"Assist","sourceowner":"Carol","targetowner":"Bob","value1":0,"time":"2026.01.15-20.09.50"}
{"eventType":"CombatMsg","type":"KillingBlow","sourceowner":"Alice","targetowner":"Bob","value1":150,"time":"2026.01.15-20.10.00"}
`

func scenarioAnalyzer(t *testing.T, cfg Config) *Performance {
	t.Helper()
	p := parser.New(nil)
	if err := p.Parse(strings.NewReader(scenarioLog)); err != nil {
		t.Fatalf("parse scenario: %v", err)
	}
	return New(p, cfg)
}

func rowByName(t *testing.T, tb *table.Table, name string) table.Row {
	t.Helper()
	for _, r := range tb.Rows {
		if r["player_name"] == name {
			return r
		}
	}
	t.Fatalf("no row for %q in %s", name, tb.Name)
	return nil
}

func TestKillsEqualDeaths(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	kda := a.KDA()
	if kda.Sum("kills") != kda.Sum("deaths") {
		t.Errorf("kills (%v) must equal deaths (%v) across the match",
			kda.Sum("kills"), kda.Sum("deaths"))
	}
}

func TestKDARatio(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	kda := a.KDA()

	alice := rowByName(t, kda, "Alice")
	if alice["kills"] != 1 || alice["deaths"] != 0 {
		t.Errorf("Alice counts: %v", alice)
	}
	// Zero deaths divide by 1.
	if alice["kda_ratio"] != 1.0 {
		t.Errorf("Alice kda_ratio: %v", alice["kda_ratio"])
	}

	bob := rowByName(t, kda, "Bob")
	if bob["deaths"] != 1 || bob["kda_ratio"] != 0.0 {
		t.Errorf("Bob row: %v", bob)
	}

	carol := rowByName(t, kda, "Carol")
	if carol["assists"] != 1 || carol["kda_ratio"] != 1.0 {
		t.Errorf("Carol row: %v", carol)
	}
}

func TestDamageBuckets(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	dmg := a.Damage()

	alice := rowByName(t, dmg, "Alice")
	total := alice["total_damage"].(float64)
	sum := alice["player_damage"].(float64) +
		alice["objective_damage"].(float64) +
		alice["minion_damage"].(float64) +
		alice["jungle_damage"].(float64)
	if total != sum {
		t.Errorf("bucket sum %v != total %v", sum, total)
	}
	if alice["player_damage"] != 120.0 || alice["objective_damage"] != 50.0 {
		t.Errorf("Alice buckets: %v", alice)
	}
	if alice["critical_hits"] != 1 {
		t.Errorf("Alice crits: %v", alice["critical_hits"])
	}
	if alice["highest_damage"] != 100.0 {
		t.Errorf("Alice highest: %v", alice["highest_damage"])
	}
	if alice["mitigated_damage"] != 40.0 {
		t.Errorf("Alice mitigated: %v", alice["mitigated_damage"])
	}
	if alice["damage_received"] != 80.0 {
		t.Errorf("Alice received: %v", alice["damage_received"])
	}
	// 170 damage over the 10-minute match.
	if alice["damage_per_minute"] != 17.0 {
		t.Errorf("Alice dpm: %v", alice["damage_per_minute"])
	}
}

func TestHealing(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	heal := a.Healing()

	alice := rowByName(t, heal, "Alice")
	if alice["healing_done"] != 50.0 || alice["self_healing"] != 30.0 || alice["ally_healing"] != 20.0 {
		t.Errorf("Alice healing: %v", alice)
	}
	carol := rowByName(t, heal, "Carol")
	if carol["healing_received"] != 20.0 {
		t.Errorf("Carol healing received: %v", carol["healing_received"])
	}
}

func TestEconomy(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	econ := a.Economy()

	alice := rowByName(t, econ, "Alice")
	if alice["total_gold"] != 450.0 || alice["gold_earned"] != 450.0 {
		t.Errorf("Alice gold: %v", alice)
	}
	if alice["gold_from_kills"] != 300.0 || alice["gold_from_objectives"] != 150.0 {
		t.Errorf("Alice gold sources: %v", alice)
	}
	if alice["gold_spent"] != 3000.0 {
		t.Errorf("Alice gold spent: %v", alice["gold_spent"])
	}
	if alice["total_xp"] != 200.0 || alice["xp_per_minute"] != 20.0 {
		t.Errorf("Alice xp: %v", alice)
	}
	if alice["gold_per_minute"] != 45.0 {
		t.Errorf("Alice gpm: %v", alice["gold_per_minute"])
	}

	// No economy data still yields a zero row, not a missing player.
	bob := rowByName(t, econ, "Bob")
	if bob["total_gold"] != 0.0 {
		t.Errorf("Bob gold: %v", bob["total_gold"])
	}
}

func TestEfficiency(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	eff := a.Efficiency()

	alice := rowByName(t, eff, "Alice")
	// 170 damage for 3000 gold spent.
	if alice["damage_efficiency"] != 0.06 {
		t.Errorf("Alice damage efficiency: %v", alice["damage_efficiency"])
	}
	// 1 kill, 0 assists, 0 deaths with default weights.
	if alice["survival_efficiency"] != 1.0 {
		t.Errorf("Alice survival efficiency: %v", alice["survival_efficiency"])
	}
	carol := rowByName(t, eff, "Carol")
	if carol["survival_efficiency"] != 0.5 {
		t.Errorf("Carol survival efficiency: %v", carol["survival_efficiency"])
	}

	// Alice deals all of team 1's god damage.
	if alice["combat_contribution"] != 100.0 {
		t.Errorf("Alice combat contribution: %v", alice["combat_contribution"])
	}
	// (1.0*120 + 0.7*50) / 170
	if alice["weighted_priority"] != 0.91 {
		t.Errorf("Alice weighted priority: %v", alice["weighted_priority"])
	}
	// 120 of 170 went to players.
	if alice["target_prioritization"] != 70.59 {
		t.Errorf("Alice target prioritization: %v", alice["target_prioritization"])
	}
}

func TestComparative(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	cmp := a.Comparative()

	// Mean kills is 1/3; Alice is 200% above, Bob 100% below.
	alice := rowByName(t, cmp, "Alice")
	if alice["kills_vs_avg"] != 200.0 {
		t.Errorf("Alice kills_vs_avg: %v", alice["kills_vs_avg"])
	}
	bob := rowByName(t, cmp, "Bob")
	if bob["kills_vs_avg"] != -100.0 {
		t.Errorf("Bob kills_vs_avg: %v", bob["kills_vs_avg"])
	}
}

func TestTeamSummary(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	res, err := a.Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.TeamSummary.Len() != 2 {
		t.Fatalf("expected 2 teams, got %d", res.TeamSummary.Len())
	}
	var team1 table.Row
	for _, r := range res.TeamSummary.Rows {
		if r["team_id"] == "1" {
			team1 = r
		}
	}
	if team1 == nil {
		t.Fatal("no summary row for team 1")
	}
	if team1["players"] != 2 || team1["kills"] != 1.0 {
		t.Errorf("team 1 summary: %v", team1)
	}
}

func TestTopPerformers(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	top := a.TopPerformers("kills", 1)
	if top.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", top.Len())
	}
	if top.Rows[0]["player_name"] != "Alice" {
		t.Errorf("top killer: %v", top.Rows[0]["player_name"])
	}
}

func TestPlayerNotFound(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	if _, err := a.PlayerPerformance("Ghost"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("expected ErrPlayerNotFound, got %v", err)
	}
	if _, err := a.PlayerPerformance("Alice"); err != nil {
		t.Errorf("expected Alice to resolve, got %v", err)
	}
}

func TestMinPlayerDamageFiltersWithoutError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinPlayerDamage = 1000
	a := scenarioAnalyzer(t, cfg)

	res, err := a.Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !res.KDA.Empty() {
		t.Errorf("expected empty KDA under a 1000 damage floor, got %d rows", res.KDA.Len())
	}
}

func TestAnalyzeTwiceIdentical(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	first, err := a.Analyze()
	if err != nil {
		t.Fatalf("first Analyze: %v", err)
	}
	second, err := a.Analyze()
	if err != nil {
		t.Fatalf("second Analyze: %v", err)
	}
	if first.KDA.Len() != second.KDA.Len() {
		t.Fatalf("row counts differ across runs")
	}
	for i, r := range first.KDA.Rows {
		if r["kda_ratio"] != second.KDA.Rows[i]["kda_ratio"] {
			t.Errorf("row %d differs across runs", i)
		}
	}
}

func TestSetConfigInvalidatesCache(t *testing.T) {
	a := scenarioAnalyzer(t, DefaultConfig())
	if a.KDA().Empty() {
		t.Fatal("expected KDA rows with default config")
	}

	cfg := a.Config()
	cfg.MinPlayerDamage = 1000
	a.SetConfig(cfg)

	if !a.KDA().Empty() {
		t.Error("expected cache invalidation to apply the new damage floor")
	}
}

func TestBotFiltering(t *testing.T) {
	log := `{"eventType":"playermsg","type":"GodPicked","sourceowner":"Alice","itemid":1,"itemname":"Anubis","value1":1,"time":"2026.01.15-20.00.00"}
{"eventType":"playermsg","type":"GodPicked","sourceowner":"CupidBot","itemid":2,"itemname":"Cupid","value1":2,"time":"2026.01.15-20.00.01"}
{"eventType":"CombatMsg","type":"Damage","sourceowner":"Alice","targetowner":"CupidBot","value1":10,"time":"2026.01.15-20.01.00"}
`
	p := parser.New(nil)
	if err := p.Parse(strings.NewReader(log)); err != nil {
		t.Fatalf("parse: %v", err)
	}

	a := New(p, DefaultConfig())
	if a.KDA().Len() != 1 {
		t.Errorf("expected bot excluded by default, got %d rows", a.KDA().Len())
	}

	cfg := DefaultConfig()
	cfg.IncludeBots = true
	a.SetConfig(cfg)
	if a.KDA().Len() != 2 {
		t.Errorf("expected bot included, got %d rows", a.KDA().Len())
	}
}

func TestValidateRequiresEvents(t *testing.T) {
	p := parser.New(nil)
	a := New(p, DefaultConfig())
	if err := a.Validate(); !errors.Is(err, ErrMissingPrerequisite) {
		t.Errorf("expected ErrMissingPrerequisite, got %v", err)
	}
	if _, err := a.Analyze(); !errors.Is(err, ErrMissingPrerequisite) {
		t.Errorf("expected Analyze to fail validation, got %v", err)
	}
}

func TestRoleFilterRestrictsRoster(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Role = "Mid"
	a := scenarioAnalyzer(t, cfg)

	kda := a.KDA()
	if kda.Len() != 1 || kda.Rows[0]["player_name"] != "Bob" {
		t.Errorf("expected only Bob for role Mid, got %v", kda.Rows)
	}
}
