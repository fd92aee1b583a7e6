package parser

import (
	"errors"
	"strings"
	"testing"
)

// sampleLog is a minimal but complete log: start record, role and god picks
// for two players, and a handful of combat/reward/item events. One line is
// comma-terminated and one carries a BOM, as real exports do.
const sampleLog = `` +
	"\ufeff" + `{"eventType":"start","matchID":"match-42","logMode":"Conquest","time":"2026.01.15-20.00.00"}
{"eventType":"playermsg","type":"RoleAssigned","sourceowner":"Alice","itemname":"Solo","value1":1,"time":"2026.01.15-20.00.01"}
{"eventType":"playermsg","type":"RoleAssigned","sourceowner":"Bob","itemname":"Mid","value1":2,"time":"2026.01.15-20.00.02"}
{"eventType":"CombatMsg","type":"Damage","sourceowner":"Alice","targetowner":"Bob","value1":100,"value2":40,"itemname":"Spear Strike","time":"2026.01.15-20.01.00"},
{"eventType":"playermsg","type":"GodPicked","sourceowner":"Alice","itemid":101,"itemname":"Anubis","value1":1,"time":"2026.01.15-20.00.05"}
{"eventType":"playermsg","type":"GodPicked","sourceowner":"Bob","itemid":202,"itemname":"Ra","value1":2,"time":"2026.01.15-20.00.06"}
{"eventType":"RewardMsg","type":"Currency","sourceowner":"Bob","targetowner":"Alice","itemname":"Currency","value1":300,"value2":"kill","time":"2026.01.15-20.02.00"}
{"eventType":"itemmsg","type":"ItemPurchase","sourceowner":"Alice","itemname":"Deathbringer","value1":3000,"locationx":10.5,"locationy":-3.25,"time":"2026.01.15-20.03.00"}
{"eventType":"CombatMsg","type":"KillingBlow","sourceowner":"Alice","targetowner":"Bob","value1":150,"time":"2026.01.15-20.10.00"}
`

func parseSample(t *testing.T) *Parser {
	t.Helper()
	p := New(nil)
	if err := p.Parse(strings.NewReader(sampleLog)); err != nil {
		t.Fatalf("parse sample log: %v", err)
	}
	return p
}

func TestParseBuildsRegistryAndEvents(t *testing.T) {
	p := parseSample(t)

	if p.Match.ID != "match-42" {
		t.Errorf("match id: got %q", p.Match.ID)
	}
	if p.Match.Mode != "Conquest" {
		t.Errorf("match mode: got %q", p.Match.Mode)
	}
	if d, ok := p.Match.DurationMinutes(); !ok || d != 10.0 {
		t.Errorf("duration: got %v ok=%v, want 10", d, ok)
	}

	if len(p.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(p.Players))
	}
	alice := p.Players["Alice"]
	if alice.ID != 1 || alice.Role != "Solo" || alice.GodName != "Anubis" || alice.TeamID != "1" {
		t.Errorf("unexpected Alice registry entry: %+v", alice)
	}
	bob := p.Players["Bob"]
	if bob.ID != 2 || bob.GodID != "202" {
		t.Errorf("unexpected Bob registry entry: %+v", bob)
	}

	// The start record never becomes an event.
	if len(p.Events) != 8 {
		t.Errorf("expected 8 events, got %d", len(p.Events))
	}
	if len(p.CombatEvents) != 2 || len(p.EconomyEvents) != 1 || len(p.ItemEvents) != 1 || len(p.PlayerEvents) != 4 {
		t.Errorf("unexpected event splits: combat=%d economy=%d item=%d player=%d",
			len(p.CombatEvents), len(p.EconomyEvents), len(p.ItemEvents), len(p.PlayerEvents))
	}
	if p.ErrorCount != 0 {
		t.Errorf("expected no decode errors, got %d", p.ErrorCount)
	}
}

func TestEventIDsMonotonic(t *testing.T) {
	p := parseSample(t)
	for i, ev := range p.Events {
		if ev.ID != i+1 {
			t.Fatalf("event %d has id %d", i, ev.ID)
		}
	}
}

func TestCombatEventPromotion(t *testing.T) {
	p := parseSample(t)

	dmg := p.CombatEvents[0]
	if dmg.Combat == nil {
		t.Fatal("expected combat specialization")
	}
	if dmg.Combat.DamageAmount != 100 || dmg.Combat.MitigatedAmount != 40 {
		t.Errorf("damage amounts: %+v", dmg.Combat)
	}
	if dmg.Combat.IsCritical {
		t.Error("Damage subtype must not be critical")
	}
	// The damage event precedes the GodPicked line in the log, but god
	// labels and player ids resolve against the final registry.
	if dmg.Combat.SourceGod != "Anubis" || dmg.Combat.TargetGod != "Ra" {
		t.Errorf("god resolution: %+v", dmg.Combat)
	}
	if dmg.SourcePlayerID != 1 || dmg.TargetPlayerID != 2 {
		t.Errorf("player id resolution: source=%d target=%d", dmg.SourcePlayerID, dmg.TargetPlayerID)
	}
}

func TestEconomyAndItemPromotion(t *testing.T) {
	p := parseSample(t)

	reward := p.EconomyEvents[0]
	if reward.Economy.RewardType != "currency" {
		t.Errorf("reward type: got %q", reward.Economy.RewardType)
	}
	if reward.Economy.Amount != 300 || reward.Economy.SourceType != "kill" {
		t.Errorf("reward payload: %+v", reward.Economy)
	}

	item := p.ItemEvents[0]
	if item.Item.PurchaseLocation != "10.5,-3.2" {
		t.Errorf("purchase location: got %q", item.Item.PurchaseLocation)
	}
}

func TestMalformedLinesSkipped(t *testing.T) {
	log := `{"eventType":"start","matchID":"m","time":"2026.01.15-20.00.00"}
this is not json
{"eventType":"CombatMsg","type":"Damage","sourceowner":"A","targetowner":"B","value1":10,"time":"2026.01.15-20.01.00"}
`
	p := New(nil)
	if err := p.Parse(strings.NewReader(log)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.ErrorCount != 1 {
		t.Errorf("expected 1 decode error, got %d", p.ErrorCount)
	}
	if len(p.CombatEvents) != 1 {
		t.Errorf("expected the valid combat event to survive, got %d", len(p.CombatEvents))
	}
}

func TestParseNoRecords(t *testing.T) {
	p := New(nil)
	err := p.Parse(strings.NewReader("garbage\nmore garbage\n"))
	if !errors.Is(err, ErrNoRecords) {
		t.Errorf("expected ErrNoRecords, got %v", err)
	}
}

func TestParseFileNotFound(t *testing.T) {
	p := New(nil)
	err := p.ParseFile("/nonexistent/combat.log")
	if !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestReparseResetsState(t *testing.T) {
	p := parseSample(t)
	if err := p.Parse(strings.NewReader(sampleLog)); err != nil {
		t.Fatalf("second parse: %v", err)
	}
	if len(p.Events) != 8 || len(p.Players) != 2 {
		t.Errorf("state accumulated across parses: events=%d players=%d", len(p.Events), len(p.Players))
	}
	if p.Events[0].ID != 1 {
		t.Errorf("event ids not reset: first id %d", p.Events[0].ID)
	}
}

func TestPlayersTableOrderedByID(t *testing.T) {
	p := parseSample(t)
	pt := p.PlayersTable()
	if pt.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", pt.Len())
	}
	if pt.Rows[0]["player_name"] != "Alice" || pt.Rows[1]["player_name"] != "Bob" {
		t.Errorf("unexpected order: %v", pt.Rows)
	}
}

func TestEventsTableSortedByTimestamp(t *testing.T) {
	p := parseSample(t)
	et := p.EventsTable()

	var last float64
	for _, r := range et.Rows {
		ts, ok := r["event_timestamp"].(float64)
		if !ok {
			continue
		}
		if ts < last {
			t.Fatalf("events not timestamp-sorted")
		}
		last = ts
	}
}

func TestEnhancedCombatEntityTypes(t *testing.T) {
	log := `{"eventType":"playermsg","type":"GodPicked","sourceowner":"Alice","itemid":1,"itemname":"Anubis","value1":1,"time":"2026.01.15-20.00.00"}
{"eventType":"CombatMsg","type":"Damage","sourceowner":"Alice","targetowner":"Gold Fury","value1":50,"time":"2026.01.15-20.01.00"}
{"eventType":"CombatMsg","type":"Damage","sourceowner":"Alice","targetowner":"Fire Archer","value1":20,"time":"2026.01.15-20.01.01"}
`
	p := New(nil)
	if err := p.Parse(strings.NewReader(log)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	ec := p.EnhancedCombatTable()
	if ec.Rows[0]["source_entity_type"] != "Player" {
		t.Errorf("source type: %v", ec.Rows[0]["source_entity_type"])
	}
	if ec.Rows[0]["target_entity_type"] != "Objective" {
		t.Errorf("objective target type: %v", ec.Rows[0]["target_entity_type"])
	}
	if ec.Rows[1]["target_entity_type"] != "Minion" {
		t.Errorf("minion target type: %v", ec.Rows[1]["target_entity_type"])
	}
}
