package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pable/go-smite-metrics/internal/model"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleMatch(id string, parsedAt time.Time) model.MatchSummary {
	start := time.Date(2026, 1, 15, 20, 0, 0, 0, time.UTC)
	return model.MatchSummary{
		MatchID:    id,
		SourceFile: "combat.log",
		Mode:       "Conquest",
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		ParsedAt:   parsedAt,
		Players:    10,
		Events:     5000,
	}
}

func TestInsertAndExists(t *testing.T) {
	db := openTestDB(t)

	exists, err := db.MatchExists("m1")
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if exists {
		t.Fatal("expected no match in a fresh db")
	}

	if err := db.InsertMatch(sampleMatch("m1", time.Now().UTC())); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}
	exists, err = db.MatchExists("m1")
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if !exists {
		t.Error("expected match after insert")
	}

	// Re-insert must not fail; the row is replaced.
	if err := db.InsertMatch(sampleMatch("m1", time.Now().UTC())); err != nil {
		t.Errorf("re-insert: %v", err)
	}
}

func TestListMatchesOrder(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 1, 15, 21, 0, 0, 0, time.UTC)

	if err := db.InsertMatch(sampleMatch("older", base)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := db.InsertMatch(sampleMatch("newer", base.Add(time.Hour))); err != nil {
		t.Fatalf("insert: %v", err)
	}

	matches, err := db.ListMatches()
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].MatchID != "newer" || matches[1].MatchID != "older" {
		t.Errorf("expected most recently parsed first, got %s then %s",
			matches[0].MatchID, matches[1].MatchID)
	}
	if d, ok := matches[0].DurationMinutes(); !ok || d != 30.0 {
		t.Errorf("duration survived round trip poorly: %v ok=%v", d, ok)
	}
}

func TestGetMatchByPrefix(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertMatch(sampleMatch("abcdef123456", time.Now().UTC())); err != nil {
		t.Fatalf("insert: %v", err)
	}

	m, err := db.GetMatchByPrefix("abcdef")
	if err != nil {
		t.Fatalf("GetMatchByPrefix: %v", err)
	}
	if m == nil || m.MatchID != "abcdef123456" {
		t.Errorf("unexpected match: %+v", m)
	}

	m, err = db.GetMatchByPrefix("zzz")
	if err != nil {
		t.Fatalf("GetMatchByPrefix: %v", err)
	}
	if m != nil {
		t.Errorf("expected nil for unknown prefix, got %+v", m)
	}
}

func TestPlayerMetricsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertMatch(sampleMatch("m1", time.Now().UTC())); err != nil {
		t.Fatalf("insert match: %v", err)
	}

	rows := []model.PlayerMetrics{
		{
			MatchID: "m1", PlayerID: 1, PlayerName: "Alice", GodName: "Anubis",
			Role: "Solo", TeamID: "1",
			Kills: 7, Deaths: 2, Assists: 4, KDARatio: 5.5,
			TotalDamage: 25000, PlayerDamage: 18000, DamagePerMinute: 833.33,
			CriticalHits: 12, HealingDone: 1500,
			TotalGold: 12000, GoldSpent: 11000, GoldPerMinute: 400,
			DamageEfficiency: 2.27, SurvivalEfficiency: 3.0,
		},
		{
			MatchID: "m1", PlayerID: 2, PlayerName: "Bob", GodName: "Ra",
			Role: "Mid", TeamID: "2",
			Kills: 3, Deaths: 5, Assists: 6, KDARatio: 1.8,
		},
	}
	if err := db.InsertPlayerMetrics(rows); err != nil {
		t.Fatalf("InsertPlayerMetrics: %v", err)
	}

	got, err := db.GetPlayerMetrics("m1")
	if err != nil {
		t.Fatalf("GetPlayerMetrics: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	// Ordered by kills desc.
	if got[0].PlayerName != "Alice" || got[1].PlayerName != "Bob" {
		t.Errorf("unexpected order: %s, %s", got[0].PlayerName, got[1].PlayerName)
	}
	alice := got[0]
	if alice.MatchID != "m1" || alice.KDARatio != 5.5 || alice.PlayerDamage != 18000 {
		t.Errorf("round trip mangled values: %+v", alice)
	}
	if alice.CriticalHits != 12 || alice.Role != "Solo" {
		t.Errorf("round trip mangled values: %+v", alice)
	}
}

func TestGetAllPlayerMetricsAcrossMatches(t *testing.T) {
	db := openTestDB(t)
	base := time.Date(2026, 1, 15, 21, 0, 0, 0, time.UTC)

	for i, id := range []string{"m1", "m2"} {
		if err := db.InsertMatch(sampleMatch(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("insert match: %v", err)
		}
		if err := db.InsertPlayerMetrics([]model.PlayerMetrics{
			{MatchID: id, PlayerID: 1, PlayerName: "Alice", Kills: i},
		}); err != nil {
			t.Fatalf("insert metrics: %v", err)
		}
	}

	got, err := db.GetAllPlayerMetrics("Alice")
	if err != nil {
		t.Fatalf("GetAllPlayerMetrics: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	// Most recently parsed match first.
	if got[0].MatchID != "m2" || got[1].MatchID != "m1" {
		t.Errorf("unexpected order: %s, %s", got[0].MatchID, got[1].MatchID)
	}

	if got, _ := db.GetAllPlayerMetrics("Nobody"); len(got) != 0 {
		t.Errorf("expected no rows for unknown player, got %d", len(got))
	}
}

func TestDeleteMatchRemovesMetrics(t *testing.T) {
	db := openTestDB(t)
	if err := db.InsertMatch(sampleMatch("m1", time.Now().UTC())); err != nil {
		t.Fatalf("insert match: %v", err)
	}
	if err := db.InsertPlayerMetrics([]model.PlayerMetrics{
		{MatchID: "m1", PlayerID: 1, PlayerName: "Alice"},
	}); err != nil {
		t.Fatalf("insert metrics: %v", err)
	}

	if err := db.DeleteMatch("m1"); err != nil {
		t.Fatalf("DeleteMatch: %v", err)
	}
	exists, err := db.MatchExists("m1")
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if exists {
		t.Error("expected match gone")
	}
	rows, err := db.GetPlayerMetrics("m1")
	if err != nil {
		t.Fatalf("GetPlayerMetrics: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected metrics gone, got %d rows", len(rows))
	}
}
