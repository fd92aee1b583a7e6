package table

import (
	"errors"
	"testing"
)

func TestAppendAddsNewColumnsSorted(t *testing.T) {
	tb := New("t", "a")
	tb.Append(Row{"a": 1, "c": 2, "b": 3})

	want := []string{"a", "b", "c"}
	if len(tb.Cols) != len(want) {
		t.Fatalf("expected %d cols, got %v", len(want), tb.Cols)
	}
	for i, c := range want {
		if tb.Cols[i] != c {
			t.Errorf("col %d: expected %q, got %q", i, c, tb.Cols[i])
		}
	}
}

func TestFilterAndSelect(t *testing.T) {
	tb := New("t", "name", "score")
	tb.Rows = []Row{
		{"name": "a", "score": 10.0},
		{"name": "b", "score": 20.0},
	}

	f := tb.Filter(func(r Row) bool { return r["name"] == "b" })
	if f.Len() != 1 || f.Rows[0]["name"] != "b" {
		t.Fatalf("unexpected filter result: %v", f.Rows)
	}

	s := tb.Select("score", "missing")
	if len(s.Cols) != 1 || s.Cols[0] != "score" {
		t.Errorf("expected select to skip missing columns, got %v", s.Cols)
	}
}

func TestSortByDescMissingLast(t *testing.T) {
	tb := New("t", "v")
	tb.Rows = []Row{
		{"v": 1.0},
		{},
		{"v": 3.0},
	}
	tb.SortByDesc("v")

	if tb.Rows[0]["v"] != 3.0 || tb.Rows[1]["v"] != 1.0 {
		t.Errorf("unexpected order: %v", tb.Rows)
	}
	if _, ok := tb.Rows[2]["v"]; ok {
		t.Error("expected row without value to sort last")
	}
}

func TestColumnMissing(t *testing.T) {
	tb := New("t", "a")
	if _, err := tb.Column("nope"); !errors.Is(err, ErrColumnMissing) {
		t.Errorf("expected ErrColumnMissing, got %v", err)
	}
}

func TestMeanExcludesNonNumeric(t *testing.T) {
	tb := New("t", "v")
	tb.Rows = []Row{{"v": 2.0}, {"v": 4.0}, {"v": "n/a"}}
	if got := tb.Mean("v"); got != 3.0 {
		t.Errorf("expected mean 3.0 over numeric rows only, got %v", got)
	}
}

func TestLeftJoin(t *testing.T) {
	left := New("l", "player_id", "player_name", "kills")
	left.Rows = []Row{
		{"player_id": 1, "player_name": "a", "kills": 5},
		{"player_id": 2, "player_name": "b", "kills": 3},
	}
	// Right carries the id as float64, as it would after a JSON round trip.
	right := New("r", "player_id", "player_name", "damage", "kills")
	right.Rows = []Row{
		{"player_id": 1.0, "player_name": "a", "damage": 900.0, "kills": 99},
	}

	out, err := left.LeftJoin(right, []string{"player_id", "player_name"})
	if err != nil {
		t.Fatalf("LeftJoin: %v", err)
	}
	if out.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", out.Len())
	}
	if out.Rows[0]["damage"] != 900.0 {
		t.Errorf("expected joined damage for a, got %v", out.Rows[0]["damage"])
	}
	// Left value wins on overlapping columns.
	if out.Rows[0]["kills"] != 5 {
		t.Errorf("expected left kills to win, got %v", out.Rows[0]["kills"])
	}
	if _, ok := out.Rows[1]["damage"]; ok {
		t.Error("expected no joined value for unmatched row")
	}
}

func TestLeftJoinMissingKey(t *testing.T) {
	left := New("l", "a")
	right := New("r", "b")
	if _, err := left.LeftJoin(right, []string{"a"}); !errors.Is(err, ErrColumnMissing) {
		t.Errorf("expected ErrColumnMissing, got %v", err)
	}
}

func TestSafeDivide(t *testing.T) {
	if got := SafeDivide(10, 2, -1); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
	if got := SafeDivide(10, 0, -1); got != -1 {
		t.Errorf("expected default on zero denominator, got %v", got)
	}
}

func TestSafeDivideSlice(t *testing.T) {
	got := SafeDivideSlice([]float64{10, 20, 30}, []float64{2, 0}, 0)
	want := []float64{5, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestAsFloat(t *testing.T) {
	if v, ok := AsFloat("42.5"); !ok || v != 42.5 {
		t.Errorf("string coercion failed: %v %v", v, ok)
	}
	if _, ok := AsFloat("not a number"); ok {
		t.Error("expected non-numeric string to fail")
	}
	if v, ok := AsFloat(true); !ok || v != 1 {
		t.Errorf("bool coercion failed: %v %v", v, ok)
	}
	if _, ok := AsFloat(nil); ok {
		t.Error("expected nil to fail")
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(1.005); got != 1.0 && got != 1.01 {
		t.Errorf("unexpected rounding: %v", got)
	}
	if got := Round2(2.345); got != 2.35 && got != 2.34 {
		t.Errorf("unexpected rounding: %v", got)
	}
	if got := Round2(3.0); got != 3.0 {
		t.Errorf("expected 3.0, got %v", got)
	}
}
