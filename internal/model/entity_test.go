package model

import "testing"

func TestClassifyEntityPrecedence(t *testing.T) {
	players := map[string]*Player{
		"Alice":     {ID: 1, Name: "Alice"},
		"Gold Fury": {ID: 2, Name: "Gold Fury"}, // troll name colliding with an objective
	}

	cases := []struct {
		name string
		want EntityType
	}{
		{"Alice", EntityPlayer},
		{"Gold Fury", EntityPlayer}, // registry wins over the objective set
		{"Order Tower", EntityObjective},
		{"Alpha Chimera", EntityJungleCamp},
		{"Fire Archer", EntityMinion},
		{"Mysterious Stranger", EntityOther},
	}
	for _, c := range cases {
		if got := ClassifyEntity(c.name, players); got != c.want {
			t.Errorf("ClassifyEntity(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestDurationMinutes(t *testing.T) {
	var m Match
	if _, ok := m.DurationMinutes(); ok {
		t.Error("expected no duration for zero timestamps")
	}
}
