package parser

import (
	"sort"

	"github.com/pable/go-smite-metrics/internal/model"
	"github.com/pable/go-smite-metrics/internal/table"
)

// Tabular projections over the parsed collections. Each call builds a fresh
// table; the metrics engine memoizes downstream, so recomputation here is
// cheap and keeps the parser state immutable.

var baseEventCols = []string{
	"event_id", "event_type", "event_subtype", "event_time", "event_timestamp",
	"source_owner", "target_owner", "source_player_id", "target_player_id",
	"location_x", "location_y", "item_id", "item_name",
	"value1", "value2", "text",
}

// PlayersTable projects the registry, ordered by player id.
func (p *Parser) PlayersTable() *table.Table {
	t := table.New("players",
		"player_id", "player_name", "god_id", "god_name", "role", "team_id")
	players := make([]*model.Player, 0, len(p.Players))
	for _, pl := range p.Players {
		players = append(players, pl)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	for _, pl := range players {
		t.Rows = append(t.Rows, table.Row{
			"player_id":   pl.ID,
			"player_name": pl.Name,
			"god_id":      cell(pl.GodID),
			"god_name":    cell(pl.GodName),
			"role":        cell(pl.Role),
			"team_id":     cell(pl.TeamID),
		})
	}
	return t
}

// EventsTable projects all events, timestamp-sorted. The raw payload map is
// deliberately excluded.
func (p *Parser) EventsTable() *table.Table {
	return p.eventTable("events", p.Events, nil)
}

// CombatTable projects combat events with their specialization columns.
func (p *Parser) CombatTable() *table.Table {
	return p.eventTable("combat", p.CombatEvents,
		[]string{"damage_amount", "mitigated_amount", "is_critical",
			"ability_id", "ability_name", "source_god", "target_god"})
}

// EconomyTable projects reward events with their specialization columns.
func (p *Parser) EconomyTable() *table.Table {
	return p.eventTable("economy", p.EconomyEvents,
		[]string{"reward_type", "amount", "source_type"})
}

// ItemsTable projects item-purchase events.
func (p *Parser) ItemsTable() *table.Table {
	return p.eventTable("items", p.ItemEvents, []string{"purchase_location"})
}

func (p *Parser) eventTable(name string, events []*model.Event, extra []string) *table.Table {
	cols := append(append([]string(nil), baseEventCols...), extra...)
	t := table.New(name, cols...)

	sorted := append([]*model.Event(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, tj := sorted[i].Timestamp, sorted[j].Timestamp
		if ti.IsZero() || tj.IsZero() {
			return !ti.IsZero() // rows without a timestamp sort last
		}
		return ti.Before(tj)
	})

	for _, ev := range sorted {
		r := table.Row{
			"event_id":      ev.ID,
			"event_type":    ev.Type,
			"event_subtype": ev.Subtype,
			"event_time":    cell(ev.RawTime),
			"source_owner":  cell(ev.SourceOwner),
			"target_owner":  cell(ev.TargetOwner),
			"item_id":       cell(ev.ItemID),
			"item_name":     cell(ev.ItemName),
			"value1":        valueCell(ev.Value1),
			"value2":        valueCell(ev.Value2),
			"text":          cell(ev.Text),
		}
		if !ev.Timestamp.IsZero() {
			r["event_timestamp"] = float64(ev.Timestamp.Unix())
		}
		if ev.SourcePlayerID != 0 {
			r["source_player_id"] = ev.SourcePlayerID
		}
		if ev.TargetPlayerID != 0 {
			r["target_player_id"] = ev.TargetPlayerID
		}
		if ev.LocationX != nil {
			r["location_x"] = *ev.LocationX
		}
		if ev.LocationY != nil {
			r["location_y"] = *ev.LocationY
		}
		switch ev.Kind {
		case model.KindCombat:
			r["damage_amount"] = ev.Combat.DamageAmount
			r["mitigated_amount"] = ev.Combat.MitigatedAmount
			r["is_critical"] = ev.Combat.IsCritical
			r["ability_id"] = cell(ev.Combat.AbilityID)
			r["ability_name"] = cell(ev.Combat.AbilityName)
			r["source_god"] = cell(ev.Combat.SourceGod)
			r["target_god"] = cell(ev.Combat.TargetGod)
		case model.KindEconomy:
			r["reward_type"] = cell(ev.Economy.RewardType)
			r["amount"] = ev.Economy.Amount
			r["source_type"] = cell(ev.Economy.SourceType)
		case model.KindItem:
			r["purchase_location"] = cell(ev.Item.PurchaseLocation)
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

// CombatantsTable lists every distinct combat participant with its entity
// classification and, for players, registry attributes.
func (p *Parser) CombatantsTable() *table.Table {
	t := table.New("combatants", "name", "type", "player_id", "god_name", "team_id")

	seen := make(map[string]struct{})
	var names []string
	for _, ev := range p.CombatEvents {
		for _, n := range []string{ev.SourceOwner, ev.TargetOwner} {
			if n == "" {
				continue
			}
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)

	for _, n := range names {
		r := table.Row{"name": n, "type": string(p.ClassifyEntity(n))}
		if pl, ok := p.Players[n]; ok {
			r["player_id"] = pl.ID
			r["god_name"] = cell(pl.GodName)
			r["team_id"] = cell(pl.TeamID)
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

// EnhancedCombatTable is the combat projection with source/target entity
// types left-joined on by owner name.
func (p *Parser) EnhancedCombatTable() *table.Table {
	return p.enhance(p.CombatTable())
}

// EnhancedEconomyTable is the economy projection with the same entity-type
// join, used for the reward-source breakdown.
func (p *Parser) EnhancedEconomyTable() *table.Table {
	return p.enhance(p.EconomyTable())
}

func (p *Parser) enhance(t *table.Table) *table.Table {
	out := table.New(t.Name, append(append([]string(nil), t.Cols...),
		"source_entity_type", "target_entity_type")...)
	for _, r := range t.Rows {
		nr := make(table.Row, len(r)+2)
		for k, v := range r {
			nr[k] = v
		}
		if src, ok := r["source_owner"].(string); ok && src != "" {
			nr["source_entity_type"] = string(p.ClassifyEntity(src))
		}
		if tgt, ok := r["target_owner"].(string); ok && tgt != "" {
			nr["target_entity_type"] = string(p.ClassifyEntity(tgt))
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// cell maps an empty string to a missing value.
func cell(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valueCell(v model.Value) any {
	if v.IsNum {
		return v.Num
	}
	if v.Str != "" {
		return v.Str
	}
	return nil
}
