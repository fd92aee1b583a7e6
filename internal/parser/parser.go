// Package parser ingests SMITE 2 combat logs: line-delimited JSON records,
// optionally BOM-prefixed and comma-terminated. A parse is a strict
// four-phase pass — raw decode, match metadata, player registry, event
// promotion — so that owner references always resolve against the complete
// end-of-match registry.
package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/pable/go-smite-metrics/internal/model"
)

var (
	// ErrSourceNotFound reports a missing log source.
	ErrSourceNotFound = errors.New("log source not found")
	// ErrNoRecords reports a log from which zero lines decoded.
	ErrNoRecords = errors.New("no valid records in log")
)

// maxLineBytes bounds a single log line; combat log lines are short but the
// scanner default (64 KiB) is too tight for modded payloads.
const maxLineBytes = 1 << 20

// Parser holds the reconstructed state of one combat log. Re-parsing clears
// and rebuilds everything; consumers treat the exported state as read-only.
type Parser struct {
	log *slog.Logger

	Match   *model.Match
	Players map[string]*model.Player // keyed by player name
	Events  []*model.Event

	CombatEvents  []*model.Event
	EconomyEvents []*model.Event
	ItemEvents    []*model.Event
	PlayerEvents  []*model.Event

	rawRecords   []map[string]any
	nextPlayerID int
	nextEventID  int

	// ErrorCount is the number of lines that failed to decode on the last
	// parse.
	ErrorCount int
}

// New returns a parser logging diagnostics to log. A nil logger discards
// them.
func New(log *slog.Logger) *Parser {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Parser{log: log}
}

// ParseFile parses the combat log at path.
func (p *Parser) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()
	return p.Parse(f)
}

// Parse reads line-delimited JSON records from r and populates the match,
// player registry and event collections. Individual undecodable lines are
// counted and skipped; Parse fails only when nothing decodes.
func (p *Parser) Parse(r io.Reader) error {
	p.reset()

	if err := p.collectRaw(r); err != nil {
		return err
	}
	if len(p.rawRecords) == 0 {
		return ErrNoRecords
	}

	p.extractMatchMetadata()
	p.extractPlayers()
	p.processEvents()

	p.log.Info("parse complete",
		"records", len(p.rawRecords),
		"events", len(p.Events),
		"players", len(p.Players),
		"decode_errors", p.ErrorCount)
	return nil
}

func (p *Parser) reset() {
	p.Match = nil
	p.Players = make(map[string]*model.Player)
	p.Events = nil
	p.CombatEvents = nil
	p.EconomyEvents = nil
	p.ItemEvents = nil
	p.PlayerEvents = nil
	p.rawRecords = nil
	p.nextPlayerID = 1
	p.nextEventID = 1
	p.ErrorCount = 0
}

// ---- Phase 1: raw decode ----

func (p *Parser) collectRaw(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := cleanLine(sc.Text())
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			p.ErrorCount++
			if p.ErrorCount <= 10 {
				p.log.Warn("undecodable line", "line", lineNo, "err", err)
			}
			continue
		}
		p.rawRecords = append(p.rawRecords, rec)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	return nil
}

// ---- Phase 2: match metadata ----

func (p *Parser) extractMatchMetadata() {
	m := &model.Match{ID: "unknown", Mode: "unknown", Metadata: map[string]any{}}

	for _, rec := range p.rawRecords {
		if asString(rec["eventType"]) != "start" {
			continue
		}
		if id := asString(rec["matchID"]); id != "" {
			m.ID = id
		}
		if mode := asString(rec["logMode"]); mode != "" {
			m.Mode = mode
		}
		for k, v := range rec {
			m.Metadata[k] = v
		}
		break
	}
	if len(m.Metadata) == 0 {
		p.log.Warn("no start record in log")
	}

	// The timestamp span of the log is the only duration source at this
	// layer: first and last record carrying a time field.
	var first, last string
	for _, rec := range p.rawRecords {
		t, ok := rec["time"]
		if !ok {
			continue
		}
		if first == "" {
			first = asString(t)
		}
		last = asString(t)
	}
	if ts, ok := parseTimestamp(first); ok {
		m.StartTime = ts
	}
	if ts, ok := parseTimestamp(last); ok {
		m.EndTime = ts
	}

	p.Match = m
}

// ---- Phase 3: player registry ----

func (p *Parser) extractPlayers() {
	// RoleAssigned first, then GodPicked, each in log order; repeats update
	// in place (last write wins). This phase completes before any event is
	// built so owner ids reflect the final registry.
	for _, rec := range p.rawRecords {
		if asString(rec["eventType"]) != "playermsg" || asString(rec["type"]) != "RoleAssigned" {
			continue
		}
		name := asString(rec["sourceowner"])
		if name == "" {
			continue
		}
		pl := p.playerFor(name)
		pl.Role = asString(rec["itemname"])
		pl.TeamID = asString(rec["value1"])
	}

	for _, rec := range p.rawRecords {
		if asString(rec["eventType"]) != "playermsg" || asString(rec["type"]) != "GodPicked" {
			continue
		}
		name := asString(rec["sourceowner"])
		if name == "" {
			continue
		}
		pl := p.playerFor(name)
		pl.GodID = asString(rec["itemid"])
		pl.GodName = asString(rec["itemname"])
		pl.TeamID = asString(rec["value1"])
	}

	p.log.Debug("player registry built", "players", len(p.Players))
}

func (p *Parser) playerFor(name string) *model.Player {
	if pl, ok := p.Players[name]; ok {
		return pl
	}
	pl := &model.Player{ID: p.nextPlayerID, Name: name}
	p.nextPlayerID++
	p.Players[name] = pl
	return pl
}

// ---- Phase 4: event promotion ----

func (p *Parser) processEvents() {
	for _, rec := range p.rawRecords {
		eventType := asString(rec["eventType"])
		if eventType == "start" {
			continue
		}
		ev := p.baseEvent(rec, eventType)

		switch eventType {
		case "CombatMsg":
			p.promoteCombat(ev)
			p.CombatEvents = append(p.CombatEvents, ev)
		case "RewardMsg":
			p.promoteEconomy(ev)
			p.EconomyEvents = append(p.EconomyEvents, ev)
		case "itemmsg":
			p.promoteItem(ev)
			p.ItemEvents = append(p.ItemEvents, ev)
		case "playermsg":
			p.promotePlayer(ev)
			p.PlayerEvents = append(p.PlayerEvents, ev)
		}
		p.Events = append(p.Events, ev)
	}
}

func (p *Parser) baseEvent(rec map[string]any, eventType string) *model.Event {
	subtype := asString(rec["type"])
	if subtype == "" {
		subtype = "none"
	}

	ev := &model.Event{
		ID:          p.nextEventID,
		Type:        eventType,
		Subtype:     subtype,
		RawTime:     asString(rec["time"]),
		SourceOwner: asString(rec["sourceowner"]),
		TargetOwner: asString(rec["targetowner"]),
		LocationX:   asFloatPtr(rec["locationx"]),
		LocationY:   asFloatPtr(rec["locationy"]),
		ItemID:      asString(rec["itemid"]),
		ItemName:    asString(rec["itemname"]),
		Value1:      toValue(rec["value1"]),
		Value2:      toValue(rec["value2"]),
		Text:        asString(rec["text"]),
		MatchID:     p.Match.ID,
		Raw:         rec,
	}
	p.nextEventID++

	if ts, ok := parseTimestamp(ev.RawTime); ok {
		ev.Timestamp = ts
	}
	if pl, ok := p.Players[ev.SourceOwner]; ok {
		ev.SourcePlayerID = pl.ID
	}
	if pl, ok := p.Players[ev.TargetOwner]; ok {
		ev.TargetPlayerID = pl.ID
	}
	return ev
}

func (p *Parser) promoteCombat(ev *model.Event) {
	ev.Kind = model.KindCombat
	c := &model.CombatData{
		DamageAmount:    ev.Value1.Float(),
		MitigatedAmount: ev.Value2.Float(),
		IsCritical:      ev.Subtype == "CritDamage",
		AbilityID:       ev.ItemID,
		AbilityName:     ev.ItemName,
	}
	// God labels reflect the final registry, not mid-match state.
	if pl, ok := p.Players[ev.SourceOwner]; ok {
		c.SourceGod = pl.GodName
	}
	if pl, ok := p.Players[ev.TargetOwner]; ok {
		c.TargetGod = pl.GodName
	}
	ev.Combat = c
}

func (p *Parser) promoteEconomy(ev *model.Event) {
	ev.Kind = model.KindEconomy
	ev.Economy = &model.EconomyData{
		RewardType: strings.ToLower(ev.ItemName),
		Amount:     ev.Value1.Float(),
		SourceType: ev.Value2.String(),
	}
}

func (p *Parser) promoteItem(ev *model.Event) {
	ev.Kind = model.KindItem
	d := &model.ItemData{}
	if ev.LocationX != nil && ev.LocationY != nil {
		d.PurchaseLocation = fmt.Sprintf("%.1f,%.1f", *ev.LocationX, *ev.LocationY)
	}
	ev.Item = d
}

func (p *Parser) promotePlayer(ev *model.Event) {
	ev.Kind = model.KindPlayer
	d := &model.PlayerData{}
	switch ev.Subtype {
	case "GodHovered", "GodPicked":
		d.GodID = ev.ItemID
		d.GodName = ev.ItemName
	case "RoleAssigned":
		d.Role = ev.ItemName
	}
	ev.Player = d
}

// ClassifyEntity classifies a participant name against this parse's
// registry. Precedence: Player > Objective > Jungle Camp > Minion > Other.
func (p *Parser) ClassifyEntity(name string) model.EntityType {
	return model.ClassifyEntity(name, p.Players)
}
