package model

import "time"

// EventKind selects which specialization an Event carries.
type EventKind int

const (
	KindGeneric EventKind = iota
	KindCombat
	KindEconomy
	KindItem
	KindPlayer
)

func (k EventKind) String() string {
	switch k {
	case KindCombat:
		return "combat"
	case KindEconomy:
		return "economy"
	case KindItem:
		return "item"
	case KindPlayer:
		return "player"
	default:
		return "generic"
	}
}

// Match holds the metadata extracted from the log's "start" record plus the
// timestamp span of the whole log.
type Match struct {
	ID        string
	Mode      string
	StartTime time.Time // zero when no record carried a time field
	EndTime   time.Time
	Metadata  map[string]any
}

// DurationMinutes reports the match duration derived from the start/end
// timestamps. ok is false when either timestamp is missing.
func (m *Match) DurationMinutes() (float64, bool) {
	if m == nil || m.StartTime.IsZero() || m.EndTime.IsZero() {
		return 0, false
	}
	return m.EndTime.Sub(m.StartTime).Minutes(), true
}

// Player is a registry entry keyed by name. IDs are assigned in first-seen
// order starting at 1.
type Player struct {
	ID      int
	Name    string
	GodID   string
	GodName string
	Role    string
	TeamID  string
}

// Value is a best-effort numeric coercion of a raw log field. When the raw
// value does not convert, the original text is kept and IsNum is false.
type Value struct {
	Num   float64
	IsNum bool
	Str   string
}

// Float returns the numeric value, or 0 when the field was absent or
// non-numeric.
func (v Value) Float() float64 {
	if v.IsNum {
		return v.Num
	}
	return 0
}

// Empty reports whether the field was absent from the raw record.
func (v Value) Empty() bool { return !v.IsNum && v.Str == "" }

// String returns the original text for non-numeric values.
func (v Value) String() string { return v.Str }

// CombatData carries the CombatMsg specialization.
type CombatData struct {
	DamageAmount    float64
	MitigatedAmount float64
	IsCritical      bool
	AbilityID       string
	AbilityName     string
	SourceGod       string
	TargetGod       string
}

// EconomyData carries the RewardMsg specialization.
type EconomyData struct {
	RewardType string // lower-cased itemname, e.g. "currency", "experience"
	Amount     float64
	SourceType string // raw value2 as text
}

// ItemData carries the itemmsg specialization.
type ItemData struct {
	PurchaseLocation string // "x,y" derived from the event coordinates
}

// PlayerData carries the playermsg specialization. God/role fields are
// populated only for the GodHovered/GodPicked/RoleAssigned subtypes.
type PlayerData struct {
	GodID   string
	GodName string
	Role    string
}

// Event is one classified combat-log record. The base fields are always
// populated; exactly one specialization pointer is non-nil for non-generic
// kinds.
type Event struct {
	ID             int
	Type           string // raw eventType
	Subtype        string // raw type, "none" when absent
	RawTime        string
	Timestamp      time.Time // zero when unparseable
	SourceOwner    string
	TargetOwner    string
	SourcePlayerID int // 0 when the owner is not a registered player
	TargetPlayerID int
	LocationX      *float64
	LocationY      *float64
	ItemID         string
	ItemName       string
	Value1         Value
	Value2         Value
	Text           string
	MatchID        string
	Raw            map[string]any

	Kind    EventKind
	Combat  *CombatData
	Economy *EconomyData
	Item    *ItemData
	Player  *PlayerData
}
