// Package analyzer computes player-performance metric tables from a parsed
// combat log. Tables are pure functions of (parsed state, config), memoized
// by name; failures inside a single table are caught at its boundary and
// replaced with an empty table so siblings still compute.
package analyzer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pable/go-smite-metrics/internal/cache"
	"github.com/pable/go-smite-metrics/internal/parser"
	"github.com/pable/go-smite-metrics/internal/table"
)

var (
	// ErrMissingPrerequisite reports an analyzer invoked before the parser
	// populated its collections.
	ErrMissingPrerequisite = errors.New("analyzer prerequisite missing")
	// ErrPlayerNotFound reports a point lookup for an unknown player.
	ErrPlayerNotFound = errors.New("player not found")
)

// Analyzer is the contract shared by aggregation strategies: stock config,
// input validation and the full analysis pass.
type Analyzer interface {
	DefaultConfig() Config
	Validate() error
	Analyze() (*Result, error)
}

// Performance computes the performance metric family (KDA, damage, healing,
// economy, efficiency, comparative) plus the derived rollups.
type Performance struct {
	parser *parser.Parser
	cfg    Config
	cache  cache.Cache
	log    *slog.Logger

	// tableErrs records outright table failures (by cache key) since the
	// last invalidation; Analyze surfaces them in Result.Error.
	tableErrs map[string]string
}

var _ Analyzer = (*Performance)(nil)

// Option configures a Performance analyzer.
type Option func(*Performance)

// WithCache replaces the default in-process memoization cache.
func WithCache(c cache.Cache) Option {
	return func(a *Performance) { a.cache = c }
}

// WithLogger sets the diagnostics sink.
func WithLogger(log *slog.Logger) Option {
	return func(a *Performance) { a.log = log }
}

// New builds a Performance analyzer over a parsed log.
func New(p *parser.Parser, cfg Config, opts ...Option) *Performance {
	a := &Performance{
		parser:    p,
		cfg:       cfg,
		tableErrs: make(map[string]string),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cache == nil {
		a.cache = cache.NewMemory(0)
	}
	if a.log == nil {
		a.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return a
}

// DefaultConfig implements Analyzer.
func (a *Performance) DefaultConfig() Config { return DefaultConfig() }

// Config returns the active configuration.
func (a *Performance) Config() Config { return a.cfg }

// SetConfig replaces the configuration and clears the whole cache —
// invalidation is deliberately coarse.
func (a *Performance) SetConfig(cfg Config) {
	a.cfg = cfg
	a.ClearCache()
}

// ResetConfig restores the defaults and clears the cache.
func (a *Performance) ResetConfig() { a.SetConfig(DefaultConfig()) }

// ClearCache drops every memoized table.
func (a *Performance) ClearCache() {
	a.cache.Clear()
	a.tableErrs = make(map[string]string)
}

// Validate implements Analyzer: the metrics engine needs a completed parse
// with at least one combat event.
func (a *Performance) Validate() error {
	if a.parser == nil || len(a.parser.Events) == 0 {
		return fmt.Errorf("%w: no events, parse a log first", ErrMissingPrerequisite)
	}
	if len(a.parser.CombatEvents) == 0 {
		return fmt.Errorf("%w: no combat events in log", ErrMissingPrerequisite)
	}
	return nil
}

// cached returns the memoized table for key, computing it on a miss. A
// failing computation is logged, recorded and degraded to an empty table;
// the empty table is cached so siblings and retries see consistent state.
func (a *Performance) cached(key string, compute func() (*table.Table, error)) *table.Table {
	if t, ok := a.cache.Get(key); ok {
		return t
	}
	a.log.Debug("cache miss", "table", key)
	t, err := compute()
	if err != nil {
		a.log.Error("table computation failed", "table", key, "err", err)
		a.tableErrs[key] = err.Error()
		t = table.New(key)
	}
	if t == nil {
		t = table.New(key)
	}
	a.cache.Set(key, t)
	return t
}

// basePlayers is the roster every table is seeded from: the registry with
// the bot, team and role config filters applied.
func (a *Performance) basePlayers() *table.Table {
	t := a.parser.PlayersTable()
	return t.Filter(func(r table.Row) bool {
		name, _ := r["player_name"].(string)
		if !a.cfg.IncludeBots && isBotName(name) {
			return false
		}
		if a.cfg.TeamID != "" && rowString(r, "team_id") != a.cfg.TeamID {
			return false
		}
		if a.cfg.Role != "" && rowString(r, "role") != a.cfg.Role {
			return false
		}
		return true
	})
}

// isBotName detects practice-mode bots, which carry a Bot marker in their
// name; the log has no explicit flag.
func isBotName(name string) bool {
	return strings.HasPrefix(name, "Bot") ||
		strings.HasSuffix(name, "Bot") ||
		strings.Contains(name, "(Bot)")
}

// durationMinutes resolves the match duration: match start/end timestamps
// first, event-timestamp span as fallback. ok is false when neither source
// has data.
func (a *Performance) durationMinutes() (float64, bool) {
	if d, ok := a.parser.Match.DurationMinutes(); ok {
		return d, true
	}
	events := a.parser.EventsTable()
	var min, max float64
	seen := false
	for _, r := range events.Rows {
		ts, ok := table.AsFloat(r["event_timestamp"])
		if !ok {
			continue
		}
		if !seen || ts < min {
			min = ts
		}
		if !seen || ts > max {
			max = ts
		}
		seen = true
	}
	if !seen {
		return 0, false
	}
	return (max - min) / 60.0, true
}

func rowString(r table.Row, col string) string {
	s, _ := r[col].(string)
	return s
}

func rowFloat(r table.Row, col string) float64 {
	v, _ := table.AsFloat(r[col])
	return v
}
