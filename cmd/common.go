package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pable/go-smite-metrics/internal/analyzer"
	"github.com/pable/go-smite-metrics/internal/cache"
	"github.com/pable/go-smite-metrics/internal/model"
	"github.com/pable/go-smite-metrics/internal/parser"
)

// parseLog parses one combat log file.
func parseLog(path string) (*parser.Parser, error) {
	p := parser.New(logger())
	if err := p.ParseFile(path); err != nil {
		return nil, fmt.Errorf("parse log: %w", err)
	}
	if p.Match.ID == "" || p.Match.ID == "unknown" {
		// Logs from custom lobbies omit the match id; fall back to the
		// file name so the match is still addressable.
		base := filepath.Base(path)
		p.Match.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return p, nil
}

// newAnalyzer wires an analyzer over a parsed log, optionally backed by
// redis for the table cache.
func newAnalyzer(p *parser.Parser, cfg analyzer.Config, redisAddr string) *analyzer.Performance {
	opts := []analyzer.Option{analyzer.WithLogger(logger())}
	if redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		opts = append(opts, analyzer.WithCache(cache.NewRedis(client, p.Match.ID, time.Hour)))
	}
	return analyzer.New(p, cfg, opts...)
}

// summaryFromParse builds the stored match record from a completed parse.
func summaryFromParse(p *parser.Parser, sourceFile string) model.MatchSummary {
	return model.MatchSummary{
		MatchID:     p.Match.ID,
		SourceFile:  sourceFile,
		Mode:        p.Match.Mode,
		StartTime:   p.Match.StartTime,
		EndTime:     p.Match.EndTime,
		ParsedAt:    time.Now().UTC(),
		Players:     len(p.Players),
		Events:      len(p.Events),
		ParseErrors: p.ErrorCount,
	}
}
