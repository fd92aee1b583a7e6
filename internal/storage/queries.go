package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/pable/go-smite-metrics/internal/model"
)

const timeLayout = time.RFC3339

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// MatchExists returns true if a match with the given id is already stored.
func (db *DB) MatchExists(matchID string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertMatch inserts a match record. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertMatch(s model.MatchSummary) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO matches(match_id, source_file, mode, start_time, end_time, parsed_at, players, events, parse_errors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.MatchID, s.SourceFile, s.Mode,
		formatTime(s.StartTime), formatTime(s.EndTime), formatTime(s.ParsedAt),
		s.Players, s.Events, s.ParseErrors,
	)
	return err
}

// ListMatches returns all stored match summaries ordered by parsed_at desc.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT match_id, source_file, mode, start_time, end_time, parsed_at, players, events, parse_errors
		FROM matches ORDER BY parsed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		var s model.MatchSummary
		var start, end, parsed string
		if err := rows.Scan(&s.MatchID, &s.SourceFile, &s.Mode,
			&start, &end, &parsed, &s.Players, &s.Events, &s.ParseErrors); err != nil {
			return nil, err
		}
		s.StartTime = parseTime(start)
		s.EndTime = parseTime(end)
		s.ParsedAt = parseTime(parsed)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the first match whose id starts with the given prefix.
func (db *DB) GetMatchByPrefix(prefix string) (*model.MatchSummary, error) {
	var s model.MatchSummary
	var start, end, parsed string
	err := db.conn.QueryRow(`
		SELECT match_id, source_file, mode, start_time, end_time, parsed_at, players, events, parse_errors
		FROM matches WHERE match_id LIKE ? LIMIT 1`, prefix+"%").
		Scan(&s.MatchID, &s.SourceFile, &s.Mode,
			&start, &end, &parsed, &s.Players, &s.Events, &s.ParseErrors)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.StartTime = parseTime(start)
	s.EndTime = parseTime(end)
	s.ParsedAt = parseTime(parsed)
	return &s, nil
}

// DeleteMatch removes a match and, via the cascade, its player metrics.
func (db *DB) DeleteMatch(matchID string) error {
	_, err := db.conn.Exec("DELETE FROM player_metrics WHERE match_id = ?", matchID)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec("DELETE FROM matches WHERE match_id = ?", matchID)
	return err
}

// InsertPlayerMetrics bulk-inserts player metric rows in a transaction.
func (db *DB) InsertPlayerMetrics(metrics []model.PlayerMetrics) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO player_metrics(
			match_id, player_id, player_name, god_name, role, team_id,
			kills, deaths, assists, kda_ratio,
			total_damage, player_damage, objective_damage, minion_damage,
			jungle_damage, damage_per_minute, mitigated_damage,
			damage_received, critical_hits, highest_damage,
			healing_done,
			total_gold, gold_earned, gold_spent, gold_per_minute,
			total_xp, xp_per_minute,
			damage_efficiency, gold_efficiency, survival_efficiency,
			combat_contribution, target_prioritization, weighted_priority
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range metrics {
		_, err = stmt.Exec(
			m.MatchID, m.PlayerID, m.PlayerName, m.GodName, m.Role, m.TeamID,
			m.Kills, m.Deaths, m.Assists, m.KDARatio,
			m.TotalDamage, m.PlayerDamage, m.ObjectiveDamage, m.MinionDamage,
			m.JungleDamage, m.DamagePerMinute, m.MitigatedDamage,
			m.DamageReceived, m.CriticalHits, m.HighestDamage,
			m.HealingDone,
			m.TotalGold, m.GoldEarned, m.GoldSpent, m.GoldPerMinute,
			m.TotalXP, m.XPPerMinute,
			m.DamageEfficiency, m.GoldEfficiency, m.SurvivalEfficiency,
			m.CombatContribution, m.TargetPrioritization, m.WeightedPriority,
		)
		if err != nil {
			return fmt.Errorf("insert player_metrics for %s: %w", m.PlayerName, err)
		}
	}
	return tx.Commit()
}

const playerMetricCols = `
	player_id, player_name, god_name, role, team_id,
	kills, deaths, assists, kda_ratio,
	total_damage, player_damage, objective_damage, minion_damage,
	jungle_damage, damage_per_minute, mitigated_damage,
	damage_received, critical_hits, highest_damage,
	healing_done,
	total_gold, gold_earned, gold_spent, gold_per_minute,
	total_xp, xp_per_minute,
	damage_efficiency, gold_efficiency, survival_efficiency,
	combat_contribution, target_prioritization, weighted_priority`

func scanPlayerMetrics(rows *sql.Rows, matchID string, withMatchID bool) ([]model.PlayerMetrics, error) {
	var out []model.PlayerMetrics
	for rows.Next() {
		var m model.PlayerMetrics
		dest := []any{}
		if withMatchID {
			dest = append(dest, &m.MatchID)
		}
		dest = append(dest,
			&m.PlayerID, &m.PlayerName, &m.GodName, &m.Role, &m.TeamID,
			&m.Kills, &m.Deaths, &m.Assists, &m.KDARatio,
			&m.TotalDamage, &m.PlayerDamage, &m.ObjectiveDamage, &m.MinionDamage,
			&m.JungleDamage, &m.DamagePerMinute, &m.MitigatedDamage,
			&m.DamageReceived, &m.CriticalHits, &m.HighestDamage,
			&m.HealingDone,
			&m.TotalGold, &m.GoldEarned, &m.GoldSpent, &m.GoldPerMinute,
			&m.TotalXP, &m.XPPerMinute,
			&m.DamageEfficiency, &m.GoldEfficiency, &m.SurvivalEfficiency,
			&m.CombatContribution, &m.TargetPrioritization, &m.WeightedPriority,
		)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if !withMatchID {
			m.MatchID = matchID
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetPlayerMetrics returns all player metric rows for a match id, ordered by
// kills desc.
func (db *DB) GetPlayerMetrics(matchID string) ([]model.PlayerMetrics, error) {
	rows, err := db.conn.Query(
		"SELECT"+playerMetricCols+" FROM player_metrics WHERE match_id = ? ORDER BY kills DESC", matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayerMetrics(rows, matchID, false)
}

// GetAllPlayerMetrics returns all stored rows for a player name across
// matches, most recently parsed first.
func (db *DB) GetAllPlayerMetrics(playerName string) ([]model.PlayerMetrics, error) {
	rows, err := db.conn.Query(`
		SELECT p.match_id,`+playerMetricCols+`
		FROM player_metrics p
		JOIN matches m ON m.match_id = p.match_id
		WHERE p.player_name = ?
		ORDER BY m.parsed_at DESC`, playerName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPlayerMetrics(rows, "", true)
}
