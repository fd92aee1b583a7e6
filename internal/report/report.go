package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-smite-metrics/internal/model"
	"github.com/pable/go-smite-metrics/internal/table"
)

// PrintMatchSummary prints a one-line summary header for the match.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	duration := "—"
	if d, ok := s.DurationMinutes(); ok {
		duration = fmt.Sprintf("%.1fm", d)
	}
	fmt.Fprintf(w, "\nMatch: %s  |  Mode: %s  |  Duration: %s  |  Players: %d  |  Events: %d\n\n",
		shortID(s.MatchID), s.Mode, duration, s.Players, s.Events)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	if id == "" {
		return "unknown"
	}
	return id
}

func newRenderer(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintMetricTable renders any metric table with its own column order.
// If focusName is non-empty, that player's row is marked with ">".
func PrintMetricTable(w io.Writer, t *table.Table, focusName string) {
	if t.Empty() {
		return
	}
	out := newRenderer(w)

	headers := make([]any, 0, len(t.Cols)+1)
	headers = append(headers, " ")
	for _, c := range t.Cols {
		headers = append(headers, strings.ToUpper(c))
	}
	out.Header(headers...)

	for _, r := range t.Rows {
		marker := " "
		if name, _ := r["player_name"].(string); focusName != "" && name == focusName {
			marker = ">"
		}
		cells := make([]any, 0, len(t.Cols)+1)
		cells = append(cells, marker)
		for _, c := range t.Cols {
			cells = append(cells, formatCell(r[c]))
		}
		out.Append(cells...)
	}
	out.Render()
}

// formatCell renders one cell. Whole floats drop the fraction, other numbers
// keep two decimals, missing values show a dash.
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "—"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return fmt.Sprintf("%.2f", x)
	case string:
		if x == "" {
			return "—"
		}
		return x
	case bool:
		if x {
			return "yes"
		}
		return "no"
	default:
		return fmt.Sprintf("%v", x)
	}
}

// PrintTopPerformers prints the category leader tables in stable order.
func PrintTopPerformers(w io.Writer, top map[string]*table.Table) {
	categories := make([]string, 0, len(top))
	for c := range top {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		t := top[c]
		if t.Empty() {
			continue
		}
		fmt.Fprintf(w, "\nTop %s:\n", c)
		PrintMetricTable(w, t, "")
	}
}

// PrintPlayerMetricsTable prints stored per-player metric rows, one row per
// player. If focusName is non-empty, that player's row is marked with ">".
func PrintPlayerMetricsTable(w io.Writer, metrics []model.PlayerMetrics, focusName string) {
	out := newRenderer(w)
	out.Header(
		" ", "NAME", "GOD", "ROLE", "TEAM", "K", "D", "A", "KDA",
		"PLAYER_DMG", "TOTAL_DMG", "DPM", "HEALING", "GOLD", "GPM", "DMG_EFF", "SURV_EFF",
	)

	for _, m := range metrics {
		marker := " "
		if focusName != "" && m.PlayerName == focusName {
			marker = ">"
		}
		out.Append(
			marker,
			m.PlayerName,
			orDash(m.GodName),
			orDash(m.Role),
			orDash(m.TeamID),
			strconv.Itoa(m.Kills),
			strconv.Itoa(m.Deaths),
			strconv.Itoa(m.Assists),
			fmt.Sprintf("%.2f", m.KDARatio),
			fmt.Sprintf("%.0f", m.PlayerDamage),
			fmt.Sprintf("%.0f", m.TotalDamage),
			fmt.Sprintf("%.1f", m.DamagePerMinute),
			fmt.Sprintf("%.0f", m.HealingDone),
			fmt.Sprintf("%.0f", m.GoldEarned),
			fmt.Sprintf("%.1f", m.GoldPerMinute),
			fmt.Sprintf("%.2f", m.DamageEfficiency),
			fmt.Sprintf("%.2f", m.SurvivalEfficiency),
		)
	}
	out.Render()
}

// PrintPlayerHistory prints one player's stored rows across matches.
func PrintPlayerHistory(w io.Writer, metrics []model.PlayerMetrics) {
	out := newRenderer(w)
	out.Header(
		"MATCH", "GOD", "ROLE", "K", "D", "A", "KDA",
		"PLAYER_DMG", "DPM", "GOLD", "GPM", "DMG_EFF",
	)
	for _, m := range metrics {
		out.Append(
			shortID(m.MatchID),
			orDash(m.GodName),
			orDash(m.Role),
			strconv.Itoa(m.Kills),
			strconv.Itoa(m.Deaths),
			strconv.Itoa(m.Assists),
			fmt.Sprintf("%.2f", m.KDARatio),
			fmt.Sprintf("%.0f", m.PlayerDamage),
			fmt.Sprintf("%.1f", m.DamagePerMinute),
			fmt.Sprintf("%.0f", m.GoldEarned),
			fmt.Sprintf("%.1f", m.GoldPerMinute),
			fmt.Sprintf("%.2f", m.DamageEfficiency),
		)
	}
	out.Render()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
