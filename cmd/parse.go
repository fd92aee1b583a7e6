package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pable/go-smite-metrics/internal/analyzer"
	"github.com/pable/go-smite-metrics/internal/report"
	"github.com/pable/go-smite-metrics/internal/storage"
)

var parseFocusPlayer string

var parseCmd = &cobra.Command{
	Use:   "parse <combat.log>",
	Short: "Parse a combat log file and store metrics",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseFocusPlayer, "player", "", "focus player name")
}

func runParse(cmd *cobra.Command, args []string) error {
	logPath := args[0]

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	fmt.Fprintf(os.Stdout, "Parsing %s...\n", logPath)
	p, err := parseLog(logPath)
	if err != nil {
		return err
	}

	exists, err := db.MatchExists(p.Match.ID)
	if err != nil {
		return fmt.Errorf("check match: %w", err)
	}
	if exists {
		fmt.Fprintf(os.Stdout, "Match %s already stored — showing cached results.\n\n", p.Match.ID)
		return showByMatchID(db, p.Match.ID)
	}

	cfg, err := analyzer.ConfigFromEnv()
	if err != nil {
		return err
	}
	a := newAnalyzer(p, cfg, "")
	res, err := a.Analyze()
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	summary := summaryFromParse(p, logPath)
	if err := db.InsertMatch(summary); err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	metrics := analyzer.PlayerMetricsRows(p.Match.ID, a.MergedTable(), res.Roster)
	if err := db.InsertPlayerMetrics(metrics); err != nil {
		return fmt.Errorf("insert player metrics: %w", err)
	}

	report.PrintMatchSummary(os.Stdout, summary)
	report.PrintPlayerMetricsTable(os.Stdout, metrics, parseFocusPlayer)
	report.PrintTopPerformers(os.Stdout, res.TopPerformers)
	if res.Error != "" {
		fmt.Fprintf(os.Stderr, "warning: some tables failed: %s\n", res.Error)
	}
	return nil
}

func showByMatchID(db *storage.DB, matchID string) error {
	match, err := db.GetMatchByPrefix(matchID)
	if err != nil || match == nil {
		return fmt.Errorf("match not found: %s", matchID)
	}
	metrics, err := db.GetPlayerMetrics(match.MatchID)
	if err != nil {
		return err
	}
	report.PrintMatchSummary(os.Stdout, *match)
	report.PrintPlayerMetricsTable(os.Stdout, metrics, parseFocusPlayer)
	return nil
}
