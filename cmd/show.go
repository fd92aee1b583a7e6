package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-smite-metrics/internal/report"
	"github.com/pable/go-smite-metrics/internal/storage"
)

var showFocusPlayer string

var showCmd = &cobra.Command{
	Use:   "show <match-prefix>",
	Short: "Show stored metrics for a match",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFocusPlayer, "player", "", "highlight one player's row")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	match, err := db.GetMatchByPrefix(args[0])
	if err != nil {
		return err
	}
	if match == nil {
		return fmt.Errorf("no match found with prefix %q", args[0])
	}
	metrics, err := db.GetPlayerMetrics(match.MatchID)
	if err != nil {
		return err
	}

	report.PrintMatchSummary(os.Stdout, *match)
	report.PrintPlayerMetricsTable(os.Stdout, metrics, showFocusPlayer)
	return nil
}
