package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-smite-metrics/internal/report"
	"github.com/pable/go-smite-metrics/internal/storage"
)

var playerCmd = &cobra.Command{
	Use:   "player <name>",
	Short: "Show a player's stored metrics across matches",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlayer,
}

func runPlayer(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	metrics, err := db.GetAllPlayerMetrics(args[0])
	if err != nil {
		return fmt.Errorf("query player: %w", err)
	}
	if len(metrics) == 0 {
		return fmt.Errorf("no data for player %q", args[0])
	}

	fmt.Fprintf(os.Stdout, "\n%s — %d match(es)\n\n", args[0], len(metrics))
	report.PrintPlayerHistory(os.Stdout, metrics)
	return nil
}
