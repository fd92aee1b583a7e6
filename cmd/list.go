package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-smite-metrics/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'smitemetrics parse <combat.log>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-12s  %-9s  %7s  %7s  %s\n",
		"MATCH", "MODE", "DURATION", "PLAYERS", "EVENTS", "PARSED")
	fmt.Fprintf(os.Stdout, "%-20s  %-12s  %-9s  %7s  %7s  %s\n",
		"────────────────────", "────────────", "─────────", "───────", "───────", "──────────")
	for _, m := range matches {
		duration := "—"
		if d, ok := m.DurationMinutes(); ok {
			duration = fmt.Sprintf("%.1fm", d)
		}
		parsed := "—"
		if !m.ParsedAt.IsZero() {
			parsed = m.ParsedAt.Format("2006-01-02")
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-12s  %-9s  %7d  %7d  %s\n",
			m.MatchID, m.Mode, duration, m.Players, m.Events, parsed)
	}
	return nil
}
