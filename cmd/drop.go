package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-smite-metrics/internal/storage"
)

var dropForce bool

// dropCmd deletes one match or, without arguments, the whole database file.
var dropCmd = &cobra.Command{
	Use:   "drop [match-prefix]",
	Short: "Delete a stored match or the whole database",
	Long:  "With a match prefix, delete that match and its player metrics. Without arguments, permanently delete the SQLite database file.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return dropMatch(args[0])
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

func dropMatch(prefix string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	match, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return err
	}
	if match == nil {
		return fmt.Errorf("no match found with prefix %q", prefix)
	}
	if err := db.DeleteMatch(match.MatchID); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted match %s\n", match.MatchID)
	return nil
}
