package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-smite-metrics/internal/report"
	"github.com/pable/go-smite-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	cGreeting.Println("smitemetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("smitemetrics")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(db)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <match-prefix> [--player <name>]")
				continue
			}
			prefix := args[0]
			var focus string
			for i := 1; i+1 < len(args); i++ {
				if args[i] == "--player" {
					focus = args[i+1]
				}
			}
			shellShow(db, prefix, focus)
		case "player":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: player <name> [<name>...]")
				continue
			}
			shellPlayer(db, args)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q — type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored matches"},
		{"show <match-prefix>", "show a match's metrics"},
		{"show <match-prefix> --player <name>", "same, highlighting one player"},
		{"player <name> [...]", "cross-match history for one or more players"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList(db *storage.DB) {
	matches, err := db.ListMatches()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(matches) == 0 {
		cMuted.Println("No matches stored yet.")
		return
	}
	cHeader.Fprintf(os.Stdout, "%-20s  %-12s  %-9s  %7s  %7s\n",
		"MATCH", "MODE", "DURATION", "PLAYERS", "EVENTS")
	cMuted.Fprintf(os.Stdout, "%-20s  %-12s  %-9s  %7s  %7s\n",
		"────────────────────", "────────────", "─────────", "───────", "───────")
	for _, m := range matches {
		duration := "—"
		if d, ok := m.DurationMinutes(); ok {
			duration = fmt.Sprintf("%.1fm", d)
		}
		fmt.Fprintf(os.Stdout, "%-20s  %-12s  %-9s  %7d  %7d\n",
			m.MatchID, m.Mode, duration, m.Players, m.Events)
	}
}

func shellShow(db *storage.DB, prefix, focus string) {
	match, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if match == nil {
		fmt.Fprintf(os.Stderr, "no match found with prefix %q\n", prefix)
		return
	}
	metrics, err := db.GetPlayerMetrics(match.MatchID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintMatchSummary(os.Stdout, *match)
	report.PrintPlayerMetricsTable(os.Stdout, metrics, focus)
}

func shellPlayer(db *storage.DB, names []string) {
	for _, name := range names {
		metrics, err := db.GetAllPlayerMetrics(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		if len(metrics) == 0 {
			fmt.Fprintf(os.Stderr, "no data for player %q\n", name)
			continue
		}
		fmt.Fprintln(os.Stdout)
		cHeader.Fprintf(os.Stdout, "--- %s: %d match(es) ---\n", name, len(metrics))
		report.PrintPlayerHistory(os.Stdout, metrics)
	}
}
