package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-smite-metrics/internal/analyzer"
	"github.com/pable/go-smite-metrics/internal/report"
)

var (
	analyzePlayer     string
	analyzeTeam       string
	analyzeRole       string
	analyzeMinDamage  float64
	analyzeMinHealing float64
	analyzeBots       bool
	analyzeRedis      string
	analyzeAll        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <combat.log>",
	Short: "Analyze a combat log without storing it",
	Long: `Parse a combat log and print the full set of performance metric tables.
Configuration defaults come from SMITEMETRICS_* environment variables; flags
override them for this run.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzePlayer, "player", "", "restrict KDA and damage tables to one player name")
	analyzeCmd.Flags().StringVar(&analyzeTeam, "team", "", "restrict the roster to one team id")
	analyzeCmd.Flags().StringVar(&analyzeRole, "role", "", "restrict the roster to one role")
	analyzeCmd.Flags().Float64Var(&analyzeMinDamage, "min-damage", 0, "minimum player damage to include a row")
	analyzeCmd.Flags().Float64Var(&analyzeMinHealing, "min-healing", 0, "minimum healing done to include a row")
	analyzeCmd.Flags().BoolVar(&analyzeBots, "include-bots", false, "include practice bots in the roster")
	analyzeCmd.Flags().StringVar(&analyzeRedis, "redis", "", "redis address for the table cache (e.g. localhost:6379)")
	analyzeCmd.Flags().BoolVar(&analyzeAll, "all", false, "print every table, including comparative deviations")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	p, err := parseLog(args[0])
	if err != nil {
		return err
	}

	cfg, err := analyzer.ConfigFromEnv()
	if err != nil {
		return err
	}
	if analyzePlayer != "" {
		cfg.PlayerName = analyzePlayer
	}
	if analyzeTeam != "" {
		cfg.TeamID = analyzeTeam
	}
	if analyzeRole != "" {
		cfg.Role = analyzeRole
	}
	if analyzeMinDamage > 0 {
		cfg.MinPlayerDamage = analyzeMinDamage
	}
	if analyzeMinHealing > 0 {
		cfg.MinHealing = analyzeMinHealing
	}
	if analyzeBots {
		cfg.IncludeBots = true
	}

	a := newAnalyzer(p, cfg, analyzeRedis)
	res, err := a.Analyze()
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	report.PrintMatchSummary(os.Stdout, summaryFromParse(p, args[0]))

	fmt.Fprintln(os.Stdout, "KDA:")
	report.PrintMetricTable(os.Stdout, res.KDA, analyzePlayer)
	fmt.Fprintln(os.Stdout, "\nDamage:")
	report.PrintMetricTable(os.Stdout, res.Damage, analyzePlayer)
	if !res.Healing.Empty() {
		fmt.Fprintln(os.Stdout, "\nHealing:")
		report.PrintMetricTable(os.Stdout, res.Healing, analyzePlayer)
	}
	if !res.Economy.Empty() {
		fmt.Fprintln(os.Stdout, "\nEconomy:")
		report.PrintMetricTable(os.Stdout, res.Economy, analyzePlayer)
	}
	if !res.Efficiency.Empty() {
		fmt.Fprintln(os.Stdout, "\nEfficiency:")
		report.PrintMetricTable(os.Stdout, res.Efficiency, analyzePlayer)
	}
	if analyzeAll && !res.Comparative.Empty() {
		fmt.Fprintln(os.Stdout, "\nComparative:")
		report.PrintMetricTable(os.Stdout, res.Comparative, analyzePlayer)
	}

	fmt.Fprintln(os.Stdout, "\nTeams:")
	report.PrintMetricTable(os.Stdout, res.TeamSummary, "")
	fmt.Fprintln(os.Stdout, "\nDamage breakdown:")
	report.PrintMetricTable(os.Stdout, res.DamageBreakdown, "")
	report.PrintTopPerformers(os.Stdout, res.TopPerformers)

	if res.Error != "" {
		fmt.Fprintf(os.Stderr, "warning: some tables failed: %s\n", res.Error)
	}
	return nil
}
