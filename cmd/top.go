package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-smite-metrics/internal/analyzer"
	"github.com/pable/go-smite-metrics/internal/report"
)

var topLimit int

var topCmd = &cobra.Command{
	Use:   "top <combat.log> <metric>",
	Short: "Rank players in a log by one metric",
	Long: `Rank the players of a combat log by a single metric column, e.g.
kda_ratio, kills, player_damage, damage_per_minute, gold_per_minute,
damage_efficiency or survival_efficiency.`,
	Args: cobra.ExactArgs(2),
	RunE: runTop,
}

func init() {
	topCmd.Flags().IntVar(&topLimit, "limit", 3, "number of players to show")
}

func runTop(cmd *cobra.Command, args []string) error {
	p, err := parseLog(args[0])
	if err != nil {
		return err
	}
	cfg, err := analyzer.ConfigFromEnv()
	if err != nil {
		return err
	}
	a := newAnalyzer(p, cfg, "")
	if err := a.Validate(); err != nil {
		return err
	}

	metric := args[1]
	top := a.TopPerformers(metric, topLimit)
	if top.Empty() {
		return fmt.Errorf("no data for metric %q", metric)
	}
	fmt.Fprintf(os.Stdout, "\nTop %d by %s:\n", topLimit, metric)
	report.PrintMetricTable(os.Stdout, top, "")
	return nil
}
