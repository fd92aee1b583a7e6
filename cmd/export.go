package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-smite-metrics/internal/analyzer"
	"github.com/pable/go-smite-metrics/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export <combat.log>",
	Short: "Export computed metrics as JSON or CSV",
	Long: `Parse a combat log, run the full analysis and write the result.

JSON exports the complete result including every metric table; CSV exports
the merged per-player table. An --out path ending in .zst is
zstd-compressed.

Example:
  smitemetrics export match.log --format json --out match.json.zst
  smitemetrics export match.log --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or csv")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	p, err := parseLog(args[0])
	if err != nil {
		return err
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

	write := func(w io.Writer) error {
		if format == export.FormatCSV {
			return export.WriteCSV(w, a.MergedTable())
		}
		return export.WriteJSON(w, res)
	}

	if exportOut == "" {
		return write(os.Stdout)
	}
	out, err := export.Create(exportOut)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
	return nil
}
