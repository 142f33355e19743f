package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"motorag/internal/quality"
)

var flagEvalJSON bool

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Run the built-in quality evaluation suite",
	Long: `Runs the built-in query suite (maintenance, troubleshooting, safety,
specifications, procedures) through the pipeline and scores every answer on
completeness, safety handling, technical content, structure, and source
attribution.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		report, err := quality.NewEvaluator(engine).Run(cmd.Context())
		if err != nil {
			return err
		}
		if flagEvalJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		fmt.Printf("Overall score: %.0f%%\n\n", report.OverallScore*100)
		names := make([]string, 0, len(report.Categories))
		for name := range report.Categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cat := report.Categories[name]
			fmt.Printf("%-16s %.0f%% (%d queries)\n", name, cat.AverageScore*100, len(cat.Queries))
		}
		if len(report.Recommendations) > 0 {
			fmt.Println("\nRecommendations:")
			for _, rec := range report.Recommendations {
				fmt.Printf("  - %s\n", rec)
			}
		}
		return nil
	},
}

func init() {
	evalCmd.Flags().BoolVar(&flagEvalJSON, "json", false, "emit the report as JSON")
	rootCmd.AddCommand(evalCmd)
}
