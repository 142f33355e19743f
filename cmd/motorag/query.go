package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"motorag/internal/domain"
	"motorag/internal/pipeline"
)

var (
	flagTopK  int
	flagSkill string
	flagJSON  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a single question from the loaded manuals",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		skill, err := domain.ParseSkillLevel(flagSkill)
		if err != nil {
			return err
		}
		engine, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		result := engine.AnswerQuery(cmd.Context(), strings.Join(args, " "), pipeline.QueryOptions{
			TopK:       flagTopK,
			SkillLevel: skill,
		})
		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		printResult(result)
		return nil
	},
}

func init() {
	queryCmd.Flags().IntVar(&flagTopK, "top-k", 0, "number of passages to retrieve")
	queryCmd.Flags().StringVar(&flagSkill, "skill", "", "skill level: beginner, intermediate, expert")
	queryCmd.Flags().BoolVar(&flagJSON, "json", false, "emit the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func printResult(result domain.QueryResult) {
	if !result.Success {
		fmt.Printf("Query failed: %s\n", result.Error)
		return
	}
	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, s := range result.Sources {
			fmt.Printf("  %s, page %d (%.0f%% relevant)\n", s.Source, s.Page, s.Similarity*100)
		}
	}
	mode := "generated"
	if result.FallbackMode {
		mode = "fallback"
	}
	fmt.Printf("\n%d chunks, confidence %.0f%%, %s, %s\n",
		result.ChunksFound, result.Confidence*100, mode, result.ProcessingTime.Round(time.Millisecond))
}
