package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"motorag/internal/domain"
	"motorag/internal/pipeline"
)

var (
	flagBatchInput string
	flagBatchJSON  bool
	flagBatchSkill string
)

var batchCmd = &cobra.Command{
	Use:   "batch [question]...",
	Short: "Answer several questions concurrently",
	Long: `Answers each question independently and reports one outcome per question
in input order. Questions come from the arguments, or one per line from a
file given with --file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		queries := args
		if flagBatchInput != "" {
			fileQueries, err := readQueries(flagBatchInput)
			if err != nil {
				return err
			}
			queries = append(queries, fileQueries...)
		}
		if len(queries) == 0 {
			return fmt.Errorf("no questions given")
		}
		skill, err := domain.ParseSkillLevel(flagBatchSkill)
		if err != nil {
			return err
		}
		engine, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		results := engine.BatchQuery(cmd.Context(), queries, pipeline.QueryOptions{SkillLevel: skill})
		if flagBatchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		for i, result := range results {
			fmt.Printf("=== [%d/%d] %s ===\n", i+1, len(results), queries[i])
			printResult(result)
			fmt.Println()
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVar(&flagBatchInput, "file", "", "file with one question per line")
	batchCmd.Flags().StringVar(&flagBatchSkill, "skill", "", "skill level: beginner, intermediate, expert")
	batchCmd.Flags().BoolVar(&flagBatchJSON, "json", false, "emit the results as JSON")
	rootCmd.AddCommand(batchCmd)
}

func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line != "" {
			queries = append(queries, line)
		}
	}
	return queries, scanner.Err()
}
