package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"motorag/internal/summarize"
	"motorag/internal/tui"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Start an interactive question answering session",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := buildEngine(cmd.Context())
		if err != nil {
			return err
		}
		summary := corpusOverview()
		p := tea.NewProgram(tui.New(engine, summary), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

// corpusOverview builds a one-line gist of the loaded corpus for the session
// header. An unreadable file just shortens the overview.
func corpusOverview() string {
	if len(flagCorpus) == 0 {
		return "Connected to an existing index."
	}
	var texts []string
	for _, path := range flagCorpus {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		texts = append(texts, string(data))
	}
	if len(texts) == 0 {
		return fmt.Sprintf("%d manual(s) loaded.", len(flagCorpus))
	}
	return summarize.New().Overview(texts, 2)
}
