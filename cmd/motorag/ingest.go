package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"motorag/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]...",
	Short: "Chunk, classify, and index manual text files",
	Long: `Splits each manual into pages on form feeds, chunks pages into overlapping
sentence windows, classifies every chunk's safety level, embeds the chunks,
and writes them to the configured vector store. Useful with a persistent
store such as Qdrant; the in-memory store is loaded per run with --corpus.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		embedder, err := buildEmbedder()
		if err != nil {
			return err
		}
		store, err := buildStore()
		if err != nil {
			return err
		}
		chunker := ingest.NewChunker(cfg.Ingest.SentencesPerChunk, cfg.Ingest.OverlapSentences)
		ing := ingest.New(chunker, embedder, store, logger)
		summary, err := ing.IngestFiles(cmd.Context(), args)
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d file(s): %d pages, %d chunks\n", summary.Files, summary.Pages, summary.Chunks)
		fmt.Printf("Safety levels: %d low, %d medium, %d high\n",
			summary.SafetyCount[1], summary.SafetyCount[2], summary.SafetyCount[3])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
