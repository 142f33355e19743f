// Package ingest turns manual text files into classified, embedded chunks
// in the vector store.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"motorag/internal/domain"
	"motorag/internal/safety"
)

// Chunker splits text into sentence groups with overlap. Extracted manual
// pages are separated by form feeds, so page numbers can be inferred from
// chunk positions.
type Chunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewChunker(sentencesPerChunk, overlapSentences int) *Chunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	return &Chunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

// Chunk splits one page of text into overlapping sentence windows.
func (c *Chunker) Chunk(text string) []string {
	sentences := c.splitter.FindAllString(text, -1)
	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		sentences = []string{trimmed}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}
	var chunks []string
	i := 0
	for i < len(sentences) {
		end := i + c.sentencesPerChunk
		if end > len(sentences) {
			end = len(sentences)
		}
		chunks = append(chunks, strings.Join(sentences[i:end], " "))
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
		if i < 0 {
			i = 0
		}
	}
	return chunks
}

// Summary reports what one ingestion run produced.
type Summary struct {
	Files       int
	Pages       int
	Chunks      int
	SafetyCount [4]int // chunks per safety level, indexed 1..3
}

// Ingester builds the corpus: chunk, classify, embed, upsert.
type Ingester struct {
	chunker  *Chunker
	assessor *safety.Assessor
	embedder domain.Embedder
	store    domain.VectorStore
	log      *zap.Logger
}

func New(chunker *Chunker, embedder domain.Embedder, store domain.VectorStore, log *zap.Logger) *Ingester {
	if log == nil {
		log = zap.NewNop()
	}
	return &Ingester{
		chunker:  chunker,
		assessor: safety.NewAssessor(safety.DefaultVocabulary()),
		embedder: embedder,
		store:    store,
		log:      log,
	}
}

// IngestFiles reads each manual text file, splits it on form feeds into
// pages, chunks and classifies every page, then embeds and upserts
// everything in one pass. The embedder is prepared on the whole corpus
// first so corpus-dependent embedders see every chunk.
func (ing *Ingester) IngestFiles(ctx context.Context, paths []string) (Summary, error) {
	var summary Summary
	var chunks []domain.PassageChunk

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return Summary{}, fmt.Errorf("read %s: %w", path, err)
		}
		source := filepath.Base(path)
		pages := strings.Split(string(data), "\f")
		summary.Files++
		for pageIdx, page := range pages {
			pageChunks := ing.chunker.Chunk(page)
			if len(pageChunks) == 0 {
				continue
			}
			summary.Pages++
			for _, content := range pageChunks {
				level := ing.assessor.ClassifyPassage(content)
				chunks = append(chunks, domain.PassageChunk{
					ID:          uuid.NewString(),
					Content:     content,
					Source:      source,
					PageNumber:  pageIdx + 1,
					SafetyLevel: level,
				})
				summary.SafetyCount[level]++
			}
		}
	}
	if len(chunks) == 0 {
		return summary, nil
	}
	summary.Chunks = len(chunks)

	corpus := make([]string, len(chunks))
	for i, c := range chunks {
		corpus[i] = c.Content
	}
	if err := ing.embedder.Prepare(corpus); err != nil {
		return Summary{}, fmt.Errorf("prepare embedder: %w", err)
	}
	if err := ing.store.Init(ctx, ing.embedder.Dimension()); err != nil {
		return Summary{}, fmt.Errorf("init store: %w", err)
	}
	for i := range chunks {
		vec, err := ing.embedder.Embed(ctx, chunks[i].Content)
		if err != nil {
			return Summary{}, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks[i].Embedding = vec
	}
	if err := ing.store.Upsert(ctx, chunks); err != nil {
		return Summary{}, fmt.Errorf("upsert chunks: %w", err)
	}
	ing.log.Info("corpus ingested",
		zap.Int("files", summary.Files),
		zap.Int("pages", summary.Pages),
		zap.Int("chunks", summary.Chunks))
	return summary, nil
}
