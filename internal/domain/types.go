package domain

import (
	"fmt"
	"time"
)

// PassageChunk is a unit of retrievable manual content. Chunks are created
// during ingestion and immutable afterwards; the query pipeline treats them
// as read-only input.
type PassageChunk struct {
	ID          string
	Content     string
	Source      string
	PageNumber  int
	SafetyLevel int // 1=normal, 2=caution, 3=high-risk
	Embedding   []float64
}

// ScoredCandidate annotates a chunk with per-query scores. EnhancedScore is
// recomputed for every query and never persisted.
type ScoredCandidate struct {
	Chunk         PassageChunk
	Similarity    float64
	EnhancedScore float64
}

// Intent is the detected category of a user query.
type Intent string

const (
	IntentMaintenance     Intent = "maintenance"
	IntentTroubleshooting Intent = "troubleshooting"
	IntentSpecifications  Intent = "specifications"
	IntentProcedure       Intent = "procedure"
	IntentSafety          Intent = "safety"
	IntentGeneral         Intent = "general"
)

// SkillLevel is the user-declared expertise tier controlling response phrasing.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillExpert       SkillLevel = "expert"
)

// ParseSkillLevel validates a skill level string, defaulting empty input to
// intermediate.
func ParseSkillLevel(s string) (SkillLevel, error) {
	switch SkillLevel(s) {
	case SkillBeginner, SkillIntermediate, SkillExpert:
		return SkillLevel(s), nil
	case "":
		return SkillIntermediate, nil
	}
	return "", fmt.Errorf("unknown skill level %q", s)
}

// QueryAssessment is per-query ephemeral state, computed fresh for each query
// and never cached.
type QueryAssessment struct {
	Intent      Intent
	SafetyLevel int // 0=none .. 3=critical
}

// SourceRef summarizes one contributing chunk for citation.
type SourceRef struct {
	Source      string  `json:"source"`
	Page        int     `json:"page"`
	Similarity  float64 `json:"similarity"`
	SafetyLevel int     `json:"safety_level"`
}

// ResultMetadata carries observability fields; nothing in the pipeline
// branches on these.
type ResultMetadata struct {
	Intent     Intent     `json:"intent"`
	SkillLevel SkillLevel `json:"skill_level"`
	ChunkCount int        `json:"chunk_count"`
}

// QueryResult is the externally visible outcome of a query. It is constructed
// per request and owned by the caller.
//
// Failures are reported structurally: Success=false with Error set. A query
// that matches nothing is not a failure; it returns Success=true with
// ChunksFound=0 and a polite answer.
type QueryResult struct {
	Answer         string         `json:"answer"`
	Sources        []SourceRef    `json:"sources"`
	Confidence     float64        `json:"confidence"`
	SafetyLevel    int            `json:"safety_level"`
	Success        bool           `json:"success"`
	FallbackMode   bool           `json:"fallback_mode"`
	Error          string         `json:"error,omitempty"`
	ChunksFound    int            `json:"chunks_found"`
	ProcessingTime time.Duration  `json:"processing_time"`
	Metadata       ResultMetadata `json:"metadata"`
}
