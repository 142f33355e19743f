package domain

import "errors"

// Collaborator failure taxonomy. Embedding and store failures abort a single
// query and surface as a structured failure result. Generation unavailability
// is detected once at startup and flips the pipeline into fallback mode;
// per-call generation failures degrade that one answer to the fallback
// composer.
var (
	ErrEmbeddingUnavailable  = errors.New("embedding service unavailable")
	ErrStoreUnavailable      = errors.New("vector store unavailable")
	ErrGenerationUnavailable = errors.New("generation service unavailable")
	ErrGenerationFailed      = errors.New("generation failed")
)
