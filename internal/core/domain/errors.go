package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoContentIngested indicates that every submitted URL failed to
	// yield usable content, so there is nothing to index.
	ErrNoContentIngested = errors.New("no content ingested")

	// ErrIndexUnavailable indicates the persisted index is missing,
	// corrupt, or written with an unrecognised format version.
	// Distinct from a valid index that happens to be empty.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrEmbeddingFailed indicates the embedding service failed.
	// During a build the prior index is left untouched; during a query
	// no answer is produced.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrGenerationFailed indicates the completion service failed after
	// retrieval succeeded. No partial answer is returned.
	ErrGenerationFailed = errors.New("answer generation failed")

	// ErrDimensionMismatch indicates vectors of different dimensions were
	// offered to a single index. This is a fatal configuration error,
	// typically from mixing embedding models without a full rebuild.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrBuildInProgress indicates a second index build was attempted
	// while one is already in flight.
	ErrBuildInProgress = errors.New("index build in progress")
)
