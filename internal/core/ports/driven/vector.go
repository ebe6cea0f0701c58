package driven

import (
	"context"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
)

// VectorIndex stores embedded passages and provides nearest-neighbour search.
//
// An index holds the passages of exactly one ingestion session. Build
// replaces the contents wholesale; there is no incremental merge across
// sessions or embedding models.
type VectorIndex interface {
	// Build atomically replaces the index contents with the given passages.
	// On failure the previous contents remain fully intact; on success the
	// new contents are fully installed. No partial state is ever observable.
	// Passages whose vectors disagree on dimension cause ErrDimensionMismatch.
	Build(ctx context.Context, passages []domain.EmbeddedPassage) error

	// Search returns the k passages most similar to the query vector,
	// best first. Ties are broken by insertion order (earlier wins).
	// Returns fewer than k results if the index holds fewer passages,
	// and an empty slice (not an error) on an empty index.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of passages currently indexed.
	Len() int

	// Dimensions returns the vector dimension of the current contents,
	// or zero for an empty index.
	Dimensions() int

	// Snapshot captures the full index contents for persistence.
	Snapshot() []domain.EmbeddedPassage

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Passage is the matched embedded passage.
	Passage domain.EmbeddedPassage

	// Similarity is the cosine similarity score (-1 to 1, higher is closer).
	Similarity float64
}
