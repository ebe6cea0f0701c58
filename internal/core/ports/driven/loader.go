package driven

import (
	"context"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
)

// DocumentLoader fetches documents for a list of URLs.
//
// Loading is best-effort per URL: an unreachable, blocked, or empty URL
// is recorded as a failure in the result and never aborts the batch.
// The returned error is reserved for hard failures of the loader itself
// (for example a cancelled context).
type DocumentLoader interface {
	// Load fetches the given URLs and returns the documents that loaded
	// successfully, in submission order, alongside per-URL failures.
	Load(ctx context.Context, urls []string) (*LoadResult, error)

	// Close releases resources.
	Close() error
}

// LoadResult is the outcome of loading a batch of URLs.
type LoadResult struct {
	// Documents holds the successfully loaded documents, in the order
	// their URLs were submitted.
	Documents []domain.Document

	// Failures records the URLs that could not be loaded.
	Failures []domain.LoadFailure
}
