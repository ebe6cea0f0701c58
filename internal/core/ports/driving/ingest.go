package driving

import (
	"context"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
)

// IngestService builds the passage index from a list of URLs.
type IngestService interface {
	// Ingest fetches the URLs, chunks and embeds their text, and rebuilds
	// the vector index from scratch. Individual URL failures are reported
	// in the returned IngestReport; only the failure of every URL is an
	// error (domain.ErrNoContentIngested).
	Ingest(ctx context.Context, urls []string) (*domain.IngestReport, error)
}
