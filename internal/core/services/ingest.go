package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driving"
	"github.com/custodia-labs/webrag-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService loads web articles, chunks them into passages, embeds
// the passages, and rebuilds the vector index.
//
// Each run replaces the index wholesale with the passages of that run.
// The previous index stays intact until the new one is fully built, so
// a failed run never leaves a partially indexed state behind.
type IngestService struct {
	loader   driven.DocumentLoader
	chunker  driven.Chunker
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	store    driven.IndexStore
}

// NewIngestService creates a new ingest service.
func NewIngestService(
	loader driven.DocumentLoader,
	chunker driven.Chunker,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	store driven.IndexStore,
) *IngestService {
	return &IngestService{
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		store:    store,
	}
}

// Ingest fetches the URLs, chunks and embeds their text, and rebuilds
// the vector index from scratch.
func (s *IngestService) Ingest(ctx context.Context, urls []string) (*domain.IngestReport, error) {
	if len(urls) == 0 {
		return nil, fmt.Errorf("%w: no URLs given", domain.ErrInvalidInput)
	}

	report := &domain.IngestReport{Submitted: len(urls)}

	logger.Section("Loading documents")
	result, err := s.loader.Load(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}
	report.Failures = result.Failures
	for _, f := range result.Failures {
		logger.Warn("skipped %s: %s", f.URL, f.Reason)
	}

	if len(result.Documents) == 0 {
		return report, fmt.Errorf("%w: all %d URLs failed to load",
			domain.ErrNoContentIngested, len(urls))
	}

	logger.Section("Chunking")
	var passages []domain.Passage
	for _, doc := range result.Documents {
		chunks, err := s.chunker.Chunk(doc)
		if err != nil {
			return report, fmt.Errorf("chunking %s: %w", doc.URL, err)
		}
		if len(chunks) == 0 {
			report.Failures = append(report.Failures, domain.LoadFailure{
				URL:    doc.URL,
				Reason: "no text content",
			})
			logger.Warn("skipped %s: no text content", doc.URL)
			continue
		}
		logger.Debug("%s: %d passages", doc.URL, len(chunks))
		report.Loaded++
		passages = append(passages, chunks...)
	}

	if len(passages) == 0 {
		return report, fmt.Errorf("%w: no passages produced", domain.ErrNoContentIngested)
	}

	logger.Section("Embedding")
	logger.Info("embedding %d passages with %s", len(passages), s.embedder.ModelName())
	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Content
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("%w: %v", domain.ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(passages) {
		return report, fmt.Errorf("%w: got %d vectors for %d passages",
			domain.ErrEmbeddingFailed, len(vectors), len(passages))
	}

	embedded := make([]domain.EmbeddedPassage, len(passages))
	for i, p := range passages {
		embedded[i] = domain.EmbeddedPassage{Passage: p, Vector: vectors[i]}
	}

	logger.Section("Indexing")
	if err := s.index.Build(ctx, embedded); err != nil {
		return report, fmt.Errorf("building index: %w", err)
	}
	report.Passages = len(embedded)
	logger.Info("indexed %d passages from %d documents", report.Passages, report.Loaded)

	if err := s.store.Save(ctx, &driven.IndexSnapshot{
		FormatVersion: driven.IndexSnapshotVersion,
		Dimensions:    s.index.Dimensions(),
		Model:         s.embedder.ModelName(),
		Passages:      s.index.Snapshot(),
	}); err != nil {
		return report, fmt.Errorf("persisting index: %w", err)
	}

	return report, nil
}
