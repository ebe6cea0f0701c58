package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driving"
	"github.com/custodia-labs/webrag-cli/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// DefaultTopK is the number of passages retrieved per question when the
// caller does not specify one.
const DefaultTopK = 4

// InsufficientInformationAnswer is returned when retrieval yields no
// passages. The completion service is not consulted in that case.
const InsufficientInformationAnswer = "I don't have enough information in the ingested content to answer that question."

// AnswerService answers questions grounded in the indexed passages.
//
// When the in-memory index is empty the service restores the last
// persisted snapshot before searching, so queries work across process
// restarts without re-ingesting.
type AnswerService struct {
	embedder   driven.EmbeddingService
	completion driven.CompletionService
	index      driven.VectorIndex
	store      driven.IndexStore

	topK     int
	complete driven.CompleteOptions

	mu       sync.Mutex
	restored bool
}

// AnswerOption configures an AnswerService.
type AnswerOption func(*AnswerService)

// WithTopK sets the default number of passages retrieved per question.
func WithTopK(k int) AnswerOption {
	return func(s *AnswerService) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithCompleteOptions sets the generation parameters passed to the
// completion service.
func WithCompleteOptions(opts driven.CompleteOptions) AnswerOption {
	return func(s *AnswerService) {
		s.complete = opts
	}
}

// NewAnswerService creates a new answer service.
func NewAnswerService(
	embedder driven.EmbeddingService,
	completion driven.CompletionService,
	index driven.VectorIndex,
	store driven.IndexStore,
	opts ...AnswerOption,
) *AnswerService {
	s := &AnswerService{
		embedder:   embedder,
		completion: completion,
		index:      index,
		store:      store,
		topK:       DefaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer embeds the question, retrieves the k most relevant passages,
// and generates an answer constrained to them.
func (s *AnswerService) Answer(ctx context.Context, question string, k int) (*domain.AnswerResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = s.topK
	}

	if err := s.ensureIndex(ctx); err != nil {
		return nil, err
	}

	logger.Section("Retrieving")
	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding question: %v", domain.ErrEmbeddingFailed, err)
	}

	hits, err := s.index.Search(ctx, queryVector, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	logger.Info("retrieved %d of %d requested passages", len(hits), k)
	for i, hit := range hits {
		logger.Debug("  %d. %.4f %s", i+1, hit.Similarity, hit.Passage.Passage.SourceURL)
	}

	if len(hits) == 0 {
		return &domain.AnswerResult{Answer: InsufficientInformationAnswer}, nil
	}

	logger.Section("Generating answer")
	answer, err := s.completion.Complete(ctx, question, groundingContext(hits), s.complete)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}

	return &domain.AnswerResult{
		Answer:  strings.TrimSpace(answer),
		Sources: sourceURLs(hits),
	}, nil
}

// ensureIndex restores the persisted snapshot into the in-memory index
// the first time a question arrives with an empty index.
func (s *AnswerService) ensureIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restored || s.index.Len() > 0 {
		return nil
	}

	snap, err := s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			// Nothing usable persisted. An empty index is a valid state:
			// retrieval finds nothing and the caller gets the fixed
			// insufficient-information answer.
			logger.Debug("no saved index to restore: %v", err)
			s.restored = true
			return nil
		}
		return err
	}
	if snap.Model != s.embedder.ModelName() {
		logger.Warn("index was built with model %q but querying with %q; results may be meaningless",
			snap.Model, s.embedder.ModelName())
	}

	if err := s.index.Build(ctx, snap.Passages); err != nil {
		return fmt.Errorf("restoring index: %w", err)
	}
	s.restored = true
	logger.Debug("restored index with %d passages", len(snap.Passages))
	return nil
}

// groundingContext concatenates the retrieved passages in rank order,
// each tagged with its source URL.
func groundingContext(hits []driven.VectorHit) string {
	var b strings.Builder
	for i, hit := range hits {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Source: %s]\n%s", hit.Passage.Passage.SourceURL, hit.Passage.Passage.Content)
	}
	return b.String()
}

// sourceURLs returns the distinct source URLs of the hits, preserving
// the order in which each URL first appears in the ranking.
func sourceURLs(hits []driven.VectorHit) []string {
	seen := make(map[string]bool, len(hits))
	var urls []string
	for _, hit := range hits {
		url := hit.Passage.Passage.SourceURL
		if !seen[url] {
			seen[url] = true
			urls = append(urls, url)
		}
	}
	return urls
}
