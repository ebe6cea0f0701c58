package services

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
)

// mockLoader returns a canned load result.
type mockLoader struct {
	result  *driven.LoadResult
	err     error
	gotURLs []string
}

func (m *mockLoader) Load(_ context.Context, urls []string) (*driven.LoadResult, error) {
	m.gotURLs = urls
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockLoader) Close() error { return nil }

// mockChunker splits document content on blank lines, one passage per
// paragraph.
type mockChunker struct {
	err error
}

func (m *mockChunker) Chunk(doc domain.Document) ([]domain.Passage, error) {
	if m.err != nil {
		return nil, m.err
	}
	var passages []domain.Passage
	for _, part := range strings.Split(doc.Content, "\n\n") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		passages = append(passages, domain.Passage{
			ID:            doc.URL + "#" + part[:min(8, len(part))],
			SourceURL:     doc.URL,
			Content:       part,
			SequenceIndex: len(passages),
		})
	}
	return passages, nil
}

// mockEmbedder returns canned vectors per text, with a shared fallback.
type mockEmbedder struct {
	vectors    map[string][]float32
	fallback   []float32
	dimensions int
	model      string
	batchErr   error
	embedErr   error
	batchCalls int
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		vectors:    make(map[string][]float32),
		fallback:   []float32{0, 0, 1},
		dimensions: 3,
		model:      "mock-embed",
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return m.fallback, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dimensions }
func (m *mockEmbedder) ModelName() string            { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockCompletion records what it was asked and returns a canned answer.
type mockCompletion struct {
	answer      string
	err         error
	calls       int
	gotQuestion string
	gotContext  string
	gotOpts     driven.CompleteOptions
}

func (m *mockCompletion) Complete(_ context.Context, question, groundingContext string, opts driven.CompleteOptions) (string, error) {
	m.calls++
	m.gotQuestion = question
	m.gotContext = groundingContext
	m.gotOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

func (m *mockCompletion) ModelName() string            { return "mock-llm" }
func (m *mockCompletion) Ping(_ context.Context) error { return nil }
func (m *mockCompletion) Close() error                 { return nil }

// mockIndexStore keeps the snapshot in memory.
type mockIndexStore struct {
	saved   *driven.IndexSnapshot
	saveErr error
	loadErr error
}

func (m *mockIndexStore) Save(_ context.Context, snap *driven.IndexSnapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = snap
	return nil
}

func (m *mockIndexStore) Load(_ context.Context) (*driven.IndexSnapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.saved == nil {
		return nil, errors.Join(domain.ErrIndexUnavailable, errors.New("no snapshot saved"))
	}
	return m.saved, nil
}

func (m *mockIndexStore) Close() error { return nil }
