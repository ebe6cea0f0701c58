package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/webrag-cli/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/webrag-cli/internal/core/domain"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
)

// fiveIndexedPassages builds an index of five passages across two URLs
// whose similarity to the query vector (1, 0, 0) decreases from p1 to p5.
func fiveIndexedPassages(t *testing.T) *memory.Index {
	t.Helper()

	passages := []domain.EmbeddedPassage{
		{Passage: domain.Passage{ID: "p1", SourceURL: "https://example.com/a", Content: "Passage one."}, Vector: []float32{1, 0, 0}},
		{Passage: domain.Passage{ID: "p2", SourceURL: "https://example.com/b", Content: "Passage two."}, Vector: []float32{0.9, 0.1, 0}},
		{Passage: domain.Passage{ID: "p3", SourceURL: "https://example.com/a", Content: "Passage three."}, Vector: []float32{0.8, 0.3, 0}},
		{Passage: domain.Passage{ID: "p4", SourceURL: "https://example.com/b", Content: "Passage four."}, Vector: []float32{0.5, 0.5, 0}},
		{Passage: domain.Passage{ID: "p5", SourceURL: "https://example.com/a", Content: "Passage five."}, Vector: []float32{0, 1, 0}},
	}

	index := memory.New()
	require.NoError(t, index.Build(context.Background(), passages))
	return index
}

func questionEmbedder(question string) *mockEmbedder {
	embedder := newMockEmbedder()
	embedder.vectors[question] = []float32{1, 0, 0}
	return embedder
}

func TestAnswer_RetrievesAndGenerates(t *testing.T) {
	const question = "What is passage one about?"
	completion := &mockCompletion{answer: "It is about the first topic."}
	svc := NewAnswerService(questionEmbedder(question), completion, fiveIndexedPassages(t), &mockIndexStore{})

	result, err := svc.Answer(context.Background(), question, 4)
	require.NoError(t, err)

	assert.Equal(t, "It is about the first topic.", result.Answer)

	// The top four passages alternate between the two URLs; sources are
	// deduplicated in first-seen rank order.
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, result.Sources)

	// Grounding context carries the passages best first, each tagged
	// with its source URL.
	assert.Equal(t, 1, completion.calls)
	assert.Equal(t, question, completion.gotQuestion)
	assert.Contains(t, completion.gotContext, "[Source: https://example.com/a]\nPassage one.")
	assert.Contains(t, completion.gotContext, "[Source: https://example.com/b]\nPassage two.")
	assert.Less(t,
		indexOf(t, completion.gotContext, "Passage one."),
		indexOf(t, completion.gotContext, "Passage two."))
	assert.NotContains(t, completion.gotContext, "Passage five.")
}

func TestAnswer_DefaultTopK(t *testing.T) {
	const question = "How many passages come back by default?"
	completion := &mockCompletion{answer: "Four."}
	svc := NewAnswerService(questionEmbedder(question), completion, fiveIndexedPassages(t), &mockIndexStore{})

	_, err := svc.Answer(context.Background(), question, 0)
	require.NoError(t, err)

	assert.NotContains(t, completion.gotContext, "Passage five.")
	assert.Contains(t, completion.gotContext, "Passage four.")
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	svc := NewAnswerService(newMockEmbedder(), &mockCompletion{}, memory.New(), &mockIndexStore{})

	_, err := svc.Answer(context.Background(), "   ", 4)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswer_NeverBuiltIndexReturnsInsufficientInformation(t *testing.T) {
	// Fresh session: nothing ingested, nothing persisted.
	completion := &mockCompletion{}
	svc := NewAnswerService(newMockEmbedder(), completion, memory.New(), &mockIndexStore{})

	result, err := svc.Answer(context.Background(), "Anything?", 4)
	require.NoError(t, err)

	assert.Equal(t, InsufficientInformationAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Zero(t, completion.calls)
}

func TestAnswer_CorruptStoreStillErrors(t *testing.T) {
	store := &mockIndexStore{loadErr: errors.New("database disk image is malformed")}
	completion := &mockCompletion{}
	svc := NewAnswerService(newMockEmbedder(), completion, memory.New(), store)

	_, err := svc.Answer(context.Background(), "Anything?", 4)

	require.Error(t, err)
	assert.Zero(t, completion.calls)
}

func TestAnswer_EmptyIndexSkipsCompletion(t *testing.T) {
	store := &mockIndexStore{saved: &driven.IndexSnapshot{
		FormatVersion: driven.IndexSnapshotVersion,
		Dimensions:    3,
		Model:         "mock-embed",
	}}
	completion := &mockCompletion{}
	svc := NewAnswerService(newMockEmbedder(), completion, memory.New(), store)

	result, err := svc.Answer(context.Background(), "Anything?", 4)
	require.NoError(t, err)

	assert.Equal(t, InsufficientInformationAnswer, result.Answer)
	assert.Empty(t, result.Sources)
	assert.Zero(t, completion.calls)
}

func TestAnswer_RestoresPersistedIndex(t *testing.T) {
	const question = "What does the saved passage say?"
	store := &mockIndexStore{saved: &driven.IndexSnapshot{
		FormatVersion: driven.IndexSnapshotVersion,
		Dimensions:    3,
		Model:         "mock-embed",
		Passages: []domain.EmbeddedPassage{
			{
				Passage: domain.Passage{ID: "p1", SourceURL: "https://example.com/saved", Content: "Saved passage."},
				Vector:  []float32{1, 0, 0},
			},
		},
	}}
	completion := &mockCompletion{answer: "It says something."}
	index := memory.New()
	svc := NewAnswerService(questionEmbedder(question), completion, index, store)

	result, err := svc.Answer(context.Background(), question, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, index.Len())
	assert.Equal(t, []string{"https://example.com/saved"}, result.Sources)
}

func TestAnswer_EmbeddingFailure(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.embedErr = errors.New("service unavailable")
	completion := &mockCompletion{}
	svc := NewAnswerService(embedder, completion, fiveIndexedPassages(t), &mockIndexStore{})

	_, err := svc.Answer(context.Background(), "Anything?", 4)

	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
	assert.Zero(t, completion.calls)
}

func TestAnswer_GenerationFailure(t *testing.T) {
	const question = "Anything?"
	completion := &mockCompletion{err: errors.New("rate limited")}
	svc := NewAnswerService(questionEmbedder(question), completion, fiveIndexedPassages(t), &mockIndexStore{})

	_, err := svc.Answer(context.Background(), question, 4)

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestAnswer_CompleteOptionsForwarded(t *testing.T) {
	const question = "Anything?"
	completion := &mockCompletion{answer: "ok"}
	svc := NewAnswerService(
		questionEmbedder(question), completion, fiveIndexedPassages(t), &mockIndexStore{},
		WithCompleteOptions(driven.CompleteOptions{MaxTokens: 256, Temperature: 0.7}),
	)

	_, err := svc.Answer(context.Background(), question, 2)
	require.NoError(t, err)

	assert.Equal(t, 256, completion.gotOpts.MaxTokens)
	assert.InDelta(t, 0.7, completion.gotOpts.Temperature, 1e-9)
}

// indexOf fails the test if substr is absent.
func indexOf(t *testing.T, s, substr string) int {
	t.Helper()
	i := strings.Index(s, substr)
	require.GreaterOrEqual(t, i, 0, "expected %q in %q", substr, s)
	return i
}
