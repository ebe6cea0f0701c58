package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
)

func passage(id, url string, seq int, vector ...float32) domain.EmbeddedPassage {
	return domain.EmbeddedPassage{
		Passage: domain.Passage{
			ID:            id,
			SourceURL:     url,
			Content:       "content of " + id,
			SequenceIndex: seq,
		},
		Vector: vector,
	}
}

func TestSearch_EmptyIndexReturnsNoHits(t *testing.T) {
	idx := New()

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 4)

	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Equal(t, 0, idx.Len())
}

func TestSearch_RanksBySimilarity(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Build(context.Background(), []domain.EmbeddedPassage{
		passage("a", "https://example.com/a", 0, 1, 0),
		passage("b", "https://example.com/a", 1, 0, 1),
		passage("c", "https://example.com/a", 2, 0.9, 0.1),
	}))

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "a", hits[0].Passage.Passage.ID)
	assert.Equal(t, "c", hits[1].Passage.Passage.ID)
	assert.Equal(t, "b", hits[2].Passage.Passage.ID)
	assert.Greater(t, hits[0].Similarity, hits[1].Similarity)
}

func TestSearch_TiesBrokenByInsertionOrder(t *testing.T) {
	idx := New()
	// Identical vectors: identical similarity to any query.
	require.NoError(t, idx.Build(context.Background(), []domain.EmbeddedPassage{
		passage("first", "https://example.com/a", 0, 1, 1),
		passage("second", "https://example.com/a", 1, 1, 1),
		passage("third", "https://example.com/a", 2, 1, 1),
	}))

	hits, err := idx.Search(context.Background(), []float32{1, 1}, 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "first", hits[0].Passage.Passage.ID)
	assert.Equal(t, "second", hits[1].Passage.Passage.ID)
	assert.Equal(t, "third", hits[2].Passage.Passage.ID)
}

func TestSearch_ReturnsFewerThanKWhenIndexIsSmaller(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Build(context.Background(), []domain.EmbeddedPassage{
		passage("a", "https://example.com/a", 0, 1, 0),
		passage("b", "https://example.com/a", 1, 0, 1),
	}))

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 10)

	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Build(context.Background(), []domain.EmbeddedPassage{
		passage("a", "https://example.com/a", 0, 1, 0),
	}))

	_, err := idx.Search(context.Background(), []float32{1, 0, 0}, 1)

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestBuild_RejectsMixedDimensions(t *testing.T) {
	idx := New()

	err := idx.Build(context.Background(), []domain.EmbeddedPassage{
		passage("a", "https://example.com/a", 0, 1, 0),
		passage("b", "https://example.com/a", 1, 1, 0, 0),
	})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Equal(t, 0, idx.Len(), "failed build must leave index untouched")
}

func TestBuild_FailureLeavesPreviousContentsIntact(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Build(context.Background(), []domain.EmbeddedPassage{
		passage("a", "https://example.com/a", 0, 1, 0),
	}))

	err := idx.Build(context.Background(), []domain.EmbeddedPassage{
		passage("b", "https://example.com/b", 0, 1, 0),
		passage("c", "https://example.com/b", 1, 1),
	})
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].Passage.Passage.ID)
}

func TestBuild_ReplacesContentsWholesale(t *testing.T) {
	idx := New()
	require.NoError(t, idx.Build(context.Background(), []domain.EmbeddedPassage{
		passage("old", "https://example.com/old", 0, 1, 0),
	}))

	require.NoError(t, idx.Build(context.Background(), []domain.EmbeddedPassage{
		passage("new", "https://example.com/new", 0, 0, 1),
	}))

	assert.Equal(t, 1, idx.Len())
	hits, err := idx.Search(context.Background(), []float32{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "new", hits[0].Passage.Passage.ID)
}

func TestBuild_EmptyIsValid(t *testing.T) {
	idx := New()

	require.NoError(t, idx.Build(context.Background(), nil))

	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, 0, idx.Dimensions())
}

func TestRestore_RoundTripSearchesIdentically(t *testing.T) {
	original := New()
	passages := []domain.EmbeddedPassage{
		passage("a", "https://example.com/a", 0, 1, 0),
		passage("b", "https://example.com/a", 1, 0.5, 0.5),
		passage("c", "https://example.com/b", 0, 0, 1),
	}
	require.NoError(t, original.Build(context.Background(), passages))

	restored, err := Restore(&driven.IndexSnapshot{
		FormatVersion: driven.IndexSnapshotVersion,
		Dimensions:    2,
		Passages:      original.Snapshot(),
	})
	require.NoError(t, err)

	query := []float32{0.7, 0.3}
	origHits, err := original.Search(context.Background(), query, 3)
	require.NoError(t, err)
	restHits, err := restored.Search(context.Background(), query, 3)
	require.NoError(t, err)

	require.Len(t, restHits, len(origHits))
	for i := range origHits {
		assert.Equal(t, origHits[i].Passage.Passage.ID, restHits[i].Passage.Passage.ID)
		assert.InDelta(t, origHits[i].Similarity, restHits[i].Similarity, 1e-12)
	}
}

func TestRestore_NilSnapshotYieldsEmptyIndex(t *testing.T) {
	idx, err := Restore(nil)

	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}
