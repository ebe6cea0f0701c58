// Package memory provides an in-memory vector index using exact
// brute-force cosine similarity.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index holds the embedded passages of one ingestion session.
//
// Build stages the new contents fully before swapping them in under the
// write lock, so readers only ever observe the old or the new index,
// never a mix. Searches are read-only and safe to run concurrently.
type Index struct {
	mu         sync.RWMutex
	building   bool
	passages   []domain.EmbeddedPassage
	dimensions int
}

// New creates an empty index.
func New() *Index {
	return &Index{}
}

// Restore creates an index pre-populated from a snapshot.
// The restored index answers searches identically to the one the
// snapshot was taken from.
func Restore(snap *driven.IndexSnapshot) (*Index, error) {
	idx := New()
	if snap == nil {
		return idx, nil
	}
	if err := idx.Build(context.Background(), snap.Passages); err != nil {
		return nil, err
	}
	return idx, nil
}

// Build atomically replaces the index contents.
// All vectors must share one dimension; a mismatch fails the build and
// leaves the previous contents fully intact. Only one build may be in
// flight at a time.
func (idx *Index) Build(_ context.Context, passages []domain.EmbeddedPassage) error {
	idx.mu.Lock()
	if idx.building {
		idx.mu.Unlock()
		return domain.ErrBuildInProgress
	}
	idx.building = true
	idx.mu.Unlock()

	defer func() {
		idx.mu.Lock()
		idx.building = false
		idx.mu.Unlock()
	}()

	// Stage and validate outside the lock; the swap below is the only
	// observable state change.
	staged := make([]domain.EmbeddedPassage, len(passages))
	copy(staged, passages)

	dimensions := 0
	for i, p := range staged {
		if len(p.Vector) == 0 {
			return fmt.Errorf("%w: passage %d has no vector", domain.ErrInvalidInput, i)
		}
		if dimensions == 0 {
			dimensions = len(p.Vector)
			continue
		}
		if len(p.Vector) != dimensions {
			return fmt.Errorf("%w: passage %d has dimension %d, index has %d",
				domain.ErrDimensionMismatch, i, len(p.Vector), dimensions)
		}
	}

	idx.mu.Lock()
	idx.passages = staged
	idx.dimensions = dimensions
	idx.mu.Unlock()

	return nil
}

// Search returns the k most similar passages, best first.
// Ties are broken by insertion order (earlier-inserted passage wins).
// Returns fewer than k results if the index holds fewer passages and an
// empty slice on an empty index.
func (idx *Index) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if k <= 0 || len(idx.passages) == 0 {
		return []driven.VectorHit{}, nil
	}
	if len(query) != idx.dimensions {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dimensions)
	}

	type scored struct {
		position int
		score    float64
	}

	scores := make([]scored, len(idx.passages))
	for i, p := range idx.passages {
		scores[i] = scored{position: i, score: cosineSimilarity(query, p.Vector)}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].position < scores[j].position
	})

	if k > len(scores) {
		k = len(scores)
	}

	hits := make([]driven.VectorHit, k)
	for i := 0; i < k; i++ {
		hits[i] = driven.VectorHit{
			Passage:    idx.passages[scores[i].position],
			Similarity: scores[i].score,
		}
	}

	return hits, nil
}

// Len returns the number of passages currently indexed.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.passages)
}

// Dimensions returns the vector dimension of the current contents.
func (idx *Index) Dimensions() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.dimensions
}

// Snapshot captures the full index contents in insertion order.
func (idx *Index) Snapshot() []domain.EmbeddedPassage {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	snap := make([]domain.EmbeddedPassage, len(idx.passages))
	copy(snap, idx.passages)
	return snap
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero-magnitude vectors score zero against everything.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
