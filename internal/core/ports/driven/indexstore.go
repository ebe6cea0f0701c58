package driven

import (
	"context"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
)

// IndexSnapshotVersion is the current durable storage format version.
// Snapshots written with an unrecognised version fail to load with
// domain.ErrIndexUnavailable.
const IndexSnapshotVersion = 1

// IndexSnapshot is the serialised form of a vector index: the ordered
// list of embedded passages plus the metadata needed to validate a
// restore.
type IndexSnapshot struct {
	// FormatVersion is the storage format tag.
	FormatVersion int

	// Dimensions is the embedding dimension shared by all vectors.
	Dimensions int

	// Model is the embedding model that produced the vectors. A restored
	// index is only meaningful when queried with the same model.
	Model string

	// Passages holds the embedded passages in insertion order.
	Passages []domain.EmbeddedPassage
}

// IndexStore persists index snapshots to durable storage.
//
// Storage is read-then-replaced: Save removes any previous snapshot as
// part of the same transaction. Load on missing or corrupt storage, or
// on an unrecognised format version, fails with domain.ErrIndexUnavailable.
// A successfully loaded snapshot with zero passages is a valid empty index.
type IndexStore interface {
	// Save writes the snapshot, replacing any previous one wholesale.
	Save(ctx context.Context, snap *IndexSnapshot) error

	// Load reads the most recently saved snapshot.
	Load(ctx context.Context) (*IndexSnapshot, error)

	// Close releases resources.
	Close() error
}
