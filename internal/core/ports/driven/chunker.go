package driven

import "github.com/custodia-labs/webrag-cli/internal/core/domain"

// Chunker splits a document into an ordered sequence of passages.
//
// A document whose text is empty yields zero passages and a nil error.
// Passages carry the source URL of their document and consecutive
// sequence indexes starting at zero.
type Chunker interface {
	// Chunk splits the document content into passages.
	Chunk(doc domain.Document) ([]domain.Passage, error)
}
