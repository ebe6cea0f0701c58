package domain

import "time"

// Document represents one fetched web article after normalisation.
// It is transient: documents exist between loading and chunking and
// are discarded once their passages have been produced.
type Document struct {
	// URL is the originating address the document was fetched from.
	URL string

	// Title is the human-readable title extracted from the page.
	Title string

	// Content is the plain text content with markup stripped.
	Content string

	// FetchedAt is when the document was retrieved.
	FetchedAt time.Time
}

// Passage is a retrieval-sized slice of a document's text.
// A passage never spans two source URLs.
type Passage struct {
	// ID is the unique identifier for the passage.
	ID string

	// SourceURL is the URL of the document this passage came from.
	// It always traces back to exactly one ingested URL.
	SourceURL string

	// Content is the passage text.
	Content string

	// SequenceIndex is the ordinal position within the source document.
	// It preserves original document order for reproducibility and plays
	// no part in retrieval ranking.
	SequenceIndex int
}

// EmbeddedPassage pairs a passage with its vector representation.
// All vectors within one index share the same dimension.
type EmbeddedPassage struct {
	Passage Passage

	// Vector is the fixed-dimension embedding of the passage content.
	Vector []float32
}
