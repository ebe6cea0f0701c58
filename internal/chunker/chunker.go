// Package chunker splits document text into retrieval-sized passages.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/webrag-cli/internal/core/domain"
	"github.com/custodia-labs/webrag-cli/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// DefaultMaxPassageSize is the default maximum passage length in bytes.
const DefaultMaxPassageSize = 1000

// defaultSeparators is the split cascade, coarsest to finest. Text is
// split at the coarsest separator that produces pieces within the size
// limit; only oversized pieces descend to the next level.
var defaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Chunker splits document content into passages using a separator cascade.
type Chunker struct {
	maxSize    int
	separators []string
}

// Option configures the chunker.
type Option func(*Chunker)

// WithMaxPassageSize sets the maximum passage length in bytes.
func WithMaxPassageSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.maxSize = size
		}
	}
}

// WithSeparators overrides the split cascade, coarsest first.
func WithSeparators(separators []string) Option {
	return func(c *Chunker) {
		if len(separators) > 0 {
			c.separators = separators
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxSize:    DefaultMaxPassageSize,
		separators: defaultSeparators,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// MaxPassageSize returns the configured maximum passage length.
func (c *Chunker) MaxPassageSize() int {
	return c.maxSize
}

// Chunk splits the document content into passages.
// An empty or whitespace-only document yields zero passages and no error.
// Passages never span documents: every passage carries the document's URL
// and a sequence index preserving original order.
func (c *Chunker) Chunk(doc domain.Document) ([]domain.Passage, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	pieces := c.split(doc.Content)

	passages := make([]domain.Passage, 0, len(pieces))
	seq := 0
	for _, piece := range pieces {
		content := strings.TrimSpace(piece)
		if content == "" {
			continue
		}
		passages = append(passages, domain.Passage{
			ID:            uuid.New().String(),
			SourceURL:     doc.URL,
			Content:       content,
			SequenceIndex: seq,
		})
		seq++
	}

	return passages, nil
}

// split applies the separator cascade with an explicit work list, so
// input size never translates into stack depth. Pieces keep their
// trailing separator so that concatenating the output reproduces the
// input text exactly.
func (c *Chunker) split(text string) []string {
	type item struct {
		text  string
		level int
	}

	var out []string
	stack := []item{{text: text}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(cur.text) <= c.maxSize {
			out = append(out, cur.text)
			continue
		}
		if cur.level >= len(c.separators) {
			out = append(out, c.hardCut(cur.text)...)
			continue
		}

		// SplitAfter keeps the separator attached to the preceding piece.
		parts := strings.SplitAfter(cur.text, c.separators[cur.level])
		if len(parts) == 1 {
			// Separator absent at this level, try the next finer one.
			stack = append(stack, item{text: cur.text, level: cur.level + 1})
			continue
		}

		// Greedily pack adjacent parts up to the size limit; an oversized
		// part stays alone and descends to the next level when popped.
		// Groups go on the stack in reverse so they pop in text order.
		groups := packParts(parts, c.maxSize)
		for i := len(groups) - 1; i >= 0; i-- {
			stack = append(stack, item{text: groups[i], level: cur.level + 1})
		}
	}

	return out
}

// packParts joins adjacent parts into groups no longer than maxSize.
// A single part longer than maxSize forms a group of its own.
func packParts(parts []string, maxSize int) []string {
	var groups []string
	var buf strings.Builder
	for _, part := range parts {
		if buf.Len() > 0 && buf.Len()+len(part) > maxSize {
			groups = append(groups, buf.String())
			buf.Reset()
		}
		if len(part) > maxSize {
			groups = append(groups, part)
			continue
		}
		buf.WriteString(part)
	}
	if buf.Len() > 0 {
		groups = append(groups, buf.String())
	}
	return groups
}

// hardCut slices text at the size limit when no separator applies,
// backing up so a multi-byte rune is never split.
func (c *Chunker) hardCut(text string) []string {
	var out []string
	for len(text) > c.maxSize {
		cut := c.maxSize
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = c.maxSize
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}
