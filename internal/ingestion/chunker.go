// Package ingestion implements the document ingestion pipeline.
// It extracts per-page text from uploaded PDFs, splits each page into
// overlapping chunks, embeds the chunks, and upserts the results into the
// vector store. The pipeline is invoked by the HTTP upload handlers and by
// the `ragbase ingest` CLI command.
package ingestion

import (
	"strings"
)

// Default chunking parameters, matching the sizing the knowledge base was
// tuned with: 1000-character windows with a 200-character overlap.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// Chunk is one bounded substring of a document page.
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Index is the 0-based ordinal of this chunk within its page.
	Index int
}

// Chunker splits text into overlapping chunks, preferring natural text
// boundaries (paragraph, sentence, word) over mid-token cuts. Sizes are
// measured in runes so multi-byte text never splits inside a code point.
type Chunker struct {
	// size is the maximum chunk length in runes.
	size int

	// overlap is the exact number of runes shared between consecutive chunks.
	// Always strictly less than size.
	overlap int
}

// NewChunker constructs a Chunker. Non-positive size falls back to
// DefaultChunkSize; an overlap outside [0, size) falls back to size/5.
func NewChunker(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}
	return &Chunker{size: size, overlap: overlap}
}

// Overlap returns the configured overlap length in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Chunk splits text into ordered chunks. Each chunk after the first begins
// exactly overlap runes before the previous chunk's end, so the original
// (trimmed) text is reconstructible by concatenating the first chunk with
// every later chunk minus its leading overlap. Empty or whitespace-only
// input yields no chunks; input shorter than the chunk size yields exactly
// one chunk.
func (c *Chunker) Chunk(text string) []Chunk {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	for {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, Chunk{Text: string(runes[start:]), Index: len(chunks)})
			break
		}

		end = c.breakAt(runes, start, end)
		chunks = append(chunks, Chunk{Text: string(runes[start:end]), Index: len(chunks)})
		start = end - c.overlap
	}

	return chunks
}

// breakAt moves the hard cut position back to the nearest natural boundary,
// searching paragraph breaks first, then sentence ends, then word gaps.
// The backoff is bounded so every chunk still makes progress past the
// overlap region; when no boundary is found the hard cut stands.
func (c *Chunker) breakAt(runes []rune, start, hardEnd int) int {
	maxBackoff := (c.size - c.overlap) / 2
	floor := hardEnd - maxBackoff
	if floor <= start {
		floor = start + 1
	}

	if end := lastBoundary(runes, floor, hardEnd, isParagraphBreak); end > 0 {
		return end
	}
	if end := lastBoundary(runes, floor, hardEnd, isSentenceEnd); end > 0 {
		return end
	}
	if end := lastBoundary(runes, floor, hardEnd, isWordGap); end > 0 {
		return end
	}
	return hardEnd
}

// lastBoundary scans backwards through (floor, hardEnd] and returns the
// position just after the last rune matching the predicate, or 0 if none.
func lastBoundary(runes []rune, floor, hardEnd int, match func(r rune) bool) int {
	for i := hardEnd - 1; i >= floor; i-- {
		if match(runes[i]) {
			return i + 1
		}
	}
	return 0
}

func isParagraphBreak(r rune) bool { return r == '\n' }

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isWordGap(r rune) bool {
	return r == ' ' || r == '\t'
}
