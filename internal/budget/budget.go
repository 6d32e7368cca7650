// Package budget provides token budget estimation and context trimming for
// the answer pipeline. Because the service supports multiple LLM backends with
// different tokenizers, this package uses a conservative character-based
// heuristic: 1 token ≈ 4 characters (English prose). This deliberately
// under-estimates token counts to leave headroom for model-specific overhead.
package budget

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English text; using 3 would be
	// more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models while leaving room
	// for the generated answer.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// TrimContext drops context chunks from the end of the slice (least relevant
// first, since retrieval results arrive most-similar-first) until the total
// estimated token count of fixedTokens + chunks fits within maxTokens.
// At least one chunk is always retained when any were provided, so a single
// oversized chunk degrades the answer rather than silently discarding all
// retrieved context.
func TrimContext(fixedTokens int, chunks []string, maxTokens int) []string {
	if len(chunks) == 0 || maxTokens <= 0 {
		return chunks
	}

	total := fixedTokens
	kept := 0
	for _, c := range chunks {
		total += Estimate(c)
		if kept > 0 && total > maxTokens {
			break
		}
		kept++
	}
	return chunks[:kept]
}
