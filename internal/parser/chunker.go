// Package parser splits long text into pieces that fit LLM context limits.
package parser

import "strings"

// Approximate 1 token ≈ 4 characters (works for Korean/English mix).
const charsPerToken = 4

// TextChunk is a bounded substring of a larger text.
type TextChunk struct {
	// Text is the chunk content.
	Text string

	// Start is the byte offset of the chunk in the original text.
	Start int

	// End is the byte offset one past the chunk in the original text.
	End int
}

// sentenceEndings are preferred break points, covering ASCII and CJK
// wide-character sentence terminators.
var sentenceEndings = []string{". ", ".\n", "! ", "!\n", "? ", "?\n", "。", "！", "？"}

// ChunkText splits text into chunks of roughly maxTokens tokens with
// overlapTokens tokens of overlap between consecutive chunks. Chunks cover
// the whole text in order with no gaps; boundaries prefer sentence endings.
func ChunkText(text string, maxTokens, overlapTokens int) []TextChunk {
	maxChars := maxTokens * charsPerToken
	overlapChars := overlapTokens * charsPerToken
	textLen := len(text)

	if textLen <= maxChars {
		// Text is short enough, return as single chunk
		return []TextChunk{{Text: text, Start: 0, End: textLen}}
	}

	var chunks []TextChunk
	start := 0

	for start < textLen {
		end := start + maxChars
		if end > textLen {
			end = textLen
		}

		// Try to find a good breaking point (sentence boundary)
		actualEnd := end
		if end < textLen {
			actualEnd = findBreakPoint(text, start, end)
		}

		chunks = append(chunks, TextChunk{
			Text:  text[start:actualEnd],
			Start: start,
			End:   actualEnd,
		})

		if actualEnd >= textLen {
			break
		}

		// Move to next chunk with overlap
		next := actualEnd - overlapChars
		if next <= start {
			// Hard guard: overlap must never stall the window
			next = actualEnd
		}
		start = next
	}

	return chunks
}

// findBreakPoint searches the last 20% of the window for the rightmost
// sentence ending and returns the position just past it, or idealEnd if no
// ending is found.
func findBreakPoint(text string, start, idealEnd int) int {
	searchStart := start + (idealEnd-start)*80/100
	searchText := text[searchStart:idealEnd]

	bestIdx := -1
	bestPos := idealEnd
	for _, ending := range sentenceEndings {
		if idx := strings.LastIndex(searchText, ending); idx > bestIdx {
			bestIdx = idx
			bestPos = searchStart + idx + len(ending)
		}
	}

	return bestPos
}

// SplitParagraphs splits text on blank-line boundaries, trimming whitespace
// and discarding empty paragraphs.
func SplitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}
