package stt

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"
)

// discardPhrases are segments consisting solely of common Whisper caption
// hallucinations.
var discardPhrases = []string{
	"이 영상은 자막을 사용하였습니다.",
	"자막을 사용하였습니다.",
	"이 영상은 자막을 사용합니다.",
	"자막을 사용합니다.",
}

// fillerWords are standalone filler utterances dropped when filtering is on.
var fillerWords = []string{
	"아", "으", "음", "어", "저", "그", "뭐", "얍", "흠", "네", "예",
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// ProcessSegmentText filters and normalizes one segment's text. Returns the
// empty string when the segment should be discarded.
func ProcessSegmentText(text string, filterFillers bool, minLength int, normalizePunct bool) string {
	text = strings.TrimSpace(text)

	if !shouldKeepSegment(text, filterFillers, minLength) {
		return ""
	}

	return normalizeText(text, normalizePunct)
}

func shouldKeepSegment(text string, enableFilter bool, minLength int) bool {
	if text == "" {
		return false
	}
	if len(text) < minLength {
		return false
	}

	for _, phrase := range discardPhrases {
		if text == phrase {
			slog.Debug("discarding caption phrase", "text", text)
			return false
		}
	}

	if !enableFilter {
		return true
	}

	for _, filler := range fillerWords {
		if text == filler {
			slog.Debug("filtering filler word", "text", text)
			return false
		}
	}

	words := strings.Fields(text)

	// 10+ words with only 1-2 unique ones is a repetition loop.
	if len(words) >= 10 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if len(unique) <= 2 {
			slog.Debug("discarding repetitive pattern", "unique", len(unique), "total", len(words))
			return false
		}
	}

	// Number-only runs like "1. 2. 3. 4..." carry no speech.
	if len(words) >= 10 && allNumeric(words) {
		slog.Debug("discarding number-only sequence")
		return false
	}

	return true
}

func allNumeric(words []string) bool {
	for _, w := range words {
		for _, r := range w {
			if !unicode.IsDigit(r) && r != '.' && !unicode.IsSpace(r) {
				return false
			}
		}
	}
	return true
}

func normalizeText(text string, normalizePunct bool) string {
	text = removeWordRepetitions(strings.TrimSpace(text))

	if !normalizePunct {
		return text
	}

	// 4+ consecutive periods collapse to an ellipsis.
	for strings.Contains(text, "....") {
		text = strings.ReplaceAll(text, "....", "...")
	}

	return whitespaceRe.ReplaceAllString(text, " ")
}

// removeWordRepetitions drops excessive consecutive and total repetitions of
// the same word, a common Whisper failure mode.
func removeWordRepetitions(text string) string {
	words := strings.Fields(text)
	if len(words) <= 1 {
		return text
	}

	// First pass: cap consecutive duplicates at two.
	cleaned := make([]string, 0, len(words))
	prev := ""
	consecutive := 0
	for _, word := range words {
		if word == prev {
			consecutive++
			if consecutive >= 3 {
				continue
			}
		} else {
			consecutive = 1
		}
		cleaned = append(cleaned, word)
		prev = word
	}

	if len(cleaned) <= 1 {
		return strings.Join(cleaned, " ")
	}

	// Second pass: cap total frequency (5 per word, 3 for short words).
	counts := make(map[string]int, len(cleaned))
	final := make([]string, 0, len(cleaned))
	for _, word := range cleaned {
		if counts[word] >= 5 {
			continue
		}
		if len(word) <= 2 && counts[word] >= 3 {
			continue
		}
		counts[word]++
		final = append(final, word)
	}

	return strings.Join(final, " ")
}

// MergeSegments merges consecutive segments that repeat the same text within
// maxGap seconds of each other.
func MergeSegments(segments []Segment, maxGap float32) []Segment {
	if len(segments) == 0 {
		return nil
	}

	merged := []Segment{segments[0]}
	for _, segment := range segments[1:] {
		current := &merged[len(merged)-1]

		sameText := strings.TrimSpace(segment.Text) == strings.TrimSpace(current.Text)
		timeContinuous := segment.Start <= current.End+maxGap

		if sameText && timeContinuous {
			if segment.End > current.End {
				current.End = segment.End
			}
		} else {
			merged = append(merged, segment)
		}
	}

	slog.Debug("merged segments", "before", len(segments), "after", len(merged))
	return merged
}
