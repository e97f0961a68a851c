package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestChunkText_ShortText(t *testing.T) {
	text := "This is a short text."
	chunks := ChunkText(text, 100, 10)

	if len(chunks) != 1 {
		t.Fatalf("ChunkText() got %d chunks, want 1", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("chunk text = %q, want %q", chunks[0].Text, text)
	}
	if chunks[0].Start != 0 || chunks[0].End != len(text) {
		t.Errorf("chunk range = [%d,%d), want [0,%d)", chunks[0].Start, chunks[0].End, len(text))
	}
}

func TestChunkText_LongText(t *testing.T) {
	text := strings.Repeat("First sentence. Second sentence. Third sentence. ", 20)
	chunks := ChunkText(text, 10, 2)

	if len(chunks) < 2 {
		t.Fatalf("ChunkText() got %d chunks, want > 1", len(chunks))
	}
}

// Chunk ranges must cover the whole text with no gaps, in order.
func TestChunkText_Coverage(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		maxTokens     int
		overlapTokens int
	}{
		{"plain sentences", strings.Repeat("A sentence here. Another one follows! Is that so? ", 40), 20, 4},
		{"no delimiters", strings.Repeat("x", 1000), 10, 2},
		{"newline endings", strings.Repeat("Line one ends.\nLine two ends.\n", 50), 15, 3},
		{"overlap larger than window", strings.Repeat("Word soup without end ", 40), 5, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkText(tt.text, tt.maxTokens, tt.overlapTokens)
			if len(chunks) == 0 {
				t.Fatal("ChunkText() returned no chunks")
			}

			if chunks[0].Start != 0 {
				t.Errorf("first chunk starts at %d, want 0", chunks[0].Start)
			}
			if last := chunks[len(chunks)-1]; last.End != len(tt.text) {
				t.Errorf("last chunk ends at %d, want %d", last.End, len(tt.text))
			}

			for i, c := range chunks {
				if c.End <= c.Start {
					t.Errorf("chunk[%d] has empty range [%d,%d)", i, c.Start, c.End)
				}
				if c.Text != tt.text[c.Start:c.End] {
					t.Errorf("chunk[%d] text does not match its range", i)
				}
				if i > 0 {
					prev := chunks[i-1]
					if c.Start > prev.End {
						t.Errorf("gap between chunk[%d] (end %d) and chunk[%d] (start %d)", i-1, prev.End, i, c.Start)
					}
					if c.Start <= prev.Start || c.End <= prev.End {
						t.Errorf("chunk[%d] offsets not strictly increasing", i)
					}
				}
			}
		})
	}
}

func TestChunkText_Deterministic(t *testing.T) {
	text := strings.Repeat("Some content with sentences. More content here! ", 30)

	first := ChunkText(text, 12, 3)
	second := ChunkText(text, 12, 3)

	if !reflect.DeepEqual(first, second) {
		t.Error("identical input produced different chunk boundaries")
	}
}

func TestChunkText_BreaksAtSentence(t *testing.T) {
	// Sentences are short enough that every search window (last 20% of
	// an 80-char window) is guaranteed to contain a delimiter.
	text := strings.Repeat("Twelve chars. ", 100)
	chunks := ChunkText(text, 20, 0)

	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c.Text, ". ") && !strings.HasSuffix(c.Text, ".\n") {
			t.Errorf("chunk[%d] does not end at a sentence boundary: %q", i, c.Text[len(c.Text)-10:])
		}
	}
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "three paragraphs",
			text: "Paragraph 1.\n\nParagraph 2.\n\nParagraph 3.",
			want: []string{"Paragraph 1.", "Paragraph 2.", "Paragraph 3."},
		},
		{
			name: "empty paragraphs dropped",
			text: "First.\n\n\n\n   \n\nSecond.",
			want: []string{"First.", "Second."},
		},
		{
			name: "whitespace trimmed",
			text: "  padded  \n\nnext",
			want: []string{"padded", "next"},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParagraphs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitParagraphs() = %v, want %v", got, tt.want)
			}
		})
	}
}
