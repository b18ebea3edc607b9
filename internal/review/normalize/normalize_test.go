package normalize_test

import (
	"strings"
	"testing"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/internal/review/normalize"
)

func wordsFor(line string, height int) []domain.OCRWord {
	fields := strings.Fields(line)
	words := make([]domain.OCRWord, len(fields))
	for i, f := range fields {
		words[i] = domain.OCRWord{
			Text:       f,
			Confidence: 90,
			BBox:       domain.BoundingBox{X: i * 40, Y: 0, Width: 38, Height: height},
		}
	}
	return words
}

func TestNormalize_ContentCleanup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"temperature repair", "Store at 72 ° F orabove", "Store at 72°F or above"},
		{"fused or-below", "Keep below 40 ° C orbelow", "Keep below 40°C or below"},
		{"whitespace runs", "too   many    spaces", "too many spaces"},
		{"space before punct", "wait , then go", "wait, then go"},
		{"missing space after punct", "first.second", "first. second"},
		{"decimal untouched", "version 3.14 required", "version 3.14 required"},
		{"fullwidth punctuation", "ready？yes！", "ready? yes!"},
		{"smart quotes", "the “safe” mode", `the "safe" mode`},
		{"fused donot", "Donot open the cover", "Do not open the cover"},
		{"drops non-ascii", "café résumé", "caf rsum"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := normalize.Normalize(tt.in, nil)
			if len(lines) != 1 {
				t.Fatalf("expected 1 line, got %d", len(lines))
			}
			if lines[0].CleanedText != tt.want {
				t.Errorf("CleanedText = %q, want %q", lines[0].CleanedText, tt.want)
			}
			if lines[0].Classification != domain.LineContent {
				t.Errorf("Classification = %s, want content", lines[0].Classification)
			}
		})
	}
}

func TestNormalize_TitleClassification(t *testing.T) {
	raw := "SAFETY 1NSTRUCTIONS"

	// Large glyphs: classified as a title and corrected.
	lines := normalize.Normalize(raw, wordsFor(raw, 24))
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Classification != domain.LineTitle {
		t.Errorf("Classification = %s, want title", lines[0].Classification)
	}
	if lines[0].CleanedText != "SAFETY INSTRUCTIONS" {
		t.Errorf("CleanedText = %q, want %q", lines[0].CleanedText, "SAFETY INSTRUCTIONS")
	}

	// Small glyphs: same text stays content.
	lines = normalize.Normalize(raw, wordsFor(raw, 10))
	if lines[0].Classification != domain.LineContent {
		t.Errorf("Classification = %s, want content for small glyphs", lines[0].Classification)
	}

	// No word metadata at all: classification defaults to content.
	lines = normalize.Normalize(raw, nil)
	if lines[0].Classification != domain.LineContent {
		t.Errorf("Classification = %s, want content without word metadata", lines[0].Classification)
	}
}

func TestNormalize_TitleRegexCorrection(t *testing.T) {
	raw := "5AFETY INSTRUCT1ONS"
	lines := normalize.Normalize(raw, wordsFor(raw, 30))
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if got := lines[0].CleanedText; got != "SAFETY INSTRUCTIONS" {
		t.Errorf("CleanedText = %q, want %q", got, "SAFETY INSTRUCTIONS")
	}
}

func TestNormalize_Bullets(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"dash marker", "- check the seal", "• check the seal"},
		{"star marker", "* check the seal", "• check the seal"},
		{"plus marker", "+ check the seal", "• check the seal"},
		{"repeated glyphs", "•• check the seal", "• check the seal"},
		{"variant glyph", "▪ check the seal", "• check the seal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := normalize.Normalize(tt.in, nil)
			if len(lines) != 1 {
				t.Fatalf("expected 1 line, got %d", len(lines))
			}
			if lines[0].Classification != domain.LineBullet {
				t.Errorf("Classification = %s, want bullet", lines[0].Classification)
			}
			if lines[0].CleanedText != tt.want {
				t.Errorf("CleanedText = %q, want %q", lines[0].CleanedText, tt.want)
			}
		})
	}
}

func TestNormalize_DropsEmptyLines(t *testing.T) {
	raw := "first line\n\n   \n~~~^^\nsecond line"
	lines := normalize.Normalize(raw, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].LineNumber != 1 || lines[1].LineNumber != 5 {
		t.Errorf("line numbers = %d,%d, want 1,5", lines[0].LineNumber, lines[1].LineNumber)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"SAFETY 1NSTRUCTIONS\n- keep at 72 ° F orabove\nwait , then   go.Donot rush",
		"•• item one\n* item two\nplain   text？",
		"0PERATING PROCEDURES\nversion 3.14 is fine",
	}

	for _, in := range inputs {
		first := normalize.Normalize(in, wordsFor(in, 26))
		second := normalize.Normalize(normalize.Text(first), nil)

		if len(first) != len(second) {
			t.Fatalf("line count changed: %d -> %d", len(first), len(second))
		}
		for i := range first {
			if first[i].CleanedText != second[i].CleanedText {
				t.Errorf("line %d not stable: %q -> %q", i, first[i].CleanedText, second[i].CleanedText)
			}
		}
	}
}

func TestText_JoinsCleanedLines(t *testing.T) {
	lines := normalize.Normalize("one\ntwo", nil)
	if got := normalize.Text(lines); got != "one\ntwo" {
		t.Errorf("Text() = %q, want %q", got, "one\ntwo")
	}
}
