package normalize

import (
	"strings"
	"unicode"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
)

const (
	// titleMaxLen and titleMaxWords bound what can count as a heading.
	titleMaxLen   = 50
	titleMaxWords = 5
	// titleMinGlyphHeight is the average word-box height (pixels) a line
	// must reach before it is treated as a heading.
	titleMinGlyphHeight = 18.0
)

var bulletGlyphs = "•"

// classify assigns a layout class to a cleaned line. words are the OCR words
// overlapping this line; with no word metadata the glyph-height requirement
// cannot be met and non-bullet lines default to Content.
func classify(line string, words []domain.OCRWord) domain.LineClass {
	trimmed := strings.TrimSpace(line)
	if isBulletLine(trimmed) {
		return domain.LineBullet
	}
	if isTitleLine(trimmed, words) {
		return domain.LineTitle
	}
	return domain.LineContent
}

func isBulletLine(line string) bool {
	if strings.ContainsAny(line, bulletGlyphs) {
		return true
	}
	return strings.HasPrefix(line, "-") ||
		strings.HasPrefix(line, "*") ||
		strings.HasPrefix(line, "+")
}

func isTitleLine(line string, words []domain.OCRWord) bool {
	if len(line) == 0 || len(line) >= titleMaxLen {
		return false
	}
	if len(strings.Fields(line)) > titleMaxWords {
		return false
	}
	if !isAllUpper(line) && !isUnderlined(line) {
		return false
	}
	return avgGlyphHeight(words) > titleMinGlyphHeight
}

// isAllUpper reports whether every cased letter is uppercase. A line with no
// letters at all is not a title candidate.
func isAllUpper(line string) bool {
	hasLetter := false
	for _, r := range line {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// isUnderlined detects heading underline artifacts: a run of dashes or
// underscores OCR merged into the heading line.
func isUnderlined(line string) bool {
	return strings.Contains(line, "---") || strings.Contains(line, "___")
}

func avgGlyphHeight(words []domain.OCRWord) float64 {
	if len(words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range words {
		sum += float64(w.BBox.Height)
	}
	return sum / float64(len(words))
}
