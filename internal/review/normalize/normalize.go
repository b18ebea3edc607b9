// Package normalize turns raw per-line OCR output into classified, cleaned
// text. The pipeline is pure and deterministic: the same input always yields
// the same lines, and re-normalizing already-cleaned text is a no-op.
package normalize

import (
	"strings"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
)

// Normalize cleans rawText line by line. words are the OCR word boxes for the
// whole text in reading order; they are distributed to lines by token count
// and drive the title classification. Lines that clean down to nothing are
// dropped, so the output is a dense, ordered sequence.
func Normalize(rawText string, words []domain.OCRWord) []domain.NormalizedLine {
	rawLines := strings.Split(rawText, "\n")
	out := make([]domain.NormalizedLine, 0, len(rawLines))

	remaining := words
	for i, raw := range rawLines {
		var lineWords []domain.OCRWord
		lineWords, remaining = takeWords(raw, remaining)

		cleaned, class := normalizeLine(raw, lineWords)
		if cleaned == "" {
			continue
		}

		out = append(out, domain.NormalizedLine{
			LineNumber:     i + 1,
			RawText:        raw,
			Classification: class,
			CleanedText:    cleaned,
		})
	}

	return out
}

// Text joins the cleaned lines back into a single reviewable string.
func Text(lines []domain.NormalizedLine) string {
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = l.CleanedText
	}
	return strings.Join(parts, "\n")
}

// normalizeLine runs the full per-line pipeline: garbage removal, character
// normalization, classification, type-specific fixes, final spacing.
func normalizeLine(raw string, words []domain.OCRWord) (string, domain.LineClass) {
	s := removeGarbage(raw)
	s = normalizeChars(s)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", domain.LineContent
	}

	class := classify(s, words)

	switch class {
	case domain.LineTitle:
		s = fixTitle(s)
	case domain.LineBullet:
		s = fixBullet(s)
	default:
		s = fixContent(s)
	}

	s = strings.TrimSpace(apply(finalRules, s))
	return s, class
}

func removeGarbage(s string) string {
	for _, g := range garbageSubstrings {
		s = strings.ReplaceAll(s, g, "")
	}
	return apply(garbageRules, s)
}

// normalizeChars maps glyph variants to canonical forms and drops anything
// outside the conservative allow-list: printable ASCII plus ° and •.
func normalizeChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if mapped, ok := charMap[r]; ok {
			r = mapped
		}
		if (r >= 0x20 && r <= 0x7e) || r == '°' || r == '•' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fixTitle upper-cases the heading, strips underline artifacts and applies
// the known garbled→canonical correction table.
func fixTitle(s string) string {
	s = strings.ToUpper(s)
	s = strings.Trim(s, "-_ ")
	s = strings.TrimSpace(s)

	if canonical, ok := titleExactCorrections[s]; ok {
		return canonical
	}
	return apply(titleRegexCorrections, s)
}

// fixBullet replaces whatever leading marker OCR produced with a single
// canonical bullet and one space.
func fixBullet(s string) string {
	body := strings.TrimLeft(s, "•-*+ \t")
	if body == "" {
		return ""
	}
	return "• " + body
}

func fixContent(s string) string {
	return apply(contentRules, s)
}

// takeWords distributes the word stream across lines: each raw line consumes
// as many words as it has whitespace-separated tokens. OCR engines emit words
// in reading order, so a simple count split keeps lines and boxes aligned.
func takeWords(rawLine string, words []domain.OCRWord) ([]domain.OCRWord, []domain.OCRWord) {
	n := len(strings.Fields(rawLine))
	if n == 0 || len(words) == 0 {
		return nil, words
	}
	if n > len(words) {
		n = len(words)
	}
	return words[:n], words[n:]
}
