package extract

import (
	"strings"
	"unicode"
)

const (
	minMeaningfulChars  = 10
	numericLineRatio    = 0.8
	repeatedCharRatio   = 0.6
	minLenForWordCheck  = 20
	minAlphaRunForWords = 3
)

// IsMeaninglessContent reports whether extracted text is an artifact rather
// than reviewable prose: too short, dominated by numeric lines, dominated by
// a single repeated character, or devoid of real words.
func IsMeaninglessContent(text string) bool {
	compact := strings.Join(strings.Fields(text), "")
	if len([]rune(compact)) < minMeaningfulChars {
		return true
	}

	if numericLinesDominate(text) {
		return true
	}

	if singleCharDominates(compact) {
		return true
	}

	// A text longer than a label with no run of letters anywhere is noise.
	if len([]rune(compact)) > minLenForWordCheck && !hasAlphaRun(text, minAlphaRunForWords) {
		return true
	}

	return false
}

// numericLinesDominate checks for the digit-sequence artifact: scanned page
// numbers or tables of figures extracted without any surrounding text.
func numericLinesDominate(text string) bool {
	var total, numeric int
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		total++
		if isNumericLine(line) {
			numeric++
		}
	}
	if total == 0 {
		return false
	}
	return float64(numeric)/float64(total) >= numericLineRatio
}

func isNumericLine(line string) bool {
	for _, r := range line {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(line) > 0
}

// singleCharDominates builds a character-frequency histogram over the
// non-whitespace characters and flags repetition artifacts.
func singleCharDominates(compact string) bool {
	freq := make(map[rune]int)
	total := 0
	max := 0
	for _, r := range compact {
		total++
		freq[r]++
		if freq[r] > max {
			max = freq[r]
		}
	}
	if total == 0 {
		return false
	}
	return float64(max)/float64(total) > repeatedCharRatio
}

func hasAlphaRun(text string, n int) bool {
	run := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			run++
			if run >= n {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}
