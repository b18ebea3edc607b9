// Package validate filters machine-proposed review issues against the source
// before they are surfaced. Rejections are deliberate decisions, not errors;
// every rejected issue records the first failing reason for auditability.
package validate

import (
	"regexp"
	"strings"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
)

// PathKind tells the validator which extraction path produced the source,
// which decides whether the existence check is possible and which confidence
// thresholds apply.
type PathKind string

const (
	PathText              PathKind = "text"
	PathVisionPages       PathKind = "vision_pages"
	PathVisionSingleImage PathKind = "vision_single_image"
)

// Confidence thresholds on the canonical 0-100 scale.
const (
	minConfidenceTextSpelling = 75.0
	minConfidenceTextOther    = 70.0
	minConfidenceVision       = 75.0
)

// Reject reasons recorded on filtered issues.
const (
	ReasonEmptyText     = "empty original text"
	ReasonFalsePositive = "matches false-positive pattern"
	ReasonStopword      = "common word, not a spelling error"
	ReasonNotInSource   = "original text not found in source"
	ReasonLowConfidence = "confidence below threshold"
)

// falsePositivePatterns match fragments the review model proposes that never
// correspond to real problems. Type-independent, checked in order.
var falsePositivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Za-z]{1,3}$`),            // 1-3 letter token
	regexp.MustCompile(`^[0-9]+$`),                   // pure number
	regexp.MustCompile(`^[^A-Za-z0-9\s]+$`),          // pure symbols
	regexp.MustCompile(`^[A-Za-z]+[0-9]+$`),          // word with trailing digits
	regexp.MustCompile(`^[0-9]+[A-Za-z]+$`),          // digits with trailing word
	regexp.MustCompile(`^[A-Za-z]+[^A-Za-z0-9\s]+$`), // word with trailing symbols
	regexp.MustCompile(`^[^A-Za-z0-9\s]+[A-Za-z]+$`), // symbols with leading word
}

// Validate applies the rejection checks to every raw issue in order and
// aggregates the accepted ones. sourceText is only consulted when pathKind is
// PathText; vision paths cannot verify existence against extracted text.
func Validate(rawIssues []domain.RawIssue, sourceText string, pathKind PathKind) ([]domain.ValidatedIssue, domain.ReviewSummary) {
	validated := make([]domain.ValidatedIssue, 0, len(rawIssues))

	for _, raw := range rawIssues {
		issue := domain.ValidatedIssue{RawIssue: raw}

		if reason := check(raw, sourceText, pathKind); reason != "" {
			issue.Accepted = false
			issue.RejectReason = reason
		} else {
			issue.Accepted = true
			if pathKind == PathText {
				issue.Locator = locate(sourceText, raw.OriginalText)
			}
		}

		validated = append(validated, issue)
	}

	return validated, Summarize(validated)
}

// check returns the first failing reason, or "" if the issue passes.
func check(issue domain.RawIssue, sourceText string, pathKind PathKind) string {
	text := issue.OriginalText
	if text == "" {
		return ReasonEmptyText
	}

	trimmed := strings.TrimSpace(text)
	for _, pat := range falsePositivePatterns {
		if pat.MatchString(trimmed) {
			return ReasonFalsePositive
		}
	}

	if issue.Type == "spelling" && isSpellingStopword(strings.ToLower(trimmed)) {
		return ReasonStopword
	}

	if pathKind == PathText && !strings.Contains(sourceText, text) {
		return ReasonNotInSource
	}

	if issue.Confidence < minConfidence(issue.Type, pathKind) {
		return ReasonLowConfidence
	}

	return ""
}

func minConfidence(issueType string, pathKind PathKind) float64 {
	if pathKind != PathText {
		return minConfidenceVision
	}
	if issueType == "spelling" {
		return minConfidenceTextSpelling
	}
	return minConfidenceTextOther
}

// locate finds a best-effort line/offset position for text inside source:
// the line number is the first line whose cumulative character span covers
// the substring's start index. Returns nil when text does not occur.
func locate(source, text string) *domain.IssueLocator {
	start := strings.Index(source, text)
	if start < 0 {
		return nil
	}

	offset := 0
	for i, line := range strings.Split(source, "\n") {
		end := offset + len(line) + 1 // +1 for the newline
		if start < end {
			return &domain.IssueLocator{Line: i + 1, Offset: start - offset}
		}
		offset = end
	}

	return &domain.IssueLocator{Line: 1, Offset: start}
}
