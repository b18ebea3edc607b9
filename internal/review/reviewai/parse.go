package reviewai

import (
	"encoding/json"
	"fmt"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/pkg/errors"
)

// manualReviewNote is attached when model output cannot be parsed at all.
const manualReviewNote = "Automatic review output could not be parsed; manual review of this file is recommended."

type reviewResponse struct {
	Issues              []wireIssue `json:"issues"`
	Recommendations     []string    `json:"recommendations"`
	OverallQualityScore int         `json:"overall_quality_score"`
}

type wireIssue struct {
	Type         string  `json:"type"`
	Severity     string  `json:"severity"`
	Location     string  `json:"location"`
	OriginalText string  `json:"original_text"`
	SuggestedFix string  `json:"suggested_fix"`
	Explanation  string  `json:"explanation"`
	Confidence   float64 `json:"confidence"`
	Category     string  `json:"category"`
}

// parseResult turns a model response body into a Result. Models wrap JSON in
// prose or markdown fences often enough that recovery is the normal path, so
// parsing never fails: first a direct unmarshal, then the first balanced
// object embedded in the body, and as a last resort an empty result that
// flags the file for manual review.
func (c *Client) parseResult(body []byte) *Result {
	var resp reviewResponse
	if err := json.Unmarshal(body, &resp); err == nil {
		return c.toResult(resp)
	}

	if span, ok := balancedObject(body); ok {
		if err := json.Unmarshal(span, &resp); err == nil {
			c.log.Debug().Msg("review response recovered from embedded JSON object")
			return c.toResult(resp)
		}
	}

	appErr := errors.ResponseParse(serviceName, fmt.Errorf("no parsable JSON in %d-byte response", len(body)))
	c.log.Warn().Err(appErr).Msg("review response unparsable, substituting empty result")

	return &Result{
		Recommendations: []string{manualReviewNote},
	}
}

func (c *Client) toResult(resp reviewResponse) *Result {
	res := &Result{
		Recommendations: resp.Recommendations,
		QualityScore:    resp.OverallQualityScore,
	}
	for _, issue := range resp.Issues {
		res.Issues = append(res.Issues, domain.RawIssue{
			Type:         issue.Type,
			Severity:     issue.Severity,
			Location:     issue.Location,
			OriginalText: issue.OriginalText,
			SuggestedFix: issue.SuggestedFix,
			Explanation:  issue.Explanation,
			Confidence:   canonicalConfidence(issue.Confidence),
			Category:     issue.Category,
		})
	}
	return res
}

// canonicalConfidence maps wire confidence onto the 0-100 scale used by the
// rest of the pipeline. The model contract is 0-100, but prompts written
// against a 0.0-1.0 schema still occur; fractional values are scaled up.
func canonicalConfidence(v float64) float64 {
	if v > 0 && v <= 1.0 {
		v *= 100
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// balancedObject returns the first top-level {...} span in body, honoring
// string literals and escapes so braces inside values do not break matching.
func balancedObject(body []byte) ([]byte, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, b := range body {
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return body[start : i+1], true
			}
		}
	}
	return nil, false
}
