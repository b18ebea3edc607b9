package validate

import "github.com/docuflow/docuflow-backend/internal/review/domain"

// Summarize recomputes the aggregate counts from a validated issue list.
// Only accepted issues are counted; unknown categories are skipped in the
// category breakdown but still counted by severity and type, so the severity
// and type totals always sum to TotalAccepted.
func Summarize(issues []domain.ValidatedIssue) domain.ReviewSummary {
	summary := domain.ReviewSummary{
		BySeverity: make(map[string]int),
		ByType:     make(map[string]int),
		ByCategory: make(map[string]int),
	}

	for _, issue := range issues {
		if !issue.Accepted {
			continue
		}

		summary.TotalAccepted++
		summary.BySeverity[issue.Severity]++
		summary.ByType[issue.Type]++

		switch issue.Category {
		case domain.CategoryBasic, domain.CategoryAdvanced:
			summary.ByCategory[issue.Category]++
		}
	}

	return summary
}
