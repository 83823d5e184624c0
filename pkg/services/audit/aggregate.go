package audit

import (
	"cmp"
	"slices"

	"github.com/de-tools/iam-audit/pkg/models/domain"
)

// MaxHighRiskExamples caps the number of High findings sampled into the summary
const MaxHighRiskExamples = 5

// Summarize reduces findings into a run summary. ByRisk lists only levels that
// occur, ordered by count descending and then by severity.
func Summarize(findings []domain.Finding) domain.Summary {
	summary := domain.Summary{
		TotalAccounts:    len(findings),
		ByRisk:           []domain.RiskCount{},
		HighRiskExamples: []domain.HighRiskExample{},
	}

	counts := make(map[domain.RiskLevel]int)
	for _, f := range findings {
		counts[f.Risk]++

		if f.Risk == domain.RiskHigh && len(summary.HighRiskExamples) < MaxHighRiskExamples {
			summary.HighRiskExamples = append(summary.HighRiskExamples, domain.HighRiskExample{
				Username: f.Account.Username,
				Issues:   f.IssueText(),
			})
		}
	}

	for level, count := range counts {
		summary.ByRisk = append(summary.ByRisk, domain.RiskCount{Level: level, Count: count})
	}
	slices.SortFunc(summary.ByRisk, func(a, b domain.RiskCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(b.Level, a.Level)
	})

	return summary
}
