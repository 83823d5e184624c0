package adapters

import (
	"github.com/de-tools/iam-audit/pkg/models/api"
	"github.com/de-tools/iam-audit/pkg/models/domain"
)

func MapRiskCountsDomainToApi(counts []domain.RiskCount) api.RiskCounts {
	res := make(api.RiskCounts, 0, len(counts))
	for _, c := range counts {
		res = append(res, api.RiskCount{Level: c.Level.String(), Count: c.Count})
	}
	return res
}

func MapHighRiskExampleDomainToApi(ex domain.HighRiskExample) api.HighRiskExample {
	return api.HighRiskExample{
		Username: ex.Username,
		Issues:   ex.Issues,
	}
}

func MapSummaryDomainToApi(s domain.Summary) api.AuditSummary {
	res := api.AuditSummary{
		TotalAccounts:    s.TotalAccounts,
		ByRisk:           MapRiskCountsDomainToApi(s.ByRisk),
		HighRiskExamples: make([]api.HighRiskExample, 0, len(s.HighRiskExamples)),
	}
	for _, ex := range s.HighRiskExamples {
		res.HighRiskExamples = append(res.HighRiskExamples, MapHighRiskExampleDomainToApi(ex))
	}
	return res
}
