package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/de-tools/iam-audit/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finding(username string, kinds ...domain.IssueKind) domain.Finding {
	issues := make([]domain.Issue, 0, len(kinds))
	for _, k := range kinds {
		issues = append(issues, domain.Issue{Kind: k, Message: fmt.Sprintf("issue-%d", k)})
	}
	return domain.NewFinding(domain.AccountRecord{Username: username}, issues)
}

func TestSummarize(t *testing.T) {
	findings := []domain.Finding{
		finding("a", domain.IssueDormantAccount),
		finding("b", domain.IssueSoDConflict, domain.IssuePrivilegedWithoutMFA),
		finding("c"),
		finding("d", domain.IssueInvalidLastLogin),
		finding("e", domain.IssuePrivilegedNonPerson),
		finding("f"),
		finding("g"),
	}

	summary := Summarize(findings)

	assert.Equal(t, 7, summary.TotalAccounts)
	assert.Equal(t, []domain.RiskCount{
		{Level: domain.RiskCompliant, Count: 3},
		{Level: domain.RiskHigh, Count: 2},
		{Level: domain.RiskMedium, Count: 1},
		{Level: domain.RiskLow, Count: 1},
	}, summary.ByRisk)
	assert.Equal(t, []domain.HighRiskExample{
		{Username: "b", Issues: "issue-0 | issue-1"},
		{Username: "e", Issues: "issue-4"},
	}, summary.HighRiskExamples)
}

func TestSummarize_CapsHighRiskExamplesInInputOrder(t *testing.T) {
	var findings []domain.Finding
	for i := 0; i < 8; i++ {
		findings = append(findings, finding(fmt.Sprintf("low-%d", i), domain.IssueInvalidLastLogin))
		findings = append(findings, finding(fmt.Sprintf("high-%d", i), domain.IssueSoDConflict))
	}

	summary := Summarize(findings)

	require.Len(t, summary.HighRiskExamples, MaxHighRiskExamples)
	for i, ex := range summary.HighRiskExamples {
		assert.Equal(t, fmt.Sprintf("high-%d", i), ex.Username)
	}
	assert.Equal(t, 16, summary.TotalAccounts)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.TotalAccounts)
	assert.Empty(t, summary.ByRisk)
	assert.NotNil(t, summary.HighRiskExamples)
	assert.Empty(t, summary.HighRiskExamples)
}

func TestEvaluator_RunKeepsEveryRecordInOrder(t *testing.T) {
	e := newTestEvaluator(t)

	var records []domain.AccountRecord
	for i := 0; i < 250; i++ {
		records = append(records, account(func(a *domain.AccountRecord) {
			a.Username = fmt.Sprintf("user-%03d", i)
			if i%3 == 0 {
				a.LastLogin = "bad"
			}
		}))
	}

	for _, workers := range []int{0, 1, 4, 16} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			res, err := e.Run(context.Background(), records, workers)
			require.NoError(t, err)

			require.Len(t, res.Findings, len(records))
			assert.Equal(t, len(records), res.Summary.TotalAccounts)
			for i, f := range res.Findings {
				assert.Equal(t, records[i].Username, f.Account.Username)
			}
		})
	}
}

func TestEvaluator_RunCanceled(t *testing.T) {
	e := newTestEvaluator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Run(ctx, []domain.AccountRecord{account(nil)}, 1)

	assert.ErrorIs(t, err, context.Canceled)
}
