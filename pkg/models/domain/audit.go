package domain

import "strings"

// RiskLevel orders findings by severity; higher values are riskier
type RiskLevel int

const (
	RiskCompliant RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskHigh:
		return "High"
	case RiskMedium:
		return "Medium"
	case RiskLow:
		return "Low"
	default:
		return "Compliant"
	}
}

// IssueKind identifies the check that raised an issue
type IssueKind int

const (
	IssueSoDConflict IssueKind = iota
	IssuePrivilegedWithoutMFA
	IssueInvalidLastLogin
	IssueDormantAccount
	IssuePrivilegedNonPerson
	IssueInactiveWithRoles
)

// Risk returns the risk a single issue of this kind carries
func (k IssueKind) Risk() RiskLevel {
	switch k {
	case IssueSoDConflict, IssuePrivilegedWithoutMFA, IssuePrivilegedNonPerson:
		return RiskHigh
	case IssueDormantAccount, IssueInactiveWithRoles:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Issue is one human-readable problem found on an account
type Issue struct {
	Kind    IssueKind
	Message string
}

// IssueSeparator joins issue messages when rendered as a single cell
const IssueSeparator = " | "

// Finding is the audit result for one account record
type Finding struct {
	Account AccountRecord
	Issues  []Issue
	Risk    RiskLevel
}

// NewFinding builds a finding whose risk level is derived from its issues
func NewFinding(account AccountRecord, issues []Issue) Finding {
	return Finding{
		Account: account,
		Issues:  issues,
		Risk:    RiskFromIssues(issues),
	}
}

// RiskFromIssues derives a risk level from the categories present in issues.
// An empty list is Compliant.
func RiskFromIssues(issues []Issue) RiskLevel {
	risk := RiskCompliant
	for _, issue := range issues {
		if r := issue.Kind.Risk(); r > risk {
			risk = r
		}
	}
	return risk
}

// IssueText joins the issue messages in evaluation order
func (f Finding) IssueText() string {
	messages := make([]string, len(f.Issues))
	for i, issue := range f.Issues {
		messages[i] = issue.Message
	}
	return strings.Join(messages, IssueSeparator)
}

// RiskCount is the number of findings at one risk level
type RiskCount struct {
	Level RiskLevel
	Count int
}

// HighRiskExample is a reduced High finding kept as a sample in the summary
type HighRiskExample struct {
	Username string
	Issues   string
}

// Summary aggregates all findings of a run
type Summary struct {
	TotalAccounts    int
	ByRisk           []RiskCount
	HighRiskExamples []HighRiskExample
}
