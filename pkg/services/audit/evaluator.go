package audit

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/de-tools/iam-audit/pkg/models/domain"
)

const (
	// LastLoginLayout is the only accepted last_login format
	LastLoginLayout = "2006-01-02"
	// MissingLastLogin is substituted when an account has no last_login value
	MissingLastLogin = "1900-01-01"

	secondsPerDay = 24 * 60 * 60
)

// Option customizes an Evaluator
type Option func(*Evaluator)

// WithClock overrides the clock used to determine the audit date
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

// Evaluator applies the access policy checks to individual account records.
// It is safe for concurrent use once constructed.
type Evaluator struct {
	policy     domain.Policy
	privileged map[string]struct{}
	now        func() time.Time
	today      time.Time
}

// NewEvaluator creates an evaluator for the given policy. The audit date is
// fixed at construction as the current UTC calendar date.
func NewEvaluator(policy domain.Policy, opts ...Option) (*Evaluator, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}

	e := &Evaluator{
		policy:     policy,
		privileged: make(map[string]struct{}, len(policy.PrivilegedRoles)),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, r := range policy.PrivilegedRoles {
		e.privileged[r] = struct{}{}
	}

	now := e.now().UTC()
	e.today = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return e, nil
}

// Today returns the audit date used for dormancy checks
func (e *Evaluator) Today() time.Time {
	return e.today
}

// Evaluate runs every check against the record in a fixed order and returns its finding
func (e *Evaluator) Evaluate(record domain.AccountRecord) domain.Finding {
	roles := record.RoleSet()
	privRoles := e.privilegedRoles(roles)

	var issues []domain.Issue
	issues = append(issues, e.checkSoDConflicts(roles)...)
	if issue, ok := e.checkPrivilegedWithoutMFA(record, privRoles); ok {
		issues = append(issues, issue)
	}
	if issue, ok := e.checkDormancy(record); ok {
		issues = append(issues, issue)
	}
	if issue, ok := e.checkPrivilegedNonPerson(record, privRoles); ok {
		issues = append(issues, issue)
	}
	if issue, ok := e.checkInactiveWithRoles(record); ok {
		issues = append(issues, issue)
	}

	return domain.NewFinding(record, issues)
}

func (e *Evaluator) privilegedRoles(roles map[string]struct{}) []string {
	var priv []string
	for r := range roles {
		if _, ok := e.privileged[r]; ok {
			priv = append(priv, r)
		}
	}
	slices.Sort(priv)
	return priv
}

func (e *Evaluator) checkSoDConflicts(roles map[string]struct{}) []domain.Issue {
	var issues []domain.Issue
	for _, pair := range e.policy.SoDConflicts {
		_, hasFirst := roles[pair.First]
		_, hasSecond := roles[pair.Second]
		if hasFirst && hasSecond {
			issues = append(issues, domain.Issue{
				Kind:    domain.IssueSoDConflict,
				Message: fmt.Sprintf("SoD conflict: %s", pair),
			})
		}
	}
	return issues
}

func (e *Evaluator) checkPrivilegedWithoutMFA(record domain.AccountRecord, privRoles []string) (domain.Issue, bool) {
	if len(privRoles) == 0 || record.MFAEnabled {
		return domain.Issue{}, false
	}
	return domain.Issue{
		Kind:    domain.IssuePrivilegedWithoutMFA,
		Message: fmt.Sprintf("Has privileged role(s) without MFA: %s", strings.Join(privRoles, ", ")),
	}, true
}

func (e *Evaluator) checkDormancy(record domain.AccountRecord) (domain.Issue, bool) {
	raw := record.LastLogin
	if raw == "" {
		raw = MissingLastLogin
	}

	lastLogin, err := time.Parse(LastLoginLayout, raw)
	if err != nil {
		return domain.Issue{
			Kind:    domain.IssueInvalidLastLogin,
			Message: "Invalid last_login date format",
		}, true
	}

	days := DaysBetween(lastLogin, e.today)
	if !record.Active || days <= e.policy.DormantDays {
		return domain.Issue{}, false
	}
	return domain.Issue{
		Kind:    domain.IssueDormantAccount,
		Message: fmt.Sprintf("Dormant account: last login %d days ago", days),
	}, true
}

func (e *Evaluator) checkPrivilegedNonPerson(record domain.AccountRecord, privRoles []string) (domain.Issue, bool) {
	if !record.IsNonPerson() || len(privRoles) == 0 {
		return domain.Issue{}, false
	}
	return domain.Issue{
		Kind:    domain.IssuePrivilegedNonPerson,
		Message: fmt.Sprintf("Privileged non-person account (%s)", record.AccountType),
	}, true
}

func (e *Evaluator) checkInactiveWithRoles(record domain.AccountRecord) (domain.Issue, bool) {
	if record.Active || len(record.Roles) == 0 {
		return domain.Issue{}, false
	}
	return domain.Issue{
		Kind:    domain.IssueInactiveWithRoles,
		Message: "Inactive account still has roles assigned",
	}, true
}

// DaysBetween returns the number of calendar days from one UTC date to another.
// It does not overflow for dates centuries apart.
func DaysBetween(from, to time.Time) int {
	return int(dayNumber(to) - dayNumber(from))
}

func dayNumber(t time.Time) int64 {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return midnight.Unix() / secondsPerDay
}
