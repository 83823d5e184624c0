package audit

import (
	"testing"
	"time"

	"github.com/de-tools/iam-audit/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var auditDate = time.Date(2025, 6, 30, 15, 4, 5, 0, time.UTC)

func newTestEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e, err := NewEvaluator(domain.DefaultPolicy(), WithClock(func() time.Time { return auditDate }))
	require.NoError(t, err)
	return e
}

func daysAgo(n int) string {
	return auditDate.AddDate(0, 0, -n).Format(LastLoginLayout)
}

func account(mutate func(*domain.AccountRecord)) domain.AccountRecord {
	a := domain.AccountRecord{
		Username:    "jdoe",
		Email:       "jdoe@example.com",
		AccountType: domain.AccountTypeUser,
		Roles:       []string{},
		MFAEnabled:  true,
		LastLogin:   daysAgo(1),
		Active:      true,
	}
	if mutate != nil {
		mutate(&a)
	}
	return a
}

func messages(f domain.Finding) []string {
	out := make([]string, 0, len(f.Issues))
	for _, i := range f.Issues {
		out = append(out, i.Message)
	}
	return out
}

func TestEvaluator_Evaluate(t *testing.T) {
	e := newTestEvaluator(t)

	tests := []struct {
		name   string
		record domain.AccountRecord
		issues []string
		risk   domain.RiskLevel
	}{
		{
			name:   "compliant account",
			record: account(nil),
			issues: []string{},
			risk:   domain.RiskCompliant,
		},
		{
			name: "sod conflict",
			record: account(func(a *domain.AccountRecord) {
				a.Roles = []string{"GlobalAdmin", "BillingAdmin"}
			}),
			issues: []string{"SoD conflict: GlobalAdmin + BillingAdmin"},
			risk:   domain.RiskHigh,
		},
		{
			name: "multiple sod conflicts follow policy order",
			record: account(func(a *domain.AccountRecord) {
				a.Roles = []string{"DBA_Prod", "Developer", "SecurityAdmin", "UserAdmin"}
			}),
			issues: []string{
				"SoD conflict: UserAdmin + SecurityAdmin",
				"SoD conflict: Developer + DBA_Prod",
			},
			risk: domain.RiskHigh,
		},
		{
			name: "privileged without mfa",
			record: account(func(a *domain.AccountRecord) {
				a.Roles = []string{"GlobalAdmin"}
				a.MFAEnabled = false
			}),
			issues: []string{"Has privileged role(s) without MFA: GlobalAdmin"},
			risk:   domain.RiskHigh,
		},
		{
			name: "privileged roles are sorted and de-duplicated",
			record: account(func(a *domain.AccountRecord) {
				a.Roles = []string{"UserAdmin", "Reader", "BillingAdmin", "UserAdmin"}
				a.MFAEnabled = false
			}),
			issues: []string{"Has privileged role(s) without MFA: BillingAdmin, UserAdmin"},
			risk:   domain.RiskHigh,
		},
		{
			name: "privileged with mfa",
			record: account(func(a *domain.AccountRecord) {
				a.Roles = []string{"GlobalAdmin"}
			}),
			issues: []string{},
			risk:   domain.RiskCompliant,
		},
		{
			name: "dormant account",
			record: account(func(a *domain.AccountRecord) {
				a.LastLogin = daysAgo(100)
			}),
			issues: []string{"Dormant account: last login 100 days ago"},
			risk:   domain.RiskMedium,
		},
		{
			name: "dormancy boundary is exclusive",
			record: account(func(a *domain.AccountRecord) {
				a.LastLogin = daysAgo(90)
			}),
			issues: []string{},
			risk:   domain.RiskCompliant,
		},
		{
			name: "one day past the boundary",
			record: account(func(a *domain.AccountRecord) {
				a.LastLogin = daysAgo(91)
			}),
			issues: []string{"Dormant account: last login 91 days ago"},
			risk:   domain.RiskMedium,
		},
		{
			name: "inactive accounts are never dormant",
			record: account(func(a *domain.AccountRecord) {
				a.LastLogin = daysAgo(400)
				a.Active = false
			}),
			issues: []string{},
			risk:   domain.RiskCompliant,
		},
		{
			name: "future login is not dormant",
			record: account(func(a *domain.AccountRecord) {
				a.LastLogin = "2030-01-01"
			}),
			issues: []string{},
			risk:   domain.RiskCompliant,
		},
		{
			name: "invalid date",
			record: account(func(a *domain.AccountRecord) {
				a.LastLogin = "not-a-date"
			}),
			issues: []string{"Invalid last_login date format"},
			risk:   domain.RiskLow,
		},
		{
			name: "date without zero padding is invalid",
			record: account(func(a *domain.AccountRecord) {
				a.LastLogin = "2025-6-1"
			}),
			issues: []string{"Invalid last_login date format"},
			risk:   domain.RiskLow,
		},
		{
			name: "missing last login defaults to 1900-01-01",
			record: account(func(a *domain.AccountRecord) {
				a.LastLogin = ""
			}),
			issues: []string{"Dormant account: last login 45836 days ago"},
			risk:   domain.RiskMedium,
		},
		{
			name: "privileged service account with mfa",
			record: account(func(a *domain.AccountRecord) {
				a.AccountType = domain.AccountTypeService
				a.Roles = []string{"BillingAdmin"}
			}),
			issues: []string{"Privileged non-person account (Service)"},
			risk:   domain.RiskHigh,
		},
		{
			name: "privileged service account without mfa",
			record: account(func(a *domain.AccountRecord) {
				a.AccountType = domain.AccountTypeService
				a.Roles = []string{"BillingAdmin"}
				a.MFAEnabled = false
			}),
			issues: []string{
				"Has privileged role(s) without MFA: BillingAdmin",
				"Privileged non-person account (Service)",
			},
			risk: domain.RiskHigh,
		},
		{
			name: "unprivileged shared account",
			record: account(func(a *domain.AccountRecord) {
				a.AccountType = domain.AccountTypeShared
				a.Roles = []string{"Reader"}
			}),
			issues: []string{},
			risk:   domain.RiskCompliant,
		},
		{
			name: "inactive with roles",
			record: account(func(a *domain.AccountRecord) {
				a.Active = false
				a.Roles = []string{"Developer"}
			}),
			issues: []string{"Inactive account still has roles assigned"},
			risk:   domain.RiskMedium,
		},
		{
			name: "inactive without roles",
			record: account(func(a *domain.AccountRecord) {
				a.Active = false
			}),
			issues: []string{},
			risk:   domain.RiskCompliant,
		},
		{
			name: "issues keep check order",
			record: account(func(a *domain.AccountRecord) {
				a.AccountType = domain.AccountTypeShared
				a.Roles = []string{"ExchangeAdmin", "SharePointAdmin"}
				a.MFAEnabled = false
				a.LastLogin = "01/02/2024"
				a.Active = false
			}),
			issues: []string{
				"SoD conflict: ExchangeAdmin + SharePointAdmin",
				"Has privileged role(s) without MFA: ExchangeAdmin, SharePointAdmin",
				"Invalid last_login date format",
				"Privileged non-person account (Shared)",
				"Inactive account still has roles assigned",
			},
			risk: domain.RiskHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := e.Evaluate(tt.record)

			assert.Equal(t, tt.issues, messages(f))
			assert.Equal(t, tt.risk, f.Risk)
			assert.Equal(t, domain.RiskFromIssues(f.Issues), f.Risk)
			assert.Equal(t, tt.record, f.Account)
		})
	}
}

func TestEvaluator_SoDConflictIsTheOnlyIssue(t *testing.T) {
	e := newTestEvaluator(t)

	f := e.Evaluate(account(func(a *domain.AccountRecord) {
		a.Roles = []string{"GlobalAdmin", "BillingAdmin"}
	}))

	require.Len(t, f.Issues, 1)
	assert.Equal(t, domain.IssueSoDConflict, f.Issues[0].Kind)
	assert.Equal(t, domain.RiskHigh, f.Risk)
}

func TestEvaluator_CustomPolicy(t *testing.T) {
	policy := domain.Policy{
		PrivilegedRoles: []string{"Root"},
		SoDConflicts:    []domain.RolePair{{First: "Approver", Second: "Requester"}},
		DormantDays:     30,
	}
	e, err := NewEvaluator(policy, WithClock(func() time.Time { return auditDate }))
	require.NoError(t, err)

	f := e.Evaluate(account(func(a *domain.AccountRecord) {
		a.Roles = []string{"Requester", "Approver", "GlobalAdmin"}
		a.LastLogin = daysAgo(31)
	}))

	assert.Equal(t, []string{
		"SoD conflict: Approver + Requester",
		"Dormant account: last login 31 days ago",
	}, messages(f))
}

func TestNewEvaluator_RejectsInvalidPolicy(t *testing.T) {
	policy := domain.DefaultPolicy()
	policy.DormantDays = -1

	_, err := NewEvaluator(policy)

	assert.Error(t, err)
}

func TestEvaluator_TodayIsUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2025-07-01 08:00 local is still 2025-06-30 in UTC
	e, err := NewEvaluator(domain.DefaultPolicy(), WithClock(func() time.Time {
		return time.Date(2025, 7, 1, 8, 0, 0, 0, loc)
	}))
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), e.Today())
}

func TestDaysBetween(t *testing.T) {
	to := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysBetween(to, to))
	assert.Equal(t, 1, DaysBetween(to.AddDate(0, 0, -1), to))
	assert.Equal(t, -1, DaysBetween(to.AddDate(0, 0, 1), to))
	assert.Equal(t, 45836, DaysBetween(time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), to))
	assert.Equal(t, 739431, DaysBetween(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), to))
}
