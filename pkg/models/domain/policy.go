package domain

import "fmt"

// DefaultDormantDays is the reference dormancy threshold in days
const DefaultDormantDays = 90

// RolePair is an unordered pair of roles that must not be held together
type RolePair struct {
	First  string
	Second string
}

func (p RolePair) String() string {
	return fmt.Sprintf("%s + %s", p.First, p.Second)
}

// Policy holds the read-only classification rules for a run
type Policy struct {
	// PrivilegedRoles lists roles granting elevated administrative capability
	PrivilegedRoles []string
	// SoDConflicts are checked in order; their order drives issue order
	SoDConflicts []RolePair
	// DormantDays is the number of days without login after which an active account is dormant
	DormantDays int
}

// DefaultPolicy returns the reference access policy
func DefaultPolicy() Policy {
	return Policy{
		PrivilegedRoles: []string{
			"GlobalAdmin",
			"PrivilegedRoleAdmin",
			"UserAdmin",
			"SecurityAdmin",
			"BillingAdmin",
			"ExchangeAdmin",
			"SharePointAdmin",
			"HelpdeskAdmin",
			"DBA_Prod",
		},
		SoDConflicts: []RolePair{
			{First: "GlobalAdmin", Second: "BillingAdmin"},
			{First: "UserAdmin", Second: "SecurityAdmin"},
			{First: "Developer", Second: "DBA_Prod"},
			{First: "ExchangeAdmin", Second: "SharePointAdmin"},
		},
		DormantDays: DefaultDormantDays,
	}
}

// Validate checks that the policy can be evaluated
func (p Policy) Validate() error {
	if p.DormantDays < 0 {
		return fmt.Errorf("dormant days must not be negative, got %d", p.DormantDays)
	}
	for i, pair := range p.SoDConflicts {
		if pair.First == "" || pair.Second == "" {
			return fmt.Errorf("sod conflict %d must name two roles", i)
		}
	}
	for i, role := range p.PrivilegedRoles {
		if role == "" {
			return fmt.Errorf("privileged role %d is empty", i)
		}
	}
	return nil
}
