package domain

import "strings"

// Non-person account types. Every other account type is treated as a person.
const (
	AccountTypeUser    = "User"
	AccountTypeService = "Service"
	AccountTypeShared  = "Shared"
)

// AccountRecord is a single row of the account snapshot under review
type AccountRecord struct {
	Username    string
	Email       string
	AccountType string
	Roles       []string
	MFAEnabled  bool
	// LastLogin is kept verbatim; an empty value means the column was absent or blank.
	LastLogin string
	Active    bool
}

// IsNonPerson reports whether the account represents a service or shared resource
func (a AccountRecord) IsNonPerson() bool {
	return a.AccountType == AccountTypeService || a.AccountType == AccountTypeShared
}

// RoleSet returns the account roles as a set
func (a AccountRecord) RoleSet() map[string]struct{} {
	set := make(map[string]struct{}, len(a.Roles))
	for _, r := range a.Roles {
		set[r] = struct{}{}
	}
	return set
}

// RoleSeparator delimits roles in the raw role field and in rendered output
const RoleSeparator = ";"

// ParseRoles splits a raw role field, trimming whitespace and dropping empty segments
func ParseRoles(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, RoleSeparator)
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if r := strings.TrimSpace(p); r != "" {
			roles = append(roles, r)
		}
	}
	return roles
}
