package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/iam-audit/pkg/models/domain"
	"gopkg.in/ini.v1"
)

// Keys of a policy profile section
const (
	keyPrivilegedRoles = "privileged_roles"
	keySoDConflicts    = "sod_conflicts"
	keyDormantDays     = "dormant_days"

	listSeparator = ";"
	pairSeparator = "+"
)

// PolicyRegistry exposes named access policies stored in an ini file, one section per profile:
//
//	[strict]
//	privileged_roles = GlobalAdmin;UserAdmin
//	sod_conflicts    = GlobalAdmin+BillingAdmin;Developer+DBA_Prod
//	dormant_days     = 30
type PolicyRegistry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	// GetPolicy returns the profile applied on top of base; keys the profile omits keep the base values.
	GetPolicy(ctx context.Context, profile string, base domain.Policy) (domain.Policy, error)
}

type iniPolicyRegistry struct {
	cfg *ini.File
}

func NewPolicyRegistry(path string) (PolicyRegistry, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy file: %w", err)
	}
	return &iniPolicyRegistry{cfg: cfg}, nil
}

func (pr *iniPolicyRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range pr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (pr *iniPolicyRegistry) GetPolicy(_ context.Context, profile string, base domain.Policy) (domain.Policy, error) {
	section, err := pr.cfg.GetSection(profile)
	if err != nil {
		return domain.Policy{}, fmt.Errorf("policy profile %s not found", profile)
	}

	policy := base
	if section.HasKey(keyPrivilegedRoles) {
		policy.PrivilegedRoles = splitList(section.Key(keyPrivilegedRoles).String())
	}
	if section.HasKey(keySoDConflicts) {
		pairs, err := parsePairs(section.Key(keySoDConflicts).String())
		if err != nil {
			return domain.Policy{}, fmt.Errorf("policy profile %s: %w", profile, err)
		}
		policy.SoDConflicts = pairs
	}
	if section.HasKey(keyDormantDays) {
		days, err := section.Key(keyDormantDays).Int()
		if err != nil {
			return domain.Policy{}, fmt.Errorf("policy profile %s: invalid %s: %w", profile, keyDormantDays, err)
		}
		policy.DormantDays = days
	}

	if err := policy.Validate(); err != nil {
		return domain.Policy{}, fmt.Errorf("policy profile %s: %w", profile, err)
	}
	return policy, nil
}

func splitList(raw string) []string {
	items := []string{}
	for _, part := range strings.Split(raw, listSeparator) {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parsePairs(raw string) ([]domain.RolePair, error) {
	pairs := []domain.RolePair{}
	for _, item := range splitList(raw) {
		first, second, ok := strings.Cut(item, pairSeparator)
		first, second = strings.TrimSpace(first), strings.TrimSpace(second)
		if !ok || first == "" || second == "" {
			return nil, fmt.Errorf("invalid sod conflict %q, expected RoleA%sRoleB", item, pairSeparator)
		}
		pairs = append(pairs, domain.RolePair{First: first, Second: second})
	}
	return pairs, nil
}
