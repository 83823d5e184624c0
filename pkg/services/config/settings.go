package config

import (
	"fmt"

	"github.com/de-tools/iam-audit/pkg/models/domain"
	"github.com/spf13/viper"
)

// Environment variables that may locate the input snapshot and the output directory
const (
	EnvInput     = "IAM_AUDIT_INPUT"
	EnvOutputDir = "IAM_AUDIT_OUTPUT_DIR"
)

const (
	DefaultInput     = "data/users.csv"
	DefaultOutputDir = "output"
)

type Settings struct {
	Input     string         `mapstructure:"input"`
	OutputDir string         `mapstructure:"output_dir"`
	Workers   int            `mapstructure:"workers"`
	Policy    PolicySettings `mapstructure:"policy"`
	Export    ExportSettings `mapstructure:"export"`
}

type PolicySettings struct {
	PrivilegedRoles []string   `mapstructure:"privileged_roles"`
	SoDConflicts    [][]string `mapstructure:"sod_conflicts"`
	DormantDays     int        `mapstructure:"dormant_days"`
}

type ExportSettings struct {
	// DuckDBPath enables the findings export when set
	DuckDBPath string `mapstructure:"duckdb_path"`
}

// LoadSettings reads audit settings from an optional YAML/TOML/JSON file.
// Keys the file omits fall back to the reference policy and default paths.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if err := v.BindEnv("input", EnvInput); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvInput, err)
	}
	if err := v.BindEnv("output_dir", EnvOutputDir); err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", EnvOutputDir, err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse audit settings: %w", err)
	}
	return &s, nil
}

func setDefaults(v *viper.Viper) {
	ref := domain.DefaultPolicy()

	conflicts := make([][]string, 0, len(ref.SoDConflicts))
	for _, p := range ref.SoDConflicts {
		conflicts = append(conflicts, []string{p.First, p.Second})
	}

	v.SetDefault("input", DefaultInput)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("workers", 1)
	v.SetDefault("policy.privileged_roles", ref.PrivilegedRoles)
	v.SetDefault("policy.sod_conflicts", conflicts)
	v.SetDefault("policy.dormant_days", ref.DormantDays)
	v.SetDefault("export.duckdb_path", "")
}

// ToPolicy converts the policy settings into a validated domain policy
func (p PolicySettings) ToPolicy() (domain.Policy, error) {
	policy := domain.Policy{
		PrivilegedRoles: append([]string{}, p.PrivilegedRoles...),
		SoDConflicts:    make([]domain.RolePair, 0, len(p.SoDConflicts)),
		DormantDays:     p.DormantDays,
	}
	for i, pair := range p.SoDConflicts {
		if len(pair) != 2 {
			return domain.Policy{}, fmt.Errorf("sod conflict %d must list exactly two roles, got %d", i, len(pair))
		}
		policy.SoDConflicts = append(policy.SoDConflicts, domain.RolePair{First: pair[0], Second: pair[1]})
	}

	if err := policy.Validate(); err != nil {
		return domain.Policy{}, err
	}
	return policy, nil
}
