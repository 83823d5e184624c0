package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/iam-audit/pkg/models/domain"
	"github.com/de-tools/iam-audit/pkg/services/config"
	"github.com/spf13/cobra"
)

// PolicyFlags select the access policy for a run
type PolicyFlags struct {
	ConfigPath  string
	PolicyFile  string
	Profile     string
	DormantDays int
}

func (pf *PolicyFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&pf.ConfigPath, "config", "c", "", "Path to the audit settings file (yaml, toml or json)")
	cmd.Flags().StringVar(&pf.PolicyFile, "policy-file", "", "Path to an ini file of named policy profiles")
	cmd.Flags().StringVar(&pf.Profile, "profile", "", "Policy profile to apply from --policy-file")
	cmd.Flags().IntVar(&pf.DormantDays, "dormant-days", domain.DefaultDormantDays, "Days without login after which an active account is dormant")
}

// Resolve builds the effective policy: reference policy, then the settings
// file, then the ini profile, then explicit flags.
func (pf *PolicyFlags) Resolve(ctx context.Context, cmd *cobra.Command, settings *config.Settings) (domain.Policy, error) {
	policy, err := settings.Policy.ToPolicy()
	if err != nil {
		return domain.Policy{}, fmt.Errorf("invalid policy settings: %w", err)
	}

	if pf.Profile != "" && pf.PolicyFile == "" {
		return domain.Policy{}, fmt.Errorf("--profile requires --policy-file")
	}
	if pf.PolicyFile != "" && pf.Profile != "" {
		registry, err := config.NewPolicyRegistry(pf.PolicyFile)
		if err != nil {
			return domain.Policy{}, err
		}
		policy, err = registry.GetPolicy(ctx, pf.Profile, policy)
		if err != nil {
			return domain.Policy{}, err
		}
	}

	if cmd.Flags().Changed("dormant-days") {
		policy.DormantDays = pf.DormantDays
	}

	if err := policy.Validate(); err != nil {
		return domain.Policy{}, fmt.Errorf("invalid policy: %w", err)
	}
	return policy, nil
}

type PolicyCmd struct {
	flags PolicyFlags
}

func NewPolicyCmd() *cobra.Command {
	pc := &PolicyCmd{}
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show the effective access policy and available policy profiles",
		RunE:  pc.run,
	}

	pc.flags.register(cmd)

	return cmd
}

func (pc *PolicyCmd) run(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	settings, err := config.LoadSettings(pc.flags.ConfigPath)
	if err != nil {
		return err
	}

	if pc.flags.PolicyFile != "" {
		registry, err := config.NewPolicyRegistry(pc.flags.PolicyFile)
		if err != nil {
			return err
		}
		profiles, err := registry.GetProfiles(ctx)
		if err != nil {
			return fmt.Errorf("failed to list policy profiles: %w", err)
		}
		if len(profiles) == 0 {
			fmt.Fprintf(out, "No policy profiles found in %s\n", pc.flags.PolicyFile)
		} else {
			fmt.Fprintf(out, "Policy profiles in %s:\n%s\n\n", pc.flags.PolicyFile, strings.Join(profiles, "\n"))
		}
	}

	policy, err := pc.flags.Resolve(ctx, cmd, settings)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Privileged roles:\n")
	for _, r := range policy.PrivilegedRoles {
		fmt.Fprintf(out, "  %s\n", r)
	}
	fmt.Fprintf(out, "SoD conflicts:\n")
	for _, p := range policy.SoDConflicts {
		fmt.Fprintf(out, "  %s\n", p)
	}
	fmt.Fprintf(out, "Dormant after: %d days\n", policy.DormantDays)

	return nil
}
