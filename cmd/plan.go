package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/thediveo/enumflag/v2"

	"github.com/bundle-tools/bundle-control-plane/internal/bundler"
	"github.com/bundle-tools/bundle-control-plane/internal/config"
	"github.com/bundle-tools/bundle-control-plane/internal/policy"
	"github.com/bundle-tools/bundle-control-plane/internal/service"
)

var formatIds = map[policy.Format][]string{
	policy.FormatUMD:  {"umd"},
	policy.FormatNode: {"node"},
	policy.FormatFB:   {"fb"},
	policy.FormatRN:   {"rn"},
}

var modeIds = map[policy.Mode][]string{
	policy.ModeDevelopment: {"development", "dev"},
	policy.ModeProduction:  {"production", "prod"},
}

var roleIds = map[policy.Role][]string{
	policy.RoleCore:     {"core"},
	policy.RoleRenderer: {"renderer"},
}

var planParams = struct {
	format    policy.Format
	mode      policy.Mode
	role      policy.Role
	hasFormat bool
	hasMode   bool
	hasRole   bool
	outputDir string
	asJSON    bool
}{}

var planCmd = &cobra.Command{
	Use:   "plan [bundle ...]",
	Short: "Resolve bundle plans and print or write them",
	RunE: func(cmd *cobra.Command, args []string) error {
		planParams.hasFormat = cmd.Flags().Changed("format")
		planParams.hasMode = cmd.Flags().Changed("mode")
		planParams.hasRole = cmd.Flags().Changed("role")
		return runPlan(args)
	},
}

func init() {
	planCmd.Flags().Var(enumflag.New(&planParams.format, "format", formatIds, enumflag.EnumCaseInsensitive),
		"format", "restrict to one output format (umd, node, fb, rn)")
	planCmd.Flags().Var(enumflag.New(&planParams.mode, "mode", modeIds, enumflag.EnumCaseInsensitive),
		"mode", "restrict to one mode (development, production)")
	planCmd.Flags().Var(enumflag.New(&planParams.role, "role", roleIds, enumflag.EnumCaseInsensitive),
		"role", "restrict to bundles of one module role (core, renderer)")
	planCmd.Flags().StringVarP(&planParams.outputDir, "output", "o", "", "write plan artifacts into this directory")
	planCmd.Flags().BoolVar(&planParams.asJSON, "json", false, "print plans as JSON instead of a summary table")

	RootCmd.AddCommand(planCmd)
}

func runPlan(names []string) error {
	root, err := config.Load(configFiles)
	if err != nil {
		return err
	}

	plans, err := computePlans(root, names)
	if err != nil {
		return err
	}

	if planParams.outputDir != "" {
		w := &bundler.Writer{Dir: planParams.outputDir}
		for _, plan := range plans {
			if err := w.Bundle(context.Background(), plan); err != nil {
				return err
			}
		}
		return nil
	}

	if planParams.asJSON {
		for _, plan := range plans {
			bs, err := plan.Marshal()
			if err != nil {
				return err
			}
			os.Stdout.Write(bs)
		}
		return nil
	}

	table := tablewriter.NewTable(os.Stdout)
	table.Header("BUNDLE", "FORMAT", "MODE", "ROLE", "EXTERNALS", "ALIASES", "REPLACEMENTS")
	for _, plan := range plans {
		table.Append(plan.Bundle, plan.Format, plan.Mode, plan.Role,
			fmt.Sprint(len(plan.Externals)), fmt.Sprint(len(plan.Aliases)), fmt.Sprint(len(plan.Replacements)))
	}
	return table.Render()
}

// computePlans resolves the selected bundles, every configured variant unless
// the format or mode flags restrict the set.
func computePlans(root *config.Root, names []string) ([]*bundler.Plan, error) {
	var plans []*bundler.Plan

	for _, b := range root.SortedBundles() {
		if len(names) > 0 && !slices.Contains(names, b.Name) {
			continue
		}

		if planParams.hasRole {
			role, err := b.PolicyRole()
			if err != nil {
				return nil, err
			}
			if role != planParams.role {
				continue
			}
		}

		variants, err := b.Variants()
		if err != nil {
			return nil, err
		}

		for _, v := range variants {
			if planParams.hasFormat && v.Format != planParams.format {
				continue
			}
			if planParams.hasMode && v.Mode != planParams.mode {
				continue
			}

			plan, err := service.ComputePlan(root, b, v, nil)
			if err != nil {
				return nil, fmt.Errorf("bundle %q %v: %w", b.Name, v, err)
			}
			plans = append(plans, plan)
		}
	}

	if len(names) > 0 && len(plans) == 0 {
		return nil, fmt.Errorf("no bundles matched %v", names)
	}

	return plans, nil
}
