package cmd

import (
	"fmt"
	"os"

	"github.com/akedrou/textdiff"
	"github.com/spf13/cobra"

	"github.com/bundle-tools/bundle-control-plane/internal/config"
	"github.com/bundle-tools/bundle-control-plane/internal/policy"
	"github.com/bundle-tools/bundle-control-plane/internal/service"
)

var diffParams = struct {
	from string
	to   string
}{}

var diffCmd = &cobra.Command{
	Use:   "diff <bundle>",
	Short: "Show how a bundle's plan differs between two variants",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runDiff(args[0])
	},
}

func init() {
	diffCmd.Flags().StringVar(&diffParams.from, "from", "umd/development", "base variant (format/mode)")
	diffCmd.Flags().StringVar(&diffParams.to, "to", "umd/production", "variant to compare against (format/mode)")

	RootCmd.AddCommand(diffCmd)
}

func runDiff(name string) error {
	root, err := config.Load(configFiles)
	if err != nil {
		return err
	}

	b, ok := root.Bundles[name]
	if !ok {
		return fmt.Errorf("no bundle named %q", name)
	}

	from, err := policy.ParseVariant(diffParams.from)
	if err != nil {
		return err
	}
	to, err := policy.ParseVariant(diffParams.to)
	if err != nil {
		return err
	}

	fromPlan, err := service.ComputePlan(root, b, from, nil)
	if err != nil {
		return err
	}
	toPlan, err := service.ComputePlan(root, b, to, nil)
	if err != nil {
		return err
	}

	fromBytes, err := fromPlan.Marshal()
	if err != nil {
		return err
	}
	toBytes, err := toPlan.Marshal()
	if err != nil {
		return err
	}

	diff := textdiff.Unified(fromPlan.Filename(), toPlan.Filename(), string(fromBytes), string(toBytes))
	if diff == "" {
		fmt.Printf("plans for %v and %v are identical\n", from, to)
		return nil
	}

	_, err = os.Stdout.WriteString(diff)
	return err
}
