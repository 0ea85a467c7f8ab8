package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bundle-tools/bundle-control-plane/internal/config"
	ocfs "github.com/bundle-tools/bundle-control-plane/internal/fs"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration files",
	RunE: func(*cobra.Command, []string) error {
		root, err := config.Load(configFiles)
		if err != nil {
			return err
		}

		// Variant expansion and source resolution surface errors the schema
		// cannot express.
		for _, b := range root.SortedBundles() {
			if _, err := b.Variants(); err != nil {
				return err
			}
			if _, err := b.PolicyRole(); err != nil {
				return err
			}
			if _, err := root.BundleSources(b); err != nil {
				return err
			}
		}

		for _, src := range root.SortedSources() {
			fsys, err := ocfs.NewFilterFS(os.DirFS(src.Directory), src.IncludedFiles, src.ExcludedFiles)
			if err != nil {
				return fmt.Errorf("source %q: %w", src.Name, err)
			}
			ok, err := ocfs.HasFiles(fsys)
			if err != nil {
				return fmt.Errorf("source %q: %w", src.Name, err)
			}
			if !ok {
				fmt.Fprintf(os.Stderr, "warning: source %q has no files under %v\n", src.Name, src.Directory)
			}
		}

		fmt.Printf("%d bundles, %d sources: configuration is valid\n", len(root.Bundles), len(root.Sources))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
