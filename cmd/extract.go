package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bundle-tools/bundle-control-plane/internal/config"
	"github.com/bundle-tools/bundle-control-plane/internal/errcodes"
)

var extractCmd = &cobra.Command{
	Use:   "extract-errors",
	Short: "Extract invariant messages into the error code registry",
	RunE: func(*cobra.Command, []string) error {
		root, err := config.Load(configFiles)
		if err != nil {
			return err
		}

		if root.ErrorCodes == nil || root.ErrorCodes.Registry == "" {
			return errors.New("no error code registry configured")
		}

		registry, err := errcodes.Open(root.ErrorCodes.Registry)
		if err != nil {
			return err
		}
		before := len(registry.Messages())

		dirs := make([]errcodes.Dir, 0, len(root.Sources))
		for _, src := range root.SortedSources() {
			dirs = append(dirs, errcodes.Dir{
				Path:          src.Directory,
				IncludedFiles: src.IncludedFiles,
				ExcludedFiles: src.ExcludedFiles,
			})
		}

		if err := registry.Scan(dirs); err != nil {
			return err
		}

		if err := registry.Flush(); err != nil {
			return err
		}

		total := len(registry.Messages())
		fmt.Printf("%d error codes (%d new)\n", total, total-before)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(extractCmd)
}
