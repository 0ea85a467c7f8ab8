package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bundle-tools/bundle-control-plane/internal/bundler"
	"github.com/bundle-tools/bundle-control-plane/internal/service"
)

var runParams = struct {
	singleShot   bool
	outputDir    string
	rollupConfig string
	workDir      string
}{}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the plan building service",
	Long: `Run builds plans for every configured bundle. By default it keeps
running, rebuilding each bundle on its interval; with --single-shot it builds
everything once and exits. Plans are written as artifacts unless a rollup
config is given, in which case rollup is invoked with each plan.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		var b bundler.Bundler
		if runParams.rollupConfig != "" {
			b, err = bundler.NewExec(runParams.rollupConfig, runParams.workDir)
			if err != nil {
				return err
			}
		} else {
			b = &bundler.Writer{Dir: runParams.outputDir}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err = service.New().
			WithConfigFiles(configFiles).
			WithBundler(b).
			WithLogger(log).
			WithSingleShot(runParams.singleShot).
			WithQuiet(quiet).
			Run(ctx)
		if ctx.Err() == context.Canceled {
			return nil
		}
		return err
	},
}

func init() {
	runCmd.Flags().BoolVar(&runParams.singleShot, "single-shot", false, "build all plans once and exit")
	runCmd.Flags().StringVarP(&runParams.outputDir, "output", "o", "plans", "directory for plan artifacts")
	runCmd.Flags().StringVar(&runParams.rollupConfig, "rollup-config", "", "invoke rollup with this config instead of writing artifacts")
	runCmd.Flags().StringVar(&runParams.workDir, "work-dir", ".", "working directory for rollup")

	RootCmd.AddCommand(runCmd)
}
