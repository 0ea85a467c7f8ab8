package bundler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const bundleTimeout = 5 * time.Minute

// Exec is a Bundler that shells out to rollup with the plan on disk. The
// rollup config reads the plan file named by the BUNDLE_PLAN environment
// variable and configures its alias and replacement plugins from it.
type Exec struct {
	rollupPath string
	configPath string
	workDir    string
}

// NewExec locates the rollup executable. The search order is PATH, then the
// repository's own node_modules/.bin.
func NewExec(configPath, workDir string) (*Exec, error) {
	rollupPath, err := exec.LookPath("rollup")
	if err != nil {
		for _, path := range []string{
			filepath.Join(workDir, "node_modules", ".bin", "rollup"),
			"/usr/local/bin/rollup",
			"/usr/bin/rollup",
		} {
			if _, err := os.Stat(path); err == nil {
				rollupPath = path
				break
			}
		}

		if rollupPath == "" {
			return nil, fmt.Errorf("rollup executable not found; install it or use plan output instead")
		}
	}

	return &Exec{
		rollupPath: rollupPath,
		configPath: configPath,
		workDir:    workDir,
	}, nil
}

func (e *Exec) Bundle(ctx context.Context, plan *Plan) error {
	bs, err := plan.Marshal()
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "bundle-plan-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	planPath := filepath.Join(tmpDir, plan.Filename())
	if err := os.WriteFile(planPath, bs, 0600); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}

	bundleCtx, cancel := context.WithTimeout(ctx, bundleTimeout)
	defer cancel()

	args := []string{"--config", e.configPath}

	cmd := exec.CommandContext(bundleCtx, e.rollupPath, args...)
	cmd.Dir = e.workDir

	// NODE_ENV selects the dev or prod branch inside the sources; the plan
	// file carries everything else.
	cmd.Env = filterEnvVars(os.Environ(), "NODE_ENV", "BUNDLE_PLAN")
	cmd.Env = append(cmd.Env, "NODE_ENV="+plan.Mode, "BUNDLE_PLAN="+planPath)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if bundleCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("bundling %v timed out after %v", plan.Filename(), bundleTimeout)
	}

	if runErr != nil {
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = stdout.String()
		}
		if errMsg == "" {
			errMsg = runErr.Error()
		}
		return fmt.Errorf("bundle %v failed: %s", plan.Filename(), cleanBundleError(errMsg))
	}

	return nil
}

// cleanBundleError strips temp paths and noise from rollup output.
func cleanBundleError(errMsg string) string {
	errMsg = regexp.MustCompile(`/tmp/bundle-plan-[a-zA-Z0-9]+/`).ReplaceAllString(errMsg, "")

	lines := strings.Split(errMsg, "\n")
	var relevant []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "Error:") ||
			strings.Contains(line, "[!]") ||
			strings.Contains(line, "Could not resolve") ||
			strings.Contains(line, "Unexpected") {
			relevant = append(relevant, line)
		}
	}

	if len(relevant) > 0 {
		return strings.Join(relevant, "\n")
	}

	return errMsg
}

// filterEnvVars returns a copy of env with the named variables removed.
func filterEnvVars(env []string, names ...string) []string {
	result := make([]string, 0, len(env))
	for _, e := range env {
		skip := false
		for _, name := range names {
			if strings.HasPrefix(e, name+"=") {
				skip = true
				break
			}
		}
		if !skip {
			result = append(result, e)
		}
	}
	return result
}
