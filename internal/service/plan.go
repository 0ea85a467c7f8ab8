package service

import (
	"fmt"
	"maps"
	"os"

	"github.com/bundle-tools/bundle-control-plane/internal/bundler"
	"github.com/bundle-tools/bundle-control-plane/internal/config"
	"github.com/bundle-tools/bundle-control-plane/internal/errcodes"
	ocfs "github.com/bundle-tools/bundle-control-plane/internal/fs"
	"github.com/bundle-tools/bundle-control-plane/internal/policy"
)

// ComputePlan resolves one bundle variant against the configured sources and
// returns the finished plan. Sources are scanned in name order; when two
// sources provide the same module name, the later one wins. The registry is
// optional; when set, extraction runs as a scan side effect.
func ComputePlan(cfg *config.Root, b *config.Bundle, v policy.Variant, registry *errcodes.Registry) (*bundler.Plan, error) {
	role, err := b.PolicyRole()
	if err != nil {
		return nil, err
	}

	srcs, err := cfg.BundleSources(b)
	if err != nil {
		return nil, err
	}

	loc := cfg.PolicyLocations()

	table := policy.AliasTable{}
	for _, src := range srcs {
		fsys, err := ocfs.NewFilterFS(os.DirFS(src.Directory), src.IncludedFiles, src.ExcludedFiles)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Name, err)
		}

		opts := policy.ScanOptions{
			Patterns: src.ScanPatterns(),
			Excluded: b.ExcludedFiles,
			Variant:  v,
		}
		if registry != nil {
			opts.Extract = registry.Hook()
		}

		m, err := policy.BuildModuleMap(fsys, src.Directory, opts)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", src.Name, err)
		}
		maps.Copy(table, m)
	}

	externals, err := policy.Externals(b.Externals, v, role)
	if err != nil {
		return nil, err
	}

	aliases, err := policy.ResolveAliases(table, v, role, loc)
	if err != nil {
		return nil, err
	}

	replacements, err := policy.Replacements(v, role, loc, policy.ReplacementOptions{
		Stubs:            b.Stubs,
		FeatureFlagsPath: b.FeatureFlags,
	})
	if err != nil {
		return nil, err
	}

	return &bundler.Plan{
		Bundle:       b.Name,
		Format:       v.Format.String(),
		Mode:         v.Mode.String(),
		Role:         role.String(),
		Entry:        b.Entry,
		Externals:    externals,
		Ignored:      policy.IgnoredModules(v, role),
		Aliases:      aliases,
		Replacements: replacements,
	}, nil
}
