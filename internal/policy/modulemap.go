package policy

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"

	ocfs "github.com/bundle-tools/bundle-control-plane/internal/fs"
)

// AliasTable maps a logical module name to the physical file or replacement
// implementation it resolves to for one variant. Built fresh per resolution
// call; never mutated after construction.
type AliasTable map[string]string

// DefaultExcluded is always applied to module map scans: test, mock and
// benchmark sources never become resolvable modules.
var DefaultExcluded = []string{
	"**/__tests__/**",
	"**/__mocks__/**",
	"**/__benchmarks__/**",
}

// ScanOptions configure a module map scan.
type ScanOptions struct {
	// Patterns are glob patterns selecting source files, scanned in the
	// given order. A pattern matching nothing is not an error.
	Patterns []string

	// Excluded patterns are applied on top of DefaultExcluded.
	Excluded []string

	// Variant selects the post-processing branch.
	Variant Variant

	// Extract, when set, is invoked once with the resolved path of each
	// matched file, even when several patterns match it. It is the error-code
	// extraction hook: it mutates an external registry, which is a
	// collaborator effect the scan merely triggers.
	Extract func(path string) error
}

// BuildModuleMap scans fsys for files matching opts.Patterns and returns an
// AliasTable keyed by basename with the extension stripped. Values are paths
// joined onto root, so passing an absolute root yields absolute paths.
//
// Within a pattern, matches follow the walk order of fsys; a later match with
// a colliding basename silently overwrites the earlier entry. That overwrite
// is accepted behavior, not an error.
func BuildModuleMap(fsys fs.FS, root string, opts ScanOptions) (AliasTable, error) {
	if err := opts.Variant.validate(); err != nil {
		return nil, err
	}

	excluded, err := ocfs.CompileAll(append(slices.Clone(DefaultExcluded), opts.Excluded...))
	if err != nil {
		return nil, err
	}

	table := AliasTable{}
	extracted := map[string]bool{}
	for _, pattern := range opts.Patterns {
		g, err := ocfs.Compile(pattern)
		if err != nil {
			return nil, err
		}

		err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !g.Match(p) || ocfs.MatchAny(excluded, p) {
				return nil
			}

			base := path.Base(p)
			name := strings.TrimSuffix(base, path.Ext(base))
			resolved := filepath.Join(root, filepath.FromSlash(p))
			table[name] = resolved

			// Overlapping patterns may match the same file; extract once.
			if opts.Extract != nil && !extracted[resolved] {
				extracted[resolved] = true
				if err := opts.Extract(resolved); err != nil {
					return fmt.Errorf("extract error codes from %s: %w", resolved, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// The FB variant resolves these two names through the platform's own
	// aliasing path; a module map entry would collide with it. Deleted
	// unconditionally, after the full scan, so no later pattern can
	// resurrect them.
	if opts.Variant.Format == FormatFB {
		delete(table, OwnerRegistryModule)
		delete(table, PriorityWarningModule)
	}

	return table, nil
}
