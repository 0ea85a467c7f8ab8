// Package bundler hands finished resolution plans to the external bundling
// tool, or writes them out for it to pick up.
package bundler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bundle-tools/bundle-control-plane/internal/policy"
)

// Plan is the per-variant resolution result the bundling tool consumes: which
// modules stay external, which are ignored, and the alias and replacement
// tables to apply while bundling the entry module.
type Plan struct {
	Bundle       string                  `json:"bundle"`
	Format       string                  `json:"format"`
	Mode         string                  `json:"mode"`
	Role         string                  `json:"role"`
	Entry        string                  `json:"entry,omitempty"`
	Externals    []string                `json:"externals"`
	Ignored      []string                `json:"ignored_modules,omitempty"`
	Aliases      policy.AliasTable       `json:"aliases"`
	Replacements policy.ReplacementTable `json:"replacements,omitempty"`
}

// Filename returns the canonical artifact name for the plan.
func (p *Plan) Filename() string {
	return fmt.Sprintf("%s.%s.%s.plan.json", p.Bundle, p.Format, p.Mode)
}

// Marshal renders the plan as indented JSON, map keys sorted, so repeated
// runs produce identical artifacts.
func (p *Plan) Marshal() ([]byte, error) {
	bs, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(bs, '\n'), nil
}

// Bundler consumes one plan. Implementations either persist it or drive an
// external tool with it.
type Bundler interface {
	Bundle(ctx context.Context, plan *Plan) error
}

// Writer is a Bundler that writes plan artifacts into a directory.
type Writer struct {
	Dir string
}

func (w *Writer) Bundle(_ context.Context, plan *Plan) error {
	bs, err := plan.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(w.Dir, plan.Filename()), bs, 0644)
}
