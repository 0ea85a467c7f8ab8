package config

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"

	"github.com/bundle-tools/bundle-control-plane/internal/policy"
	"github.com/bundle-tools/bundle-control-plane/internal/util"
)

// Internal configuration data structures for the bundle control plane.

// Metadata describes the configuration file itself.
type Metadata struct {
	ExportedFrom string `json:"exported_from"`
	ExportedAt   string `json:"exported_at"`

	_ struct{} `additionalProperties:"false"`
}

// Root is the top-level configuration structure.
type Root struct {
	Metadata   Metadata           `json:"metadata"`
	Bundles    map[string]*Bundle `json:"bundles,omitempty"`
	Sources    map[string]*Source `json:"sources,omitempty"`
	Locations  *Locations         `json:"locations,omitempty"`
	ErrorCodes *ErrorCodes        `json:"error_codes,omitempty"`
	Service    *Service           `json:"service,omitempty"`
}

// UnmarshalYAML lets bundles and sources be written as mappings keyed by
// resource name; the names are injected back into the values here.
func (r *Root) UnmarshalYAML(bs []byte) error {
	type rawRoot Root // avoid recursive calls to UnmarshalYAML by type aliasing
	var raw rawRoot

	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode Root: %w", err)
	}

	*r = Root(raw)
	return r.unmarshal(r)
}

func (r *Root) UnmarshalJSON(bs []byte) error {
	type rawRoot Root
	var raw rawRoot

	if err := json.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode Root: %w", err)
	}

	*r = Root(raw)
	return r.unmarshal(r)
}

func (*Root) unmarshal(raw *Root) error {
	for name := range raw.Bundles {
		raw.Bundles[name] = cmp.Or(raw.Bundles[name], &Bundle{})
		raw.Bundles[name].Name = name
	}

	for name := range raw.Sources {
		raw.Sources[name] = cmp.Or(raw.Sources[name], &Source{})
		raw.Sources[name].Name = name
	}

	return nil
}

func (r *Root) SortedBundles() iter.Seq2[int, *Bundle] {
	return iterator(r.Bundles, func(b *Bundle) string { return b.Name })
}

func (r *Root) SortedSources() iter.Seq2[int, *Source] {
	return iterator(r.Sources, func(s *Source) string { return s.Name })
}

// BundleSources resolves a bundle's source references, in sorted name order.
// A missing reference is an error: a silently dropped source tree would
// produce an incomplete module map.
func (r *Root) BundleSources(b *Bundle) ([]*Source, error) {
	names := slices.Sorted(slices.Values(b.Sources))
	srcs := make([]*Source, 0, len(names))
	for _, name := range names {
		src, ok := r.Sources[name]
		if !ok {
			return nil, fmt.Errorf("bundle %q references missing source %q", b.Name, name)
		}
		srcs = append(srcs, src)
	}
	return srcs, nil
}

// PolicyLocations returns the configured repository locations.
func (r *Root) PolicyLocations() policy.Locations {
	if r.Locations == nil {
		return policy.Locations{}
	}
	return policy.Locations{
		Root:        r.Locations.Root,
		NodeModules: r.Locations.NodeModules,
		Shims:       r.Locations.Shims,
	}
}

func iterator[V any](m map[string]V, name func(V) string) func(func(int, V) bool) {
	names := make([]string, 0, len(m))
	for _, v := range m {
		names = append(names, name(v))
	}

	sort.Strings(names)

	return func(yield func(int, V) bool) {
		for i, name := range names {
			if !yield(i, m[name]) {
				return
			}
		}
	}
}

// Validate checks raw configuration bytes against the embedded JSON schema.
func Validate(data []byte) error {
	var config any
	if err := yaml.Unmarshal(data, &config); err != nil {
		return err
	}

	return rootSchema.Validate(config)
}

// Bundle defines one build output: an entry module compiled for a format
// across one or more optimization modes.
type Bundle struct {
	Name          string    `json:"name"`
	Entry         string    `json:"entry"`
	Format        string    `json:"format" enum:"umd,node,fb,rn"`
	Modes         StringSet `json:"modes,omitempty"`
	Role          string    `json:"role,omitempty" enum:"core,renderer"`
	Externals     []string  `json:"externals,omitempty"`
	Stubs         []string  `json:"stubs,omitempty"`
	FeatureFlags  string    `json:"feature_flags,omitempty"`
	Sources       StringSet `json:"sources,omitempty"`
	ExcludedFiles StringSet `json:"excluded_files,omitempty"`
	Interval      Duration  `json:"rebuild_interval,omitzero"`

	_ struct{} `additionalProperties:"false"`
}

func (b *Bundle) UnmarshalJSON(bs []byte) error {
	type rawBundle Bundle // avoid recursive calls to UnmarshalJSON by type aliasing
	var raw rawBundle

	if err := json.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode bundle: %w", err)
	}

	*b = Bundle(raw)
	return b.validate()
}

func (b *Bundle) UnmarshalYAML(bs []byte) error {
	type rawBundle Bundle
	var raw rawBundle

	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode bundle: %w", err)
	}

	*b = Bundle(raw)
	return b.validate()
}

func (b *Bundle) validate() error {
	if b.Format != "" {
		if _, err := policy.ParseFormat(b.Format); err != nil {
			return err
		}
	}
	if b.Role != "" {
		if _, err := policy.ParseRole(b.Role); err != nil {
			return err
		}
	}
	for _, mode := range b.Modes {
		if _, err := policy.ParseMode(mode); err != nil {
			return err
		}
	}
	for _, pattern := range b.ExcludedFiles {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("failed to compile excluded file pattern %q: %w", pattern, err)
		}
	}
	return nil
}

// Variants expands the bundle's format and modes into concrete variants.
// Unset modes default to both development and production.
func (b *Bundle) Variants() ([]policy.Variant, error) {
	if b.Format == "" {
		return nil, fmt.Errorf("bundle %q has no format", b.Name)
	}
	format, err := policy.ParseFormat(b.Format)
	if err != nil {
		return nil, err
	}

	modes := []policy.Mode{policy.ModeDevelopment, policy.ModeProduction}
	if len(b.Modes) > 0 {
		modes = modes[:0]
		for _, s := range b.Modes {
			mode, err := policy.ParseMode(s)
			if err != nil {
				return nil, err
			}
			modes = append(modes, mode)
		}
	}

	variants := make([]policy.Variant, len(modes))
	for i, mode := range modes {
		variants[i] = policy.Variant{Format: format, Mode: mode}
	}
	return variants, nil
}

// PolicyRole returns the bundle's module role; unset defaults to core.
func (b *Bundle) PolicyRole() (policy.Role, error) {
	if b.Role == "" {
		return policy.RoleCore, nil
	}
	return policy.ParseRole(b.Role)
}

func (b *Bundle) Equal(other *Bundle) bool {
	return util.FastEqual(b, other, func(b, other *Bundle) bool {
		return b.Name == other.Name &&
			b.Entry == other.Entry &&
			b.Format == other.Format &&
			b.Modes.Equal(other.Modes) &&
			b.Role == other.Role &&
			slices.Equal(b.Externals, other.Externals) &&
			slices.Equal(b.Stubs, other.Stubs) &&
			b.FeatureFlags == other.FeatureFlags &&
			b.Sources.Equal(other.Sources) &&
			b.ExcludedFiles.Equal(other.ExcludedFiles) &&
			b.Interval == other.Interval
	})
}

// Source defines one directory tree of bundle sources.
type Source struct {
	Name          string    `json:"name"`
	Directory     string    `json:"directory"`
	Paths         []string  `json:"paths,omitempty"` // ordered scan patterns
	IncludedFiles StringSet `json:"included_files,omitempty"`
	ExcludedFiles StringSet `json:"excluded_files,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

func (s *Source) UnmarshalJSON(bs []byte) error {
	type rawSource Source
	var raw rawSource

	if err := json.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode source: %w", err)
	}

	*s = Source(raw)
	return s.validate()
}

func (s *Source) UnmarshalYAML(bs []byte) error {
	type rawSource Source
	var raw rawSource

	if err := yaml.Unmarshal(bs, &raw); err != nil {
		return fmt.Errorf("failed to decode source: %w", err)
	}

	*s = Source(raw)
	return s.validate()
}

// DefaultPaths are the scan patterns applied when a source declares none.
// The second pattern covers files at the directory root, which the first
// one's '**' cannot reach without an intervening segment.
var DefaultPaths = []string{"**/*.js", "*.js"}

// ScanPatterns returns the source's scan patterns, falling back to
// DefaultPaths.
func (s *Source) ScanPatterns() []string {
	if len(s.Paths) > 0 {
		return s.Paths
	}
	return DefaultPaths
}

func (s *Source) validate() error {
	for _, patterns := range [][]string{s.Paths, s.IncludedFiles, s.ExcludedFiles} {
		for _, pattern := range patterns {
			if _, err := glob.Compile(pattern); err != nil {
				return fmt.Errorf("failed to compile source pattern %q: %w", pattern, err)
			}
		}
	}
	return nil
}

func (s *Source) Equal(other *Source) bool {
	return util.FastEqual(s, other, func(s, other *Source) bool {
		return s.Name == other.Name &&
			s.Directory == other.Directory &&
			slices.Equal(s.Paths, other.Paths) &&
			s.IncludedFiles.Equal(other.IncludedFiles) &&
			s.ExcludedFiles.Equal(other.ExcludedFiles)
	})
}

type Sources []*Source

func (a Sources) Equal(b Sources) bool {
	return util.SetEqual(a, b, func(s *Source) string { return s.Name }, (*Source).Equal)
}

// Locations anchor the bundled repository on disk.
type Locations struct {
	Root        string `json:"root"`
	NodeModules string `json:"node_modules,omitempty"`
	Shims       string `json:"shims,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

func (l *Locations) Equal(other *Locations) bool {
	return util.FastEqual(l, other, func(l, other *Locations) bool {
		return l.Root == other.Root &&
			l.NodeModules == other.NodeModules &&
			l.Shims == other.Shims
	})
}

// ErrorCodes configures the error-code extraction collaborator.
type ErrorCodes struct {
	// Registry is the path of the persisted error-code registry file.
	Registry string `json:"registry"`

	// Extract enables extraction as a side effect of module map scans.
	Extract bool `json:"extract,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

// Service configures the continuous plan-building service.
type Service struct {
	Workers     int    `json:"workers,omitempty"`
	MetricsAddr string `json:"metrics_addr,omitempty"`

	_ struct{} `additionalProperties:"false"`
}

// Duration marshals as a string like "30s" or "5m" instead of int64.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	val, err := time.ParseDuration(str)
	*d = Duration(val)
	return err
}

func (d *Duration) UnmarshalYAML(bs []byte) error {
	var s string
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return err
	}
	val, err := time.ParseDuration(s)
	*d = Duration(val)
	return err
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

type StringSet []string

func (a StringSet) Equal(b StringSet) bool {
	return util.SetEqual(a, b, func(s string) string { return s }, func(a, b string) bool { return a == b })
}

func (a StringSet) Add(value string) StringSet {
	i := sort.Search(len(a), func(i int) bool { return a[i] >= value })
	if i < len(a) && a[i] == value {
		return a
	}

	return slices.Insert(a, i, value)
}

// ParseFile reads, validates and parses a single configuration file.
func ParseFile(filename string) (*Root, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	return Parse(bs)
}

// Parse validates and parses configuration bytes.
func Parse(bs []byte) (*Root, error) {
	if err := Validate(bs); err != nil {
		return nil, err
	}

	var root Root
	if err := yaml.Unmarshal(bs, &root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &root, nil
}

// Load merges the given configuration files and parses the result. At least
// one file is required.
func Load(files []string) (*Root, error) {
	if len(files) == 0 {
		return nil, errors.New("no configuration files given")
	}

	bs, err := Merge(files, false)
	if err != nil {
		return nil, err
	}

	return Parse(bs)
}
