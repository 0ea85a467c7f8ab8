package policy

import (
	"path/filepath"
)

// ReplacementTable maps a literal module reference to its replacement.
// Keys and values carry their surrounding quote characters: the bundler
// applies them as textual substitutions over source, not as semantic import
// rewrites.
type ReplacementTable map[string]string

// ReplacementOptions are the caller-supplied inputs to Replacements.
type ReplacementOptions struct {
	// Stubs are literal module references (quotes included) to rewrite to
	// the shared no-op stub, for variant-specific or experimental
	// exclusions the fixed rules do not capture.
	Stubs []string

	// FeatureFlagsPath, when set, substitutes the given file for the
	// feature-flag module. When unset the module resolves to its default
	// location, or stays external where the platform injects flags at
	// runtime.
	FeatureFlagsPath string
}

// Replacements merges the five literal-rewrite sources for a variant, in
// fixed order with later sources overriding earlier ones on key collision:
// platform casing rewrites, dev-only stubs, legacy-package redirects,
// caller-supplied stubs, feature-flag substitution. A collision between
// sources is deliberate precedence, not an error.
func Replacements(v Variant, r Role, loc Locations, opts ReplacementOptions) (ReplacementTable, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}

	stub := quote(loc.StubModule())
	out := ReplacementTable{}

	// 1. Casing rewrite. The FB platform's module registry forbids
	// case-only distinctions and its production code requires the cased
	// forms.
	if v.Format == FormatFB {
		out[quote(FrameworkModule)] = quote(PlatformFrameworkModule)
		out[quote(DOMRendererModule)] = quote(PlatformDOMRendererModule)
	}

	// 2. Dev-only stubs. Production builds drop the diagnostic machinery
	// without leaving dangling references. RN production is exempt: the
	// platform runtime strips these itself.
	if v.Production() && v.Format != FormatRN {
		for _, name := range DevOnlyModules {
			out[quote(name)] = stub
		}
	}

	// 3. Legacy-package redirects, universal bundles only.
	if v.Format == FormatUMD {
		nm := loc.nodeModules()
		for _, lr := range legacyRedirects {
			out[quote(lr.name)] = quote(joinRel(nm, lr.rel))
		}
	}

	// 4. Caller-supplied stubs, already quoted by contract.
	for _, ref := range opts.Stubs {
		out[ref] = stub
	}

	// 5. Feature-flag substitution.
	if opts.FeatureFlagsPath != "" {
		out[quote(FeatureFlagsModule)] = quote(opts.FeatureFlagsPath)
	}

	return out, nil
}

func quote(s string) string {
	return "'" + s + "'"
}

func joinRel(dir, rel string) string {
	return filepath.Join(dir, filepath.FromSlash(rel))
}
