package policy

import (
	"slices"
)

// Externals returns the external-module sequence for a variant: the caller's
// base list, in order, followed by the modules the variant requires at
// runtime. The result is append-only with respect to base; entries are never
// removed or reordered, and duplicates are preserved because the downstream
// bundler emits require calls in sequence order.
func Externals(base []string, v Variant, r Role) ([]string, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}

	out := slices.Clone(base)

	switch v.Format {
	case FormatUMD:
		// The universal bundle self-contains its utilities (see
		// ResolveAliases); only the framework itself stays external for
		// renderer bundles.
		if r != RoleCore {
			out = append(out, FrameworkModule)
		}

	case FormatNode, FormatRN:
		out = append(out, SharedUtilityModules...)
		out = append(out, ObjectCopyModule)
		if r != RoleCore {
			out = append(out, FrameworkModule)
		}

	case FormatFB:
		out = append(out, SharedUtilityModules...)
		out = append(out, ObjectCopyModule, OwnerRegistryModule, PriorityWarningModule)
		if r != RoleCore {
			out = append(out, PlatformFrameworkModule)
		}
		if slices.Contains(base, DOMRendererModule) {
			out = append(out, PlatformDOMRendererModule)
		}
	}

	return out, nil
}

// IgnoredModules returns the modules the bundler must omit from the
// dependency graph entirely when wiring the mobile platform's own renderer.
// Ignored is stronger than external: an ignored module leaves no runtime
// import behind. The answer is fixed across variants and roles; the bundler
// collaborator applies it only where the renderer wiring is in play.
func IgnoredModules(Variant, Role) []string {
	return slices.Clone(IgnoredRendererModules)
}
