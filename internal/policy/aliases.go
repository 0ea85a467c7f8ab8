package policy

import (
	"maps"
	"path/filepath"
)

// Locations anchor alias and replacement targets in the repository tree.
// Zero-value fields fall back to conventional paths under Root.
type Locations struct {
	// Root is the repository root of the source tree being bundled.
	Root string

	// NodeModules is the installed third-party dependency directory.
	NodeModules string

	// Shims is the directory holding shim and stub sources.
	Shims string
}

func (l Locations) nodeModules() string {
	if l.NodeModules != "" {
		return l.NodeModules
	}
	return filepath.Join(l.Root, "node_modules")
}

func (l Locations) shims() string {
	if l.Shims != "" {
		return l.Shims
	}
	return filepath.Join(l.Root, "scripts", "shims")
}

// StubModule is the path of the shared no-op stub module substituted for
// development-only functionality in production builds.
func (l Locations) StubModule() string {
	return filepath.Join(l.shims(), stubModuleBasename)
}

// ResolveAliases merges the discovered module map with the fixed internal
// aliases and the variant's vendored and third-party aliases into one flat
// name-to-path table. Later sources override earlier ones on key collision;
// the merge order is fixed: module map, internal packages, vendored
// dependencies, third-party modules. The result is a lookup table, not a
// graph, so it is cycle-free by construction.
func ResolveAliases(m AliasTable, v Variant, r Role, loc Locations) (AliasTable, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}

	out := make(AliasTable, len(m)+len(SharedUtilityModules)+8)
	maps.Copy(out, m)

	// Internal package aliases.
	out[InvariantHelperModule] = filepath.Join(loc.Root, "packages", "shared", "reactProdInvariant.js")
	if r == RoleRenderer {
		out[ReconcilerModule] = filepath.Join(loc.Root, "packages", "react-reconciler")
	}

	// Vendored and third-party aliases exist so the universal bundle
	// self-contains its dependencies. Every other variant leaves those
	// modules external (see Externals), so these sources contribute
	// nothing there.
	if v.Format != FormatUMD {
		return out, nil
	}

	if r == RoleCore {
		out[ObjectCopyModule] = filepath.Join(loc.nodeModules(), "object-assign", "index.js")
	} else {
		// Renderer bundles must share the host page's copy; the shim
		// forwards to the framework's internal implementation.
		out[ObjectCopyModule] = filepath.Join(loc.shims(), "ObjectAssignForwardingShim.js")
	}
	for _, vm := range vendoredGraphicsModules {
		out[vm.name] = joinRel(loc.nodeModules(), vm.rel)
	}

	for _, name := range SharedUtilityModules {
		out[name] = joinRel(loc.nodeModules(), name+".js")
	}

	return out, nil
}
