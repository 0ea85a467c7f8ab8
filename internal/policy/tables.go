package policy

// Fixed module-name tables. These mirror the dependency surface of the source
// tree being bundled; changing them is a policy change, not a code change
// elsewhere, which is why they live in one place.

// SharedUtilityModules lists the third-party shared-utility modules. Node,
// RN and FB builds require these at runtime; UMD builds inline them via
// aliases instead.
var SharedUtilityModules = []string{
	"fbjs/lib/warning",
	"fbjs/lib/invariant",
	"fbjs/lib/emptyFunction",
	"fbjs/lib/emptyObject",
	"fbjs/lib/hyphenateStyleName",
	"fbjs/lib/getUnboundedScrollPosition",
	"fbjs/lib/camelizeStyleName",
	"fbjs/lib/containsNode",
	"fbjs/lib/shallowEqual",
	"fbjs/lib/getActiveElement",
	"fbjs/lib/focusNode",
	"fbjs/lib/EventListener",
	"fbjs/lib/memoizeStringOnly",
	"fbjs/lib/ExecutionEnvironment",
	"fbjs/lib/performanceNow",
}

const (
	// ObjectCopyModule is the object-copy utility required everywhere.
	ObjectCopyModule = "object-assign"

	// FrameworkModule is the isomorphic framework entry point; renderer
	// bundles leave it external so they share the host page's copy.
	FrameworkModule = "react"

	// DOMRendererModule is the DOM renderer entry point.
	DOMRendererModule = "react-dom"

	// PlatformFrameworkModule and PlatformDOMRendererModule are the FB
	// platform's differently-cased Haste names for the same modules. The
	// platform's module registry forbids case-only distinctions, and its
	// production code already requires the cased forms.
	PlatformFrameworkModule   = "React"
	PlatformDOMRendererModule = "ReactDOM"

	// OwnerRegistryModule and PriorityWarningModule resolve through the FB
	// platform's own aliasing path; they must never appear in the module
	// map for that variant or the two resolutions would collide.
	OwnerRegistryModule   = "ReactCurrentOwner"
	PriorityWarningModule = "lowPriorityWarning"

	// FeatureFlagsModule is the logical name of the feature-flag module.
	FeatureFlagsModule = "ReactFeatureFlags"

	// InvariantHelperModule is the shared invariant-message helper aliased
	// into every bundle.
	InvariantHelperModule = "reactProdInvariant"

	// ReconcilerModule is aliased in for renderer bundles only.
	ReconcilerModule = "react-reconciler"

	// stubModuleBasename is the shared no-op module substituted for
	// development-only machinery in production output.
	stubModuleBasename = "DevOnlyStubModule.js"
)

// IgnoredRendererModules are omitted from the dependency graph entirely when
// the bundler wires the mobile platform's own renderer: the view-binding
// module requires the renderer back, and inlining it would close the cycle.
// Ignored is stronger than external, so these are exposed through
// IgnoredModules rather than folded into the external list.
var IgnoredRendererModules = []string{
	"createReactNativeComponentClass",
	"UIManager",
}

// DevOnlyModules are development-only diagnostic modules stubbed out of
// production builds so no dangling references remain.
var DevOnlyModules = []string{
	"ReactComponentTreeHook",
	"ReactDebugCurrentFrame",
	"ReactPerf",
	"ReactTestUtils",
}

// legacyRedirects maps legacy compatibility package references (including
// their known subpaths) to locations relative to node_modules. UMD bundles
// self-contain these instead of requiring them externally. Order is fixed so
// the merge precedence stays auditable.
var legacyRedirects = []struct {
	name string
	rel  string
}{
	{"prop-types", "prop-types/index.js"},
	{"prop-types/checkPropTypes", "prop-types/checkPropTypes.js"},
	{"create-react-class", "create-react-class/index.js"},
	{"create-react-class/factory", "create-react-class/factory.js"},
	{"react-is", "react-is/index.js"},
	{"react-lifecycles-compat", "react-lifecycles-compat/index.js"},
}

// vendoredGraphicsModules maps graphics-library submodule names to locations
// relative to node_modules, aliased into UMD bundles only.
var vendoredGraphicsModules = []struct {
	name string
	rel  string
}{
	{"art/core/transform", "art/core/transform.js"},
	{"art/modes/current", "art/modes/current.js"},
	{"art/modes/fast-noSideEffects", "art/modes/fast-noSideEffects.js"},
}
