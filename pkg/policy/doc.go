// Package policy is the public resolution policy API: given a build variant
// and a module role, it decides which modules are bundled, externalized,
// ignored, aliased or replaced.
//
// # Variants and Roles
//
// A variant is the pair of output format (umd, node, fb, rn) and optimization
// mode (development, production). The set of variants is closed; passing a
// value outside it fails with an UnknownVariantError rather than falling
// through to partial policy. The role says whether the bundled module is the
// isomorphic core or a platform renderer:
//
//	v := policy.Variant{Format: policy.FormatUMD, Mode: policy.ModeProduction}
//	r := policy.RoleRenderer
//
// # Module Maps
//
// BuildModuleMap scans source trees for modules, keyed by basename with the
// extension stripped:
//
//	table, err := policy.BuildModuleMap(os.DirFS(dir), dir, policy.ScanOptions{
//	    Patterns: []string{"**/*.js", "*.js"},
//	    Variant:  v,
//	})
//
// # Resolution
//
// Externals, IgnoredModules, ResolveAliases and Replacements each answer one
// question for the variant. Inputs are never mutated; every call returns a
// fresh table:
//
//	loc := policy.Locations{Root: "/repo"}
//	externals, err := policy.Externals(base, v, r)
//	aliases, err := policy.ResolveAliases(table, v, r, loc)
//	repl, err := policy.Replacements(v, r, loc, policy.ReplacementOptions{})
//
// Replacement tables key by quoted literal ("'react'") because the consumer
// substitutes source text, not resolved paths.
package policy
