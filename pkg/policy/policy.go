package policy

import (
	"io/fs"

	internal "github.com/bundle-tools/bundle-control-plane/internal/policy"
)

// Core types, shared with the service internals.
type (
	Format              = internal.Format
	Mode                = internal.Mode
	Role                = internal.Role
	Variant             = internal.Variant
	AliasTable          = internal.AliasTable
	ReplacementTable    = internal.ReplacementTable
	Locations           = internal.Locations
	ScanOptions         = internal.ScanOptions
	ReplacementOptions  = internal.ReplacementOptions
	UnknownVariantError = internal.UnknownVariantError
)

const (
	FormatUMD  = internal.FormatUMD
	FormatNode = internal.FormatNode
	FormatFB   = internal.FormatFB
	FormatRN   = internal.FormatRN

	ModeDevelopment = internal.ModeDevelopment
	ModeProduction  = internal.ModeProduction

	RoleCore     = internal.RoleCore
	RoleRenderer = internal.RoleRenderer
)

// Variants is the closed set of build variants, in build order.
var Variants = internal.Variants

func ParseFormat(s string) (Format, error)   { return internal.ParseFormat(s) }
func ParseMode(s string) (Mode, error)       { return internal.ParseMode(s) }
func ParseRole(s string) (Role, error)       { return internal.ParseRole(s) }
func ParseVariant(s string) (Variant, error) { return internal.ParseVariant(s) }

// BuildModuleMap scans fsys for module sources and returns the name to path
// table for the variant.
func BuildModuleMap(fsys fs.FS, root string, opts ScanOptions) (AliasTable, error) {
	return internal.BuildModuleMap(fsys, root, opts)
}

// Externals returns the extended copy of base for the variant and role.
func Externals(base []string, v Variant, r Role) ([]string, error) {
	return internal.Externals(base, v, r)
}

// IgnoredModules returns the modules dropped from the bundle outright.
func IgnoredModules(v Variant, r Role) []string {
	return internal.IgnoredModules(v, r)
}

// ResolveAliases returns the module map extended with the variant's fixed
// aliases.
func ResolveAliases(m AliasTable, v Variant, r Role, loc Locations) (AliasTable, error) {
	return internal.ResolveAliases(m, v, r, loc)
}

// Replacements returns the source text substitution table for the variant.
func Replacements(v Variant, r Role, loc Locations, opts ReplacementOptions) (ReplacementTable, error) {
	return internal.Replacements(v, r, loc, opts)
}
