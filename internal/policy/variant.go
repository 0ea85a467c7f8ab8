package policy

import (
	"fmt"
	"strings"
)

// Format is the output format of a build variant.
type Format int

const (
	// FormatUMD is the self-contained universal-module browser build.
	FormatUMD Format = iota
	// FormatNode is the CommonJS build resolved through node_modules.
	FormatNode
	// FormatFB is the internal-platform build resolved through the Haste
	// module registry.
	FormatFB
	// FormatRN is the mobile-platform build shipped alongside the platform
	// runtime.
	FormatRN

	numFormats
)

func (f Format) String() string {
	switch f {
	case FormatUMD:
		return "umd"
	case FormatNode:
		return "node"
	case FormatFB:
		return "fb"
	case FormatRN:
		return "rn"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// Mode is the optimization level of a build variant.
type Mode int

const (
	ModeDevelopment Mode = iota
	ModeProduction

	numModes
)

func (m Mode) String() string {
	switch m {
	case ModeDevelopment:
		return "development"
	case ModeProduction:
		return "production"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Variant selects the policy branch for a single build invocation. It is the
// pair of output format and optimization level; the set of valid variants is
// closed and every policy function handles all of them or fails with an
// UnknownVariantError.
type Variant struct {
	Format Format
	Mode   Mode
}

func (v Variant) String() string {
	return v.Format.String() + "/" + v.Mode.String()
}

// Production reports whether the variant is a production-optimized build.
func (v Variant) Production() bool {
	return v.Mode == ModeProduction
}

// Variants is the closed set of build variants, in build order.
var Variants = func() []Variant {
	vs := make([]Variant, 0, int(numFormats)*int(numModes))
	for f := Format(0); f < numFormats; f++ {
		for m := Mode(0); m < numModes; m++ {
			vs = append(vs, Variant{Format: f, Mode: m})
		}
	}
	return vs
}()

func (v Variant) validate() error {
	if v.Format < 0 || v.Format >= numFormats || v.Mode < 0 || v.Mode >= numModes {
		return &UnknownVariantError{Variant: v}
	}
	return nil
}

// UnknownVariantError reports a variant value outside the closed set reaching
// a policy branch. It is a configuration error: falling through silently
// would produce an incomplete policy.
type UnknownVariantError struct {
	Variant Variant
}

func (err *UnknownVariantError) Error() string {
	return fmt.Sprintf("unknown bundle variant %q", err.Variant.String())
}

// ParseFormat maps a configuration string to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "umd":
		return FormatUMD, nil
	case "node":
		return FormatNode, nil
	case "fb":
		return FormatFB, nil
	case "rn":
		return FormatRN, nil
	}
	return 0, fmt.Errorf("unknown bundle format %q", s)
}

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "development":
		return ModeDevelopment, nil
	case "production":
		return ModeProduction, nil
	}
	return 0, fmt.Errorf("unknown bundle mode %q", s)
}

// ParseVariant maps a "format/mode" string, as produced by Variant.String,
// back to a Variant.
func ParseVariant(s string) (Variant, error) {
	format, mode, ok := strings.Cut(s, "/")
	if !ok {
		return Variant{}, fmt.Errorf("invalid bundle variant %q, want format/mode", s)
	}
	f, err := ParseFormat(format)
	if err != nil {
		return Variant{}, err
	}
	m, err := ParseMode(mode)
	if err != nil {
		return Variant{}, err
	}
	return Variant{Format: f, Mode: m}, nil
}

// Role states whether a module belongs to the isomorphic core or to a
// platform-specific renderer. It is orthogonal to the variant.
type Role int

const (
	RoleCore Role = iota
	RoleRenderer
)

func (r Role) String() string {
	switch r {
	case RoleCore:
		return "core"
	case RoleRenderer:
		return "renderer"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// ParseRole maps a configuration string to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "core":
		return RoleCore, nil
	case "renderer":
		return RoleRenderer, nil
	}
	return 0, fmt.Errorf("unknown module role %q", s)
}
