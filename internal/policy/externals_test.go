package policy_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bundle-tools/bundle-control-plane/internal/policy"
)

func TestExternalsAppendOnly(t *testing.T) {
	base := []string{"custom-external", "react-dom", "custom-external"}

	for _, v := range policy.Variants {
		for _, r := range []policy.Role{policy.RoleCore, policy.RoleRenderer} {
			got, err := policy.Externals(base, v, r)
			if err != nil {
				t.Fatalf("%v/%v: %v", v, r, err)
			}
			if len(got) < len(base) {
				t.Fatalf("%v/%v: result shorter than base: %v", v, r, got)
			}
			if diff := cmp.Diff(base, got[:len(base)]); diff != "" {
				t.Errorf("%v/%v: base prefix not preserved (-want,+got)\n%s", v, r, diff)
			}
		}
	}
}

func TestExternals(t *testing.T) {
	cases := []struct {
		note string
		base []string
		v    policy.Variant
		r    policy.Role
		exp  []string
	}{
		{
			note: "node development core: utilities and object copy, no framework",
			base: []string{"stream"},
			v:    policy.Variant{Format: policy.FormatNode, Mode: policy.ModeDevelopment},
			r:    policy.RoleCore,
			exp: append(append([]string{"stream"}, policy.SharedUtilityModules...),
				policy.ObjectCopyModule),
		},
		{
			note: "node production renderer appends framework last",
			base: nil,
			v:    policy.Variant{Format: policy.FormatNode, Mode: policy.ModeProduction},
			r:    policy.RoleRenderer,
			exp: append(append([]string(nil), policy.SharedUtilityModules...),
				policy.ObjectCopyModule, policy.FrameworkModule),
		},
		{
			note: "rn mirrors node",
			base: nil,
			v:    policy.Variant{Format: policy.FormatRN, Mode: policy.ModeDevelopment},
			r:    policy.RoleRenderer,
			exp: append(append([]string(nil), policy.SharedUtilityModules...),
				policy.ObjectCopyModule, policy.FrameworkModule),
		},
		{
			note: "umd core appends nothing",
			base: []string{"react"},
			v:    policy.Variant{Format: policy.FormatUMD, Mode: policy.ModeProduction},
			r:    policy.RoleCore,
			exp:  []string{"react"},
		},
		{
			note: "umd renderer appends framework",
			base: nil,
			v:    policy.Variant{Format: policy.FormatUMD, Mode: policy.ModeDevelopment},
			r:    policy.RoleRenderer,
			exp:  []string{policy.FrameworkModule},
		},
		{
			note: "fb core appends reserved platform names",
			base: nil,
			v:    policy.Variant{Format: policy.FormatFB, Mode: policy.ModeDevelopment},
			r:    policy.RoleCore,
			exp: append(append([]string(nil), policy.SharedUtilityModules...),
				policy.ObjectCopyModule, policy.OwnerRegistryModule, policy.PriorityWarningModule),
		},
		{
			note: "fb renderer with dom renderer in base appends cased names",
			base: []string{policy.DOMRendererModule},
			v:    policy.Variant{Format: policy.FormatFB, Mode: policy.ModeProduction},
			r:    policy.RoleRenderer,
			exp: append(append([]string{policy.DOMRendererModule}, policy.SharedUtilityModules...),
				policy.ObjectCopyModule, policy.OwnerRegistryModule, policy.PriorityWarningModule,
				policy.PlatformFrameworkModule, policy.PlatformDOMRendererModule),
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			got, err := policy.Externals(tc.base, tc.v, tc.r)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.exp, got); diff != "" {
				t.Errorf("externals mismatch (-want,+got)\n%s", diff)
			}
		})
	}
}

func TestExternalsUnknownVariant(t *testing.T) {
	_, err := policy.Externals(nil, policy.Variant{Format: 42}, policy.RoleCore)
	var unknown *policy.UnknownVariantError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownVariantError, got %v", err)
	}
}

func TestIgnoredModules(t *testing.T) {
	for _, v := range policy.Variants {
		got := policy.IgnoredModules(v, policy.RoleRenderer)
		if diff := cmp.Diff(policy.IgnoredRendererModules, got); diff != "" {
			t.Errorf("%v: ignored modules (-want,+got)\n%s", v, diff)
		}
		for _, name := range got {
			ext, err := policy.Externals(nil, v, policy.RoleRenderer)
			if err != nil {
				t.Fatal(err)
			}
			if slices.Contains(ext, name) {
				t.Errorf("%v: ignored module %q folded into external list", v, name)
			}
		}
	}
}
