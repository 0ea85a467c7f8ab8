package policy_test

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bundle-tools/bundle-control-plane/internal/policy"
)

var testLocations = policy.Locations{Root: filepath.FromSlash("/repo")}

func TestResolveAliasesObjectCopy(t *testing.T) {
	umd := policy.Variant{Format: policy.FormatUMD, Mode: policy.ModeProduction}

	core, err := policy.ResolveAliases(nil, umd, policy.RoleCore, testLocations)
	if err != nil {
		t.Fatal(err)
	}
	renderer, err := policy.ResolveAliases(nil, umd, policy.RoleRenderer, testLocations)
	if err != nil {
		t.Fatal(err)
	}

	if core[policy.ObjectCopyModule] == "" || renderer[policy.ObjectCopyModule] == "" {
		t.Fatal("expected object-copy aliases for both roles")
	}
	if core[policy.ObjectCopyModule] == renderer[policy.ObjectCopyModule] {
		t.Fatalf("core and renderer must not share an object-copy target: %q",
			core[policy.ObjectCopyModule])
	}
}

func TestResolveAliases(t *testing.T) {
	cases := []struct {
		note    string
		v       policy.Variant
		r       policy.Role
		m       policy.AliasTable
		present []string
		absent  []string
	}{
		{
			note:    "umd self-contains the shared utilities",
			v:       policy.Variant{Format: policy.FormatUMD, Mode: policy.ModeDevelopment},
			r:       policy.RoleCore,
			present: append([]string{policy.ObjectCopyModule, "art/modes/current"}, policy.SharedUtilityModules...),
			absent:  []string{policy.ReconcilerModule},
		},
		{
			note:   "node leaves utilities external, so no aliases for them",
			v:      policy.Variant{Format: policy.FormatNode, Mode: policy.ModeProduction},
			r:      policy.RoleCore,
			absent: append([]string{policy.ObjectCopyModule, "art/modes/current"}, policy.SharedUtilityModules...),
		},
		{
			note:   "fb contributes no vendored aliases either",
			v:      policy.Variant{Format: policy.FormatFB, Mode: policy.ModeDevelopment},
			r:      policy.RoleRenderer,
			absent: []string{policy.ObjectCopyModule, "art/core/transform"},
		},
		{
			note:    "renderer role aliases the reconciler package",
			v:       policy.Variant{Format: policy.FormatRN, Mode: policy.ModeDevelopment},
			r:       policy.RoleRenderer,
			present: []string{policy.ReconcilerModule, policy.InvariantHelperModule},
		},
		{
			note: "module map entries are preserved",
			v:    policy.Variant{Format: policy.FormatNode, Mode: policy.ModeDevelopment},
			r:    policy.RoleCore,
			m: policy.AliasTable{
				"ReactChildren": filepath.FromSlash("/repo/packages/react/src/ReactChildren.js"),
			},
			present: []string{"ReactChildren", policy.InvariantHelperModule},
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			got, err := policy.ResolveAliases(tc.m, tc.v, tc.r, testLocations)
			if err != nil {
				t.Fatal(err)
			}
			for _, name := range tc.present {
				if got[name] == "" {
					t.Errorf("missing alias for %q", name)
				}
			}
			for _, name := range tc.absent {
				if _, ok := got[name]; ok {
					t.Errorf("unexpected alias for %q: %q", name, got[name])
				}
			}
		})
	}
}

func TestResolveAliasesLaterSourceWins(t *testing.T) {
	// A discovered source colliding with a fixed internal alias loses: the
	// internal alias source merges later.
	m := policy.AliasTable{
		policy.InvariantHelperModule: filepath.FromSlash("/repo/stray/reactProdInvariant.js"),
	}
	got, err := policy.ResolveAliases(m, policy.Variant{Format: policy.FormatNode}, policy.RoleCore, testLocations)
	if err != nil {
		t.Fatal(err)
	}
	exp := filepath.Join(testLocations.Root, "packages", "shared", "reactProdInvariant.js")
	if got[policy.InvariantHelperModule] != exp {
		t.Fatalf("expected internal alias to win, got %q", got[policy.InvariantHelperModule])
	}
}

func TestResolveAliasesIdempotent(t *testing.T) {
	m := policy.AliasTable{"Mod": filepath.FromSlash("/repo/src/Mod.js")}
	for _, v := range policy.Variants {
		a, err := policy.ResolveAliases(m, v, policy.RoleRenderer, testLocations)
		if err != nil {
			t.Fatal(err)
		}
		b, err := policy.ResolveAliases(m, v, policy.RoleRenderer, testLocations)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("%v: resolver not idempotent (-first,+second)\n%s", v, diff)
		}
	}
}
