package policy_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bundle-tools/bundle-control-plane/internal/policy"
	"github.com/bundle-tools/bundle-control-plane/internal/util"
)

func TestBuildModuleMap(t *testing.T) {
	node := policy.Variant{Format: policy.FormatNode, Mode: policy.ModeDevelopment}
	fb := policy.Variant{Format: policy.FormatFB, Mode: policy.ModeDevelopment}

	cases := []struct {
		note  string
		files map[string]string
		opts  policy.ScanOptions
		exp   map[string]string
	}{
		{
			note: "basename keys with extension stripped",
			files: map[string]string{
				"packages/react/src/React.js":          "",
				"packages/react-dom/src/ReactDOM.js":   "",
				"packages/react-dom/src/client/DOM.js": "",
			},
			opts: policy.ScanOptions{
				Patterns: []string{"packages/*/src/**/*.js", "packages/*/src/*.js"},
				Variant:  node,
			},
			exp: map[string]string{
				"React":    "packages/react/src/React.js",
				"ReactDOM": "packages/react-dom/src/ReactDOM.js",
				"DOM":      "packages/react-dom/src/client/DOM.js",
			},
		},
		{
			note: "colliding basenames: later match silently overwrites",
			files: map[string]string{
				"packages/a/src/Shared.js": "",
				"packages/b/src/Shared.js": "",
			},
			opts: policy.ScanOptions{
				Patterns: []string{"packages/*/src/*.js"},
				Variant:  node,
			},
			exp: map[string]string{
				"Shared": "packages/b/src/Shared.js",
			},
		},
		{
			note: "tests, mocks and benchmarks are excluded by default",
			files: map[string]string{
				"src/Mod.js":                       "",
				"src/__tests__/Mod-test.js":        "",
				"src/__mocks__/MockMod.js":         "",
				"src/__benchmarks__/BenchMod.js":   "",
				"src/deep/__tests__/Other-test.js": "",
			},
			opts: policy.ScanOptions{
				Patterns: []string{"src/**/*.js", "src/*.js"},
				Variant:  node,
			},
			exp: map[string]string{
				"Mod": "src/Mod.js",
			},
		},
		{
			note: "caller exclusions apply on top of the defaults",
			files: map[string]string{
				"src/Mod.js":       "",
				"src/stories/S.js": "",
			},
			opts: policy.ScanOptions{
				Patterns: []string{"src/**/*.js", "src/*.js"},
				Excluded: []string{"**/stories/**"},
				Variant:  node,
			},
			exp: map[string]string{
				"Mod": "src/Mod.js",
			},
		},
		{
			note: "fb variant deletes reserved names even when sources exist",
			files: map[string]string{
				"src/ReactCurrentOwner.js":  "",
				"src/lowPriorityWarning.js": "",
				"src/Mod.js":                "",
			},
			opts: policy.ScanOptions{
				Patterns: []string{"src/*.js"},
				Variant:  fb,
			},
			exp: map[string]string{
				"Mod": "src/Mod.js",
			},
		},
		{
			note: "reserved names survive on other variants",
			files: map[string]string{
				"src/ReactCurrentOwner.js": "",
			},
			opts: policy.ScanOptions{
				Patterns: []string{"src/*.js"},
				Variant:  node,
			},
			exp: map[string]string{
				"ReactCurrentOwner": "src/ReactCurrentOwner.js",
			},
		},
		{
			note:  "pattern matching nothing is not an error",
			files: map[string]string{"README.md": ""},
			opts: policy.ScanOptions{
				Patterns: []string{"src/**/*.js"},
				Variant:  node,
			},
			exp: map[string]string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			got, err := policy.BuildModuleMap(util.MapFS(tc.files), "", tc.opts)
			if err != nil {
				t.Fatal(err)
			}
			exp := make(policy.AliasTable, len(tc.exp))
			for k, v := range tc.exp {
				exp[k] = filepath.FromSlash(v)
			}
			if diff := cmp.Diff(exp, got); diff != "" {
				t.Errorf("module map mismatch (-want,+got)\n%s", diff)
			}
		})
	}
}

func TestBuildModuleMapRootJoin(t *testing.T) {
	fsys := util.MapFS(map[string]string{"src/Mod.js": ""})
	got, err := policy.BuildModuleMap(fsys, filepath.FromSlash("/repo"), policy.ScanOptions{
		Patterns: []string{"src/*.js"},
		Variant:  policy.Variant{Format: policy.FormatNode},
	})
	if err != nil {
		t.Fatal(err)
	}
	if exp := filepath.FromSlash("/repo/src/Mod.js"); got["Mod"] != exp {
		t.Fatalf("expected %q, got %q", exp, got["Mod"])
	}
}

func TestBuildModuleMapExtractHook(t *testing.T) {
	fsys := util.MapFS(map[string]string{
		"src/A.js":                "",
		"src/B.js":                "",
		"src/__tests__/A-test.js": "",
	})

	var seen []string
	_, err := policy.BuildModuleMap(fsys, "", policy.ScanOptions{
		Patterns: []string{"src/**/*.js", "src/*.js"},
		Variant:  policy.Variant{Format: policy.FormatNode},
		Extract: func(path string) error {
			seen = append(seen, filepath.ToSlash(path))
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"src/A.js", "src/B.js"}, seen); diff != "" {
		t.Errorf("hook invocations (-want,+got)\n%s", diff)
	}
}

func TestBuildModuleMapExtractHookOverlappingPatterns(t *testing.T) {
	fsys := util.MapFS(map[string]string{
		"src/A.js": "",
	})

	var seen []string
	_, err := policy.BuildModuleMap(fsys, "", policy.ScanOptions{
		Patterns: []string{"src/*.js", "**/*.js"},
		Variant:  policy.Variant{Format: policy.FormatNode},
		Extract: func(path string) error {
			seen = append(seen, filepath.ToSlash(path))
			return nil
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"src/A.js"}, seen); diff != "" {
		t.Errorf("hook invocations (-want,+got)\n%s", diff)
	}
}

func TestBuildModuleMapExtractHookFailure(t *testing.T) {
	boom := errors.New("registry unavailable")
	_, err := policy.BuildModuleMap(util.MapFS(map[string]string{"src/A.js": ""}), "", policy.ScanOptions{
		Patterns: []string{"src/*.js"},
		Variant:  policy.Variant{Format: policy.FormatNode},
		Extract:  func(string) error { return boom },
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected extraction failure to propagate, got %v", err)
	}
}

func TestBuildModuleMapUnknownVariant(t *testing.T) {
	_, err := policy.BuildModuleMap(util.MapFS(nil), "", policy.ScanOptions{
		Variant: policy.Variant{Mode: 7},
	})
	var unknown *policy.UnknownVariantError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownVariantError, got %v", err)
	}
}
