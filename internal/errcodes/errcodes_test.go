package errcodes_test

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/bundle-tools/bundle-control-plane/internal/errcodes"
)

func TestExtractSource(t *testing.T) {
	cases := []struct {
		note string
		src  string
		exp  []string
	}{
		{
			note: "single quoted message",
			src:  `invariant(typeof fn === 'function', 'Expected a function');`,
			exp:  []string{"Expected a function"},
		},
		{
			note: "double quoted message",
			src:  `invariant(x != null, "Element must not be null");`,
			exp:  []string{"Element must not be null"},
		},
		{
			note: "concatenated message across lines",
			src: `invariant(
  container != null,
  'Target container is not a DOM element. ' +
    'Check the render call.'
);`,
			exp: []string{"Target container is not a DOM element. Check the render call."},
		},
		{
			note: "format specifiers kept verbatim",
			src:  `invariant(false, 'Element type is invalid: expected a string but got: %s.', type);`,
			exp:  []string{"Element type is invalid: expected a string but got: %s."},
		},
		{
			note: "escaped quote in message",
			src:  `invariant(ok, 'Unexpected token \'<\' in input');`,
			exp:  []string{"Unexpected token '<' in input"},
		},
		{
			note: "multiple calls in one file",
			src: `invariant(a, 'first');
doSomething();
invariant(b, 'second');`,
			exp: []string{"first", "second"},
		},
		{
			note: "no invariant calls",
			src:  `warning(false, 'not an invariant');`,
			exp:  nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.note, func(t *testing.T) {
			r, err := errcodes.Open(filepath.Join(t.TempDir(), "codes.json"))
			if err != nil {
				t.Fatal(err)
			}
			r.ExtractSource([]byte(tc.src))
			if got := r.Messages(); !slices.Equal(got, tc.exp) {
				t.Fatalf("expected %v but got %v", tc.exp, got)
			}
		})
	}
}

func TestCodesAreStable(t *testing.T) {
	r, err := errcodes.Open(filepath.Join(t.TempDir(), "codes.json"))
	if err != nil {
		t.Fatal(err)
	}

	first := r.Add("Expected a function")
	second := r.Add("Element must not be null")

	if first != 0 || second != 1 {
		t.Fatalf("expected codes 0 and 1, got %d and %d", first, second)
	}

	// Re-adding never renumbers.
	if again := r.Add("Expected a function"); again != first {
		t.Fatalf("expected code %d, got %d", first, again)
	}
}

func TestOpenFlushRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.json")

	r, err := errcodes.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	r.Add("Expected a function")
	r.Add("Element must not be null")

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	r2, err := errcodes.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if code, ok := r2.Code("Element must not be null"); !ok || code != 1 {
		t.Fatalf("expected code 1, got %d (found: %v)", code, ok)
	}

	if next := r2.Add("A third message"); next != 2 {
		t.Fatalf("expected code 2, got %d", next)
	}
}

func TestFlushOnlyWhenDirty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.json")

	r, err := errcodes.Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Flush(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected no registry file for an empty, never-added registry")
	}
}

func TestOpenRejectsSparseCodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codes.json")
	if err := os.WriteFile(path, []byte(`{"0": "a", "5": "b"}`), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := errcodes.Open(path)
	if err == nil || !strings.Contains(err.Error(), "invalid code") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestScanFS(t *testing.T) {
	fsys := fstest.MapFS{
		"packages/react/src/React.js": &fstest.MapFile{
			Data: []byte(`invariant(a, 'from react');`),
		},
		"packages/react-dom/src/ReactDOM.js": &fstest.MapFile{
			Data: []byte(`invariant(b, 'from react-dom');`),
		},
		"packages/react/README.md": &fstest.MapFile{
			Data: []byte(`invariant(c, 'not source, not extracted');`),
		},
	}

	r, err := errcodes.Open(filepath.Join(t.TempDir(), "codes.json"))
	if err != nil {
		t.Fatal(err)
	}

	if err := r.ScanFS(fsys); err != nil {
		t.Fatal(err)
	}

	got := r.Messages()
	exp := []string{"from react", "from react-dom"}
	slices.Sort(got)
	if !slices.Equal(got, exp) {
		t.Fatalf("expected %v but got %v", exp, got)
	}
}

func TestScanDirsWithFilters(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"src/Main.js":                "invariant(a, 'kept');",
		"src/__tests__/Main-test.js": "invariant(b, 'filtered out');",
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	r, err := errcodes.Open(filepath.Join(t.TempDir(), "codes.json"))
	if err != nil {
		t.Fatal(err)
	}

	err = r.Scan([]errcodes.Dir{{
		Path:          dir,
		ExcludedFiles: []string{"**/__tests__/**"},
	}})
	if err != nil {
		t.Fatal(err)
	}

	if got := r.Messages(); !slices.Equal(got, []string{"kept"}) {
		t.Fatalf("unexpected messages: %v", got)
	}
}
