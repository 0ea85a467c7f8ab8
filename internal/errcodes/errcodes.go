// Package errcodes maintains the persistent registry that maps production
// error codes to invariant messages. Extraction appends codes for messages
// it has not seen before; existing codes are never renumbered, shipped
// bundles decode against them.
package errcodes

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/yalue/merged_fs"

	ocfs "github.com/bundle-tools/bundle-control-plane/internal/fs"
)

const sourceSuffix = ".js"

// A string expression as it appears in source: one quoted literal, or several
// joined with '+'. Messages longer than a line are written concatenated.
var (
	literal     = `'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"`
	stringExpr  = `(?:` + literal + `)(?:\s*\+\s*(?:` + literal + `))*`
	invariantRx = regexp.MustCompile(`\binvariant\s*\(\s*[^,()]+,\s*(` + stringExpr + `)`)
	literalRx   = regexp.MustCompile(literal)
)

// Dir is one directory tree to extract codes from.
type Dir struct {
	Path          string
	IncludedFiles []string
	ExcludedFiles []string
}

// Registry is the error code registry. Codes are dense integers assigned in
// extraction order. Safe for concurrent use.
type Registry struct {
	path     string
	mu       sync.Mutex
	messages []string
	index    map[string]int
	dirty    bool
}

// Open loads the registry file at path. A missing file yields an empty
// registry; Flush will create it.
func Open(path string) (*Registry, error) {
	r := &Registry{path: path, index: map[string]int{}}

	bs, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return r, nil
		}
		return nil, err
	}

	var byCode map[string]string
	if err := json.Unmarshal(bs, &byCode); err != nil {
		return nil, fmt.Errorf("failed to unmarshal error code registry %v: %w", path, err)
	}

	r.messages = make([]string, len(byCode))
	for key, message := range byCode {
		code, err := strconv.Atoi(key)
		if err != nil || code < 0 || code >= len(byCode) || key != strconv.Itoa(code) {
			return nil, fmt.Errorf("error code registry %v: invalid code %q", path, key)
		}
		r.messages[code] = message
		r.index[message] = code
	}

	if len(r.index) != len(r.messages) {
		return nil, fmt.Errorf("error code registry %v: duplicate codes", path)
	}

	return r, nil
}

// Code returns the code assigned to message, if any.
func (r *Registry) Code(message string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.index[message]
	return code, ok
}

// Add assigns the next free code to message, or returns the existing one.
func (r *Registry) Add(message string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(message)
}

func (r *Registry) add(message string) int {
	if code, ok := r.index[message]; ok {
		return code
	}
	code := len(r.messages)
	r.messages = append(r.messages, message)
	r.index[message] = code
	r.dirty = true
	return code
}

// Messages returns the registered messages in code order.
func (r *Registry) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.messages)
}

// ExtractSource registers every invariant message found in src and returns
// the number of messages that were new.
func (r *Registry) ExtractSource(src []byte) int {
	var added int
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range invariantRx.FindAllSubmatch(src, -1) {
		message := joinLiterals(string(m[1]))
		if _, ok := r.index[message]; !ok {
			r.add(message)
			added++
		}
	}
	return added
}

// ExtractFile extracts from a single file of fsys. Non-source files are
// skipped without error.
func (r *Registry) ExtractFile(fsys fs.FS, path string) error {
	if filepath.Ext(path) != sourceSuffix {
		return nil
	}
	bs, err := fs.ReadFile(fsys, path)
	if err != nil {
		return err
	}
	r.ExtractSource(bs)
	return nil
}

// Hook adapts the registry to a module map scan callback. The scan hands
// over resolved filesystem paths, so the hook reads from the host.
func (r *Registry) Hook() func(path string) error {
	return func(path string) error {
		if filepath.Ext(path) != sourceSuffix {
			return nil
		}
		bs, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		r.ExtractSource(bs)
		return nil
	}
}

// Scan extracts from all source files under the given directory trees,
// applying each tree's include and exclude filters.
func (r *Registry) Scan(dirs []Dir) error {
	fses := make([]fs.FS, 0, len(dirs))
	for _, d := range dirs {
		f, err := ocfs.NewFilterFS(os.DirFS(d.Path), d.IncludedFiles, d.ExcludedFiles)
		if err != nil {
			return fmt.Errorf("filter %v: %w", d.Path, err)
		}
		fses = append(fses, f)
	}

	return r.ScanFS(merged_fs.MergeMultiple(fses...))
}

// ScanFS extracts from all source files of fsys.
func (r *Registry) ScanFS(fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return r.ExtractFile(fsys, path)
	})
}

// Flush writes the registry back to its file if anything was added. Codes
// are written in numeric order so diffs stay reviewable.
func (r *Registry) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.dirty {
		return nil
	}

	var buf bytes.Buffer
	buf.WriteString("{")
	for code, message := range r.messages {
		if code > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		key, _ := json.Marshal(strconv.Itoa(code))
		buf.Write(key)
		buf.WriteString(": ")
		value, _ := json.Marshal(message)
		buf.Write(value)
	}
	buf.WriteString("\n}\n")

	if err := os.WriteFile(r.path, buf.Bytes(), 0644); err != nil {
		return err
	}

	r.dirty = false
	return nil
}

// joinLiterals flattens a source string expression into its message text.
func joinLiterals(expr string) string {
	var sb strings.Builder
	for _, lit := range literalRx.FindAllString(expr, -1) {
		sb.WriteString(unescape(lit[1 : len(lit)-1]))
	}
	return sb.String()
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte(s[i])
			}
			continue
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
