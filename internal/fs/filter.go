package fs

import (
	"fmt"
	"io/fs"

	"github.com/gobwas/glob"
	lru "github.com/hashicorp/golang-lru"
)

// globCache holds compiled patterns shared across scans. Bundle configs reuse
// the same handful of patterns for every variant, so the cache stays tiny.
var globCache, _ = lru.New(256)

// Compile returns a path-aware glob for pattern, compiled with '/' as the
// separator so '*' stays within one path segment and '**' crosses segments.
func Compile(pattern string) (glob.Glob, error) {
	if g, ok := globCache.Get(pattern); ok {
		return g.(glob.Glob), nil
	}
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
	}
	globCache.Add(pattern, g)
	return g, nil
}

// CompileAll compiles every pattern in patterns, in order.
func CompileAll(patterns []string) ([]glob.Glob, error) {
	gs := make([]glob.Glob, len(patterns))
	for i, p := range patterns {
		g, err := Compile(p)
		if err != nil {
			return nil, err
		}
		gs[i] = g
	}
	return gs, nil
}

// MatchAny reports whether path matches any of the compiled patterns.
func MatchAny(gs []glob.Glob, path string) bool {
	for _, g := range gs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

type filterFS struct {
	fsys     fs.FS
	included []glob.Glob
	excluded []glob.Glob
}

// NewFilterFS wraps fsys so that only files matching one of the included
// patterns (all files, when included is empty) and none of the excluded
// patterns are visible. Directories are always traversable; filtering applies
// to files only.
func NewFilterFS(fsys fs.FS, included, excluded []string) (fs.FS, error) {
	inc, err := CompileAll(included)
	if err != nil {
		return nil, err
	}
	exc, err := CompileAll(excluded)
	if err != nil {
		return nil, err
	}
	return &filterFS{fsys: fsys, included: inc, excluded: exc}, nil
}

func (f *filterFS) keep(path string) bool {
	if len(f.included) > 0 && !MatchAny(f.included, path) {
		return false
	}
	return !MatchAny(f.excluded, path)
}

func (f *filterFS) Open(name string) (fs.File, error) {
	file, err := f.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if !info.IsDir() && !f.keep(name) {
		file.Close()
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return file, nil
}

func (f *filterFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(f.fsys, name)
	if err != nil {
		return nil, err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.IsDir() || f.keep(joinPath(name, e.Name())) {
			kept = append(kept, e)
		}
	}
	return kept, nil
}

func joinPath(dir, name string) string {
	if dir == "." || dir == "" {
		return name
	}
	return dir + "/" + name
}
