// Package storage finds stored documents across the configured storage roots
// and chooses the root new uploads are placed in.
package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// Located is one filename resolved to a file under a storage root.
type Located struct {
	Name string
	Root string
	Path string
}

// Result is the outcome of a Locate call. Filenames that were not found in
// any root are listed in Missing; that is not an error.
type Result struct {
	Found   []Located
	Missing []string
}

// Count is the number of filenames that were found.
func (r Result) Count() int { return len(r.Found) }

// Paths returns the full paths of the found files in request order.
func (r Result) Paths() []string {
	paths := make([]string, 0, len(r.Found))
	for _, f := range r.Found {
		paths = append(paths, f.Path)
	}
	return paths
}

// Locate resolves each filename against roots, searched in the given order;
// the first root holding a file with exactly that base name wins. Only
// immediate children are considered: no recursion, no case folding.
func Locate(filenames, roots []string) Result {
	var res Result
	for _, name := range filenames {
		if loc, ok := locate(name, roots); ok {
			res.Found = append(res.Found, loc)
		} else {
			res.Missing = append(res.Missing, name)
		}
	}
	return res
}

// LocateSingle is Locate for one filename.
func LocateSingle(filename string, roots []string) (string, bool) {
	loc, ok := locate(filename, roots)
	return loc.Path, ok
}

// SearchRoots returns the roots a lookup should scan: only the recorded root
// when a manifest record carries one, otherwise every configured root.
func SearchRoots(recordedRoot string, configured []string) []string {
	if recordedRoot != "" {
		return []string{recordedRoot}
	}
	return configured
}

func locate(name string, roots []string) (Located, bool) {
	if !isBaseName(name) {
		return Located{}, false
	}
	for _, root := range roots {
		p := filepath.Join(root, name)
		fi, err := os.Stat(p)
		if err != nil || fi.IsDir() {
			continue
		}
		return Located{Name: name, Root: root, Path: p}, true
	}
	return Located{}, false
}

// isBaseName rejects anything that could address a file outside a root.
func isBaseName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, 0)
}
