package sym

import (
	"fmt"
	"os"
	gopath "path"
	"path/filepath"
	"strings"
)

// Loader resolves an import path against the origin of the importing
// source and returns the canonical origin of the target plus its bytes.
// The canonical origin is used for diagnostics, cycle detection and
// import caching.
type Loader interface {
	Load(origin, path string) (string, []byte, error)
}

// FileLoader loads imports from the filesystem, resolving relative paths
// against the directory of the importing file. When Root is set, targets
// outside it are rejected.
type FileLoader struct {
	Root string
}

// Load implements Loader.
func (l *FileLoader) Load(origin, path string) (string, []byte, error) {
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(origin), target)
	}
	if abs, err := filepath.Abs(target); err == nil {
		target = abs
	}

	if l.Root != "" {
		root, err := filepath.Abs(l.Root)
		if err != nil {
			return "", nil, err
		}
		if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
			return "", nil, fmt.Errorf("path %q is outside the import sandbox %q", path, l.Root)
		}
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return "", nil, err
	}
	return target, data, nil
}

// MapLoader serves imports from an in-memory map of slash-separated
// paths to source text. Used by tests.
type MapLoader map[string]string

// Load implements Loader.
func (m MapLoader) Load(origin, path string) (string, []byte, error) {
	target := gopath.Clean(gopath.Join(gopath.Dir(origin), path))
	if src, ok := m[target]; ok {
		return target, []byte(src), nil
	}
	if src, ok := m[path]; ok {
		return path, []byte(src), nil
	}
	return "", nil, fmt.Errorf("no such file %q", path)
}
