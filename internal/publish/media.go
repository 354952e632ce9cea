package publish

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMediaDir holds fallback images used when a post has none configured.
const DefaultMediaDir = "assets/default_images"

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// MediaResolver picks the media attached to a post.
type MediaResolver struct {
	// Paths, when non-empty, is used as-is.
	Paths []string
	// Dir is searched for the first image when Paths is empty.
	Dir string
}

// Resolve returns the configured paths, or the first image (by name) in Dir
// as an absolute path. An empty result is not an error; the publish request
// validation rejects it.
func (m *MediaResolver) Resolve() ([]string, error) {
	if len(m.Paths) > 0 {
		return append([]string(nil), m.Paths...), nil
	}

	dir := m.Dir
	if dir == "" {
		dir = DefaultMediaDir
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read media directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Strings(names)

	abs, err := filepath.Abs(filepath.Join(dir, names[0]))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media path: %w", err)
	}
	return []string{abs}, nil
}
