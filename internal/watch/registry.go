package watch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Registry is the persisted set of watched keywords and categories.
// Keyword insertion order is preserved so incremental cycles iterate
// deterministically. Every mutation is persisted immediately as a
// complete, atomic rewrite of the file.
type Registry struct {
	path string
	mu   sync.Mutex
	data registryFile
}

type registryFile struct {
	Keywords   []string `json:"keywords"`
	Categories []string `json:"categories"`
}

// OpenRegistry loads the registry from path, starting empty if the file
// does not exist yet.
func OpenRegistry(path string) (*Registry, error) {
	r := &Registry{
		path: path,
		data: registryFile{Keywords: []string{}, Categories: []string{}},
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	if err := json.Unmarshal(raw, &r.data); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return r, nil
}

// Add registers a keyword and optional categories, skipping values
// already present. The mutation is confirmed only once persisted.
func (r *Registry) Add(keyword string, categories []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if keyword != "" && !slices.Contains(r.data.Keywords, keyword) {
		r.data.Keywords = append(r.data.Keywords, keyword)
	}
	for _, cat := range categories {
		if !slices.Contains(r.data.Categories, cat) {
			r.data.Categories = append(r.data.Categories, cat)
		}
	}

	return r.save()
}

// Remove drops a keyword; removing an unknown keyword is a no-op.
func (r *Registry) Remove(keyword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := slices.Index(r.data.Keywords, keyword)
	if idx < 0 {
		return nil
	}
	r.data.Keywords = slices.Delete(r.data.Keywords, idx, idx+1)

	return r.save()
}

// Snapshot returns copies of the current keyword and category lists.
func (r *Registry) Snapshot() (keywords, categories []string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.data.Keywords), slices.Clone(r.data.Categories), nil
}

func (r *Registry) save() error {
	raw, err := json.MarshalIndent(r.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	return atomicWrite(r.path, raw)
}

// atomicWrite replaces path with data via a temp file and rename, so a
// crash mid-write never leaves a corrupt file behind.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
