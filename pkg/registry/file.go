package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
)

// FileStore keeps the registry in a single JSON document of the form
// {"deed": {"2025035356": "UoeeHD2neY2ZhPv5a1dEin"}}. Every write rewrites
// the file.
type FileStore struct {
	mu   sync.RWMutex
	path string
	data map[string]map[string]string
}

// OpenFile loads path, starting empty when it does not exist yet.
func OpenFile(path string) (*FileStore, error) {
	fs := &FileStore{path: path, data: make(map[string]map[string]string)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	if len(raw) == 0 {
		return fs, nil
	}
	if err := json.Unmarshal(raw, &fs.data); err != nil {
		return nil, fmt.Errorf("%w: registry %s: %v", errors.ErrInvalidInput, path, err)
	}
	return fs, nil
}

func (f *FileStore) GetID(kind, key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	id, ok := f.data[kind][key]
	if !ok {
		return "", fmt.Errorf("%w: %s %s", errors.ErrNotFound, kind, key)
	}
	return id, nil
}

func (f *FileStore) PutID(kind, key, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data[kind] == nil {
		f.data[kind] = make(map[string]string)
	}
	if f.data[kind][key] == id {
		return nil
	}
	f.data[kind][key] = id
	return f.save()
}

func (f *FileStore) IDs(kind string) (map[string]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(f.data[kind]))
	for k, v := range f.data[kind] {
		out[k] = v
	}
	return out, nil
}

// Kinds lists the namespaces present in the file.
func (f *FileStore) Kinds() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.data))
	for k := range f.data {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (f *FileStore) Close() error { return nil }

// save writes to a temp file in the same directory and renames it over the
// registry so a crash never leaves a truncated file behind.
func (f *FileStore) save() error {
	raw, err := json.MarshalIndent(f.data, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".registry-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(raw, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
