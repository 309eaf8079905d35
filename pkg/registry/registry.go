// Package registry remembers which entity ID was assigned to each record so
// later runs patch the same entities instead of creating duplicates.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
)

const schemaPrefix = "schema:"

// Store is the key/value backend of a Registry.
type Store interface {
	// GetID returns errors.ErrNotFound when kind/key was never assigned.
	GetID(kind, key string) (string, error)
	PutID(kind, key, id string) error
	IDs(kind string) (map[string]string, error)
	Close() error
}

// Entry is one entity produced from a record.
type Entry struct {
	Kind string   `json:"kind"`
	Key  string   `json:"key"`
	ID   graph.ID `json:"id"`
	Name string   `json:"name,omitempty"`
}

// Registry maps (kind, natural key) to entity IDs.
type Registry struct {
	store Store
}

func New(s Store) *Registry {
	return &Registry{store: s}
}

// Lookup returns the ID previously assigned to kind/key.
func (r *Registry) Lookup(kind, key string) (graph.ID, bool) {
	id, err := r.store.GetID(kind, key)
	if err != nil || id == "" {
		return "", false
	}
	return graph.ID(id), true
}

func (r *Registry) Assign(kind, key string, id graph.ID) error {
	if kind == "" || key == "" {
		return fmt.Errorf("%w: registry entry needs kind and key", errors.ErrInvalidInput)
	}
	if !graph.ValidID(string(id)) {
		return fmt.Errorf("%w: %q is not an entity id", errors.ErrInvalidInput, id)
	}
	return r.store.PutID(kind, key, string(id))
}

// Record assigns every entry, stopping at the first failure.
func (r *Registry) Record(entries []Entry) error {
	for _, e := range entries {
		if err := r.Assign(e.Kind, e.Key, e.ID); err != nil {
			return fmt.Errorf("record %s %s: %w", e.Kind, e.Key, err)
		}
	}
	return nil
}

// Entries lists the registered entities of kind ordered by key.
func (r *Registry) Entries(kind string) ([]Entry, error) {
	ids, err := r.store.IDs(kind)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(ids))
	for key, id := range ids {
		out = append(out, Entry{Kind: kind, Key: key, ID: graph.ID(id)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Schema returns the saved ontology IDs of kind, or errors.ErrNotFound.
func (r *Registry) Schema(kind string) (map[string]string, error) {
	ids, err := r.store.IDs(schemaPrefix + kind)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no %s schema", errors.ErrNotFound, kind)
	}
	return ids, nil
}

func (r *Registry) SaveSchema(kind string, ids map[string]string) error {
	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := r.store.PutID(schemaPrefix+kind, name, ids[name]); err != nil {
			return fmt.Errorf("save %s schema: %w", kind, err)
		}
	}
	return nil
}

func (r *Registry) Close() error {
	return r.store.Close()
}

// Kinds drops schema namespaces from a list of store kinds.
func Kinds(all []string) []string {
	var out []string
	for _, k := range all {
		if !strings.HasPrefix(k, schemaPrefix) {
			out = append(out, k)
		}
	}
	return out
}
