// Package ontology builds the properties, types and relation types that deed
// and permit entities are described with, and restores them from previously
// saved IDs so a space is only set up once.
package ontology

import (
	"fmt"
	"sort"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
)

// Registry persists schema IDs between runs.
type Registry interface {
	Schema(kind string) (map[string]string, error)
	SaveSchema(kind string, ids map[string]string) error
}

type field struct {
	name string
	id   *graph.ID
	// build creates the schema entity; deps are already populated.
	build func() (graph.ID, []graph.Op)
}

func property(name string) func() (graph.ID, []graph.Op) {
	return func() (graph.ID, []graph.Op) { return graph.CreateProperty(name, graph.Text) }
}

func relationType(name string) func() (graph.ID, []graph.Op) {
	return func() (graph.ID, []graph.Op) { return graph.CreateRelationType(name) }
}

func typeOf(name string, props ...*graph.ID) func() (graph.ID, []graph.Op) {
	return func() (graph.ID, []graph.Op) {
		ids := make([]graph.ID, len(props))
		for i, p := range props {
			ids[i] = *p
		}
		return graph.CreateType(name, ids...)
	}
}

// build runs every field builder in order and concatenates their ops.
func build(fields []field) []graph.Op {
	var ops []graph.Op
	for _, f := range fields {
		id, fOps := f.build()
		*f.id = id
		ops = append(ops, fOps...)
	}
	return ops
}

func toMap(fields []field) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f.name] = string(*f.id)
	}
	return m
}

func fromMap(kind string, fields []field, m map[string]string) error {
	var missing []string
	for _, f := range fields {
		v, ok := m[f.name]
		if !ok || v == "" {
			missing = append(missing, f.name)
			continue
		}
		*f.id = graph.ID(v)
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s schema is missing %v", errors.ErrNotFound, kind, missing)
	}
	return nil
}

// loadOrCreate restores a schema from reg, or builds a new one and saves it.
// Ops are only returned for a newly built schema.
func loadOrCreate(reg Registry, kind string, fields []field) ([]graph.Op, error) {
	saved, err := reg.Schema(kind)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, fmt.Errorf("load %s schema: %w", kind, err)
	}
	if len(saved) > 0 {
		if err := fromMap(kind, fields, saved); err == nil {
			return nil, nil
		}
	}

	ops := build(fields)
	if err := reg.SaveSchema(kind, toMap(fields)); err != nil {
		return nil, fmt.Errorf("save %s schema: %w", kind, err)
	}
	return ops, nil
}
