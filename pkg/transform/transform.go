// Package transform turns deed and permit records into graph ops.
//
// Every record becomes exactly one primary entity. Shared entities (people,
// document types, record types, statuses) are created once per distinct
// name and linked with relations. IDs already known to the Lookup are reused
// so republishing patches the existing entities.
package transform

import (
	"fmt"
	"strings"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
)

// Entity kinds recorded in results and the registry.
const (
	KindDeed         = "deed"
	KindPerson       = "person"
	KindDocumentType = "document-type"
	KindPermit       = "permit"
	KindRecordType   = "record-type"
	KindStatus       = "status"
)

// Lookup resolves previously assigned entity IDs.
type Lookup interface {
	Lookup(kind, key string) (graph.ID, bool)
}

type noLookup struct{}

func (noLookup) Lookup(string, string) (graph.ID, bool) { return "", false }

// Result is the outcome of a transform.
type Result struct {
	Ops      []graph.Op
	Entities []registry.Entry
}

// Of returns the entities of kind in creation order.
func (r *Result) Of(kind string) []registry.Entry {
	var out []registry.Entry
	for _, e := range r.Entities {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// builder accumulates ops and deduplicates shared entities by key.
type builder struct {
	lookup Lookup
	res    *Result
	shared map[string]graph.ID
}

func newBuilder(lookup Lookup) *builder {
	if lookup == nil {
		lookup = noLookup{}
	}
	return &builder{lookup: lookup, res: &Result{}, shared: make(map[string]graph.ID)}
}

func (b *builder) entity(kind, key string, spec graph.EntitySpec) graph.ID {
	if id, ok := b.lookup.Lookup(kind, key); ok {
		spec.ID = id
	}
	id, ops := graph.CreateEntity(spec)
	b.res.Ops = append(b.res.Ops, ops...)
	b.res.Entities = append(b.res.Entities, registry.Entry{Kind: kind, Key: key, ID: id, Name: spec.Name})
	return id
}

// sharedEntity creates the entity keyed by the trimmed raw text once per
// kind and names it with SharedName; later calls return the same ID.
func (b *builder) sharedEntity(kind, raw string, typeID graph.ID) graph.ID {
	key := strings.TrimSpace(raw)
	if id, ok := b.shared[kind+"\x00"+key]; ok {
		return id
	}
	id := b.entity(kind, key, graph.EntitySpec{Name: SharedName(kind, key), Types: []graph.ID{typeID}})
	b.shared[kind+"\x00"+key] = id
	return id
}

func (b *builder) relate(from, relType, to graph.ID) {
	b.res.Ops = append(b.res.Ops, graph.MakeRelation(from, relType, to))
}

// uniqueKeys rejects empty and repeated natural keys so that every row maps
// to its own primary entity.
func uniqueKeys(kind string, keys []string) error {
	seen := make(map[string]int, len(keys))
	for i, k := range keys {
		if k == "" {
			return fmt.Errorf("%w: %s row %d has no key", errors.ErrInvalidInput, kind, i+1)
		}
		if prev, ok := seen[k]; ok {
			return fmt.Errorf("%w: %s %s appears in rows %d and %d", errors.ErrInvalidInput, kind, k, prev+1, i+1)
		}
		seen[k] = i
	}
	return nil
}
