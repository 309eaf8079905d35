package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/agext/levenshtein"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
)

// FileTriple is a triple as stored in a triples file.
type FileTriple struct {
	AttributeID string      `json:"attributeId"`
	EntityID    string      `json:"entityId"`
	Value       graph.Value `json:"value"`
}

// EntityTriples groups the triples of one entity.
type EntityTriples struct {
	EntityID string       `json:"entityId"`
	Triples  []FileTriple `json:"triples"`
}

func LoadTriples(path string) ([]EntityTriples, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []EntityTriples
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: triples %s: %v", errors.ErrInvalidInput, path, err)
	}
	return out, nil
}

func SaveTriples(path string, entities []EntityTriples) error {
	raw, err := json.MarshalIndent(entities, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}

// Mapping pairs the distinct entity IDs of a triples file, in file order,
// with newIDs. Entities beyond len(newIDs) keep their ID.
func Mapping(entities []EntityTriples, newIDs []string) map[string]string {
	m := make(map[string]string)
	next := 0
	for _, e := range entities {
		if _, seen := m[e.EntityID]; seen || next >= len(newIDs) {
			continue
		}
		m[e.EntityID] = newIDs[next]
		next++
	}
	return m
}

// Remap returns a copy of entities with every old ID in mapping replaced by
// its new ID, on the entity and on each of its triples. The number of
// entities never changes.
func Remap(mapping map[string]string, entities []EntityTriples) []EntityTriples {
	out := make([]EntityTriples, len(entities))
	for i, e := range entities {
		id := e.EntityID
		if n, ok := mapping[id]; ok {
			id = n
		}
		triples := make([]FileTriple, len(e.Triples))
		for j, t := range e.Triples {
			t.EntityID = id
			triples[j] = t
		}
		out[i] = EntityTriples{EntityID: id, Triples: triples}
	}
	return out
}

// RemapOps rewrites entity references inside ops the same way.
func RemapOps(mapping map[string]string, ops []graph.Op) []graph.Op {
	swap := func(id graph.ID) graph.ID {
		if n, ok := mapping[string(id)]; ok {
			return graph.ID(n)
		}
		return id
	}
	out := make([]graph.Op, len(ops))
	for i, op := range ops {
		if op.Triple != nil {
			t := *op.Triple
			t.Entity = swap(t.Entity)
			op.Triple = &t
		}
		if op.Relation != nil {
			r := *op.Relation
			r.FromEntity = swap(r.FromEntity)
			r.ToEntity = swap(r.ToEntity)
			op.Relation = &r
		}
		out[i] = op
	}
	return out
}

// Check compares the registered IDs with the IDs actually found in the
// working data. missing are registered but absent; extra are present but
// never registered. Both keep input order.
func Check(registered, working []string) (missing, extra []string) {
	inWorking := make(map[string]bool, len(working))
	for _, id := range working {
		inWorking[id] = true
	}
	inRegistered := make(map[string]bool, len(registered))
	for _, id := range registered {
		inRegistered[id] = true
		if !inWorking[id] {
			missing = append(missing, id)
		}
	}
	for _, id := range working {
		if !inRegistered[id] {
			extra = append(extra, id)
		}
	}
	return missing, extra
}

// Suggestion is a candidate key close to an unmatched one.
type Suggestion struct {
	Key      string
	Distance int
}

// Suggest ranks candidates by edit distance to key and returns at most
// limit of them within maxDistance. Ties are ordered by key.
func Suggest(key string, candidates []string, maxDistance, limit int) []Suggestion {
	var out []Suggestion
	for _, c := range candidates {
		d := levenshtein.Distance(key, c, nil)
		if d <= maxDistance {
			out = append(out, Suggestion{Key: c, Distance: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
