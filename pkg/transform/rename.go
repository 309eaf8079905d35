package transform

import (
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/records"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
)

// SharedName is the display name of the shared entity of kind keyed by key.
// People and document types are sentence cased; record types and statuses
// keep the spelling of the permit system.
func SharedName(kind, key string) string {
	switch kind {
	case KindPerson, KindDocumentType:
		return records.SentenceCase(key)
	}
	return key
}

// DeedNames maps each deed key to the name its entity is given.
func DeedNames(deeds []records.Deed) map[string]string {
	names := make(map[string]string, len(deeds))
	for _, d := range deeds {
		names[d.Key()] = DeedName(d)
	}
	return names
}

// PermitNames maps each permit key to the name its entity is given.
func PermitNames(permits []records.Permit) map[string]string {
	names := make(map[string]string, len(permits))
	for _, p := range permits {
		names[p.Key()] = PermitName(p)
	}
	return names
}

// Renames returns a SetName op for every registered entity along with the
// entries carrying their new names. Primary entities take their name from
// primaries by key and are skipped when absent from it; shared entities are
// named from their keys.
func Renames(registered []registry.Entry, primaries map[string]string) ([]graph.Op, []registry.Entry) {
	var (
		ops     []graph.Op
		renamed []registry.Entry
	)
	for _, e := range registered {
		var name string
		switch e.Kind {
		case KindDeed, KindPermit:
			n, ok := primaries[e.Key]
			if !ok {
				continue
			}
			name = n
		default:
			name = SharedName(e.Kind, e.Key)
		}
		if name == "" {
			continue
		}
		e.Name = name
		ops = append(ops, graph.SetName(e.ID, name))
		renamed = append(renamed, e)
	}
	return ops, renamed
}
