// Package graph models knowledge-graph operations (triples and relations) and
// the builders that turn names, types and property values into op lists.
package graph

import "fmt"

// ValueType is the declared type of a triple value.
type ValueType string

const (
	Text     ValueType = "TEXT"
	Number   ValueType = "NUMBER"
	Checkbox ValueType = "CHECKBOX"
	URL      ValueType = "URL"
	Time     ValueType = "TIME"
	Point    ValueType = "POINT"
)

// Value is a typed literal stored on a triple.
type Value struct {
	Type  ValueType `json:"type"`
	Value string    `json:"value"`
}

// TextValue wraps s as a TEXT value.
func TextValue(s string) Value { return Value{Type: Text, Value: s} }

// Triple sets Attribute of Entity to Value.
type Triple struct {
	Attribute ID     `json:"attribute"`
	Entity    ID     `json:"entity"`
	Value     *Value `json:"value,omitempty"`
}

// Relation is a typed, directed edge between two entities. Relations are
// entities themselves and carry their own ID.
type Relation struct {
	ID         ID     `json:"id"`
	Type       ID     `json:"type,omitempty"`
	FromEntity ID     `json:"fromEntity,omitempty"`
	ToEntity   ID     `json:"toEntity,omitempty"`
	Index      string `json:"index,omitempty"`
}

// OpType names the mutation an Op performs.
type OpType string

const (
	SetTripleOp      OpType = "SET_TRIPLE"
	DeleteTripleOp   OpType = "DELETE_TRIPLE"
	CreateRelationOp OpType = "CREATE_RELATION"
	DeleteRelationOp OpType = "DELETE_RELATION"
)

// Op is a single graph mutation. Exactly one of Triple or Relation is set.
type Op struct {
	Type     OpType    `json:"type"`
	Triple   *Triple   `json:"triple,omitempty"`
	Relation *Relation `json:"relation,omitempty"`
}

// Validate checks that the op carries the payload its type requires.
func (o Op) Validate() error {
	switch o.Type {
	case SetTripleOp:
		if o.Triple == nil || o.Triple.Value == nil {
			return fmt.Errorf("%s without triple value", o.Type)
		}
		if o.Triple.Entity == "" || o.Triple.Attribute == "" {
			return fmt.Errorf("%s without entity or attribute", o.Type)
		}
	case DeleteTripleOp:
		if o.Triple == nil || o.Triple.Entity == "" || o.Triple.Attribute == "" {
			return fmt.Errorf("%s without entity or attribute", o.Type)
		}
	case CreateRelationOp:
		r := o.Relation
		if r == nil || r.ID == "" || r.Type == "" || r.FromEntity == "" || r.ToEntity == "" {
			return fmt.Errorf("%s with incomplete relation", o.Type)
		}
	case DeleteRelationOp:
		if o.Relation == nil || o.Relation.ID == "" {
			return fmt.Errorf("%s without relation id", o.Type)
		}
	default:
		return fmt.Errorf("unknown op type %q", o.Type)
	}
	return nil
}

// SetTriple returns an op setting attribute of entity to v.
func SetTriple(entity, attribute ID, v Value) Op {
	return Op{Type: SetTripleOp, Triple: &Triple{Attribute: attribute, Entity: entity, Value: &v}}
}

// SetName returns an op renaming entity.
func SetName(entity ID, name string) Op {
	return SetTriple(entity, NameAttribute, TextValue(name))
}

// MakeRelation returns an op creating a new relation of relationType from
// one entity to another.
func MakeRelation(from, relationType, to ID) Op {
	return Op{Type: CreateRelationOp, Relation: &Relation{
		ID:         GenerateID(),
		Type:       relationType,
		FromEntity: from,
		ToEntity:   to,
		Index:      DefaultIndex,
	}}
}

// Stats counts ops by type.
func Stats(ops []Op) map[OpType]int {
	counts := make(map[OpType]int)
	for _, op := range ops {
		counts[op.Type]++
	}
	return counts
}

// Entities returns, in first-seen order, the entities that are given a name
// by ops.
func Entities(ops []Op) []ID {
	seen := make(map[ID]bool)
	var ids []ID
	for _, op := range ops {
		if op.Type != SetTripleOp || op.Triple.Attribute != NameAttribute {
			continue
		}
		if !seen[op.Triple.Entity] {
			seen[op.Triple.Entity] = true
			ids = append(ids, op.Triple.Entity)
		}
	}
	return ids
}

// Settled returns the entities whose ops all fall within ops[:n]: an
// entity named or related in ops[:n] with nothing left for it in ops[n:].
func Settled(ops []Op, n int) map[ID]bool {
	n = min(max(n, 0), len(ops))
	subject := func(op Op) ID {
		if op.Triple != nil {
			return op.Triple.Entity
		}
		if op.Relation != nil {
			return op.Relation.FromEntity
		}
		return ""
	}
	done := make(map[ID]bool)
	for _, op := range ops[:n] {
		if id := subject(op); id != "" {
			done[id] = true
		}
	}
	for _, op := range ops[n:] {
		delete(done, subject(op))
	}
	return done
}
