package report

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/PaulieB14/grc20-publisher/pkg/graph"
)

// D3Node represents a node in the D3 force-directed graph.
type D3Node struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"` // name of the entity's first type
	// Properties holds the entity's non-name values keyed by attribute ID.
	Properties map[string]string `json:"properties,omitempty"`
}

// D3Link represents a relation in the D3 force-directed graph.
type D3Link struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"` // relation type name, or its ID when unnamed
}

// D3Graph represents the full graph structure for D3.js.
type D3Graph struct {
	Nodes []D3Node `json:"nodes"`
	Links []D3Link `json:"links"`
}

// D3Transformer converts ops into a D3Graph.
type D3Transformer struct {
	// IgnoredRelations are relation types that describe the schema rather
	// than the data.
	IgnoredRelations map[graph.ID]bool
	// SchemaNodes keeps properties, types and relation types as nodes.
	SchemaNodes bool
}

func NewD3Transformer() *D3Transformer {
	return &D3Transformer{
		IgnoredRelations: map[graph.ID]bool{
			graph.TypesAttribute:      true,
			graph.PropertiesAttribute: true,
			graph.ValueTypeAttribute:  true,
		},
	}
}

// Transform builds nodes from named entities and links from relations
// between them. Relations to unnamed entities are dropped.
func (t *D3Transformer) Transform(ops []graph.Op) *D3Graph {
	names := make(map[graph.ID]string)
	props := make(map[graph.ID]map[string]string)
	types := make(map[graph.ID]graph.ID)
	schema := make(map[graph.ID]bool)

	for _, op := range ops {
		switch op.Type {
		case graph.SetTripleOp:
			tr := op.Triple
			if tr.Attribute == graph.NameAttribute {
				names[tr.Entity] = tr.Value.Value
				continue
			}
			if props[tr.Entity] == nil {
				props[tr.Entity] = make(map[string]string)
			}
			props[tr.Entity][string(tr.Attribute)] = tr.Value.Value
		case graph.CreateRelationOp:
			r := op.Relation
			if r.Type != graph.TypesAttribute {
				continue
			}
			if _, ok := types[r.FromEntity]; !ok {
				types[r.FromEntity] = r.ToEntity
			}
			if r.ToEntity == graph.SchemaType || r.ToEntity == graph.AttributeType {
				schema[r.FromEntity] = true
			}
		}
	}

	keep := func(id graph.ID) bool {
		_, named := names[id]
		return named && (t.SchemaNodes || !schema[id])
	}

	nodes := []D3Node{}
	for id, name := range names {
		if !keep(id) {
			continue
		}
		n := D3Node{ID: string(id), Name: name, Properties: props[id]}
		if typ, ok := types[id]; ok {
			n.Group = names[typ]
		}
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	links := []D3Link{}
	for _, op := range ops {
		if op.Type != graph.CreateRelationOp {
			continue
		}
		r := op.Relation
		if t.IgnoredRelations[r.Type] || !keep(r.FromEntity) || !keep(r.ToEntity) {
			continue
		}
		rel := names[r.Type]
		if rel == "" {
			rel = string(r.Type)
		}
		links = append(links, D3Link{
			ID:       string(r.ID),
			Source:   string(r.FromEntity),
			Target:   string(r.ToEntity),
			Relation: rel,
		})
	}

	return &D3Graph{Nodes: nodes, Links: links}
}

// SaveD3Graph writes the graph to a JSON file.
func SaveD3Graph(g *D3Graph, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(g)
}
