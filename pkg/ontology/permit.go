package ontology

import "github.com/PaulieB14/grc20-publisher/pkg/graph"

// PermitKind is the registry namespace of the permit schema.
const PermitKind = "permit"

// PermitSchema holds the IDs permit entities are described with.
type PermitSchema struct {
	RecordNumber graph.ID
	Description  graph.ID
	Address      graph.ID
	ProjectName  graph.ID

	PermitType     graph.ID
	RecordTypeType graph.ID
	StatusType     graph.ID

	HasRecordType graph.ID
	HasStatus     graph.ID
}

func (s *PermitSchema) fields() []field {
	return []field{
		{"Record Number", &s.RecordNumber, property("Record Number")},
		{"Description", &s.Description, property("Description")},
		{"Address", &s.Address, property("Address")},
		{"Project Name", &s.ProjectName, property("Project Name")},
		{"Has record type", &s.HasRecordType, relationType("Has record type")},
		{"Has status", &s.HasStatus, relationType("Has status")},
		{"Building Permit", &s.PermitType, typeOf("Building Permit",
			&s.RecordNumber, &s.Description, &s.Address, &s.ProjectName, &s.HasRecordType, &s.HasStatus)},
		{"Record type", &s.RecordTypeType, typeOf("Record type")},
		{"Status", &s.StatusType, typeOf("Status")},
	}
}

// NewPermitSchema builds a fresh permit ontology and the ops that create it.
func NewPermitSchema() (*PermitSchema, []graph.Op) {
	s := &PermitSchema{}
	return s, build(s.fields())
}

// Map returns the schema IDs keyed by field name.
func (s *PermitSchema) Map() map[string]string { return toMap(s.fields()) }

// LoadOrCreatePermitSchema reuses the permit schema saved in reg or creates
// and saves a new one. ops is empty when the schema was reused.
func LoadOrCreatePermitSchema(reg Registry) (*PermitSchema, []graph.Op, error) {
	s := &PermitSchema{}
	ops, err := loadOrCreate(reg, PermitKind, s.fields())
	if err != nil {
		return nil, nil, err
	}
	return s, ops, nil
}
