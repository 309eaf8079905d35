package ontology

import "github.com/PaulieB14/grc20-publisher/pkg/graph"

// DeedKind is the registry namespace of the deed schema.
const DeedKind = "deed"

// DeedSchema holds the IDs deed entities are described with.
type DeedSchema struct {
	InstrumentNumber graph.ID
	RecordDate       graph.ID
	BookType         graph.ID
	BookPage         graph.ID
	LegalDescription graph.ID
	PropertyAddress  graph.ID

	DeedType         graph.ID
	PersonType       graph.ID
	DocumentTypeType graph.ID

	Buyer        graph.ID
	Seller       graph.ID
	DocumentType graph.ID
}

func (s *DeedSchema) fields() []field {
	return []field{
		{"Instrument Number", &s.InstrumentNumber, property("Instrument Number")},
		{"Record Date", &s.RecordDate, property("Record Date")},
		{"Book Type", &s.BookType, property("Book Type")},
		{"Book Page", &s.BookPage, property("Book Page")},
		{"Legal Description", &s.LegalDescription, property("Legal Description")},
		{"Property Address", &s.PropertyAddress, property("Property Address")},
		{"Buyer", &s.Buyer, relationType("Buyer")},
		{"Seller", &s.Seller, relationType("Seller")},
		{"Document Type Relation", &s.DocumentType, relationType("Document Type")},
		{"Deed", &s.DeedType, typeOf("Deed",
			&s.InstrumentNumber, &s.RecordDate, &s.BookType, &s.BookPage,
			&s.LegalDescription, &s.PropertyAddress, &s.Buyer, &s.Seller, &s.DocumentType)},
		{"Person", &s.PersonType, typeOf("Person")},
		{"Document Type", &s.DocumentTypeType, typeOf("Document Type")},
	}
}

// NewDeedSchema builds a fresh deed ontology and the ops that create it.
func NewDeedSchema() (*DeedSchema, []graph.Op) {
	s := &DeedSchema{}
	return s, build(s.fields())
}

// Map returns the schema IDs keyed by field name.
func (s *DeedSchema) Map() map[string]string { return toMap(s.fields()) }

// LoadOrCreateDeedSchema reuses the deed schema saved in reg or creates and
// saves a new one. ops is empty when the schema was reused.
func LoadOrCreateDeedSchema(reg Registry) (*DeedSchema, []graph.Op, error) {
	s := &DeedSchema{}
	ops, err := loadOrCreate(reg, DeedKind, s.fields())
	if err != nil {
		return nil, nil, err
	}
	return s, ops, nil
}
