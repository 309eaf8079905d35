// Package records loads the flat deed and permit records that feed the graph
// transforms, along with the JSON sidecar files that patch them.
package records

// Deed is one recorded instrument from the county deed index.
// InstrumentNumber is the natural key.
type Deed struct {
	InstrumentNumber   string `json:"instrumentNumber"`
	DirectName         string `json:"directName"`   // grantor / seller
	IndirectName       string `json:"indirectName"` // grantee / buyer
	RecordDate         string `json:"recordDate"`
	BookType           string `json:"bookType"`
	BookPage           string `json:"bookPage"`
	LegalDescription   string `json:"legalDescription"`
	DocTypeDescription string `json:"docTypeDescription"`
	PropertyAddress    string `json:"propertyAddress,omitempty"`
}

// Key returns the natural identifier of the deed.
func (d Deed) Key() string { return d.InstrumentNumber }

// Permit is one building permit record. RecordNumber is the natural key.
type Permit struct {
	RecordNumber string `json:"recordNumber"`
	Description  string `json:"description"`
	Address      string `json:"address"`
	ProjectName  string `json:"projectName"`
	RecordType   string `json:"recordType"`
	Status       string `json:"status"`
}

// Key returns the natural identifier of the permit.
func (p Permit) Key() string { return p.RecordNumber }
