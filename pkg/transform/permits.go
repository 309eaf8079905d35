package transform

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/ontology"
	"github.com/PaulieB14/grc20-publisher/pkg/records"
)

// maxPermitNameLen is the description length, in runes, above which a
// permit is named after its record number instead.
const maxPermitNameLen = 60

// Permits builds a Building Permit entity per record, linked to one Record
// type and one Status entity per distinct value.
func Permits(permits []records.Permit, schema *ontology.PermitSchema, lookup Lookup) (*Result, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: permit schema is required", errors.ErrInvalidInput)
	}
	keys := make([]string, len(permits))
	for i, p := range permits {
		keys[i] = p.Key()
	}
	if err := uniqueKeys(KindPermit, keys); err != nil {
		return nil, err
	}

	b := newBuilder(lookup)

	// Shared entities come first, in order of first appearance.
	for _, p := range permits {
		if rt := strings.TrimSpace(p.RecordType); rt != "" {
			b.sharedEntity(KindRecordType, rt, schema.RecordTypeType)
		}
	}
	for _, p := range permits {
		if st := strings.TrimSpace(p.Status); st != "" {
			b.sharedEntity(KindStatus, st, schema.StatusType)
		}
	}

	for _, p := range permits {
		id := b.entity(KindPermit, p.Key(), graph.EntitySpec{
			Name:  PermitName(p),
			Types: []graph.ID{schema.PermitType},
			Properties: []graph.PropertyValue{
				{Property: schema.RecordNumber, Value: graph.TextValue(p.RecordNumber)},
				{Property: schema.Description, Value: graph.TextValue(p.Description)},
				{Property: schema.Address, Value: graph.TextValue(p.Address)},
				{Property: schema.ProjectName, Value: graph.TextValue(p.ProjectName)},
			},
		})
		if rt := strings.TrimSpace(p.RecordType); rt != "" {
			b.relate(id, schema.HasRecordType, b.sharedEntity(KindRecordType, rt, schema.RecordTypeType))
		}
		if st := strings.TrimSpace(p.Status); st != "" {
			b.relate(id, schema.HasStatus, b.sharedEntity(KindStatus, st, schema.StatusType))
		}
	}
	return b.res, nil
}

// PermitName uses the description when it is short enough to read as a
// title, and "Permit #<record number>" otherwise.
func PermitName(p records.Permit) string {
	desc := strings.TrimSpace(p.Description)
	if desc != "" && utf8.RuneCountInString(desc) < maxPermitNameLen {
		return desc
	}
	return "Permit #" + p.RecordNumber
}
