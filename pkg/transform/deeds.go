package transform

import (
	"fmt"
	"strings"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/ontology"
	"github.com/PaulieB14/grc20-publisher/pkg/records"
)

const defaultDocType = "DEED"

// Deeds builds a Deed entity per record plus the Person and Document Type
// entities it links to.
func Deeds(deeds []records.Deed, schema *ontology.DeedSchema, lookup Lookup) (*Result, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: deed schema is required", errors.ErrInvalidInput)
	}
	keys := make([]string, len(deeds))
	for i, d := range deeds {
		keys[i] = d.Key()
	}
	if err := uniqueKeys(KindDeed, keys); err != nil {
		return nil, err
	}

	b := newBuilder(lookup)
	for _, d := range deeds {
		var seller, buyer graph.ID
		if name := strings.TrimSpace(d.DirectName); name != "" {
			seller = b.sharedEntity(KindPerson, name, schema.PersonType)
		}
		if name := strings.TrimSpace(d.IndirectName); name != "" {
			buyer = b.sharedEntity(KindPerson, name, schema.PersonType)
		}
		docType := strings.TrimSpace(d.DocTypeDescription)
		if docType == "" {
			docType = defaultDocType
		}
		doc := b.sharedEntity(KindDocumentType, docType, schema.DocumentTypeType)

		name := DeedName(d)
		id := b.entity(KindDeed, d.Key(), graph.EntitySpec{
			Name:        name,
			Description: DeedDescription(d),
			Types:       []graph.ID{schema.DeedType},
			Properties: []graph.PropertyValue{
				{Property: schema.InstrumentNumber, Value: graph.TextValue(d.InstrumentNumber)},
				{Property: schema.RecordDate, Value: graph.TextValue(d.RecordDate)},
				{Property: schema.BookType, Value: graph.TextValue(d.BookType)},
				{Property: schema.BookPage, Value: graph.TextValue(d.BookPage)},
				{Property: schema.LegalDescription, Value: graph.TextValue(d.LegalDescription)},
				{Property: schema.PropertyAddress, Value: graph.TextValue(d.PropertyAddress)},
			},
		})

		if buyer != "" {
			b.relate(id, schema.Buyer, buyer)
		}
		if seller != "" {
			b.relate(id, schema.Seller, seller)
		}
		b.relate(id, schema.DocumentType, doc)
	}
	return b.res, nil
}

// DeedName picks the most descriptive name the record allows: its address,
// then its parties, then its book page and finally its instrument number.
func DeedName(d records.Deed) string {
	switch {
	case d.PropertyAddress != "":
		return "Deed at " + d.PropertyAddress
	case d.DirectName != "" && d.IndirectName != "":
		return fmt.Sprintf("Deed from %s to %s", records.SentenceCase(d.DirectName), records.SentenceCase(d.IndirectName))
	case d.BookPage != "":
		return "Deed #" + d.BookPage
	default:
		return "Deed " + d.InstrumentNumber
	}
}

// DeedDescription summarizes the deed in one sentence, omitting parts the
// record does not have.
func DeedDescription(d records.Deed) string {
	var parts []string
	if d.DocTypeDescription != "" {
		parts = append(parts, records.SentenceCase(d.DocTypeDescription))
	}
	if d.BookPage != "" {
		parts = append(parts, "#"+d.BookPage)
	}
	if d.DirectName != "" && d.IndirectName != "" {
		parts = append(parts, fmt.Sprintf("from %s to %s", records.SentenceCase(d.DirectName), records.SentenceCase(d.IndirectName)))
	}
	if d.LegalDescription != "" {
		parts = append(parts, "for "+d.LegalDescription)
	}
	if d.PropertyAddress != "" {
		parts = append(parts, "at "+d.PropertyAddress)
	}
	return strings.Join(parts, " ")
}
