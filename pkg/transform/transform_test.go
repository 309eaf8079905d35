package transform

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/ontology"
	"github.com/PaulieB14/grc20-publisher/pkg/records"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testdata = filepath.Join("..", "records", "testdata")

type mapLookup map[string]graph.ID

func (m mapLookup) Lookup(kind, key string) (graph.ID, bool) {
	id, ok := m[kind+"/"+key]
	return id, ok
}

func loadDeeds(t *testing.T) []records.Deed {
	t.Helper()
	deeds, err := records.LoadDeeds(filepath.Join(testdata, "deeds.csv"))
	require.NoError(t, err)
	return deeds
}

func loadPermits(t *testing.T) []records.Permit {
	t.Helper()
	permits, err := records.LoadPermits(filepath.Join(testdata, "permits.csv"))
	require.NoError(t, err)
	return permits
}

func names(ops []graph.Op) map[graph.ID]string {
	out := make(map[graph.ID]string)
	for _, op := range ops {
		if op.Type == graph.SetTripleOp && op.Triple.Attribute == graph.NameAttribute {
			out[op.Triple.Entity] = op.Triple.Value.Value
		}
	}
	return out
}

func relations(ops []graph.Op, relType graph.ID) []*graph.Relation {
	var out []*graph.Relation
	for _, op := range ops {
		if op.Type == graph.CreateRelationOp && op.Relation.Type == relType {
			out = append(out, op.Relation)
		}
	}
	return out
}

func TestDeeds(t *testing.T) {
	deeds := loadDeeds(t)
	schema, _ := ontology.NewDeedSchema()

	res, err := Deeds(deeds, schema, nil)
	require.NoError(t, err)

	primary := res.Of(KindDeed)
	require.Len(t, primary, len(deeds), "one deed entity per row")
	assert.Len(t, res.Of(KindPerson), 6)
	assert.Len(t, res.Of(KindDocumentType), 2, "document types are shared")

	assert.Equal(t, "Deed from Smith john to Doe jane", primary[0].Name)
	assert.Equal(t, "2025035356", primary[0].Key)
	assert.Equal(t, "Deed from Baker, tom to Harris lee", primary[2].Name)

	// shared entities are keyed by the raw text and named in sentence case
	persons := res.Of(KindPerson)
	assert.Equal(t, "SMITH JOHN", persons[0].Key)
	assert.Equal(t, "Smith john", persons[0].Name)
	docTypes := res.Of(KindDocumentType)
	assert.Equal(t, "DEED", docTypes[0].Key)
	assert.Equal(t, "Deed", docTypes[0].Name)
	assert.Equal(t, "WARRANTY DEED", docTypes[1].Key)
	assert.Equal(t, "Warranty deed", docTypes[1].Name)

	for _, op := range res.Ops {
		require.NoError(t, op.Validate())
	}
	assert.Len(t, relations(res.Ops, schema.Buyer), 3)
	assert.Len(t, relations(res.Ops, schema.Seller), 3)
	assert.Len(t, relations(res.Ops, schema.DocumentType), 3)

	// every entity in the result is named in the ops
	named := names(res.Ops)
	for _, e := range res.Entities {
		assert.Equal(t, e.Name, named[e.ID])
	}
	assert.Len(t, graph.Entities(res.Ops), len(res.Entities))
}

func TestDeedsWithAddresses(t *testing.T) {
	addresses, err := records.LoadAddressMap(filepath.Join(testdata, "addresses.json"))
	require.NoError(t, err)
	deeds := records.ApplyAddresses(loadDeeds(t), addresses)
	schema, _ := ontology.NewDeedSchema()

	res, err := Deeds(deeds, schema, nil)
	require.NoError(t, err)

	primary := res.Of(KindDeed)
	assert.Equal(t, "Deed at 3461 10TH AVE N, ST PETERSBURG, FL 33713", primary[0].Name)
	assert.Equal(t, "Deed from Acme holdings llc to Nguyen an", primary[1].Name)

	var addressTriples int
	for _, op := range res.Ops {
		if op.Type == graph.SetTripleOp && op.Triple.Attribute == schema.PropertyAddress {
			addressTriples++
		}
	}
	assert.Equal(t, 2, addressTriples)
}

func TestDeedName(t *testing.T) {
	cases := []struct {
		deed records.Deed
		want string
	}{
		{records.Deed{InstrumentNumber: "1", PropertyAddress: "1 MAIN ST", DirectName: "A", IndirectName: "B"}, "Deed at 1 MAIN ST"},
		{records.Deed{InstrumentNumber: "1", DirectName: "SMITH JOHN", IndirectName: "DOE JANE"}, "Deed from Smith john to Doe jane"},
		{records.Deed{InstrumentNumber: "1", DirectName: "SMITH JOHN", BookPage: "12-34"}, "Deed #12-34"},
		{records.Deed{InstrumentNumber: "2025035356"}, "Deed 2025035356"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, DeedName(tc.deed))
	}
}

func TestDeedDescription(t *testing.T) {
	d := records.Deed{
		InstrumentNumber:   "2025035356",
		DirectName:         "SMITH JOHN",
		IndirectName:       "DOE JANE",
		BookPage:           "23001-1234",
		DocTypeDescription: "WARRANTY DEED",
		LegalDescription:   "LOT 4",
		PropertyAddress:    "1 MAIN ST",
	}
	assert.Equal(t, "Warranty deed #23001-1234 from Smith john to Doe jane for LOT 4 at 1 MAIN ST", DeedDescription(d))
	assert.Empty(t, DeedDescription(records.Deed{InstrumentNumber: "1"}))
}

func TestDeedsReusesKnownIDs(t *testing.T) {
	deeds := loadDeeds(t)
	schema, _ := ontology.NewDeedSchema()
	known := graph.GenerateID()
	person := graph.GenerateID()

	res, err := Deeds(deeds, schema, mapLookup{
		"deed/2025035363":   known,
		"person/SMITH JOHN": person,
	})
	require.NoError(t, err)

	assert.Equal(t, known, res.Of(KindDeed)[1].ID)
	var sellers []graph.ID
	for _, r := range relations(res.Ops, schema.Seller) {
		sellers = append(sellers, r.ToEntity)
	}
	assert.Contains(t, sellers, person)
}

func TestDeedsRejectsBadInput(t *testing.T) {
	schema, _ := ontology.NewDeedSchema()

	_, err := Deeds(nil, nil, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))

	_, err = Deeds([]records.Deed{{InstrumentNumber: "1"}, {InstrumentNumber: "1"}}, schema, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "rows 1 and 2")

	res, err := Deeds(nil, schema, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Ops)
}

func TestPermits(t *testing.T) {
	permits := loadPermits(t)
	schema, _ := ontology.NewPermitSchema()

	res, err := Permits(permits, schema, nil)
	require.NoError(t, err)

	primary := res.Of(KindPermit)
	require.Len(t, primary, len(permits), "one permit entity per row")
	assert.Len(t, res.Of(KindRecordType), 2)
	assert.Len(t, res.Of(KindStatus), 2, "empty statuses create no entity")

	assert.Equal(t, "Replace roof", primary[0].Name)
	assert.Equal(t, "Permit #BLD-25-002", primary[1].Name)
	assert.Equal(t, "Water heater", primary[2].Name)

	hasType := relations(res.Ops, schema.HasRecordType)
	require.Len(t, hasType, 3)
	assert.Equal(t, hasType[0].ToEntity, hasType[2].ToEntity, "same record type, same entity")
	assert.Len(t, relations(res.Ops, schema.HasStatus), 2)
}

func TestPermitName(t *testing.T) {
	short := records.Permit{RecordNumber: "BLD-1", Description: "Replace roof"}
	assert.Equal(t, "Replace roof", PermitName(short))

	exact := records.Permit{RecordNumber: "BLD-2", Description: strings.Repeat("é", 60)}
	assert.Equal(t, "Permit #BLD-2", PermitName(exact), "60 runes is too long")

	empty := records.Permit{RecordNumber: "BLD-3"}
	assert.Equal(t, "Permit #BLD-3", PermitName(empty))
}

func TestTransformerFollowsItsInput(t *testing.T) {
	schema, _ := ontology.NewPermitSchema()
	tr := NewTransformer(nil)
	permits := loadPermits(t)

	first, err := tr.Permits(permits[:1], schema)
	require.NoError(t, err)
	require.Len(t, first.Of(KindPermit), 1)

	second, err := tr.Permits(permits[1:], schema)
	require.NoError(t, err)
	assert.Len(t, second.Of(KindPermit), len(permits)-1)
	assert.NotEqual(t, first.Of(KindPermit)[0].Key, second.Of(KindPermit)[0].Key)
}

func TestTransformerRejectsReentrantCalls(t *testing.T) {
	schema, _ := ontology.NewPermitSchema()
	tr := NewTransformer(nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = tr.run(func() (*Result, error) {
			close(entered)
			<-release
			return &Result{}, nil
		})
	}()

	<-entered
	_, err := tr.Permits(nil, schema)
	assert.ErrorIs(t, err, errors.ErrBusy)

	close(release)
	wg.Wait()

	_, err = tr.Deeds(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput), "guard is released after the first call")
}
