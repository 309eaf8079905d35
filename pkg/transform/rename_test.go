package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/ontology"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
)

func TestSharedName(t *testing.T) {
	assert.Equal(t, "Smith john", SharedName(KindPerson, "SMITH JOHN"))
	assert.Equal(t, "Warranty deed", SharedName(KindDocumentType, "WARRANTY DEED"))
	assert.Equal(t, "Building Permit", SharedName(KindRecordType, "Building Permit"))
	assert.Equal(t, "In Review", SharedName(KindStatus, "In Review"))
}

func TestRenames(t *testing.T) {
	deeds := loadDeeds(t)
	schema, _ := ontology.NewDeedSchema()
	res, err := Deeds(deeds, schema, nil)
	require.NoError(t, err)

	// registered entries carry no names
	registered := make([]registry.Entry, 0, len(res.Entities)+1)
	for _, e := range res.Entities {
		e.Name = ""
		registered = append(registered, e)
	}
	stale := registry.Entry{Kind: KindDeed, Key: "0000000000", ID: graph.GenerateID()}
	registered = append(registered, stale)

	ops, renamed := Renames(registered, DeedNames(deeds))
	require.Len(t, renamed, len(res.Entities))
	require.Len(t, ops, len(renamed))

	want := names(res.Ops)
	for i, e := range renamed {
		assert.Equal(t, want[e.ID], e.Name, e.Key)
		assert.Equal(t, graph.SetName(e.ID, e.Name), ops[i])
	}
	assert.NotContains(t, names(ops), stale.ID)
}

func TestPermitNames(t *testing.T) {
	permits := loadPermits(t)
	got := PermitNames(permits)
	require.Len(t, got, len(permits))
	for _, p := range permits {
		assert.Equal(t, PermitName(p), got[p.Key()])
	}
}
