package transform

import (
	"sync/atomic"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/ontology"
	"github.com/PaulieB14/grc20-publisher/pkg/records"
)

// Transformer runs at most one transform at a time. A call made while
// another is in progress fails with errors.ErrBusy instead of minting a
// second set of IDs for the same records.
type Transformer struct {
	Lookup Lookup

	running atomic.Bool
}

func NewTransformer(lookup Lookup) *Transformer {
	return &Transformer{Lookup: lookup}
}

func (t *Transformer) Deeds(deeds []records.Deed, schema *ontology.DeedSchema) (*Result, error) {
	return t.run(func() (*Result, error) { return Deeds(deeds, schema, t.Lookup) })
}

func (t *Transformer) Permits(permits []records.Permit, schema *ontology.PermitSchema) (*Result, error) {
	return t.run(func() (*Result, error) { return Permits(permits, schema, t.Lookup) })
}

func (t *Transformer) run(fn func() (*Result, error)) (*Result, error) {
	if !t.running.CompareAndSwap(false, true) {
		return nil, errors.ErrBusy
	}
	defer t.running.Store(false)
	return fn()
}
