package cli

import (
	"context"
	"fmt"

	"github.com/PaulieB14/grc20-publisher/internal/config"
	"github.com/PaulieB14/grc20-publisher/pkg/chain"
	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/common/httpx"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/grc20api"
	"github.com/PaulieB14/grc20-publisher/pkg/ipfs"
	"github.com/PaulieB14/grc20-publisher/pkg/ontology"
	"github.com/PaulieB14/grc20-publisher/pkg/publish"
	"github.com/PaulieB14/grc20-publisher/pkg/records"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
	"github.com/PaulieB14/grc20-publisher/pkg/transform"
)

// pendingSchemas holds newly built schema IDs back from the registry until
// the ops that create them are confirmed.
type pendingSchemas struct {
	ontology.Registry
	saved map[string]map[string]string
}

func newPendingSchemas(reg ontology.Registry) *pendingSchemas {
	return &pendingSchemas{Registry: reg, saved: make(map[string]map[string]string)}
}

func (p *pendingSchemas) SaveSchema(kind string, ids map[string]string) error {
	p.saved[kind] = ids
	return nil
}

func (p *pendingSchemas) commit() error {
	for kind, ids := range p.saved {
		if err := p.Registry.SaveSchema(kind, ids); err != nil {
			return err
		}
	}
	p.saved = make(map[string]map[string]string)
	return nil
}

// prepared is a transformed record set ready to publish.
type prepared struct {
	kind      string
	records   int
	schemaOps []graph.Op
	result    *transform.Result
	schemas   *pendingSchemas
}

// ops returns the schema ops followed by the record ops.
func (p *prepared) ops() []graph.Op {
	out := make([]graph.Op, 0, len(p.schemaOps)+len(p.result.Ops))
	out = append(out, p.schemaOps...)
	return append(out, p.result.Ops...)
}

// prepare loads the records of kind from input and transforms them against
// the IDs already in reg.
func (a *app) prepare(ctx context.Context, kind, input string, reg *registry.Registry) (*prepared, error) {
	p := &prepared{kind: kind, schemas: newPendingSchemas(reg)}
	t := transform.NewTransformer(reg)

	switch kind {
	case "deed":
		if input == "" {
			input = a.cfg.Inputs.Deeds
		}
		deeds, err := publish.LoadDeeds(ctx, input, a.cfg.Inputs.Addresses)
		if err != nil {
			return nil, err
		}
		schema, ops, err := ontology.LoadOrCreateDeedSchema(p.schemas)
		if err != nil {
			return nil, err
		}
		if p.result, err = t.Deeds(deeds, schema); err != nil {
			return nil, err
		}
		p.records, p.schemaOps = len(deeds), ops
	case "permit":
		if input == "" {
			input = a.cfg.Inputs.Permits
		}
		permits, err := records.LoadPermits(input)
		if err != nil {
			return nil, err
		}
		schema, ops, err := ontology.LoadOrCreatePermitSchema(p.schemas)
		if err != nil {
			return nil, err
		}
		if p.result, err = t.Permits(permits, schema); err != nil {
			return nil, err
		}
		p.records, p.schemaOps = len(permits), ops
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}

	a.metrics.AddOps(kind, len(p.schemaOps)+len(p.result.Ops))
	a.logger.Info().
		Str("kind", kind).
		Int("records", p.records).
		Int("schema_ops", len(p.schemaOps)).
		Int("ops", len(p.result.Ops)).
		Msg("records transformed")
	return p, nil
}

// newPublisher dials the chain and builds a publisher for the configured
// wallet. The returned func closes the RPC connection.
func (a *app) newPublisher(ctx context.Context, archive publish.Archive) (*publish.Publisher, func(), error) {
	wallet, err := chain.LoadKey(a.cfg.Wallet.PrivateKey)
	if err != nil {
		return nil, nil, err
	}
	if !wallet.Owns(a.cfg.Wallet.Address) {
		return nil, nil, fmt.Errorf("%w: private key does not belong to %s", errors.ErrUnauthorized, a.cfg.Wallet.Address)
	}
	client, err := chain.Dial(ctx, a.cfg.Network.RPCURL)
	if err != nil {
		return nil, nil, err
	}

	sender := chain.NewSender(client, wallet, a.cfg.Network.ChainID)
	sender.GasLimit = a.cfg.Network.GasLimit
	sender.MaxFee = config.GweiToWei(a.cfg.Network.MaxFeeGwei)
	sender.MaxTip = config.GweiToWei(a.cfg.Network.MaxTipGwei)
	sender.Logger = a.logger

	httpc := httpx.New(a.logger, a.cfg.HTTP.Retries, a.cfg.HTTP.Timeout)
	p := &publish.Publisher{
		IPFS:           ipfs.New(a.cfg.Network.IPFSURL, httpc),
		API:            grc20api.New(a.cfg.Network.APIURL, httpc, grc20api.WithNetwork(a.cfg.Network.Name)),
		Chain:          sender,
		Author:         a.cfg.Wallet.Address,
		PollInterval:   a.cfg.Network.ReceiptPoll,
		ReceiptTimeout: a.cfg.Network.ReceiptTimeout,
		Archive:        archive,
		Metrics:        a.metrics,
		Logger:         a.logger,
	}
	return p, client.Close, nil
}

// buildSchema loads or builds the schema of kind, returning the ops of a
// new schema and its IDs by field name.
func buildSchema(kind string, reg ontology.Registry) ([]graph.Op, map[string]string, error) {
	if kind == "permit" {
		s, ops, err := ontology.LoadOrCreatePermitSchema(reg)
		if err != nil {
			return nil, nil, err
		}
		return ops, s.Map(), nil
	}
	s, ops, err := ontology.LoadOrCreateDeedSchema(reg)
	if err != nil {
		return nil, nil, err
	}
	return ops, s.Map(), nil
}

// entityKinds lists the registry kinds a record kind produces.
func entityKinds(kind string) []string {
	if kind == "permit" {
		return []string{transform.KindPermit, transform.KindRecordType, transform.KindStatus}
	}
	return []string{transform.KindDeed, transform.KindPerson, transform.KindDocumentType}
}
