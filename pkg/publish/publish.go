// Package publish runs the four publish stages for a list of ops: upload the
// edit to IPFS, fetch calldata for it, send the transaction and wait for its
// receipt.
package publish

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"

	"github.com/PaulieB14/grc20-publisher/pkg/batch"
	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/grc20api"
	"github.com/PaulieB14/grc20-publisher/pkg/metrics"
)

// Uploader stores an edit and returns its ipfs:// URI.
type Uploader interface {
	PublishEdit(ctx context.Context, edit *graph.Edit) (string, error)
}

// CalldataSource turns an edit URI into a transaction payload.
type CalldataSource interface {
	Calldata(ctx context.Context, spaceID, cid string) (*grc20api.Calldata, error)
}

// Chain sends transactions from one address. *chain.Sender satisfies it.
type Chain interface {
	From() common.Address
	Send(ctx context.Context, to, data string) (common.Hash, error)
	WaitReceipt(ctx context.Context, hash common.Hash, interval, timeout time.Duration) (*types.Receipt, error)
}

// Archive keeps a copy of every confirmed edit.
type Archive interface {
	PutEdit(cid string, data []byte) error
}

// Receipt is the outcome of one published edit.
type Receipt struct {
	Edit    string `json:"edit"`
	Ops     int    `json:"ops"`
	CID     string `json:"cid"`
	TxHash  string `json:"txHash"`
	Block   uint64 `json:"block"`
	GasUsed uint64 `json:"gasUsed"`
}

type Publisher struct {
	IPFS   Uploader
	API    CalldataSource
	Chain  Chain
	Author string

	PollInterval   time.Duration
	ReceiptTimeout time.Duration

	Archive Archive
	Metrics *metrics.Metrics
	Logger  zerolog.Logger
}

// check fails fast on missing configuration before anything is uploaded.
func (p *Publisher) check(spaceID string) error {
	var missing []string
	if p.Author == "" {
		missing = append(missing, "author wallet")
	}
	if spaceID == "" {
		missing = append(missing, "space id")
	}
	if p.IPFS == nil {
		missing = append(missing, "ipfs client")
	}
	if p.API == nil {
		missing = append(missing, "api client")
	}
	if p.Chain == nil {
		missing = append(missing, "signing key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errors.ErrMissingConfig, strings.Join(missing, ", "))
	}
	if !common.IsHexAddress(p.Author) || common.HexToAddress(p.Author) != p.Chain.From() {
		return fmt.Errorf("%w: author %s is not the signing address %s", errors.ErrUnauthorized, p.Author, p.Chain.From().Hex())
	}
	return nil
}

// Publish runs every stage for a single edit named name.
func (p *Publisher) Publish(ctx context.Context, spaceID, name string, ops []graph.Op) (*Receipt, error) {
	if err := p.check(spaceID); err != nil {
		return nil, err
	}
	return p.publish(ctx, spaceID, name, ops)
}

func (p *Publisher) publish(ctx context.Context, spaceID, name string, ops []graph.Op) (*Receipt, error) {
	log := p.Logger.With().Str("space", spaceID).Str("edit", name).Logger()
	edit := &graph.Edit{Name: name, Ops: ops, Author: p.Author}
	if err := edit.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	cid, err := p.IPFS.PublishEdit(ctx, edit)
	if err != nil {
		return nil, fmt.Errorf("publish edit to ipfs: %w", err)
	}
	p.Metrics.Since("ipfs", start)
	p.Metrics.EditPublished()
	log.Info().Str("cid", cid).Int("ops", len(ops)).Msg("edit uploaded")

	start = time.Now()
	cd, err := p.API.Calldata(ctx, spaceID, cid)
	if err != nil {
		return nil, fmt.Errorf("fetch calldata for %s: %w", cid, err)
	}
	p.Metrics.Since("calldata", start)
	log.Debug().Str("to", cd.To).Msg("calldata received")

	start = time.Now()
	hash, err := p.Chain.Send(ctx, cd.To, cd.Data)
	if err != nil {
		p.Metrics.Transaction("failed")
		return nil, fmt.Errorf("send transaction: %w", err)
	}
	p.Metrics.Since("send", start)
	log.Info().Str("tx", hash.Hex()).Msg("transaction sent")

	start = time.Now()
	receipt, err := p.Chain.WaitReceipt(ctx, hash, p.PollInterval, p.ReceiptTimeout)
	if err != nil {
		if receipt != nil {
			p.Metrics.Transaction("reverted")
		} else {
			p.Metrics.Transaction("failed")
		}
		return nil, fmt.Errorf("wait for %s: %w", hash.Hex(), err)
	}
	p.Metrics.Since("receipt", start)
	p.Metrics.Transaction("confirmed")

	out := &Receipt{
		Edit:    name,
		Ops:     len(ops),
		CID:     cid,
		TxHash:  hash.Hex(),
		GasUsed: receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		out.Block = receipt.BlockNumber.Uint64()
	}
	log.Info().Str("tx", out.TxHash).Uint64("block", out.Block).Msg("transaction confirmed")

	if p.Archive != nil {
		if data, err := edit.Encode(); err == nil {
			if err := p.Archive.PutEdit(cid, data); err != nil {
				log.Warn().Err(err).Str("cid", cid).Msg("archive edit")
			}
		}
	}
	return out, nil
}

// PublishBatches splits ops into batches of size and publishes one edit per
// batch, named "<name> (i/n)", waiting delay between them. The first
// failure stops the run; receipts of the batches already confirmed are
// returned with the error.
func (p *Publisher) PublishBatches(ctx context.Context, spaceID, name string, ops []graph.Op, size int, delay time.Duration) ([]*Receipt, error) {
	if err := p.check(spaceID); err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: nothing to publish", errors.ErrInvalidInput)
	}

	var receipts []*Receipt
	sub := &batch.Submitter[graph.Op]{
		Delay:  delay,
		Logger: p.Logger,
		Submit: func(ctx context.Context, i, n int, ops []graph.Op) (string, error) {
			editName := name
			if n > 1 {
				editName = fmt.Sprintf("%s (%d/%d)", name, i+1, n)
			}
			r, err := p.publish(ctx, spaceID, editName, ops)
			if err != nil {
				return "", err
			}
			receipts = append(receipts, r)
			return r.TxHash, nil
		},
	}
	_, err := sub.Run(ctx, batch.Split(ops, size))
	return receipts, err
}
