package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/PaulieB14/grc20-publisher/internal/manager"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/publish"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
)

func newPublishCommand(a *app) *cobra.Command {
	var (
		input     string
		space     string
		batchSize int
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "publish deeds|permits",
		Short: "Publish records as edits and wait for confirmation",
		Long: `
Loads and transforms the records, uploads the ops to IPFS as one edit per
batch, sends the transaction for each edit and waits for its receipt.
The IDs of entities whose ops are all in confirmed batches are saved, so a
run that stops part way can be resumed without duplicating them.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := recordKind(args[0])
			if err != nil {
				return err
			}
			if space != "" {
				a.cfg.SetSpace(kind, space)
			}
			space = a.cfg.SpaceFor(kind)
			if !dryRun {
				if err := a.cfg.RequirePublish(kind); err != nil {
					return err
				}
			}
			if batchSize <= 0 {
				batchSize = a.cfg.Batch.Size
			}

			reg, err := a.registryFor(space)
			if err != nil {
				return err
			}
			defer reg.Close()

			p, err := a.prepare(cmd.Context(), kind, input, reg)
			if err != nil {
				return err
			}
			ops := p.ops()
			if dryRun {
				printStats(a.stdout, p, ops)
				return nil
			}

			st, err := a.storeManager().GetStore(space)
			if err != nil {
				return err
			}
			pub, closeChain, err := a.newPublisher(cmd.Context(), st)
			if err != nil {
				return err
			}
			defer closeChain()

			name := editName(kind)
			receipts, err := pub.PublishBatches(cmd.Context(), space, name, ops, batchSize, a.cfg.Batch.Delay)
			printReceipts(a.stdout, receipts)
			saved, saveErr := a.saveConfirmed(space, p, reg, receipts)
			if err != nil {
				if len(receipts) > 0 {
					a.logger.Warn().Int("confirmed", len(receipts)).Int("saved", saved).Msg("run aborted after partial publish")
				}
				if saveErr != nil {
					a.logger.Error().Err(saveErr).Msg("save confirmed entity ids")
				}
				return err
			}
			if saveErr != nil {
				return saveErr
			}

			if err := a.storeManager().SetMetadata(manager.SpaceMetadata{ID: space, Name: name}); err != nil {
				a.logger.Warn().Err(err).Msg("write space metadata")
			}
			a.logger.Info().Str("space", space).Int("entities", saved).Msg("entity ids saved")
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "", "records CSV (defaults to the configured input)")
	flags.StringVar(&space, "space", "", "target space id (defaults to SPACE_ID or PERMITS_SPACE_ID)")
	flags.IntVar(&batchSize, "batch-size", 0, "ops per edit (defaults to the configured batch size)")
	flags.BoolVar(&dryRun, "dry-run", false, "transform and report without publishing")
	return cmd
}

// saveConfirmed records the schema and entity IDs whose ops are all covered
// by receipts, which confirm a prefix of p's ops. With the file backend the
// entries are also indexed in the space store that the server reads.
func (a *app) saveConfirmed(space string, p *prepared, reg *registry.Registry, receipts []*publish.Receipt) (int, error) {
	done := 0
	for _, r := range receipts {
		done += r.Ops
	}
	if done == 0 {
		return 0, nil
	}
	if done >= len(p.schemaOps) {
		if err := p.schemas.commit(); err != nil {
			return 0, fmt.Errorf("save schema ids: %w", err)
		}
	}

	settled := graph.Settled(p.ops(), done)
	entries := make([]registry.Entry, 0, len(p.result.Entities))
	for _, e := range p.result.Entities {
		if settled[e.ID] {
			entries = append(entries, e)
		}
	}
	if err := reg.Record(entries); err != nil {
		return 0, fmt.Errorf("save entity ids: %w", err)
	}
	if a.cfg.Storage.Backend == "badger" {
		return len(entries), nil
	}

	st, err := a.storeManager().GetStore(space)
	if err != nil {
		return len(entries), err
	}
	if err := registry.New(unclosable{st}).Record(entries); err != nil {
		return len(entries), fmt.Errorf("index entity ids: %w", err)
	}
	return len(entries), nil
}

func editName(kind string) string {
	if kind == "permit" {
		return "Building Permits"
	}
	return "Property Deeds"
}

func printReceipts(w io.Writer, receipts []*publish.Receipt) {
	for _, r := range receipts {
		fmt.Fprintf(w, "%s: %d ops, cid %s, tx %s, block %d\n", r.Edit, r.Ops, r.CID, r.TxHash, r.Block)
	}
}
