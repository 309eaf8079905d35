package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PaulieB14/grc20-publisher/pkg/common/httpx"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/grc20api"
	"github.com/PaulieB14/grc20-publisher/pkg/publish"
	"github.com/PaulieB14/grc20-publisher/pkg/records"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
	"github.com/PaulieB14/grc20-publisher/pkg/transform"
)

const renameEditName = "Update Entity Names"

func newRenameCommand(a *app) *cobra.Command {
	var (
		input       string
		space       string
		batchSize   int
		dryRun      bool
		onlyChanged bool
	)
	cmd := &cobra.Command{
		Use:   "rename deeds|permits",
		Short: "Republish the names of saved entities",
		Long: `
Recomputes the name of every saved entity of a record set, records from
their CSV row and shared entities from their key, and publishes one name
op per entity. --only-changed first asks the API for the current names and
skips entities that already match.
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

			primaries, err := a.primaryNames(cmd, kind, input)
			if err != nil {
				return err
			}
			registered, err := a.entries(kind, space)
			if err != nil {
				return err
			}
			if onlyChanged {
				httpc := httpx.New(a.logger, a.cfg.HTTP.Retries, a.cfg.HTTP.Timeout)
				api := grc20api.New(a.cfg.Network.APIURL, httpc, grc20api.WithNetwork(a.cfg.Network.Name))
				for i, e := range registered {
					ent, err := api.Entity(cmd.Context(), space, string(e.ID))
					if err != nil {
						a.logger.Warn().Err(err).Str("entity", string(e.ID)).Msg("entity lookup")
						continue
					}
					registered[i].Name = ent.Name
				}
			}

			ops, renamed := transform.Renames(registered, primaries)
			if onlyChanged {
				ops, renamed = changedOnly(registered, ops, renamed)
			}
			a.logger.Info().Str("kind", kind).Int("saved", len(registered)).Int("renamed", len(renamed)).Msg("names computed")
			if dryRun || len(ops) == 0 {
				for _, e := range renamed {
					fmt.Fprintf(a.stdout, "%s\t%s\t%s\t%s\n", e.Kind, e.Key, e.ID, e.Name)
				}
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

			receipts, err := pub.PublishBatches(cmd.Context(), space, renameEditName, ops, batchSize, a.cfg.Batch.Delay)
			printReceipts(a.stdout, receipts)
			return err
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "", "records CSV (defaults to the configured input)")
	flags.StringVar(&space, "space", "", "target space id (defaults to SPACE_ID or PERMITS_SPACE_ID)")
	flags.IntVar(&batchSize, "batch-size", 0, "ops per edit (defaults to the configured batch size)")
	flags.BoolVar(&dryRun, "dry-run", false, "list the new names without publishing")
	flags.BoolVar(&onlyChanged, "only-changed", false, "skip entities whose published name already matches")
	return cmd
}

// primaryNames loads the records of kind and names their entities by key.
func (a *app) primaryNames(cmd *cobra.Command, kind, input string) (map[string]string, error) {
	if kind == "permit" {
		if input == "" {
			input = a.cfg.Inputs.Permits
		}
		permits, err := records.LoadPermits(input)
		if err != nil {
			return nil, err
		}
		return transform.PermitNames(permits), nil
	}
	if input == "" {
		input = a.cfg.Inputs.Deeds
	}
	deeds, err := publish.LoadDeeds(cmd.Context(), input, a.cfg.Inputs.Addresses)
	if err != nil {
		return nil, err
	}
	return transform.DeedNames(deeds), nil
}

// changedOnly drops the renames whose entity already has the new name.
func changedOnly(current []registry.Entry, ops []graph.Op, renamed []registry.Entry) ([]graph.Op, []registry.Entry) {
	names := make(map[graph.ID]string, len(current))
	for _, e := range current {
		names[e.ID] = e.Name
	}
	var (
		keptOps []graph.Op
		kept    []registry.Entry
	)
	for i, e := range renamed {
		if names[e.ID] == e.Name {
			continue
		}
		keptOps = append(keptOps, ops[i])
		kept = append(kept, e)
	}
	return keptOps, kept
}
