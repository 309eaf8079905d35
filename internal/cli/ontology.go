package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/PaulieB14/grc20-publisher/pkg/publish"
)

func newOntologyCommand(a *app) *cobra.Command {
	var space string
	cmd := &cobra.Command{
		Use:   "ontology deeds|permits",
		Short: "Publish the properties, types and relation types of a record kind",
		Long: `
Creates the schema entities of a record kind in a single edit and saves
their IDs. A schema that is already saved is printed and not republished.
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

			reg, err := a.registryFor(space)
			if err != nil {
				return err
			}
			defer reg.Close()

			schemas := newPendingSchemas(reg)
			ops, ids, err := buildSchema(kind, schemas)
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				fmt.Fprintf(a.stdout, "%s schema already saved\n", kind)
				printSchema(a.stdout, ids)
				return nil
			}
			if err := a.cfg.RequirePublish(kind); err != nil {
				return err
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

			r, err := pub.Publish(cmd.Context(), space, editName(kind)+" Ontology", ops)
			if err != nil {
				return err
			}
			if err := schemas.commit(); err != nil {
				return fmt.Errorf("save schema ids: %w", err)
			}
			printReceipts(a.stdout, []*publish.Receipt{r})
			printSchema(a.stdout, ids)
			return nil
		},
	}
	cmd.Flags().StringVar(&space, "space", "", "target space id (defaults to SPACE_ID or PERMITS_SPACE_ID)")
	return cmd
}

func printSchema(w io.Writer, ids map[string]string) {
	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-24s %s\n", name, ids[name])
	}
}
