package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/common/httpx"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/grc20api"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
	"github.com/PaulieB14/grc20-publisher/pkg/report"
)

func newReportCommand(a *app) *cobra.Command {
	var (
		kindArg   string
		out       string
		graphOut  string
		withNames bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "List saved entities with their browser URLs",
		Long: `
Writes a CSV of every saved entity with its key, entity ID and browser
URL. --names fetches entity names from the API. --graph also writes a D3
graph of the edits archived for the space.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := []string{"deed", "permit"}
			if kindArg != "" {
				kind, err := recordKind(kindArg)
				if err != nil {
					return err
				}
				kinds = []string{kind}
			}

			var api *grc20api.Client
			if withNames {
				httpc := httpx.New(a.logger, a.cfg.HTTP.Retries, a.cfg.HTTP.Timeout)
				api = grc20api.New(a.cfg.Network.APIURL, httpc, grc20api.WithNetwork(a.cfg.Network.Name))
			}

			var rows []report.Row
			for _, kind := range kinds {
				space := a.cfg.SpaceFor(kind)
				if space == "" && a.cfg.Storage.Backend == "badger" {
					continue
				}
				entries, err := a.entries(kind, space)
				if err != nil {
					return err
				}
				if api != nil {
					for i, e := range entries {
						ent, err := api.Entity(cmd.Context(), space, string(e.ID))
						if err != nil {
							a.logger.Warn().Err(err).Str("entity", string(e.ID)).Msg("entity lookup")
							continue
						}
						entries[i].Name = ent.Name
					}
				}
				rows = append(rows, report.Rows(entries, space, a.cfg.Network.BrowserURL)...)
			}

			w := a.stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := report.WriteCSV(w, rows); err != nil {
				return err
			}

			if graphOut != "" {
				if len(kinds) != 1 {
					return fmt.Errorf("%w: --graph needs --kind", errors.ErrInvalidInput)
				}
				return a.writeGraph(a.cfg.SpaceFor(kinds[0]), graphOut)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&kindArg, "kind", "k", "", "deeds or permits (default both)")
	flags.StringVarP(&out, "out", "o", "", "CSV file (default stdout)")
	flags.StringVar(&graphOut, "graph", "", "write a D3 graph of archived edits to this file")
	flags.BoolVar(&withNames, "names", false, "fetch entity names from the API")
	return cmd
}

// entries lists every saved entity produced by a record kind.
func (a *app) entries(kind, space string) ([]registry.Entry, error) {
	reg, err := a.registryFor(space)
	if err != nil {
		return nil, err
	}
	defer reg.Close()

	var out []registry.Entry
	for _, k := range entityKinds(kind) {
		e, err := reg.Entries(k)
		if err != nil {
			return nil, err
		}
		out = append(out, e...)
	}
	return out, nil
}

func (a *app) writeGraph(space, path string) error {
	if space == "" {
		return fmt.Errorf("%w: no space configured for the graph", errors.ErrMissingConfig)
	}
	st, err := a.storeManager().GetStore(space)
	if err != nil {
		return err
	}
	archived, err := st.Edits()
	if err != nil {
		return err
	}

	var ops []graph.Op
	for _, ae := range archived {
		data, err := st.GetEdit(ae.CID)
		if err != nil {
			return err
		}
		edit, err := graph.DecodeEdit(data)
		if err != nil {
			return err
		}
		ops = append(ops, edit.Ops...)
	}
	g := report.NewD3Transformer().Transform(ops)
	if err := report.SaveD3Graph(g, path); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "wrote %d nodes and %d links from %d edits to %s\n", len(g.Nodes), len(g.Links), len(archived), path)
	return nil
}
