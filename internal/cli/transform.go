package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/PaulieB14/grc20-publisher/pkg/graph"
)

func newTransformCommand(a *app) *cobra.Command {
	var input, out string
	cmd := &cobra.Command{
		Use:   "transform deeds|permits",
		Short: "Transform records into ops without publishing",
		Long: `
Loads the records, builds the ops that would be published and writes them
as JSON. Nothing is uploaded and no entity IDs are saved.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := recordKind(args[0])
			if err != nil {
				return err
			}
			reg, err := a.registryFor(a.cfg.SpaceFor(kind))
			if err != nil {
				return err
			}
			defer reg.Close()

			p, err := a.prepare(cmd.Context(), kind, input, reg)
			if err != nil {
				return err
			}
			ops := p.ops()

			w := a.stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			if err := enc.Encode(ops); err != nil {
				return err
			}
			if out != "" {
				printStats(a.stdout, p, ops)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "", "records CSV (defaults to the configured input)")
	flags.StringVarP(&out, "out", "o", "", "write ops JSON to this file instead of stdout")
	return cmd
}

func printStats(w io.Writer, p *prepared, ops []graph.Op) {
	fmt.Fprintf(w, "%d %s records -> %d ops (%d schema)\n", p.records, p.kind, len(ops), len(p.schemaOps))
	stats := graph.Stats(ops)
	types := make([]string, 0, len(stats))
	for t := range stats {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(w, "  %-16s %d\n", t, stats[graph.OpType(t)])
	}
	for _, kind := range entityKinds(p.kind) {
		fmt.Fprintf(w, "  %-16s %d entities\n", kind, len(p.result.Of(kind)))
	}
}
