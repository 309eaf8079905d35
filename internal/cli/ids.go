package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
)

func newIDsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ids",
		Short: "Maintain saved entity IDs",
	}
	cmd.AddCommand(newIDsCheckCommand(a))
	cmd.AddCommand(newIDsRemapCommand(a))
	cmd.AddCommand(newIDsSuggestCommand(a))
	return cmd
}

func newIDsCheckCommand(a *app) *cobra.Command {
	var triples, working string
	cmd := &cobra.Command{
		Use:   "check deeds|permits",
		Short: "Compare the entity IDs of a triples file with the working IDs",
		Long: `
Lists working IDs that are missing from the triples file and IDs in the
triples file that are not working IDs. Working IDs come from --working (a
JSON array) or, without it, from the saved registry.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := recordKind(args[0])
			if err != nil {
				return err
			}
			entities, err := registry.LoadTriples(triples)
			if err != nil {
				return err
			}
			inFile := make([]string, 0, len(entities))
			for _, e := range entities {
				inFile = append(inFile, e.EntityID)
			}

			var ids []string
			if working != "" {
				if err := readJSON(working, &ids); err != nil {
					return err
				}
			} else {
				entries, err := a.primaryEntries(kind)
				if err != nil {
					return err
				}
				for _, e := range entries {
					ids = append(ids, string(e.ID))
				}
			}

			missing, extra := registry.Check(ids, inFile)
			fmt.Fprintf(a.stdout, "%d entities in %s, %d working ids\n", len(inFile), triples, len(ids))
			fmt.Fprintf(a.stdout, "missing (working, not in file): %d\n", len(missing))
			for _, id := range missing {
				fmt.Fprintf(a.stdout, "  %s\n", id)
			}
			fmt.Fprintf(a.stdout, "extra (in file, not working): %d\n", len(extra))
			for _, id := range extra {
				fmt.Fprintf(a.stdout, "  %s\n", id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&triples, "triples", "", "triples JSON file")
	cmd.Flags().StringVar(&working, "working", "", "JSON array of working entity IDs")
	_ = cmd.MarkFlagRequired("triples")
	return cmd
}

func newIDsRemapCommand(a *app) *cobra.Command {
	var triples, mapFile, idsFile, out string
	cmd := &cobra.Command{
		Use:   "remap",
		Short: "Rewrite the entity IDs of a triples file",
		Long: `
Replaces old entity IDs with new ones on every entity and triple. The
mapping is a JSON object of old to new IDs (--map), or a JSON array of new
IDs paired with the file's entities in order (--ids).
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entities, err := registry.LoadTriples(triples)
			if err != nil {
				return err
			}

			var mapping map[string]string
			switch {
			case mapFile != "":
				if err := readJSON(mapFile, &mapping); err != nil {
					return err
				}
			case idsFile != "":
				var ids []string
				if err := readJSON(idsFile, &ids); err != nil {
					return err
				}
				mapping = registry.Mapping(entities, ids)
			default:
				return fmt.Errorf("%w: one of --map or --ids is required", errors.ErrInvalidInput)
			}

			remapped := registry.Remap(mapping, entities)
			for _, e := range entities {
				if n, ok := mapping[e.EntityID]; ok {
					a.logger.Debug().Str("old", e.EntityID).Str("new", n).Msg("entity remapped")
				} else {
					a.logger.Warn().Str("entity", e.EntityID).Msg("no mapping for entity")
				}
			}
			if out == "" {
				out = triples
			}
			if err := registry.SaveTriples(out, remapped); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "remapped %d entities, wrote %d to %s\n", len(mapping), len(remapped), out)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&triples, "triples", "", "triples JSON file")
	flags.StringVar(&mapFile, "map", "", "JSON object of old to new entity IDs")
	flags.StringVar(&idsFile, "ids", "", "JSON array of new entity IDs in file order")
	flags.StringVarP(&out, "out", "o", "", "output file (defaults to rewriting --triples)")
	_ = cmd.MarkFlagRequired("triples")
	return cmd
}

func newIDsSuggestCommand(a *app) *cobra.Command {
	var maxDistance, limit int
	cmd := &cobra.Command{
		Use:   "suggest deeds|permits KEY",
		Short: "Find saved keys close to an unmatched one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := recordKind(args[0])
			if err != nil {
				return err
			}
			entries, err := a.primaryEntries(kind)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(entries))
			byKey := make(map[string]string, len(entries))
			for _, e := range entries {
				keys = append(keys, e.Key)
				byKey[e.Key] = string(e.ID)
			}

			suggestions := registry.Suggest(args[1], keys, maxDistance, limit)
			if len(suggestions) == 0 {
				return fmt.Errorf("%w: no %s key within %d edits of %q", errors.ErrNotFound, kind, maxDistance, args[1])
			}
			for _, s := range suggestions {
				fmt.Fprintf(a.stdout, "%s\t%d\t%s\n", s.Key, s.Distance, byKey[s.Key])
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxDistance, "max-distance", 3, "largest edit distance to report")
	cmd.Flags().IntVar(&limit, "limit", 5, "number of suggestions")
	return cmd
}

// primaryEntries returns the saved deeds or permits of kind.
func (a *app) primaryEntries(kind string) ([]registry.Entry, error) {
	reg, err := a.registryFor(a.cfg.SpaceFor(kind))
	if err != nil {
		return nil, err
	}
	defer reg.Close()
	return reg.Entries(kind)
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", errors.ErrInvalidInput, path, err)
	}
	return nil
}
