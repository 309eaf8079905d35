// Package report renders published entities as CSV listings with browser
// links and as D3 graphs of the ops that created them.
package report

import (
	"encoding/csv"
	"io"
	"sort"

	"github.com/PaulieB14/grc20-publisher/pkg/grc20api"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
)

// Header is the first line of every CSV report.
var Header = []string{"Kind", "Name", "Key", "Entity ID", "URL"}

type Row struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
	Key  string `json:"key"`
	ID   string `json:"id"`
	URL  string `json:"url"`
}

// Rows builds one row per entry, sorted by name and then key. URLs are left
// empty when browserBase is.
func Rows(entries []registry.Entry, spaceID, browserBase string) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		r := Row{Kind: e.Kind, Name: e.Name, Key: e.Key, ID: string(e.ID)}
		if browserBase != "" {
			r.URL = grc20api.BrowserURL(browserBase, spaceID, string(e.ID))
		}
		rows = append(rows, r)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Kind, r.Name, r.Key, r.ID, r.URL}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
