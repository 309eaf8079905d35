package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PaulieB14/grc20-publisher/pkg/common/errors"
	"github.com/PaulieB14/grc20-publisher/pkg/graph"
	"github.com/PaulieB14/grc20-publisher/pkg/grc20api"
	"github.com/PaulieB14/grc20-publisher/pkg/ipfs"
	"github.com/PaulieB14/grc20-publisher/pkg/registry"
	"github.com/PaulieB14/grc20-publisher/pkg/report"
	"github.com/PaulieB14/grc20-publisher/pkg/store"
)

// EditSummary describes one archived edit.
type EditSummary struct {
	CID    string `json:"cid"`
	Name   string `json:"name"`
	Author string `json:"author"`
	Ops    int    `json:"ops"`
	Size   int    `json:"size"`
}

func handleError(c *gin.Context, err error) {
	appErr := errors.MapError(err)
	c.JSON(appErr.Code, gin.H{"error": appErr.Error()})
}

func (s *Server) spaceStore(c *gin.Context) (*store.Store, bool) {
	st, err := s.manager.GetStore(c.Param("space"))
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	return st, true
}

// handleSpaces returns the known spaces.
func (s *Server) handleSpaces(c *gin.Context) {
	spaces, err := s.manager.ListSpaces()
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, spaces)
}

// handleEntities lists registered entities, optionally of one kind.
func (s *Server) handleEntities(c *gin.Context) {
	st, ok := s.spaceStore(c)
	if !ok {
		return
	}
	kinds := []string{c.Query("kind")}
	if kinds[0] == "" {
		all, err := st.Kinds()
		if err != nil {
			handleError(c, err)
			return
		}
		kinds = registry.Kinds(all)
	}

	reg := registry.New(st)
	var entries []registry.Entry
	for _, kind := range kinds {
		e, err := reg.Entries(kind)
		if err != nil {
			handleError(c, err)
			return
		}
		entries = append(entries, e...)
	}
	c.JSON(http.StatusOK, report.Rows(entries, c.Param("space"), s.browserBase))
}

// handleEntity resolves one natural key to its entity.
func (s *Server) handleEntity(c *gin.Context) {
	st, ok := s.spaceStore(c)
	if !ok {
		return
	}
	space, kind, key := c.Param("space"), c.Param("kind"), c.Param("key")
	id, err := st.GetID(kind, key)
	if err != nil {
		handleError(c, err)
		return
	}
	row := report.Row{Kind: kind, Key: key, ID: id}
	if s.browserBase != "" {
		row.URL = grc20api.BrowserURL(s.browserBase, space, id)
	}
	c.JSON(http.StatusOK, row)
}

// handleEdits lists the archived edits of a space.
func (s *Server) handleEdits(c *gin.Context) {
	st, ok := s.spaceStore(c)
	if !ok {
		return
	}
	archived, err := st.Edits()
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]EditSummary, 0, len(archived))
	for _, a := range archived {
		sum := EditSummary{CID: a.CID, Size: a.Size}
		if data, err := st.GetEdit(a.CID); err == nil {
			if e, err := graph.DecodeEdit(data); err == nil {
				sum.Name, sum.Author, sum.Ops = e.Name, e.Author, len(e.Ops)
			}
		}
		out = append(out, sum)
	}
	c.JSON(http.StatusOK, out)
}

// handleEdit returns one archived edit, selected by ?cid=.
func (s *Server) handleEdit(c *gin.Context) {
	cid := c.Query("cid")
	if cid == "" {
		handleError(c, errors.NewAppError(http.StatusBadRequest, "Missing cid", nil))
		return
	}
	if _, err := ipfs.ParseURI(cid); err != nil {
		handleError(c, err)
		return
	}
	st, ok := s.spaceStore(c)
	if !ok {
		return
	}
	data, err := st.GetEdit(cid)
	if err != nil {
		handleError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// handleGraph renders every archived edit of the space as one D3 graph.
func (s *Server) handleGraph(c *gin.Context) {
	st, ok := s.spaceStore(c)
	if !ok {
		return
	}
	archived, err := st.Edits()
	if err != nil {
		handleError(c, err)
		return
	}

	var ops []graph.Op
	for _, a := range archived {
		data, err := st.GetEdit(a.CID)
		if err != nil {
			handleError(c, err)
			return
		}
		e, err := graph.DecodeEdit(data)
		if err != nil {
			handleError(c, err)
			return
		}
		ops = append(ops, e.Ops...)
	}

	t := report.NewD3Transformer()
	t.SchemaNodes = c.Query("schema") == "true"
	c.JSON(http.StatusOK, t.Transform(ops))
}
