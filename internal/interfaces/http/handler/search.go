package handler

import (
	crmapp "github.com/circlesoft/crm/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// SearchHandler serves the global search box
type SearchHandler struct {
	WorkspaceHandler
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(workspaces *crmapp.Service) *SearchHandler {
	return &SearchHandler{WorkspaceHandler{workspaces: workspaces}}
}

// Search GET /search?q=
func (h *SearchHandler) Search(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	h.Success(c, crmapp.Search(m.Snapshot(), c.Query("q")))
}
