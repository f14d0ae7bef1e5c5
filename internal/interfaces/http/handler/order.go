package handler

import (
	crmapp "github.com/circlesoft/crm/internal/application/crm"
	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/gin-gonic/gin"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	WorkspaceHandler
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(workspaces *crmapp.Service) *OrderHandler {
	return &OrderHandler{WorkspaceHandler{workspaces: workspaces}}
}

// List GET /orders?search=&status=&sort=&order=&page=
func (h *OrderHandler) List(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	page, err := crmapp.ListOrders(m.Snapshot(), crmapp.OrderQuery{
		Search:   c.Query("search"),
		Status:   c.Query("status"),
		Sort:     querySort(c),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 0),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Stats GET /orders/stats
func (h *OrderHandler) Stats(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	h.Success(c, crmapp.ComputeOrderStats(m.Snapshot().Orders))
}

// Get GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	d := m.Snapshot()
	idx := d.OrderIndex(c.Param("id"))
	if idx < 0 {
		h.HandleError(c, crm.ErrOrderNotFound)
		return
	}
	o := d.Orders[idx]
	o.ClientName = crmapp.ResolveClientName(d.ClientNames(), o)
	h.Success(c, o)
}

// Create POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	var req crm.Order
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	req.ID = ""
	created, err := m.AddOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Update PUT /orders/:id
func (h *OrderHandler) Update(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	var req crm.Order
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	req.ID = c.Param("id")
	if err := m.UpdateOrder(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	d := m.Snapshot()
	h.Success(c, d.Orders[d.OrderIndex(req.ID)])
}

// Delete DELETE /orders/:id
func (h *OrderHandler) Delete(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
