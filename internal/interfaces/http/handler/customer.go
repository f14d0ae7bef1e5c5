package handler

import (
	crmapp "github.com/circlesoft/crm/internal/application/crm"
	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/gin-gonic/gin"
)

// CustomerHandler handles customer endpoints
type CustomerHandler struct {
	WorkspaceHandler
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(workspaces *crmapp.Service) *CustomerHandler {
	return &CustomerHandler{WorkspaceHandler{workspaces: workspaces}}
}

// List GET /customers?search=&page=
func (h *CustomerHandler) List(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	successPage(c, crmapp.ListCustomers(m.Snapshot(), crmapp.CustomerQuery{
		Search:   c.Query("search"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 0),
	}))
}

// Pick GET /customers/picker?q=
func (h *CustomerHandler) Pick(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	h.Success(c, crmapp.PickCustomers(m.Snapshot(), c.Query("q")))
}

// Get GET /customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	d := m.Snapshot()
	idx := d.CustomerIndex(c.Param("id"))
	if idx < 0 {
		h.HandleError(c, crm.ErrCustomerNotFound)
		return
	}
	h.Success(c, d.Customers[idx])
}

// Inquiries GET /customers/:id/inquiries
func (h *CustomerHandler) Inquiries(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	d := m.Snapshot()
	if d.CustomerIndex(c.Param("id")) < 0 {
		h.HandleError(c, crm.ErrCustomerNotFound)
		return
	}
	h.Success(c, crmapp.CustomerInquiries(d, c.Param("id")))
}

// Create POST /customers
func (h *CustomerHandler) Create(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	var req crm.Customer
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	req.ID = ""
	created, err := m.AddCustomer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Update PUT /customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	var req crm.Customer
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	req.ID = c.Param("id")
	if err := m.UpdateCustomer(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	d := m.Snapshot()
	h.Success(c, d.Customers[d.CustomerIndex(req.ID)])
}

// Delete DELETE /customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
