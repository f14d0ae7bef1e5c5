package handler

import (
	crmapp "github.com/circlesoft/crm/internal/application/crm"
	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/gin-gonic/gin"
)

// InquiryHandler handles inquiry and follow-up endpoints
type InquiryHandler struct {
	WorkspaceHandler
}

// NewInquiryHandler creates a new InquiryHandler
func NewInquiryHandler(workspaces *crmapp.Service) *InquiryHandler {
	return &InquiryHandler{WorkspaceHandler{workspaces: workspaces}}
}

// FollowUpRequest records a follow-up. Failure is only read when the status
// is lost.
type FollowUpRequest struct {
	Date             string              `json:"date"`
	Status           crm.InquiryStatus   `json:"status"`
	NextFollowUpDate *string             `json:"nextFollowUpDate"`
	Notes            string              `json:"notes"`
	Failure          *crm.FailureDetails `json:"failure"`
}

// List GET /inquiries?search=&status=&intention=&sort=&order=&page=
func (h *InquiryHandler) List(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	page, err := crmapp.ListInquiries(m.Snapshot(), crmapp.InquiryQuery{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		Intention: c.Query("intention"),
		Sort:      querySort(c),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 0),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	successPage(c, page)
}

// Get GET /inquiries/:id returns the inquiry with history, orders and
// failure reason
func (h *InquiryHandler) Get(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	detail, err := crmapp.DescribeInquiry(m.Snapshot(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// Create POST /inquiries
func (h *InquiryHandler) Create(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	var req crm.Inquiry
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	req.ID = ""
	created, err := m.AddInquiry(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// Update PUT /inquiries/:id
func (h *InquiryHandler) Update(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	var req crm.Inquiry
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	req.ID = c.Param("id")
	if err := m.UpdateInquiry(c.Request.Context(), req); err != nil {
		h.HandleError(c, err)
		return
	}
	updated, _ := m.Snapshot().FindInquiry(req.ID)
	h.Success(c, updated)
}

// Delete DELETE /inquiries/:id
func (h *InquiryHandler) Delete(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.DeleteInquiry(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AddFollowUp POST /inquiries/:id/follow-ups
func (h *InquiryHandler) AddFollowUp(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	var req FollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	rec, err := m.AddFollowUp(c.Request.Context(), crm.FollowUpRecord{
		ClientID:         c.Param("id"),
		Date:             req.Date,
		Status:           req.Status,
		NextFollowUpDate: req.NextFollowUpDate,
		Notes:            req.Notes,
	}, req.Failure)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, rec)
}

// DeleteFollowUp DELETE /follow-ups/:id
func (h *InquiryHandler) DeleteFollowUp(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.DeleteFollowUp(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
