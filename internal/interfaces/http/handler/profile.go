package handler

import (
	crmapp "github.com/circlesoft/crm/internal/application/crm"
	identityapp "github.com/circlesoft/crm/internal/application/identity"
	"github.com/circlesoft/crm/internal/application/report"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// ProfileHandler serves the profile page
type ProfileHandler struct {
	WorkspaceHandler
	authService *identityapp.AuthService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(workspaces *crmapp.Service, authService *identityapp.AuthService) *ProfileHandler {
	return &ProfileHandler{WorkspaceHandler: WorkspaceHandler{workspaces: workspaces}, authService: authService}
}

// ProfileResponse is the user with their headline numbers
type ProfileResponse struct {
	User  identity.User       `json:"user"`
	Stats report.ProfileStats `json:"stats"`
}

// Get GET /profile
func (h *ProfileHandler) Get(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	d := m.Snapshot()
	h.Success(c, ProfileResponse{User: d.User, Stats: report.BuildProfileStats(d)})
}

// Update PUT /profile merges the given fields into the profile
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req identity.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
