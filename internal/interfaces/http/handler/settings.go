package handler

import (
	settingsapp "github.com/circlesoft/crm/internal/application/settings"
	"github.com/circlesoft/crm/internal/domain/settings"
	"github.com/gin-gonic/gin"
)

// SettingsHandler reads and writes display preferences
type SettingsHandler struct {
	BaseHandler
	service *settingsapp.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service *settingsapp.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// SetPreferenceRequest carries one preference in its string form
type SetPreferenceRequest struct {
	Value string `json:"value"`
}

func (h *SettingsHandler) userID(c *gin.Context) (string, bool) {
	id, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return "", false
	}
	return id, true
}

// Get GET /settings
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	p, err := h.service.Preferences(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Update PUT /settings merges the given preferences into the stored ones
func (h *SettingsHandler) Update(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	p, err := h.service.Preferences(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	checked := settings.Defaults()
	for key, value := range p.Values() {
		if err := checked.Set(key, value); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	if err := h.service.Update(c.Request.Context(), userID, checked); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, checked)
}

// Set PUT /settings/:key
func (h *SettingsHandler) Set(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req SetPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	p, err := h.service.Set(c.Request.Context(), userID, c.Param("key"), req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Reset DELETE /settings restores the defaults
func (h *SettingsHandler) Reset(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	p, err := h.service.Reset(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}
