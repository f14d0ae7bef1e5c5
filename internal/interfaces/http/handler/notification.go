package handler

import (
	"context"
	"strconv"

	crmapp "github.com/circlesoft/crm/internal/application/crm"
	"github.com/circlesoft/crm/internal/application/notification"
	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotificationHandler handles the notification center and toast banners
type NotificationHandler struct {
	WorkspaceHandler
	hub   *notification.Hub
	prefs notification.PreferenceSource
	clock Clock
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(workspaces *crmapp.Service, hub *notification.Hub, prefs notification.PreferenceSource, clock Clock) *NotificationHandler {
	return &NotificationHandler{
		WorkspaceHandler: WorkspaceHandler{workspaces: workspaces},
		hub:              hub,
		prefs:            prefs,
		clock:            clock,
	}
}

// BadgeResponse is the bell badge state
type BadgeResponse struct {
	Count int  `json:"count"`
	Show  bool `json:"show"`
}

// List GET /notifications?unread=&starred=&q=
func (h *NotificationHandler) List(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	unread, _ := strconv.ParseBool(c.Query("unread"))
	starred, _ := strconv.ParseBool(c.Query("starred"))
	f := notification.Filter{UnreadOnly: unread, StarredOnly: starred, Query: c.Query("q")}
	h.Success(c, f.Apply(notification.Sorted(m.Snapshot().Notifications)))
}

// Dropdown GET /notifications/dropdown
func (h *NotificationHandler) Dropdown(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	h.Success(c, notification.Dropdown(m.Snapshot().Notifications))
}

// Badge GET /notifications/badge
func (h *NotificationHandler) Badge(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	prefs, err := h.prefs.Preferences(c.Request.Context(), m.UserID())
	if err != nil {
		logger.GetGinLogger(c).Warn("Using default preferences for badge", zap.Error(err))
	}
	count, show := notification.Badge(m.Snapshot().Notifications, prefs)
	h.Success(c, BadgeResponse{Count: count, Show: show})
}

// Push POST /notifications adds an incoming notification
func (h *NotificationHandler) Push(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	var req crm.Notification
	if err := c.ShouldBindJSON(&req); err != nil {
		h.InvalidJSON(c, err)
		return
	}
	if req.MessageKey == "" {
		h.BadRequest(c, "messageKey is required")
		return
	}
	req.ID = ""
	n, err := m.PushNotification(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, n)
}

// MarkRead POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.apply(c, (*crmapp.Manager).MarkNotificationRead)
}

// ToggleStar POST /notifications/:id/star
func (h *NotificationHandler) ToggleStar(c *gin.Context) {
	h.apply(c, (*crmapp.Manager).ToggleNotificationStar)
}

// TogglePin POST /notifications/:id/pin
func (h *NotificationHandler) TogglePin(c *gin.Context) {
	h.apply(c, (*crmapp.Manager).ToggleNotificationPin)
}

// Delete DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	h.apply(c, (*crmapp.Manager).DeleteNotification)
}

func (h *NotificationHandler) apply(c *gin.Context, op func(*crmapp.Manager, context.Context, string) error) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := op(m, c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// MarkAllRead POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.MarkAllNotificationsRead(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Clear DELETE /notifications
func (h *NotificationHandler) Clear(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	if err := m.ClearNotifications(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Remind POST /notifications/remind pushes today's follow-up reminder
func (h *NotificationHandler) Remind(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	pushed, err := notification.RemindFollowUps(c.Request.Context(), m, h.clock.now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"pushed": pushed})
}

// Toasts GET /notifications/toasts
func (h *NotificationHandler) Toasts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	h.Success(c, h.hub.For(userID).Toasts())
}

// DismissToast DELETE /notifications/toasts/:id
func (h *NotificationHandler) DismissToast(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	h.hub.For(userID).Dismiss(c.Param("id"))
	h.NoContent(c)
}
