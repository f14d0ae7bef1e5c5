package handler

import (
	"time"

	crmapp "github.com/circlesoft/crm/internal/application/crm"
	"github.com/circlesoft/crm/internal/application/notification"
	"github.com/circlesoft/crm/internal/application/report"
	"github.com/circlesoft/crm/internal/domain/settings"
	"github.com/circlesoft/crm/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReportHandler serves the dashboard, analytics and calendar
type ReportHandler struct {
	WorkspaceHandler
	prefs notification.PreferenceSource
	clock Clock
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(workspaces *crmapp.Service, prefs notification.PreferenceSource, clock Clock) *ReportHandler {
	return &ReportHandler{WorkspaceHandler: WorkspaceHandler{workspaces: workspaces}, prefs: prefs, clock: clock}
}

func (h *ReportHandler) locale(c *gin.Context, userID string) settings.Locale {
	p, err := h.prefs.Preferences(c.Request.Context(), userID)
	if err != nil {
		logger.GetGinLogger(c).Warn("Using default locale", zap.Error(err))
	}
	return p.Locale
}

// Dashboard GET /reports/dashboard
func (h *ReportHandler) Dashboard(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	h.Success(c, report.BuildDashboard(m.Snapshot(), h.clock.now(), h.locale(c, m.UserID())))
}

// Analytics GET /reports/analytics
func (h *ReportHandler) Analytics(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	h.Success(c, report.BuildAnalytics(m.Snapshot(), h.clock.now(), h.locale(c, m.UserID())))
}

// Calendar GET /reports/calendar?month=2006-01
func (h *ReportHandler) Calendar(c *gin.Context) {
	month := h.clock.now()
	if v := c.Query("month"); v != "" {
		t, err := time.ParseInLocation("2006-01", v, h.clock.location())
		if err != nil {
			h.BadRequest(c, "month must be formatted as YYYY-MM")
			return
		}
		month = t
	}
	m, ok := h.manager(c)
	if !ok {
		return
	}
	events := report.CalendarEvents(m.Snapshot(), h.clock.location())
	h.Success(c, report.MonthGrid(events, month))
}

// CalendarDay GET /reports/calendar/day?date=2006-01-02
func (h *ReportHandler) CalendarDay(c *gin.Context) {
	day, err := time.ParseInLocation(time.DateOnly, c.Query("date"), h.clock.location())
	if err != nil {
		h.BadRequest(c, "date must be formatted as YYYY-MM-DD")
		return
	}
	m, ok := h.manager(c)
	if !ok {
		return
	}
	events := report.CalendarEvents(m.Snapshot(), h.clock.location())
	h.Success(c, report.EventsOn(events, day))
}
