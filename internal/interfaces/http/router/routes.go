package router

import (
	"github.com/circlesoft/crm/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers are the endpoint handlers mounted by Routes
type Handlers struct {
	Auth          *handler.AuthHandler
	Profile       *handler.ProfileHandler
	Customers     *handler.CustomerHandler
	Inquiries     *handler.InquiryHandler
	Orders        *handler.OrderHandler
	Notifications *handler.NotificationHandler
	Reports       *handler.ReportHandler
	Search        *handler.SearchHandler
	Settings      *handler.SettingsHandler
	Backup        *handler.BackupHandler
	System        *handler.SystemHandler
}

// Guards are the middleware applied per group. AuthLimit may be nil.
type Guards struct {
	Authenticated gin.HandlerFunc
	AuthLimit     gin.HandlerFunc
}

// Routes returns the domain groups of the API
func Routes(h Handlers, g Guards) []RouteRegistrar {
	public := []gin.HandlerFunc{}
	if g.AuthLimit != nil {
		public = append(public, g.AuthLimit)
	}
	with := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, public...), fn)
	}

	authGroup := NewDomainGroup("auth", "/auth").
		POST("/login", with(h.Auth.Login)...).
		POST("/register", with(h.Auth.Register)...).
		POST("/reset-password", with(h.Auth.ResetPassword)...).
		GET("/remembered", h.Auth.Remembered)
	authGroup.Group("session", "").
		Use(g.Authenticated).
		GET("/session", h.Auth.Session).
		POST("/logout", h.Auth.Logout)

	system := NewDomainGroup("system", "/system").
		GET("/info", h.System.GetSystemInfo).
		GET("/health", h.System.Health)

	profile := NewDomainGroup("profile", "/profile").
		Use(g.Authenticated).
		GET("", h.Profile.Get).
		PUT("", h.Profile.Update)

	customers := NewDomainGroup("customers", "/customers").
		Use(g.Authenticated).
		GET("", h.Customers.List).
		GET("/picker", h.Customers.Pick).
		POST("", h.Customers.Create).
		GET("/:id", h.Customers.Get).
		PUT("/:id", h.Customers.Update).
		DELETE("/:id", h.Customers.Delete).
		GET("/:id/inquiries", h.Customers.Inquiries)

	inquiries := NewDomainGroup("inquiries", "/inquiries").
		Use(g.Authenticated).
		GET("", h.Inquiries.List).
		POST("", h.Inquiries.Create).
		GET("/:id", h.Inquiries.Get).
		PUT("/:id", h.Inquiries.Update).
		DELETE("/:id", h.Inquiries.Delete).
		POST("/:id/follow-ups", h.Inquiries.AddFollowUp)

	followUps := NewDomainGroup("follow-ups", "/follow-ups").
		Use(g.Authenticated).
		DELETE("/:id", h.Inquiries.DeleteFollowUp)

	orders := NewDomainGroup("orders", "/orders").
		Use(g.Authenticated).
		GET("", h.Orders.List).
		GET("/stats", h.Orders.Stats).
		POST("", h.Orders.Create).
		GET("/:id", h.Orders.Get).
		PUT("/:id", h.Orders.Update).
		DELETE("/:id", h.Orders.Delete)

	notifications := NewDomainGroup("notifications", "/notifications").
		Use(g.Authenticated).
		GET("", h.Notifications.List).
		POST("", h.Notifications.Push).
		DELETE("", h.Notifications.Clear).
		GET("/dropdown", h.Notifications.Dropdown).
		GET("/badge", h.Notifications.Badge).
		POST("/read-all", h.Notifications.MarkAllRead).
		POST("/remind", h.Notifications.Remind).
		GET("/toasts", h.Notifications.Toasts).
		DELETE("/toasts/:id", h.Notifications.DismissToast).
		POST("/:id/read", h.Notifications.MarkRead).
		POST("/:id/star", h.Notifications.ToggleStar).
		POST("/:id/pin", h.Notifications.TogglePin).
		DELETE("/:id", h.Notifications.Delete)

	reports := NewDomainGroup("reports", "/reports").
		Use(g.Authenticated).
		GET("/dashboard", h.Reports.Dashboard).
		GET("/analytics", h.Reports.Analytics).
		GET("/calendar", h.Reports.Calendar).
		GET("/calendar/day", h.Reports.CalendarDay)

	search := NewDomainGroup("search", "/search").
		Use(g.Authenticated).
		GET("", h.Search.Search)

	settings := NewDomainGroup("settings", "/settings").
		Use(g.Authenticated).
		GET("", h.Settings.Get).
		PUT("", h.Settings.Update).
		DELETE("", h.Settings.Reset).
		PUT("/:key", h.Settings.Set)

	data := NewDomainGroup("data", "").
		Use(g.Authenticated).
		GET("/export", h.Backup.Export).
		POST("/backup", h.Backup.Backup).
		POST("/import/customers", h.Backup.ImportCustomers)

	return []RouteRegistrar{
		authGroup, system, profile, customers, inquiries, followUps,
		orders, notifications, reports, search, settings, data,
	}
}
