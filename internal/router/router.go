package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/club-events/internal/handler"
	"github.com/iliyamo/club-events/internal/middleware"
	"github.com/iliyamo/club-events/internal/model"
)

// Handlers groups everything the routes need.  Cache and RateLimit may
// be pass-through middleware when Redis is not configured.
type Handlers struct {
	Auth          *handler.AuthHandler
	Events        *handler.EventHandler
	Bookings      *handler.BookingHandler
	Notifications *handler.NotificationHandler
	Owner         *handler.OwnerHandler
	Health        echo.HandlerFunc

	Gate      *middleware.Gate
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// RegisterRoutes mounts every endpoint.  /healthz stays at the root;
// the API lives under /v1.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	if h.Cache == nil {
		h.Cache = passThrough
	}
	if h.RateLimit == nil {
		h.RateLimit = passThrough
	}
	e.GET("/healthz", h.Health)

	v1 := e.Group("/v1")
	RegisterAuth(v1, h)
	RegisterMember(v1, h)
	RegisterAdmin(v1, h)
	RegisterOwner(v1, h)
}

// RegisterAuth mounts login/register outside the gate and /auth/me
// behind authentication only, so a member can still see who they are
// during maintenance.
func RegisterAuth(v1 *echo.Group, h Handlers) {
	g := v1.Group("/auth")
	g.POST("/register", h.Auth.Register, h.RateLimit)
	g.POST("/login", h.Auth.Login, h.RateLimit)
	g.GET("/me", h.Auth.Me, h.Gate.Require(middleware.Policy{SkipMaintenance: true}))
}

// RegisterMember mounts endpoints open to every role.
func RegisterMember(v1 *echo.Group, h Handlers) {
	gate := h.Gate.Require(middleware.Policy{})

	events := v1.Group("/events", gate)
	events.GET("", h.Events.List, h.Cache)
	events.GET("/:id", h.Events.Get, h.Cache)

	bookings := v1.Group("/bookings", gate)
	bookings.POST("", h.Bookings.Create, h.RateLimit)
	bookings.GET("/mine", h.Bookings.Mine)

	notes := v1.Group("/notifications", gate)
	notes.GET("", h.Notifications.List)
	notes.PUT("/read-all", h.Notifications.MarkAllRead)
	notes.PUT("/:id/read", h.Notifications.MarkRead)
}

// RegisterAdmin mounts event management and reporting for admins and
// the owner.
func RegisterAdmin(v1 *echo.Group, h Handlers) {
	g := v1.Group("/admin", h.Gate.Require(middleware.Policy{
		Roles: []model.Role{model.RoleAdmin, model.RoleOwner},
	}))
	g.POST("/events", h.Events.Create)
	g.PUT("/events/:id", h.Events.Update)
	g.DELETE("/events/:id", h.Events.Delete)
	g.GET("/bookings", h.Bookings.ListAll)
	g.POST("/notifications/broadcast", h.Notifications.Broadcast)
	g.GET("/stats", h.Bookings.Stats)
}

// RegisterOwner mounts settings and user management.
func RegisterOwner(v1 *echo.Group, h Handlers) {
	g := v1.Group("/owner", h.Gate.Require(middleware.Policy{
		Roles: []model.Role{model.RoleOwner},
	}))
	g.GET("/settings", h.Owner.GetSettings)
	g.PUT("/settings/:key", h.Owner.UpdateSetting)
	g.POST("/maintenance", h.Owner.SetMaintenance)
	g.GET("/users", h.Owner.ListUsers)
	g.POST("/users", h.Owner.CreateUser)
	g.DELETE("/users/:id", h.Owner.DeleteUser)
	g.PUT("/users/:id/role", h.Owner.UpdateRole)
	g.POST("/admins", h.Owner.CreateAdmin)
}

func passThrough(next echo.HandlerFunc) echo.HandlerFunc { return next }
