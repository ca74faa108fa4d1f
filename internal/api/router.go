package api

import (
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/99minutos/identity-api/docs"
	"github.com/99minutos/identity-api/internal/api/handler"
	"github.com/99minutos/identity-api/internal/api/middleware"
	"github.com/99minutos/identity-api/internal/core/domain"
	"github.com/99minutos/identity-api/internal/core/policy"
	"github.com/99minutos/identity-api/internal/core/ports"
)

// Deps is everything the HTTP layer needs. Storage and transport choices are
// made by the caller.
type Deps struct {
	Log          zerolog.Logger
	Tokens       ports.TokenService
	Auth         ports.AuthService
	Identities   ports.IdentityService
	TokenTTL     time.Duration
	AuthHeader   string
	HealthChecks map[string]handler.DependencyCheck
	// Registerer receives the HTTP request metrics. Defaults to the global registry.
	Registerer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)
	e.Validator = handler.NewValidator()

	registerer := d.Registerer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.BodyLimit("1M"))
	e.Use(middleware.RequestLogger(d.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "identity",
		Registerer: registerer,
		Skipper:    skipInfraPaths,
	}))
	e.Use(middleware.Auth(d.Tokens, d.Identities, d.Log, d.AuthHeader))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(d.Auth, d.Identities, d.TokenTTL)
	userHandler := handler.NewUserHandler(d.Identities)
	roleHandler := handler.NewRoleHandler(d.Identities)
	healthHandler := handler.NewHealthHandler(d.HealthChecks)

	permitAll := middleware.Authorize(policy.AlwaysAllow())
	authenticated := middleware.Authorize(policy.Authenticated())
	hasUser := middleware.RequireRole(domain.RoleUser)
	hasAdmin := middleware.RequireRole(domain.RoleAdmin)
	selfOrAdmin := middleware.Authorize(policy.RequireSelfOrRole("username", domain.RoleAdmin))

	// --- Auth routes ---
	auth := e.Group("/api/auth")
	auth.POST("/login", authHandler.Login, permitAll)
	auth.POST("/logout", authHandler.Logout, permitAll)
	auth.GET("/me", authHandler.Me, authenticated)

	// --- Role routes ---
	roles := e.Group("/api/roles")
	roles.GET("/profile", roleHandler.Profile, authenticated)
	roles.GET("/user/data", roleHandler.UserData, hasUser)
	roles.GET("/admin/data", roleHandler.AdminData, hasAdmin)
	roles.GET("", roleHandler.List, hasAdmin)
	roles.GET("/all", roleHandler.List, hasAdmin)
	roles.POST("", roleHandler.Create, hasAdmin)
	roles.POST("/create", roleHandler.Create, hasAdmin)
	roles.PUT("/:roleName", roleHandler.Update, hasAdmin)
	roles.DELETE("/:roleName", roleHandler.Delete, hasAdmin)
	roles.GET("/:roleName/users", roleHandler.Users, hasAdmin)
	roles.POST("/user/:username/add-role", roleHandler.AddToUser, hasAdmin)
	roles.DELETE("/user/:username/remove-role", roleHandler.RemoveFromUser, hasAdmin)

	// --- User routes ---
	users := e.Group("/api/users")
	users.GET("", userHandler.List, hasAdmin)
	users.GET("/all", userHandler.List, hasAdmin)
	users.POST("", userHandler.Create, hasAdmin)
	users.POST("/create", userHandler.Create, hasAdmin)
	users.GET("/:username", userHandler.Get, selfOrAdmin)
	users.PUT("/:username", userHandler.Update, selfOrAdmin)
	users.DELETE("/:username", userHandler.Delete, hasAdmin)
	users.PUT("/:username/change-password", userHandler.ChangePassword, selfOrAdmin)

	// --- Infrastructure (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func skipInfraPaths(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}
