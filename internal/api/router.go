package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/secureid/identity-api/docs"
	"github.com/secureid/identity-api/internal/api/handler"
	"github.com/secureid/identity-api/internal/api/middleware"
	"github.com/secureid/identity-api/internal/core/domain"
	"github.com/secureid/identity-api/internal/core/ports"
	"github.com/secureid/identity-api/internal/core/token"
	"github.com/secureid/identity-api/internal/infrastructure/config"
)

// Deps carries the constructed dependencies the router wires into routes.
type Deps struct {
	Config       *config.Config
	Mongo        *mongo.Database
	Redis        *redis.Client
	Counters     ports.CounterStore
	Authority    *token.Authority
	AuthService  ports.AuthService
	UserService  ports.UserService
	AdminService ports.AdminService
	AuditService ports.AuditService
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("identity"))
	e.Use(middleware.RateLimit(d.Counters, middleware.RateLimitRule{
		Class:   "general",
		Window:  d.Config.RateLimit.GeneralWindow,
		Max:     d.Config.RateLimit.GeneralMax,
		Message: "Too many requests from this IP, please try again later.",
	}, d.Log))

	resetLimiter := middleware.RateLimit(d.Counters, middleware.RateLimitRule{
		Class:   "password_reset",
		Window:  d.Config.RateLimit.ResetWindow,
		Max:     d.Config.RateLimit.ResetMax,
		Message: "Too many reset password requests from this IP, please try again later.",
	}, d.Log)

	authRequired := middleware.Auth(d.Authority)
	userOrAdmin := middleware.RequireRole(domain.RoleUser, domain.RoleAdmin)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Handlers ---
	secureCookies := d.Config.Env != "development"
	authHandler := handler.NewAuthHandler(d.AuthService, d.Authority.SessionTTL(), secureCookies)
	userHandler := handler.NewUserHandler(d.UserService)
	adminHandler := handler.NewAdminHandler(d.AdminService)
	auditHandler := handler.NewAuditHandler(d.AuditService)

	// --- Auth routes (unauthenticated) ---
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/verify-email", authHandler.VerifyEmail)
	auth.POST("/request-password-reset", authHandler.RequestPasswordReset, resetLimiter)
	auth.POST("/reset-password", authHandler.ResetPassword)

	// --- Self-service routes ---
	user := e.Group("/user", authRequired, userOrAdmin)
	user.GET("/profile", userHandler.Profile)
	user.PUT("/profile", userHandler.UpdateProfile)
	user.PUT("/profile/picture", userHandler.UpdateAvatar)
	user.POST("/logout", authHandler.Logout)

	e.GET("/session", userHandler.Session, authRequired, userOrAdmin)

	// --- Admin routes ---
	admin := e.Group("/admin", authRequired, adminOnly)
	admin.POST("/users", adminHandler.CreateUser)
	admin.GET("/users", adminHandler.ListUsers,
		middleware.AuditAccess(d.AuditService, domain.ActionViewUsers))
	admin.PUT("/users/:id", adminHandler.UpdateUser)
	admin.DELETE("/users/:id", adminHandler.DeleteUser)

	e.GET("/audit", auditHandler.Query, authRequired, adminOnly,
		middleware.AuditAccess(d.AuditService, domain.ActionViewAuditLogs))

	// --- Operational endpoints ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Mongo, d.Redis)

	e.GET("/health", healthHandler.Liveness)              // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)    // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
