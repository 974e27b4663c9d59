package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	iauth "github.com/fmontilla/users-system/internal/auth"
	"github.com/fmontilla/users-system/internal/cache"
	"github.com/fmontilla/users-system/internal/handlers"
	"github.com/fmontilla/users-system/internal/middleware"
	"github.com/fmontilla/users-system/internal/services"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(db *gorm.DB, cacheStore cache.Store, users *services.UserService, authSvc *iauth.AuthService, jwt *iauth.JWTService) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cacheStore == nil {
		return nil, fmt.Errorf("cache store must be provided")
	}
	if users == nil {
		return nil, fmt.Errorf("user service must be provided")
	}
	if authSvc == nil {
		return nil, fmt.Errorf("auth service must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	r.NoRoute(middleware.NotFoundHandler)

	// Unauthenticated surface
	r.GET("/health", handlers.Health(db, cacheStore))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(authSvc)
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
	}

	publicHandler := handlers.NewPublicUserHandler(users)
	public := r.Group("/api/public/users")
	{
		public.GET("", publicHandler.List)
		public.GET("/:id", publicHandler.Get)
	}

	// Protected surface
	requireAuth := middleware.Auth(jwt)

	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)

	userHandler := handlers.NewUserHandler(users)
	usersGroup := api.Group("/users")
	{
		usersGroup.GET("", userHandler.List)
		usersGroup.POST("", userHandler.Create)
		usersGroup.GET("/:id", userHandler.Get)
		usersGroup.PATCH("/:id", userHandler.Update)
		usersGroup.DELETE("/:id", userHandler.Delete)
	}

	return r, nil
}
