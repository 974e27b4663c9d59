package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fmontilla/users-system/internal/cache"
	"github.com/fmontilla/users-system/pkg/response"
)

// Health reports whether the database and cache backend are reachable.
// The cache check writes a short-lived sentinel key.
func Health(db *gorm.DB, cacheStore cache.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := requestContext(c)

		dbStatus := "ok"
		if sqlDB, err := db.DB(); err != nil {
			dbStatus = "error"
		} else if err := sqlDB.PingContext(ctx); err != nil {
			dbStatus = "error"
		}

		cacheStatus := "ok"
		if err := cacheStore.Set(ctx, "health:check", "ok", 5*time.Second); err != nil {
			cacheStatus = "error"
		}

		status := http.StatusOK
		overall := "ok"
		if dbStatus != "ok" || cacheStatus != "ok" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		response.Success(c, status, gin.H{
			"status":   overall,
			"database": dbStatus,
			"cache":    cacheStatus,
		})
	}
}
