package seed

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"libris-backend/internal/platform/apierr"
)

// RegisterRoutes exposes seeding to admins so a fresh environment can
// be populated without shell access.
func RegisterRoutes(admin gin.IRoutes, seeder *Seeder) {
	admin.POST("/admin/seed", func(c *gin.Context) {
		if err := seeder.Run(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, apierr.Body(apierr.CodeStorageFailure, err.Error()))
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "seeded"})
	})
}
