// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/sift/api/controller"
	"github.com/dev-mohitbeniwal/sift/api/middleware"
)

func SetupRouter(
	searchController *controller.SearchController,
	auditController *controller.AuditController,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))

	api := router.Group("/api/v1")

	searchController.RegisterRoutes(api)
	auditController.RegisterRoutes(api)

	return router
}
