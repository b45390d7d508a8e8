package stats

import (
	"leavehub/internal/middleware"
	"leavehub/internal/rbac"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	// Aggregates are cached but a recompute is expensive, so this group
	// carries a per-user limit on top of authentication.
	reports := r.Group("/reports")
	reports.Use(middleware.AuthMiddleware(), middleware.RateLimitByUser(rate.Limit(2), 5))
	{
		reports.GET("/summary", middleware.RBACAuthorize(rbacService, "report", "read"), handler.GetSummary)
	}
}
