package department

import (
	"leavehub/internal/middleware"
	"leavehub/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService rbac.Service,
) {
	departments := r.Group("/departments")
	departments.Use(middleware.AuthMiddleware())
	{
		departments.GET("", middleware.RBACAuthorize(rbacService, "department", "read"), h.GetAll)
		departments.GET("/:id", middleware.RBACAuthorize(rbacService, "department", "read"), h.GetById)
		departments.POST("", middleware.RBACAuthorize(rbacService, "department", "manage"), h.Create)
		departments.PUT("/:id", middleware.RBACAuthorize(rbacService, "department", "manage"), h.Update)
		departments.DELETE("/:id", middleware.RBACAuthorize(rbacService, "department", "manage"), h.Delete)
	}
}
