package employee

import (
	"leavehub/internal/middleware"
	"leavehub/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	employees := r.Group("/employees")
	employees.Use(middleware.AuthMiddleware())
	{
		employees.GET("", middleware.RBACAuthorize(rbacService, "employee", "read_all"), handler.GetAll)
		employees.GET("/:id", middleware.RBACAuthorize(rbacService, "employee", "read"), handler.GetById)
		employees.PUT("/:id", middleware.RBACAuthorize(rbacService, "employee", "manage"), handler.Update)
		employees.POST("/:id/deactivate", middleware.RBACAuthorize(rbacService, "employee", "manage"), handler.Deactivate)
	}

	// Self-service profile edit lives outside /employees/:id so employees
	// cannot touch other rows through it.
	profile := r.Group("/profile")
	profile.Use(middleware.AuthMiddleware())
	{
		profile.PUT("", middleware.RBACAuthorize(rbacService, "employee", "read"), handler.UpdateSelf)
	}
}
