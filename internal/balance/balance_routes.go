package balance

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
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetMine)
		balances.GET("/:employeeId", middleware.RBACAuthorize(rbacService, "balance", "read_all"), handler.GetByEmployee)
	}
}
