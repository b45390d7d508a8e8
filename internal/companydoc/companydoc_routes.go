package companydoc

import (
	"leavehub/internal/middleware"
	"leavehub/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
) {
	docs := r.Group("/company-documents")
	docs.Use(middleware.AuthMiddleware())
	{
		docs.POST("", middleware.RBACAuthorize(rbacService, "company_document", "publish"), middleware.Idempotency(rdb), handler.Publish)
		docs.POST("/:id/notifiers", middleware.RBACAuthorize(rbacService, "company_document", "publish"), handler.AddNotifiers)
		docs.GET("", middleware.RBACAuthorize(rbacService, "company_document", "read"), handler.GetAll)
		docs.GET("/:id", middleware.RBACAuthorize(rbacService, "company_document", "read"), handler.Download)
		docs.DELETE("/:id", middleware.RBACAuthorize(rbacService, "company_document", "publish"), handler.Delete)
	}
}
