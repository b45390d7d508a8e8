package document

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
	// Upload and listing hang off the parent leave; direct access by
	// document id covers download and delete.
	leaves := r.Group("/leaves")
	leaves.Use(middleware.AuthMiddleware())
	{
		leaves.POST("/:id/documents", middleware.RBACAuthorize(rbacService, "document", "create"), handler.Upload)
		leaves.GET("/:id/documents", middleware.RBACAuthorize(rbacService, "document", "read"), handler.ListByLeave)
	}

	documents := r.Group("/documents")
	documents.Use(middleware.AuthMiddleware())
	{
		documents.GET("/:id", middleware.RBACAuthorize(rbacService, "document", "read"), handler.Download)
		documents.DELETE("/:id", middleware.RBACAuthorize(rbacService, "document", "delete"), handler.Delete)
	}
}
