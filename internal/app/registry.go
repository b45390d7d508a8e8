package app

import (
	"context"

	"leavehub/internal/auth"
	"leavehub/internal/balance"
	"leavehub/internal/companydoc"
	"leavehub/internal/department"
	"leavehub/internal/document"
	"leavehub/internal/employee"
	"leavehub/internal/leave"
	"leavehub/internal/leavetype"
	"leavehub/internal/messaging/kafka"
	"leavehub/internal/middleware"
	"leavehub/internal/notification"
	"leavehub/internal/rbac"
	"leavehub/internal/stats"
	"leavehub/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	ctx context.Context,
	router *gin.Engine,
	gormDB *gorm.DB,
	rdb *redis.Client,
	storageDir string,
) error {
	router.Use(middleware.RequestID(), middleware.ContextLogger(zap.L()))

	// --- Infrastructure ---
	store, err := storage.NewDiskStore(storageDir)
	if err != nil {
		return err
	}

	rbacService, err := rbac.NewService()
	if err != nil {
		return err
	}

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(gormDB)
	companydocRepo := companydoc.NewRepository(gormDB)
	departmentRepo := department.NewRepository(gormDB)
	documentRepo := document.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	leavetypeRepo := leavetype.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(gormDB)
	statsRepo := stats.NewRepository(gormDB)

	// --- Services ---
	employeeService := employee.NewService(gormDB, employeeRepo)
	balanceService := balance.NewService(gormDB, balanceRepo, employeeService)
	departmentService := department.NewService(gormDB, departmentRepo)
	leavetypeService := leavetype.NewService(gormDB, leavetypeRepo)
	statsService := stats.NewService(statsRepo, rdb)
	leaveService := leave.NewService(
		gormDB, leaveRepo, leavetypeRepo, balanceRepo,
		employeeService, outboxRepo, statsService,
	)
	documentService := document.NewService(gormDB, documentRepo, leaveRepo, employeeService, store)
	companydocService := companydoc.NewService(gormDB, companydocRepo, employeeService, store, outboxRepo)
	notificationService := notification.NewService(notificationRepo, employeeRepo)
	authService := auth.NewService(gormDB, authRepo, employeeRepo, leavetypeRepo, balanceService)

	go statsService.RunRefresher(ctx)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService)
	balanceHandler := balance.NewHandler(balanceService)
	companydocHandler := companydoc.NewHandler(companydocService)
	departmentHandler := department.NewHandler(departmentService)
	documentHandler := document.NewHandler(documentService)
	employeeHandler := employee.NewHandler(employeeService)
	leaveHandler := leave.NewHandler(leaveService)
	leavetypeHandler := leavetype.NewHandler(leavetypeService)
	notificationHandler := notification.NewHandler(notificationService)
	statsHandler := stats.NewHandler(statsService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler)
		balance.RegisterRoutes(api, balanceHandler, rbacService)
		companydoc.RegisterRoutes(api, companydocHandler, rbacService, rdb)
		department.RegisterRoutes(api, departmentHandler, rbacService)
		document.RegisterRoutes(api, documentHandler, rbacService)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		leave.RegisterRoutes(api, leaveHandler, rbacService, rdb)
		leavetype.RegisterRoutes(api, leavetypeHandler, rbacService)
		notification.RegisterRoutes(api, notificationHandler, rbacService)
		stats.RegisterRoutes(api, statsHandler, rbacService)
	}

	return nil
}
