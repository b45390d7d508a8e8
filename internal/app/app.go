package app

import (
	"context"
	"os"

	"leavehub/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects infrastructure and registers every module on the router.
// The returned cancel stops the background stats refresher.
func BuildApp(router *gin.Engine) (context.CancelFunc, error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return nil, err
	}
	zap.L().Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return nil, err
	}
	zap.L().Info("redis connection established")

	storageDir := os.Getenv("STORAGE_DIR")
	if storageDir == "" {
		storageDir = "data/storage"
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := registerModules(ctx, router, gormDB, redisClient, storageDir); err != nil {
		cancel()
		return nil, err
	}

	return cancel, nil
}
