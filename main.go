package main

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bizcontrol/api"
	"bizcontrol/internal/config"
	"bizcontrol/internal/retail"
	"bizcontrol/internal/storage"
)

func main() {
	configPath := ""
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Errorf("error loading configuration: %v", err))
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var store retail.SnapshotStore
	switch cfg.Storage.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		store = storage.NewRedisStore(client)
	case "memory":
		store = storage.NewMemoryStore()
	default:
		store = storage.NewFileStore(cfg.Storage.Path)
	}

	engine, err := retail.NewEngine(store, cfg.Policy, logger)
	if err != nil {
		panic(fmt.Errorf("error initializing engine: %v", err))
	}

	r := gin.Default()
	api.InitRoutes(r, engine, logger, cfg.Server.Metrics)

	logger.Info("server starting",
		zap.String("addr", cfg.Server.Addr),
		zap.String("storage", cfg.Storage.Backend),
	)
	if err := r.Run(cfg.Server.Addr); err != nil {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}
}
