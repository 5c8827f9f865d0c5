package main

import (
	"context"
	"os"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-gorm-auth/internal/client/authz"
	"go-gin-gorm-auth/internal/core/cache"
	"go-gin-gorm-auth/internal/core/config"
	"go-gin-gorm-auth/internal/core/database"
	"go-gin-gorm-auth/internal/core/logger"
	"go-gin-gorm-auth/internal/core/server"
	"go-gin-gorm-auth/internal/feature/catalog"
	"go-gin-gorm-auth/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	path := os.Getenv("CATALOG_CONFIG_PATH")
	if path == "" {
		path = "./configs/catalog.local.yaml"
	}
	cfg := config.Load(path)

	log, cleanup := logger.Build(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: !cfg.Log.JSON,
		Rotate: logger.FileRotate{
			Enable:     cfg.Log.File.Enable,
			Filename:   cfg.Log.File.Filename,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	if err := cfg.ValidateCatalog(); err != nil {
		log.Fatal("config invalid", zap.Error(err))
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Log:                log,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(catalog.Models()...); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 鉴权决策缓存（可选）；redis 不可用时每次都问 auth 服务
	var c *cache.Cache
	if cfg.Redis.Addr != "" {
		c = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		c.Prefix = "catalog:"
		defer func() { _ = c.Close() }()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := c.Ping(ctx); err != nil {
			log.Warn("redis ping failed, authz cache degraded", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
	}
	gate := authz.NewRemoteGate(
		cfg.Authz.BaseURL,
		time.Duration(cfg.Authz.TimeoutSec)*time.Second,
		c,
		time.Duration(cfg.Authz.CacheTTLSec)*time.Second,
		log,
	)

	r := router.NewCatalogEngine(router.CatalogDeps{
		Log:    log,
		Server: server.Options{Name: "catalog", Mode: cfg.App.GinMode(), AllowOrigins: cfg.App.AllowOrigins},
		Limits: router.LimitsFrom(cfg.Limits),
		DB:     db,
		Gate:   gate,
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	log.Info("catalog api starting", zap.String("addr", addr), zap.String("authz", cfg.Authz.BaseURL))

	if err := server.Run(srv, log, 10*time.Second); err != nil {
		log.Error("catalog api stopped with error", zap.Error(err))
		return
	}
	log.Info("catalog api stopped gracefully")
}
