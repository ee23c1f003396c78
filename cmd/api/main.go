package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"salescrm/internal/app"
	"salescrm/internal/config"
	"salescrm/internal/database"
	"salescrm/internal/logger"
	"salescrm/internal/modules/conversion"
	"salescrm/internal/modules/session"
	"salescrm/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog, err := logger.Init(cfg.Log)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zlog.Sync() }()

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	gdb, err := database.Connect(cfg.DatabaseURL, zlog)
	if err != nil {
		zlog.Fatal("database connect failed", zap.Error(err))
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(gdb, repository.Models()...); err != nil {
			zlog.Fatal("migration failed", zap.Error(err))
		}
	}

	deps := app.Deps{
		Config: cfg,
		DB:     repository.NewDB(gdb),
		Log:    zlog,
	}
	if cfg.RedisAddr != "" {
		rdb, err := database.NewRedisClient(database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			zlog.Fatal("redis connect failed", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		deps.Sessions = session.NewRedisStore(rdb)
		deps.Locker = conversion.NewRedisLocker(rdb)
		zlog.Info("sessions and conversion locks in redis", zap.String("addr", cfg.RedisAddr))
	} else {
		deps.Sessions = session.NewMemoryStore()
		deps.Locker = conversion.NewLocalLocker()
		zlog.Warn("REDIS_ADDR not set, sessions and conversion locks are in-process")
	}

	a := app.New(deps)
	defer a.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zlog.Info("api listening", zap.String("addr", cfg.HTTPAddr), zap.String("conversion_mode", cfg.ConversionMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
