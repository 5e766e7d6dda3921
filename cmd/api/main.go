package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"airport-ops/internal/app"
	"airport-ops/internal/core/config"
	"airport-ops/internal/core/logger"
	"airport-ops/internal/core/server"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, cleanup := logger.New(logger.Options{
		Level:       cfg.Log.Level,
		JSON:        cfg.Log.JSON,
		AddCaller:   true,
		Development: cfg.App.Env == "dev",
		Rotate:      logger.FileRotate(cfg.Log.File),
	})
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	api, err := a.APIServer()
	if err != nil {
		log.Fatal("api engine", zap.Error(err))
	}
	// 内存存储时管理端必须和用户端同进程，否则看不到同一份数据
	admin, err := a.AdminServer()
	if err != nil {
		log.Fatal("admin engine", zap.Error(err))
	}

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("airport api starting",
		zap.String("env", cfg.App.Env),
		zap.String("store", cfg.Store.Driver),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
		zap.String("admin", admin.Addr),
	)

	if err := server.Serve(ctx, log, 10*time.Second, api, admin); err != nil {
		log.Error("server exited", zap.Error(err))
		return
	}
	log.Info("airport api stopped gracefully")
}
