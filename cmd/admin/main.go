// 单独启动管理端：只适合 SQL 存储，memory 模式下看不到 cmd/api 里的数据
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
		Level:     cfg.Log.Level,
		JSON:      cfg.Log.JSON,
		AddCaller: true,
		Rotate:    logger.FileRotate(cfg.Log.File),
	})
	defer cleanup()

	if cfg.Store.Driver == "memory" {
		log.Warn("admin started with the memory store; data is not shared with the api process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	srv, err := a.AdminServer()
	if err != nil {
		log.Fatal("admin engine", zap.Error(err))
	}
	log.Info("admin console starting", zap.String("addr", srv.Addr), zap.String("admin_v1", "http://"+srv.Addr+"/admin/v1"))

	if err := server.Serve(ctx, log, 10*time.Second, srv); err != nil {
		log.Error("server exited", zap.Error(err))
		return
	}
	log.Info("admin console stopped gracefully")
}
