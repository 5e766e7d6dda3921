// Package app 组装根：配置 -> 存储 -> 服务 -> 两个 HTTP 引擎
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"airport-ops/internal/core/auth"
	"airport-ops/internal/core/cache"
	"airport-ops/internal/core/config"
	"airport-ops/internal/core/database"
	"airport-ops/internal/core/metrics"
	"airport-ops/internal/core/server"
	"airport-ops/internal/domain"
	"airport-ops/internal/repo"
	"airport-ops/internal/service"
	"airport-ops/internal/transport/http/router"
)

type App struct {
	Cfg     *config.Config
	Deps    router.Deps
	Modules *router.Registry

	closers []func() error
}

// New 按配置构建全部依赖，用完调用 Close
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{Cfg: cfg}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	users, flights, err := a.openStores(cfg, l)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	loc, err := time.LoadLocation(cfg.Airport.Timezone)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("airport timezone: %w", err)
	}

	a.Deps = router.Deps{
		Log: l,
		JWT: auth.NewJWTer(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL()),
		Users: service.NewUserService(users, service.BcryptHasher{Cost: cfg.Security.BcryptCost},
			service.UserOptions{NumericStaffID: cfg.Security.NumericStaffID}, l, m),
		Flights: service.NewFlightService(flights, service.FlightOptions{
			Board:    a.openBoard(ctx, cfg, l),
			BoardTTL: time.Duration(cfg.Redis.BoardTTLSec) * time.Second,
		}, l, m),
		Metrics:  m,
		Gatherer: reg,
		Limits:   cfg.Limits,
		Location: loc,
	}
	a.Modules = a.Deps.Modules()
	return a, nil
}

func (a *App) openStores(cfg *config.Config, l *zap.Logger) (domain.UserRepository, domain.FlightRepository, error) {
	if cfg.Store.Driver == "memory" {
		l.Info("store: memory (state is lost on restart)")
		return repo.NewUserMemory(), repo.NewFlightMemory(), nil
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.Store.Driver,
		DSN:                cfg.Store.DSN,
		Username:           cfg.Store.Username,
		Password:           cfg.Store.Password,
		MaxOpenConns:       cfg.Store.MaxOpenConns,
		MaxIdleConns:       cfg.Store.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.Store.ConnMaxLifetimeMin,
		LogLevel:           cfg.Store.LogLevel,
	}, l)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", cfg.Store.Driver, err)
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}
	l.Info("database connected", zap.String("driver", cfg.Store.Driver))

	// 自动迁移
	if cfg.Store.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("automigrate: %w", err)
		}
		l.Info("automigrate done")
	}
	return repo.NewUserRepo(db), repo.NewFlightRepo(db), nil
}

// openBoard 未配置或连不上 redis 时返回 nil（不缓存）
func (a *App) openBoard(ctx context.Context, cfg *config.Config, l *zap.Logger) cache.Store {
	if cfg.Redis.Addr == "" {
		return nil
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.App.Name+":")
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Ping(pctx); err != nil {
		l.Warn("redis unreachable, flight board cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = c.Close()
		return nil
	}
	a.closers = append(a.closers, c.Close)
	l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return c
}

// APIServer 用户端监听
func (a *App) APIServer() (*http.Server, error) {
	r, err := router.NewAPIEngine(a.Deps, a.Modules)
	if err != nil {
		return nil, err
	}
	h := a.Cfg.App.HTTP
	return server.BuildServer(server.Addr(h.Host, h.Port), r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
		a.Deps.Log,
	), nil
}

// AdminServer 管理端监听（超时沿用用户端配置）
func (a *App) AdminServer() (*http.Server, error) {
	r, err := router.NewAdminEngine(a.Deps, a.Modules)
	if err != nil {
		return nil, err
	}
	h := a.Cfg.App.HTTP
	return server.BuildServer(server.Addr(a.Cfg.App.Admin.Host, a.Cfg.App.Admin.Port), r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
		a.Deps.Log,
	), nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
