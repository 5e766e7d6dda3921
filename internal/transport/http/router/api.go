package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"airport-ops/internal/core/server"
	"airport-ops/internal/transport/http/ez"
	mdw "airport-ops/internal/transport/http/middleware"
)

func common(d Deps) []gin.HandlerFunc {
	rps := rate.Inf
	if d.Limits.RPS > 0 {
		rps = rate.Limit(d.Limits.RPS)
	}
	return []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.RateLimit(rps, max(1, d.Limits.Burst)),
		mdw.ConcurrencyLimit(max(1, d.Limits.Concurrency)),
		mdw.MaxBodyBytes(max(1024, d.Limits.BodyBytes)),
		mdw.Timeout(d.timeout()),
		mdw.Metrics(d.Metrics),
		mdw.AccessLog(d.Log),
	}
}

func mountOps(r *gin.Engine, d Deps) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
}

// NewAPIEngine 用户端：注册、登录、个人信息、航班看板
func NewAPIEngine(d Deps, reg *Registry) (*gin.Engine, error) {
	if err := ez.SetupBinding(); err != nil {
		return nil, err
	}
	r := server.NewRouter(d.Log)
	r.Use(common(d)...)
	mountOps(r, d)

	reg.MountAPI(r.Group("/api/v1"))
	return r, nil
}
