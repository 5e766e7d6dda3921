package router

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"airport-ops/internal/core/auth"
	"airport-ops/internal/core/config"
	"airport-ops/internal/core/metrics"
	"airport-ops/internal/service"
)

// Deps HTTP 层依赖
type Deps struct {
	Log      *zap.Logger
	JWT      *auth.JWTer
	Users    *service.UserService
	Flights  *service.FlightService
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Limits   config.Limits
	Location *time.Location // 控制台输入的本地时间按机场时区解析
}

func (d Deps) timeout() time.Duration {
	if d.Limits.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(d.Limits.TimeoutSec) * time.Second
}

// Modules 两个引擎共用的业务模块
func (d Deps) Modules() *Registry {
	reg := &Registry{}
	reg.Register(&userModule{d: d}, &flightModule{d: d})
	return reg
}
