package router

import (
	"github.com/gin-gonic/gin"

	"airport-ops/internal/core/server"
	"airport-ops/internal/transport/http/ez"
)

// NewAdminEngine 管理端（仅内网端口：经理注册不鉴权）
func NewAdminEngine(d Deps, reg *Registry) (*gin.Engine, error) {
	if err := ez.SetupBinding(); err != nil {
		return nil, err
	}
	r := server.NewRouter(d.Log)
	r.Use(common(d)...)
	mountOps(r, d)

	reg.MountAdmin(r.Group("/admin/v1"))
	return r, nil
}
