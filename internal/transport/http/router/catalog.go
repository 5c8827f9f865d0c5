package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-gorm-auth/internal/core/server"
	"go-gin-gorm-auth/internal/feature/catalog"
	"go-gin-gorm-auth/internal/transport/http/ez"
	"go-gin-gorm-auth/internal/transport/http/handler"
	"go-gin-gorm-auth/internal/transport/http/middleware"
)

type CatalogDeps struct {
	Log    *zap.Logger
	Server server.Options
	Limits Limits
	DB     *gorm.DB
	// Gate 通常是 client/authz.RemoteGate
	Gate middleware.Gate
}

// NewCatalogEngine /product-service
func NewCatalogEngine(d CatalogDeps) *gin.Engine {
	r := newEngine(d.Log, d.Server, d.Limits)

	reg := &Registry{}
	reg.Register(handler.NewCatalogHandler(d.DB, catalog.NewRepo(d.DB)))
	reg.MountAll(ez.New(&r.RouterGroup, d.Gate))
	return r
}
