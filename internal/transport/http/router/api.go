package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/server"
	"go-gin-gorm-auth/internal/service"
	"go-gin-gorm-auth/internal/transport/http/ez"
	"go-gin-gorm-auth/internal/transport/http/handler"
)

// APIDeps 认证服务需要的全部依赖
type APIDeps struct {
	Log     *zap.Logger
	Server  server.Options
	Limits  Limits
	Cookies handler.CookieConfig

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Authn *service.AuthnService
	Authz *service.AuthzService
	Roles *service.RoleService
	Users *service.UserService
}

// NewAPIEngine /authn /authz /role-service /user-service
func NewAPIEngine(d APIDeps) *gin.Engine {
	r := newEngine(d.Log, d.Server, d.Limits)

	reg := &Registry{}
	reg.Register(
		handler.NewAuthnHandler(d.Authn, handler.NewCookies(d.Cookies), d.AccessTTL, d.RefreshTTL),
		handler.NewAuthzHandler(d.Authz, d.Authn),
		handler.NewRoleHandler(d.Roles),
		handler.NewUserHandler(d.Users),
	)
	// 权限闸门就是本进程的 AuthzService
	reg.MountAll(ez.New(&r.RouterGroup, d.Authz))
	return r
}
