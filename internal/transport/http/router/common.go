package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-gorm-auth/internal/core/config"
	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/core/server"
	mdw "go-gin-gorm-auth/internal/transport/http/middleware"
	"go-gin-gorm-auth/internal/transport/http/response"
)

// Limits 中间件参数，零值字段取默认
type Limits struct {
	RPS          float64
	Burst        int
	PerIPRPS     float64
	PerIPBurst   int
	Concurrency  int64
	MaxBodyBytes int64
	Timeout      time.Duration
}

func LimitsFrom(c config.Limits) Limits {
	return Limits{
		RPS:          c.RPS,
		Burst:        c.Burst,
		PerIPRPS:     c.PerIPRPS,
		PerIPBurst:   c.PerIPBurst,
		Concurrency:  c.Concurrency,
		MaxBodyBytes: c.MaxBodyBytes,
		Timeout:      time.Duration(c.TimeoutSec) * time.Second,
	}
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS = 200
	}
	if l.Burst <= 0 {
		l.Burst = 400
	}
	if l.PerIPRPS <= 0 {
		l.PerIPRPS = 20
	}
	if l.PerIPBurst <= 0 {
		l.PerIPBurst = 40
	}
	if l.Concurrency <= 0 {
		l.Concurrency = 256
	}
	if l.MaxBodyBytes <= 0 {
		l.MaxBodyBytes = 16 << 20
	}
	if l.Timeout <= 0 {
		l.Timeout = 15 * time.Second
	}
	return l
}

// newEngine 两个服务共用的中间件栈 + /health /metrics + 404 信封
func newEngine(l *zap.Logger, srv server.Options, lim Limits) *gin.Engine {
	lim = lim.withDefaults()
	r := server.NewRouter(l, srv)

	r.Use(
		mdw.RequestID(),
		mdw.AccessLog(l),
		mdw.Metrics(),
		mdw.SimpleRecovery(l),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst),
		mdw.ConcurrencyLimit(lim.Concurrency, time.Second),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(lim.Timeout),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.NoRoute(func(c *gin.Context) { response.Abort(c, errs.New(errs.RouteNotFound)) })
	return r
}
