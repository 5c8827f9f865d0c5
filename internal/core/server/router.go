package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-gorm-auth/internal/core/logger"
)

type Options struct {
	Name         string
	Mode         string
	AllowOrigins []string // 为空时放开所有来源（不带凭证）
}

func NewRouter(l *zap.Logger, opt Options) *gin.Engine {
	if opt.Mode != "" {
		gin.SetMode(opt.Mode)
	}
	// gin 自己的调试输出也走 zap
	gin.DefaultWriter = logger.ToWriter(l, zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(l, zapcore.ErrorLevel)
	r := gin.New()
	r.Use(ginzap.RecoveryWithZap(l, true))
	if len(opt.AllowOrigins) == 0 {
		r.Use(cors.Default())
	} else {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = opt.AllowOrigins
		cfg.AllowCredentials = true // cookie 里带 token
		cfg.AddAllowHeaders("Authorization", "auth-type", "X-Request-ID")
		r.Use(cors.New(cfg))
	}
	return r
}

func StartHTTP(srv *http.Server, l *zap.Logger) error {
	l.Info("http starting", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}

func BuildServer(addr string, handler http.Handler, rt, wt, it time.Duration) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    rt,
		WriteTimeout:   wt,
		IdleTimeout:    it,
		MaxHeaderBytes: 1 << 20, // 1MB
	}
}

func Addr(host string, port int) string { return fmt.Sprintf("%s:%d", host, port) }

// Run 启动并阻塞到 SIGINT/SIGTERM，然后优雅关闭
func Run(srv *http.Server, l *zap.Logger, grace time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := StartHTTP(srv, l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case sig := <-quit:
		l.Info("shutting down", zap.String("signal", sig.String()))
	}

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return srv.Shutdown(ctx)
}
