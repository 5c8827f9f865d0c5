package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/transport/http/response"
)

// ConcurrencyLimit 限制同时处理的请求数（保护 DB 下游）；最多排队 wait
func ConcurrencyLimit(max int64, wait time.Duration) gin.HandlerFunc {
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), wait)
		err := sem.Acquire(ctx, 1)
		cancel()
		if err != nil {
			response.Abort(c, errs.New(errs.ServerBusy))
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
