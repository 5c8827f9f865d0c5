package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	// CookieAccessToken 浏览器端登录后 access token 存在此 cookie
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
)

// Gate 鉴权 + 鉴权限：返回调用者 user id
type Gate interface {
	Authorize(ctx context.Context, accessToken, code string) (string, error)
}

// GateFunc 适配普通函数
type GateFunc func(ctx context.Context, accessToken, code string) (string, error)

func (f GateFunc) Authorize(ctx context.Context, accessToken, code string) (string, error) {
	return f(ctx, accessToken, code)
}

// BearerToken Authorization: Bearer xxx 优先，其次 access_token cookie
func BearerToken(c *gin.Context) string {
	ah := c.GetHeader("Authorization")
	if len(ah) > 7 && strings.EqualFold(ah[:7], "Bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	if v, err := c.Cookie(CookieAccessToken); err == nil {
		return v
	}
	return ""
}

// Authorize 要求调用者拥有 code 权限，通过后 c.Set(KeyUserID, uid)
func Authorize(gate Gate, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Abort(c, errs.New(errs.UserNotLoggedIn))
			return
		}
		uid, err := gate.Authorize(c.Request.Context(), token, code)
		if err != nil {
			response.Abort(c, err)
			return
		}
		c.Set(KeyUserID, uid)
		c.Next()
	}
}

// UserID 取 Authorize 写入的调用者 id
func UserID(c *gin.Context) string { return c.GetString(KeyUserID) }
