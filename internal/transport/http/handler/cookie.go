package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-auth/internal/transport/http/middleware"
)

type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// Cookies 登录态 cookie，一律 HttpOnly
type Cookies struct {
	cfg CookieConfig
}

func NewCookies(cfg CookieConfig) *Cookies {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = http.SameSiteLaxMode
	}
	return &Cookies{cfg: cfg}
}

func (h *Cookies) SetAccess(c *gin.Context, token string, ttl time.Duration) {
	h.set(c, middleware.CookieAccessToken, token, int(ttl.Seconds()))
}

func (h *Cookies) SetRefresh(c *gin.Context, token string, ttl time.Duration) {
	h.set(c, middleware.CookieRefreshToken, token, int(ttl.Seconds()))
}

func (h *Cookies) Clear(c *gin.Context) {
	h.set(c, middleware.CookieAccessToken, "", -1)
	h.set(c, middleware.CookieRefreshToken, "", -1)
}

func (h *Cookies) Refresh(c *gin.Context) string {
	v, err := c.Cookie(middleware.CookieRefreshToken)
	if err != nil {
		return ""
	}
	return v
}

func (h *Cookies) set(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(h.cfg.SameSite)
	c.SetCookie(name, value, maxAge, h.cfg.Path, h.cfg.Domain, h.cfg.Secure, true)
}
