package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/service"
	"go-gin-gorm-auth/internal/transport/http/ez"
	"go-gin-gorm-auth/internal/transport/http/middleware"
	"go-gin-gorm-auth/internal/transport/http/response"
)

type Authn interface {
	Register(ctx context.Context, in service.CreateUserInput) (*domain.UserDetail, error)
	Login(ctx context.Context, authType, username, password string) (*service.TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
	Refresh(ctx context.Context, refreshToken string) (string, error)
	CheckSession(ctx context.Context, accessToken string) (service.SessionStatus, error)
}

type AuthnHandler struct {
	svc        Authn
	cookies    *Cookies
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthnHandler(svc Authn, cookies *Cookies, accessTTL, refreshTTL time.Duration) *AuthnHandler {
	return &AuthnHandler{svc: svc, cookies: cookies, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

type loginIn struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshIn struct {
	RefreshToken string `json:"refresh_token"`
}

type accessOut struct {
	AccessToken string `json:"access_token"`
}

type sessionOut struct {
	Status string `json:"status"`
}

// Mount /authn 下全部接口都是公开的
func (h *AuthnHandler) Mount(e ez.EZ) {
	g := e.Group("/authn")

	ez.RegisterAction(g, ez.Action[service.CreateUserInput, string]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.CreateUserInput) (string, error) {
			if _, err := h.svc.Register(c.Request.Context(), *in); err != nil {
				return "", err
			}
			return "User is created.", nil
		},
	})

	ez.RegisterAction(g, ez.Action[loginIn, *service.TokenPair]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (*service.TokenPair, error) {
			pair, err := h.svc.Login(c.Request.Context(), c.GetHeader("auth-type"), in.Username, in.Password)
			if err != nil {
				return nil, err
			}
			h.cookies.SetAccess(c, pair.AccessToken, h.accessTTL)
			h.cookies.SetRefresh(c, pair.RefreshToken, h.refreshTTL)
			return pair, nil
		},
	})

	ez.RegisterAction(g, ez.Action[struct{}, string]{
		Method: http.MethodPost,
		Path:   "/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			token := middleware.BearerToken(c)
			if token == "" {
				return "", errs.New(errs.AccessTokenNotFound)
			}
			if err := h.svc.Logout(c.Request.Context(), token); err != nil {
				return "", err
			}
			h.cookies.Clear(c)
			return "User is logged out.", nil
		},
	})

	// body 里没有就读 refresh_token cookie
	g.Router().POST("/get-access-token", func(c *gin.Context) {
		var in refreshIn
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&in); err != nil {
				response.Abort(c, ez.BindError(err, nil))
				return
			}
		}
		if in.RefreshToken == "" {
			in.RefreshToken = h.cookies.Refresh(c)
		}
		access, err := h.svc.Refresh(c.Request.Context(), in.RefreshToken)
		if err != nil {
			response.Abort(c, err)
			return
		}
		h.cookies.SetAccess(c, access, h.accessTTL)
		response.JSON(c, accessOut{AccessToken: access})
	})

	// 状态码跟随会话状态：valid 200，其余 401
	g.Router().POST("/check-session", func(c *gin.Context) {
		status, err := h.svc.CheckSession(c.Request.Context(), middleware.BearerToken(c))
		switch {
		case err != nil && !errs.Is(err, errs.BadJSON):
			response.Abort(c, err)
		case err == nil && status == service.SessionValid:
			response.JSON(c, sessionOut{Status: string(service.SessionValid)})
		case err == nil && status == service.SessionExpired:
			c.JSON(http.StatusUnauthorized, response.OK(sessionOut{Status: string(service.SessionExpired)}))
		default:
			c.JSON(http.StatusUnauthorized, response.OK(sessionOut{Status: "invalid"}))
		}
	})
}
