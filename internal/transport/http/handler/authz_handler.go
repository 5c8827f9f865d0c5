package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/service"
	"go-gin-gorm-auth/internal/transport/http/ez"
	"go-gin-gorm-auth/internal/transport/http/middleware"
	"go-gin-gorm-auth/pkg/utils"
)

const (
	AccessGranted = "granted"
	AccessDenied  = "denied"
)

type Authz interface {
	HasPermission(ctx context.Context, userID, code string) (bool, error)
	CheckMany(ctx context.Context, userID string, codes []string) ([]bool, error)
}

type AuthzHandler struct {
	authz Authz
	authn service.Authenticator
}

func NewAuthzHandler(authz Authz, authn service.Authenticator) *AuthzHandler {
	return &AuthzHandler{authz: authz, authn: authn}
}

// CheckIn operation_code 可以是字符串或字符串数组
type CheckIn struct {
	UserID        string          `json:"user_id"`
	OperationCode json.RawMessage `json:"operation_code"`
}

// CheckOut Access 为 string 或 []string，与入参形状一致
type CheckOut struct {
	UserID string      `json:"user_id"`
	Access interface{} `json:"access"`
}

func access(ok bool) string {
	if ok {
		return AccessGranted
	}
	return AccessDenied
}

// codes 第二个返回值表示入参是否为数组
func (in CheckIn) codes() ([]string, bool, error) {
	raw := strings.TrimSpace(string(in.OperationCode))
	if raw == "" || raw == "null" {
		return nil, false, errs.New(errs.OperationCodeNotFound)
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal(in.OperationCode, &list); err != nil {
			return nil, true, errs.Wrap(errs.BadJSON, err)
		}
		for _, c := range list {
			if c == "" {
				return nil, true, errs.New(errs.OperationCodeNotFound)
			}
		}
		return list, true, nil
	}
	var one string
	if err := json.Unmarshal(in.OperationCode, &one); err != nil {
		return nil, false, errs.Wrap(errs.BadJSON, err)
	}
	if one == "" {
		return nil, false, errs.New(errs.OperationCodeNotFound)
	}
	return []string{one}, false, nil
}

// caller bearer token 优先；没有 token 时信任 body 里的 user_id（服务间调用）
func (h *AuthzHandler) caller(c *gin.Context, in *CheckIn) (string, error) {
	if token := middleware.BearerToken(c); token != "" {
		return h.authn.Authenticate(c.Request.Context(), token)
	}
	if in.UserID == "" {
		return "", errs.New(errs.UserNotLoggedIn)
	}
	if !utils.IsUUID(in.UserID) {
		return "", errs.New(errs.UUIDSyntaxError)
	}
	return in.UserID, nil
}

func (h *AuthzHandler) Mount(e ez.EZ) {
	ez.RegisterAction(e.Group("/authz"), ez.Action[CheckIn, CheckOut]{
		Method: http.MethodPost,
		Path:   "/check-permission",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *CheckIn) (CheckOut, error) {
			codes, many, err := in.codes()
			if err != nil {
				return CheckOut{}, err
			}
			uid, err := h.caller(c, in)
			if err != nil {
				return CheckOut{}, err
			}
			if !many {
				ok, err := h.authz.HasPermission(c.Request.Context(), uid, codes[0])
				if err != nil {
					return CheckOut{}, err
				}
				return CheckOut{UserID: uid, Access: access(ok)}, nil
			}
			res, err := h.authz.CheckMany(c.Request.Context(), uid, codes)
			if err != nil {
				return CheckOut{}, err
			}
			out := make([]string, len(res))
			for i, ok := range res {
				out[i] = access(ok)
			}
			return CheckOut{UserID: uid, Access: out}, nil
		},
	})
}
