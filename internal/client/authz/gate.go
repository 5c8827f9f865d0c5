// Package authz 远端鉴权：catalog 服务通过认证服务的 /authz/check-permission 判定权限
package authz

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/cache"
	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/transport/http/middleware"
)

const checkPath = "/authz/check-permission"

// Decision 远端判定结果，按 token+code 缓存
type Decision struct {
	UserID  string `json:"user_id"`
	Granted bool   `json:"granted"`
}

type RemoteGate struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	ttl     time.Duration
	log     *zap.Logger
}

// NewRemoteGate c 为 nil 或 ttl<=0 时不缓存
func NewRemoteGate(baseURL string, timeout time.Duration, c *cache.Cache, ttl time.Duration, l *zap.Logger) *RemoteGate {
	return &RemoteGate{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		cache:   c,
		ttl:     ttl,
		log:     l,
	}
}

// Authorize 实现 middleware.Gate
func (g *RemoteGate) Authorize(ctx context.Context, accessToken, code string) (string, error) {
	if code == "" {
		return "", errs.New(errs.OperationCodeNotFound)
	}
	d, err := g.decide(ctx, accessToken, code)
	if err != nil {
		return "", err
	}
	if !d.Granted {
		return "", errs.New(errs.PermissionDenied)
	}
	return d.UserID, nil
}

// cacheKey token 不落明文
func cacheKey(token, code string) string {
	sum := sha256.Sum256([]byte(token))
	return "authz:" + hex.EncodeToString(sum[:]) + ":" + code
}

func (g *RemoteGate) decide(ctx context.Context, token, code string) (*Decision, error) {
	if g.cache == nil || g.ttl <= 0 {
		return g.check(ctx, token, code)
	}
	return cache.GetOrLoadJSON(g.cache, ctx, cacheKey(token, code), g.ttl, func(ctx context.Context) (*Decision, error) {
		return g.check(ctx, token, code)
	})
}

type envelope struct {
	Data *struct {
		UserID string `json:"user_id"`
		Access string `json:"access"`
	} `json:"data"`
	Error *struct {
		ErrorCode   string `json:"error_code"`
		Description string `json:"description"`
	} `json:"error"`
}

// check 远端返回的错误码原样还原（过期/未登录等），传输失败视为 SERVICE_UNAVAILABLE
func (g *RemoteGate) check(ctx context.Context, token, code string) (*Decision, error) {
	buf, _ := json.Marshal(map[string]string{"operation_code": code})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+checkPath, bytes.NewReader(buf))
	if err != nil {
		return nil, errs.Internal(err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if rid := middleware.RequestIDFrom(ctx); rid != "" {
		req.Header.Set(middleware.KeyRequestID, rid)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn("authz call failed", zap.Error(err))
		return nil, errs.Wrap(errs.ServiceUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&env); err != nil {
		return nil, errs.Wrap(errs.ServiceUnavailable, fmt.Errorf("decode %s: %w", resp.Status, err))
	}
	if env.Error != nil {
		return nil, errs.FromCode(env.Error.ErrorCode)
	}
	if resp.StatusCode != http.StatusOK || env.Data == nil {
		return nil, errs.Wrap(errs.ServiceUnavailable, fmt.Errorf("unexpected response %s", resp.Status))
	}
	return &Decision{UserID: env.Data.UserID, Granted: env.Data.Access == "granted"}, nil
}
