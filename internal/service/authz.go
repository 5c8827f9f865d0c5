package service

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
)

// Authenticator access token -> user id
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (string, error)
}

type AuthzService struct {
	perms       domain.PermissionRepository
	roles       domain.RoleRepository
	users       domain.UserRepository
	authn       Authenticator
	log         *zap.Logger
	MaxParallel int
}

func NewAuthzService(perms domain.PermissionRepository, roles domain.RoleRepository, users domain.UserRepository,
	authn Authenticator, l *zap.Logger) *AuthzService {
	return &AuthzService{perms: perms, roles: roles, users: users, authn: authn, log: l, MaxParallel: 4}
}

// HasPermission 未知操作码 / 未知用户一律 false；命中第一个角色即返回
func (s *AuthzService) HasPermission(ctx context.Context, userID, code string) (bool, error) {
	p, err := s.perms.FindByCode(ctx, code)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}
	roleIDs, err := s.perms.RoleIDsOf(ctx, p.ID)
	if err != nil {
		return false, err
	}
	if len(roleIDs) == 0 {
		return false, nil
	}
	ok, err := s.users.Exists(ctx, userID)
	if err != nil || !ok {
		return false, err
	}
	for _, rid := range roleIDs {
		has, err := s.roles.UserHasRole(ctx, userID, rid)
		if err != nil {
			return false, err
		}
		if has {
			return true, nil
		}
	}
	return false, nil
}

// CheckMany 每个操作码独立判定，结果与入参一一对应
func (s *AuthzService) CheckMany(ctx context.Context, userID string, codes []string) ([]bool, error) {
	out := make([]bool, len(codes))
	g, gctx := errgroup.WithContext(ctx)
	if s.MaxParallel > 0 {
		g.SetLimit(s.MaxParallel)
	}
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			ok, err := s.HasPermission(gctx, userID, code)
			if err != nil {
				return err
			}
			out[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Authorize 中间件用：token 有效且有权限才放行
func (s *AuthzService) Authorize(ctx context.Context, accessToken, code string) (string, error) {
	if code == "" {
		return "", errs.New(errs.OperationCodeNotFound)
	}
	uid, err := s.authn.Authenticate(ctx, accessToken)
	if err != nil {
		return "", err
	}
	ok, err := s.HasPermission(ctx, uid, code)
	if err != nil {
		return "", err
	}
	authzChecks.WithLabelValues(outcome(ok)).Inc()
	if !ok {
		s.log.Debug("permission denied", zap.String("user_id", uid), zap.String("code", code))
		return "", errs.New(errs.PermissionDenied)
	}
	return uid, nil
}
