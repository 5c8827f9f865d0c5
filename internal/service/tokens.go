package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/auth"
	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
)

// TokenIssuer 签发前先删同用户同类型的旧 token
//
// 删除与写入不在同一事务：中途失败时用户会暂时没有该类型 token，需要重新登录。
type TokenIssuer struct {
	jwt    *auth.JWTer
	tokens domain.TokenRepository
	log    *zap.Logger
	Now    func() time.Time
}

func NewTokenIssuer(j *auth.JWTer, tokens domain.TokenRepository, l *zap.Logger) *TokenIssuer {
	return &TokenIssuer{jwt: j, tokens: tokens, log: l, Now: time.Now}
}

func (s *TokenIssuer) IssueAccessToken(ctx context.Context, userID string) (string, error) {
	return s.issue(ctx, userID, domain.TokenAccess)
}

func (s *TokenIssuer) IssueRefreshToken(ctx context.Context, userID string) (string, error) {
	return s.issue(ctx, userID, domain.TokenRefresh)
}

func (s *TokenIssuer) issue(ctx context.Context, userID string, typ domain.TokenType) (string, error) {
	if err := s.jwt.Configured(); err != nil {
		s.log.Error("token signing not configured", zap.Error(err))
		return "", errs.Wrap(errs.SigningNotConfigured, err)
	}
	if _, err := s.tokens.DeleteByUserAndType(ctx, userID, typ); err != nil {
		return "", fmt.Errorf("revoke %s tokens: %w", typ, err)
	}
	signed, err := s.jwt.Issue(userID, typ)
	if err != nil {
		return "", errs.Wrap(errs.SigningNotConfigured, err)
	}
	row := &domain.Token{
		UserID:    userID,
		TokenType: typ,
		Token:     signed,
		ExpiresAt: s.Now().Add(s.jwt.TTL(typ)),
	}
	if err := s.tokens.Create(ctx, row); err != nil {
		return "", err
	}
	return signed, nil
}

type SessionStatus string

const (
	SessionValid    SessionStatus = "valid"
	SessionExpired  SessionStatus = "expired"
	SessionNotFound SessionStatus = "not_found"
)

// SessionValidator 先验签，再查库里的 token 行
type SessionValidator struct {
	jwt    *auth.JWTer
	tokens domain.TokenRepository
	log    *zap.Logger
	Now    func() time.Time
}

func NewSessionValidator(j *auth.JWTer, tokens domain.TokenRepository, l *zap.Logger) *SessionValidator {
	return &SessionValidator{jwt: j, tokens: tokens, log: l, Now: time.Now}
}

// Decode 只验签，不查库
func (v *SessionValidator) Decode(token string) (*auth.Claims, error) {
	claims, err := v.jwt.Parse(token)
	if err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			return nil, errs.Wrap(errs.SigningNotConfigured, err)
		}
		return nil, errs.Wrap(errs.BadJSON, err)
	}
	return claims, nil
}

func (v *SessionValidator) Check(ctx context.Context, token string) (SessionStatus, *auth.Claims, error) {
	claims, err := v.Decode(token)
	if err != nil {
		return "", nil, err
	}
	row, err := v.tokens.FindByToken(ctx, token)
	if err != nil {
		return "", claims, err
	}
	if row == nil {
		return SessionNotFound, claims, nil
	}
	if row.Expired(v.Now()) {
		// 过期行顺手清掉
		if err := v.tokens.DeleteByToken(ctx, token); err != nil {
			v.log.Warn("delete expired token", zap.String("user_id", row.UserID), zap.Error(err))
		}
		return SessionExpired, claims, nil
	}
	return SessionValid, claims, nil
}
