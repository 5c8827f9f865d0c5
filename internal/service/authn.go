package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/pkg/utils"
)

const AuthTypePassword = "password"

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthnService struct {
	users   domain.UserRepository
	tokens  domain.TokenRepository
	issuer  *TokenIssuer
	session *SessionValidator
	signup  *UserService
	log     *zap.Logger
	Now     func() time.Time
}

func NewAuthnService(users domain.UserRepository, tokens domain.TokenRepository, issuer *TokenIssuer,
	session *SessionValidator, signup *UserService, l *zap.Logger) *AuthnService {
	return &AuthnService{
		users:   users,
		tokens:  tokens,
		issuer:  issuer,
		session: session,
		signup:  signup,
		log:     l,
		Now:     time.Now,
	}
}

func (s *AuthnService) Register(ctx context.Context, in CreateUserInput) (*domain.UserDetail, error) {
	return s.signup.CreateUser(ctx, in)
}

// Login 目前只支持 password 方式
func (s *AuthnService) Login(ctx context.Context, authType, username, password string) (*TokenPair, error) {
	if authType != AuthTypePassword {
		return nil, errs.New(errs.AuthTypeNotSupported)
	}
	if password == "" {
		return nil, errs.New(errs.PasswordRequired)
	}
	if username == "" {
		return nil, errs.New(errs.UsernameRequired)
	}
	cred, err := s.users.FindCredentialByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if cred == nil || !utils.CheckPassword(password, cred.Password) {
		loginTotal.WithLabelValues("failed").Inc()
		s.log.Info("login failed", zap.String("username", username))
		return nil, errs.New(errs.WrongCredentials)
	}
	if err := s.users.TouchLastLogin(ctx, cred.ID, s.Now()); err != nil {
		return nil, fmt.Errorf("touch last login: %w", err)
	}
	access, err := s.issuer.IssueAccessToken(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefreshToken(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	loginTotal.WithLabelValues("ok").Inc()
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout 删除该用户全部 token（所有设备下线）
func (s *AuthnService) Logout(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return errs.New(errs.AccessTokenNotFound)
	}
	claims, err := s.session.Decode(accessToken)
	if err != nil {
		return err
	}
	n, err := s.tokens.DeleteByUser(ctx, claims.UserID)
	if err != nil {
		return fmt.Errorf("delete tokens: %w", err)
	}
	s.log.Info("logout", zap.String("user_id", claims.UserID), zap.Int64("tokens", n))
	return nil
}

// Refresh 只换 access token；refresh token 失效时清空该用户全部 token
func (s *AuthnService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", errs.New(errs.RefreshTokenNotFound)
	}
	claims, err := s.session.Decode(refreshToken)
	if err != nil {
		refreshTotal.WithLabelValues("malformed").Inc()
		return "", err
	}
	if claims.TokenType != domain.TokenRefresh {
		refreshTotal.WithLabelValues("wrong_type").Inc()
		return "", errs.New(errs.WrongTokenType)
	}
	status, _, err := s.session.Check(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if status != SessionValid {
		n, err := s.tokens.DeleteByUser(ctx, claims.UserID)
		if err != nil {
			return "", fmt.Errorf("purge tokens: %w", err)
		}
		refreshTotal.WithLabelValues(string(status)).Inc()
		s.log.Warn("refresh rejected, tokens purged",
			zap.String("user_id", claims.UserID), zap.String("status", string(status)), zap.Int64("tokens", n))
		return "", errs.New(errs.RefreshTokenNotFound)
	}
	access, err := s.issuer.IssueAccessToken(ctx, claims.UserID)
	if err != nil {
		return "", err
	}
	refreshTotal.WithLabelValues("ok").Inc()
	return access, nil
}

func (s *AuthnService) CheckSession(ctx context.Context, accessToken string) (SessionStatus, error) {
	status, _, err := s.session.Check(ctx, accessToken)
	return status, err
}

// Authenticate 有效的 access token -> user id
func (s *AuthnService) Authenticate(ctx context.Context, accessToken string) (string, error) {
	if accessToken == "" {
		return "", errs.New(errs.UserNotLoggedIn)
	}
	claims, err := s.session.Decode(accessToken)
	if err != nil {
		return "", err
	}
	if claims.TokenType != domain.TokenAccess {
		return "", errs.New(errs.WrongTokenType)
	}
	status, _, err := s.session.Check(ctx, accessToken)
	if err != nil {
		return "", err
	}
	switch status {
	case SessionValid:
		return claims.UserID, nil
	case SessionExpired:
		return "", errs.New(errs.TokenExpired)
	default:
		return "", errs.New(errs.AccessTokenNotFound)
	}
}
