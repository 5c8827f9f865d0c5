package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-gin-gorm-auth/internal/domain"
)

var (
	ErrNotConfigured = errors.New("jwt: signing key or algorithm not configured")
	ErrInvalidToken  = errors.New("jwt: invalid token")
)

// Claims 载荷只有 user_id / token_type，过期以库里的 expires_at 为准
type Claims struct {
	UserID    string           `json:"user_id"`
	TokenType domain.TokenType `json:"token_type"`
	jwt.RegisteredClaims
}

type JWTer struct {
	Secret     []byte
	Issuer     string
	Algorithm  string // HS256 / HS384 / HS512
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (j *JWTer) method() (jwt.SigningMethod, error) {
	if j == nil || len(j.Secret) == 0 {
		return nil, ErrNotConfigured
	}
	switch j.Algorithm {
	case "HS256", "":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	}
	return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrNotConfigured, j.Algorithm)
}

// Configured 启动时自检
func (j *JWTer) Configured() error {
	_, err := j.method()
	return err
}

func (j *JWTer) TTL(typ domain.TokenType) time.Duration {
	if typ == domain.TokenRefresh {
		return j.RefreshTTL
	}
	return j.AccessTTL
}

// Issue 每次签发带随机 jti，同一秒内连续签发也不会重复
func (j *JWTer) Issue(uid string, typ domain.TokenType) (string, error) {
	m, err := j.method()
	if err != nil {
		return "", err
	}
	claims := Claims{
		UserID:    uid,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Issuer:   j.Issuer,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(m, claims).SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	m, err := j.method()
	if err != nil {
		return nil, err
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{m.Alg()})}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.UserID == "" {
		return nil, ErrInvalidToken
	}
	return c, nil
}
