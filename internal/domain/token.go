package domain

import (
	"context"
	"time"
)

type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

func (t TokenType) Valid() bool { return t == TokenAccess || t == TokenRefresh }

// Token 每个 (user_id, token_type) 同时最多一条有效记录
type Token struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index:idx_token_user_type;size:36;not null" json:"user_id"`
	TokenType TokenType `gorm:"index:idx_token_user_type;size:16;not null" json:"token_type"`
	Token     string    `gorm:"uniqueIndex;size:512;not null" json:"token"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (t *Token) Expired(now time.Time) bool { return t.ExpiresAt.Before(now) }

type TokenRepository interface {
	Create(ctx context.Context, t *Token) error
	FindByToken(ctx context.Context, token string) (*Token, error)
	DeleteByUserAndType(ctx context.Context, userID string, typ TokenType) (int64, error)
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}
