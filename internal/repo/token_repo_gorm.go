package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/pkg/utils"
)

type TokenRepo struct{ db *gorm.DB }

func NewTokenRepo(db *gorm.DB) *TokenRepo { return &TokenRepo{db: db} }

var _ domain.TokenRepository = (*TokenRepo)(nil)

func (r *TokenRepo) Create(ctx context.Context, t *domain.Token) error {
	if t.ID == "" {
		t.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

func (r *TokenRepo) FindByToken(ctx context.Context, token string) (*domain.Token, error) {
	var t domain.Token
	err := r.db.WithContext(ctx).First(&t, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find token: %w", err)
	}
	return &t, nil
}

func (r *TokenRepo) DeleteByUserAndType(ctx context.Context, userID string, typ domain.TokenType) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND token_type = ?", userID, typ).Delete(&domain.Token{})
	return res.RowsAffected, res.Error
}

func (r *TokenRepo) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Token{}).Error
}

func (r *TokenRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Token{})
	return res.RowsAffected, res.Error
}
