package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"go-gin-gorm-auth/internal/core/database"
	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/pkg/utils"
)

type PermissionRepo struct{ db *gorm.DB }

func NewPermissionRepo(db *gorm.DB) *PermissionRepo { return &PermissionRepo{db: db} }

var _ domain.PermissionRepository = (*PermissionRepo)(nil)

func (r *PermissionRepo) Create(ctx context.Context, p *domain.Permission) error {
	if p.ID == "" {
		p.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return errs.Wrap(errs.PermissionCodeNotUnique, err)
		}
		return fmt.Errorf("create permission: %w", err)
	}
	return nil
}

func (r *PermissionRepo) FindByID(ctx context.Context, id string) (*domain.Permission, error) {
	return r.find(ctx, "id = ?", id)
}

func (r *PermissionRepo) FindByCode(ctx context.Context, code string) (*domain.Permission, error) {
	return r.find(ctx, "code = ?", code)
}

func (r *PermissionRepo) find(ctx context.Context, where, arg string) (*domain.Permission, error) {
	var p domain.Permission
	err := r.db.WithContext(ctx).First(&p, where, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find permission: %w", err)
	}
	return &p, nil
}

func (r *PermissionRepo) List(ctx context.Context, offset, limit int) ([]domain.Permission, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Permission{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count permissions: %w", err)
	}
	var perms []domain.Permission
	if err := r.db.WithContext(ctx).Order("code").Offset(offset).Limit(limit).Find(&perms).Error; err != nil {
		return nil, 0, fmt.Errorf("list permissions: %w", err)
	}
	return perms, total, nil
}

// RoleIDsOf 授予该权限的角色
func (r *PermissionRepo) RoleIDsOf(ctx context.Context, permissionID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.PermissionRole{}).
		Where("permission_id = ?", permissionID).Order("role_id").Pluck("role_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("roles of permission: %w", err)
	}
	return ids, nil
}
