package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-gorm-auth/internal/core/database"
	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/pkg/utils"
)

type RoleRepo struct{ db *gorm.DB }

func NewRoleRepo(db *gorm.DB) *RoleRepo { return &RoleRepo{db: db} }

var _ domain.RoleRepository = (*RoleRepo)(nil)

func (r *RoleRepo) Create(ctx context.Context, role *domain.Role) error {
	if role.ID == "" {
		role.ID = utils.NewID()
	}
	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return errs.Wrap(errs.RoleNameMustBeUnique, err)
		}
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

func (r *RoleRepo) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	return r.find(ctx, "id = ?", id)
}

func (r *RoleRepo) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.find(ctx, "name = ?", name)
}

func (r *RoleRepo) find(ctx context.Context, where, arg string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.WithContext(ctx).First(&role, where, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &role, nil
}

func (r *RoleRepo) List(ctx context.Context, offset, limit int) ([]domain.Role, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.Role{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count roles: %w", err)
	}
	var roles []domain.Role
	if err := r.db.WithContext(ctx).Order("name").Offset(offset).Limit(limit).Find(&roles).Error; err != nil {
		return nil, 0, fmt.Errorf("list roles: %w", err)
	}
	return roles, total, nil
}

func (r *RoleRepo) Update(ctx context.Context, id string, p domain.RolePatch) error {
	m := map[string]interface{}{}
	if p.Name != nil {
		m["name"] = *p.Name
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if len(m) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&domain.Role{}).Where("id = ?", id).Updates(m).Error
	if database.IsDuplicateKey(err) {
		return errs.Wrap(errs.RoleNameMustBeUnique, err)
	}
	return err
}

func (r *RoleRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	uniq := dedupe(ids)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Role{}).Where("id IN ?", uniq).Count(&n).Error; err != nil {
			return fmt.Errorf("count roles: %w", err)
		}
		if int(n) != len(uniq) {
			return errs.New(errs.RoleNotFound)
		}
		if err := tx.Where("role_id IN ?", uniq).Delete(&domain.PermissionRole{}).Error; err != nil {
			return fmt.Errorf("delete role grants: %w", err)
		}
		if err := tx.Where("role_id IN ?", uniq).Delete(&domain.UserRole{}).Error; err != nil {
			return fmt.Errorf("delete role members: %w", err)
		}
		if err := tx.Where("id IN ?", uniq).Delete(&domain.Role{}).Error; err != nil {
			return fmt.Errorf("delete roles: %w", err)
		}
		return nil
	})
}

func (r *RoleRepo) PermissionsOf(ctx context.Context, roleID string) ([]domain.Permission, error) {
	var perms []domain.Permission
	err := r.db.WithContext(ctx).
		Joins("JOIN permission_roles pr ON pr.permission_id = permissions.id").
		Where("pr.role_id = ?", roleID).
		Order("permissions.code").
		Find(&perms).Error
	if err != nil {
		return nil, fmt.Errorf("permissions of role: %w", err)
	}
	return perms, nil
}

// AddPermission 重复授权视为成功
func (r *RoleRepo) AddPermission(ctx context.Context, roleID, permissionID string) error {
	pr := &domain.PermissionRole{PermissionID: permissionID, RoleID: roleID}
	err := r.db.WithContext(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).Create(pr).Error
	if database.IsForeignKeyViolation(err) {
		return errs.Wrap(errs.PermissionNotFound, err)
	}
	return err
}

func (r *RoleRepo) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	return r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&domain.PermissionRole{}).Error
}

func (r *RoleRepo) AddUser(ctx context.Context, userID, roleID string) error {
	ur := &domain.UserRole{UserID: userID, RoleID: roleID}
	err := r.db.WithContext(ctx).Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).Create(ur).Error
	if database.IsForeignKeyViolation(err) {
		return errs.Wrap(errs.RoleNotFound, err)
	}
	return err
}

func (r *RoleRepo) RemoveUser(ctx context.Context, userID, roleID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Delete(&domain.UserRole{}).Error
}

// UserHasRole 直接查关联表，角色不嵌套
func (r *RoleRepo) UserHasRole(ctx context.Context, userID, roleID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.UserRole{}).
		Where("user_id = ? AND role_id = ?", userID, roleID).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("user has role: %w", err)
	}
	return n > 0, nil
}

func (r *RoleRepo) RolesOf(ctx context.Context, userID string) ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.WithContext(ctx).
		Joins("JOIN user_roles ur ON ur.role_id = roles.id").
		Where("ur.user_id = ?", userID).
		Order("roles.name").
		Find(&roles).Error
	if err != nil {
		return nil, fmt.Errorf("roles of user: %w", err)
	}
	return roles, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
