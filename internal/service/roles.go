package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
)

type RoleService struct {
	roles          domain.RoleRepository
	perms          domain.PermissionRepository
	users          domain.UserRepository
	protected      ProtectedSet
	protectedUsers ProtectedSet
	adminRoleID    string
	log            *zap.Logger
}

func NewRoleService(roles domain.RoleRepository, perms domain.PermissionRepository, users domain.UserRepository,
	protected, protectedUsers ProtectedSet, adminRoleID string, l *zap.Logger) *RoleService {
	return &RoleService{
		roles:          roles,
		perms:          perms,
		users:          users,
		protected:      protected,
		protectedUsers: protectedUsers,
		adminRoleID:    adminRoleID,
		log:            l,
	}
}

func (s *RoleService) CreateRole(ctx context.Context, name string, description *string) (*domain.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.New(errs.RoleNameRequired)
	}
	r := &domain.Role{Name: name, Description: description}
	if err := s.roles.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RoleService) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	if err := requireID(id, errs.RoleIDRequired); err != nil {
		return nil, err
	}
	r, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errs.New(errs.RoleNotFound)
	}
	return r, nil
}

func (s *RoleService) ListRoles(ctx context.Context, p domain.Page) (domain.Paged[domain.Role], error) {
	p = p.Normalize()
	rows, total, err := s.roles.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return domain.Paged[domain.Role]{}, err
	}
	return domain.NewPaged(rows, total, p), nil
}

// mutable 先确认存在，再拒绝受保护角色
func (s *RoleService) mutable(ctx context.Context, id string) (*domain.Role, error) {
	r, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.protected.Has(id) {
		return nil, errs.New(errs.RoleDeleteRestriction)
	}
	return r, nil
}

func (s *RoleService) UpdateRole(ctx context.Context, id string, patch domain.RolePatch) (*domain.Role, error) {
	if _, err := s.mutable(ctx, id); err != nil {
		return nil, err
	}
	if patch.Name != nil {
		n := strings.TrimSpace(*patch.Name)
		if n == "" {
			return nil, errs.New(errs.RoleNameRequired)
		}
		patch.Name = &n
	}
	if err := s.roles.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.GetRole(ctx, id)
}

// DeleteRolesByIDs 全部删除或全部不删
func (s *RoleService) DeleteRolesByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return errs.New(errs.RoleIDRequired)
	}
	for _, id := range ids {
		if err := requireID(id, errs.RoleIDRequired); err != nil {
			return err
		}
		if s.protected.Has(id) {
			return errs.New(errs.RoleDeleteRestriction)
		}
	}
	if err := s.roles.DeleteByIDs(ctx, ids); err != nil {
		return err
	}
	s.log.Info("roles deleted", zap.Strings("ids", ids))
	return nil
}

func (s *RoleService) ListPermissions(ctx context.Context, p domain.Page) (domain.Paged[domain.Permission], error) {
	p = p.Normalize()
	rows, total, err := s.perms.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return domain.Paged[domain.Permission]{}, err
	}
	return domain.NewPaged(rows, total, p), nil
}

func (s *RoleService) PermissionsOfRole(ctx context.Context, id string) ([]domain.Permission, error) {
	if _, err := s.GetRole(ctx, id); err != nil {
		return nil, err
	}
	perms, err := s.roles.PermissionsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []domain.Permission{}
	}
	return perms, nil
}

func (s *RoleService) permission(ctx context.Context, id string) error {
	if err := requireID(id, errs.PermissionIDRequired); err != nil {
		return err
	}
	p, err := s.perms.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return errs.New(errs.PermissionNotFound)
	}
	return nil
}

func (s *RoleService) AddPermissionToRole(ctx context.Context, roleID, permissionID string) error {
	if _, err := s.mutable(ctx, roleID); err != nil {
		return err
	}
	if err := s.permission(ctx, permissionID); err != nil {
		return err
	}
	return s.roles.AddPermission(ctx, roleID, permissionID)
}

func (s *RoleService) RemovePermissionFromRole(ctx context.Context, roleID, permissionID string) error {
	if _, err := s.mutable(ctx, roleID); err != nil {
		return err
	}
	if err := s.permission(ctx, permissionID); err != nil {
		return err
	}
	return s.roles.RemovePermission(ctx, roleID, permissionID)
}

func (s *RoleService) user(ctx context.Context, id string) error {
	if err := requireID(id, errs.IDIsRequired); err != nil {
		return err
	}
	ok, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.New(errs.UserNotFound)
	}
	return nil
}

func (s *RoleService) AddRoleToUser(ctx context.Context, userID, roleID string) error {
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return err
	}
	if err := s.user(ctx, userID); err != nil {
		return err
	}
	return s.roles.AddUser(ctx, userID, roleID)
}

// RemoveRoleFromUser 受保护角色不可摘除；受保护用户的管理员角色报更具体的错误码
func (s *RoleService) RemoveRoleFromUser(ctx context.Context, userID, roleID string) error {
	if _, err := s.GetRole(ctx, roleID); err != nil {
		return err
	}
	if err := s.user(ctx, userID); err != nil {
		return err
	}
	if roleID == s.adminRoleID && s.protectedUsers.Has(userID) {
		return errs.New(errs.RoleOfAdminNotChangeable)
	}
	if s.protected.Has(roleID) {
		return errs.New(errs.RoleDeleteRestriction)
	}
	return s.roles.RemoveUser(ctx, userID, roleID)
}
