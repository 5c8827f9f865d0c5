package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/pkg/utils"
)

type BootstrapAdmin struct {
	ID        string
	Username  string
	Password  string
	Email     string
	Firstname string
	Lastname  string
}

type SeedConfig struct {
	AdminRoleID   string
	DefaultRoleID string
	Admin         *BootstrapAdmin
}

// Seeder 启动时补齐权限目录、内置角色和初始管理员；可重复执行
type Seeder struct {
	users domain.UserRepository
	roles domain.RoleRepository
	perms domain.PermissionRepository
	cfg   SeedConfig
	log   *zap.Logger
}

func NewSeeder(users domain.UserRepository, roles domain.RoleRepository, perms domain.PermissionRepository,
	cfg SeedConfig, l *zap.Logger) *Seeder {
	return &Seeder{users: users, roles: roles, perms: perms, cfg: cfg, log: l}
}

func (s *Seeder) Seed(ctx context.Context) error {
	byCode := map[string]string{}
	for _, code := range domain.AllPermissionCodes() {
		id, err := s.ensurePermission(ctx, code)
		if err != nil {
			return err
		}
		byCode[code] = id
	}

	if s.cfg.AdminRoleID != "" {
		if err := s.ensureRole(ctx, s.cfg.AdminRoleID, "admin", "Full access."); err != nil {
			return err
		}
		for _, code := range domain.AllPermissionCodes() {
			if err := s.roles.AddPermission(ctx, s.cfg.AdminRoleID, byCode[code]); err != nil {
				return fmt.Errorf("grant %s to admin: %w", code, err)
			}
		}
	}
	if s.cfg.DefaultRoleID != "" {
		if err := s.ensureRole(ctx, s.cfg.DefaultRoleID, "user", "Self service."); err != nil {
			return err
		}
		for _, code := range domain.SelfServicePermissionCodes() {
			if err := s.roles.AddPermission(ctx, s.cfg.DefaultRoleID, byCode[code]); err != nil {
				return fmt.Errorf("grant %s to default role: %w", code, err)
			}
		}
	}
	if s.cfg.Admin != nil {
		return s.ensureAdmin(ctx, *s.cfg.Admin)
	}
	return nil
}

func (s *Seeder) ensurePermission(ctx context.Context, code string) (string, error) {
	p, err := s.perms.FindByCode(ctx, code)
	if err != nil {
		return "", err
	}
	if p != nil {
		return p.ID, nil
	}
	name := code
	p = &domain.Permission{Code: code, Name: &name}
	if err := s.perms.Create(ctx, p); err != nil {
		return "", fmt.Errorf("seed permission %s: %w", code, err)
	}
	return p.ID, nil
}

func (s *Seeder) ensureRole(ctx context.Context, id, name, desc string) error {
	r, err := s.roles.FindByID(ctx, id)
	if err != nil || r != nil {
		return err
	}
	if err := s.roles.Create(ctx, &domain.Role{ID: id, Name: name, Description: &desc}); err != nil {
		return fmt.Errorf("seed role %s: %w", name, err)
	}
	s.log.Info("role seeded", zap.String("id", id), zap.String("name", name))
	return nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, a BootstrapAdmin) error {
	cred, err := s.users.FindCredentialByUsername(ctx, a.Username)
	if err != nil {
		return err
	}
	if cred != nil {
		if s.cfg.AdminRoleID == "" {
			return nil
		}
		return s.roles.AddUser(ctx, cred.UserID, s.cfg.AdminRoleID)
	}
	hash, err := utils.HashPassword(a.Password)
	if err != nil {
		return fmt.Errorf("bootstrap admin password: %w", err)
	}
	u := &domain.User{ID: a.ID, Firstname: a.Firstname, Lastname: a.Lastname, Email: a.Email, IsSystemUser: true}
	var roleIDs []string
	for _, id := range []string{s.cfg.AdminRoleID, s.cfg.DefaultRoleID} {
		if id != "" {
			roleIDs = append(roleIDs, id)
		}
	}
	if err := s.users.CreateWithCredential(ctx, u, &domain.PasswordCredential{Username: a.Username, Password: hash}, roleIDs...); err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	s.log.Info("bootstrap admin created", zap.String("user_id", u.ID), zap.String("username", a.Username))
	return nil
}
