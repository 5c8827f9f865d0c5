package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-gorm-auth/internal/core/auth"
	"go-gin-gorm-auth/internal/core/config"
	"go-gin-gorm-auth/internal/core/server"
	"go-gin-gorm-auth/internal/repo"
	"go-gin-gorm-auth/internal/service"
	"go-gin-gorm-auth/internal/transport/http/handler"
	"go-gin-gorm-auth/internal/transport/http/router"
)

// buildAPI repo -> service -> 种子数据 -> 路由；库表需已迁移
func buildAPI(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (*gin.Engine, error) {
	jwter := &auth.JWTer{
		Secret:     []byte(cfg.JWT.Secret),
		Issuer:     cfg.JWT.Issuer,
		Algorithm:  cfg.JWT.Algorithm,
		AccessTTL:  cfg.JWT.AccessTTL(),
		RefreshTTL: cfg.JWT.RefreshTTL(),
	}

	users, tokens := repo.NewUserRepo(db), repo.NewTokenRepo(db)
	roles, perms := repo.NewRoleRepo(db), repo.NewPermissionRepo(db)

	// 内置角色和初始管理员总是受保护
	roleIDs := append([]string{cfg.RBAC.AdminRoleID, cfg.RBAC.DefaultRoleID}, cfg.RBAC.ProtectedRoleIDs...)
	userIDs := cfg.RBAC.ProtectedUserIDs
	if a := cfg.RBAC.BootstrapAdmin; a.Enable && a.ID != "" {
		userIDs = append([]string{a.ID}, userIDs...)
	}
	protectedRoles := service.NewProtectedSet(roleIDs...)
	protectedUsers := service.NewProtectedSet(userIDs...)

	issuer := service.NewTokenIssuer(jwter, tokens, log)
	session := service.NewSessionValidator(jwter, tokens, log)
	userSvc := service.NewUserService(users, roles, tokens, protectedUsers, cfg.RBAC.DefaultRoleID, log)
	authn := service.NewAuthnService(users, tokens, issuer, session, userSvc, log)
	authz := service.NewAuthzService(perms, roles, users, authn, log)
	roleSvc := service.NewRoleService(roles, perms, users, protectedRoles, protectedUsers, cfg.RBAC.AdminRoleID, log)

	// 权限目录 + 内置角色 + 初始管理员
	seed := service.SeedConfig{AdminRoleID: cfg.RBAC.AdminRoleID, DefaultRoleID: cfg.RBAC.DefaultRoleID}
	if a := cfg.RBAC.BootstrapAdmin; a.Enable {
		seed.Admin = &service.BootstrapAdmin{
			ID: a.ID, Username: a.Username, Password: a.Password,
			Email: a.Email, Firstname: a.Firstname, Lastname: a.Lastname,
		}
	}
	if err := service.NewSeeder(users, roles, perms, seed, log).Seed(ctx); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	return router.NewAPIEngine(router.APIDeps{
		Log:    log,
		Server: server.Options{Name: "auth", Mode: cfg.App.GinMode(), AllowOrigins: cfg.App.AllowOrigins},
		Limits: router.LimitsFrom(cfg.Limits),
		Cookies: handler.CookieConfig{
			Domain: cfg.Cookie.Domain,
			Path:   cfg.Cookie.Path,
			Secure: cfg.Cookie.Secure,
		},
		AccessTTL:  jwter.AccessTTL,
		RefreshTTL: jwter.RefreshTTL,
		Authn:      authn,
		Authz:      authz,
		Roles:      roleSvc,
		Users:      userSvc,
	}), nil
}
