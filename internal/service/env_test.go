package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"go-gin-gorm-auth/internal/core/auth"
	"go-gin-gorm-auth/internal/core/database/dbtest"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/repo"
	"go-gin-gorm-auth/pkg/utils"
)

const (
	adminRoleID   = "0b7d5f4e-8c1a-4f0e-9a51-6f0c2a9b0001"
	defaultRoleID = "0b7d5f4e-8c1a-4f0e-9a51-6f0c2a9b0002"
	adminUserID   = "0b7d5f4e-8c1a-4f0e-9a51-6f0c2a9b00aa"
)

type env struct {
	db      *gorm.DB
	users   *repo.UserRepo
	tokens  *repo.TokenRepo
	roles   *repo.RoleRepo
	perms   *repo.PermissionRepo
	jwt     *auth.JWTer
	issuer  *TokenIssuer
	session *SessionValidator
	userSvc *UserService
	authn   *AuthnService
	authz   *AuthzService
	roleSvc *RoleService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	utils.BcryptCost = bcrypt.MinCost
	l := zap.NewNop()
	db := dbtest.Open(t, domain.AuthModels()...)

	e := &env{
		db:     db,
		users:  repo.NewUserRepo(db),
		tokens: repo.NewTokenRepo(db),
		roles:  repo.NewRoleRepo(db),
		perms:  repo.NewPermissionRepo(db),
		jwt: &auth.JWTer{
			Secret:     []byte("test-secret"),
			Issuer:     "auth-test",
			Algorithm:  "HS256",
			AccessTTL:  15 * time.Minute,
			RefreshTTL: time.Hour,
		},
	}
	protectedRoles := NewProtectedSet(adminRoleID, defaultRoleID)
	protectedUsers := NewProtectedSet(adminUserID)

	e.issuer = NewTokenIssuer(e.jwt, e.tokens, l)
	e.session = NewSessionValidator(e.jwt, e.tokens, l)
	e.userSvc = NewUserService(e.users, e.roles, e.tokens, protectedUsers, defaultRoleID, l)
	e.authn = NewAuthnService(e.users, e.tokens, e.issuer, e.session, e.userSvc, l)
	e.authz = NewAuthzService(e.perms, e.roles, e.users, e.authn, l)
	e.roleSvc = NewRoleService(e.roles, e.perms, e.users, protectedRoles, protectedUsers, adminRoleID, l)

	seeder := NewSeeder(e.users, e.roles, e.perms, SeedConfig{
		AdminRoleID:   adminRoleID,
		DefaultRoleID: defaultRoleID,
		Admin: &BootstrapAdmin{
			ID:        adminUserID,
			Username:  "admin",
			Password:  "Adm1nPass",
			Email:     "admin@example.com",
			Firstname: "Ada",
			Lastname:  "Admin",
		},
	}, l)
	require.NoError(t, seeder.Seed(context.Background()))
	return e
}

func (e *env) register(t *testing.T, username, email string) *domain.UserDetail {
	t.Helper()
	u, err := e.authn.Register(context.Background(), CreateUserInput{
		Username:  username,
		Password:  "Passw0rd1",
		Firstname: "Alice",
		Lastname:  "Doe",
		Email:     email,
	})
	require.NoError(t, err)
	return u
}
