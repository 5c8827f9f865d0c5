package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/pkg/utils"
)

type CreateUserInput struct {
	Username  string         `json:"username"`
	Password  string         `json:"password"`
	Firstname string         `json:"firstname"`
	Lastname  string         `json:"lastname"`
	Email     string         `json:"email"`
	BirthDate *time.Time     `json:"birth_date"`
	Gender    *domain.Gender `json:"gender"`
	PhotoURL  *string        `json:"photo_url"`
}

// Validate 校验顺序与注册接口的报错顺序一致
func (in CreateUserInput) Validate() error {
	if in.Username == "" {
		return errs.New(errs.UsernameRequired)
	}
	if in.Password == "" {
		return errs.New(errs.PasswordRequired)
	}
	if strings.TrimSpace(in.Firstname) == "" {
		return errs.New(errs.FirstnameRequired)
	}
	if strings.TrimSpace(in.Lastname) == "" {
		return errs.New(errs.LastnameRequired)
	}
	if err := checkEmail(in.Email); err != nil {
		return err
	}
	if err := checkUsername(in.Username); err != nil {
		return err
	}
	return checkGender(in.Gender)
}

type PasswordAuthInput struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

type UserService struct {
	users         domain.UserRepository
	roles         domain.RoleRepository
	tokens        domain.TokenRepository
	protected     ProtectedSet
	defaultRoleID string
	log           *zap.Logger
}

func NewUserService(users domain.UserRepository, roles domain.RoleRepository, tokens domain.TokenRepository,
	protectedUsers ProtectedSet, defaultRoleID string, l *zap.Logger) *UserService {
	return &UserService{
		users:         users,
		roles:         roles,
		tokens:        tokens,
		protected:     protectedUsers,
		defaultRoleID: defaultRoleID,
		log:           l,
	}
}

// CreateUser user + credential + 默认角色一个事务
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*domain.UserDetail, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		Firstname: strings.TrimSpace(in.Firstname),
		Lastname:  strings.TrimSpace(in.Lastname),
		Email:     in.Email,
		BirthDate: in.BirthDate,
		Gender:    in.Gender,
		PhotoURL:  in.PhotoURL,
	}
	cred := &domain.PasswordCredential{Username: in.Username, Password: hash}
	var roleIDs []string
	if s.defaultRoleID != "" {
		roleIDs = append(roleIDs, s.defaultRoleID)
	}
	if err := s.users.CreateWithCredential(ctx, u, cred, roleIDs...); err != nil {
		return nil, err
	}
	s.log.Info("user created", zap.String("user_id", u.ID), zap.String("username", in.Username))
	return s.GetUser(ctx, u.ID)
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.UserDetail, error) {
	if err := requireID(id, errs.IDIsRequired); err != nil {
		return nil, err
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.New(errs.UserNotFound)
	}
	d := &domain.UserDetail{User: *u}
	cred, err := s.users.FindCredentialByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cred != nil {
		d.Username = cred.Username
		d.LastLogin = cred.LastLogin
	}
	if d.Roles, err = s.roles.RolesOf(ctx, id); err != nil {
		return nil, err
	}
	if d.Roles == nil {
		d.Roles = []domain.Role{}
	}
	return d, nil
}

func (s *UserService) ListUsers(ctx context.Context, p domain.Page) (domain.Paged[domain.User], error) {
	p = p.Normalize()
	rows, total, err := s.users.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return domain.Paged[domain.User]{}, err
	}
	return domain.NewPaged(rows, total, p), nil
}

func (s *UserService) mustExist(ctx context.Context, id string) error {
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

func (s *UserService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.UserDetail, error) {
	if err := s.mustExist(ctx, id); err != nil {
		return nil, err
	}
	if err := checkPatch(patch); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, id, patch); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// SetPasswordAuth 改用户名/密码；改密码后所有 token 失效
func (s *UserService) SetPasswordAuth(ctx context.Context, id string, in PasswordAuthInput) error {
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}
	if in.Username != nil {
		if err := checkUsername(*in.Username); err != nil {
			return err
		}
	}
	var hash *string
	if in.Password != nil {
		if *in.Password == "" {
			return errs.New(errs.PasswordRequired)
		}
		h, err := utils.HashPassword(*in.Password)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		hash = &h
	}
	if err := s.users.UpdateCredential(ctx, id, in.Username, hash); err != nil {
		return err
	}
	if hash != nil {
		if _, err := s.tokens.DeleteByUser(ctx, id); err != nil {
			return fmt.Errorf("revoke tokens: %w", err)
		}
		s.log.Info("password changed, tokens revoked", zap.String("user_id", id))
	}
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := requireID(id, errs.IDIsRequired); err != nil {
		return err
	}
	if s.protected.Has(id) {
		return errs.New(errs.CannotDeleteAdminUser)
	}
	if err := s.mustExist(ctx, id); err != nil {
		return err
	}
	if err := s.users.DeleteWithCredential(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("user_id", id))
	return nil
}
