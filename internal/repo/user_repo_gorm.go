package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-gorm-auth/internal/core/database"
	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/pkg/utils"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) CreateWithCredential(ctx context.Context, u *domain.User, cred *domain.PasswordCredential, roleIDs ...string) error {
	fixedID := u.ID != ""
	if !fixedID {
		u.ID = utils.NewID()
	}
	if cred.ID == "" {
		cred.ID = utils.NewID()
	}
	cred.UserID = u.ID

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 指定 id 时主键冲突不能算到 email 头上
		if fixedID {
			var n int64
			if err := tx.Model(&domain.User{}).Where("id = ?", u.ID).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return errs.New(errs.UserAlreadyExists)
			}
		}
		if err := tx.Create(u).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return errs.Wrap(errs.EmailAlreadyExist, err)
			}
			return fmt.Errorf("create user: %w", err)
		}
		if err := tx.Create(cred).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return errs.Wrap(errs.UsernameAlreadyExist, err)
			}
			return fmt.Errorf("create credential: %w", err)
		}
		for _, rid := range roleIDs {
			ur := &domain.UserRole{UserID: u.ID, RoleID: rid}
			if err := tx.Omit(clause.Associations).Create(ur).Error; err != nil {
				if database.IsForeignKeyViolation(err) {
					return errs.Wrap(errs.RoleNotFound, err)
				}
				return fmt.Errorf("assign role: %w", err)
			}
		}
		return nil
	})
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count user: %w", err)
	}
	return n > 0, nil
}

func (r *UserRepo) FindCredentialByUsername(ctx context.Context, username string) (*domain.PasswordCredential, error) {
	return r.findCredential(ctx, "username = ?", username)
}

func (r *UserRepo) FindCredentialByUserID(ctx context.Context, userID string) (*domain.PasswordCredential, error) {
	return r.findCredential(ctx, "user_id = ?", userID)
}

func (r *UserRepo) findCredential(ctx context.Context, where string, arg string) (*domain.PasswordCredential, error) {
	var c domain.PasswordCredential
	err := r.db.WithContext(ctx).First(&c, where, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find credential: %w", err)
	}
	return &c, nil
}

func (r *UserRepo) TouchLastLogin(ctx context.Context, credID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.PasswordCredential{}).
		Where("id = ?", credID).Update("last_login", at).Error
}

func (r *UserRepo) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (r *UserRepo) Update(ctx context.Context, id string, p domain.UserPatch) error {
	m := map[string]interface{}{}
	if p.Firstname != nil {
		m["firstname"] = *p.Firstname
	}
	if p.Lastname != nil {
		m["lastname"] = *p.Lastname
	}
	if p.Email != nil {
		m["email"] = *p.Email
	}
	if p.BirthDate != nil {
		m["birth_date"] = *p.BirthDate
	}
	if p.Gender != nil {
		m["gender"] = *p.Gender
	}
	if p.PhotoURL != nil {
		m["photo_url"] = *p.PhotoURL
	}
	if len(m) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(m).Error
	if database.IsDuplicateKey(err) {
		return errs.Wrap(errs.EmailAlreadyExist, err)
	}
	return err
}

func (r *UserRepo) UpdateCredential(ctx context.Context, userID string, username, passwordHash *string) error {
	m := map[string]interface{}{}
	if username != nil {
		m["username"] = *username
	}
	if passwordHash != nil {
		m["password"] = *passwordHash
	}
	if len(m) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&domain.PasswordCredential{}).Where("user_id = ?", userID).Updates(m).Error
	if database.IsDuplicateKey(err) {
		return errs.Wrap(errs.UsernameAlreadyExist, err)
	}
	return err
}

func (r *UserRepo) DeleteWithCredential(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.PasswordCredential{}).Error; err != nil {
			return fmt.Errorf("delete credential: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Token{}).Error; err != nil {
			return fmt.Errorf("delete tokens: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.UserRole{}).Error; err != nil {
			return fmt.Errorf("delete user roles: %w", err)
		}
		// 软删
		if err := tx.Where("id = ?", id).Delete(&domain.User{}).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}
