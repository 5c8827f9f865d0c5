package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type User struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	Firstname       string         `gorm:"size:64;not null" json:"firstname"`
	Lastname        string         `gorm:"size:64;not null" json:"lastname"`
	Email           string         `gorm:"uniqueIndex;size:191;not null" json:"email"`
	BirthDate       *time.Time     `json:"birth_date,omitempty"`
	Gender          *Gender        `gorm:"size:8" json:"gender,omitempty"`
	PhotoURL        *string        `gorm:"size:512" json:"photo_url,omitempty"`
	IsEmailVerified bool           `gorm:"not null;default:false" json:"is_email_verified"`
	IsSystemUser    bool           `gorm:"not null;default:false" json:"is_system_user"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserDetail 用户 + 用户名 + 角色，对外展示用
type UserDetail struct {
	User
	Username  string     `json:"username,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	Roles     []Role     `json:"roles"`
}

// PasswordCredential 与 User 一对一；password 只存 bcrypt 哈希
type PasswordCredential struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	UserID    string     `gorm:"uniqueIndex;size:36;not null" json:"user_id"`
	Username  string     `gorm:"uniqueIndex;size:20;not null" json:"username"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (PasswordCredential) TableName() string { return "password_based_auths" }

// UserPatch 仅更新非 nil 字段
type UserPatch struct {
	Firstname *string    `json:"firstname"`
	Lastname  *string    `json:"lastname"`
	Email     *string    `json:"email"`
	BirthDate *time.Time `json:"birth_date"`
	Gender    *Gender    `json:"gender"`
	PhotoURL  *string    `json:"photo_url"`
}

type UserRepository interface {
	// CreateWithCredential user + credential + 初始角色在同一事务内
	CreateWithCredential(ctx context.Context, u *User, cred *PasswordCredential, roleIDs ...string) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindCredentialByUsername(ctx context.Context, username string) (*PasswordCredential, error)
	FindCredentialByUserID(ctx context.Context, userID string) (*PasswordCredential, error)
	TouchLastLogin(ctx context.Context, credID string, at time.Time) error
	List(ctx context.Context, offset, limit int) ([]User, int64, error)
	Update(ctx context.Context, id string, patch UserPatch) error
	UpdateCredential(ctx context.Context, userID string, username, passwordHash *string) error
	// DeleteWithCredential 同一事务：credential / tokens / user_roles / user 软删
	DeleteWithCredential(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}
