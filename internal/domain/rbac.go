package domain

import (
	"context"
	"time"
)

type Role struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description *string   `gorm:"size:255" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Permission struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Code        string    `gorm:"uniqueIndex;size:64;not null" json:"code"`
	Name        *string   `gorm:"size:128" json:"name,omitempty"`
	Description *string   `gorm:"size:255" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserRole / PermissionRole 纯关联行
type UserRole struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"user_id"`
	RoleID    string    `gorm:"primaryKey;size:36;index" json:"role_id"`
	Role      *Role     `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type PermissionRole struct {
	PermissionID string      `gorm:"primaryKey;size:36" json:"permission_id"`
	RoleID       string      `gorm:"primaryKey;size:36;index" json:"role_id"`
	Permission   *Permission `gorm:"foreignKey:PermissionID;constraint:OnDelete:CASCADE" json:"-"`
	Role         *Role       `gorm:"foreignKey:RoleID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}

type RolePatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type RoleRepository interface {
	Create(ctx context.Context, r *Role) error
	FindByID(ctx context.Context, id string) (*Role, error)
	FindByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context, offset, limit int) ([]Role, int64, error)
	Update(ctx context.Context, id string, patch RolePatch) error
	// DeleteByIDs 全部存在才删除，否则一条都不删
	DeleteByIDs(ctx context.Context, ids []string) error
	PermissionsOf(ctx context.Context, roleID string) ([]Permission, error)
	AddPermission(ctx context.Context, roleID, permissionID string) error
	RemovePermission(ctx context.Context, roleID, permissionID string) error
	AddUser(ctx context.Context, userID, roleID string) error
	RemoveUser(ctx context.Context, userID, roleID string) error
	UserHasRole(ctx context.Context, userID, roleID string) (bool, error)
	RolesOf(ctx context.Context, userID string) ([]Role, error)
}

type PermissionRepository interface {
	Create(ctx context.Context, p *Permission) error
	FindByID(ctx context.Context, id string) (*Permission, error)
	FindByCode(ctx context.Context, code string) (*Permission, error)
	List(ctx context.Context, offset, limit int) ([]Permission, int64, error)
	RoleIDsOf(ctx context.Context, permissionID string) ([]string, error)
}
