package domain

// AuthModels 迁移顺序：被引用的表在前
func AuthModels() []interface{} {
	return []interface{}{
		&User{},
		&PasswordCredential{},
		&Token{},
		&Role{},
		&Permission{},
		&UserRole{},
		&PermissionRole{},
	}
}
