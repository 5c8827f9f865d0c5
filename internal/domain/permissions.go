package domain

// 操作码：<资源>:<动作>
const (
	PermRoleRead   = "role:read"
	PermRoleCreate = "role:create"
	PermRoleUpdate = "role:update"
	PermRoleDelete = "role:delete"
	PermRoleAssign = "role:assign"

	PermUserReadAny   = "user:read-any"
	PermUserUpdateAny = "user:update-any"
	PermUserDeleteAny = "user:delete-any"
	PermUserCreate    = "user:create"
	PermUserRead      = "user:read"
	PermUserUpdate    = "user:update"
	PermUserDelete    = "user:delete"
)

// CatalogResources 商品服务的资源名，和路由前缀一致
var CatalogResources = []string{"product", "category", "attribute", "attribute-value"}

var crudOps = []string{"read", "create", "update", "delete"}

func CatalogPermission(resource, op string) string { return resource + ":" + op }

// AllPermissionCodes 权限目录（启动时写入）
func AllPermissionCodes() []string {
	codes := []string{
		PermRoleRead, PermRoleCreate, PermRoleUpdate, PermRoleDelete, PermRoleAssign,
		PermUserReadAny, PermUserUpdateAny, PermUserDeleteAny, PermUserCreate,
		PermUserRead, PermUserUpdate, PermUserDelete,
	}
	for _, r := range CatalogResources {
		for _, op := range crudOps {
			codes = append(codes, CatalogPermission(r, op))
		}
	}
	return codes
}

// SelfServicePermissionCodes 默认角色：管理自己的账号 + 只读商品目录
func SelfServicePermissionCodes() []string {
	codes := []string{PermUserRead, PermUserUpdate, PermUserDelete}
	for _, r := range CatalogResources {
		codes = append(codes, CatalogPermission(r, "read"))
	}
	return codes
}
