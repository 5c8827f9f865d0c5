package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/service"
	"go-gin-gorm-auth/internal/transport/http/ez"
)

type RoleHandler struct{ svc *service.RoleService }

func NewRoleHandler(svc *service.RoleService) *RoleHandler { return &RoleHandler{svc: svc} }

type createRoleIn struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// splitIDs "a,b , c" -> [a b c]
func splitIDs(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (h *RoleHandler) Mount(e ez.EZ) {
	g := e.Group("/role-service")

	ez.RegisterAction(g, ez.Action[domain.Page, domain.Paged[domain.Role]]{
		Method: http.MethodGet, Path: "/roles", Binder: ez.BindQuery, Permission: domain.PermRoleRead,
		Handler: func(c *gin.Context, in *domain.Page) (domain.Paged[domain.Role], error) {
			return h.svc.ListRoles(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(g, ez.Action[domain.Page, domain.Paged[domain.Permission]]{
		Method: http.MethodGet, Path: "/permissions", Binder: ez.BindQuery, Permission: domain.PermRoleRead,
		Handler: func(c *gin.Context, in *domain.Page) (domain.Paged[domain.Permission], error) {
			return h.svc.ListPermissions(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(g, ez.Action[createRoleIn, *domain.Role]{
		Method: http.MethodPost, Path: "/", Binder: ez.BindJSON, Permission: domain.PermRoleCreate,
		Handler: func(c *gin.Context, in *createRoleIn) (*domain.Role, error) {
			return h.svc.CreateRole(c.Request.Context(), in.Name, in.Description)
		},
	})
	// DELETE /:id 支持逗号分隔的多个 id，全部成功或全部失败
	ez.RegisterAction(g, ez.Action[struct{}, string]{
		Method: http.MethodDelete, Path: "/:id", Binder: ez.BindNone, Permission: domain.PermRoleDelete,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			if err := h.svc.DeleteRolesByIDs(c.Request.Context(), splitIDs(c.Param("id"))); err != nil {
				return "", err
			}
			return "Roles are deleted.", nil
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, *domain.Role]{
		Method: http.MethodGet, Path: "/:id", Binder: ez.BindNone, Permission: domain.PermRoleRead,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Role, error) {
			return h.svc.GetRole(c.Request.Context(), c.Param("id"))
		},
	})
	ez.RegisterAction(g, ez.Action[domain.RolePatch, *domain.Role]{
		Method: http.MethodPatch, Path: "/:id", Binder: ez.BindJSON, Permission: domain.PermRoleUpdate,
		Handler: func(c *gin.Context, in *domain.RolePatch) (*domain.Role, error) {
			return h.svc.UpdateRole(c.Request.Context(), c.Param("id"), *in)
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, []domain.Permission]{
		Method: http.MethodGet, Path: "/:id/permissions", Binder: ez.BindNone, Permission: domain.PermRoleRead,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Permission, error) {
			return h.svc.PermissionsOfRole(c.Request.Context(), c.Param("id"))
		},
	})

	// 角色 <-> 权限
	ez.RegisterAction(g, ez.Action[struct{}, string]{
		Method: http.MethodPost, Path: "/:id/permission/:permission_id", Binder: ez.BindNone, Permission: domain.PermRoleUpdate,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			if err := h.svc.AddPermissionToRole(c.Request.Context(), c.Param("id"), c.Param("permission_id")); err != nil {
				return "", err
			}
			return "Permission is added to role.", nil
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, string]{
		Method: http.MethodDelete, Path: "/:id/permission/:permission_id", Binder: ez.BindNone, Permission: domain.PermRoleUpdate,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			if err := h.svc.RemovePermissionFromRole(c.Request.Context(), c.Param("id"), c.Param("permission_id")); err != nil {
				return "", err
			}
			return "Permission is removed from role.", nil
		},
	})

	// 角色 <-> 用户
	ez.RegisterAction(g, ez.Action[struct{}, string]{
		Method: http.MethodPost, Path: "/:id/user/:user_id", Binder: ez.BindNone, Permission: domain.PermRoleAssign,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			if err := h.svc.AddRoleToUser(c.Request.Context(), c.Param("user_id"), c.Param("id")); err != nil {
				return "", err
			}
			return "Role is added to user.", nil
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, string]{
		Method: http.MethodDelete, Path: "/:id/user/:user_id", Binder: ez.BindNone, Permission: domain.PermRoleAssign,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			if err := h.svc.RemoveRoleFromUser(c.Request.Context(), c.Param("user_id"), c.Param("id")); err != nil {
				return "", err
			}
			return "Role is removed from user.", nil
		},
	})
}
