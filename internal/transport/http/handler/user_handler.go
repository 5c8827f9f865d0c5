package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/service"
	"go-gin-gorm-auth/internal/transport/http/ez"
	"go-gin-gorm-auth/internal/transport/http/middleware"
)

type UserHandler struct{ svc *service.UserService }

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

// target 空路径参数 = 调用者自己
type target func(c *gin.Context) string

func self(c *gin.Context) string { return middleware.UserID(c) }
func byID(c *gin.Context) string { return c.Param("id") }

func (h *UserHandler) Mount(e ez.EZ) {
	g := e.Group("/user-service")

	ez.RegisterAction(g, ez.Action[domain.Page, domain.Paged[domain.User]]{
		Method: http.MethodGet, Path: "/users", Binder: ez.BindQuery, Permission: domain.PermUserReadAny,
		Handler: func(c *gin.Context, in *domain.Page) (domain.Paged[domain.User], error) {
			return h.svc.ListUsers(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(g, ez.Action[service.CreateUserInput, *domain.UserDetail]{
		Method: http.MethodPost, Path: "/", Binder: ez.BindJSON, Permission: domain.PermUserCreate,
		Handler: func(c *gin.Context, in *service.CreateUserInput) (*domain.UserDetail, error) {
			return h.svc.CreateUser(c.Request.Context(), *in)
		},
	})

	// 自己：/ ；他人：/:id
	h.mountTarget(g, "/", self, domain.PermUserRead, domain.PermUserUpdate, domain.PermUserDelete)
	h.mountTarget(g, "/:id", byID, domain.PermUserReadAny, domain.PermUserUpdateAny, domain.PermUserDeleteAny)
}

func (h *UserHandler) mountTarget(g ez.EZ, path string, who target, read, update, del string) {
	sub := path
	if sub == "/" {
		sub = ""
	}
	ez.RegisterAction(g, ez.Action[struct{}, *domain.UserDetail]{
		Method: http.MethodGet, Path: path, Binder: ez.BindNone, Permission: read,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.UserDetail, error) {
			return h.svc.GetUser(c.Request.Context(), who(c))
		},
	})
	ez.RegisterAction(g, ez.Action[domain.UserPatch, *domain.UserDetail]{
		Method: http.MethodPatch, Path: path, Binder: ez.BindJSON, Permission: update,
		Handler: func(c *gin.Context, in *domain.UserPatch) (*domain.UserDetail, error) {
			return h.svc.UpdateUser(c.Request.Context(), who(c), *in)
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, string]{
		Method: http.MethodDelete, Path: path, Binder: ez.BindNone, Permission: del,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			if err := h.svc.DeleteUser(c.Request.Context(), who(c)); err != nil {
				return "", err
			}
			return "User is deleted.", nil
		},
	})
	ez.RegisterAction(g, ez.Action[service.PasswordAuthInput, string]{
		Method: http.MethodPatch, Path: sub + "/password-based-auth", Binder: ez.BindJSON, Permission: update,
		Handler: func(c *gin.Context, in *service.PasswordAuthInput) (string, error) {
			if err := h.svc.SetPasswordAuth(c.Request.Context(), who(c), *in); err != nil {
				return "", err
			}
			return "Password based auth is updated.", nil
		},
	})
}
