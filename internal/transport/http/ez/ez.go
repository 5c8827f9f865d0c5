package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/transport/http/middleware"
	"go-gin-gorm-auth/internal/transport/http/response"
	"go-gin-gorm-auth/pkg/utils"
)

// EZ 一行注册接口：绑定 + 鉴权 + 统一信封
type EZ struct {
	g    *gin.RouterGroup
	gate middleware.Gate
}

// New gate 为 nil 时 Permission 不生效（仅测试/内部分组用）
func New(g *gin.RouterGroup, gate middleware.Gate) EZ { return EZ{g: g, gate: gate} }

func (e EZ) Group(path string) EZ { return EZ{g: e.g.Group(path), gate: e.gate} }

// Router 需要自定义状态码的接口直接挂 gin
func (e EZ) Router() *gin.RouterGroup { return e.g }

// guard 返回挂在业务 handler 前面的权限中间件
func (e EZ) guard(code string) []gin.HandlerFunc {
	if code == "" || e.gate == nil {
		return nil
	}
	return []gin.HandlerFunc{middleware.Authorize(e.gate, code)}
}

func (e EZ) handle(method, path, permission string, h gin.HandlerFunc) {
	e.g.Handle(strings.ToUpper(method), path, append(e.guard(permission), h)...)
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// Action 非 CRUD 接口：I 入参，O 出参
type Action[I any, O any] struct {
	Method     string
	Path       string
	Binder     Binder
	Permission string               // 操作码，空表示公开
	FieldCodes map[string]errs.Code // binding 校验失败："Field" 或 "Field.tag" -> 错误码
	Handler    func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	e.handle(a.Method, a.Path, a.Permission, func(c *gin.Context) {
		var in I
		var err error
		switch a.Binder {
		case BindJSON:
			err = c.ShouldBindJSON(&in)
		case BindQuery:
			err = c.ShouldBindQuery(&in)
		}
		if err != nil {
			response.Abort(c, BindError(err, a.FieldCodes))
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			response.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OK(out))
	})
}

// BindError 绑定错误 -> 业务错误码
func BindError(err error, fields map[string]errs.Code) error {
	if middleware.IsBodyTooLarge(err) {
		return errs.Wrap(errs.RequestTooLarge, err)
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		// 先查 "Field.tag"，再查 "Field"
		fe := ve[0]
		if code, ok := fields[fe.Field()+"."+fe.Tag()]; ok {
			return errs.Wrap(code, err)
		}
		if code, ok := fields[fe.Field()]; ok {
			return errs.Wrap(code, err)
		}
		return errs.Wrap(errs.BadJSON, err)
	}
	// 空 body / 语法错误 / 类型不匹配
	return errs.Wrap(errs.BadJSON, err)
}

// ParamID 路径参数必须是 UUID
func ParamID(c *gin.Context, name string, required errs.Code) (string, error) {
	id := c.Param(name)
	if id == "" {
		return "", errs.New(required)
	}
	if !utils.IsUUID(id) {
		return "", errs.New(errs.UUIDSyntaxError)
	}
	return id, nil
}
