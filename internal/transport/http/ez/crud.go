package ez

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-gorm-auth/internal/core/database"
	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/transport/http/response"
	"go-gin-gorm-auth/pkg/utils"
)

// Hook
type CrudHooks[T any] struct {
	BeforeCreate func(c *gin.Context, m *T) error
	BeforeUpdate func(c *gin.Context, m *T) error
	ScopeList    func(c *gin.Context, q *gorm.DB) (*gorm.DB, error) // 按 query 追加筛选
	AfterGet     func(c *gin.Context, m *T) error                   // 响应前补充关联数据
}

type CrudConfig[T any] struct {
	DB       *gorm.DB
	EZ       EZ
	Path     string // 例如 "/products"
	Resource string // 权限资源名，操作码为 <Resource>:<read|create|update|delete>
	New      func() *T

	Hooks CrudHooks[T]

	AllowCreate bool
	AllowList   bool
	AllowGet    bool
	AllowUpdate bool
	AllowDelete bool

	IDGen      func() string // 默认 utils.NewID
	NotFound   errs.Code     // 默认 RECORD_NOT_FOUND
	FKNotFound errs.Code     // 外键不存在时的错误码，默认同 NotFound
	FieldCodes map[string]errs.Code

	// 列表排序字段（模型字段名或列名，自动转 snake_case），为空则按 ID DESC
	OrderBy string
}

// 反射 & 工具
var idFieldNames = []string{"ID", "Id"}

const idCol = "id"

func getStringFieldPtr(obj any, candidates []string) (*string, bool) {
	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Ptr {
		return nil, false
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	t := v.Type()
	for _, cand := range candidates {
		f, ok := t.FieldByName(cand)
		// 未导出字段跳过
		if !ok || f.PkgPath != "" {
			continue
		}
		fv := v.FieldByIndex(f.Index)
		if fv.Kind() == reflect.String && fv.CanSet() {
			return fv.Addr().Interface().(*string), true
		}
	}
	return nil, false
}

func writeStringField(obj any, candidates []string, val string) bool {
	p, ok := getStringFieldPtr(obj, candidates)
	if !ok {
		return false
	}
	*p = val
	return true
}

func toSnake(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	rs := []rune(s)
	for i, r := range rs {
		if unicode.IsUpper(r) {
			// ID -> id，ParentID -> parent_id
			if i > 0 && !unicode.IsUpper(rs[i-1]) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// dbError 写库错误翻译成业务码，其余按 UNKNOWN
func (c *CrudConfig[T]) dbError(err error) error {
	switch {
	case database.IsForeignKeyViolation(err):
		return errs.Wrap(c.FKNotFound, err)
	case database.IsDuplicateKey(err):
		return errs.Wrap(errs.RecordExists, err)
	}
	return errs.Internal(err)
}

func (c *CrudConfig[T]) perm(op string) string {
	if c.Resource == "" {
		return ""
	}
	return domain.CatalogPermission(c.Resource, op)
}

// Crud 注册（无需模型实现任何接口）
func Crud[T any](cfg CrudConfig[T]) {
	// 默认放开所有操作
	if !cfg.AllowCreate && !cfg.AllowGet && !cfg.AllowList && !cfg.AllowUpdate && !cfg.AllowDelete {
		cfg.AllowCreate, cfg.AllowList, cfg.AllowGet, cfg.AllowUpdate, cfg.AllowDelete = true, true, true, true, true
	}
	if cfg.IDGen == nil {
		cfg.IDGen = utils.NewID
	}
	if cfg.NotFound == "" {
		cfg.NotFound = errs.RecordNotFound
	}
	if cfg.FKNotFound == "" {
		cfg.FKNotFound = cfg.NotFound
	}

	e := cfg.EZ

	after := func(c *gin.Context, m *T) bool {
		if cfg.Hooks.AfterGet == nil {
			return true
		}
		if err := cfg.Hooks.AfterGet(c, m); err != nil {
			response.Abort(c, err)
			return false
		}
		return true
	}

	// 按 id 查，不存在返回 NotFound
	load := func(c *gin.Context) (*T, string, bool) {
		id, err := ParamID(c, "id", errs.IDIsRequired)
		if err != nil {
			response.Abort(c, err)
			return nil, "", false
		}
		m := cfg.New()
		err = cfg.DB.WithContext(c).Where(clause.Eq{Column: clause.Column{Name: idCol}, Value: id}).First(m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Abort(c, errs.New(cfg.NotFound))
			return nil, "", false
		}
		if err != nil {
			response.Abort(c, errs.Internal(err))
			return nil, "", false
		}
		return m, id, true
	}

	// Create
	if cfg.AllowCreate {
		e.handle(http.MethodPost, cfg.Path, cfg.perm("create"), func(c *gin.Context) {
			m := cfg.New()
			if err := c.ShouldBindJSON(m); err != nil {
				response.Abort(c, BindError(err, cfg.FieldCodes))
				return
			}
			// 自动生成 ID（客户端传的 id 一律忽略）
			if !writeStringField(m, idFieldNames, cfg.IDGen()) {
				response.Abort(c, errs.Internal(errors.New("id field not found")))
				return
			}
			if cfg.Hooks.BeforeCreate != nil {
				if err := cfg.Hooks.BeforeCreate(c, m); err != nil {
					response.Abort(c, err)
					return
				}
			}
			if err := cfg.DB.WithContext(c).Create(m).Error; err != nil {
				response.Abort(c, cfg.dbError(err))
				return
			}
			if !after(c, m) {
				return
			}
			response.JSON(c, m)
		})
	}

	// List ?page=&limit=
	if cfg.AllowList {
		e.handle(http.MethodGet, cfg.Path, cfg.perm("read"), func(c *gin.Context) {
			var p domain.Page
			if err := c.ShouldBindQuery(&p); err != nil {
				response.Abort(c, BindError(err, nil))
				return
			}
			p = p.Normalize()

			q := cfg.DB.WithContext(c).Model(cfg.New())
			if cfg.Hooks.ScopeList != nil {
				var err error
				if q, err = cfg.Hooks.ScopeList(c, q); err != nil {
					response.Abort(c, err)
					return
				}
			}

			var total int64
			if err := q.Count(&total).Error; err != nil {
				response.Abort(c, errs.Internal(err))
				return
			}

			var items []T
			// 动态排序：优先按配置 OrderBy，否则按 ID DESC
			if cfg.OrderBy != "" {
				q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: toSnake(cfg.OrderBy)}})
			} else {
				q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: idCol}, Desc: true})
			}
			if err := q.Limit(p.Limit).Offset(p.Offset()).Find(&items).Error; err != nil {
				response.Abort(c, errs.Internal(err))
				return
			}
			for i := range items {
				if !after(c, &items[i]) {
					return
				}
			}
			response.JSON(c, domain.NewPaged(items, total, p))
		})
	}

	// Get
	if cfg.AllowGet {
		e.handle(http.MethodGet, cfg.Path+"/:id", cfg.perm("read"), func(c *gin.Context) {
			m, _, ok := load(c)
			if !ok {
				return
			}
			if !after(c, m) {
				return
			}
			response.JSON(c, m)
		})
	}

	// Update（PATCH：只更新非零字段）
	if cfg.AllowUpdate {
		e.handle(http.MethodPatch, cfg.Path+"/:id", cfg.perm("update"), func(c *gin.Context) {
			cur, id, ok := load(c)
			if !ok {
				return
			}
			// PATCH 只解码不走 binding 校验，required 字段可以不传
			in := cfg.New()
			if err := json.NewDecoder(c.Request.Body).Decode(in); err != nil {
				response.Abort(c, BindError(err, cfg.FieldCodes))
				return
			}
			// 强制保持 ID
			_ = writeStringField(in, idFieldNames, id)

			if cfg.Hooks.BeforeUpdate != nil {
				if err := cfg.Hooks.BeforeUpdate(c, in); err != nil {
					response.Abort(c, err)
					return
				}
			}
			if err := cfg.DB.WithContext(c).Model(cur).Updates(in).Error; err != nil {
				response.Abort(c, cfg.dbError(err))
				return
			}
			m, _, ok := load(c)
			if !ok {
				return
			}
			if !after(c, m) {
				return
			}
			response.JSON(c, m)
		})
	}

	// Delete
	if cfg.AllowDelete {
		e.handle(http.MethodDelete, cfg.Path+"/:id", cfg.perm("delete"), func(c *gin.Context) {
			id, err := ParamID(c, "id", errs.IDIsRequired)
			if err != nil {
				response.Abort(c, err)
				return
			}
			res := cfg.DB.WithContext(c).Where(clause.Eq{Column: clause.Column{Name: idCol}, Value: id}).Delete(cfg.New())
			if res.Error != nil {
				response.Abort(c, cfg.dbError(res.Error))
				return
			}
			if res.RowsAffected == 0 {
				response.Abort(c, errs.New(cfg.NotFound))
				return
			}
			response.JSON(c, gin.H{"id": id})
		})
	}
}
