package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/internal/domain"
	"go-gin-gorm-auth/internal/feature/catalog"
	"go-gin-gorm-auth/internal/transport/http/ez"
	"go-gin-gorm-auth/pkg/utils"
)

type CatalogHandler struct {
	db   *gorm.DB
	repo *catalog.Repo
}

func NewCatalogHandler(db *gorm.DB, repo *catalog.Repo) *CatalogHandler {
	return &CatalogHandler{db: db, repo: repo}
}

func (h *CatalogHandler) checkParent(c *gin.Context, m *catalog.Category) error {
	return h.repo.CheckParent(c.Request.Context(), m.ID, m.ParentID)
}

// expandCategories ?expand=categories 时带出商品所属分类
func (h *CatalogHandler) expandCategories(c *gin.Context, m *catalog.Product) error {
	if c.Query("expand") != "categories" {
		return nil
	}
	cats, err := h.repo.CategoriesOf(c.Request.Context(), m.ID)
	if err != nil {
		return err
	}
	m.Categories = cats
	return nil
}

// scopeCategories ?parent_id= 只列直接子类，?root=true 只列顶级
func scopeCategories(c *gin.Context, q *gorm.DB) (*gorm.DB, error) {
	if pid := c.Query("parent_id"); pid != "" {
		if !utils.IsUUID(pid) {
			return nil, errs.New(errs.UUIDSyntaxError)
		}
		return q.Where("parent_id = ?", pid), nil
	}
	if c.Query("root") == "true" {
		return q.Where("parent_id IS NULL"), nil
	}
	return q, nil
}

func (h *CatalogHandler) Mount(e ez.EZ) {
	g := e.Group("/product-service")

	ez.Crud(ez.CrudConfig[catalog.Product]{
		DB: h.db, EZ: g, Path: "/products", Resource: "product",
		New:        func() *catalog.Product { return &catalog.Product{} },
		NotFound:   errs.ProductNotFound,
		FieldCodes: map[string]errs.Code{"Name": errs.NameRequired},
		Hooks:      ez.CrudHooks[catalog.Product]{AfterGet: h.expandCategories},
		OrderBy:    "name",
	})
	ez.Crud(ez.CrudConfig[catalog.Category]{
		DB: h.db, EZ: g, Path: "/categories", Resource: "category",
		New:      func() *catalog.Category { return &catalog.Category{} },
		NotFound: errs.CategoryNotFound,
		FieldCodes: map[string]errs.Code{
			"Name":          errs.NameRequired,
			"ParentID.uuid": errs.UUIDSyntaxError,
		},
		Hooks: ez.CrudHooks[catalog.Category]{
			BeforeCreate: h.checkParent,
			BeforeUpdate: h.checkParent,
			ScopeList:    scopeCategories,
		},
		OrderBy: "name",
	})
	ez.Crud(ez.CrudConfig[catalog.Attribute]{
		DB: h.db, EZ: g, Path: "/attributes", Resource: "attribute",
		New:        func() *catalog.Attribute { return &catalog.Attribute{} },
		NotFound:   errs.AttributeNotFound,
		FieldCodes: map[string]errs.Code{"Name": errs.NameRequired},
		OrderBy:    "name",
	})
	ez.Crud(ez.CrudConfig[catalog.AttributeValue]{
		DB: h.db, EZ: g, Path: "/attribute-values", Resource: "attribute-value",
		New:        func() *catalog.AttributeValue { return &catalog.AttributeValue{} },
		FKNotFound: errs.AttributeNotFound,
		FieldCodes: map[string]errs.Code{
			"AttributeID.required": errs.IDIsRequired,
			"AttributeID.uuid":     errs.UUIDSyntaxError,
		},
		OrderBy: "value",
	})

	h.mountRelations(g)
}

func (h *CatalogHandler) mountRelations(g ez.EZ) {
	readProduct := domain.CatalogPermission("product", "read")
	updateProduct := domain.CatalogPermission("product", "update")

	ez.RegisterAction(g, ez.Action[struct{}, string]{
		Method: http.MethodPost, Path: "/products/:id/category/:category_id", Binder: ez.BindNone, Permission: updateProduct,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			pid, cid, err := pair(c, "category_id", errs.IDIsRequired)
			if err != nil {
				return "", err
			}
			if err := h.repo.AddCategory(c.Request.Context(), pid, cid); err != nil {
				return "", err
			}
			return "Category is added to product.", nil
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, string]{
		Method: http.MethodDelete, Path: "/products/:id/category/:category_id", Binder: ez.BindNone, Permission: updateProduct,
		Handler: func(c *gin.Context, _ *struct{}) (string, error) {
			pid, cid, err := pair(c, "category_id", errs.IDIsRequired)
			if err != nil {
				return "", err
			}
			if err := h.repo.RemoveCategory(c.Request.Context(), pid, cid); err != nil {
				return "", err
			}
			return "Category is removed from product.", nil
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, []catalog.Category]{
		Method: http.MethodGet, Path: "/products/:id/categories", Binder: ez.BindNone, Permission: readProduct,
		Handler: func(c *gin.Context, _ *struct{}) ([]catalog.Category, error) {
			id, err := ez.ParamID(c, "id", errs.IDIsRequired)
			if err != nil {
				return nil, err
			}
			return h.repo.CategoriesOf(c.Request.Context(), id)
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, []catalog.Category]{
		Method: http.MethodGet, Path: "/categories/:id/subcategories", Binder: ez.BindNone,
		Permission: domain.CatalogPermission("category", "read"),
		Handler: func(c *gin.Context, _ *struct{}) ([]catalog.Category, error) {
			id, err := ez.ParamID(c, "id", errs.IDIsRequired)
			if err != nil {
				return nil, err
			}
			return h.repo.Subcategories(c.Request.Context(), id)
		},
	})
	ez.RegisterAction(g, ez.Action[struct{}, []catalog.AttributeValue]{
		Method: http.MethodGet, Path: "/attributes/:id/values", Binder: ez.BindNone,
		Permission: domain.CatalogPermission("attribute-value", "read"),
		Handler: func(c *gin.Context, _ *struct{}) ([]catalog.AttributeValue, error) {
			id, err := ez.ParamID(c, "id", errs.IDIsRequired)
			if err != nil {
				return nil, err
			}
			return h.repo.ValuesOf(c.Request.Context(), id)
		},
	})
}

func pair(c *gin.Context, other string, required errs.Code) (string, string, error) {
	id, err := ez.ParamID(c, "id", errs.IDIsRequired)
	if err != nil {
		return "", "", err
	}
	oid, err := ez.ParamID(c, other, required)
	if err != nil {
		return "", "", err
	}
	return id, oid, nil
}
