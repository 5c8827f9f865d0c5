package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-gin-gorm-auth/internal/core/database"
	"go-gin-gorm-auth/internal/core/errs"
)

// Repo 关联类查询；单表 CRUD 走 ez.Crud
type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) exists(ctx context.Context, model interface{}, id string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) must(ctx context.Context, model interface{}, id string, code errs.Code) error {
	ok, err := r.exists(ctx, model, id)
	if err != nil {
		return err
	}
	if !ok {
		return errs.New(code)
	}
	return nil
}

// AddCategory 重复添加视为成功
func (r *Repo) AddCategory(ctx context.Context, productID, categoryID string) error {
	if err := r.must(ctx, &Product{}, productID, errs.ProductNotFound); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&ProductCategory{ProductID: productID, CategoryID: categoryID}).Error
	if database.IsForeignKeyViolation(err) {
		return errs.Wrap(errs.CategoryNotFound, err)
	}
	if err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

func (r *Repo) RemoveCategory(ctx context.Context, productID, categoryID string) error {
	if err := r.must(ctx, &Product{}, productID, errs.ProductNotFound); err != nil {
		return err
	}
	if err := r.must(ctx, &Category{}, categoryID, errs.CategoryNotFound); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND category_id = ?", productID, categoryID).
		Delete(&ProductCategory{}).Error
	if err != nil {
		return fmt.Errorf("remove category: %w", err)
	}
	return nil
}

func (r *Repo) CategoriesOf(ctx context.Context, productID string) ([]Category, error) {
	if err := r.must(ctx, &Product{}, productID, errs.ProductNotFound); err != nil {
		return nil, err
	}
	var out []Category
	err := r.db.WithContext(ctx).
		Joins("JOIN product_categories pc ON pc.category_id = categories.id").
		Where("pc.product_id = ?", productID).
		Order("categories.name").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("categories of product: %w", err)
	}
	return out, nil
}

func (r *Repo) Subcategories(ctx context.Context, categoryID string) ([]Category, error) {
	if err := r.must(ctx, &Category{}, categoryID, errs.CategoryNotFound); err != nil {
		return nil, err
	}
	var out []Category
	if err := r.db.WithContext(ctx).Where("parent_id = ?", categoryID).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("subcategories: %w", err)
	}
	return out, nil
}

func (r *Repo) ValuesOf(ctx context.Context, attributeID string) ([]AttributeValue, error) {
	if err := r.must(ctx, &Attribute{}, attributeID, errs.AttributeNotFound); err != nil {
		return nil, err
	}
	var out []AttributeValue
	if err := r.db.WithContext(ctx).Where("attribute_id = ?", attributeID).Order("value").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("attribute values: %w", err)
	}
	return out, nil
}

// CheckParent 父分类必须存在且不能形成环
func (r *Repo) CheckParent(ctx context.Context, categoryID string, parentID *string) error {
	if parentID == nil || *parentID == "" {
		return nil
	}
	seen := map[string]bool{categoryID: true}
	cur := *parentID
	for cur != "" {
		if seen[cur] {
			return errs.New(errs.CategoryParentCycle)
		}
		seen[cur] = true
		var c Category
		err := r.db.WithContext(ctx).Select("id", "parent_id").First(&c, "id = ?", cur).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.New(errs.CategoryNotFound)
		}
		if err != nil {
			return fmt.Errorf("load parent: %w", err)
		}
		if c.ParentID == nil {
			break
		}
		cur = *c.ParentID
	}
	return nil
}
