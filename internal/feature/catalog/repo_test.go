package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-gin-gorm-auth/internal/core/database/dbtest"
	"go-gin-gorm-auth/internal/core/errs"
	"go-gin-gorm-auth/pkg/utils"
)

func seedCategory(t *testing.T, db *gorm.DB, name string, parent *string) Category {
	t.Helper()
	c := Category{ID: utils.NewID(), Name: name, ParentID: parent}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func TestAddAndRemoveCategory(t *testing.T) {
	db := dbtest.Open(t, Models()...)
	r := NewRepo(db)
	ctx := context.Background()

	p := Product{ID: utils.NewID(), Name: "Lamp", BasePrice: 1999}
	require.NoError(t, db.Create(&p).Error)
	light := seedCategory(t, db, "Lighting", nil)

	require.NoError(t, r.AddCategory(ctx, p.ID, light.ID))
	require.NoError(t, r.AddCategory(ctx, p.ID, light.ID))

	cats, err := r.CategoriesOf(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Lighting", cats[0].Name)

	assert.True(t, errs.Is(r.AddCategory(ctx, p.ID, utils.NewID()), errs.CategoryNotFound))
	assert.True(t, errs.Is(r.AddCategory(ctx, utils.NewID(), light.ID), errs.ProductNotFound))
	assert.True(t, errs.Is(r.RemoveCategory(ctx, p.ID, utils.NewID()), errs.CategoryNotFound))

	require.NoError(t, r.RemoveCategory(ctx, p.ID, light.ID))
	cats, err = r.CategoriesOf(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, cats)

	_, err = r.CategoriesOf(ctx, utils.NewID())
	assert.True(t, errs.Is(err, errs.ProductNotFound))
}

func TestSubcategoriesAndCheckParent(t *testing.T) {
	db := dbtest.Open(t, Models()...)
	r := NewRepo(db)
	ctx := context.Background()

	root := seedCategory(t, db, "Home", nil)
	mid := seedCategory(t, db, "Kitchen", &root.ID)
	leaf := seedCategory(t, db, "Cutlery", &mid.ID)
	seedCategory(t, db, "Bath", &root.ID)

	subs, err := r.Subcategories(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "Bath", subs[0].Name)

	_, err = r.Subcategories(ctx, utils.NewID())
	assert.True(t, errs.Is(err, errs.CategoryNotFound))

	assert.NoError(t, r.CheckParent(ctx, leaf.ID, nil))
	assert.NoError(t, r.CheckParent(ctx, utils.NewID(), &leaf.ID))
	assert.True(t, errs.Is(r.CheckParent(ctx, root.ID, &leaf.ID), errs.CategoryParentCycle))
	assert.True(t, errs.Is(r.CheckParent(ctx, root.ID, &root.ID), errs.CategoryParentCycle))
	missing := utils.NewID()
	assert.True(t, errs.Is(r.CheckParent(ctx, root.ID, &missing), errs.CategoryNotFound))
}

func TestValuesOf(t *testing.T) {
	db := dbtest.Open(t, Models()...)
	r := NewRepo(db)
	ctx := context.Background()

	size := Attribute{ID: utils.NewID(), Name: "Size"}
	require.NoError(t, db.Create(&size).Error)
	for _, v := range []string{"M", "L", "S"} {
		require.NoError(t, db.Create(&AttributeValue{ID: utils.NewID(), AttributeID: size.ID, Value: v}).Error)
	}

	vals, err := r.ValuesOf(ctx, size.ID)
	require.NoError(t, err)
	require.Len(t, vals, 3)
	assert.Equal(t, []string{"L", "M", "S"}, []string{vals[0].Value, vals[1].Value, vals[2].Value})

	_, err = r.ValuesOf(ctx, utils.NewID())
	assert.True(t, errs.Is(err, errs.AttributeNotFound))
}
