package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/internal/dbtest"
	"github.com/talkincode/storefront/internal/domain"
)

func productNames(products []domain.Product) []string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return names
}

func TestListProductsOrdering(t *testing.T) {
	db := dbtest.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	dbtest.CreateProduct(t, db, "mid", "20.00", nil)
	dbtest.CreateProduct(t, db, "cheap", "5.50", nil)
	dbtest.CreateProduct(t, db, "pricey", "99.90", nil)

	asc, err := svc.ListProducts(ctx, ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"cheap", "mid", "pricey"}, productNames(asc))

	desc, err := svc.ListProducts(ctx, ProductFilter{Ordering: "-price"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pricey", "mid", "cheap"}, productNames(desc))

	// unknown ordering is ignored rather than passed to SQL
	other, err := svc.ListProducts(ctx, ProductFilter{Ordering: "name; DROP TABLE shop_product"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cheap", "mid", "pricey"}, productNames(other))
}

func TestListProductsByCategory(t *testing.T) {
	db := dbtest.NewDB(t)
	svc := NewService(db)

	phones := dbtest.CreateCategory(t, db, "Phones", nil)
	laptops := dbtest.CreateCategory(t, db, "Laptops", nil)
	dbtest.CreateProduct(t, db, "phone", "300", &phones.ID)
	dbtest.CreateProduct(t, db, "laptop", "900", &laptops.ID)
	dbtest.CreateProduct(t, db, "cable", "3", nil)

	got, err := svc.ListProducts(context.Background(), ProductFilter{CategoryID: &phones.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"phone"}, productNames(got))

	missing := int64(404)
	none, err := svc.ListProducts(context.Background(), ProductFilter{CategoryID: &missing})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetProduct(t *testing.T) {
	db := dbtest.NewDB(t)
	svc := NewService(db)
	p := dbtest.CreateProduct(t, db, "phone", "300", nil)

	got, err := svc.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "phone", got.Name)
	assert.Equal(t, "300.00", got.Price.StringFixed(2))

	_, err = svc.GetProduct(context.Background(), p.ID+1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCategoryTree(t *testing.T) {
	db := dbtest.NewDB(t)
	svc := NewService(db)

	electronics := dbtest.CreateCategory(t, db, "Electronics", nil)
	phones := dbtest.CreateCategory(t, db, "Phones", &electronics.ID)
	android := dbtest.CreateCategory(t, db, "Android", &phones.ID)
	audio := dbtest.CreateCategory(t, db, "Audio", &electronics.ID)

	views, err := svc.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 4)
	// ordered by name
	assert.Equal(t, []string{"Android", "Audio", "Electronics", "Phones"},
		[]string{views[0].Name, views[1].Name, views[2].Name, views[3].Name})

	root, err := svc.GetCategory(context.Background(), electronics.ID)
	require.NoError(t, err)
	assert.Nil(t, root.Parent)
	assert.Equal(t, []CategoryNode{
		{ID: audio.ID, Subcategories: []CategoryNode{}},
		{ID: phones.ID, Subcategories: []CategoryNode{{ID: android.ID, Subcategories: []CategoryNode{}}}},
	}, root.Subcategories)

	leaf, err := svc.GetCategory(context.Background(), android.ID)
	require.NoError(t, err)
	require.NotNil(t, leaf.Parent)
	assert.Equal(t, phones.ID, *leaf.Parent)
	assert.Empty(t, leaf.Subcategories)

	_, err = svc.GetCategory(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestCategoryTreeWithCycle(t *testing.T) {
	db := dbtest.NewDB(t)
	svc := NewService(db)

	a := dbtest.CreateCategory(t, db, "A", nil)
	b := dbtest.CreateCategory(t, db, "B", &a.ID)
	require.NoError(t, db.Model(a).Update("parent_id", b.ID).Error)

	view, err := svc.GetCategory(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, []CategoryNode{{ID: b.ID, Subcategories: []CategoryNode{}}}, view.Subcategories)
}

func TestDeleteCategoryCascadesProducts(t *testing.T) {
	db := dbtest.NewDB(t)
	svc := NewService(db)
	c := dbtest.CreateCategory(t, db, "Phones", nil)
	dbtest.CreateProduct(t, db, "phone", "300", &c.ID)

	require.NoError(t, db.Delete(&domain.Category{}, c.ID).Error)
	products, err := svc.ListProducts(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestQueryErrorsAreWrapped(t *testing.T) {
	db := dbtest.NewDB(t)
	svc := NewService(db)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.ListProducts(context.Background(), ProductFilter{})
	assert.ErrorContains(t, err, "list products")

	_, err = svc.GetProduct(context.Background(), 5)
	assert.ErrorContains(t, err, "get product 5")
	assert.NotErrorIs(t, err, ErrProductNotFound)

	_, err = svc.ListCategories(context.Background())
	assert.ErrorContains(t, err, "load categories")
}
