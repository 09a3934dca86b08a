package shop

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/internal/dbtest"
	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

func newCartService(t *testing.T) (*CartService, *gorm.DB) {
	db := dbtest.NewDB(t)
	return NewCartService(NewGormCartRepository(db)), db
}

func storedTotal(t *testing.T, db *gorm.DB, cartID int64) decimal.Decimal {
	var cart domain.Cart
	require.NoError(t, db.First(&cart, cartID).Error)
	return cart.TotalPrice
}

func TestGetOrCreateUserCartIsIdempotent(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()

	c1, err := svc.GetOrCreateUserCart(ctx, 7)
	require.NoError(t, err)
	c2, err := svc.GetOrCreateUserCart(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, c2.ID)
	assert.True(t, c1.TotalPrice.IsZero())

	var count int64
	db.Model(&domain.Cart{}).Where("user_id = ?", 7).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestGetUserCartNotFound(t *testing.T) {
	svc, _ := newCartService(t)
	_, err := svc.GetUserCart(context.Background(), 99)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestAddProductAccumulatesQuantity(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	product := dbtest.CreateProduct(t, db, "Widget", "3.50", nil)
	cart, err := svc.GetOrCreateUserCart(ctx, 1)
	require.NoError(t, err)

	for _, q := range []int{1, 4, 2} {
		require.NoError(t, svc.AddProductToCart(ctx, cart, product, q))
	}

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 7, cart.Items[0].Quantity)
	assert.Equal(t, "24.50", cart.TotalPrice.StringFixed(2))
	assert.Equal(t, "24.50", storedTotal(t, db, cart.ID).StringFixed(2))
}

func TestUpdateCartItemQuantity(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	a := dbtest.CreateProduct(t, db, "A", "10", nil)
	b := dbtest.CreateProduct(t, db, "B", "5", nil)
	cart, _ := svc.GetOrCreateUserCart(ctx, 1)
	require.NoError(t, svc.AddProductToCart(ctx, cart, a, 1))

	require.NoError(t, svc.UpdateCartItemQuantity(ctx, cart, a, 5))
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "50.00", storedTotal(t, db, cart.ID).StringFixed(2))

	// Absent item fails and leaves the cart unchanged
	err := svc.UpdateCartItemQuantity(ctx, cart, b, 3)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
	loaded, err := svc.GetUserCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, a.ID, loaded.Items[0].ProductID)
	assert.Equal(t, "50.00", loaded.TotalPrice.StringFixed(2))
}

func TestRemoveProductFromCart(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	a := dbtest.CreateProduct(t, db, "A", "10", nil)
	b := dbtest.CreateProduct(t, db, "B", "5", nil)
	cart, _ := svc.GetOrCreateUserCart(ctx, 1)
	require.NoError(t, svc.AddProductToCart(ctx, cart, a, 2))
	require.NoError(t, svc.AddProductToCart(ctx, cart, b, 1))
	assert.Equal(t, "25.00", cart.TotalPrice.StringFixed(2))

	require.NoError(t, svc.RemoveProductFromCart(ctx, cart, a.ID))
	assert.Equal(t, "5.00", storedTotal(t, db, cart.ID).StringFixed(2))

	assert.ErrorIs(t, svc.RemoveProductFromCart(ctx, cart, a.ID), ErrCartItemNotFound)

	require.NoError(t, svc.RemoveProductFromCart(ctx, cart, b.ID))
	assert.Empty(t, cart.Items)
	assert.True(t, storedTotal(t, db, cart.ID).IsZero())
}

func TestTotalFollowsCurrentPrice(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	a := dbtest.CreateProduct(t, db, "A", "10", nil)
	cart, _ := svc.GetOrCreateUserCart(ctx, 1)
	require.NoError(t, svc.AddProductToCart(ctx, cart, a, 3))

	require.NoError(t, db.Model(a).Update("price", decimal.RequireFromString("12.25")).Error)
	total, err := svc.CalculateCartTotalPrice(ctx, cart)
	require.NoError(t, err)
	assert.Equal(t, "36.75", total.StringFixed(2))
	assert.Equal(t, "36.75", storedTotal(t, db, cart.ID).StringFixed(2))
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	a := dbtest.CreateProduct(t, db, "A", "1", nil)
	c1, _ := svc.GetOrCreateUserCart(ctx, 1)
	c2, _ := svc.GetOrCreateUserCart(ctx, 2)
	require.NoError(t, svc.AddProductToCart(ctx, c1, a, 2))
	require.NoError(t, svc.AddProductToCart(ctx, c2, a, 5))

	l1, _ := svc.GetUserCart(ctx, 1)
	l2, _ := svc.GetUserCart(ctx, 2)
	assert.Equal(t, 2, l1.Items[0].Quantity)
	assert.Equal(t, 5, l2.Items[0].Quantity)
}
