package shop

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
	"go.uber.org/zap"
)

// CartService cart mutations. Every mutation ends with CalculateCartTotalPrice
// so the stored total always equals the sum over the live items.
//
// No locking is added: concurrent writers to the same cart rely on the
// database's row-level guarantees.
type CartService struct {
	carts CartRepository
}

func NewCartService(carts CartRepository) *CartService {
	return &CartService{carts: carts}
}

// GetUserCart returns ErrCartNotFound when the user has never used a cart
func (s *CartService) GetUserCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart, err := s.carts.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.loadItems(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// GetOrCreateUserCart is idempotent
func (s *CartService) GetOrCreateUserCart(ctx context.Context, userID int64) (*domain.Cart, error) {
	return s.carts.GetOrCreateByUser(ctx, userID)
}

// AddProductToCart increments the quantity of an existing line or creates it
func (s *CartService) AddProductToCart(ctx context.Context, cart *domain.Cart, product *domain.Product, quantity int) error {
	item, err := s.carts.GetItem(ctx, cart.ID, product.ID)
	switch {
	case errors.Is(err, ErrCartItemNotFound):
		item = &domain.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: quantity}
		if err := s.carts.CreateItem(ctx, item); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if err := s.carts.UpdateItemQuantity(ctx, item.ID, item.Quantity+quantity); err != nil {
			return err
		}
	}

	_, err = s.CalculateCartTotalPrice(ctx, cart)
	return err
}

// UpdateCartItemQuantity sets the quantity of an existing line
func (s *CartService) UpdateCartItemQuantity(ctx context.Context, cart *domain.Cart, product *domain.Product, quantity int) error {
	item, err := s.carts.GetItem(ctx, cart.ID, product.ID)
	if err != nil {
		return err
	}
	if err := s.carts.UpdateItemQuantity(ctx, item.ID, quantity); err != nil {
		return err
	}

	_, err = s.CalculateCartTotalPrice(ctx, cart)
	return err
}

// RemoveProductFromCart deletes a line
func (s *CartService) RemoveProductFromCart(ctx context.Context, cart *domain.Cart, productID int64) error {
	if err := s.carts.DeleteItem(ctx, cart.ID, productID); err != nil {
		return err
	}

	_, err := s.CalculateCartTotalPrice(ctx, cart)
	return err
}

// CalculateCartTotalPrice sums current product price times quantity over the
// cart's items, persists it and refreshes cart.Items and cart.TotalPrice.
func (s *CartService) CalculateCartTotalPrice(ctx context.Context, cart *domain.Cart) (decimal.Decimal, error) {
	if err := s.loadItems(ctx, cart); err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range cart.Items {
		total = total.Add(item.LineTotal())
	}

	if err := s.carts.UpdateTotal(ctx, cart.ID, total); err != nil {
		return decimal.Zero, err
	}
	cart.TotalPrice = total

	zap.L().Debug("cart total recalculated",
		zap.String("namespace", "shop"),
		zap.Int64("cart_id", cart.ID),
		zap.Int("items", len(cart.Items)),
		zap.String("total", total.StringFixed(2)),
	)
	return total, nil
}

func (s *CartService) loadItems(ctx context.Context, cart *domain.Cart) error {
	items, err := s.carts.ListItems(ctx, cart.ID)
	if err != nil {
		return err
	}
	cart.Items = items
	return nil
}
