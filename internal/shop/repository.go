package shop

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

// CartRepository data access for carts and their items
type CartRepository interface {
	// GetByUser returns ErrCartNotFound when the user has no cart
	GetByUser(ctx context.Context, userID int64) (*domain.Cart, error)

	// GetOrCreateByUser returns the user's cart, creating an empty one if absent
	GetOrCreateByUser(ctx context.Context, userID int64) (*domain.Cart, error)

	// GetItem returns ErrCartItemNotFound when the pair does not exist
	GetItem(ctx context.Context, cartID, productID int64) (*domain.CartItem, error)

	CreateItem(ctx context.Context, item *domain.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error

	// DeleteItem returns ErrCartItemNotFound when nothing was deleted
	DeleteItem(ctx context.Context, cartID, productID int64) error

	// ListItems returns the items with their products preloaded
	ListItems(ctx context.Context, cartID int64) ([]domain.CartItem, error)

	UpdateTotal(ctx context.Context, cartID int64, total decimal.Decimal) error

	// Clear removes every item and resets the total to zero atomically
	Clear(ctx context.Context, cartID int64) error
}

// OrderRepository data access for orders
type OrderRepository interface {
	// Create inserts the order together with its items in one transaction
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	UpdatePayment(ctx context.Context, id int64, status, paymentID, paymentURL string) error
}

// UserRepository read access to user accounts
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// TaskLogRepository audit trail of order task executions
type TaskLogRepository interface {
	Create(ctx context.Context, log *domain.OrderTaskLog) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.OrderTaskLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// GormCartRepository is the GORM implementation of CartRepository
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) GetByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query cart")
	}
	return &cart, nil
}

func (r *GormCartRepository) GetOrCreateByUser(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart := domain.Cart{UserID: userID, TotalPrice: decimal.Zero}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		FirstOrCreate(&cart).Error
	if err != nil {
		return nil, errors.Wrap(err, "get or create cart")
	}
	return &cart, nil
}

func (r *GormCartRepository) GetItem(ctx context.Context, cartID, productID int64) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query cart item")
	}
	return &item, nil
}

func (r *GormCartRepository) CreateItem(ctx context.Context, item *domain.CartItem) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(item).Error, "create cart item")
}

func (r *GormCartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	err := r.db.WithContext(ctx).
		Model(&domain.CartItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity).Error
	return errors.Wrap(err, "update cart item")
}

func (r *GormCartRepository) DeleteItem(ctx context.Context, cartID, productID int64) error {
	result := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&domain.CartItem{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "delete cart item")
	}
	if result.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *GormCartRepository) ListItems(ctx context.Context, cartID int64) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Order("product_id ASC").
		Find(&items).Error
	return items, errors.Wrap(err, "list cart items")
}

func (r *GormCartRepository) UpdateTotal(ctx context.Context, cartID int64, total decimal.Decimal) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Cart{}).
		Where("id = ?", cartID).
		Update("total_price", total).Error
	return errors.Wrap(err, "update cart total")
}

func (r *GormCartRepository) Clear(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error; err != nil {
			return errors.Wrap(err, "delete cart items")
		}
		err := tx.Model(&domain.Cart{}).
			Where("id = ?", cartID).
			Update("total_price", decimal.Zero).Error
		return errors.Wrap(err, "reset cart total")
	})
}

// GormOrderRepository is the GORM implementation of OrderRepository
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil
		if err := tx.Create(order).Error; err != nil {
			return errors.Wrap(err, "create order")
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return errors.Wrap(err, "create order items")
			}
		}
		order.Items = items
		return nil
	})
}

func (r *GormOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var order domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, errors.Wrap(err, "query order")
	}
	return &order, nil
}

func (r *GormOrderRepository) UpdatePayment(ctx context.Context, id int64, status, paymentID, paymentURL string) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      status,
			"payment_id":  paymentID,
			"payment_url": paymentURL,
			"updated_at":  time.Now(),
		}).Error
	return errors.Wrap(err, "update order payment")
}

// GormUserRepository is the GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query user")
	}
	return &user, nil
}

// GormTaskLogRepository is the GORM implementation of TaskLogRepository
type GormTaskLogRepository struct {
	db *gorm.DB
}

func NewGormTaskLogRepository(db *gorm.DB) *GormTaskLogRepository {
	return &GormTaskLogRepository{db: db}
}

func (r *GormTaskLogRepository) Create(ctx context.Context, log *domain.OrderTaskLog) error {
	return errors.Wrap(r.db.WithContext(ctx).Create(log).Error, "create order task log")
}

func (r *GormTaskLogRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.OrderTaskLog, error) {
	var logs []*domain.OrderTaskLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, errors.Wrap(err, "list order task logs")
}

func (r *GormTaskLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&domain.OrderTaskLog{})
	return result.RowsAffected, errors.Wrap(result.Error, "purge order task logs")
}
