package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart one per user. TotalPrice is a cached projection over Items and is
// recomputed after every item mutation.
type Cart struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     int64           `gorm:"uniqueIndex;not null" json:"user_id,string"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"total_price"`
	Items      []CartItem      `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Cart) TableName() string {
	return "shop_cart"
}

// CartItem (cart, product) pair
type CartItem struct {
	ID        int64    `gorm:"primaryKey;autoIncrement" json:"-"`
	CartID    int64    `gorm:"uniqueIndex:idx_cart_product;not null" json:"-"`
	ProductID int64    `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Quantity  int      `gorm:"not null;default:1" json:"quantity"`
}

// TableName Specify table name
func (CartItem) TableName() string {
	return "shop_cart_item"
}

// LineTotal current unit price times quantity. Product must be loaded.
func (i CartItem) LineTotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
