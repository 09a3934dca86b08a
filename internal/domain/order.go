package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusPaymentFailed  = "payment_failed"
)

// Order snapshot of a cart taken at checkout. TotalPrice is copied from the
// cart and never re-derived.
type Order struct {
	ID         int64           `gorm:"primaryKey" json:"id,string"`
	UserID     int64           `gorm:"index;not null" json:"user_id,string"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"total_price"`
	Status     string          `gorm:"size:32;index" json:"status"`
	PaymentID  string          `gorm:"size:64" json:"payment_id"`
	PaymentURL string          `gorm:"size:1024" json:"payment_url"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt  time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Order) TableName() string {
	return "shop_order"
}

// OrderItem value copy of a cart line. UnitPrice and ProductName are copied
// so later catalog changes never alter placed orders.
type OrderItem struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"-"`
	OrderID     int64           `gorm:"uniqueIndex:idx_order_product;not null" json:"-"`
	ProductID   int64           `gorm:"uniqueIndex:idx_order_product;not null" json:"product_id"`
	ProductName string          `gorm:"size:100" json:"product_name"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
}

// TableName Specify table name
func (OrderItem) TableName() string {
	return "shop_order_item"
}

// OrderTaskLog audit trail of background order task executions
type OrderTaskLog struct {
	ID         int64     `gorm:"primaryKey" json:"id,string"`
	TaskID     string    `gorm:"size:36;index" json:"task_id"`
	UserID     int64     `gorm:"index" json:"user_id,string"`
	OrderID    int64     `json:"order_id,string"`
	Status     string    `gorm:"size:16" json:"status"` // success, failure
	PaymentURL string    `gorm:"size:1024" json:"payment_url"`
	ErrorMsg   string    `gorm:"type:text" json:"error_msg"`
	ExecutedAt time.Time `json:"executed_at"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (OrderTaskLog) TableName() string {
	return "shop_order_task_log"
}
