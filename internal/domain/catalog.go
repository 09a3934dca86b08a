package domain

import (
	"database/sql/driver"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Category product category, categories form a tree through ParentID
type Category struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string     `gorm:"size:100;index" json:"name"`
	ParentID      *int64     `gorm:"index" json:"parent,omitempty"`
	Subcategories []Category `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
}

// TableName Specify table name
func (Category) TableName() string {
	return "shop_category"
}

// Product catalog item. Price is the current unit price and is read live by carts.
type Product struct {
	ID              int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string          `gorm:"size:100;index" json:"name"`
	Description     *string         `gorm:"type:text" json:"description"`
	Image           string          `gorm:"size:1024" json:"image"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Characteristics JSONMap         `json:"characteristics"`
	CategoryID      *int64          `gorm:"index" json:"category"`
	Category        *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time       `json:"-"`
	UpdatedAt       time.Time       `json:"-"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "shop_product"
}

// JSONMap free-form attribute bag stored as a JSON document
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONMap source type %T", value)
	}
	if len(data) == 0 {
		*m = nil
		return nil
	}
	result := JSONMap{}
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// GormDataType reports the generic column type, needed for gorm to accept a map kind
func (JSONMap) GormDataType() string {
	return "json"
}

// GormDBDataType stores the bag as jsonb on postgres and text elsewhere
func (JSONMap) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "JSONB"
	}
	return "TEXT"
}
