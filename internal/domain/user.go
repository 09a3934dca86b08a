package domain

import "time"

// User account known to the shop. Records are provisioned by the identity
// provider; the shop only reads them to address notifications.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id,string"`
	Username  string    `gorm:"size:150;uniqueIndex" json:"username"`
	Email     string    `gorm:"size:254" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "shop_user"
}
