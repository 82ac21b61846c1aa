package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a user's cart. The cart itself is just the set of
// rows for a user, so it exists as soon as it is first written to. Rows are
// deleted for real: a soft-deleted row would keep occupying the unique
// (user, perfume) index and block re-adding the perfume.
type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_cart_user_perfume,unique" json:"user_id"`
	PerfumeID uint      `gorm:"not null;index:idx_cart_user_perfume,unique" json:"perfume_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User    User    `gorm:"foreignKey:UserID" json:"-"`
	Perfume Perfume `gorm:"foreignKey:PerfumeID" json:"perfume,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// Total is the line total at the perfume's current (discount-aware) price.
func (ci *CartItem) Total() decimal.Decimal {
	return ci.Perfume.CurrentPrice().Mul(decimal.NewFromInt(int64(ci.Quantity)))
}
