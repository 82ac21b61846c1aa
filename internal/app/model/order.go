package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the single-letter status code stored on an order. The
// letter codes are the wire format; Display gives the readable name.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "P"
	OrderStatusConfirmed OrderStatus = "C"
	OrderStatusShipped   OrderStatus = "S"
	OrderStatusDelivered OrderStatus = "D"
	OrderStatusCancelled OrderStatus = "X"
)

// OrderStatusCodes lists every valid status code, in lifecycle order.
var OrderStatusCodes = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

var orderStatusDisplay = map[OrderStatus]string{
	OrderStatusPending:   "Pending",
	OrderStatusConfirmed: "Confirmed",
	OrderStatusShipped:   "Shipped",
	OrderStatusDelivered: "Delivered",
	OrderStatusCancelled: "Cancelled",
}

// allowedTransitions is the order lifecycle graph. Delivered and Cancelled
// are terminal.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
}

// IsValid reports whether the code is one of the five known statuses.
func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusDisplay[s]
	return ok
}

// Display returns the human-readable name for the status code.
func (s OrderStatus) Display() string {
	if name, ok := orderStatusDisplay[s]; ok {
		return name
	}
	return string(s)
}

// CanTransitionTo reports whether the lifecycle graph permits moving from
// this status to the target.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range allowedTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentMobileMoney    PaymentMethod = "mobile_money"
	PaymentCreditCard     PaymentMethod = "credit_card"
	PaymentPaypal         PaymentMethod = "paypal"
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
)

// PaymentMethods lists the accepted payment method labels. No gateway is
// integrated; the method is recorded as-is.
var PaymentMethods = []PaymentMethod{
	PaymentMobileMoney,
	PaymentCreditCard,
	PaymentPaypal,
	PaymentCashOnDelivery,
}

func (m PaymentMethod) IsValid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

// Order snapshots a checkout. Either UserID is set (registered checkout) or
// the Guest* fields are (guest checkout); the totals are fixed at creation
// and only Status and PaymentStatus change afterwards.
type Order struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	OrderNumber   string          `gorm:"uniqueIndex;not null" json:"order_number"`
	UserID        *uint           `gorm:"index" json:"user_id,omitempty"`
	Status        OrderStatus     `gorm:"type:varchar(1);default:'P'" json:"status"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentStatus bool            `gorm:"default:false" json:"payment_status"`

	ShippingAddressID *uint `gorm:"index" json:"shipping_address_id,omitempty"`
	BillingAddressID  *uint `gorm:"index" json:"billing_address_id,omitempty"`

	GuestName     string `json:"guest_name,omitempty"`
	GuestEmail    string `json:"guest_email,omitempty"`
	GuestPhone    string `json:"guest_phone,omitempty"`
	GuestAddress  string `json:"guest_address,omitempty"`
	GuestCity     string `json:"guest_city,omitempty"`
	GuestProvince string `json:"guest_province,omitempty"`
	GuestNotes    string `gorm:"type:text" json:"guest_notes,omitempty"`

	Subtotal decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	Shipping decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"shipping"`
	Total    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User            *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ShippingAddress *Address    `gorm:"foreignKey:ShippingAddressID;constraint:OnDelete:SET NULL" json:"shipping_address,omitempty"`
	BillingAddress  *Address    `gorm:"foreignKey:BillingAddressID;constraint:OnDelete:SET NULL" json:"billing_address,omitempty"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

// IsGuest reports whether the order came through guest checkout.
func (o *Order) IsGuest() bool {
	return o.UserID == nil
}

// StatusDisplay returns the readable name of the current status.
func (o *Order) StatusDisplay() string {
	return o.Status.Display()
}

// BeforeCreate assigns a unique order number. A random identifier avoids
// reading the last inserted row, which races under concurrent checkouts.
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.OrderNumber == "" {
		id := uuid.New()
		o.OrderNumber = fmt.Sprintf("ORD-%X", id[:6])
	}
	return nil
}

// OrderItem is an immutable order line: the perfume reference, the unit
// price at purchase time, and the quantity.
type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	PerfumeID uint            `gorm:"not null;index" json:"perfume_id"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`

	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Perfume Perfume `gorm:"foreignKey:PerfumeID" json:"perfume,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Total is price times quantity.
func (oi *OrderItem) Total() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}
