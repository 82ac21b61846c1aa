package service

import (
	"errors"
	"fmt"

	"github.com/kinotiBot/PerfumesPlugApp/config"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInvalidStatus           = errors.New("invalid order status")
	ErrInvalidTransition       = errors.New("invalid status transition")
	ErrOrderNotCancellable     = errors.New("order can only be cancelled while pending")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrShippingAddressRequired = errors.New("shipping address is required")
	ErrInvalidQuantity         = errors.New("quantity must be greater than zero")
)

type CheckoutInput struct {
	PaymentMethod     model.PaymentMethod
	ShippingAddressID uint
	BillingAddressID  *uint
}

type GuestItemInput struct {
	PerfumeID uint
	Quantity  int
}

type GuestCheckoutInput struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	City          string
	Province      string
	Notes         string
	PaymentMethod model.PaymentMethod
	Items         []GuestItemInput
}

type OrderService interface {
	CreateOrderFromCart(userID uint, input CheckoutInput) (*model.Order, error)
	CreateGuestOrder(input GuestCheckoutInput) (*model.Order, error)
	GetOrders(requesterID uint, isStaff bool, filter repository.OrderFilter) ([]model.Order, int64, error)
	GetOrderByID(requesterID uint, isStaff bool, orderID uint) (*model.Order, error)
	GetOrderByNumber(orderNumber string) (*model.Order, error)
	UpdateOrderStatus(requesterID uint, isStaff bool, orderID uint, status model.OrderStatus) (*model.Order, error)
	UpdatePaymentStatus(requesterID uint, isStaff bool, orderID uint, paid bool) (*model.Order, error)
	CancelOrder(requesterID uint, isStaff bool, orderID uint) (*model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	perfumeRepo repository.PerfumeRepository
	addressRepo repository.AddressRepository
	checkout    config.CheckoutConfig
	db          *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	perfumeRepo repository.PerfumeRepository,
	addressRepo repository.AddressRepository,
	checkout config.CheckoutConfig,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		perfumeRepo: perfumeRepo,
		addressRepo: addressRepo,
		checkout:    checkout,
		db:          db,
	}
}

// computeTotals derives tax, shipping and the grand total from the subtotal.
// Totals are always computed here, never taken from the client.
func (s *orderService) computeTotals(subtotal decimal.Decimal) (tax, shipping, total decimal.Decimal) {
	tax = subtotal.Mul(decimal.NewFromFloat(s.checkout.TaxRate)).Round(2)
	shipping = decimal.NewFromFloat(s.checkout.ShippingFee)
	if subtotal.GreaterThanOrEqual(decimal.NewFromFloat(s.checkout.FreeShippingThreshold)) {
		shipping = decimal.Zero
	}
	total = subtotal.Add(tax).Add(shipping)
	return tax, shipping, total
}

// reserveItem locks the perfume row, checks stock and decrements it, and
// returns the order line priced at the current (discount-aware) price.
func (s *orderService) reserveItem(tx *gorm.DB, perfumeID uint, quantity int) (*model.OrderItem, error) {
	var perfume model.Perfume
	if err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&perfume, perfumeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPerfumeNotFound
		}
		return nil, err
	}

	if !perfume.IsActive {
		return nil, ErrPerfumeNotFound
	}

	if perfume.Stock < quantity {
		return nil, &StockError{PerfumeID: perfume.ID, Available: perfume.Stock}
	}

	if err := tx.Model(&model.Perfume{}).
		Where("id = ?", perfume.ID).
		Update("stock", gorm.Expr("stock - ?", quantity)).Error; err != nil {
		return nil, err
	}

	return &model.OrderItem{
		PerfumeID: perfume.ID,
		Price:     perfume.CurrentPrice(),
		Quantity:  quantity,
	}, nil
}

func (s *orderService) CreateOrderFromCart(userID uint, input CheckoutInput) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id":        userID,
		"payment_method": input.PaymentMethod,
	})

	if !input.PaymentMethod.IsValid() {
		logger.Warn("Order creation failed: invalid payment method", map[string]interface{}{
			"user_id":        userID,
			"payment_method": input.PaymentMethod,
		})
		return nil, ErrInvalidPaymentMethod
	}

	if input.ShippingAddressID == 0 {
		logger.Warn("Order creation failed: shipping address missing", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrShippingAddressRequired
	}

	shippingAddress, err := s.addressRepo.FindByID(input.ShippingAddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddressNotFound
		}
		return nil, err
	}
	if shippingAddress.UserID != userID {
		logger.Warn("Order creation failed: shipping address ownership mismatch", map[string]interface{}{
			"user_id":    userID,
			"address_id": input.ShippingAddressID,
		})
		return nil, ErrAddressNotFound
	}

	// Billing falls back to the shipping address.
	billingID := input.ShippingAddressID
	if input.BillingAddressID != nil {
		billingAddress, err := s.addressRepo.FindByID(*input.BillingAddressID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAddressNotFound
			}
			return nil, err
		}
		if billingAddress.UserID != userID {
			return nil, ErrAddressNotFound
		}
		billingID = *input.BillingAddressID
	}

	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if len(cartItems) == 0 {
		logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	logger.Debug("Processing cart items for order", map[string]interface{}{
		"user_id":    userID,
		"item_count": len(cartItems),
	})

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	subtotal := decimal.Zero
	var orderItems []model.OrderItem

	for _, cartItem := range cartItems {
		item, err := s.reserveItem(tx, cartItem.PerfumeID, cartItem.Quantity)
		if err != nil {
			tx.Rollback()
			logger.Warn("Order creation failed while reserving stock", map[string]interface{}{
				"user_id":    userID,
				"perfume_id": cartItem.PerfumeID,
				"error":      err.Error(),
			})
			return nil, err
		}
		orderItems = append(orderItems, *item)
		subtotal = subtotal.Add(item.Total())
	}

	tax, shipping, total := s.computeTotals(subtotal)

	order := &model.Order{
		UserID:            &userID,
		Status:            model.OrderStatusPending,
		PaymentMethod:     input.PaymentMethod,
		PaymentStatus:     false,
		ShippingAddressID: &input.ShippingAddressID,
		BillingAddressID:  &billingID,
		Subtotal:          subtotal,
		Tax:               tax,
		Shipping:          shipping,
		Total:             total,
		Items:             orderItems,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
			"total":   total,
		})
		return nil, err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to clear cart after order creation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": order.ID,
		})
		return nil, err
	}

	logger.Info("Order created successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        total,
		"item_count":   len(orderItems),
	})

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) CreateGuestOrder(input GuestCheckoutInput) (*model.Order, error) {
	logger.Info("Creating guest order", map[string]interface{}{
		"guest_email":    input.Email,
		"payment_method": input.PaymentMethod,
		"item_count":     len(input.Items),
	})

	if !input.PaymentMethod.IsValid() {
		logger.Warn("Guest order creation failed: invalid payment method", map[string]interface{}{
			"guest_email":    input.Email,
			"payment_method": input.PaymentMethod,
		})
		return nil, ErrInvalidPaymentMethod
	}

	if len(input.Items) == 0 {
		logger.Warn("Cannot create guest order: no items", map[string]interface{}{
			"guest_email": input.Email,
		})
		return nil, ErrEmptyCart
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during guest order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"guest_email": input.Email,
			})
		}
	}()

	subtotal := decimal.Zero
	var orderItems []model.OrderItem

	for _, line := range input.Items {
		if line.Quantity <= 0 {
			tx.Rollback()
			return nil, ErrInvalidQuantity
		}
		item, err := s.reserveItem(tx, line.PerfumeID, line.Quantity)
		if err != nil {
			tx.Rollback()
			logger.Warn("Guest order creation failed while reserving stock", map[string]interface{}{
				"guest_email": input.Email,
				"perfume_id":  line.PerfumeID,
				"error":       err.Error(),
			})
			return nil, err
		}
		orderItems = append(orderItems, *item)
		subtotal = subtotal.Add(item.Total())
	}

	tax, shipping, total := s.computeTotals(subtotal)

	order := &model.Order{
		Status:        model.OrderStatusPending,
		PaymentMethod: input.PaymentMethod,
		PaymentStatus: false,
		GuestName:     input.Name,
		GuestEmail:    input.Email,
		GuestPhone:    input.Phone,
		GuestAddress:  input.Address,
		GuestCity:     input.City,
		GuestProvince: input.Province,
		GuestNotes:    input.Notes,
		Subtotal:      subtotal,
		Tax:           tax,
		Shipping:      shipping,
		Total:         total,
		Items:         orderItems,
	}

	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create guest order", err, map[string]interface{}{
			"guest_email": input.Email,
			"total":       total,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit guest order transaction", err, map[string]interface{}{
			"guest_email": input.Email,
			"order_id":    order.ID,
		})
		return nil, err
	}

	logger.Info("Guest order created successfully", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"guest_email":  input.Email,
		"total":        total,
	})

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) GetOrders(requesterID uint, isStaff bool, filter repository.OrderFilter) ([]model.Order, int64, error) {
	// Non-staff callers only ever see their own orders.
	if !isStaff {
		filter.UserID = &requesterID
	}

	logger.Debug("Fetching orders", map[string]interface{}{
		"requester_id": requesterID,
		"is_staff":     isStaff,
		"status":       filter.Status,
	})

	orders, total, err := s.orderRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to fetch orders", err, map[string]interface{}{
			"requester_id": requesterID,
		})
		return nil, 0, err
	}

	logger.Info("Orders fetched successfully", map[string]interface{}{
		"requester_id": requesterID,
		"count":        len(orders),
		"total":        total,
	})
	return orders, total, nil
}

func (s *orderService) GetOrderByID(requesterID uint, isStaff bool, orderID uint) (*model.Order, error) {
	logger.Debug("Fetching order by ID", map[string]interface{}{
		"requester_id": requesterID,
		"order_id":     orderID,
	})

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found", map[string]interface{}{
				"order_id": orderID,
			})
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if !isStaff {
		if order.UserID == nil || *order.UserID != requesterID {
			logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
				"requester_id": requesterID,
				"order_id":     orderID,
			})
			return nil, ErrOrderNotFound
		}
	}

	return order, nil
}

// GetOrderByNumber looks an order up by its public order number. Guests use
// this to track an order without an account.
func (s *orderService) GetOrderByNumber(orderNumber string) (*model.Order, error) {
	logger.Debug("Fetching order by number", map[string]interface{}{
		"order_number": orderNumber,
	})

	order, err := s.orderRepo.FindByOrderNumber(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Order not found by number", map[string]interface{}{
				"order_number": orderNumber,
			})
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order by number", err, map[string]interface{}{
			"order_number": orderNumber,
		})
		return nil, err
	}

	return order, nil
}

func (s *orderService) UpdateOrderStatus(requesterID uint, isStaff bool, orderID uint, status model.OrderStatus) (*model.Order, error) {
	logger.Info("Updating order status", map[string]interface{}{
		"requester_id": requesterID,
		"order_id":     orderID,
		"new_status":   status,
	})

	if !status.IsValid() {
		logger.Warn("Order status update failed: invalid status", map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, ErrInvalidStatus
	}

	// Owner-or-staff scoping: a foreign order reads as not found.
	order, err := s.GetOrderByID(requesterID, isStaff, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == status {
		logger.Debug("Order already in requested status", map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return order, nil
	}

	if !order.Status.CanTransitionTo(status) {
		logger.Warn("Order status update failed: transition not allowed", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidTransition
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during status update, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"order_id": orderID,
			})
		}
	}()

	switch status {
	case model.OrderStatusCancelled:
		// Stock was reserved at checkout; a pending cancellation hands it
		// back. Later cancellations are refused by the transition graph
		// after shipping, and a confirmed order keeps its reservation.
		if order.Status == model.OrderStatusPending {
			if err := s.restoreStock(tx, order); err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	case model.OrderStatusDelivered:
		// Best effort only. The shelf count may have drifted since the
		// checkout reservation, so a shortfall is logged, not fatal.
		for _, item := range order.Items {
			result := tx.Model(&model.Perfume{}).
				Where("id = ? AND stock >= ?", item.PerfumeID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				tx.Rollback()
				logger.Error("Failed to decrement stock on delivery", result.Error, map[string]interface{}{
					"order_id":   orderID,
					"perfume_id": item.PerfumeID,
				})
				return nil, result.Error
			}
			if result.RowsAffected == 0 {
				logger.Warn("Stock not decremented on delivery: insufficient stock", map[string]interface{}{
					"order_id":   orderID,
					"perfume_id": item.PerfumeID,
					"quantity":   item.Quantity,
				})
			}
		}
	}

	if err := tx.Model(&model.Order{}).Where("id = ?", orderID).
		Update("status", status).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id": orderID,
			"status":   status,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit status update transaction", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	logger.Info("Order status updated successfully", map[string]interface{}{
		"order_id": orderID,
		"from":     order.Status,
		"to":       status,
	})

	return s.orderRepo.FindByID(orderID)
}

func (s *orderService) UpdatePaymentStatus(requesterID uint, isStaff bool, orderID uint, paid bool) (*model.Order, error) {
	logger.Info("Updating payment status", map[string]interface{}{
		"requester_id": requesterID,
		"order_id":     orderID,
		"paid":         paid,
	})

	if _, err := s.GetOrderByID(requesterID, isStaff, orderID); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdatePaymentStatus(orderID, paid); err != nil {
		logger.Error("Failed to update payment status", err, map[string]interface{}{
			"order_id": orderID,
			"paid":     paid,
		})
		return nil, err
	}

	logger.Info("Payment status updated successfully", map[string]interface{}{
		"order_id": orderID,
		"paid":     paid,
	})

	return s.orderRepo.FindByID(orderID)
}

func (s *orderService) CancelOrder(requesterID uint, isStaff bool, orderID uint) (*model.Order, error) {
	logger.Info("Cancelling order", map[string]interface{}{
		"requester_id": requesterID,
		"order_id":     orderID,
	})

	order, err := s.GetOrderByID(requesterID, isStaff, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != model.OrderStatusPending {
		logger.Warn("Order cancellation refused: not pending", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return nil, ErrOrderNotCancellable
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order cancellation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"order_id": orderID,
			})
		}
	}()

	if err := s.restoreStock(tx, order); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Model(&model.Order{}).Where("id = ?", orderID).
		Update("status", model.OrderStatusCancelled).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to cancel order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit cancellation transaction", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	logger.Info("Order cancelled successfully", map[string]interface{}{
		"order_id": orderID,
	})

	return s.orderRepo.FindByID(orderID)
}

func (s *orderService) restoreStock(tx *gorm.DB, order *model.Order) error {
	for _, item := range order.Items {
		if err := tx.Model(&model.Perfume{}).
			Where("id = ?", item.PerfumeID).
			Update("stock", gorm.Expr("stock + ?", item.Quantity)).Error; err != nil {
			logger.Error("Failed to restore stock", err, map[string]interface{}{
				"order_id":   order.ID,
				"perfume_id": item.PerfumeID,
			})
			return err
		}
	}
	return nil
}
