package repository

import (
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
	"gorm.io/gorm"
)

type OrderFilter struct {
	UserID        *uint
	Status        *model.OrderStatus
	PaymentStatus *bool
	OrderNumber   string
	Limit         int
	Offset        int
}

// OrderRepository is the read and payment-flag surface for orders. Order
// creation and status transitions happen inside service transactions because
// they carry stock side effects.
type OrderRepository interface {
	FindByID(id uint) (*model.Order, error)
	FindByOrderNumber(orderNumber string) (*model.Order, error)
	FindWithFilter(filter OrderFilter) ([]model.Order, int64, error)
	UpdatePaymentStatus(id uint, paid bool) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) preloadOrder() *gorm.DB {
	return r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Preload("Perfume", func(pdb *gorm.DB) *gorm.DB {
			return pdb.Preload("Brand")
		})
	}).Preload("User").Preload("ShippingAddress").Preload("BillingAddress")
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	logger.Debug("Finding order by ID in database", map[string]interface{}{
		"order_id": id,
	})

	var order model.Order
	if err := r.preloadOrder().First(&order, id).Error; err != nil {
		logger.Error("Failed to find order by ID in database", err, map[string]interface{}{
			"order_id": id,
		})
		return nil, err
	}

	logger.Debug("Order found by ID in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
	})
	return &order, nil
}

func (r *orderRepository) FindByOrderNumber(orderNumber string) (*model.Order, error) {
	logger.Debug("Finding order by order number in database", map[string]interface{}{
		"order_number": orderNumber,
	})

	var order model.Order
	if err := r.preloadOrder().Where("order_number = ?", orderNumber).
		First(&order).Error; err != nil {
		logger.Error("Failed to find order by order number in database", err, map[string]interface{}{
			"order_number": orderNumber,
		})
		return nil, err
	}

	logger.Debug("Order found by order number in database", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"status":       order.Status,
	})
	return &order, nil
}

func (r *orderRepository) applyFilter(query *gorm.DB, filter OrderFilter) *gorm.DB {
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.OrderNumber != "" {
		query = query.Where("order_number = ?", filter.OrderNumber)
	}
	return query
}

func (r *orderRepository) FindWithFilter(filter OrderFilter) ([]model.Order, int64, error) {
	logger.Debug("Finding orders with filter", map[string]interface{}{
		"user_id":        filter.UserID,
		"status":         filter.Status,
		"payment_status": filter.PaymentStatus,
		"order_number":   filter.OrderNumber,
		"limit":          filter.Limit,
		"offset":         filter.Offset,
	})

	var total int64
	countQuery := r.applyFilter(r.db.Model(&model.Order{}), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		logger.Error("Failed to count orders with filter", err, map[string]interface{}{
			"user_id": filter.UserID,
			"status":  filter.Status,
		})
		return nil, 0, err
	}

	query := r.applyFilter(r.preloadOrder(), filter).
		Order("created_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders with filter", err, map[string]interface{}{
			"user_id": filter.UserID,
			"status":  filter.Status,
		})
		return nil, 0, err
	}

	logger.Debug("Orders found with filter", map[string]interface{}{
		"count": len(orders),
		"total": total,
	})
	return orders, total, nil
}

func (r *orderRepository) UpdatePaymentStatus(id uint, paid bool) error {
	logger.Debug("Updating order payment status in database", map[string]interface{}{
		"order_id":       id,
		"payment_status": paid,
	})

	if err := r.db.Model(&model.Order{}).Where("id = ?", id).
		Update("payment_status", paid).Error; err != nil {
		logger.Error("Failed to update order payment status in database", err, map[string]interface{}{
			"order_id":       id,
			"payment_status": paid,
		})
		return err
	}

	logger.Debug("Order payment status updated in database", map[string]interface{}{
		"order_id":       id,
		"payment_status": paid,
	})
	return nil
}
