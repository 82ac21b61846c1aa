package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/service"
	apperrors "github.com/kinotiBot/PerfumesPlugApp/internal/errors"
	"github.com/kinotiBot/PerfumesPlugApp/internal/middleware"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CreateOrderRequest struct {
	PaymentMethod     string `json:"payment_method" binding:"required"`
	ShippingAddressID uint   `json:"shipping_address_id" binding:"required"`
	BillingAddressID  *uint  `json:"billing_address_id"`
}

// GuestOrderItemRequest carries the quantity as a pointer so that an omitted
// field (defaults to one) can be told apart from an explicit zero (rejected).
type GuestOrderItemRequest struct {
	PerfumeID uint `json:"perfume_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

type GuestOrderRequest struct {
	GuestName     string                  `json:"guest_name" binding:"required"`
	GuestEmail    string                  `json:"guest_email" binding:"required,email"`
	GuestPhone    string                  `json:"guest_phone"`
	GuestAddress  string                  `json:"guest_address" binding:"required"`
	GuestCity     string                  `json:"guest_city" binding:"required"`
	GuestProvince string                  `json:"guest_province"`
	GuestNotes    string                  `json:"guest_notes"`
	PaymentMethod string                  `json:"payment_method" binding:"required"`
	Items         []GuestOrderItemRequest `json:"cart_items"`
}

type UpdateOrderStatusRequest struct {
	Status *string `json:"status"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus *bool `json:"payment_status"`
}

func orderStatusCodeList() string {
	codes := make([]string, len(model.OrderStatusCodes))
	for i, code := range model.OrderStatusCodes {
		codes[i] = string(code)
	}
	return strings.Join(codes, ", ")
}

func orderPayload(order *model.Order) gin.H {
	return gin.H{
		"order":          order,
		"status_display": order.StatusDisplay(),
	}
}

// GetOrders lists orders: admins see every order, users only their own
// GET /api/orders/
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	filter := repository.OrderFilter{
		OrderNumber: c.Query("order_number"),
	}

	if status := c.Query("status"); status != "" {
		s := model.OrderStatus(status)
		if !s.IsValid() {
			apperrors.BadRequest(c, apperrors.OrderInvalidStatus,
				fmt.Sprintf("Invalid status. Must be one of: %s", orderStatusCodeList()))
			return
		}
		filter.Status = &s
	}
	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		paid := paymentStatus == "true" || paymentStatus == "1"
		filter.PaymentStatus = &paid
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 || pageSize > 100 {
		pageSize = defaultPageSize
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	orders, total, err := ctrl.orderService.GetOrders(userID, middleware.IsStaff(c), filter)
	if err != nil {
		log.Error("Failed to fetch orders", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":    orders,
		"count":     len(orders),
		"total":     total,
		"page_size": pageSize,
	})
}

// GetOrderByID returns one order
// GET /api/orders/:id/
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, middleware.IsStaff(c), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to fetch order", err, map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		apperrors.InternalError(c, "Failed to fetch order")
		return
	}

	c.JSON(http.StatusOK, orderPayload(order))
}

func respondCheckoutError(c *gin.Context, log *logger.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		apperrors.BadRequest(c, apperrors.CartEmpty, "Cart is empty")
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		apperrors.BadRequest(c, apperrors.OrderInvalidPayment, "Invalid payment method")
	case errors.Is(err, service.ErrShippingAddressRequired):
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Shipping address is required")
	case errors.Is(err, service.ErrInvalidQuantity):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Quantity must be greater than zero")
	case errors.Is(err, service.ErrAddressNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Address not found")
	case errors.Is(err, service.ErrPerfumeNotFound):
		apperrors.BadRequest(c, apperrors.PerfumeNotFound, "One or more perfumes are unavailable")
	default:
		if respondStockError(c, err) {
			return
		}
		log.Error("Checkout failed", err)
		apperrors.InternalError(c, "Failed to create order")
	}
}

// CreateOrder creates an order from the authenticated user's cart
// POST /api/orders/
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create order request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Payment method and shipping address are required")
		return
	}

	order, err := ctrl.orderService.CreateOrderFromCart(userID, service.CheckoutInput{
		PaymentMethod:     model.PaymentMethod(req.PaymentMethod),
		ShippingAddressID: req.ShippingAddressID,
		BillingAddressID:  req.BillingAddressID,
	})
	if err != nil {
		log.Warn("Order creation failed", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		respondCheckoutError(c, log, err)
		return
	}

	log.Info("Order created successfully", map[string]interface{}{
		"user_id":      userID,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.Total,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Order created successfully",
		"order":          order,
		"status_display": order.StatusDisplay(),
	})
}

// CreateGuestOrder creates an order without an account
// POST /api/orders/guest/
func (ctrl *OrderController) CreateGuestOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req GuestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid guest order request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Guest name, email, address, city and payment method are required")
		return
	}

	items := make([]service.GuestItemInput, len(req.Items))
	for i, item := range req.Items {
		quantity := 1
		if item.Quantity != nil {
			if *item.Quantity <= 0 {
				apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Quantity must be greater than zero")
				return
			}
			quantity = *item.Quantity
		}
		items[i] = service.GuestItemInput{
			PerfumeID: item.PerfumeID,
			Quantity:  quantity,
		}
	}

	order, err := ctrl.orderService.CreateGuestOrder(service.GuestCheckoutInput{
		Name:          req.GuestName,
		Email:         req.GuestEmail,
		Phone:         req.GuestPhone,
		Address:       req.GuestAddress,
		City:          req.GuestCity,
		Province:      req.GuestProvince,
		Notes:         req.GuestNotes,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		Items:         items,
	})
	if err != nil {
		log.Warn("Guest order creation failed", map[string]interface{}{
			"guest_email": req.GuestEmail,
			"error":       err.Error(),
		})
		respondCheckoutError(c, log, err)
		return
	}

	log.Info("Guest order created successfully", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"guest_email":  req.GuestEmail,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Order created successfully",
		"order":          order,
		"status_display": order.StatusDisplay(),
	})
}

// TrackOrder looks an order up by its public number
// GET /api/orders/track/:order_number/
func (ctrl *OrderController) TrackOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	orderNumber := c.Param("order_number")

	order, err := ctrl.orderService.GetOrderByNumber(orderNumber)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to track order", err, map[string]interface{}{
			"order_number": orderNumber,
		})
		apperrors.InternalError(c, "Failed to fetch order")
		return
	}

	// Tracking is anonymous, so only the public subset is returned.
	c.JSON(http.StatusOK, gin.H{
		"order_number":   order.OrderNumber,
		"status":         order.Status,
		"status_display": order.StatusDisplay(),
		"payment_status": order.PaymentStatus,
		"total":          order.Total,
		"created_at":     order.CreatedAt,
	})
}

// UpdateOrderStatus changes an order's status (owner or staff)
// POST /api/orders/:id/update_order_status/
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == nil {
		log.Warn("Order status update rejected: status missing", map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.BadRequest(c, apperrors.OrderStatusRequired, "Status field is required")
		return
	}

	status := model.OrderStatus(*req.Status)
	if !status.IsValid() {
		log.Warn("Order status update rejected: unknown status", map[string]interface{}{
			"order_id": orderID,
			"status":   *req.Status,
		})
		apperrors.BadRequest(c, apperrors.OrderInvalidStatus,
			fmt.Sprintf("Invalid status. Must be one of: %s", orderStatusCodeList()))
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(userID, middleware.IsStaff(c), orderID, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		case errors.Is(err, service.ErrInvalidTransition):
			apperrors.BadRequest(c, apperrors.OrderInvalidTransition,
				fmt.Sprintf("Cannot transition to status %s", status))
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": orderID,
				"status":   status,
			})
			apperrors.InternalError(c, "Failed to update order status")
		}
		return
	}

	log.Info("Order status updated successfully", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":        "Order status updated successfully",
		"order":          order,
		"status_display": order.StatusDisplay(),
	})
}

// UpdatePaymentStatus flips an order's payment flag (owner or staff)
// POST /api/orders/:id/update_payment_status/
func (ctrl *OrderController) UpdatePaymentStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PaymentStatus == nil {
		log.Warn("Payment status update rejected: payment_status missing", map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Payment status field is required")
		return
	}

	order, err := ctrl.orderService.UpdatePaymentStatus(userID, middleware.IsStaff(c), orderID, *req.PaymentStatus)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
			return
		}
		log.Error("Failed to update payment status", err, map[string]interface{}{
			"order_id": orderID,
		})
		apperrors.InternalError(c, "Failed to update payment status")
		return
	}

	log.Info("Payment status updated successfully", map[string]interface{}{
		"order_id": orderID,
		"paid":     *req.PaymentStatus,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment status updated successfully",
		"order":   order,
	})
}

// CancelOrder cancels a pending order and restores its stock
// POST /api/orders/:id/cancel/
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	orderID, ok := parseIDParam(c)
	if !ok {
		return
	}

	order, err := ctrl.orderService.CancelOrder(userID, middleware.IsStaff(c), orderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Order not found")
		case errors.Is(err, service.ErrOrderNotCancellable):
			apperrors.BadRequest(c, apperrors.OrderNotCancellable, "Only pending orders can be cancelled")
		default:
			log.Error("Failed to cancel order", err, map[string]interface{}{
				"user_id":  userID,
				"order_id": orderID,
			})
			apperrors.InternalError(c, "Failed to cancel order")
		}
		return
	}

	log.Info("Order cancelled successfully", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message":        "Order cancelled successfully",
		"order":          order,
		"status_display": order.StatusDisplay(),
	})
}
