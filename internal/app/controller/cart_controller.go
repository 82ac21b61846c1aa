package controller

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/service"
	apperrors "github.com/kinotiBot/PerfumesPlugApp/internal/errors"
	"github.com/kinotiBot/PerfumesPlugApp/internal/middleware"
)

type CartController struct {
	cartService service.CartService
}

func NewCartController(cartService service.CartService) *CartController {
	return &CartController{
		cartService: cartService,
	}
}

// AddCartItemRequest carries the quantity as a pointer so that an omitted
// field (defaults to one) can be told apart from an explicit zero (rejected).
type AddCartItemRequest struct {
	PerfumeID uint `json:"perfume_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

type UpdateCartItemRequest struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity int  `json:"quantity"`
}

type RemoveCartItemRequest struct {
	ItemID uint `json:"item_id" binding:"required"`
}

// respondStockError answers an insufficient stock failure with the number
// of units still available.
func respondStockError(c *gin.Context, err error) bool {
	var stockErr *service.StockError
	if errors.As(err, &stockErr) {
		apperrors.BadRequest(c, apperrors.CartInsufficientStock,
			fmt.Sprintf("Only %d items available", stockErr.Available))
		return true
	}
	if errors.Is(err, service.ErrInsufficientStock) {
		apperrors.BadRequest(c, apperrors.CartInsufficientStock, "Insufficient stock")
		return true
	}
	return false
}

// GetCart returns the user's cart with totals
// GET /api/orders/cart/
func (ctrl *CartController) GetCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	summary, err := ctrl.cartService.GetUserCart(userID)
	if err != nil {
		log.Error("Failed to fetch cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to fetch cart")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// AddItem adds a perfume to the cart
// POST /api/orders/cart/add_item/
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add cart item request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Perfume ID is required")
		return
	}

	// Quantity defaults to one when omitted; an explicit non-positive value
	// is a client error.
	quantity := 1
	if req.Quantity != nil {
		if *req.Quantity <= 0 {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Quantity must be greater than zero")
			return
		}
		quantity = *req.Quantity
	}

	item, err := ctrl.cartService.AddToCart(userID, req.PerfumeID, quantity)
	if err != nil {
		if respondStockError(c, err) {
			return
		}
		if errors.Is(err, service.ErrPerfumeNotFound) {
			apperrors.NotFound(c, apperrors.PerfumeNotFound, "Perfume not found")
			return
		}
		log.Error("Failed to add cart item", err, map[string]interface{}{
			"user_id":    userID,
			"perfume_id": req.PerfumeID,
		})
		apperrors.InternalError(c, "Failed to add item to cart")
		return
	}

	log.Info("Cart item added", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": item.ID,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"item":    item,
	})
}

// UpdateItem changes a cart line's quantity; zero removes the line
// POST /api/orders/cart/update_item/
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update cart item request", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Item ID is required")
		return
	}

	if err := ctrl.cartService.UpdateCartItem(userID, req.ItemID, req.Quantity); err != nil {
		if respondStockError(c, err) {
			return
		}
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Item not found in cart")
			return
		}
		log.Error("Failed to update cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": req.ItemID,
		})
		apperrors.InternalError(c, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
	})
}

// RemoveItem removes a line from the cart
// POST /api/orders/cart/remove_item/
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	var req RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Item ID is required")
		return
	}

	if err := ctrl.cartService.RemoveFromCart(userID, req.ItemID); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Item not found in cart")
			return
		}
		log.Error("Failed to remove cart item", err, map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": req.ItemID,
		})
		apperrors.InternalError(c, "Failed to remove cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
	})
}

// ClearCart empties the user's cart
// POST /api/orders/cart/clear/
func (ctrl *CartController) ClearCart(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Authentication required")
		return
	}

	if err := ctrl.cartService.ClearCart(userID); err != nil {
		log.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "Failed to clear cart")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared",
	})
}
