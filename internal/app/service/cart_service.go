package service

import (
	"errors"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartSummary is a cart with its computed totals. Prices are evaluated at
// read time, so a discount added after an item went in is reflected here.
type CartSummary struct {
	Items      []model.CartItem `json:"items"`
	TotalItems int              `json:"total_items"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
}

type CartService interface {
	GetUserCart(userID uint) (*CartSummary, error)
	AddToCart(userID, perfumeID uint, quantity int) (*model.CartItem, error)
	UpdateCartItem(userID, cartItemID uint, quantity int) error
	RemoveFromCart(userID, cartItemID uint) error
	ClearCart(userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	perfumeRepo repository.PerfumeRepository
}

func NewCartService(
	cartRepo repository.CartRepository,
	perfumeRepo repository.PerfumeRepository,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		perfumeRepo: perfumeRepo,
	}
}

func (s *cartService) GetUserCart(userID uint) (*CartSummary, error) {
	logger.Debug("Fetching user cart", map[string]interface{}{
		"user_id": userID,
	})

	cartItems, err := s.cartRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	summary := &CartSummary{
		Items:    cartItems,
		Subtotal: decimal.Zero,
	}
	for i := range cartItems {
		summary.TotalItems += cartItems[i].Quantity
		summary.Subtotal = summary.Subtotal.Add(cartItems[i].Total())
	}

	logger.Info("User cart fetched successfully", map[string]interface{}{
		"user_id":     userID,
		"line_count":  len(cartItems),
		"total_items": summary.TotalItems,
		"subtotal":    summary.Subtotal,
	})
	return summary, nil
}

func (s *cartService) AddToCart(userID, perfumeID uint, quantity int) (*model.CartItem, error) {
	logger.Info("Adding item to cart", map[string]interface{}{
		"user_id":    userID,
		"perfume_id": perfumeID,
		"quantity":   quantity,
	})

	perfume, err := s.perfumeRepo.FindByID(perfumeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cannot add to cart: perfume not found", map[string]interface{}{
				"user_id":    userID,
				"perfume_id": perfumeID,
			})
			return nil, ErrPerfumeNotFound
		}
		logger.Error("Failed to fetch perfume", err, map[string]interface{}{
			"user_id":    userID,
			"perfume_id": perfumeID,
		})
		return nil, err
	}

	// A delisted perfume is indistinguishable from a missing one to buyers.
	if !perfume.IsActive {
		logger.Warn("Cannot add to cart: perfume is inactive", map[string]interface{}{
			"user_id":    userID,
			"perfume_id": perfumeID,
		})
		return nil, ErrPerfumeNotFound
	}

	existingItem, err := s.cartRepo.FindByUserAndPerfume(userID, perfumeID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error("Failed to check existing cart item", err, map[string]interface{}{
			"user_id":    userID,
			"perfume_id": perfumeID,
		})
		return nil, err
	}

	// The stock check is against the cumulative quantity, so repeated adds
	// cannot overshoot what is on the shelf.
	requestedQuantity := quantity
	if existingItem != nil {
		requestedQuantity = existingItem.Quantity + quantity
	}

	if perfume.Stock < requestedQuantity {
		logger.Warn("Cannot add to cart: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"perfume_id": perfumeID,
			"requested":  requestedQuantity,
			"available":  perfume.Stock,
		})
		return nil, &StockError{PerfumeID: perfumeID, Available: perfume.Stock}
	}

	if existingItem != nil {
		logger.Debug("Updating existing cart item", map[string]interface{}{
			"cart_item_id": existingItem.ID,
			"old_qty":      existingItem.Quantity,
			"new_qty":      requestedQuantity,
		})
		existingItem.Quantity = requestedQuantity
		if err := s.cartRepo.Update(existingItem); err != nil {
			logger.Error("Failed to update cart item", err, map[string]interface{}{
				"cart_item_id": existingItem.ID,
			})
			return nil, err
		}
		return existingItem, nil
	}

	cartItem := &model.CartItem{
		UserID:    userID,
		PerfumeID: perfumeID,
		Quantity:  quantity,
	}

	if err := s.cartRepo.Create(cartItem); err != nil {
		logger.Error("Failed to create cart item", err, map[string]interface{}{
			"user_id":    userID,
			"perfume_id": perfumeID,
		})
		return nil, err
	}

	logger.Info("Cart item added successfully", map[string]interface{}{
		"cart_item_id": cartItem.ID,
	})
	return cartItem, nil
}

func (s *cartService) UpdateCartItem(userID, cartItemID uint, quantity int) error {
	logger.Info("Updating cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
		"quantity":     quantity,
	})

	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found", map[string]interface{}{
				"cart_item_id": cartItemID,
			})
			return ErrCartItemNotFound
		}
		logger.Error("Failed to fetch cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return err
	}

	if cartItem.UserID != userID {
		logger.Warn("Cart item access denied: ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
			"owner_id":     cartItem.UserID,
		})
		return ErrCartItemNotFound
	}

	// Zero or negative quantity removes the line.
	if quantity <= 0 {
		return s.RemoveFromCart(userID, cartItemID)
	}

	perfume, err := s.perfumeRepo.FindByID(cartItem.PerfumeID)
	if err != nil {
		logger.Error("Failed to fetch perfume for stock check", err, map[string]interface{}{
			"cart_item_id": cartItemID,
			"perfume_id":   cartItem.PerfumeID,
		})
		return err
	}

	if perfume.Stock < quantity {
		logger.Warn("Cannot update cart item: insufficient stock", map[string]interface{}{
			"cart_item_id": cartItemID,
			"requested":    quantity,
			"available":    perfume.Stock,
		})
		return &StockError{PerfumeID: perfume.ID, Available: perfume.Stock}
	}

	cartItem.Quantity = quantity
	if err := s.cartRepo.Update(cartItem); err != nil {
		logger.Error("Failed to update cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return err
	}

	logger.Info("Cart item updated successfully", map[string]interface{}{
		"cart_item_id": cartItemID,
	})
	return nil
}

func (s *cartService) RemoveFromCart(userID, cartItemID uint) error {
	logger.Info("Removing cart item", map[string]interface{}{
		"user_id":      userID,
		"cart_item_id": cartItemID,
	})

	cartItem, err := s.cartRepo.FindByID(cartItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Cart item not found for removal", map[string]interface{}{
				"cart_item_id": cartItemID,
			})
			return ErrCartItemNotFound
		}
		logger.Error("Failed to fetch cart item for removal", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return err
	}

	if cartItem.UserID != userID {
		logger.Warn("Cart item removal denied: ownership mismatch", map[string]interface{}{
			"user_id":      userID,
			"cart_item_id": cartItemID,
			"owner_id":     cartItem.UserID,
		})
		return ErrCartItemNotFound
	}

	if err := s.cartRepo.Delete(cartItemID); err != nil {
		logger.Error("Failed to delete cart item", err, map[string]interface{}{
			"cart_item_id": cartItemID,
		})
		return err
	}

	logger.Info("Cart item removed", map[string]interface{}{
		"cart_item_id": cartItemID,
	})
	return nil
}

func (s *cartService) ClearCart(userID uint) error {
	logger.Info("Clearing user cart", map[string]interface{}{
		"user_id": userID,
	})

	if err := s.cartRepo.DeleteByUserID(userID); err != nil {
		logger.Error("Failed to clear cart", err, map[string]interface{}{
			"user_id": userID,
		})
		return err
	}

	logger.Info("User cart cleared", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}
