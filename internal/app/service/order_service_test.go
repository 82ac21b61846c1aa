package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kinotiBot/PerfumesPlugApp/config"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/internal/db"
)

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		TaxRate:               0.18,
		ShippingFee:           10.00,
		FreeShippingThreshold: 200.00,
	}
}

func setupOrderServiceTest(t *testing.T) (OrderService, *gorm.DB, *model.User, *model.Perfume, *model.Address) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	perfumeRepo := repository.NewPerfumeRepository(testDB)
	addressRepo := repository.NewAddressRepository(testDB)
	orderService := NewOrderService(orderRepo, cartRepo, perfumeRepo, addressRepo, testCheckoutConfig(), testDB)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		FirstName:    "Test",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	category := &model.Category{Name: "Eau de Parfum"}
	testDB.Create(category)
	brand := &model.Brand{Name: "Chanel"}
	testDB.Create(brand)

	perfume := &model.Perfume{
		Name:       "Bleu de Chanel",
		BrandID:    brand.ID,
		CategoryID: category.ID,
		Price:      decimal.RequireFromString("50.00"),
		Stock:      10,
		Gender:     model.GenderMale,
		IsActive:   true,
	}
	testDB.Create(perfume)

	address := &model.Address{
		UserID: user.ID,
		Line:   "12 Main Street",
		City:   "Kigali",
	}
	testDB.Create(address)

	return orderService, testDB, user, perfume, address
}

func addCartItem(t *testing.T, testDB *gorm.DB, userID, perfumeID uint, quantity int) {
	t.Helper()
	require.NoError(t, testDB.Create(&model.CartItem{
		UserID:    userID,
		PerfumeID: perfumeID,
		Quantity:  quantity,
	}).Error)
}

func TestOrderService_CreateOrderFromCart_Success(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)

	addCartItem(t, testDB, user.ID, perfume.ID, 2)

	order, err := orderService.CreateOrderFromCart(user.ID, CheckoutInput{
		PaymentMethod:     model.PaymentMobileMoney,
		ShippingAddressID: address.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	require.NotNil(t, order.UserID)
	assert.Equal(t, user.ID, *order.UserID)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.False(t, order.PaymentStatus)
	assert.Len(t, order.Items, 1)

	// subtotal 100.00, 18% tax, flat shipping below the free threshold
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("100.00")), "subtotal %s", order.Subtotal)
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("18.00")), "tax %s", order.Tax)
	assert.True(t, order.Shipping.Equal(decimal.RequireFromString("10.00")), "shipping %s", order.Shipping)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("128.00")), "total %s", order.Total)

	// Billing falls back to shipping when not given
	require.NotNil(t, order.BillingAddressID)
	assert.Equal(t, address.ID, *order.BillingAddressID)

	var updated model.Perfume
	testDB.First(&updated, perfume.ID)
	assert.Equal(t, 8, updated.Stock)

	items, _ := repository.NewCartRepository(testDB).FindByUserID(user.ID)
	assert.Len(t, items, 0)
}

func TestOrderService_CreateOrderFromCart_FreeShipping(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)

	addCartItem(t, testDB, user.ID, perfume.ID, 4) // subtotal 200.00

	order, err := orderService.CreateOrderFromCart(user.ID, CheckoutInput{
		PaymentMethod:     model.PaymentCreditCard,
		ShippingAddressID: address.ID,
	})
	require.NoError(t, err)
	assert.True(t, order.Shipping.IsZero(), "shipping %s", order.Shipping)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("236.00")), "total %s", order.Total)
}

func TestOrderService_CreateOrderFromCart_UsesDiscountPrice(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)

	discounted := decimal.RequireFromString("40.00")
	testDB.Model(perfume).Update("discount_price", discounted)

	addCartItem(t, testDB, user.ID, perfume.ID, 1)

	order, err := orderService.CreateOrderFromCart(user.ID, CheckoutInput{
		PaymentMethod:     model.PaymentPaypal,
		ShippingAddressID: address.ID,
	})
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(discounted), "price %s", order.Items[0].Price)
	assert.True(t, order.Subtotal.Equal(discounted), "subtotal %s", order.Subtotal)
}

func TestOrderService_CreateOrderFromCart_EmptyCart(t *testing.T) {
	orderService, _, user, _, address := setupOrderServiceTest(t)

	order, err := orderService.CreateOrderFromCart(user.ID, CheckoutInput{
		PaymentMethod:     model.PaymentMobileMoney,
		ShippingAddressID: address.ID,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrderFromCart_InsufficientStock(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)

	addCartItem(t, testDB, user.ID, perfume.ID, 100)

	order, err := orderService.CreateOrderFromCart(user.ID, CheckoutInput{
		PaymentMethod:     model.PaymentMobileMoney,
		ShippingAddressID: address.ID,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, order)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 10, stockErr.Available)

	// Nothing committed: stock and cart untouched
	var updated model.Perfume
	testDB.First(&updated, perfume.ID)
	assert.Equal(t, 10, updated.Stock)

	items, _ := repository.NewCartRepository(testDB).FindByUserID(user.ID)
	assert.Len(t, items, 1)
}

func TestOrderService_CreateOrderFromCart_InactivePerfume(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)

	addCartItem(t, testDB, user.ID, perfume.ID, 1)
	testDB.Model(perfume).Update("is_active", false)

	order, err := orderService.CreateOrderFromCart(user.ID, CheckoutInput{
		PaymentMethod:     model.PaymentMobileMoney,
		ShippingAddressID: address.ID,
	})
	assert.ErrorIs(t, err, ErrPerfumeNotFound)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrderFromCart_InvalidPaymentMethod(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)

	addCartItem(t, testDB, user.ID, perfume.ID, 1)

	order, err := orderService.CreateOrderFromCart(user.ID, CheckoutInput{
		PaymentMethod:     "barter",
		ShippingAddressID: address.ID,
	})
	assert.ErrorIs(t, err, ErrInvalidPaymentMethod)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrderFromCart_MissingShippingAddress(t *testing.T) {
	orderService, testDB, user, perfume, _ := setupOrderServiceTest(t)

	addCartItem(t, testDB, user.ID, perfume.ID, 1)

	order, err := orderService.CreateOrderFromCart(user.ID, CheckoutInput{
		PaymentMethod: model.PaymentMobileMoney,
	})
	assert.ErrorIs(t, err, ErrShippingAddressRequired)
	assert.Nil(t, order)
}

func TestOrderService_CreateOrderFromCart_ForeignAddress(t *testing.T) {
	orderService, testDB, user, perfume, _ := setupOrderServiceTest(t)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", FirstName: "Other"}
	testDB.Create(other)
	foreign := &model.Address{UserID: other.ID, Line: "9 Side Road", City: "Huye"}
	testDB.Create(foreign)

	addCartItem(t, testDB, user.ID, perfume.ID, 1)

	order, err := orderService.CreateOrderFromCart(user.ID, CheckoutInput{
		PaymentMethod:     model.PaymentMobileMoney,
		ShippingAddressID: foreign.ID,
	})
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.Nil(t, order)
}

func TestOrderService_CreateGuestOrder_Success(t *testing.T) {
	orderService, testDB, _, perfume, _ := setupOrderServiceTest(t)

	order, err := orderService.CreateGuestOrder(GuestCheckoutInput{
		Name:          "Jane Guest",
		Email:         "jane@example.com",
		Address:       "3 Hill Road",
		City:          "Kigali",
		PaymentMethod: model.PaymentCashOnDelivery,
		Items: []GuestItemInput{
			{PerfumeID: perfume.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, order.UserID)
	assert.True(t, order.IsGuest())
	assert.Equal(t, "Jane Guest", order.GuestName)
	assert.Equal(t, "jane@example.com", order.GuestEmail)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("150.00")), "subtotal %s", order.Subtotal)

	var updated model.Perfume
	testDB.First(&updated, perfume.ID)
	assert.Equal(t, 7, updated.Stock)
}

func TestOrderService_CreateGuestOrder_RejectsNonPositiveQuantity(t *testing.T) {
	orderService, testDB, _, perfume, _ := setupOrderServiceTest(t)

	for _, quantity := range []int{0, -1} {
		order, err := orderService.CreateGuestOrder(GuestCheckoutInput{
			Name:          "Jane Guest",
			Email:         "jane@example.com",
			Address:       "3 Hill Road",
			City:          "Kigali",
			PaymentMethod: model.PaymentCashOnDelivery,
			Items: []GuestItemInput{
				{PerfumeID: perfume.ID, Quantity: quantity},
			},
		})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
		assert.Nil(t, order)
	}

	// Nothing reserved on the failed attempts
	var updated model.Perfume
	testDB.First(&updated, perfume.ID)
	assert.Equal(t, 10, updated.Stock)
}

func TestOrderService_CreateGuestOrder_NoItems(t *testing.T) {
	orderService, _, _, _, _ := setupOrderServiceTest(t)

	order, err := orderService.CreateGuestOrder(GuestCheckoutInput{
		Name:          "Jane Guest",
		Email:         "jane@example.com",
		Address:       "3 Hill Road",
		City:          "Kigali",
		PaymentMethod: model.PaymentCashOnDelivery,
	})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, order)
}

func placeTestOrder(t *testing.T, orderService OrderService, testDB *gorm.DB, user *model.User, perfume *model.Perfume, address *model.Address, quantity int) *model.Order {
	t.Helper()
	addCartItem(t, testDB, user.ID, perfume.ID, quantity)
	order, err := orderService.CreateOrderFromCart(user.ID, CheckoutInput{
		PaymentMethod:     model.PaymentMobileMoney,
		ShippingAddressID: address.ID,
	})
	require.NoError(t, err)
	return order
}

func TestOrderService_UpdateOrderStatus_AllowedTransitions(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	for _, status := range []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusShipped,
		model.OrderStatusDelivered,
	} {
		updated, err := orderService.UpdateOrderStatus(user.ID, false, order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestOrderService_UpdateOrderStatus_SkippingStepRejected(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	_, err := orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusDelivered)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_UpdateOrderStatus_TerminalStates(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	_, err := orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)

	_, err = orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_UpdateOrderStatus_InvalidCode(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	_, err := orderService.UpdateOrderStatus(user.ID, false, order.ID, "Z")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderService_UpdateOrderStatus_SameStatusNoop(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	updated, err := orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, updated.Status)
}

func TestOrderService_UpdateOrderStatus_CancelRestoresStock(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 3)

	var afterCheckout model.Perfume
	testDB.First(&afterCheckout, perfume.ID)
	require.Equal(t, 7, afterCheckout.Stock)

	updated, err := orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, updated.Status)

	var restored model.Perfume
	testDB.First(&restored, perfume.ID)
	assert.Equal(t, 10, restored.Stock)
}

func TestOrderService_UpdateOrderStatus_DeliveredDecrementsStock(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 2)

	_, err := orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)
	_, err = orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusShipped)
	require.NoError(t, err)
	_, err = orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusDelivered)
	require.NoError(t, err)

	// Checkout already took 2, delivery takes 2 more
	var updated model.Perfume
	testDB.First(&updated, perfume.ID)
	assert.Equal(t, 6, updated.Stock)
}

func TestOrderService_UpdateOrderStatus_DeliveredToleratesShortStock(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 2)

	_, err := orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)
	_, err = orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusShipped)
	require.NoError(t, err)

	// Stock drained between shipment and delivery
	testDB.Model(&model.Perfume{}).Where("id = ?", perfume.ID).Update("stock", 1)

	updated, err := orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, updated.Status)

	// The guarded decrement is skipped rather than going negative
	var after model.Perfume
	testDB.First(&after, perfume.ID)
	assert.Equal(t, 1, after.Stock)
}

func TestOrderService_UpdatePaymentStatus(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)
	require.False(t, order.PaymentStatus)

	updated, err := orderService.UpdatePaymentStatus(user.ID, false, order.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.PaymentStatus)

	updated, err = orderService.UpdatePaymentStatus(user.ID, false, order.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.PaymentStatus)
}

func TestOrderService_UpdateOrderStatus_OwnershipEnforced(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", FirstName: "Other"}
	testDB.Create(other)

	_, err := orderService.UpdateOrderStatus(other.ID, false, order.ID, model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Staff may update anyone's order
	updated, err := orderService.UpdateOrderStatus(other.ID, true, order.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, updated.Status)
}

func TestOrderService_UpdatePaymentStatus_OwnershipEnforced(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", FirstName: "Other"}
	testDB.Create(other)

	_, err := orderService.UpdatePaymentStatus(other.ID, false, order.ID, true)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	updated, err := orderService.UpdatePaymentStatus(other.ID, true, order.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.PaymentStatus)
}

func TestOrderService_CancelOrder_RestoresStock(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 4)

	cancelled, err := orderService.CancelOrder(user.ID, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)

	var restored model.Perfume
	testDB.First(&restored, perfume.ID)
	assert.Equal(t, 10, restored.Stock)
}

func TestOrderService_CancelOrder_OnlyWhilePending(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	_, err := orderService.UpdateOrderStatus(user.ID, false, order.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)

	_, err = orderService.CancelOrder(user.ID, false, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotCancellable)
}

func TestOrderService_CancelOrder_OwnershipEnforced(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", FirstName: "Other"}
	testDB.Create(other)

	_, err := orderService.CancelOrder(other.ID, false, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// Staff may cancel anyone's pending order
	cancelled, err := orderService.CancelOrder(other.ID, true, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
}

func TestOrderService_GetOrders_ScopedToOwner(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", FirstName: "Other"}
	testDB.Create(other)
	otherAddress := &model.Address{UserID: other.ID, Line: "9 Side Road", City: "Huye"}
	testDB.Create(otherAddress)
	placeTestOrder(t, orderService, testDB, other, perfume, otherAddress, 1)

	own, total, err := orderService.GetOrders(user.ID, false, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, own, 1)
	require.NotNil(t, own[0].UserID)
	assert.Equal(t, user.ID, *own[0].UserID)

	all, total, err := orderService.GetOrders(user.ID, true, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)
}

func TestOrderService_GetOrders_StatusFilter(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	first := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)
	placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	_, err := orderService.UpdateOrderStatus(user.ID, false, first.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)

	status := model.OrderStatusConfirmed
	orders, total, err := orderService.GetOrders(user.ID, true, repository.OrderFilter{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, first.ID, orders[0].ID)
}

func TestOrderService_GetOrderByID_Ownership(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	found, err := orderService.GetOrderByID(user.ID, false, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", FirstName: "Other"}
	testDB.Create(other)

	_, err = orderService.GetOrderByID(other.ID, false, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	found, err = orderService.GetOrderByID(other.ID, true, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
}

func TestOrderService_GetOrderByNumber(t *testing.T) {
	orderService, testDB, user, perfume, address := setupOrderServiceTest(t)
	order := placeTestOrder(t, orderService, testDB, user, perfume, address, 1)

	found, err := orderService.GetOrderByNumber(order.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = orderService.GetOrderByNumber("ORD-DOESNOTEXIST")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
