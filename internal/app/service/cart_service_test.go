package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/internal/db"
)

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.User, *model.Perfume) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	cartRepo := repository.NewCartRepository(testDB)
	perfumeRepo := repository.NewPerfumeRepository(testDB)
	cartService := NewCartService(cartRepo, perfumeRepo)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		FirstName:    "Test",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	category := &model.Category{Name: "Eau de Parfum"}
	testDB.Create(category)
	brand := &model.Brand{Name: "Dior"}
	testDB.Create(brand)

	perfume := &model.Perfume{
		Name:       "Sauvage",
		BrandID:    brand.ID,
		CategoryID: category.ID,
		Price:      decimal.RequireFromString("120.00"),
		Stock:      5,
		IsActive:   true,
	}
	testDB.Create(perfume)

	return cartService, testDB, user, perfume
}

func TestCartService_AddToCart_Success(t *testing.T) {
	cartService, _, user, perfume := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, perfume.ID, 2)
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, 2, item.Quantity)
}

func TestCartService_AddToCart_MergesExistingLine(t *testing.T) {
	cartService, _, user, perfume := setupCartServiceTest(t)

	first, err := cartService.AddToCart(user.ID, perfume.ID, 2)
	require.NoError(t, err)

	second, err := cartService.AddToCart(user.ID, perfume.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)
}

func TestCartService_AddToCart_CumulativeStockCheck(t *testing.T) {
	cartService, _, user, perfume := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, perfume.ID, 4)
	require.NoError(t, err)

	// 4 already in the cart, only 5 on the shelf
	_, err = cartService.AddToCart(user.ID, perfume.ID, 2)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Available)
}

func TestCartService_AddToCart_PerfumeNotFound(t *testing.T) {
	cartService, _, user, _ := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrPerfumeNotFound)
}

func TestCartService_AddToCart_InactivePerfume(t *testing.T) {
	cartService, testDB, user, perfume := setupCartServiceTest(t)

	testDB.Model(perfume).Update("is_active", false)

	// A delisted perfume reads the same as a missing one
	_, err := cartService.AddToCart(user.ID, perfume.ID, 1)
	assert.ErrorIs(t, err, ErrPerfumeNotFound)
}

func TestCartService_AddToCart_AfterRemoveReAdds(t *testing.T) {
	cartService, _, user, perfume := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, perfume.ID, 2)
	require.NoError(t, err)
	require.NoError(t, cartService.RemoveFromCart(user.ID, item.ID))

	// The unique (user, perfume) index must not be held by the removed row
	again, err := cartService.AddToCart(user.ID, perfume.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Quantity)
}

func TestCartService_AddToCart_AfterClearReAdds(t *testing.T) {
	cartService, _, user, perfume := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, perfume.ID, 3)
	require.NoError(t, err)
	require.NoError(t, cartService.ClearCart(user.ID))

	again, err := cartService.AddToCart(user.ID, perfume.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Quantity)
}

func TestCartService_GetUserCart_Summary(t *testing.T) {
	cartService, testDB, user, perfume := setupCartServiceTest(t)

	category := &model.Category{Name: "Eau de Toilette"}
	testDB.Create(category)
	brand := &model.Brand{Name: "Versace"}
	testDB.Create(brand)
	other := &model.Perfume{
		Name:       "Eros",
		BrandID:    brand.ID,
		CategoryID: category.ID,
		Price:      decimal.RequireFromString("95.00"),
		Stock:      10,
		IsActive:   true,
	}
	testDB.Create(other)

	_, err := cartService.AddToCart(user.ID, perfume.ID, 2) // 240.00
	require.NoError(t, err)
	_, err = cartService.AddToCart(user.ID, other.ID, 1) // 95.00
	require.NoError(t, err)

	summary, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 2)
	assert.Equal(t, 3, summary.TotalItems)
	assert.True(t, summary.Subtotal.Equal(decimal.RequireFromString("335.00")), "subtotal %s", summary.Subtotal)
}

func TestCartService_GetUserCart_Empty(t *testing.T) {
	cartService, _, user, _ := setupCartServiceTest(t)

	summary, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 0)
	assert.Equal(t, 0, summary.TotalItems)
	assert.True(t, summary.Subtotal.IsZero())
}

func TestCartService_UpdateCartItem_Success(t *testing.T) {
	cartService, _, user, perfume := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, perfume.ID, 1)
	require.NoError(t, err)

	require.NoError(t, cartService.UpdateCartItem(user.ID, item.ID, 4))

	summary, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 4, summary.Items[0].Quantity)
}

func TestCartService_UpdateCartItem_ZeroQuantityRemoves(t *testing.T) {
	cartService, _, user, perfume := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, perfume.ID, 2)
	require.NoError(t, err)

	require.NoError(t, cartService.UpdateCartItem(user.ID, item.ID, 0))

	summary, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 0)
}

func TestCartService_UpdateCartItem_StockLimit(t *testing.T) {
	cartService, _, user, perfume := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, perfume.ID, 1)
	require.NoError(t, err)

	err = cartService.UpdateCartItem(user.ID, item.ID, 6)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestCartService_UpdateCartItem_OwnershipEnforced(t *testing.T) {
	cartService, testDB, user, perfume := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, perfume.ID, 1)
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", FirstName: "Other"}
	testDB.Create(other)

	err = cartService.UpdateCartItem(other.ID, item.ID, 2)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_RemoveFromCart(t *testing.T) {
	cartService, testDB, user, perfume := setupCartServiceTest(t)

	item, err := cartService.AddToCart(user.ID, perfume.ID, 1)
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", FirstName: "Other"}
	testDB.Create(other)

	err = cartService.RemoveFromCart(other.ID, item.ID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)

	require.NoError(t, cartService.RemoveFromCart(user.ID, item.ID))

	err = cartService.RemoveFromCart(user.ID, item.ID)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestCartService_ClearCart(t *testing.T) {
	cartService, _, user, perfume := setupCartServiceTest(t)

	_, err := cartService.AddToCart(user.ID, perfume.ID, 2)
	require.NoError(t, err)

	require.NoError(t, cartService.ClearCart(user.ID))

	summary, err := cartService.GetUserCart(user.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 0)
}
