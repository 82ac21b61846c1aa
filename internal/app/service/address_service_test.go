package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/internal/db"
)

func setupAddressServiceTest(t *testing.T) (AddressService, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	addressRepo := repository.NewAddressRepository(testDB)
	addressService := NewAddressService(addressRepo)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hash",
		FirstName:    "Test",
	}
	testDB.Create(user)

	return addressService, testDB, user
}

func TestAddressService_CreateAndList(t *testing.T) {
	addressService, _, user := setupAddressServiceTest(t)

	home := &model.Address{UserID: user.ID, Label: "Home", Line: "12 Main Street", City: "Kigali"}
	require.NoError(t, addressService.CreateAddress(home))
	assert.NotZero(t, home.ID)

	office := &model.Address{UserID: user.ID, Label: "Office", Line: "1 Work Plaza", City: "Kigali", IsDefault: true}
	require.NoError(t, addressService.CreateAddress(office))

	addresses, err := addressService.GetUserAddresses(user.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)

	// Default address sorts first
	assert.Equal(t, "Office", addresses[0].Label)
}

func TestAddressService_SetDefault_SwapsFlag(t *testing.T) {
	addressService, testDB, user := setupAddressServiceTest(t)

	first := &model.Address{UserID: user.ID, Line: "12 Main Street", City: "Kigali", IsDefault: true}
	require.NoError(t, addressService.CreateAddress(first))
	second := &model.Address{UserID: user.ID, Line: "1 Work Plaza", City: "Kigali"}
	require.NoError(t, addressService.CreateAddress(second))

	require.NoError(t, addressService.SetDefaultAddress(user.ID, second.ID))

	var addresses []model.Address
	require.NoError(t, testDB.Where("user_id = ?", user.ID).Find(&addresses).Error)
	for _, address := range addresses {
		if address.ID == second.ID {
			assert.True(t, address.IsDefault)
		} else {
			assert.False(t, address.IsDefault)
		}
	}
}

func TestAddressService_OwnershipEnforced(t *testing.T) {
	addressService, testDB, user := setupAddressServiceTest(t)

	address := &model.Address{UserID: user.ID, Line: "12 Main Street", City: "Kigali"}
	require.NoError(t, addressService.CreateAddress(address))

	other := &model.User{Email: "other@example.com", PasswordHash: "hash", FirstName: "Other"}
	testDB.Create(other)

	_, err := addressService.GetAddressByID(other.ID, address.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)

	err = addressService.DeleteAddress(other.ID, address.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)

	err = addressService.SetDefaultAddress(other.ID, address.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}

func TestAddressService_UpdateAndDelete(t *testing.T) {
	addressService, _, user := setupAddressServiceTest(t)

	address := &model.Address{UserID: user.ID, Line: "12 Main Street", City: "Kigali"}
	require.NoError(t, addressService.CreateAddress(address))

	address.City = "Huye"
	require.NoError(t, addressService.UpdateAddress(user.ID, address))

	fetched, err := addressService.GetAddressByID(user.ID, address.ID)
	require.NoError(t, err)
	assert.Equal(t, "Huye", fetched.City)

	require.NoError(t, addressService.DeleteAddress(user.ID, address.ID))

	_, err = addressService.GetAddressByID(user.ID, address.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
}
