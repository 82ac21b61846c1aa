package service

import (
	"errors"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
	"gorm.io/gorm"
)

var ErrAddressNotFound = errors.New("address not found")

type AddressService interface {
	GetUserAddresses(userID uint) ([]model.Address, error)
	GetAddressByID(userID, addressID uint) (*model.Address, error)
	CreateAddress(address *model.Address) error
	UpdateAddress(userID uint, address *model.Address) error
	DeleteAddress(userID, addressID uint) error
	SetDefaultAddress(userID, addressID uint) error
}

type addressService struct {
	addressRepo repository.AddressRepository
}

func NewAddressService(addressRepo repository.AddressRepository) AddressService {
	return &addressService{addressRepo: addressRepo}
}

func (s *addressService) GetUserAddresses(userID uint) ([]model.Address, error) {
	logger.Debug("Fetching user addresses", map[string]interface{}{
		"user_id": userID,
	})

	addresses, err := s.addressRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user addresses", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	return addresses, nil
}

// ownedAddress loads an address and checks ownership. A hidden address and a
// missing one are indistinguishable to the caller.
func (s *addressService) ownedAddress(userID, addressID uint) (*model.Address, error) {
	address, err := s.addressRepo.FindByID(addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Address not found", map[string]interface{}{
				"address_id": addressID,
			})
			return nil, ErrAddressNotFound
		}
		logger.Error("Failed to fetch address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return nil, err
	}

	if address.UserID != userID {
		logger.Warn("Address access denied: ownership mismatch", map[string]interface{}{
			"user_id":    userID,
			"address_id": addressID,
			"owner_id":   address.UserID,
		})
		return nil, ErrAddressNotFound
	}
	return address, nil
}

func (s *addressService) GetAddressByID(userID, addressID uint) (*model.Address, error) {
	return s.ownedAddress(userID, addressID)
}

func (s *addressService) CreateAddress(address *model.Address) error {
	logger.Info("Creating address", map[string]interface{}{
		"user_id": address.UserID,
		"label":   address.Label,
	})

	if err := s.addressRepo.Create(address); err != nil {
		logger.Error("Failed to create address", err, map[string]interface{}{
			"user_id": address.UserID,
		})
		return err
	}

	if address.IsDefault {
		if err := s.addressRepo.SetDefault(address.UserID, address.ID); err != nil {
			return err
		}
	}

	logger.Info("Address created successfully", map[string]interface{}{
		"address_id": address.ID,
		"user_id":    address.UserID,
	})
	return nil
}

func (s *addressService) UpdateAddress(userID uint, address *model.Address) error {
	logger.Info("Updating address", map[string]interface{}{
		"user_id":    userID,
		"address_id": address.ID,
	})

	existing, err := s.ownedAddress(userID, address.ID)
	if err != nil {
		return err
	}

	address.UserID = existing.UserID
	if err := s.addressRepo.Update(address); err != nil {
		logger.Error("Failed to update address", err, map[string]interface{}{
			"address_id": address.ID,
		})
		return err
	}

	if address.IsDefault && !existing.IsDefault {
		if err := s.addressRepo.SetDefault(userID, address.ID); err != nil {
			return err
		}
	}

	logger.Info("Address updated successfully", map[string]interface{}{
		"address_id": address.ID,
	})
	return nil
}

func (s *addressService) DeleteAddress(userID, addressID uint) error {
	logger.Info("Deleting address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	if _, err := s.ownedAddress(userID, addressID); err != nil {
		return err
	}

	if err := s.addressRepo.Delete(addressID); err != nil {
		logger.Error("Failed to delete address", err, map[string]interface{}{
			"address_id": addressID,
		})
		return err
	}

	logger.Info("Address deleted successfully", map[string]interface{}{
		"address_id": addressID,
	})
	return nil
}

func (s *addressService) SetDefaultAddress(userID, addressID uint) error {
	logger.Info("Setting default address", map[string]interface{}{
		"user_id":    userID,
		"address_id": addressID,
	})

	if _, err := s.ownedAddress(userID, addressID); err != nil {
		return err
	}

	return s.addressRepo.SetDefault(userID, addressID)
}
