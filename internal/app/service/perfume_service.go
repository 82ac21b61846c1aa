package service

import (
	"errors"
	"fmt"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrPerfumeNotFound   = errors.New("perfume not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockError reports how many units remain when a request asks for more
// than the shelf holds. It unwraps to ErrInsufficientStock.
type StockError struct {
	PerfumeID uint
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("only %d items available", e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

type PerfumeService interface {
	ListPerfumes(filter repository.PerfumeFilter) ([]model.Perfume, int64, error)
	GetPerfumeBySlug(slug string) (*model.Perfume, error)
	GetFeaturedPerfumes(limit int) ([]model.Perfume, error)
	GetOnSalePerfumes(limit int) ([]model.Perfume, error)
	CreatePerfume(perfume *model.Perfume) error
	UpdatePerfume(perfume *model.Perfume) error
	DeletePerfume(id uint) error
	AddPerfumeImage(perfumeID uint, imageURL string, isPrimary bool) (*model.PerfumeImage, error)
}

type perfumeService struct {
	perfumeRepo repository.PerfumeRepository
}

func NewPerfumeService(perfumeRepo repository.PerfumeRepository) PerfumeService {
	return &perfumeService{perfumeRepo: perfumeRepo}
}

func (s *perfumeService) ListPerfumes(filter repository.PerfumeFilter) ([]model.Perfume, int64, error) {
	logger.Debug("Listing perfumes", map[string]interface{}{
		"category": filter.CategorySlug,
		"brand":    filter.BrandSlug,
		"search":   filter.Search,
	})

	perfumes, total, err := s.perfumeRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list perfumes", err, map[string]interface{}{
			"category": filter.CategorySlug,
			"brand":    filter.BrandSlug,
		})
		return nil, 0, err
	}

	logger.Info("Perfumes listed successfully", map[string]interface{}{
		"count": len(perfumes),
		"total": total,
	})
	return perfumes, total, nil
}

func (s *perfumeService) GetPerfumeBySlug(slug string) (*model.Perfume, error) {
	logger.Debug("Fetching perfume by slug", map[string]interface{}{
		"slug": slug,
	})

	perfume, err := s.perfumeRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Perfume not found by slug", map[string]interface{}{
				"slug": slug,
			})
			return nil, ErrPerfumeNotFound
		}
		logger.Error("Failed to fetch perfume by slug", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	return perfume, nil
}

func (s *perfumeService) GetFeaturedPerfumes(limit int) ([]model.Perfume, error) {
	featured := true
	perfumes, _, err := s.perfumeRepo.FindWithFilter(repository.PerfumeFilter{
		Featured: &featured,
		Limit:    limit,
	})
	if err != nil {
		logger.Error("Failed to fetch featured perfumes", err)
		return nil, err
	}
	return perfumes, nil
}

func (s *perfumeService) GetOnSalePerfumes(limit int) ([]model.Perfume, error) {
	onSale := true
	perfumes, _, err := s.perfumeRepo.FindWithFilter(repository.PerfumeFilter{
		OnSale: &onSale,
		Limit:  limit,
	})
	if err != nil {
		logger.Error("Failed to fetch on-sale perfumes", err)
		return nil, err
	}
	return perfumes, nil
}

func (s *perfumeService) CreatePerfume(perfume *model.Perfume) error {
	logger.Info("Creating perfume", map[string]interface{}{
		"name":        perfume.Name,
		"brand_id":    perfume.BrandID,
		"category_id": perfume.CategoryID,
	})

	if err := s.perfumeRepo.Create(perfume); err != nil {
		logger.Error("Failed to create perfume", err, map[string]interface{}{
			"name": perfume.Name,
		})
		return err
	}

	logger.Info("Perfume created successfully", map[string]interface{}{
		"perfume_id": perfume.ID,
		"slug":       perfume.Slug,
	})
	return nil
}

func (s *perfumeService) UpdatePerfume(perfume *model.Perfume) error {
	logger.Info("Updating perfume", map[string]interface{}{
		"perfume_id": perfume.ID,
	})

	if _, err := s.perfumeRepo.FindByID(perfume.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPerfumeNotFound
		}
		return err
	}

	if err := s.perfumeRepo.Update(perfume); err != nil {
		logger.Error("Failed to update perfume", err, map[string]interface{}{
			"perfume_id": perfume.ID,
		})
		return err
	}

	logger.Info("Perfume updated successfully", map[string]interface{}{
		"perfume_id": perfume.ID,
	})
	return nil
}

func (s *perfumeService) DeletePerfume(id uint) error {
	logger.Info("Deleting perfume", map[string]interface{}{
		"perfume_id": id,
	})

	if _, err := s.perfumeRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPerfumeNotFound
		}
		return err
	}

	return s.perfumeRepo.Delete(id)
}

func (s *perfumeService) AddPerfumeImage(perfumeID uint, imageURL string, isPrimary bool) (*model.PerfumeImage, error) {
	logger.Info("Adding perfume image", map[string]interface{}{
		"perfume_id": perfumeID,
		"is_primary": isPrimary,
	})

	if _, err := s.perfumeRepo.FindByID(perfumeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPerfumeNotFound
		}
		return nil, err
	}

	image := &model.PerfumeImage{
		PerfumeID: perfumeID,
		ImageURL:  imageURL,
		IsPrimary: isPrimary,
	}
	if err := s.perfumeRepo.AddImage(image); err != nil {
		logger.Error("Failed to add perfume image", err, map[string]interface{}{
			"perfume_id": perfumeID,
		})
		return nil, err
	}

	logger.Info("Perfume image added successfully", map[string]interface{}{
		"image_id":   image.ID,
		"perfume_id": perfumeID,
	})
	return image, nil
}
