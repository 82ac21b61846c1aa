package service

import (
	"errors"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrBrandNotFound    = errors.New("brand not found")
)

type CatalogService interface {
	ListCategories() ([]model.Category, error)
	GetCategoryBySlug(slug string) (*model.Category, error)
	CreateCategory(category *model.Category) error
	UpdateCategory(category *model.Category) error
	DeleteCategory(id uint) error

	ListBrands() ([]model.Brand, error)
	GetBrandBySlug(slug string) (*model.Brand, error)
	CreateBrand(brand *model.Brand) error
	UpdateBrand(brand *model.Brand) error
	DeleteBrand(id uint) error
}

type catalogService struct {
	categoryRepo repository.CategoryRepository
	brandRepo    repository.BrandRepository
}

func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	brandRepo repository.BrandRepository,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
	}
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	logger.Debug("Listing categories")

	categories, err := s.categoryRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}

	logger.Info("Categories listed successfully", map[string]interface{}{
		"count": len(categories),
	})
	return categories, nil
}

func (s *catalogService) GetCategoryBySlug(slug string) (*model.Category, error) {
	logger.Debug("Fetching category by slug", map[string]interface{}{
		"slug": slug,
	})

	category, err := s.categoryRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Category not found", map[string]interface{}{
				"slug": slug,
			})
			return nil, ErrCategoryNotFound
		}
		logger.Error("Failed to fetch category", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	return category, nil
}

func (s *catalogService) CreateCategory(category *model.Category) error {
	logger.Info("Creating category", map[string]interface{}{
		"name": category.Name,
	})

	if err := s.categoryRepo.Create(category); err != nil {
		logger.Error("Failed to create category", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}

	logger.Info("Category created successfully", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return nil
}

func (s *catalogService) UpdateCategory(category *model.Category) error {
	logger.Info("Updating category", map[string]interface{}{
		"category_id": category.ID,
	})

	if _, err := s.categoryRepo.FindByID(category.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	if err := s.categoryRepo.Update(category); err != nil {
		logger.Error("Failed to update category", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return err
	}

	logger.Info("Category updated successfully", map[string]interface{}{
		"category_id": category.ID,
	})
	return nil
}

func (s *catalogService) DeleteCategory(id uint) error {
	logger.Info("Deleting category", map[string]interface{}{
		"category_id": id,
	})

	if _, err := s.categoryRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	return s.categoryRepo.Delete(id)
}

func (s *catalogService) ListBrands() ([]model.Brand, error) {
	logger.Debug("Listing brands")

	brands, err := s.brandRepo.FindAll()
	if err != nil {
		logger.Error("Failed to list brands", err)
		return nil, err
	}

	logger.Info("Brands listed successfully", map[string]interface{}{
		"count": len(brands),
	})
	return brands, nil
}

func (s *catalogService) GetBrandBySlug(slug string) (*model.Brand, error) {
	logger.Debug("Fetching brand by slug", map[string]interface{}{
		"slug": slug,
	})

	brand, err := s.brandRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Brand not found", map[string]interface{}{
				"slug": slug,
			})
			return nil, ErrBrandNotFound
		}
		logger.Error("Failed to fetch brand", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	return brand, nil
}

func (s *catalogService) CreateBrand(brand *model.Brand) error {
	logger.Info("Creating brand", map[string]interface{}{
		"name": brand.Name,
	})

	if err := s.brandRepo.Create(brand); err != nil {
		logger.Error("Failed to create brand", err, map[string]interface{}{
			"name": brand.Name,
		})
		return err
	}

	logger.Info("Brand created successfully", map[string]interface{}{
		"brand_id": brand.ID,
		"slug":     brand.Slug,
	})
	return nil
}

func (s *catalogService) UpdateBrand(brand *model.Brand) error {
	logger.Info("Updating brand", map[string]interface{}{
		"brand_id": brand.ID,
	})

	if _, err := s.brandRepo.FindByID(brand.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBrandNotFound
		}
		return err
	}

	if err := s.brandRepo.Update(brand); err != nil {
		logger.Error("Failed to update brand", err, map[string]interface{}{
			"brand_id": brand.ID,
		})
		return err
	}

	logger.Info("Brand updated successfully", map[string]interface{}{
		"brand_id": brand.ID,
	})
	return nil
}

func (s *catalogService) DeleteBrand(id uint) error {
	logger.Info("Deleting brand", map[string]interface{}{
		"brand_id": id,
	})

	if _, err := s.brandRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBrandNotFound
		}
		return err
	}

	return s.brandRepo.Delete(id)
}
