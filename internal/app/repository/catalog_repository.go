package repository

import (
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(category *model.Category) error
	FindAll() ([]model.Category, error)
	FindByID(id uint) (*model.Category, error)
	FindBySlug(slug string) (*model.Category, error)
	Update(category *model.Category) error
	Delete(id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *model.Category) error {
	logger.Debug("Creating category in database", map[string]interface{}{
		"name": category.Name,
	})

	if err := r.db.Create(category).Error; err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}

	logger.Debug("Category created in database", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
		"slug":        category.Slug,
	})
	return nil
}

func (r *categoryRepository) FindAll() ([]model.Category, error) {
	logger.Debug("Finding all categories in database")

	var categories []model.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		logger.Error("Failed to find categories in database", err)
		return nil, err
	}

	logger.Debug("Categories found in database", map[string]interface{}{
		"count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) FindByID(id uint) (*model.Category, error) {
	logger.Debug("Finding category by ID in database", map[string]interface{}{
		"category_id": id,
	})

	var category model.Category
	if err := r.db.First(&category, id).Error; err != nil {
		logger.Error("Failed to find category by ID in database", err, map[string]interface{}{
			"category_id": id,
		})
		return nil, err
	}

	logger.Debug("Category found by ID in database", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})
	return &category, nil
}

func (r *categoryRepository) FindBySlug(slug string) (*model.Category, error) {
	logger.Debug("Finding category by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var category model.Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		logger.Error("Failed to find category by slug in database", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	logger.Debug("Category found by slug in database", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return &category, nil
}

func (r *categoryRepository) Update(category *model.Category) error {
	logger.Debug("Updating category in database", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})

	if err := r.db.Save(category).Error; err != nil {
		logger.Error("Failed to update category in database", err, map[string]interface{}{
			"category_id": category.ID,
		})
		return err
	}

	logger.Debug("Category updated in database", map[string]interface{}{
		"category_id": category.ID,
		"name":        category.Name,
	})
	return nil
}

func (r *categoryRepository) Delete(id uint) error {
	logger.Debug("Deleting category from database", map[string]interface{}{
		"category_id": id,
	})

	if err := r.db.Delete(&model.Category{}, id).Error; err != nil {
		logger.Error("Failed to delete category from database", err, map[string]interface{}{
			"category_id": id,
		})
		return err
	}

	logger.Debug("Category deleted from database", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

type BrandRepository interface {
	Create(brand *model.Brand) error
	FindAll() ([]model.Brand, error)
	FindByID(id uint) (*model.Brand, error)
	FindBySlug(slug string) (*model.Brand, error)
	Update(brand *model.Brand) error
	Delete(id uint) error
}

type brandRepository struct {
	db *gorm.DB
}

func NewBrandRepository(db *gorm.DB) BrandRepository {
	return &brandRepository{db: db}
}

func (r *brandRepository) Create(brand *model.Brand) error {
	logger.Debug("Creating brand in database", map[string]interface{}{
		"name": brand.Name,
	})

	if err := r.db.Create(brand).Error; err != nil {
		logger.Error("Failed to create brand in database", err, map[string]interface{}{
			"name": brand.Name,
		})
		return err
	}

	logger.Debug("Brand created in database", map[string]interface{}{
		"brand_id": brand.ID,
		"name":     brand.Name,
		"slug":     brand.Slug,
	})
	return nil
}

func (r *brandRepository) FindAll() ([]model.Brand, error) {
	logger.Debug("Finding all brands in database")

	var brands []model.Brand
	if err := r.db.Order("name ASC").Find(&brands).Error; err != nil {
		logger.Error("Failed to find brands in database", err)
		return nil, err
	}

	logger.Debug("Brands found in database", map[string]interface{}{
		"count": len(brands),
	})
	return brands, nil
}

func (r *brandRepository) FindByID(id uint) (*model.Brand, error) {
	logger.Debug("Finding brand by ID in database", map[string]interface{}{
		"brand_id": id,
	})

	var brand model.Brand
	if err := r.db.First(&brand, id).Error; err != nil {
		logger.Error("Failed to find brand by ID in database", err, map[string]interface{}{
			"brand_id": id,
		})
		return nil, err
	}

	logger.Debug("Brand found by ID in database", map[string]interface{}{
		"brand_id": brand.ID,
		"name":     brand.Name,
	})
	return &brand, nil
}

func (r *brandRepository) FindBySlug(slug string) (*model.Brand, error) {
	logger.Debug("Finding brand by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var brand model.Brand
	if err := r.db.Where("slug = ?", slug).First(&brand).Error; err != nil {
		logger.Error("Failed to find brand by slug in database", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	logger.Debug("Brand found by slug in database", map[string]interface{}{
		"brand_id": brand.ID,
		"slug":     brand.Slug,
	})
	return &brand, nil
}

func (r *brandRepository) Update(brand *model.Brand) error {
	logger.Debug("Updating brand in database", map[string]interface{}{
		"brand_id": brand.ID,
		"name":     brand.Name,
	})

	if err := r.db.Save(brand).Error; err != nil {
		logger.Error("Failed to update brand in database", err, map[string]interface{}{
			"brand_id": brand.ID,
		})
		return err
	}

	logger.Debug("Brand updated in database", map[string]interface{}{
		"brand_id": brand.ID,
		"name":     brand.Name,
	})
	return nil
}

func (r *brandRepository) Delete(id uint) error {
	logger.Debug("Deleting brand from database", map[string]interface{}{
		"brand_id": id,
	})

	if err := r.db.Delete(&model.Brand{}, id).Error; err != nil {
		logger.Error("Failed to delete brand from database", err, map[string]interface{}{
			"brand_id": id,
		})
		return err
	}

	logger.Debug("Brand deleted from database", map[string]interface{}{
		"brand_id": id,
	})
	return nil
}
