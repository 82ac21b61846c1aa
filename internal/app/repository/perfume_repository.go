package repository

import (
	"fmt"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PerfumeSort string

const (
	PerfumeSortPrice     PerfumeSort = "price"
	PerfumeSortCreatedAt PerfumeSort = "created_at"
	PerfumeSortName      PerfumeSort = "name"
)

type PerfumeFilter struct {
	CategorySlug    string
	BrandSlug       string
	Gender          *model.Gender
	Featured        *bool
	OnSale          *bool
	InStock         *bool
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	Search          string
	SortBy          PerfumeSort
	SortAscending   bool
	Limit           int
	Offset          int
	IncludeInactive bool
}

type PerfumeRepository interface {
	Create(perfume *model.Perfume) error
	FindWithFilter(filter PerfumeFilter) ([]model.Perfume, int64, error)
	FindByID(id uint) (*model.Perfume, error)
	FindBySlug(slug string) (*model.Perfume, error)
	Update(perfume *model.Perfume) error
	Delete(id uint) error
	AddImage(image *model.PerfumeImage) error
}

type perfumeRepository struct {
	db *gorm.DB
}

func NewPerfumeRepository(db *gorm.DB) PerfumeRepository {
	return &perfumeRepository{db: db}
}

func (r *perfumeRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Perfume{}).
		Preload("Brand").
		Preload("Category").
		Preload("Images")
}

func (r *perfumeRepository) Create(perfume *model.Perfume) error {
	logger.Debug("Creating perfume in database", map[string]interface{}{
		"name":        perfume.Name,
		"brand_id":    perfume.BrandID,
		"category_id": perfume.CategoryID,
	})

	if err := r.db.Create(perfume).Error; err != nil {
		logger.Error("Failed to create perfume in database", err, map[string]interface{}{
			"name":        perfume.Name,
			"brand_id":    perfume.BrandID,
			"category_id": perfume.CategoryID,
		})
		return err
	}

	logger.Debug("Perfume created in database", map[string]interface{}{
		"perfume_id": perfume.ID,
		"name":       perfume.Name,
		"slug":       perfume.Slug,
	})
	return nil
}

func (r *perfumeRepository) applyFilter(query *gorm.DB, filter PerfumeFilter) *gorm.DB {
	if !filter.IncludeInactive {
		query = query.Where("perfumes.is_active = ?", true)
	}

	if filter.CategorySlug != "" {
		query = query.Joins("JOIN categories ON categories.id = perfumes.category_id").
			Where("categories.slug = ?", filter.CategorySlug)
	}

	if filter.BrandSlug != "" {
		query = query.Joins("JOIN brands ON brands.id = perfumes.brand_id").
			Where("brands.slug = ?", filter.BrandSlug)
	}

	if filter.Gender != nil {
		query = query.Where("perfumes.gender = ?", *filter.Gender)
	}

	if filter.Featured != nil {
		query = query.Where("perfumes.is_featured = ?", *filter.Featured)
	}

	if filter.OnSale != nil {
		if *filter.OnSale {
			query = query.Where("perfumes.discount_price IS NOT NULL AND perfumes.discount_price < perfumes.price")
		} else {
			query = query.Where("perfumes.discount_price IS NULL OR perfumes.discount_price >= perfumes.price")
		}
	}

	if filter.InStock != nil {
		if *filter.InStock {
			query = query.Where("perfumes.stock > 0")
		} else {
			query = query.Where("perfumes.stock <= 0")
		}
	}

	if filter.MinPrice != nil {
		query = query.Where("perfumes.price >= ?", *filter.MinPrice)
	}

	if filter.MaxPrice != nil {
		query = query.Where("perfumes.price <= ?", *filter.MaxPrice)
	}

	if filter.Search != "" {
		// Subqueries rather than joins: the category/brand slug filters above may
		// already have joined those tables.
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where(
			"perfumes.name LIKE ? OR perfumes.description LIKE ?"+
				" OR perfumes.brand_id IN (SELECT id FROM brands WHERE name LIKE ?)"+
				" OR perfumes.category_id IN (SELECT id FROM categories WHERE name LIKE ?)",
			like, like, like, like,
		)
	}

	return query
}

func (r *perfumeRepository) FindWithFilter(filter PerfumeFilter) ([]model.Perfume, int64, error) {
	logger.Debug("Finding perfumes with filter", map[string]interface{}{
		"category":  filter.CategorySlug,
		"brand":     filter.BrandSlug,
		"gender":    filter.Gender,
		"featured":  filter.Featured,
		"on_sale":   filter.OnSale,
		"in_stock":  filter.InStock,
		"search":    filter.Search,
		"sort_by":   filter.SortBy,
		"ascending": filter.SortAscending,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})

	var total int64
	countQuery := r.applyFilter(r.db.Model(&model.Perfume{}), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		logger.Error("Failed to count perfumes with filter", err, map[string]interface{}{
			"category": filter.CategorySlug,
			"brand":    filter.BrandSlug,
		})
		return nil, 0, err
	}

	query := r.applyFilter(r.baseQuery(), filter)

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case PerfumeSortPrice:
		query = query.Order("perfumes.price " + direction)
	case PerfumeSortName:
		query = query.Order("perfumes.name " + direction)
	case PerfumeSortCreatedAt:
		fallthrough
	default:
		query = query.Order("perfumes.created_at " + direction)
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var perfumes []model.Perfume
	if err := query.Find(&perfumes).Error; err != nil {
		logger.Error("Failed to find perfumes with filter", err, map[string]interface{}{
			"category": filter.CategorySlug,
			"brand":    filter.BrandSlug,
			"search":   filter.Search,
		})
		return nil, 0, err
	}

	logger.Debug("Perfumes found with filter", map[string]interface{}{
		"count": len(perfumes),
		"total": total,
	})
	return perfumes, total, nil
}

func (r *perfumeRepository) FindByID(id uint) (*model.Perfume, error) {
	logger.Debug("Finding perfume by ID in database", map[string]interface{}{
		"perfume_id": id,
	})

	var perfume model.Perfume
	if err := r.baseQuery().First(&perfume, id).Error; err != nil {
		logger.Error("Failed to find perfume by ID in database", err, map[string]interface{}{
			"perfume_id": id,
		})
		return nil, err
	}

	logger.Debug("Perfume found by ID in database", map[string]interface{}{
		"perfume_id": perfume.ID,
		"name":       perfume.Name,
	})
	return &perfume, nil
}

func (r *perfumeRepository) FindBySlug(slug string) (*model.Perfume, error) {
	logger.Debug("Finding perfume by slug in database", map[string]interface{}{
		"slug": slug,
	})

	var perfume model.Perfume
	if err := r.baseQuery().Where("perfumes.slug = ?", slug).First(&perfume).Error; err != nil {
		logger.Error("Failed to find perfume by slug in database", err, map[string]interface{}{
			"slug": slug,
		})
		return nil, err
	}

	logger.Debug("Perfume found by slug in database", map[string]interface{}{
		"perfume_id": perfume.ID,
		"slug":       perfume.Slug,
	})
	return &perfume, nil
}

func (r *perfumeRepository) Update(perfume *model.Perfume) error {
	logger.Debug("Updating perfume in database", map[string]interface{}{
		"perfume_id": perfume.ID,
		"name":       perfume.Name,
	})

	if err := r.db.Save(perfume).Error; err != nil {
		logger.Error("Failed to update perfume in database", err, map[string]interface{}{
			"perfume_id": perfume.ID,
			"name":       perfume.Name,
		})
		return err
	}

	logger.Debug("Perfume updated in database", map[string]interface{}{
		"perfume_id": perfume.ID,
		"name":       perfume.Name,
	})
	return nil
}

func (r *perfumeRepository) Delete(id uint) error {
	logger.Debug("Deleting perfume from database", map[string]interface{}{
		"perfume_id": id,
	})

	if err := r.db.Delete(&model.Perfume{}, id).Error; err != nil {
		logger.Error("Failed to delete perfume from database", err, map[string]interface{}{
			"perfume_id": id,
		})
		return err
	}

	logger.Debug("Perfume deleted from database", map[string]interface{}{
		"perfume_id": id,
	})
	return nil
}

func (r *perfumeRepository) AddImage(image *model.PerfumeImage) error {
	logger.Debug("Adding perfume image in database", map[string]interface{}{
		"perfume_id": image.PerfumeID,
		"is_primary": image.IsPrimary,
	})

	if err := r.db.Create(image).Error; err != nil {
		logger.Error("Failed to add perfume image in database", err, map[string]interface{}{
			"perfume_id": image.PerfumeID,
		})
		return err
	}

	logger.Debug("Perfume image added in database", map[string]interface{}{
		"image_id":   image.ID,
		"perfume_id": image.PerfumeID,
	})
	return nil
}
