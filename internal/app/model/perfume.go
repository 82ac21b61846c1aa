package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kinotiBot/PerfumesPlugApp/pkg/util"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderUnisex Gender = "U"
)

type Perfume struct {
	ID            uint             `gorm:"primarykey" json:"id"`
	Name          string           `gorm:"not null" json:"name"`
	Slug          string           `gorm:"uniqueIndex;not null" json:"slug"`
	BrandID       uint             `gorm:"not null;index" json:"brand_id"`
	CategoryID    uint             `gorm:"not null;index" json:"category_id"`
	Description   string           `gorm:"type:text" json:"description"`
	Price         decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	DiscountPrice *decimal.Decimal `gorm:"type:decimal(10,2)" json:"discount_price,omitempty"`
	Stock         int              `gorm:"not null;default:0" json:"stock"`
	Gender        Gender           `gorm:"type:varchar(1);default:'U'" json:"gender"`
	ImageURL      string           `json:"image_url"`
	IsFeatured    bool             `gorm:"default:false" json:"is_featured"`
	// No column default: gorm would skip a false value at insert and the
	// default would silently flip it back to active.
	IsActive  bool           `gorm:"not null" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Brand    Brand          `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Category Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Images   []PerfumeImage `gorm:"foreignKey:PerfumeID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

func (Perfume) TableName() string {
	return "perfumes"
}

// BeforeSave derives the slug from the brand and perfume names when none was
// given. The brand prefix keeps same-named perfumes from different houses
// from colliding on the unique index.
func (p *Perfume) BeforeSave(tx *gorm.DB) error {
	if p.Slug != "" || p.Name == "" {
		return nil
	}
	brandName := p.Brand.Name
	if brandName == "" && p.BrandID != 0 {
		var brand Brand
		if err := tx.Select("name").First(&brand, p.BrandID).Error; err == nil {
			brandName = brand.Name
		}
	}
	p.Slug = util.Slugify(brandName, p.Name)
	return nil
}

// IsOnSale reports whether a discount price is set and strictly below the list price.
func (p *Perfume) IsOnSale() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// IsInStock reports whether any units remain.
func (p *Perfume) IsInStock() bool {
	return p.Stock > 0
}

// CurrentPrice is the price a buyer pays right now: the discount price when
// on sale, the list price otherwise.
func (p *Perfume) CurrentPrice() decimal.Decimal {
	if p.IsOnSale() {
		return *p.DiscountPrice
	}
	return p.Price
}

type PerfumeImage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	PerfumeID uint           `gorm:"not null;index" json:"perfume_id"`
	ImageURL  string         `gorm:"not null" json:"image_url"`
	IsPrimary bool           `gorm:"default:false" json:"is_primary"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Perfume Perfume `gorm:"foreignKey:PerfumeID" json:"-"`
}

func (PerfumeImage) TableName() string {
	return "perfume_images"
}
