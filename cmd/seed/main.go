package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kinotiBot/PerfumesPlugApp/config"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/db"
	"github.com/kinotiBot/PerfumesPlugApp/pkg/util"
)

// Seeds the catalog with a starter set of categories, brands and
// perfumes, and creates the initial admin account. Safe to run more
// than once: existing rows are matched by their unique columns and
// left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(db.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	gdb := db.GetDB()

	categories := seedCategories(gdb)
	brands := seedBrands(gdb)
	seedPerfumes(gdb, categories, brands)
	seedAdminUser(gdb)

	fmt.Println("Seeding completed successfully!")
}

func seedCategories(gdb *gorm.DB) map[string]model.Category {
	names := []struct {
		name        string
		description string
	}{
		{"Eau de Parfum", "Long lasting fragrances with high oil concentration"},
		{"Eau de Toilette", "Lighter fragrances for everyday wear"},
		{"Body Mist", "Subtle scents for a fresh finish"},
		{"Gift Sets", "Curated fragrance bundles"},
	}

	result := make(map[string]model.Category, len(names))
	for _, entry := range names {
		category := model.Category{Name: entry.name, Description: entry.description}
		if err := gdb.Where(model.Category{Name: entry.name}).FirstOrCreate(&category).Error; err != nil {
			log.Fatal("Failed to seed category:", err)
		}
		result[entry.name] = category
		fmt.Printf("Category ready: %s (id=%d)\n", category.Name, category.ID)
	}
	return result
}

func seedBrands(gdb *gorm.DB) map[string]model.Brand {
	names := []struct {
		name        string
		description string
	}{
		{"Chanel", "French luxury fashion house"},
		{"Dior", "Parisian haute couture and perfumes"},
		{"Tom Ford", "American luxury fragrances"},
		{"Versace", "Italian fashion and fragrance house"},
		{"Armani", "Giorgio Armani beauty and fragrances"},
	}

	result := make(map[string]model.Brand, len(names))
	for _, entry := range names {
		brand := model.Brand{Name: entry.name, Description: entry.description}
		if err := gdb.Where(model.Brand{Name: entry.name}).FirstOrCreate(&brand).Error; err != nil {
			log.Fatal("Failed to seed brand:", err)
		}
		result[entry.name] = brand
		fmt.Printf("Brand ready: %s (id=%d)\n", brand.Name, brand.ID)
	}
	return result
}

func seedPerfumes(gdb *gorm.DB, categories map[string]model.Category, brands map[string]model.Brand) {
	discount := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}

	perfumes := []model.Perfume{
		{
			Name:        "Bleu de Chanel",
			BrandID:     brands["Chanel"].ID,
			CategoryID:  categories["Eau de Parfum"].ID,
			Description: "Woody aromatic fragrance with citrus and cedar notes",
			Price:       decimal.RequireFromString("145.00"),
			Stock:       25,
			Gender:      model.GenderMale,
			IsFeatured:  true,
			IsActive:    true,
		},
		{
			Name:          "Coco Mademoiselle",
			BrandID:       brands["Chanel"].ID,
			CategoryID:    categories["Eau de Parfum"].ID,
			Description:   "Oriental fragrance with orange, jasmine and patchouli",
			Price:         decimal.RequireFromString("160.00"),
			DiscountPrice: discount("135.00"),
			Stock:         18,
			Gender:        model.GenderFemale,
			IsFeatured:    true,
			IsActive:      true,
		},
		{
			Name:        "Sauvage",
			BrandID:     brands["Dior"].ID,
			CategoryID:  categories["Eau de Toilette"].ID,
			Description: "Fresh spicy fragrance with bergamot and ambroxan",
			Price:       decimal.RequireFromString("120.00"),
			Stock:       40,
			Gender:      model.GenderMale,
			IsFeatured:  true,
			IsActive:    true,
		},
		{
			Name:        "Miss Dior",
			BrandID:     brands["Dior"].ID,
			CategoryID:  categories["Eau de Parfum"].ID,
			Description: "Floral fragrance with iris, rose and lily of the valley",
			Price:       decimal.RequireFromString("130.00"),
			Stock:       15,
			Gender:      model.GenderFemale,
			IsActive:    true,
		},
		{
			Name:        "Black Orchid",
			BrandID:     brands["Tom Ford"].ID,
			CategoryID:  categories["Eau de Parfum"].ID,
			Description: "Rich dark accords of black truffle and orchid",
			Price:       decimal.RequireFromString("185.00"),
			Stock:       10,
			Gender:      model.GenderUnisex,
			IsFeatured:  true,
			IsActive:    true,
		},
		{
			Name:          "Eros",
			BrandID:       brands["Versace"].ID,
			CategoryID:    categories["Eau de Toilette"].ID,
			Description:   "Fresh mint, green apple and tonka bean",
			Price:         decimal.RequireFromString("95.00"),
			DiscountPrice: discount("79.00"),
			Stock:         30,
			Gender:        model.GenderMale,
			IsActive:      true,
		},
		{
			Name:        "Acqua di Gio",
			BrandID:     brands["Armani"].ID,
			CategoryID:  categories["Eau de Toilette"].ID,
			Description: "Aquatic citrus fragrance inspired by the Mediterranean",
			Price:       decimal.RequireFromString("105.00"),
			Stock:       35,
			Gender:      model.GenderMale,
			IsActive:    true,
		},
	}

	for _, perfume := range perfumes {
		record := perfume
		if err := gdb.Where(model.Perfume{Name: perfume.Name, BrandID: perfume.BrandID}).
			FirstOrCreate(&record).Error; err != nil {
			log.Fatal("Failed to seed perfume:", err)
		}
		fmt.Printf("Perfume ready: %s (id=%d)\n", record.Name, record.ID)
	}
}

func seedAdminUser(gdb *gorm.DB) {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@perfumesplug.com"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
		fmt.Println("ADMIN_PASSWORD not set, using default (change it immediately)")
	}

	var existing model.User
	err := gdb.Where("email = ?", email).First(&existing).Error
	if err == nil {
		fmt.Printf("Admin user already exists: %s\n", email)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Fatal("Failed to look up admin user:", err)
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		log.Fatal("Failed to hash admin password:", err)
	}

	admin := model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Admin",
		Role:         model.RoleAdmin,
	}
	if err := gdb.Create(&admin).Error; err != nil {
		log.Fatal("Failed to create admin user:", err)
	}

	fmt.Printf("Admin user created: %s (id=%d)\n", admin.Email, admin.ID)
}
