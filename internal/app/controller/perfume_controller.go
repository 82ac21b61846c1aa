package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/service"
	apperrors "github.com/kinotiBot/PerfumesPlugApp/internal/errors"
	"github.com/kinotiBot/PerfumesPlugApp/internal/middleware"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 20

type PerfumeController struct {
	perfumeService service.PerfumeService
}

func NewPerfumeController(perfumeService service.PerfumeService) *PerfumeController {
	return &PerfumeController{
		perfumeService: perfumeService,
	}
}

type PerfumeRequest struct {
	Name          string  `json:"name" binding:"required"`
	Slug          string  `json:"slug"`
	BrandID       uint    `json:"brand_id" binding:"required"`
	CategoryID    uint    `json:"category_id" binding:"required"`
	Description   string  `json:"description"`
	Price         string  `json:"price" binding:"required"`
	DiscountPrice *string `json:"discount_price"`
	Stock         int     `json:"stock"`
	Gender        string  `json:"gender"`
	ImageURL      string  `json:"image_url"`
	IsFeatured    bool    `json:"is_featured"`
	IsActive      *bool   `json:"is_active"`
}

type PerfumeImageRequest struct {
	ImageURL  string `json:"image_url" binding:"required"`
	IsPrimary bool   `json:"is_primary"`
}

// parseFilter reads list filters from the query string. Unknown or
// malformed values are ignored rather than rejected.
func parseFilter(c *gin.Context) repository.PerfumeFilter {
	filter := repository.PerfumeFilter{
		CategorySlug: c.Query("category"),
		BrandSlug:    c.Query("brand"),
		Search:       c.Query("search"),
	}

	if gender := c.Query("gender"); gender != "" {
		g := model.Gender(gender)
		filter.Gender = &g
	}
	if featured := c.Query("featured"); featured != "" {
		value := featured == "true" || featured == "1"
		filter.Featured = &value
	}
	if onSale := c.Query("on_sale"); onSale != "" {
		value := onSale == "true" || onSale == "1"
		filter.OnSale = &value
	}
	if inStock := c.Query("in_stock"); inStock != "" {
		value := inStock == "true" || inStock == "1"
		filter.InStock = &value
	}
	if minPrice := c.Query("min_price"); minPrice != "" {
		if d, err := decimal.NewFromString(minPrice); err == nil {
			filter.MinPrice = &d
		}
	}
	if maxPrice := c.Query("max_price"); maxPrice != "" {
		if d, err := decimal.NewFromString(maxPrice); err == nil {
			filter.MaxPrice = &d
		}
	}

	filter.SortBy = repository.PerfumeSort(c.DefaultQuery("sort", string(repository.PerfumeSortCreatedAt)))
	filter.SortAscending = c.Query("order") == "asc"

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultPageSize)))
	if pageSize < 1 || pageSize > 100 {
		pageSize = defaultPageSize
	}
	filter.Limit = pageSize
	filter.Offset = (page - 1) * pageSize

	return filter
}

// GetPerfumes lists perfumes with filters and pagination
// GET /api/perfumes/
func (ctrl *PerfumeController) GetPerfumes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	filter := parseFilter(c)

	// Inactive perfumes stay hidden from the public listing.
	if middleware.IsStaff(c) && c.Query("include_inactive") == "true" {
		filter.IncludeInactive = true
	}

	perfumes, total, err := ctrl.perfumeService.ListPerfumes(filter)
	if err != nil {
		log.Error("Failed to fetch perfumes", err)
		apperrors.InternalError(c, "Failed to fetch perfumes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"perfumes":  perfumes,
		"count":     len(perfumes),
		"total":     total,
		"page_size": filter.Limit,
	})
}

// GetFeaturedPerfumes lists featured perfumes
// GET /api/perfumes/featured/
func (ctrl *PerfumeController) GetFeaturedPerfumes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit < 1 || limit > 50 {
		limit = 8
	}

	perfumes, err := ctrl.perfumeService.GetFeaturedPerfumes(limit)
	if err != nil {
		log.Error("Failed to fetch featured perfumes", err)
		apperrors.InternalError(c, "Failed to fetch featured perfumes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"perfumes": perfumes,
		"count":    len(perfumes),
	})
}

// GetOnSalePerfumes lists discounted perfumes
// GET /api/perfumes/on_sale/
func (ctrl *PerfumeController) GetOnSalePerfumes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if limit < 1 || limit > 50 {
		limit = 8
	}

	perfumes, err := ctrl.perfumeService.GetOnSalePerfumes(limit)
	if err != nil {
		log.Error("Failed to fetch on-sale perfumes", err)
		apperrors.InternalError(c, "Failed to fetch on-sale perfumes")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"perfumes": perfumes,
		"count":    len(perfumes),
	})
}

// GetPerfumeBySlug returns one perfume
// GET /api/perfumes/:slug/
func (ctrl *PerfumeController) GetPerfumeBySlug(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	slug := c.Param("slug")

	perfume, err := ctrl.perfumeService.GetPerfumeBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrPerfumeNotFound) {
			apperrors.NotFound(c, apperrors.PerfumeNotFound, "Perfume not found")
			return
		}
		log.Error("Failed to fetch perfume", err, map[string]interface{}{
			"slug": slug,
		})
		apperrors.InternalError(c, "Failed to fetch perfume")
		return
	}

	if !perfume.IsActive && !middleware.IsStaff(c) {
		apperrors.NotFound(c, apperrors.PerfumeNotFound, "Perfume not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"perfume": perfume,
	})
}

func perfumeFromRequest(req PerfumeRequest) (*model.Perfume, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return nil, err
	}

	perfume := &model.Perfume{
		Name:        req.Name,
		Slug:        req.Slug,
		BrandID:     req.BrandID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Price:       price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		IsFeatured:  req.IsFeatured,
		IsActive:    true,
	}

	if req.DiscountPrice != nil {
		discount, err := decimal.NewFromString(*req.DiscountPrice)
		if err != nil {
			return nil, err
		}
		perfume.DiscountPrice = &discount
	}
	if req.Gender != "" {
		perfume.Gender = model.Gender(req.Gender)
	} else {
		perfume.Gender = model.GenderUnisex
	}
	if req.IsActive != nil {
		perfume.IsActive = *req.IsActive
	}
	return perfume, nil
}

// CreatePerfume creates a perfume (Admin only)
// POST /api/perfumes/
func (ctrl *PerfumeController) CreatePerfume(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PerfumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create perfume request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Name, brand, category and price are required")
		return
	}

	perfume, err := perfumeFromRequest(req)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid price value")
		return
	}

	if err := ctrl.perfumeService.CreatePerfume(perfume); err != nil {
		log.Error("Failed to create perfume", err, map[string]interface{}{
			"name": req.Name,
		})
		apperrors.ParseAndRespond(c, http.StatusConflict, err, "create perfume")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Perfume created successfully",
		"perfume": perfume,
	})
}

// UpdatePerfume updates a perfume (Admin only)
// PUT /api/perfumes/:id/
func (ctrl *PerfumeController) UpdatePerfume(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req PerfumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Name, brand, category and price are required")
		return
	}

	perfume, err := perfumeFromRequest(req)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid price value")
		return
	}
	perfume.ID = id

	if err := ctrl.perfumeService.UpdatePerfume(perfume); err != nil {
		if errors.Is(err, service.ErrPerfumeNotFound) {
			apperrors.NotFound(c, apperrors.PerfumeNotFound, "Perfume not found")
			return
		}
		log.Error("Failed to update perfume", err, map[string]interface{}{
			"perfume_id": id,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "update perfume")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Perfume updated successfully",
		"perfume": perfume,
	})
}

// DeletePerfume removes a perfume (Admin only)
// DELETE /api/perfumes/:id/
func (ctrl *PerfumeController) DeletePerfume(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.perfumeService.DeletePerfume(id); err != nil {
		if errors.Is(err, service.ErrPerfumeNotFound) {
			apperrors.NotFound(c, apperrors.PerfumeNotFound, "Perfume not found")
			return
		}
		log.Error("Failed to delete perfume", err, map[string]interface{}{
			"perfume_id": id,
		})
		apperrors.InternalError(c, "Failed to delete perfume")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Perfume deleted successfully",
	})
}

// AddPerfumeImage attaches an image to a perfume (Admin only)
// POST /api/perfumes/:id/images/
func (ctrl *PerfumeController) AddPerfumeImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req PerfumeImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Image URL is required")
		return
	}

	image, err := ctrl.perfumeService.AddPerfumeImage(id, req.ImageURL, req.IsPrimary)
	if err != nil {
		if errors.Is(err, service.ErrPerfumeNotFound) {
			apperrors.NotFound(c, apperrors.PerfumeNotFound, "Perfume not found")
			return
		}
		log.Error("Failed to add perfume image", err, map[string]interface{}{
			"perfume_id": id,
		})
		apperrors.InternalError(c, "Failed to add perfume image")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Image added successfully",
		"image":   image,
	})
}
