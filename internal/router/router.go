package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kinotiBot/PerfumesPlugApp/config"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/controller"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/model"
	"github.com/kinotiBot/PerfumesPlugApp/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	addressController *controller.AddressController
	catalogController *controller.CatalogController
	perfumeController *controller.PerfumeController
	cartController    *controller.CartController
	orderController   *controller.OrderController
	uploadController  *controller.UploadController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	addressController *controller.AddressController,
	catalogController *controller.CatalogController,
	perfumeController *controller.PerfumeController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		addressController: addressController,
		catalogController: catalogController,
		perfumeController: perfumeController,
		cartController:    cartController,
		orderController:   orderController,
		uploadController:  uploadController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "PerfumesPlug API is running",
		})
	})

	api := router.Group("/api")
	{
		users := api.Group("/users")
		{
			users.POST("/register", r.authController.Register)
			users.POST("/login", r.authController.Login)
			users.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			users.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetProfile)
			users.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)

			addresses := users.Group("/addresses")
			addresses.Use(r.authMiddleware.Authenticate())
			{
				addresses.GET("", r.addressController.GetAddresses)
				addresses.POST("", r.addressController.CreateAddress)
				addresses.PUT("/:id", r.addressController.UpdateAddress)
				addresses.DELETE("/:id", r.addressController.DeleteAddress)
				addresses.PUT("/:id/default", r.addressController.SetDefaultAddress)
			}
		}

		categories := api.Group("/categories")
		{
			categories.GET("", r.catalogController.GetCategories)
			categories.GET("/:slug", r.catalogController.GetCategoryBySlug)
			categories.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleAdmin)),
				r.catalogController.CreateCategory,
			)
			categories.PUT("/:slug",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleAdmin)),
				r.catalogController.UpdateCategory,
			)
			categories.DELETE("/:slug",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleAdmin)),
				r.catalogController.DeleteCategory,
			)
		}

		brands := api.Group("/brands")
		{
			brands.GET("", r.catalogController.GetBrands)
			brands.GET("/:slug", r.catalogController.GetBrandBySlug)
			brands.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleAdmin)),
				r.catalogController.CreateBrand,
			)
			brands.PUT("/:slug",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleAdmin)),
				r.catalogController.UpdateBrand,
			)
			brands.DELETE("/:slug",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole(string(model.RoleAdmin)),
				r.catalogController.DeleteBrand,
			)
		}

		perfumes := api.Group("/perfumes")
		{
			perfumes.GET("", r.authMiddleware.OptionalAuthenticate(), r.perfumeController.GetPerfumes)
			perfumes.GET("/featured", r.perfumeController.GetFeaturedPerfumes)
			perfumes.GET("/on_sale", r.perfumeController.GetOnSalePerfumes)
			perfumes.GET("/:slug", r.authMiddleware.OptionalAuthenticate(), r.perfumeController.GetPerfumeBySlug)

			admin := perfumes.Group("")
			admin.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(string(model.RoleAdmin)))
			{
				admin.POST("", r.perfumeController.CreatePerfume)
				admin.PUT("/:slug", r.perfumeController.UpdatePerfume)
				admin.DELETE("/:slug", r.perfumeController.DeletePerfume)
				admin.POST("/:slug/images", r.perfumeController.AddPerfumeImage)
			}
		}

		orders := api.Group("/orders")
		{
			orders.POST("/guest", r.orderController.CreateGuestOrder)
			orders.GET("/track/:order_number", r.orderController.TrackOrder)

			cart := orders.Group("/cart")
			cart.Use(r.authMiddleware.Authenticate())
			{
				cart.GET("", r.cartController.GetCart)
				cart.POST("/add_item", r.cartController.AddItem)
				cart.POST("/update_item", r.cartController.UpdateItem)
				cart.POST("/remove_item", r.cartController.RemoveItem)
				cart.POST("/clear", r.cartController.ClearCart)
			}

			authed := orders.Group("")
			authed.Use(r.authMiddleware.Authenticate())
			{
				authed.GET("", r.orderController.GetOrders)
				authed.POST("", r.orderController.CreateOrder)
				authed.GET("/:id", r.orderController.GetOrderByID)
				authed.POST("/:id/cancel", r.orderController.CancelOrder)
				authed.POST("/:id/update_order_status", r.orderController.UpdateOrderStatus)
				authed.POST("/:id/update_payment_status", r.orderController.UpdatePaymentStatus)
			}
		}

		uploads := api.Group("/uploads")
		uploads.Use(r.authMiddleware.Authenticate(), r.authMiddleware.RequireRole(string(model.RoleAdmin)))
		{
			uploads.POST("/presigned-url", r.uploadController.GeneratePresignedURL)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
