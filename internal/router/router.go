package router

import (
	"github.com/gin-gonic/gin"
	"github.com/movilstore/catalog-backend/config"
	"github.com/movilstore/catalog-backend/internal/app/controller"
	"github.com/movilstore/catalog-backend/internal/middleware"
)

type Router struct {
	productController   *controller.ProductController
	attributeController *controller.AttributeController
	categoryController  *controller.CategoryController
	authMiddleware      *middleware.AuthMiddleware
	config              *config.Config
}

func NewRouter(
	productController *controller.ProductController,
	attributeController *controller.AttributeController,
	categoryController *controller.CategoryController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		productController:   productController,
		attributeController: attributeController,
		categoryController:  categoryController,
		authMiddleware:      authMiddleware,
		config:              cfg,
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
			"message": "catalog API is running",
		})
	})

	v1 := router.Group("/api/v1")
	catalog := v1.Group("/catalog", r.authMiddleware.Authenticate())
	{
		products := catalog.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.POST("", r.productController.CreateProduct)
			products.GET("/:id", r.productController.GetProduct)
			products.PATCH("/:id", r.productController.UpdateProduct)
			products.DELETE("/:id", r.productController.DeleteProduct)
			products.GET("/:id/attributes", r.productController.GetProductAttributes)
		}

		attributes := catalog.Group("/attributes")
		{
			attributes.GET("/groups", r.attributeController.ListGroups)
			attributes.POST("/groups", r.attributeController.CreateGroup)
			attributes.GET("/groups/:id", r.attributeController.GetGroup)
			attributes.PATCH("/groups/:id", r.attributeController.RenameGroup)
			attributes.DELETE("/groups/:id", r.attributeController.DeleteGroup)

			attributes.POST("", r.attributeController.CreateAttribute)
			attributes.GET("/by-group/:groupId", r.attributeController.ListAttributesByGroup)
			attributes.GET("/:id", r.attributeController.GetAttribute)
			attributes.PATCH("/:id", r.attributeController.UpdateAttribute)
			attributes.DELETE("/:id", r.attributeController.DeleteAttribute)
		}

		categories := catalog.Group("/categories")
		{
			categories.GET("/tree", r.categoryController.Tree)
			categories.GET("", r.categoryController.ListCategories)
			categories.POST("", r.categoryController.CreateCategory)
			categories.GET("/:id", r.categoryController.GetCategory)
			categories.PATCH("/:id", r.categoryController.UpdateCategory)
			categories.DELETE("/:id", r.categoryController.DeleteCategory)

			subcategories := categories.Group("/subcategories")
			{
				subcategories.POST("", r.categoryController.CreateSubcategory)
				subcategories.GET("/by-category/:categoryId", r.categoryController.ListSubcategoriesByCategory)
				subcategories.GET("/:id", r.categoryController.GetSubcategory)
				subcategories.PATCH("/:id", r.categoryController.UpdateSubcategory)
				subcategories.DELETE("/:id", r.categoryController.DeleteSubcategory)
			}
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
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
