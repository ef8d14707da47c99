package handler

import (
	"net/http"
	"time"

	"backoffice/pkg/logger"
	"backoffice/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes настраивает все маршруты Catalog Service.
// Чтение публично (витрина), запись требует роли manager/admin,
// удаление - только admin.
func SetupRoutes(catalogHandler *CatalogHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("catalog"))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog-service",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")

	products := api.Group("/products")
	{
		products.GET("", catalogHandler.GetAllProducts)
		products.GET("/:id", catalogHandler.GetProduct)

		products.POST("", authMiddleware.Authenticate(), authMiddleware.RequireRole("manager", "admin"), catalogHandler.CreateProduct)
		products.PUT("/:id", authMiddleware.Authenticate(), authMiddleware.RequireRole("manager", "admin"), catalogHandler.UpdateProduct)
		products.DELETE("/:id", authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"), catalogHandler.DeleteProduct)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", catalogHandler.GetAllCategories)
		categories.GET("/:id", catalogHandler.GetCategory)

		categories.POST("", authMiddleware.Authenticate(), authMiddleware.RequireRole("manager", "admin"), catalogHandler.CreateCategory)
		categories.PUT("/:id", authMiddleware.Authenticate(), authMiddleware.RequireRole("manager", "admin"), catalogHandler.UpdateCategory)
		categories.DELETE("/:id", authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"), catalogHandler.DeleteCategory)
	}

	api.GET("/stores", catalogHandler.GetAllStores)

	return router
}
