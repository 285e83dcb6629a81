package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"store-backend-api/internal/middleware"
	"store-backend-api/internal/services"
)

// RouterConfig holds configuration for setting up routes
type RouterConfig struct {
	PaymentService     services.PaymentService
	OrderService       services.OrderService
	ProductService     services.ProductService
	ProfileService     services.ProfileService
	ShippingService    services.ShippingService
	FulfillmentService services.FulfillmentService
	CleanupService     services.CleanupService
	AuthService        *middleware.AuthService
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, config *RouterConfig) {
	paymentHandler := NewPaymentHandler(config.PaymentService)
	orderHandler := NewOrderHandler(config.OrderService)
	productHandler := NewProductHandler(config.ProductService)
	profileHandler := NewProfileHandler(config.ProfileService)
	shippingHandler := NewShippingHandler(config.ShippingService)
	fulfillmentHandler := NewFulfillmentHandler(config.FulfillmentService)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "store-backend-api",
			"version": "1.0.0",
		})
	})

	// Public storefront routes
	router.GET("/produtos", productHandler.ListProducts)
	router.GET("/produtos/:id", productHandler.GetProduct)
	router.POST("/frete", shippingHandler.QuoteFreight)

	// Carrier webhooks carry no user token
	router.POST("/fulfillment/webhook", fulfillmentHandler.Webhook)

	// Customer routes
	authed := router.Group("")
	authed.Use(middleware.Authentication(config.AuthService))
	{
		authed.POST("/pagamento", paymentHandler.ProcessPayment)

		pedidos := authed.Group("/pedidos")
		{
			pedidos.GET("", orderHandler.ListOrders)
			pedidos.GET("/:id", orderHandler.GetOrder)
			pedidos.POST("/:id/solicitar-cancelamento", orderHandler.RequestCancel)
		}
	}

	// Backoffice routes
	admin := router.Group("")
	admin.Use(middleware.Authentication(config.AuthService), middleware.RequireAdmin())
	{
		admin.POST("/produtos", productHandler.CreateProduct)
		admin.PUT("/produtos/:id", productHandler.UpdateProduct)
		admin.DELETE("/produtos/:id", productHandler.DeleteProduct)
		admin.GET("/produtos/exportar", productHandler.ExportCSV)

		usuarios := admin.Group("/usuarios")
		{
			usuarios.GET("", profileHandler.ListProfiles)
			usuarios.PUT("/:id", profileHandler.UpdateProfile)
			usuarios.DELETE("/:id", profileHandler.DeleteProfile)
		}

		admin.PUT("/pedidos/:id", orderHandler.UpdateOrder)
		admin.DELETE("/pedidos/:id", orderHandler.DeleteOrder)

		admin.POST("/fulfillment/:id/create-shipment", fulfillmentHandler.CreateShipment)
		admin.GET("/fulfillment/:id/tracking", fulfillmentHandler.GetTracking)

		// manual trigger for the scheduled job
		admin.POST("/cleanup/imagens", func(c *gin.Context) {
			result, err := config.CleanupService.CleanupOrphanImages(c.Request.Context())
			if err != nil {
				respondError(c, err, "Failed to run image cleanup")
				return
			}
			c.JSON(http.StatusOK, result)
		})
	}
}

// SetupMiddleware configures global middleware
func SetupMiddleware(router *gin.Engine) {
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// 10MB body cap covers base64 product images
	router.Use(middleware.RequestSizeLimit(10 * 1024 * 1024))

	router.Use(middleware.RequestValidation())
	router.Use(middleware.RateLimiter(100, 200))
	router.Use(middleware.StructuredLogger())
	router.Use(middleware.ErrorHandler())
}
