package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"tintura-sst/internal/config"
	"tintura-sst/internal/middleware"
)

type Handlers struct {
	Health      *HealthHandler
	Orders      *OrdersHandler
	Barcodes    *BarcodesHandler
	Inventory   *InventoryHandler
	Materials   *MaterialsHandler
	Checkout    *CheckoutHandler
	Reports     *ReportsHandler
	Attachments *AttachmentsHandler
}

func NewRouter(cfg *config.Config, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	if mw := corsMiddleware(cfg); mw != nil {
		router.Use(mw)
	}

	// Health check (no actor)
	router.GET("/health", h.Health.Health)

	api := router.Group("/api/v1")
	api.Use(middleware.ActorMiddleware(cfg))

	api.GET("/health", h.Health.Health)
	api.GET("/units", h.Reports.ListUnits)
	api.GET("/dashboard", h.Reports.Dashboard)

	// Orders
	api.POST("/orders", h.Orders.CreateOrder)
	api.GET("/orders", h.Orders.ListOrders)
	api.GET("/orders/:order_id", h.Orders.GetOrder)
	api.PATCH("/orders/:order_id", h.Orders.UpdateOrder)
	api.POST("/orders/:order_id/advance", h.Orders.AdvanceOrder)
	api.POST("/orders/:order_id/reject", h.Orders.RejectOrder)
	api.POST("/orders/:order_id/complete", h.Orders.CompleteOrder)
	api.POST("/orders/:order_id/logs", h.Orders.AddNote)
	api.GET("/orders/:order_id/logs", h.Orders.ListLogs)

	// Barcodes
	api.POST("/orders/:order_id/barcodes", h.Barcodes.GenerateBarcodes)
	api.GET("/orders/:order_id/barcodes", h.Barcodes.ListOrderBarcodes)
	api.GET("/barcodes", h.Barcodes.ListBarcodes)
	api.POST("/barcodes/:barcode_id/advance", h.Barcodes.AdvanceBarcode)

	// Inventory staging
	api.POST("/inventory/sessions", h.Inventory.OpenSession)
	api.GET("/inventory/sessions/:session_id", h.Inventory.GetSession)
	api.DELETE("/inventory/sessions/:session_id", h.Inventory.DiscardSession)
	api.POST("/inventory/sessions/:session_id/scan", h.Inventory.Scan)
	api.DELETE("/inventory/sessions/:session_id/items/:item_id", h.Inventory.RemoveItem)
	api.POST("/inventory/sessions/:session_id/commit", h.Inventory.Commit)
	api.GET("/inventory/commits", h.Inventory.History)
	api.GET("/inventory/stock", h.Inventory.Stock)

	// Materials
	api.POST("/materials", h.Materials.CreateRequest)
	api.GET("/materials", h.Materials.ListRequests)
	api.POST("/materials/:request_id/approve", h.Materials.Approve)

	// Checkout
	api.POST("/checkout", h.Checkout.Checkout)
	api.GET("/invoices", h.Checkout.ListInvoices)

	// Reports
	api.GET("/reports", h.Reports.Report)
	api.GET("/reports/export", h.Reports.ExportReport)

	api.POST("/attachments", h.Attachments.Upload)

	return router
}

// corsMiddleware allows every origin outside production. In production only
// CORS_ALLOWED_ORIGINS is allowed, and with no list the middleware is not
// installed at all.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	switch {
	case len(cfg.CORSAllowedOrigins) > 0:
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	case cfg.Environment == "production":
		return nil
	default:
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowHeaders("Authorization", middleware.RoleHeader)
	corsConfig.AddExposeHeaders("Content-Disposition")
	return cors.New(corsConfig)
}
