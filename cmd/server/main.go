// @title           Tintura SST API
// @version         1.0.0
// @description     Production tracking for a garment manufacturer: orders across units, barcode serials, inventory staging, material requests, checkout and reports.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Optional. "Bearer" followed by a Supabase JWT. Without it, X-Actor-Role names the acting role.

package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"tintura-sst/internal/config"
	"tintura-sst/internal/handlers"
	"tintura-sst/internal/lock"
	"tintura-sst/internal/services"
	"tintura-sst/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := config.NewLogger(cfg.LogLevel)

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	st, closeStore, degraded, err := selectStore(ctx, cfg, logger, openConfigured)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open store")
	}
	defer closeStore()

	// Locks are shared through Redis when configured, otherwise held in process.
	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			config.LogError(logger, "main", "main", "redis unreachable, using in-process locks", logrus.Fields{"address": cfg.RedisAddress}, err)
		} else {
			locker = lock.NewRedisLocker(rdb, 30*time.Second)
			defer rdb.Close()
		}
		cancel()
	}

	var uploader handlers.Uploader
	if cfg.StorageEnabled() {
		uploader = supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
	} else {
		logger.Warn("Supabase storage not configured, attachment uploads are disabled")
	}

	orderService := services.NewOrderService(st, locker, logger)
	barcodeService := services.NewBarcodeService(st, locker, logger, cfg.MaxBarcodeBatch)
	inventoryService := services.NewInventoryService(st, logger, cfg.StagingSessionTTL)
	materialService := services.NewMaterialService(st, locker, logger)
	checkoutService := services.NewCheckoutService(st, logger, cfg.UnitPrice)

	router := handlers.NewRouter(cfg, handlers.Handlers{
		Health:      handlers.NewHealthHandler(st, cfg.StoreDriver, degraded),
		Orders:      handlers.NewOrdersHandler(orderService),
		Barcodes:    handlers.NewBarcodesHandler(barcodeService),
		Inventory:   handlers.NewInventoryHandler(inventoryService, checkoutService),
		Materials:   handlers.NewMaterialsHandler(materialService),
		Checkout:    handlers.NewCheckoutHandler(checkoutService),
		Reports:     handlers.NewReportsHandler(services.NewReportService(st), services.NewDashboardService(st), st),
		Attachments: handlers.NewAttachmentsHandler(uploader),
	})

	logger.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"store":    cfg.StoreDriver,
		"degraded": degraded != "",
	}).Info("Server starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.WithError(err).Error("Failed to start server")
		closeStore()
		os.Exit(1)
	}
}
