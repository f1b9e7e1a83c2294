package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cartapp "github.com/storefront/backend/internal/application/cart"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	orderapp "github.com/storefront/backend/internal/application/order"
	paymentapp "github.com/storefront/backend/internal/application/payment"
	"github.com/storefront/backend/internal/domain/checkout"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/erp"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/payment"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting Storefront Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Processed-event store for webhook deduplication. Redis is the fast
	// path; the unique index on orders.payment_intent_id remains the
	// authoritative guard, so falling back to the in-memory store only
	// costs extra round-trips to the payment provider on restart.
	var eventStore shared.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(&cfg.Redis)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory event deduplication", zap.Error(err))
		eventStore = cache.NewInMemoryIdempotencyStore()
	} else {
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing Redis connection", zap.Error(err))
			}
		}()
		eventStore = redisStore
		log.Info("Redis connected successfully", zap.String("addr", cfg.Redis.Addr()))
	}

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	addressRepo := persistence.NewGormAddressRepository(db.DB)

	// Payment gateway: only wired when Stripe credentials are present.
	// Without it the checkout endpoints respond with PAYMENT_NOT_CONFIGURED
	// while the rest of the storefront keeps working.
	var gateway checkout.Gateway
	stripeConfig := &payment.StripeConfig{
		SecretKey:      cfg.Stripe.SecretKey,
		PublishableKey: cfg.Stripe.PublishableKey,
		WebhookSecret:  cfg.Stripe.WebhookSecret,
	}
	if stripeConfig.IsConfigured() {
		stripeGateway, err := payment.NewStripeGateway(stripeConfig, log)
		if err != nil {
			log.Fatal("Failed to initialize Stripe gateway", zap.Error(err))
		}
		gateway = stripeGateway
		log.Info("Stripe gateway configured")
	} else {
		log.Warn("Stripe credentials missing, checkout is disabled")
	}

	// Object storage for product images (optional)
	var imageService *catalogapp.ImageService
	var imageResolver catalogapp.ImageResolver
	if cfg.Storage.Bucket != "" {
		objectStorage, err := storage.NewS3ObjectStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		imageService = catalogapp.NewImageService(productRepo, objectStorage, catalogapp.DefaultImageServiceConfig())
		imageResolver = imageService
		log.Info("Object storage configured", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		log.Warn("Object storage not configured, product image endpoints are disabled")
	}

	// Upstream ERP pass-through (optional)
	var erpClient *erp.Client
	if cfg.ERP.BaseURL != "" {
		erpClient, err = erp.NewClient(&erp.Config{
			BaseURL: cfg.ERP.BaseURL,
			APIKey:  cfg.ERP.APIKey,
			Timeout: cfg.ERP.Timeout,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize ERP client", zap.Error(err))
		}
		log.Info("ERP pass-through configured", zap.String("base_url", cfg.ERP.BaseURL))
	}

	taxRate, err := decimal.NewFromString(cfg.Checkout.TaxRate)
	if err != nil {
		log.Fatal("Invalid checkout.tax_rate", zap.String("tax_rate", cfg.Checkout.TaxRate), zap.Error(err))
	}
	checkoutConfig := paymentapp.CheckoutConfig{
		Currency: valueobject.Currency(cfg.Checkout.Currency),
		TaxRate:  taxRate,
	}
	if err := checkoutConfig.Validate(); err != nil {
		log.Fatal("Invalid checkout configuration", zap.Error(err))
	}

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, imageResolver, checkoutConfig.Currency)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	cartService := cartapp.NewService(cartRepo, productRepo, log)
	orderService := orderapp.NewService(orderRepo, cartRepo, log)
	checkoutService := paymentapp.NewCheckoutService(cartRepo, gateway, checkoutConfig, log)
	reconciler := paymentapp.NewReconciler(gateway, orderService, eventStore, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	addressService := identityapp.NewAddressService(addressRepo)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, imageService, jwtService)
	categoryHandler := handler.NewCategoryHandler(categoryService, jwtService)
	cartHandler := handler.NewCartHandler(cartService, jwtService)
	orderHandler := handler.NewOrderHandler(orderService, jwtService)
	paymentHandler := handler.NewPaymentHandler(checkoutService, reconciler, jwtService)
	authHandler := handler.NewAuthHandler(authService, addressService, jwtService)
	erpHandler := handler.NewERPHandler(erpClient, jwtService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Register API routes
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(productHandler).
		Register(categoryHandler).
		Register(cartHandler).
		Register(orderHandler).
		Register(paymentHandler).
		Register(authHandler).
		Register(erpHandler).
		Register(systemHandler).
		Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
