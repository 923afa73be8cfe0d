package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/dukapos/dukapos-backend/internal/money"
	"github.com/dukapos/dukapos-backend/internal/modules/cart"
	"github.com/dukapos/dukapos-backend/internal/modules/catalog"
	"github.com/dukapos/dukapos-backend/internal/modules/customer"
	"github.com/dukapos/dukapos-backend/internal/modules/giftcard"
	"github.com/dukapos/dukapos-backend/internal/modules/inventory"
	"github.com/dukapos/dukapos-backend/internal/modules/payment"
	"github.com/dukapos/dukapos-backend/internal/modules/promotion"
	"github.com/dukapos/dukapos-backend/internal/modules/refund"
	"github.com/dukapos/dukapos-backend/internal/modules/sale"
	"github.com/dukapos/dukapos-backend/internal/repository"
	"github.com/dukapos/dukapos-backend/internal/validation"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	db, err := repository.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	migrationsDir := os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "db/migrations"
	}
	if err := repository.RunMigrations(db, migrationsDir); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}
	logger.Info("database ready")

	taxRate := money.DefaultTaxRate
	if v := os.Getenv("TAX_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			logger.Fatal("invalid TAX_RATE", zap.String("value", v), zap.Error(err))
		}
		taxRate = rate
	}

	validate := validation.New()

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestID)

	// ── Phase 1: Catalog & Inventory ────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo)
	catalog.NewHandler(catalogService, validate).RegisterRoutes(router)

	inventoryRepo := inventory.NewPostgresRepository(db)
	inventoryService := inventory.NewService(inventoryRepo, logger)
	inventory.NewHandler(inventoryService).RegisterRoutes(router)

	// ── Phase 2: Customers & Promotions ─────────────────────
	customerRepo := customer.NewPostgresRepository(db)
	customerService := customer.NewService(customerRepo)
	customer.NewHandler(customerService, validate).RegisterRoutes(router)

	promotionRepo := promotion.NewPostgresRepository(db)
	promotionEngine := promotion.NewEngine(promotionRepo)
	promotion.NewHandler(promotionEngine, validate).RegisterRoutes(router)

	giftCardRepo := giftcard.NewPostgresRepository(db)
	giftCardService := giftcard.NewService(giftCardRepo)
	giftcard.NewHandler(giftCardService, validate).RegisterRoutes(router)

	// ── Phase 3: Carts ──────────────────────────────────────
	cartStore := cart.NewStore()
	cartService := cart.NewService(cartStore, catalogService, promotionEngine, taxRate, logger)
	cart.NewHandler(cartService, validate).RegisterRoutes(router)

	// ── Phase 4: Pluggable Payments ─────────────────────────
	paymentGateways := payment.GatewayRegistry{
		payment.MethodCard: payment.NewCardGateway(
			os.Getenv("CARD_TERMINAL_ID"),
			os.Getenv("CARD_ENV"),
		),
		payment.MethodMobile: payment.NewMobileMoneyGateway(
			os.Getenv("MOBILE_MONEY_API_KEY"),
			os.Getenv("MOBILE_MONEY_ENV"),
		),
	}
	paymentStore := payment.NewStore()
	paymentService := payment.NewService(paymentStore, paymentGateways, giftCardService, logger)
	payment.NewHandler(paymentService, validate).RegisterRoutes(router)

	// ── Phase 5: Sales & Refunds ────────────────────────────
	saleRepo := sale.NewPostgresRepository(db)
	saleService := sale.NewService(saleRepo, cartService, paymentService, inventoryService, customerService, logger)
	sale.NewHandler(saleService, validate).RegisterRoutes(router)

	refundRepo := refund.NewPostgresRepository(db)
	refundService := refund.NewService(refundRepo, saleRepo, inventoryService, logger)
	refund.NewHandler(refundService, validate).RegisterRoutes(router)

	// ── Start Server ────────────────────────────────────────
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	fmt.Printf("DukaPOS API server starting on :%s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
