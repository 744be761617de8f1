package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/wichananm65/catalog-order-form/internal/cart"
	"github.com/wichananm65/catalog-order-form/internal/config"
	"github.com/wichananm65/catalog-order-form/internal/order"
	"github.com/wichananm65/catalog-order-form/internal/product"
	"github.com/wichananm65/catalog-order-form/internal/session"
	"github.com/wichananm65/catalog-order-form/internal/sheets"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := fiber.New(fiber.Config{AppName: "catalog-order-form"})
	app.Use(recover.New())
	setupCORS(app)
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// the catalog is read on first use; a missing file shows up as 503 on catalog routes
	productService := product.NewService(product.FileLoader(cfg.CatalogPath), product.SearchLinker{BaseURL: cfg.SearchBaseURL})
	product.NewHandler(productService).RegisterPublicRoutes(app)

	cartRepo, sessionStorage := mustCartStore(cfg)
	app.Use(session.Middleware(session.NewStore(cfg.SessionExpiration, sessionStorage)))

	cartService := cart.NewService(cartRepo, productService, cfg.Policy)
	cart.NewHandler(cartService).RegisterRoutes(app)

	appender, closeSink := mustAppender(cfg)
	defer closeSink()
	orderService := order.NewService(cartService, appender, cfg.Location)
	order.NewHandler(orderService).RegisterRoutes(app)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		if err := app.ShutdownWithTimeout(15 * time.Second); err != nil {
			log.Printf("server shutdown: %v", err)
		}
	}()

	log.Printf("starting catalog-order-form on %s (cart=%s, sink=%s, policy=%s)", cfg.Addr, cfg.CartStore, cfg.OrderSink, cfg.Policy)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("listen: %v", err)
	}
	log.Println("server stopped")
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
}

// mustCartStore returns the cart repository and the session storage. Both
// live in redis when CART_STORE=redis so a session id and its cart survive a
// restart together; a nil storage keeps sessions in memory.
func mustCartStore(cfg config.Config) (cart.Repository, fiber.Storage) {
	if cfg.CartStore != config.CartStoreRedis {
		return cart.NewInMemoryRepository(nil), nil
	}
	client, err := cart.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return cart.NewRedisRepository(client, cfg.SessionExpiration), session.NewRedisStorage(client)
}

// mustAppender picks the order sink. The returned func releases whatever the
// sink holds open.
func mustAppender(cfg config.Config) (order.Appender, func()) {
	switch cfg.OrderSink {
	case config.OrderSinkPostgres:
		db := mustOpenDB(cfg.DatabaseURL)
		a := order.NewPostgresAppender(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.EnsureSchema(ctx); err != nil {
			log.Fatalf("postgres: %v", err)
		}
		return a, func() { db.Close() }
	case config.OrderSinkLog:
		return order.LogAppender{}, func() {}
	default:
		if cfg.SheetID == "" || cfg.CredentialsFile == "" {
			log.Printf("[sheets] SHEET_ID or GOOGLE_CREDENTIALS_FILE is not set; order submissions will fail")
		}
		client := sheets.New(sheets.Config{
			BaseURL:         cfg.SheetsBaseURL,
			SpreadsheetID:   cfg.SheetID,
			CredentialsFile: cfg.CredentialsFile,
		})
		return order.NewSheetAppender(client, cfg.SheetName), func() {}
	}
}

func mustOpenDB(dbURL string) *sql.DB {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}
	return db
}
