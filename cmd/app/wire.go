package main

import (
	"context"
	"database/sql"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/wichananm65/chat-shop-backend/internal/apperr"
	"github.com/wichananm65/chat-shop-backend/internal/cache"
	"github.com/wichananm65/chat-shop-backend/internal/cart"
	"github.com/wichananm65/chat-shop-backend/internal/category"
	"github.com/wichananm65/chat-shop-backend/internal/config"
	"github.com/wichananm65/chat-shop-backend/internal/infrastructure/database/inmemory"
	"github.com/wichananm65/chat-shop-backend/internal/infrastructure/database/postgres"
	"github.com/wichananm65/chat-shop-backend/internal/metrics"
	"github.com/wichananm65/chat-shop-backend/internal/order"
	"github.com/wichananm65/chat-shop-backend/internal/outbox"
	"github.com/wichananm65/chat-shop-backend/internal/product"
	"github.com/wichananm65/chat-shop-backend/internal/user"
)

// backend is the storage chosen at startup: Postgres when DATABASE_URL is
// set, the in-memory store otherwise. catalog is the Redis-cached view of
// products when REDIS_ADDR is set; prices for cart lines are always read from
// products.
type backend struct {
	db    *sql.DB
	redis *redis.Client

	users      user.Repository
	products   product.Repository
	catalog    product.Catalog
	categories category.Repository
	carts      cart.Repository
	orders     order.Repository
	events     outbox.Repository
}

func openBackend(ctx context.Context, cfg config.Config, m *metrics.Registry) (*backend, error) {
	b := &backend{}
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		b.db = db
		b.users = user.NewPostgresRepository(db)
		b.products = product.NewPostgresRepository(db)
		b.categories = category.NewPostgresRepository(db)
		b.carts = cart.NewPostgresRepository(db)
		b.orders = order.NewPostgresRepository(db)
		b.events = outbox.NewPostgresRepository(db)
	} else {
		log.Printf("DATABASE_URL is not set, using the in-memory store")
		b.useMemory()
	}

	b.catalog = b.products
	if cfg.RedisAddr != "" {
		b.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		b.catalog = cache.NewCatalog(b.products, b.redis, cfg.CatalogCacheTTL, m)
	}
	return b, nil
}

func (b *backend) useMemory() {
	products := product.NewInMemoryRepository(seedProducts())
	users := user.NewInMemoryRepository(nil)
	store := inmemory.NewStore(products, users)

	b.users = users
	b.products = products
	b.categories = category.NewInMemoryRepository(seedCategories())
	b.carts = store
	b.orders = store
	b.events = store
}

func (b *backend) Close() {
	if b.redis != nil {
		b.redis.Close()
	}
	if b.db != nil {
		b.db.Close()
	}
}

func orderOptions(cfg config.Config, m *metrics.Registry) order.Options {
	opts := order.Options{
		AutoRegisterUsers: cfg.AutoRegisterUsers,
		Total:             order.DistinctProductTotal,
		Transitions:       order.PermissiveTransitions(),
		Metrics:           m,
	}
	if cfg.OrderTotalMode == config.TotalModeWeighted {
		opts.Total = order.QuantityWeightedTotal
	}
	if cfg.ForwardOnlyOrderStatus {
		opts.Transitions = order.ForwardOnlyTransitions()
	}
	return opts
}

func newApp(cfg config.Config, b *backend, m *metrics.Registry) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
			}
			return apperr.Respond(c, err)
		},
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if b.db != nil {
			if err := b.db.PingContext(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "database unavailable"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	userService := user.NewService(b.users)
	productService := product.NewService(b.products)
	opts := orderOptions(cfg, m)

	user.NewHandler(userService).RegisterRoutes(app)
	category.NewHandler(category.NewService(b.categories, productService)).RegisterPublicRoutes(app)
	product.NewHandler(productService).RegisterPublicRoutes(app)
	carts := cart.NewService(b.carts, userService, b.products, m).WithListingCatalog(b.catalog)
	cart.NewHandler(carts).RegisterRoutes(app)

	orderHandler := order.NewHandler(order.NewConverter(b.orders, userService, opts), order.NewService(b.orders, opts))
	orderHandler.RegisterRoutes(app)
	orderHandler.RegisterAdminRoutes(app)
	return app
}

func seedCategories() []category.Category {
	return []category.Category{
		{ID: 1, Name: "Tea"},
		{ID: 2, Name: "Coffee"},
	}
}

func seedProducts() []product.Product {
	return []product.Product{
		{ID: 1, Name: "Green tea", Description: "Loose leaf, 100 g", Price: 100, CategoryID: 1},
		{ID: 2, Name: "Black tea", Description: "Loose leaf, 100 g", Price: 80, CategoryID: 1},
		{ID: 3, Name: "Espresso beans", Description: "Whole beans, 250 g", Price: 50, CategoryID: 2},
	}
}
