package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arzan03/CampusKart/internal/cache"
	"github.com/arzan03/CampusKart/internal/config"
	"github.com/arzan03/CampusKart/internal/db"
	"github.com/arzan03/CampusKart/internal/handlers"
	"github.com/arzan03/CampusKart/internal/logging"
	"github.com/arzan03/CampusKart/internal/middleware"
	"github.com/arzan03/CampusKart/internal/services"
	"github.com/arzan03/CampusKart/internal/socket"
	"github.com/arzan03/CampusKart/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	logging.Info().Str("env", cfg.Env).Str("storage", cfg.StorageDriver).Msg("Starting CampusKart")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := db.ConnectMongoDB(ctx, cfg.MongoURI)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	database := mongoClient.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		logging.Fatal().Err(err).Msg("Failed to create indexes")
	}

	users := db.NewUserRepository(database)
	products := db.NewProductRepository(database)
	chats := db.NewChatRepository(database)

	store, err := storage.New(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize image storage")
	}

	var productCache services.Cache
	redisClient := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if redisClient != nil {
		if err := redisClient.Ping(ctx); err != nil {
			logging.Warn().Err(err).Msg("Redis unreachable, reads will fall through to MongoDB")
		}
		productCache = redisClient
		logging.Info().Str("addr", cfg.RedisAddr).Msg("Product cache enabled")
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)
	authService := services.NewAuthService(users, tokens)
	userService := services.NewUserService(users, store, cfg.MaxImageSize)
	productService := services.NewProductService(products, users, store, productCache, services.ProductServiceConfig{
		MaxImageSize: cfg.MaxImageSize,
		MaxImages:    cfg.MaxImages,
		CacheTTL:     cfg.CacheTTL,
	})
	chatService := services.NewChatService(chats, products, users)

	hub := socket.NewHub()
	go func() {
		if err := hub.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Socket hub stopped")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName:      "CampusKart",
		ErrorHandler: handlers.ErrorHandler,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		BodyLimit:    int(cfg.MaxImageSize)*cfg.MaxImages + 1<<20,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: cfg.CORSOrigins != "*",
	}))

	if local, ok := store.(*storage.LocalStore); ok {
		app.Static("/uploads", local.Root())
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(app, &handlers.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		Users:      handlers.NewUserHandler(userService, productService),
		Products:   handlers.NewProductHandler(productService),
		Categories: handlers.NewCategoryHandler(productService),
		Chats:      handlers.NewChatHandler(chatService),
		Socket:     handlers.NewSocketHandler(hub, chatService),
		Health: handlers.NewHealthHandler(func(ctx context.Context) error {
			return mongoClient.Ping(ctx, nil)
		}),
	}, middleware.Protected(tokens))

	go func() {
		logging.Info().Str("addr", cfg.Addr()).Msg("HTTP server listening")
		if err := app.Listen(cfg.Addr()); err != nil {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logging.Info().Str("signal", sig.String()).Msg("Shutting down")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logging.Error().Err(err).Msg("HTTP shutdown error")
	}
	cancel()

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := mongoClient.Disconnect(closeCtx); err != nil {
		logging.Error().Err(err).Msg("Error closing MongoDB")
	}
	if err := redisClient.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing Redis")
	}
	logging.Info().Msg("Shutdown complete")
}
