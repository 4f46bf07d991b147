package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/charmandercodes/IoTBayy/internal/cart"
	"github.com/charmandercodes/IoTBayy/internal/catalog"
	"github.com/charmandercodes/IoTBayy/internal/checkout"
	h "github.com/charmandercodes/IoTBayy/internal/http"
	"github.com/charmandercodes/IoTBayy/internal/session"
	"github.com/charmandercodes/IoTBayy/internal/store"
	"github.com/charmandercodes/IoTBayy/internal/stripeapi"
)

type Config struct {
	HTTPPort        string
	PublicBaseURL   string
	RedisAddr       string
	PostgresHost    string
	PostgresPort    int
	PostgresUser    string
	PostgresPass    string
	PostgresDB      string
	MigrationsPath  string
	StripeKey       string
	WebhookSecret   string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		PostgresHost:    getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:    getEnvInt("POSTGRES_PORT", 5432),
		PostgresUser:    getEnv("POSTGRES_USER", "storefront"),
		PostgresPass:    getEnv("POSTGRES_PASSWORD", "storefront"),
		PostgresDB:      getEnv("POSTGRES_DB", "storefront"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		StripeKey:       getEnv("STRIPE_API_KEY", ""),
		WebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	creds := &store.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPass,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := store.NewRepository(creds)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	sessions := session.NewRedisStore(redisClient)
	provider := stripeapi.New(cfg.StripeKey)
	gateway := catalog.NewGateway(provider)
	carts := cart.NewService(sessions, gateway)
	checkoutSvc := checkout.NewService(provider, carts, repo,
		cfg.PublicBaseURL+"/payment_successful/",
		cfg.PublicBaseURL+"/payment_cancelled/",
	)
	reconciler := checkout.NewReconciler(provider, repo)

	catalogHandler := h.NewCatalogHandler(gateway, carts, cfg.RequestTimeout)
	cartHandler := h.NewCartHandler(carts, gateway, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutSvc, carts, repo, cfg.RequestTimeout)
	paymentHandler := h.NewPaymentHandler(reconciler, carts, cfg.RequestTimeout)
	webhookHandler := h.NewWebhookHandler(reconciler, cfg.WebhookSecret, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(repo, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)
	r.Use(h.AuthMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", catalogHandler.Shop)
	r.Get("/product/{product_id}", catalogHandler.Product)

	r.Post("/add_to_cart/{product_id}", cartHandler.AddToCart)
	r.Post("/update_checkout/{product_id}", cartHandler.UpdateQuantity)
	r.Post("/remove_from_cart/{product_id}", cartHandler.RemoveFromCart)
	r.Get("/cart/", cartHandler.ViewCart)

	r.Get("/checkout/", checkoutHandler.Show)
	r.Post("/checkout/", checkoutHandler.Submit)

	r.Get("/payment_successful/", paymentHandler.Success)
	r.Get("/payment_cancelled/", paymentHandler.Cancelled)
	r.Post("/stripe_webhook/", webhookHandler.Handle)

	r.Get("/orders/", ordersHandler.List)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
