package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/binhvu284/nobleco-sub000/internal/api"
	"github.com/binhvu284/nobleco-sub000/internal/cartstore"
	"github.com/binhvu284/nobleco-sub000/internal/checkout"
	h "github.com/binhvu284/nobleco-sub000/internal/http"
	"github.com/binhvu284/nobleco-sub000/internal/publisher"
)

type Config struct {
	HTTPPort        string
	OrdersAPIURL    string
	RedisAddr       string
	RedisPassword   string
	KafkaBrokers    string
	ConsoleUserID   int64
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	userID, err := strconv.ParseInt(getEnv("CONSOLE_USER_ID", "1"), 10, 64)
	if err != nil {
		log.Fatalf("invalid CONSOLE_USER_ID: %v", err)
	}
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		OrdersAPIURL:    getEnv("ORDERS_API_URL", "http://localhost:3000/api"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:    getEnv("KAFKA_BROKERS", ""),
		ConsoleUserID:   userID,
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

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := loadConfig()

	backend := api.NewClient(cfg.OrdersAPIURL)
	log.Printf("using orders API at %s", cfg.OrdersAPIURL)

	// Carts live in Redis so a session survives a restart; without
	// REDIS_ADDR they stay in process memory.
	var store cartstore.Store = cartstore.NewMemoryStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Redis connection failed:", err)
		}
		log.Printf("Redis ping succeeded")
		store = cartstore.NewRedisStore(redisClient)
	}

	var events checkout.Publisher
	if cfg.KafkaBrokers != "" {
		kafkaPub := publisher.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ",")...)
		defer kafkaPub.Close()
		events = kafkaPub
		log.Printf("publishing checkout events to %s", cfg.KafkaBrokers)
	}

	// a paid order ends the checkout: once the redirect window elapses
	// the session's activation is dropped and its timers stopped
	var registry *h.Registry
	registry = h.NewRegistry(func(sessionKey string) *checkout.Activation {
		return checkout.NewActivation(backend, store, sessionKey, events, nil, func() {
			registry.Drop(sessionKey)
		})
	})

	checkoutHandler := h.NewCheckoutHandler(registry, cfg.ConsoleUserID)
	paymentHandler := h.NewPaymentHandler(registry)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Post("/begin", checkoutHandler.Begin)
		r.Route("/cart/items", func(r chi.Router) {
			r.Post("/", checkoutHandler.AddItem)
			r.Put("/{productID}", checkoutHandler.SetQuantity)
			r.Post("/{productID}/increment", checkoutHandler.Increment)
			r.Post("/{productID}/decrement", checkoutHandler.Decrement)
		})
		r.Post("/discount", checkoutHandler.ApplyDiscount)
		r.Delete("/discount", checkoutHandler.RemoveDiscount)
		r.Put("/notes", checkoutHandler.SetNotes)
		r.Put("/location", checkoutHandler.SetLocation)
		r.Get("/locations", checkoutHandler.Locations)
		r.Route("/clients", func(r chi.Router) {
			r.Get("/", checkoutHandler.SearchClients)
			r.Post("/", checkoutHandler.CreateClient)
			r.Post("/select", checkoutHandler.SelectClient)
		})
		r.Route("/payment", func(r chi.Router) {
			r.Post("/", paymentHandler.Proceed)
			r.Get("/", paymentHandler.Status)
			r.Post("/refresh", paymentHandler.Refresh)
			r.Post("/cancel", paymentHandler.Cancel)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("checkout console starting on :%s", cfg.HTTPPort)
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
