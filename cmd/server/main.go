package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"fsm-backend/internal/auth"
	"fsm-backend/internal/bus"
	"fsm-backend/internal/handlers"
	"fsm-backend/internal/ingest"
	"fsm-backend/internal/storage"
)

// insecureDefaultSecret keeps local development working without setup. It is
// a known value and must never be used in production.
const insecureDefaultSecret = "dev-secret-change-me"

func main() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = insecureDefaultSecret
		log.Println("WARN JWT_SECRET is not set, using the insecure development default")
	}

	// Database connection (with retries)
	var db *sqlx.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("postgres", buildDSN())
		if err == nil {
			break
		}
		log.Printf("DB connection attempt %d failed: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	// Storage
	store := storage.NewStorage(db)
	if err := store.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event bus is optional: without NATS_URL the backend runs standalone.
	var publisher *bus.Publisher
	var statusConsumer *ingest.StatusConsumer
	var busClient *bus.Client
	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		busClient, err = bus.Connect(natsURL)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer busClient.Close()

		publisher = bus.NewPublisher(busClient.JS())

		statusConsumer = ingest.NewStatusConsumer(busClient.JS(), store)
		if err := statusConsumer.Start(ctx); err != nil {
			log.Fatalf("Failed to start status consumer: %v", err)
		}
	} else {
		log.Println("INFO NATS_URL is not set, event bus disabled")
	}

	// Auth
	tokens := auth.NewTokenManager(secret, auth.DefaultTokenTTL)
	authn := auth.NewAuthenticator(store, tokens)
	authHandler := auth.NewHandler(store, tokens)

	// HTTP handlers
	h := handlers.New(store, publisher)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: false,
	}))
	h.RegisterRoutes(r, authHandler, authn)

	server := &http.Server{
		Addr:    ":" + getEnv("PORT", "8080"),
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if statusConsumer != nil {
			_ = statusConsumer.Stop()
		}
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("Server starting on %s", server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

func buildDSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return "host=" + getEnv("DB_HOST", "localhost") +
		" user=" + getEnv("DB_USER", "fsm_user") +
		" password=" + getEnv("DB_PASSWORD", "fsm_pass") +
		" dbname=" + getEnv("DB_NAME", "fsm") +
		" sslmode=disable"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
