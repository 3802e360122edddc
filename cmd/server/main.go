package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/privchat/privchat-backend/internal/config"
	"github.com/privchat/privchat-backend/internal/database"
	"github.com/privchat/privchat-backend/internal/handlers"
	"github.com/privchat/privchat-backend/internal/middleware"
	"github.com/privchat/privchat-backend/internal/routes"
	"github.com/privchat/privchat-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Connect to PostgreSQL (accounts + contact graph)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis (sessions, rate limiting, delivery bus)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB (messages + presence)
	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	if err := database.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
	} else {
		log.Println("✅ MongoDB indexes ensured")
	}

	// Stores
	userStore := database.NewUserStore(database.PostgresDB)
	messageRecords := database.NewMessageRecords(database.DB)
	presenceStore := database.NewPresenceStore(database.DB)

	// Services
	users := services.NewUsers(userStore)
	sessions := services.NewSessions(database.RedisClient)
	messageStore := services.NewMessageStore(messageRecords)
	registry := services.NewPresenceRegistry(presenceStore)

	// Realtime delivery: local hub + Redis bus between instances
	hub := services.NewHub()
	bus := services.NewRedisBus(database.RedisClient, hub)
	bus.Start(context.Background())

	router := services.NewRouter(userStore, messageStore, registry, bus)

	// Handlers
	userHandlers := handlers.NewUserHandlers(users, sessions)
	messageHandlers := handlers.NewMessageHandlers(messageStore)
	gateway := handlers.NewChatGateway(hub, router, registry)

	// HTTP router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(database.RedisClient))

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	table := routes.Table(userHandlers, messageHandlers, gateway)
	routes.Register(r, table, middleware.RequireAuth(sessions))

	log.Println("📋 Registered routes:")
	for _, rt := range table {
		log.Printf("  %-6s %s", rt.Method, rt.Pattern)
	}

	log.Printf("🚀 privchat backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
