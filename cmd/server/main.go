package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hanpick.kr/shopping-proxy/internal/api"
	"hanpick.kr/shopping-proxy/internal/config"
	"hanpick.kr/shopping-proxy/internal/core"
	"hanpick.kr/shopping-proxy/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Service starting in DEBUG mode")
	}

	// Command line flag for demo-data seeding
	seedFlag := flag.Bool("seed", false, "Seed demo users and purchase requests and exit")
	flag.Parse()

	// Initialize the key-value store and the admin record layer
	kvStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer kvStore.Close()

	adminStore := store.NewAdminStore(kvStore)

	if *seedFlag {
		log.Println("Seeding demo data...")
		if err := adminStore.SeedDemoData(); err != nil {
			log.Fatalf("Demo data seeding failed: %v", err)
		}
		log.Println("Demo data seeding complete. Exiting.")
		os.Exit(0)
	}

	// Gemini backs image generation in all configurations; it also serves
	// chat unless another provider is configured.
	geminiService, err := core.NewGeminiService()
	if err != nil {
		log.Fatalf("Failed to initialize Gemini service: %v", err)
	}
	defer geminiService.Close()

	var modelAdapter core.ModelAdapter = geminiService
	if config.AppConfig.LLMProvider != "gemini" {
		modelAdapter, err = core.NewModelAdapter()
		if err != nil {
			log.Fatalf("Failed to initialize model adapter: %v", err)
		}
	}

	enricher := core.NewEnricher(geminiService)

	sessions := core.NewSessionManager(func() *core.Session {
		return core.NewSession(
			core.NewConversationStore(core.GreetingMessage),
			modelAdapter,
			enricher,
			adminStore,
			config.AppConfig.AdminPassword,
		)
	})

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(sessions, adminStore)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // Model and image calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting gracefully")
}
