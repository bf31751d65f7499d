/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the training portal server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store and document store
  3. Create API handler with dependencies
  4. Configure HTTP router and start the completion sweeper
  5. Start server with graceful shutdown

CONFIGURATION:
  Flags take precedence over environment variables:
  -port / PORT            HTTP server port (default: 8080)
  -db / DATABASE_PATH     SQLite database path (default: training.db)
                          Use ":memory:" for in-memory database
  -uploads / UPLOAD_DIR   Document upload directory (default: ./uploads)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the completion sweeper
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/training.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/lifeline/training-engine/api"
	"github.com/lifeline/training-engine/docstore"
	"github.com/lifeline/training-engine/store/sqlite"
)

func main() {
	// .env is optional; flags below override it.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "training.db"), "SQLite database path")
	uploadDir := flag.String("uploads", envStr("UPLOAD_DIR", "./uploads"), "document upload directory")
	flag.Parse()

	// Initialize stores
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	documents, err := docstore.NewFS(*uploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	// Initialize handler and router
	handler := api.NewHandler(store, documents)
	router := api.NewRouter(handler)

	// Background completion sweep
	sweeper := api.NewCompletionSweeper(handler.Requests)
	sweeper.Start()
	defer sweeper.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
