package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.temporal.io/sdk/client"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/config"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/database"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/directory"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/handlers"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/inventory"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/router"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/service"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/websocket"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Database
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := runMigrations(ctx, pool); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis cache for route/trip/pricing reads
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable at %s, reference reads fall through to the database: %v", cfg.RedisAddr, err)
	}

	// Temporal client for durable ticket expiration
	temporalClient, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
	})
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer temporalClient.Close()

	// Wire the layers together
	repo := database.NewRepository(pool)
	dir := directory.New(repo, rdb)
	inv := inventory.New(repo, dir)

	hub := websocket.NewHub()
	go hub.Run()

	bookingService := service.NewBookingService(repo, inv, dir, hub, service.NewTemporalScheduler(temporalClient), service.BookingConfig{
		PendingExpiration:  cfg.PendingExpiration,
		CheckinWindow:      cfg.CheckinWindow,
		CancellationWindow: cfg.CancellationWindow,
	})
	scheduleService := service.NewScheduleService(repo)
	pricingService := service.NewPricingService(repo, dir)

	h := handlers.NewHandler(bookingService, scheduleService, pricingService, dir, dir)
	r := router.SetupRouter(h, hub)

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("API Server starting on port %s", cfg.APIPort)
		log.Printf("Connected to Temporal server at %s", cfg.TemporalHost)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// runMigrations applies the SQL files under migrations/ in name order. The
// statements are idempotent (CREATE ... IF NOT EXISTS), so reapplying on
// every start is safe.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := filepath.Glob("migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)

	for _, file := range files {
		sql, err := os.ReadFile(file)
		if err != nil {
			return err
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return err
		}
		log.Printf("Applied migration %s", file)
	}
	return nil
}
