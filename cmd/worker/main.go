package main

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/activities"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/config"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/database"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/directory"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/events"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/inventory"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/service"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/workflows"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// Connect to database
	log.Println("Connecting to database...")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Connect to Temporal
	log.Printf("Connecting to Temporal at %s...", cfg.TemporalHost)
	c, err := client.Dial(client.Options{
		HostPort: cfg.TemporalHost,
	})
	if err != nil {
		log.Fatalf("Failed to connect to Temporal: %v", err)
	}
	defer c.Close()
	log.Println("Connected to Temporal")

	// The worker reads reference data straight from the database; it has no
	// websocket clients, so events go to the log.
	repo := database.NewRepository(pool)
	dir := directory.New(repo, nil)
	inv := inventory.New(repo, dir)
	bookingService := service.NewBookingService(repo, inv, dir, events.NewLogSink(), service.NopScheduler{}, service.BookingConfig{
		PendingExpiration:  cfg.PendingExpiration,
		CheckinWindow:      cfg.CheckinWindow,
		CancellationWindow: cfg.CancellationWindow,
	})

	// Create worker
	w := worker.New(c, service.TaskQueue, worker.Options{})

	// Register workflows
	w.RegisterWorkflow(workflows.TicketExpirationWorkflow)

	// Create and register activities
	acts := activities.NewActivities(bookingService)
	w.RegisterActivityWithOptions(acts.ExpireTicket, activity.RegisterOptions{Name: "ExpireTicket"})

	// Start worker
	log.Println("Starting Temporal worker...")
	err = w.Run(worker.InterruptCh())
	if err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}
