package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// TemporalScheduler arms ticket expirations as Temporal workflows, so a
// pending ticket is released even if every process restarts before the
// window elapses.
type TemporalScheduler struct {
	client client.Client
}

// NewTemporalScheduler creates a TemporalScheduler.
func NewTemporalScheduler(c client.Client) *TemporalScheduler {
	return &TemporalScheduler{client: c}
}

// ScheduleExpiration starts the expiration workflow for a ticket. The
// workflow ID is derived from the ticket ID, so re-arming the same ticket is
// a no-op instead of a duplicate timer.
func (s *TemporalScheduler) ScheduleExpiration(ctx context.Context, ticketID uuid.UUID, pendingWindow time.Duration) error {
	workflowOptions := client.StartWorkflowOptions{
		ID:        "ticket-expiration-" + ticketID.String(),
		TaskQueue: TaskQueue,
	}

	input := models.TicketExpirationInput{
		TicketID:      ticketID.String(),
		PendingWindow: pendingWindow,
	}

	_, err := s.client.ExecuteWorkflow(ctx, workflowOptions, "TicketExpirationWorkflow", input)
	if err != nil {
		return fmt.Errorf("failed to start expiration workflow: %w", err)
	}
	return nil
}

// NopScheduler satisfies ExpirationScheduler without arming anything. The
// worker binary uses it: expirations are only armed at booking time, which
// happens in the API server.
type NopScheduler struct{}

func (NopScheduler) ScheduleExpiration(ctx context.Context, ticketID uuid.UUID, pendingWindow time.Duration) error {
	return nil
}
