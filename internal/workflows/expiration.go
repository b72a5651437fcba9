package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// TicketExpirationWorkflow holds the pending window for one ticket, then
// releases it if it is still pending. The timer lives in Temporal, so it
// survives process restarts; the ExpireTicket activity is a no-op whenever
// the ticket already left pending, which makes replays and duplicate firings
// harmless.
func TicketExpirationWorkflow(ctx workflow.Context, input models.TicketExpirationInput) (*models.TicketExpirationResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Ticket expiration armed", "ticketId", input.TicketID, "window", input.PendingWindow)

	if input.PendingWindow > 0 {
		if err := workflow.Sleep(ctx, input.PendingWindow); err != nil {
			return nil, err
		}
	}

	activityOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOpts)

	var expired bool
	if err := workflow.ExecuteActivity(ctx, "ExpireTicket", input.TicketID).Get(ctx, &expired); err != nil {
		logger.Error("Expiration activity failed", "ticketId", input.TicketID, "error", err)
		return nil, err
	}

	if expired {
		logger.Info("Ticket expired", "ticketId", input.TicketID)
	} else {
		logger.Info("Ticket already left pending, nothing to expire", "ticketId", input.TicketID)
	}

	return &models.TicketExpirationResult{Expired: expired}, nil
}
