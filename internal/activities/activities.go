package activities

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
)

// TicketExpirer releases a pending ticket and its held seats. The call
// reports whether it actually expired anything so callers can tell a real
// expiration apart from a no-op on an already-booked ticket.
type TicketExpirer interface {
	ExpireTicket(ctx context.Context, ticketID uuid.UUID) (bool, error)
}

// Activities bundles the worker-side operations the expiration workflow runs.
type Activities struct {
	booking TicketExpirer
}

func NewActivities(booking TicketExpirer) *Activities {
	return &Activities{booking: booking}
}

// ExpireTicket activity - expires a ticket if it is still pending.
// Safe to retry: once the ticket left pending the call does nothing.
func (a *Activities) ExpireTicket(ctx context.Context, ticketID string) (bool, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Expiring ticket", "ticketId", ticketID)

	id, err := uuid.Parse(ticketID)
	if err != nil {
		return false, fmt.Errorf("invalid ticket id %q: %w", ticketID, err)
	}

	expired, err := a.booking.ExpireTicket(ctx, id)
	if err != nil {
		return false, fmt.Errorf("expire ticket %s: %w", ticketID, err)
	}

	if expired {
		logger.Info("Ticket expired and seats released", "ticketId", ticketID)
	} else {
		logger.Info("Ticket no longer pending, skipping", "ticketId", ticketID)
	}
	return expired, nil
}
