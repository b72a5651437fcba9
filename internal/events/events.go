// Package events defines the fire-and-forget event contract the booking
// engine emits on. The server wires the websocket hub in; the worker, which
// has no connected clients, wires the log sink.
package events

import (
	"log"

	"github.com/google/uuid"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// Sink receives booking events. Implementations must not block the caller
// and must not return errors; delivery is best effort.
type Sink interface {
	SeatsUpdated(tripID, fromStopID, toStopID uuid.UUID, availableSeatsDelta int)
	TicketStatusChanged(ticket *models.Ticket)
	ActivePassengerListUpdated(tripID uuid.UUID, passengers []models.ActivePassenger)
}

// LogSink writes events to the process log.
type LogSink struct{}

// NewLogSink creates a LogSink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) SeatsUpdated(tripID, fromStopID, toStopID uuid.UUID, availableSeatsDelta int) {
	log.Printf("event: seats updated trip=%s segment=%s->%s delta=%d", tripID, fromStopID, toStopID, availableSeatsDelta)
}

func (s *LogSink) TicketStatusChanged(ticket *models.Ticket) {
	log.Printf("event: ticket %s status=%s", ticket.ID, ticket.Status)
}

func (s *LogSink) ActivePassengerListUpdated(tripID uuid.UUID, passengers []models.ActivePassenger) {
	log.Printf("event: active passengers trip=%s count=%d", tripID, len(passengers))
}
