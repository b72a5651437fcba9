package models

import "time"

// TicketExpirationInput is the input for the ticket expiration workflow
type TicketExpirationInput struct {
	TicketID      string        `json:"ticketId"`
	PendingWindow time.Duration `json:"pendingWindow"`
}

// TicketExpirationResult is the result of the ticket expiration workflow
type TicketExpirationResult struct {
	Expired bool `json:"expired"`
}
