// Package receipts renders printable PDF receipts for tickets.
package receipts

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// Build renders the receipt for a ticket and returns the PDF bytes together
// with a download file name. The route supplies the human-readable stop
// names.
func Build(ticket *models.Ticket, route *models.BusRoute) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Ticket Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "VINSHUTTLE TICKET")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Ticket     : %s", ticket.ID),
		fmt.Sprintf("Passenger  : %s", safe(ticket.PassengerInfo.Name, "-")),
		fmt.Sprintf("Phone      : %s", safe(ticket.PassengerInfo.Phone, "-")),
		fmt.Sprintf("Route      : %s", safe(route.Name, "-")),
		fmt.Sprintf("Segment    : %s -> %s", stopName(route, ticket.FromStopID.String()), stopName(route, ticket.ToStopID.String())),
		fmt.Sprintf("Boarding   : %s", ticket.BoardingTime.Format("02-01-2006 15:04")),
		fmt.Sprintf("Seats      : %d", ticket.NumberOfSeats),
		fmt.Sprintf("Fare       : %s VND", formatAmount(ticket.Fare)),
		fmt.Sprintf("Status     : %s", ticket.Status),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Issued %s", time.Now().Format("02-01-2006 15:04")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render receipt: %w", err)
	}
	name := fmt.Sprintf("ticket-%s.pdf", ticket.ID)
	return buf.Bytes(), name, nil
}

func stopName(route *models.BusRoute, stopID string) string {
	for _, s := range route.Stops {
		if s.StopID.String() == stopID {
			return s.Name
		}
	}
	return stopID
}

func safe(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// formatAmount groups digits by thousands, the usual VND notation.
func formatAmount(v int64) string {
	s := fmt.Sprintf("%d", v)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, '.')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
