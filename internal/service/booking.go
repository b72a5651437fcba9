package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/apperrors"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/database"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/events"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/fare"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/inventory"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// allowedTransitions is the full ticket lifecycle. Any (from, to) pair not
// listed here is an invalid transition.
var allowedTransitions = map[models.TicketStatus][]models.TicketStatus{
	models.TicketStatusPending:   {models.TicketStatusBooked, models.TicketStatusCancelled, models.TicketStatusExpired},
	models.TicketStatusBooked:    {models.TicketStatusCheckedIn, models.TicketStatusCancelled},
	models.TicketStatusCheckedIn: {models.TicketStatusCompleted},
}

func transitionAllowed(from, to models.TicketStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// bookingServiceImpl implements BookingService
type bookingServiceImpl struct {
	tickets   TicketStore
	inventory *inventory.Inventory
	ref       ReferenceData
	sink      events.Sink
	scheduler ExpirationScheduler

	pendingExpiration  time.Duration
	checkinWindow      time.Duration
	cancellationWindow time.Duration

	now func() time.Time
}

// BookingConfig carries the booking time windows.
type BookingConfig struct {
	PendingExpiration  time.Duration
	CheckinWindow      time.Duration
	CancellationWindow time.Duration
}

// NewBookingService creates a new BookingService
func NewBookingService(tickets TicketStore, inv *inventory.Inventory, ref ReferenceData, sink events.Sink, scheduler ExpirationScheduler, cfg BookingConfig) BookingService {
	return &bookingServiceImpl{
		tickets:            tickets,
		inventory:          inv,
		ref:                ref,
		sink:               sink,
		scheduler:          scheduler,
		pendingExpiration:  cfg.PendingExpiration,
		checkinWindow:      cfg.CheckinWindow,
		cancellationWindow: cfg.CancellationWindow,
		now:                time.Now,
	}
}

func (s *bookingServiceImpl) CreateTicket(ctx context.Context, req *models.CreateTicketRequest) (*models.Ticket, error) {
	if req.NumberOfSeats < 1 {
		return nil, apperrors.Validation("number of seats must be at least 1", "Số ghế phải lớn hơn 0")
	}
	if req.FromStopID == req.ToStopID {
		return nil, apperrors.Validation("boarding and alighting stops must differ", "Điểm lên và điểm xuống phải khác nhau")
	}
	if req.PassengerInfo.Name == "" {
		return nil, apperrors.Validation("passenger name is required", "Tên hành khách là bắt buộc")
	}
	if req.BoardingTime.Before(s.now()) {
		return nil, apperrors.Validation("boarding time must not be in the past", "Thời gian lên xe không được ở trong quá khứ")
	}

	trip, err := s.ref.GetTrip(ctx, req.BusTripID)
	if err != nil {
		return nil, mapLookupErr(err, "trip")
	}
	if trip.BusRouteID != req.BusRouteID {
		return nil, apperrors.Validationf("trip %s does not run on route %s", req.BusTripID, req.BusRouteID)
	}

	route, err := s.ref.GetRoute(ctx, req.BusRouteID)
	if err != nil {
		return nil, mapLookupErr(err, "route")
	}
	fromStop, toStop, err := segmentStops(route, req.FromStopID, req.ToStopID)
	if err != nil {
		return nil, err
	}

	category, err := s.ref.GetVehicleCategory(ctx, route.VehicleCategoryID)
	if err != nil {
		return nil, mapLookupErr(err, "vehicle category")
	}
	if req.NumberOfSeats > category.NumberOfSeats {
		return nil, apperrors.Validation(
			fmt.Sprintf("number of seats %d exceeds vehicle capacity %d", req.NumberOfSeats, category.NumberOfSeats),
			"Số ghế vượt quá sức chứa của xe",
		)
	}

	quote, err := s.quoteSegment(ctx, route, fromStop, toStop, req.NumberOfSeats)
	if err != nil {
		return nil, err
	}

	// Fast pre-check so obviously full segments fail before any mutation.
	// Correctness does not depend on it: Reserve below is atomic.
	availability, err := s.inventory.CheckAvailability(ctx, req.BusTripID, req.FromStopID, req.ToStopID, req.NumberOfSeats)
	if err != nil {
		return nil, mapLookupErr(err, "segment")
	}
	if !availability.Available {
		return nil, segmentFullError()
	}

	if err := s.inventory.Reserve(ctx, req.BusTripID, req.FromStopID, req.ToStopID, req.NumberOfSeats); err != nil {
		if errors.Is(err, database.ErrSegmentFull) {
			return nil, segmentFullError()
		}
		return nil, err
	}

	ticket := &models.Ticket{
		ID:                  uuid.New(),
		BusRouteID:          req.BusRouteID,
		BusTripID:           req.BusTripID,
		FromStopID:          req.FromStopID,
		ToStopID:            req.ToStopID,
		NumberOfSeats:       req.NumberOfSeats,
		Fare:                quote.TotalPrice,
		BoardingTime:        req.BoardingTime,
		ExpectedDropOffTime: req.ExpectedDropOffTime,
		Status:              models.TicketStatusPending,
		PassengerID:         req.PassengerID,
		PassengerInfo:       req.PassengerInfo,
	}
	if err := s.tickets.CreateTicket(ctx, ticket); err != nil {
		// Roll the seats back so a storage failure leaves no partial state.
		if releaseErr := s.inventory.Release(ctx, req.BusTripID, req.FromStopID, req.ToStopID, req.NumberOfSeats); releaseErr != nil {
			log.Printf("booking: failed to release seats after create failure for trip %s: %v", req.BusTripID, releaseErr)
		}
		return nil, err
	}

	// Detached, best-effort: a scheduling failure must not fail the booking.
	if err := s.scheduler.ScheduleExpiration(ctx, ticket.ID, s.pendingExpiration); err != nil {
		log.Printf("booking: failed to schedule expiration for ticket %s: %v", ticket.ID, err)
	}

	s.sink.SeatsUpdated(ticket.BusTripID, ticket.FromStopID, ticket.ToStopID, -ticket.NumberOfSeats)

	return ticket, nil
}

func (s *bookingServiceImpl) GetTicket(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	t, err := s.tickets.GetTicketByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err, "ticket")
	}
	return t, nil
}

func (s *bookingServiceImpl) UpdateTicketStatus(ctx context.Context, id uuid.UUID, newStatus models.TicketStatus) (*models.Ticket, error) {
	t, err := s.tickets.GetTicketByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err, "ticket")
	}

	if !transitionAllowed(t.Status, newStatus) {
		return nil, apperrors.Conflict(
			fmt.Sprintf("invalid ticket status transition from %s to %s", t.Status, newStatus),
			"Chuyển trạng thái vé không hợp lệ",
		)
	}

	now := s.now()
	switch newStatus {
	case models.TicketStatusCheckedIn:
		if now.Before(t.BoardingTime.Add(-s.checkinWindow)) {
			return nil, apperrors.Validation(
				fmt.Sprintf("check-in opens %d minutes before boarding", int(s.checkinWindow.Minutes())),
				"Chưa đến giờ check-in",
			)
		}
	case models.TicketStatusCancelled:
		if t.Status == models.TicketStatusBooked && now.After(t.BoardingTime.Add(-s.cancellationWindow)) {
			return nil, apperrors.Validation(
				fmt.Sprintf("cancellation closes %d minutes before boarding", int(s.cancellationWindow.Minutes())),
				"Đã quá hạn hủy vé",
			)
		}
	}

	// Cancellation frees the held seats in the same transaction as the
	// transition; a failure on either side leaves both untouched, so the
	// caller can simply retry.
	var ok bool
	if newStatus == models.TicketStatusCancelled {
		ok, err = s.tickets.TransitionAndReleaseSeats(ctx, t, t.Status, newStatus)
	} else {
		ok, err = s.tickets.TransitionTicketStatus(ctx, id, t.Status, newStatus)
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent update (or the expiration firing) won the race.
		return nil, apperrors.Conflict(
			fmt.Sprintf("ticket status changed concurrently, no longer %s", t.Status),
			"Vé vừa được cập nhật, vui lòng thử lại",
		)
	}
	t.Status = newStatus
	t.UpdatedAt = now

	if newStatus == models.TicketStatusCancelled {
		s.sink.SeatsUpdated(t.BusTripID, t.FromStopID, t.ToStopID, t.NumberOfSeats)
	}

	s.sink.TicketStatusChanged(t)

	if newStatus == models.TicketStatusCheckedIn || newStatus == models.TicketStatusCompleted {
		if _, err := s.GetActivePassengers(ctx, t.BusTripID); err != nil {
			log.Printf("booking: failed to broadcast active passengers for trip %s: %v", t.BusTripID, err)
		}
	}

	return t, nil
}

// ExpireTicket releases a still-pending ticket. It reports whether this call
// performed the expiration; calling it on a ticket that already left pending
// is a no-op, which makes the detached expiration idempotent.
func (s *bookingServiceImpl) ExpireTicket(ctx context.Context, id uuid.UUID) (bool, error) {
	t, err := s.tickets.GetTicketByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if t.Status != models.TicketStatusPending {
		return false, nil
	}

	// Transition and seat release commit together; a failure leaves the
	// ticket pending so the activity retry picks it up again.
	ok, err := s.tickets.TransitionAndReleaseSeats(ctx, t, models.TicketStatusPending, models.TicketStatusExpired)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	t.Status = models.TicketStatusExpired
	s.sink.SeatsUpdated(t.BusTripID, t.FromStopID, t.ToStopID, t.NumberOfSeats)
	s.sink.TicketStatusChanged(t)

	return true, nil
}

func (s *bookingServiceImpl) CheckAvailability(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, seats int) (*models.AvailabilityResponse, error) {
	resp, err := s.inventory.CheckAvailability(ctx, tripID, fromStopID, toStopID, seats)
	if err != nil {
		return nil, mapLookupErr(err, "trip")
	}
	return resp, nil
}

func (s *bookingServiceImpl) GetActivePassengers(ctx context.Context, tripID uuid.UUID) ([]models.ActivePassenger, error) {
	tickets, err := s.tickets.GetTicketsByTripAndStatus(ctx, tripID, models.TicketStatusCheckedIn)
	if err != nil {
		return nil, err
	}

	passengers := make([]models.ActivePassenger, 0, len(tickets))
	for _, t := range tickets {
		passengers = append(passengers, models.ActivePassenger{
			TicketID:      t.ID,
			PassengerName: t.PassengerInfo.Name,
			FromStopID:    t.FromStopID,
			ToStopID:      t.ToStopID,
			NumberOfSeats: t.NumberOfSeats,
		})
	}

	s.sink.ActivePassengerListUpdated(tripID, passengers)
	return passengers, nil
}

func (s *bookingServiceImpl) QuoteFare(ctx context.Context, routeID, fromStopID, toStopID uuid.UUID, seats int) (*models.FareQuote, error) {
	if seats < 1 {
		return nil, apperrors.Validation("number of seats must be at least 1", "Số ghế phải lớn hơn 0")
	}

	route, err := s.ref.GetRoute(ctx, routeID)
	if err != nil {
		return nil, mapLookupErr(err, "route")
	}
	fromStop, toStop, err := segmentStops(route, fromStopID, toStopID)
	if err != nil {
		return nil, err
	}

	return s.quoteSegment(ctx, route, fromStop, toStop, seats)
}

// quoteSegment prices a route segment: the consumption units are the
// distance or estimated-time difference between the two stops, depending on
// the service config's base unit type, and the per-seat price is multiplied
// by the seat count.
func (s *bookingServiceImpl) quoteSegment(ctx context.Context, route *models.BusRoute, fromStop, toStop *models.RouteStop, seats int) (*models.FareQuote, error) {
	config, err := s.ref.GetServiceConfig(ctx, DefaultServiceType)
	if err != nil {
		return nil, mapLookupErr(err, "service config")
	}
	pricing, err := s.ref.GetVehiclePricing(ctx, route.VehicleCategoryID, config.ID)
	if err != nil {
		return nil, mapLookupErr(err, "vehicle pricing")
	}

	var units float64
	if config.BaseUnitType == "minute" {
		units = math.Abs(toStop.EstimatedTime - fromStop.EstimatedTime)
	} else {
		units = math.Abs(toStop.DistanceFromStart - fromStop.DistanceFromStart)
	}

	perSeat, trace := fare.Compute(config.BaseUnit, pricing.TieredPricing, units)
	total := perSeat * int64(seats)
	if seats > 1 {
		trace = append(trace, fmt.Sprintf("%d per seat x %d seats = %d", perSeat, seats, total))
	}

	return &models.FareQuote{TotalPrice: total, Trace: trace}, nil
}

func segmentStops(route *models.BusRoute, fromStopID, toStopID uuid.UUID) (*models.RouteStop, *models.RouteStop, error) {
	fromStop := route.StopByID(fromStopID)
	if fromStop == nil {
		return nil, nil, apperrors.Validationf("stop %s is not on route %s", fromStopID, route.ID)
	}
	toStop := route.StopByID(toStopID)
	if toStop == nil {
		return nil, nil, apperrors.Validationf("stop %s is not on route %s", toStopID, route.ID)
	}
	return fromStop, toStop, nil
}

func segmentFullError() error {
	return apperrors.Conflict(
		"not enough seats available on this segment",
		"Không đủ ghế trống cho chặng này",
	)
}

func mapLookupErr(err error, what string) error {
	if errors.Is(err, database.ErrNotFound) {
		return apperrors.NotFoundf("%s not found", what)
	}
	return err
}
