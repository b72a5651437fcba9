package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/apperrors"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/database"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/inventory"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// --- in-memory fakes -------------------------------------------------------

type memTickets struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*models.Ticket
	segments  *memSegments
	createErr error
	txErr     error
}

func newMemTickets() *memTickets {
	return &memTickets{byID: make(map[uuid.UUID]*models.Ticket)}
}

func (m *memTickets) CreateTicket(ctx context.Context, t *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *t
	m.byID[t.ID] = &cp
	return nil
}

func (m *memTickets) GetTicketByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTickets) TransitionTicketStatus(ctx context.Context, id uuid.UUID, from, to models.TicketStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	return true, nil
}

// TransitionAndReleaseSeats mirrors the repository transaction: either the
// status flips and the seats come back, or nothing changes at all.
func (m *memTickets) TransitionAndReleaseSeats(ctx context.Context, t *models.Ticket, from, to models.TicketStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[t.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	if m.txErr != nil {
		return false, m.txErr
	}
	stored.Status = to
	if m.segments != nil {
		if err := m.segments.ApplySegmentDelta(ctx, t.BusTripID, t.FromStopID, t.ToStopID, -t.NumberOfSeats); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (m *memTickets) GetTicketsByTripAndStatus(ctx context.Context, tripID uuid.UUID, status models.TicketStatus) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ticket
	for _, t := range m.byID {
		if t.BusTripID == tripID && t.Status == status {
			out = append(out, *t)
		}
	}
	return out, nil
}

type segKey struct {
	trip, from, to uuid.UUID
}

type memSegments struct {
	mu       sync.Mutex
	occupied map[segKey]int
}

func newMemSegments() *memSegments {
	return &memSegments{occupied: make(map[segKey]int)}
}

func (m *memSegments) GetSegmentOccupancy(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.occupied[segKey{tripID, fromStopID, toStopID}], nil
}

func (m *memSegments) ReserveSegmentSeats(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, seats, capacity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := segKey{tripID, fromStopID, toStopID}
	if m.occupied[k]+seats > capacity {
		return database.ErrSegmentFull
	}
	m.occupied[k] += seats
	return nil
}

func (m *memSegments) ApplySegmentDelta(ctx context.Context, tripID, fromStopID, toStopID uuid.UUID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := segKey{tripID, fromStopID, toStopID}
	next := m.occupied[k] + delta
	if next < 0 {
		next = 0
	}
	m.occupied[k] = next
	return nil
}

type memRef struct {
	routes     map[uuid.UUID]*models.BusRoute
	trips      map[uuid.UUID]*models.BusTrip
	categories map[uuid.UUID]*models.VehicleCategory
	configs    map[string]*models.ServiceConfig
	pricings   map[[2]uuid.UUID]*models.VehiclePricing
}

func (m *memRef) GetRoute(ctx context.Context, id uuid.UUID) (*models.BusRoute, error) {
	if r, ok := m.routes[id]; ok {
		return r, nil
	}
	return nil, database.ErrNotFound
}

func (m *memRef) GetTrip(ctx context.Context, id uuid.UUID) (*models.BusTrip, error) {
	if t, ok := m.trips[id]; ok {
		return t, nil
	}
	return nil, database.ErrNotFound
}

func (m *memRef) GetVehicleCategory(ctx context.Context, id uuid.UUID) (*models.VehicleCategory, error) {
	if c, ok := m.categories[id]; ok {
		return c, nil
	}
	return nil, database.ErrNotFound
}

func (m *memRef) GetServiceConfig(ctx context.Context, serviceType string) (*models.ServiceConfig, error) {
	if c, ok := m.configs[serviceType]; ok {
		return c, nil
	}
	return nil, database.ErrNotFound
}

func (m *memRef) GetVehiclePricing(ctx context.Context, categoryID, configID uuid.UUID) (*models.VehiclePricing, error) {
	if p, ok := m.pricings[[2]uuid.UUID{categoryID, configID}]; ok {
		return p, nil
	}
	return nil, database.ErrNotFound
}

// TripCapacity mirrors the directory resolution chain trip -> route -> category.
func (m *memRef) TripCapacity(ctx context.Context, tripID uuid.UUID) (int, error) {
	trip, err := m.GetTrip(ctx, tripID)
	if err != nil {
		return 0, err
	}
	route, err := m.GetRoute(ctx, trip.BusRouteID)
	if err != nil {
		return 0, err
	}
	category, err := m.GetVehicleCategory(ctx, route.VehicleCategoryID)
	if err != nil {
		return 0, err
	}
	return category.NumberOfSeats, nil
}

type seatEvent struct {
	trip, from, to uuid.UUID
	delta          int
}

type recordSink struct {
	mu          sync.Mutex
	seatEvents  []seatEvent
	statuses    []models.TicketStatus
	passengerUp int
}

func (s *recordSink) SeatsUpdated(tripID, fromStopID, toStopID uuid.UUID, availableSeatsDelta int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seatEvents = append(s.seatEvents, seatEvent{tripID, fromStopID, toStopID, availableSeatsDelta})
}

func (s *recordSink) TicketStatusChanged(ticket *models.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses = append(s.statuses, ticket.Status)
}

func (s *recordSink) ActivePassengerListUpdated(tripID uuid.UUID, passengers []models.ActivePassenger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passengerUp++
}

type recordScheduler struct {
	calls   []uuid.UUID
	windows []time.Duration
	err     error
}

func (s *recordScheduler) ScheduleExpiration(ctx context.Context, ticketID uuid.UUID, pendingWindow time.Duration) error {
	s.calls = append(s.calls, ticketID)
	s.windows = append(s.windows, pendingWindow)
	return s.err
}

// --- fixture ---------------------------------------------------------------

type bookingFixture struct {
	svc       *bookingServiceImpl
	tickets   *memTickets
	segments  *memSegments
	ref       *memRef
	sink      *recordSink
	scheduler *recordScheduler

	routeID    uuid.UUID
	tripID     uuid.UUID
	categoryID uuid.UUID
	stopA      uuid.UUID
	stopB      uuid.UUID
	stopC      uuid.UUID
	clock      time.Time
}

const fixtureCapacity = 16

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	f := &bookingFixture{
		tickets:    newMemTickets(),
		segments:   newMemSegments(),
		sink:       &recordSink{},
		scheduler:  &recordScheduler{},
		routeID:    uuid.New(),
		tripID:     uuid.New(),
		categoryID: uuid.New(),
		stopA:      uuid.New(),
		stopB:      uuid.New(),
		stopC:      uuid.New(),
		clock:      time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}

	f.tickets.segments = f.segments

	configID := uuid.New()
	f.ref = &memRef{
		routes: map[uuid.UUID]*models.BusRoute{
			f.routeID: {
				ID:                f.routeID,
				Name:              "VinHomes Grand Park loop",
				VehicleCategoryID: f.categoryID,
				Stops: []models.RouteStop{
					{StopID: f.stopA, Name: "Gate A", DistanceFromStart: 0, EstimatedTime: 0},
					{StopID: f.stopB, Name: "Central Mall", DistanceFromStart: 5, EstimatedTime: 10},
					{StopID: f.stopC, Name: "Gate C", DistanceFromStart: 12, EstimatedTime: 25},
				},
			},
		},
		trips: map[uuid.UUID]*models.BusTrip{
			f.tripID: {ID: f.tripID, BusRouteID: f.routeID, TripNumber: 1, StartTime: f.clock.Add(2 * time.Hour)},
		},
		categories: map[uuid.UUID]*models.VehicleCategory{
			f.categoryID: {ID: f.categoryID, Name: "Shuttle 16", NumberOfSeats: fixtureCapacity},
		},
		configs: map[string]*models.ServiceConfig{
			DefaultServiceType: {ID: configID, ServiceType: DefaultServiceType, BaseUnit: 1, BaseUnitType: "km"},
		},
		pricings: map[[2]uuid.UUID]*models.VehiclePricing{
			{f.categoryID, configID}: {
				ID:                uuid.New(),
				VehicleCategoryID: f.categoryID,
				ServiceConfigID:   configID,
				TieredPricing:     []models.PricingTier{{Range: 0, Price: 10000}},
			},
		},
	}

	inv := inventory.New(f.segments, f.ref)
	svc := NewBookingService(f.tickets, inv, f.ref, f.sink, f.scheduler, BookingConfig{
		PendingExpiration:  15 * time.Minute,
		CheckinWindow:      30 * time.Minute,
		CancellationWindow: 60 * time.Minute,
	})
	f.svc = svc.(*bookingServiceImpl)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *bookingFixture) createRequest() *models.CreateTicketRequest {
	return &models.CreateTicketRequest{
		BusRouteID:          f.routeID,
		BusTripID:           f.tripID,
		FromStopID:          f.stopA,
		ToStopID:            f.stopC,
		NumberOfSeats:       2,
		BoardingTime:        f.clock.Add(2 * time.Hour),
		ExpectedDropOffTime: f.clock.Add(2*time.Hour + 25*time.Minute),
		PassengerID:         uuid.New(),
		PassengerInfo:       models.PassengerInfo{Name: "Nguyen Van A", Phone: "0901234567"},
	}
}

func (f *bookingFixture) occupied(t *testing.T) int {
	t.Helper()
	n, err := f.segments.GetSegmentOccupancy(context.Background(), f.tripID, f.stopA, f.stopC)
	require.NoError(t, err)
	return n
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, kind, appErr.Kind)
}

// --- CreateTicket ----------------------------------------------------------

func TestCreateTicket_Success(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	ticket, err := f.svc.CreateTicket(ctx, f.createRequest())
	require.NoError(t, err)

	assert.Equal(t, models.TicketStatusPending, ticket.Status)
	// 12 km segment at 10000/km, 2 seats.
	assert.Equal(t, int64(240000), ticket.Fare)
	assert.Equal(t, 2, f.occupied(t))

	require.Len(t, f.scheduler.calls, 1)
	assert.Equal(t, ticket.ID, f.scheduler.calls[0])
	assert.Equal(t, 15*time.Minute, f.scheduler.windows[0])

	require.Len(t, f.sink.seatEvents, 1)
	assert.Equal(t, -2, f.sink.seatEvents[0].delta)

	stored, err := f.tickets.GetTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusPending, stored.Status)
}

func TestCreateTicket_Validation(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*models.CreateTicketRequest)
	}{
		{"zero seats", func(r *models.CreateTicketRequest) { r.NumberOfSeats = 0 }},
		{"same stops", func(r *models.CreateTicketRequest) { r.ToStopID = r.FromStopID }},
		{"missing passenger name", func(r *models.CreateTicketRequest) { r.PassengerInfo.Name = "" }},
		{"boarding in the past", func(r *models.CreateTicketRequest) { r.BoardingTime = f.clock.Add(-time.Minute) }},
		{"stop not on route", func(r *models.CreateTicketRequest) { r.ToStopID = uuid.New() }},
		{"seats above capacity", func(r *models.CreateTicketRequest) { r.NumberOfSeats = fixtureCapacity + 1 }},
		{"trip on another route", func(r *models.CreateTicketRequest) {
			otherTrip := uuid.New()
			f.ref.trips[otherTrip] = &models.BusTrip{ID: otherTrip, BusRouteID: uuid.New()}
			r.BusTripID = otherTrip
		}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := f.createRequest()
			tc.mutate(req)
			_, err := f.svc.CreateTicket(ctx, req)
			assertKind(t, err, apperrors.KindValidation)
			assert.Equal(t, 0, f.occupied(t), "failed booking must not hold seats")
		})
	}
}

func TestCreateTicket_SegmentFull(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.segments.ReserveSegmentSeats(ctx, f.tripID, f.stopA, f.stopC, fixtureCapacity-1, fixtureCapacity))

	_, err := f.svc.CreateTicket(ctx, f.createRequest())
	assertKind(t, err, apperrors.KindConflict)

	assert.Equal(t, fixtureCapacity-1, f.occupied(t))
	assert.Empty(t, f.scheduler.calls)
	assert.Empty(t, f.sink.seatEvents)
}

func TestCreateTicket_LastSeatBoundary(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	require.NoError(t, f.segments.ReserveSegmentSeats(ctx, f.tripID, f.stopA, f.stopC, fixtureCapacity-2, fixtureCapacity))

	// Exactly the remaining two seats must succeed.
	_, err := f.svc.CreateTicket(ctx, f.createRequest())
	require.NoError(t, err)
	assert.Equal(t, fixtureCapacity, f.occupied(t))

	// Segment is now full.
	_, err = f.svc.CreateTicket(ctx, f.createRequest())
	assertKind(t, err, apperrors.KindConflict)
}

func TestCreateTicket_StoreFailureReleasesSeats(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	f.tickets.createErr = errors.New("connection reset")

	_, err := f.svc.CreateTicket(ctx, f.createRequest())
	require.Error(t, err)

	assert.Equal(t, 0, f.occupied(t), "compensation must return the reserved seats")
	assert.Empty(t, f.scheduler.calls)
	assert.Empty(t, f.sink.seatEvents)
}

func TestCreateTicket_SchedulerFailureDoesNotFailBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.scheduler.err = errors.New("temporal unreachable")

	ticket, err := f.svc.CreateTicket(context.Background(), f.createRequest())
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusPending, ticket.Status)
	assert.Equal(t, 2, f.occupied(t))
}

// --- lifecycle transitions -------------------------------------------------

func TestTransitionTable(t *testing.T) {
	all := []models.TicketStatus{
		models.TicketStatusPending,
		models.TicketStatusBooked,
		models.TicketStatusCheckedIn,
		models.TicketStatusCompleted,
		models.TicketStatusCancelled,
		models.TicketStatusExpired,
	}
	allowed := map[models.TicketStatus]map[models.TicketStatus]bool{
		models.TicketStatusPending:   {models.TicketStatusBooked: true, models.TicketStatusCancelled: true, models.TicketStatusExpired: true},
		models.TicketStatusBooked:    {models.TicketStatusCheckedIn: true, models.TicketStatusCancelled: true},
		models.TicketStatusCheckedIn: {models.TicketStatusCompleted: true},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[from][to], transitionAllowed(from, to),
				"transition %s -> %s", from, to)
		}
	}

	for _, s := range all {
		if len(allowed[s]) == 0 {
			assert.True(t, s.IsTerminal(), "%s has no outgoing transitions", s)
		} else {
			assert.False(t, s.IsTerminal())
		}
	}
}

func (f *bookingFixture) bookTicket(t *testing.T, status models.TicketStatus) *models.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), f.createRequest())
	require.NoError(t, err)
	if status != models.TicketStatusPending {
		f.tickets.mu.Lock()
		f.tickets.byID[ticket.ID].Status = status
		f.tickets.mu.Unlock()
		ticket.Status = status
	}
	return ticket
}

func TestUpdateTicketStatus_PendingToBooked(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusPending)

	updated, err := f.svc.UpdateTicketStatus(context.Background(), ticket.ID, models.TicketStatusBooked)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusBooked, updated.Status)
	assert.Contains(t, f.sink.statuses, models.TicketStatusBooked)
	assert.Equal(t, 2, f.occupied(t), "confirming keeps the seats held")
}

func TestUpdateTicketStatus_InvalidTransition(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusCompleted)

	_, err := f.svc.UpdateTicketStatus(context.Background(), ticket.ID, models.TicketStatusCancelled)
	assertKind(t, err, apperrors.KindConflict)
}

func TestUpdateTicketStatus_UnknownTicket(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.UpdateTicketStatus(context.Background(), uuid.New(), models.TicketStatusBooked)
	assertKind(t, err, apperrors.KindNotFound)
}

func TestCheckin_WindowEnforced(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusBooked)

	// Boarding is two hours out, the 30 minute window has not opened.
	_, err := f.svc.UpdateTicketStatus(context.Background(), ticket.ID, models.TicketStatusCheckedIn)
	assertKind(t, err, apperrors.KindValidation)

	// Exactly at window open.
	f.clock = ticket.BoardingTime.Add(-30 * time.Minute)
	updated, err := f.svc.UpdateTicketStatus(context.Background(), ticket.ID, models.TicketStatusCheckedIn)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusCheckedIn, updated.Status)
}

func TestCheckin_AfterBoardingTimeStillAllowed(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusBooked)

	f.clock = ticket.BoardingTime.Add(5 * time.Minute)
	updated, err := f.svc.UpdateTicketStatus(context.Background(), ticket.ID, models.TicketStatusCheckedIn)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusCheckedIn, updated.Status)
}

func TestCancel_BookedWithinWindow(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusBooked)

	updated, err := f.svc.UpdateTicketStatus(context.Background(), ticket.ID, models.TicketStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusCancelled, updated.Status)
	assert.Equal(t, 0, f.occupied(t), "cancellation must free the seats")

	last := f.sink.seatEvents[len(f.sink.seatEvents)-1]
	assert.Equal(t, 2, last.delta)
}

func TestCancel_BookedPastWindowRejected(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusBooked)

	// 59 minutes before boarding, inside the 60 minute cutoff.
	f.clock = ticket.BoardingTime.Add(-59 * time.Minute)
	_, err := f.svc.UpdateTicketStatus(context.Background(), ticket.ID, models.TicketStatusCancelled)
	assertKind(t, err, apperrors.KindValidation)
	assert.Equal(t, 2, f.occupied(t))
}

func TestCancel_PendingIgnoresWindow(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusPending)

	// The cutoff only binds confirmed tickets; an unpaid hold can always be
	// abandoned.
	f.clock = ticket.BoardingTime.Add(-time.Minute)
	updated, err := f.svc.UpdateTicketStatus(context.Background(), ticket.ID, models.TicketStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusCancelled, updated.Status)
	assert.Equal(t, 0, f.occupied(t))
}

func TestSeatConservation_AcrossLifecycle(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	first := f.bookTicket(t, models.TicketStatusPending)
	second := f.bookTicket(t, models.TicketStatusPending)
	assert.Equal(t, 4, f.occupied(t))

	_, err := f.svc.UpdateTicketStatus(ctx, first.ID, models.TicketStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 2, f.occupied(t))

	expired, err := f.svc.ExpireTicket(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, 0, f.occupied(t))
}

// --- expiration ------------------------------------------------------------

func TestExpireTicket_Pending(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusPending)

	expired, err := f.svc.ExpireTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, 0, f.occupied(t))

	stored, err := f.tickets.GetTicketByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusExpired, stored.Status)
}

func TestExpireTicket_Idempotent(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusPending)

	expired, err := f.svc.ExpireTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, expired)

	// A retry of the expiration must not release seats twice.
	expired, err = f.svc.ExpireTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, 0, f.occupied(t))
}

func TestExpireTicket_AlreadyBookedNoOp(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusBooked)

	expired, err := f.svc.ExpireTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.False(t, expired)
	assert.Equal(t, 2, f.occupied(t), "a confirmed ticket keeps its seats")
}

func TestExpireTicket_UnknownTicketNoOp(t *testing.T) {
	f := newBookingFixture(t)

	expired, err := f.svc.ExpireTicket(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, expired)
}

func TestExpireTicket_StorageFailureKeepsTicketRetryable(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusPending)
	ctx := context.Background()

	// The transition and the seat release commit together, so a storage
	// failure must leave the ticket pending with its seats still held.
	f.tickets.txErr = errors.New("connection reset")
	expired, err := f.svc.ExpireTicket(ctx, ticket.ID)
	require.Error(t, err)
	assert.False(t, expired)

	stored, err := f.tickets.GetTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusPending, stored.Status)
	assert.Equal(t, 2, f.occupied(t))

	// The activity retry then completes the expiration and frees the seats.
	f.tickets.txErr = nil
	expired, err = f.svc.ExpireTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, expired)
	assert.Equal(t, 0, f.occupied(t), "expired ticket must not keep holding seats")
}

func TestCancel_StorageFailureKeepsTicketRetryable(t *testing.T) {
	f := newBookingFixture(t)
	ticket := f.bookTicket(t, models.TicketStatusBooked)
	ctx := context.Background()

	f.tickets.txErr = errors.New("connection reset")
	_, err := f.svc.UpdateTicketStatus(ctx, ticket.ID, models.TicketStatusCancelled)
	require.Error(t, err)

	stored, err := f.tickets.GetTicketByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusBooked, stored.Status)
	assert.Equal(t, 2, f.occupied(t))

	f.tickets.txErr = nil
	updated, err := f.svc.UpdateTicketStatus(ctx, ticket.ID, models.TicketStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusCancelled, updated.Status)
	assert.Equal(t, 0, f.occupied(t))
}

// --- queries ---------------------------------------------------------------

func TestCheckAvailability(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	f.bookTicket(t, models.TicketStatusPending)

	resp, err := f.svc.CheckAvailability(ctx, f.tripID, f.stopA, f.stopC, 14)
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, 2, resp.SeatsOccupied)
	assert.Equal(t, fixtureCapacity, resp.Capacity)

	resp, err = f.svc.CheckAvailability(ctx, f.tripID, f.stopA, f.stopC, 15)
	require.NoError(t, err)
	assert.False(t, resp.Available)
}

func TestGetActivePassengers(t *testing.T) {
	f := newBookingFixture(t)
	checkedIn := f.bookTicket(t, models.TicketStatusCheckedIn)
	f.bookTicket(t, models.TicketStatusBooked)

	passengers, err := f.svc.GetActivePassengers(context.Background(), f.tripID)
	require.NoError(t, err)
	require.Len(t, passengers, 1)
	assert.Equal(t, checkedIn.ID, passengers[0].TicketID)
	assert.Equal(t, "Nguyen Van A", passengers[0].PassengerName)
	assert.Equal(t, 1, f.sink.passengerUp)
}

func TestQuoteFare_DistanceBased(t *testing.T) {
	f := newBookingFixture(t)

	quote, err := f.svc.QuoteFare(context.Background(), f.routeID, f.stopA, f.stopB, 1)
	require.NoError(t, err)
	// 5 km at 10000/km.
	assert.Equal(t, int64(50000), quote.TotalPrice)
	assert.NotEmpty(t, quote.Trace)
}

func TestQuoteFare_TimeBased(t *testing.T) {
	f := newBookingFixture(t)
	f.ref.configs[DefaultServiceType].BaseUnitType = "minute"

	quote, err := f.svc.QuoteFare(context.Background(), f.routeID, f.stopA, f.stopB, 1)
	require.NoError(t, err)
	// 10 minutes at 10000/minute.
	assert.Equal(t, int64(100000), quote.TotalPrice)
}

func TestQuoteFare_SeatMultiplier(t *testing.T) {
	f := newBookingFixture(t)

	quote, err := f.svc.QuoteFare(context.Background(), f.routeID, f.stopA, f.stopB, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), quote.TotalPrice)
	assert.Contains(t, quote.Trace[len(quote.Trace)-1], "3 seats")
}

func TestQuoteFare_UnknownRoute(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.QuoteFare(context.Background(), uuid.New(), f.stopA, f.stopB, 1)
	assertKind(t, err, apperrors.KindNotFound)
}
