package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/apperrors"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/database"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/receipts"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/service"
)

// Handler contains HTTP handlers for the API
type Handler struct {
	bookingService  service.BookingService
	scheduleService service.ScheduleService
	pricingService  service.PricingService
	ref             service.ReferenceData
	vehicles        service.VehicleDirectory
}

// NewHandler creates a new Handler instance
func NewHandler(booking service.BookingService, schedules service.ScheduleService, pricing service.PricingService, ref service.ReferenceData, vehicles service.VehicleDirectory) *Handler {
	return &Handler{
		bookingService:  booking,
		scheduleService: schedules,
		pricingService:  pricing,
		ref:             ref,
		vehicles:        vehicles,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// writeError maps the error taxonomy onto HTTP statuses. Anything outside
// the taxonomy is an infrastructure failure and becomes a 500.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch appErr.Kind {
		case apperrors.KindValidation:
			status = http.StatusBadRequest
		case apperrors.KindNotFound:
			status = http.StatusNotFound
		case apperrors.KindConflict:
			status = http.StatusConflict
		}
		body := map[string]string{"error": appErr.Message}
		if appErr.LocalizedMessage != "" {
			body["localizedMessage"] = appErr.LocalizedMessage
		}
		respondJSON(w, status, body)
		return
	}
	respondError(w, http.StatusInternalServerError, "internal server error")
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}

// CreateTicket handles POST /api/tickets
func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.bookingService.CreateTicket(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, ticket)
}

// GetTicket handles GET /api/tickets/{id}
func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.bookingService.GetTicket(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// UpdateTicketStatus handles PATCH /api/tickets/{id}/status
func (h *Handler) UpdateTicketStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpdateTicketStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		respondError(w, http.StatusBadRequest, "Status is required")
		return
	}

	ticket, err := h.bookingService.UpdateTicketStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// CancelTicket handles DELETE /api/tickets/{id}
func (h *Handler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.bookingService.UpdateTicketStatus(r.Context(), id, models.TicketStatusCancelled)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ticket)
}

// GetTicketReceipt handles GET /api/tickets/{id}/receipt
func (h *Handler) GetTicketReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ticket, err := h.bookingService.GetTicket(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	route, err := h.ref.GetRoute(r.Context(), ticket.BusRouteID)
	if err != nil {
		writeError(w, err)
		return
	}

	data, name, err := receipts.Build(ticket, route)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to render receipt")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// CheckAvailability handles GET /api/trips/{id}/availability
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	fromStop, err := uuid.Parse(q.Get("fromStop"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid fromStop")
		return
	}
	toStop, err := uuid.Parse(q.Get("toStop"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid toStop")
		return
	}
	seats := 1
	if raw := q.Get("seats"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid seats")
			return
		}
		seats = n
	}

	resp, err := h.bookingService.CheckAvailability(r.Context(), tripID, fromStop, toStop, seats)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetActivePassengers handles GET /api/trips/{id}/passengers
func (h *Handler) GetActivePassengers(w http.ResponseWriter, r *http.Request) {
	tripID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	passengers, err := h.bookingService.GetActivePassengers(r.Context(), tripID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, passengers)
}

// QuoteFare handles GET /api/routes/{id}/fare
func (h *Handler) QuoteFare(w http.ResponseWriter, r *http.Request) {
	routeID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	fromStop, err := uuid.Parse(q.Get("fromStop"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid fromStop")
		return
	}
	toStop, err := uuid.Parse(q.Get("toStop"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid toStop")
		return
	}
	seats := 1
	if raw := q.Get("seats"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid seats")
			return
		}
		seats = n
	}

	quote, err := h.bookingService.QuoteFare(r.Context(), routeID, fromStop, toStop, seats)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// CreateSchedule handles POST /api/schedules
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.CreateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sched, err := h.scheduleService.CreateSchedule(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sched)
}

// GetSchedule handles GET /api/schedules/{id}
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sched, err := h.scheduleService.GetSchedule(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sched)
}

// ListDriverSchedules handles GET /api/drivers/{id}/schedules
func (h *Handler) ListDriverSchedules(w http.ResponseWriter, r *http.Request) {
	driverID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	day, err := parseDay(r.URL.Query().Get("day"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid day, expected YYYY-MM-DD")
		return
	}

	schedules, err := h.scheduleService.ListDriverSchedules(r.Context(), driverID, day)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, schedules)
}

// CheckDriverAvailability handles GET /api/drivers/{id}/busy
func (h *Handler) CheckDriverAvailability(w http.ResponseWriter, r *http.Request) {
	driverID, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid start, expected RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, q.Get("end"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid end, expected RFC3339")
		return
	}
	day, err := parseDay(q.Get("day"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid day, expected YYYY-MM-DD")
		return
	}

	busy, err := h.scheduleService.IsDriverBusy(r.Context(), driverID, start, end, day)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"busy": busy})
}

// CheckinSchedule handles POST /api/schedules/{id}/checkin
func (h *Handler) CheckinSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sched, err := h.scheduleService.Checkin(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sched)
}

// CheckoutSchedule handles POST /api/schedules/{id}/checkout
func (h *Handler) CheckoutSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sched, err := h.scheduleService.Checkout(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sched)
}

// UpdateScheduleProgress handles POST /api/schedules/{id}/progress
func (h *Handler) UpdateScheduleProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.StopProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CurrentStopID == uuid.Nil {
		respondError(w, http.StatusBadRequest, "Current stop is required")
		return
	}

	sched, err := h.scheduleService.UpdateProgress(r.Context(), id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sched)
}

// CancelSchedule handles DELETE /api/schedules/{id}
func (h *Handler) CancelSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.scheduleService.CancelSchedule(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Schedule cancelled"})
}

// UpsertServiceConfig handles PUT /api/pricing/service-configs
func (h *Handler) UpsertServiceConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.ServiceConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := h.pricingService.UpsertServiceConfig(r.Context(), &cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// GetServiceConfig handles GET /api/pricing/service-configs/{serviceType}
func (h *Handler) GetServiceConfig(w http.ResponseWriter, r *http.Request) {
	serviceType := mux.Vars(r)["serviceType"]

	cfg, err := h.pricingService.GetServiceConfig(r.Context(), serviceType)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, cfg)
}

// CreateVehiclePricing handles POST /api/pricing/vehicle-pricings
func (h *Handler) CreateVehiclePricing(w http.ResponseWriter, r *http.Request) {
	var vp models.VehiclePricing
	if err := json.NewDecoder(r.Body).Decode(&vp); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.pricingService.CreateVehiclePricing(r.Context(), &vp)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// GetVehiclePricing handles GET /api/pricing/vehicle-pricings
func (h *Handler) GetVehiclePricing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	categoryID, err := uuid.Parse(q.Get("vehicleCategory"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vehicleCategory")
		return
	}
	configID, err := uuid.Parse(q.Get("serviceConfig"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid serviceConfig")
		return
	}

	vp, err := h.pricingService.GetVehiclePricing(r.Context(), categoryID, configID)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vp)
}

// GetVehicle handles GET /api/vehicles/{id}
func (h *Handler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	vehicle, err := h.vehicles.GetVehicle(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

// UpdateVehicleStatus handles PATCH /api/vehicles/{id}/status
func (h *Handler) UpdateVehicleStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req models.UpdateVehicleStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	switch req.OperationStatus {
	case models.VehicleStatusAvailable, models.VehicleStatusPending, models.VehicleStatusUnavailable:
	default:
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid operation status %q", req.OperationStatus))
		return
	}

	if err := h.vehicles.UpdateVehicleStatus(r.Context(), id, req.OperationStatus); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		writeError(w, err)
		return
	}

	vehicle, err := h.vehicles.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, vehicle)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func parseDay(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	day, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &day, nil
}
