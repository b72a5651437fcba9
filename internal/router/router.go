package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/handlers"
	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/websocket"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *handlers.Handler, hub *websocket.Hub) *mux.Router {
	r := mux.NewRouter()

	// CORS middleware
	r.Use(corsMiddleware)

	// API routes
	api := r.PathPrefix("/api").Subrouter()

	// Tickets
	api.HandleFunc("/tickets", h.CreateTicket).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/tickets/{id}", h.GetTicket).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/tickets/{id}", h.CancelTicket).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/tickets/{id}/status", h.UpdateTicketStatus).Methods(http.MethodPatch, http.MethodOptions)
	api.HandleFunc("/tickets/{id}/receipt", h.GetTicketReceipt).Methods(http.MethodGet, http.MethodOptions)

	// Trips
	api.HandleFunc("/trips/{id}/availability", h.CheckAvailability).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/trips/{id}/passengers", h.GetActivePassengers).Methods(http.MethodGet, http.MethodOptions)

	// Routes
	api.HandleFunc("/routes/{id}/fare", h.QuoteFare).Methods(http.MethodGet, http.MethodOptions)

	// Schedules
	api.HandleFunc("/schedules", h.CreateSchedule).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/schedules/{id}", h.GetSchedule).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/schedules/{id}", h.CancelSchedule).Methods(http.MethodDelete, http.MethodOptions)
	api.HandleFunc("/schedules/{id}/checkin", h.CheckinSchedule).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/schedules/{id}/checkout", h.CheckoutSchedule).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/schedules/{id}/progress", h.UpdateScheduleProgress).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/drivers/{id}/schedules", h.ListDriverSchedules).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/drivers/{id}/busy", h.CheckDriverAvailability).Methods(http.MethodGet, http.MethodOptions)

	// Vehicles
	api.HandleFunc("/vehicles/{id}", h.GetVehicle).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/vehicles/{id}/status", h.UpdateVehicleStatus).Methods(http.MethodPatch, http.MethodOptions)

	// Pricing administration
	api.HandleFunc("/pricing/service-configs", h.UpsertServiceConfig).Methods(http.MethodPut, http.MethodOptions)
	api.HandleFunc("/pricing/service-configs/{serviceType}", h.GetServiceConfig).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/pricing/vehicle-pricings", h.CreateVehiclePricing).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/pricing/vehicle-pricings", h.GetVehiclePricing).Methods(http.MethodGet, http.MethodOptions)

	// WebSocket for real-time updates
	api.HandleFunc("/trips/{tripId}/ws", func(w http.ResponseWriter, r *http.Request) {
		tripID, err := uuid.Parse(mux.Vars(r)["tripId"])
		if err != nil {
			http.Error(w, "invalid trip id", http.StatusBadRequest)
			return
		}
		hub.ServeWS(w, r, tripID)
	})

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
