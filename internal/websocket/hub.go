package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/BenSkye/Vin-Shuttle-Capstone-sub000/internal/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSeatsUpdated     MessageType = "seats_updated"
	MessageTypeTicketStatus     MessageType = "ticket_status"
	MessageTypeActivePassengers MessageType = "active_passengers"
)

// Message represents a WebSocket message scoped to one trip
type Message struct {
	Type       MessageType              `json:"type"`
	TripID     string                   `json:"tripId"`
	FromStopID string                   `json:"fromStop,omitempty"`
	ToStopID   string                   `json:"toStop,omitempty"`
	SeatsDelta int                      `json:"seatsDelta,omitempty"`
	Ticket     *models.Ticket           `json:"ticket,omitempty"`
	Passengers []models.ActivePassenger `json:"passengers,omitempty"`
	Timestamp  int64                    `json:"timestamp"`
}

// Client represents a WebSocket client connection watching one trip
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	tripID uuid.UUID
}

// Hub manages WebSocket connections per trip
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.tripID] == nil {
				h.clients[client.tripID] = make(map[*Client]bool)
			}
			h.clients[client.tripID][client] = true
			log.Printf("WebSocket: Client registered for trip %s (total: %d)", client.tripID, len(h.clients[client.tripID]))
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.tripID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					log.Printf("WebSocket: Client unregistered from trip %s (remaining: %d)", client.tripID, len(clients))
					if len(clients) == 0 {
						delete(h.clients, client.tripID)
					}
				}
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			tripID, err := uuid.Parse(message.TripID)
			if err != nil {
				log.Printf("WebSocket: Invalid trip ID in broadcast: %s", message.TripID)
				continue
			}

			data, err := json.Marshal(message)
			if err != nil {
				log.Printf("WebSocket: Failed to marshal message: %v", err)
				continue
			}

			h.mu.RLock()
			clients := h.clients[tripID]
			h.mu.RUnlock()

			for client := range clients {
				select {
				case client.send <- data:
				default:
					h.mu.Lock()
					delete(h.clients[tripID], client)
					close(client.send)
					h.mu.Unlock()
				}
			}
		}
	}
}

// SeatsUpdated broadcasts a segment seat-count change to clients watching
// the trip
func (h *Hub) SeatsUpdated(tripID, fromStopID, toStopID uuid.UUID, availableSeatsDelta int) {
	h.broadcast <- &Message{
		Type:       MessageTypeSeatsUpdated,
		TripID:     tripID.String(),
		FromStopID: fromStopID.String(),
		ToStopID:   toStopID.String(),
		SeatsDelta: availableSeatsDelta,
		Timestamp:  time.Now().UnixMilli(),
	}
}

// TicketStatusChanged broadcasts a ticket lifecycle transition
func (h *Hub) TicketStatusChanged(ticket *models.Ticket) {
	h.broadcast <- &Message{
		Type:      MessageTypeTicketStatus,
		TripID:    ticket.BusTripID.String(),
		Ticket:    ticket,
		Timestamp: time.Now().UnixMilli(),
	}
}

// ActivePassengerListUpdated broadcasts the recomputed on-board passenger
// list for a trip
func (h *Hub) ActivePassengerListUpdated(tripID uuid.UUID, passengers []models.ActivePassenger) {
	h.broadcast <- &Message{
		Type:       MessageTypeActivePassengers,
		TripID:     tripID.String(),
		Passengers: passengers,
		Timestamp:  time.Now().UnixMilli(),
	}
}

// GetClientCount returns the number of clients watching a trip
func (h *Hub) GetClientCount(tripID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tripID])
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// ServeWS upgrades an HTTP request to a websocket subscription for one trip
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, tripID uuid.UUID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket: Upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 64),
		tripID: tripID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		// Clients only listen; discard anything they send.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
