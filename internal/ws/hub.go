// Package ws pushes order change notifications to connected UI clients over
// WebSocket. The server runs on one machine; every client sees the same
// order board, so there is a single broadcast room.
package ws

import (
	"encoding/json"
	"log"
)

// Event types broadcast to clients.
const (
	EventOrderUpdated = "order_updated"
	EventOrderDeleted = "order_deleted"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan Event
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
	}
}

// Run starts the hub's main loop
// This should be called as a goroutine: go hub.Run()
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case event := <-h.broadcast:
			message, err := json.Marshal(event)
			if err != nil {
				log.Printf("marshal ws event: %v", err)
				continue
			}

			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, close and unregister
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Broadcast sends an event to every connected client.
func (h *Hub) Broadcast(event Event) {
	h.broadcast <- event
}

// NotifyOrderUpdated broadcasts that an order changed.
func (h *Hub) NotifyOrderUpdated(orderID string) {
	h.notifyOrder(EventOrderUpdated, orderID)
}

// NotifyOrderDeleted broadcasts that an order was removed.
func (h *Hub) NotifyOrderDeleted(orderID string) {
	h.notifyOrder(EventOrderDeleted, orderID)
}

func (h *Hub) notifyOrder(eventType, orderID string) {
	payload, err := json.Marshal(map[string]string{"order_id": orderID})
	if err != nil {
		log.Printf("marshal ws payload: %v", err)
		return
	}
	h.Broadcast(Event{Type: eventType, Payload: payload})
}
