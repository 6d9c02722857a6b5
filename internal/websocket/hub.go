package websocket

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// VisitUpdate is pushed to connected clients after each billable visit.
type VisitUpdate struct {
	Type        string `json:"type"`
	CounterID   string `json:"counter_id"`
	Count       int64  `json:"count"`
	CountryCode string `json:"country_code"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("Client %s connected. Total clients: %d", client.id, h.GetClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("Client %s disconnected. Total clients: %d", client.id, h.GetClientCount())

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastVisit queues a visit update for all connected clients. Dropping
// the message when the channel is full is acceptable; the feed is
// advisory and the stores remain the source of truth.
func (h *Hub) BroadcastVisit(counterID string, count int64, countryCode string) {
	if h.GetClientCount() == 0 {
		return
	}

	update := VisitUpdate{
		Type:        "visit",
		CounterID:   counterID,
		Count:       count,
		CountryCode: countryCode,
	}

	message, err := json.Marshal(update)
	if err != nil {
		log.Printf("Error marshaling visit update: %v", err)
		return
	}

	select {
	case h.broadcast <- message:
	default:
		log.Println("Broadcast channel is full, dropping visit update")
	}
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWs registers an upgraded connection with the hub and starts its
// pumps. The feed is one-way; the read pump only consumes control frames
// and detects disconnects.
func ServeWs(hub *Hub, conn *websocket.Conn) {
	client := &Client{
		id:   uuid.NewString(),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 16),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	// Hub closed the channel; tell the peer we are going away.
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
