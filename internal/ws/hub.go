package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
)

// Client wraps a WebSocket connection. The mutex serializes writes,
// which the underlying connection does not allow concurrently.
type Client struct {
	Conn *websocket.Conn
	Mu   sync.Mutex
}

// Hub fans task lifecycle events out to subscribed admin dashboards.
type Hub struct {
	Clients    map[*Client]bool
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run owns the client set. It must run in its own goroutine before any
// client connects or event is published.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.Clients[client] = true
		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				delete(h.Clients, client)
				client.Conn.Close()
			}
		case message := <-h.Broadcast:
			for client := range h.Clients {
				client.Mu.Lock()
				err := client.Conn.WriteMessage(websocket.TextMessage, message)
				client.Mu.Unlock()
				if err != nil {
					delete(h.Clients, client)
					client.Conn.Close()
				}
			}
		}
	}
}

// PublishTaskEvent sends a task event to all subscribers. Best effort:
// if the hub's buffer is full the event is dropped rather than blocking
// the request handler that produced it.
func (h *Hub) PublishTaskEvent(eventType string, payload interface{}) {
	if h == nil {
		return
	}
	message, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"task": payload,
	})
	if err != nil {
		return
	}
	select {
	case h.Broadcast <- message:
	default:
	}
}
