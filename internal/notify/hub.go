// Package notify broadcasts fire-and-forget notifications to connected
// dashboard clients over WebSocket. Nothing in the core waits on delivery.
package notify

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// Message is one notification pushed to clients
type Message struct {
	Level string    `json:"level"`
	Text  string    `json:"text"`
	Time  time.Time `json:"time"`
}

// client wraps a connection with its write lock. gorilla/websocket permits
// at most one concurrent writer per connection, and broadcasts arrive from
// arbitrary goroutines.
type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (cl *client) write(msg Message) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return cl.conn.WriteJSON(msg)
}

// Hub fans notifications out to every connected client. It satisfies the
// service layer's Notifier contract.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local single-user dashboard; the API is already JWT-guarded
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// HandleWS upgrades the request and registers the client
// GET /ws
func (h *Hub) HandleWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Notify] websocket upgrade failed: %v", err)
		return
	}

	cl := &client{conn: conn}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	// Drain reads so control frames are processed; drop the client when the
	// connection dies.
	go func() {
		defer h.drop(cl)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
	cl.conn.Close()
}

func (h *Hub) broadcast(level, text string) {
	msg := Message{Level: level, Text: text, Time: time.Now()}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		if err := cl.write(msg); err != nil {
			h.drop(cl)
		}
	}
}

// Success broadcasts a success notification
func (h *Hub) Success(text string) {
	h.broadcast("success", text)
}

// Error broadcasts an error notification
func (h *Hub) Error(text string) {
	h.broadcast("error", text)
}
