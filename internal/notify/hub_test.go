package notify

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()

	router := gin.New()
	router.GET("/ws", h.HandleWS)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// The handshake can complete before the handler registers the client.
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.clients) == 1
	}, time.Second, 10*time.Millisecond)

	return conn
}

func TestHubBroadcastsToClient(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	h.Success("trade recorded")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "success", msg.Level)
	assert.Equal(t, "trade recorded", msg.Text)
}

func TestHubSerializesConcurrentBroadcasts(t *testing.T) {
	// Notifications fire from whatever goroutine hit an error, so many can
	// land on the same connection at once. Every one must be delivered; a
	// concurrent write would panic inside gorilla/websocket instead.
	h := NewHub()
	conn := dialHub(t, h)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				h.Success("ok")
			} else {
				h.Error("rejected")
			}
		}(i)
	}
	wg.Wait()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	received := 0
	for received < n {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		received++
	}
	assert.Equal(t, n, received)
}

func TestHubDropsDeadClients(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	conn.Close()
	h.Success("into the void")

	assert.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.clients) == 0
	}, time.Second, 10*time.Millisecond)
}
