package websocket

import (
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/domain/useCases"
	"coffeeStatApp/internal/lib/logger/sl"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// WebSocketBroadcaster implements Broadcaster interface for report updates.
type WebSocketBroadcaster struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.Mutex
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewWebSocketBroadcaster(log *slog.Logger) *WebSocketBroadcaster {
	return &WebSocketBroadcaster{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		log:      log.With(slog.String("component", "websocket")),
	}
}

var _ useCases.Broadcaster = (*WebSocketBroadcaster)(nil)

// BroadcastReport sends the report to every connected client, dropping clients that fail.
func (b *WebSocketBroadcaster) BroadcastReport(report *model.Report) {
	msg, err := json.Marshal(report)
	if err != nil {
		b.log.Error("failed to marshal report", sl.Err(err))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			b.log.Warn("websocket write error", sl.Err(err))
			c.Close()
			delete(b.clients, c)
		}
	}
}

// Clients is the number of open connections.
func (b *WebSocketBroadcaster) Clients() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}

// Handler returns an http.HandlerFunc to accept websocket connections.
func (b *WebSocketBroadcaster) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			b.log.Warn("websocket upgrade error", sl.Err(err))
			return
		}
		b.mu.Lock()
		b.clients[conn] = struct{}{}
		b.mu.Unlock()
		// read loop notices when the client goes away
		go func() {
			defer func() {
				b.mu.Lock()
				delete(b.clients, conn)
				b.mu.Unlock()
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					break
				}
			}
		}()
	}
}

// Close disconnects all clients.
func (b *WebSocketBroadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for c := range b.clients {
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
			time.Now().Add(writeWait))
		c.Close()
		delete(b.clients, c)
	}
}
