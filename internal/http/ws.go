// v2
// internal/http/ws.go
package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/yendongnguyen/Smart-Home-Controller/internal/bus"
	"github.com/yendongnguyen/Smart-Home-Controller/internal/metrics"
)

const (
	// hubQueueSize bounds the broadcast backlog. The bus handler never
	// blocks: when the queue is full the payload is dropped and counted.
	hubQueueSize = 64
	// clientQueueSize bounds each client's outbound queue before the hub
	// gives up on it.
	clientQueueSize = 16

	writeTimeout = 5 * time.Second
)

// eventEnvelope is the wire shape of one bus event pushed to websocket
// subscribers: the tagged kind plus the raw payload.
type eventEnvelope struct {
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans bus events out to connected websocket clients. It subscribes
// to the event bus through HandleEvent and serializes all client
// bookkeeping in its Run loop, so no lock is shared with the handlers.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
	done       chan struct{}
}

// NewHub constructs an idle hub; Run must be started before clients can
// connect usefully.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is served from arbitrary dev origins.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, hubQueueSize),
		done:       make(chan struct{}),
	}
}

// HandleEvent is the hub's bus subscription. It marshals the envelope
// and enqueues it without blocking; a full queue drops the payload so a
// stalled hub can never stall the publisher.
func (h *Hub) HandleEvent(evt bus.Event) {
	envelope := eventEnvelope{Kind: string(evt.Kind), Payload: evt.Payload}
	data, err := json.Marshal(envelope)
	if err != nil {
		h.log.Error("ws_event_encode_failed",
			slog.String("kind", string(evt.Kind)),
			slog.Any("err", err),
		)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		metrics.IncWSDropped()
		h.log.Warn("ws_broadcast_dropped", slog.String("kind", string(evt.Kind)))
	}
}

// Run owns the client set until the context is cancelled, at which point
// every connection is closed and the hub drains. Once Run returns, later
// connection attempts are turned away via the done channel.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	h.log.Info("ws_hub_started")
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			metrics.SetWSClients(len(h.clients))
			h.log.Info("ws_client_connected", slog.Int("clients", len(h.clients)))
		case client := <-h.unregister:
			h.dropClient(client)
		case data := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer; cut it loose rather than queue
					// unboundedly.
					metrics.IncWSDropped()
					h.dropClient(client)
				}
			}
		case <-ctx.Done():
			for client := range h.clients {
				h.dropClient(client)
			}
			h.log.Info("ws_hub_stopped")
			return
		}
	}
}

func (h *Hub) dropClient(client *wsClient) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	metrics.SetWSClients(len(h.clients))
	h.log.Info("ws_client_disconnected", slog.Int("clients", len(h.clients)))
}

// HandleWS upgrades the request and attaches the connection to the hub.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws_upgrade_failed", slog.Any("err", err))
		return
	}
	client := &wsClient{conn: conn, send: make(chan []byte, clientQueueSize)}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go h.writeLoop(client)
	go h.readLoop(client)
}

// writeLoop is the single writer for one connection. It exits when the
// hub closes the send channel.
func (h *Hub) writeLoop(client *wsClient) {
	defer func() {
		_ = client.conn.Close()
	}()
	for data := range client.send {
		_ = client.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Warn("ws_write_failed", slog.Any("err", err))
			return
		}
	}
	_ = client.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readLoop discards inbound frames; the feed is one-way. Its job is to
// notice the peer going away and unregister the client.
func (h *Hub) readLoop(client *wsClient) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			select {
			case h.unregister <- client:
			case <-h.done:
			}
			return
		}
	}
}
