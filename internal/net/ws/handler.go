package ws

import (
	"context"
	"log"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	server "github.com/sabbivikas/mi-amore"
	"github.com/sabbivikas/mi-amore/internal/net/proto"
	"github.com/sabbivikas/mi-amore/internal/telemetry"
)

const (
	defaultWriteWait = 10 * time.Second
	maxMessageSize   = 64 << 10
	// closeGrace is how long a session waits for the peer's close frame
	// after the hub closes its queue.
	closeGrace = time.Second
)

type HandlerConfig struct {
	Logger    *log.Logger
	WriteWait time.Duration
	// Metrics counts dropped client messages when set.
	Metrics telemetry.Metrics
}

// Handler upgrades HTTP requests and runs one websocket session per player.
type Handler struct {
	hub       *server.Hub
	logger    *log.Logger
	writeWait time.Duration
	upgrader  websocket.Upgrader
	metrics   telemetry.Metrics

	active sync.WaitGroup
}

func NewHandler(hub *server.Hub, cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	writeWait := cfg.WriteWait
	if writeWait <= 0 {
		writeWait = defaultWriteWait
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *nethttp.Request) bool {
			return true
		},
	}

	return &Handler{
		hub:       hub,
		logger:    logger,
		writeWait: writeWait,
		upgrader:  upgrader,
		metrics:   cfg.Metrics,
	}
}

// Handle serves /ws. The optional encoding query parameter selects the
// outbound codec ("json" or "msgpack").
func (h *Handler) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.active.Add(1)
	defer h.active.Done()

	codec := proto.CodecFor(r.URL.Query().Get("encoding"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("upgrade failed: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	sub := h.hub.Connect(codec)
	h.logger.Printf("[ws] player %d connected session=%s encoding=%s", sub.PlayerID, sub.SessionID, codec.Name())

	done := make(chan struct{})
	go h.writeLoop(conn, sub, done)

	h.readLoop(conn, sub)

	h.hub.Disconnect(sub.PlayerID)
	<-done
	conn.Close()
	h.logger.Printf("[ws] player %d disconnected", sub.PlayerID)
}

// readLoop dispatches client messages until the connection fails. Text
// frames are JSON and binary frames are MessagePack; undecodable messages
// are dropped.
func (h *Handler) readLoop(conn *websocket.Conn, sub *server.Subscriber) {
	for {
		frameType, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		codec := proto.JSON
		if frameType == websocket.BinaryMessage {
			codec = proto.MsgPack
		}
		msg, err := proto.DecodeClientMessage(codec, payload)
		if err != nil {
			if h.metrics != nil {
				h.metrics.Add(telemetry.MetricMessagesInvalid, 1)
			}
			continue
		}
		h.hub.Dispatch(sub.PlayerID, msg)
	}
}

// writeLoop drains the subscriber's queue until the hub closes it.
func (h *Handler) writeLoop(conn *websocket.Conn, sub *server.Subscriber, done chan<- struct{}) {
	defer close(done)

	frameType := websocket.TextMessage
	if sub.Codec().Binary() {
		frameType = websocket.BinaryMessage
	}

	failed := false
	for data := range sub.Outbound() {
		if failed {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		if err := conn.WriteMessage(frameType, data); err != nil {
			h.logger.Printf("[ws] write to player %d failed: %v", sub.PlayerID, err)
			failed = true
			conn.Close()
		}
	}
	if !failed {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		// Unblocks the read loop when the hub closed the session first.
		conn.SetReadDeadline(time.Now().Add(closeGrace))
	}
}

// Wait blocks until every session has returned or ctx is done.
func (h *Handler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.active.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
