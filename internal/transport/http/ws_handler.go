package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"quizduel-service/internal/app"
	"quizduel-service/internal/domain"
	"quizduel-service/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
)

// GameEngine is the part of the engine the websocket handler drives.
type GameEngine interface {
	CreateRoom(ctx context.Context, connID, playerName string) (*domain.Room, error)
	JoinRoom(ctx context.Context, connID, roomCode, playerName string) (*domain.Room, error)
	SubmitAnswer(ctx context.Context, connID, roomCode, answer string, timeSpent *float64) error
	Disconnect(ctx context.Context, connID string)
}

var _ GameEngine = (*app.Engine)(nil)

type WSHandler struct {
	engine   GameEngine
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
	metrics  *metrics.Metrics
}

func NewWSHandler(engine GameEngine, hub *Hub, logger *zap.Logger, m *metrics.Metrics) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		engine: engine,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log:     logger,
		metrics: m,
	}
}

type createRoomPayload struct {
	PlayerName string `json:"playerName"`
}

type joinRoomPayload struct {
	RoomCode   string `json:"roomCode"`
	PlayerName string `json:"playerName"`
}

type submitAnswerPayload struct {
	RoomCode  string   `json:"roomCode"`
	Answer    string   `json:"answer"`
	TimeSpent *float64 `json:"timeSpent"`
}

// ServeWS upgrades the request and pumps frames between the socket and the engine until
// the client goes away.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	c := h.hub.register(id)
	h.metrics.ConnectionOpened()
	h.log.Debug("connection opened", zap.String("conn", id))

	writerDone := make(chan struct{})
	go h.writePump(conn, c, writerDone)

	h.readPump(conn, id)

	// Leave the hub first so player_disconnected reaches only the opponent.
	h.hub.unregister(id)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	h.engine.Disconnect(ctx, id)
	cancel()

	<-writerDone
	_ = conn.Close()
	h.metrics.ConnectionClosed()
	h.log.Debug("connection closed", zap.String("conn", id))
}

func (h *WSHandler) readPump(conn *websocket.Conn, id string) {
	conn.SetReadLimit(maxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var in envelope
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("ws read", zap.String("conn", id), zap.Error(err))
			}
			return
		}
		h.dispatch(id, in)
	}
}

func (h *WSHandler) dispatch(id string, in envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch in.Type {
	case domain.EventCreateRoom:
		var p createRoomPayload
		if !h.decode(id, in, &p) {
			return
		}
		_, _ = h.engine.CreateRoom(ctx, id, p.PlayerName)
	case domain.EventJoinRoom:
		var p joinRoomPayload
		if !h.decode(id, in, &p) {
			return
		}
		_, _ = h.engine.JoinRoom(ctx, id, p.RoomCode, p.PlayerName)
	case domain.EventSubmitAnswer:
		var p submitAnswerPayload
		if !h.decode(id, in, &p) {
			return
		}
		_ = h.engine.SubmitAnswer(ctx, id, p.RoomCode, p.Answer, p.TimeSpent)
	default:
		h.hub.Send(id, domain.EventError, domain.ErrorNotice{Message: "Unsupported message type"})
	}
}

func (h *WSHandler) decode(id string, in envelope, dst any) bool {
	if len(in.Payload) == 0 {
		return true
	}
	if err := json.Unmarshal(in.Payload, dst); err != nil {
		h.hub.Send(id, domain.EventError, domain.ErrorNotice{Message: "Invalid payload"})
		return false
	}
	return true
}

// writePump is the only goroutine writing to conn. It exits when the hub closes the queue
// or a write fails.
func (h *WSHandler) writePump(conn *websocket.Conn, c *client, done chan<- struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write", zap.String("conn", c.id), zap.Error(err))
				// Unblock the reader so the connection is torn down.
				_ = conn.Close()
				drain(c.send)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				drain(c.send)
				return
			}
		}
	}
}

func drain(ch <-chan outboundMessage) {
	for range ch {
	}
}
