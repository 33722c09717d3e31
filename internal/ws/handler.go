package ws

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/eigenplayer/playerd/internal/core"
	"github.com/eigenplayer/playerd/internal/protocol"
	"github.com/eigenplayer/playerd/internal/storage"
)

// Handler accepts websocket control clients and fans core events out to
// every connected session.
type Handler struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader
	core     *core.Core
	store    *storage.Store
	sessions map[string]*session
	mu       sync.Mutex
}

type session struct {
	conn      *websocket.Conn
	sendMu    sync.Mutex
	logger    *zap.Logger
	core      *core.Core
	handler   *Handler
	clientUID string
}

// NewHandler executes the newHandler function.
func NewHandler(logger *zap.Logger, c *core.Core, store *storage.Store) *Handler {
	h := &Handler{
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		core:     c,
		store:    store,
		sessions: make(map[string]*session),
	}

	c.SubscribeEvent(func(event core.Event) {
		switch event.Kind {
		case core.EventPropertyChanged:
			h.broadcast(Message{
				Type: "property-changed",
				Payload: map[string]any{
					"name":  event.Name,
					"value": event.Value.Interface(),
				},
			})
		case core.EventCommandExecuted:
			h.broadcast(Message{
				Type:    "command-executed",
				Payload: map[string]any{"name": event.Name},
			})
		}
	})

	return h
}

// Handle upgrades the request and serves the session until the peer leaves.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}

	s := &session{
		conn:      conn,
		logger:    h.logger,
		core:      h.core,
		handler:   h,
		clientUID: uuid.NewString(),
	}

	h.mu.Lock()
	h.sessions[s.clientUID] = s
	h.mu.Unlock()

	h.logger.Info("ws client connected", zap.String("session_id", s.clientUID))
	s.sendJSON(Message{Type: "connected", Payload: map[string]any{"session_id": s.clientUID}})
	s.sendJSON(Message{Type: "properties", Payload: h.core.Snapshot()})

	s.readLoop()

	h.mu.Lock()
	delete(h.sessions, s.clientUID)
	h.mu.Unlock()
	h.logger.Info("ws client disconnected", zap.String("session_id", s.clientUID))
}

// SessionCount executes the sessionCount method.
func (h *Handler) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Handler) broadcast(msg Message) {
	h.mu.Lock()
	sessions := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		s.sendJSON(msg)
	}
}

func (s *session) readLoop() {
	defer s.conn.Close()
	for {
		var cmd protocol.ClientCommand
		if err := s.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("ws read error",
					zap.String("session_id", s.clientUID),
					zap.Error(err),
				)
			}
			return
		}
		s.dispatch(cmd)
	}
}

func (s *session) sendJSON(msg Message) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		s.logger.Debug("ws write failed",
			zap.String("session_id", s.clientUID),
			zap.Error(err),
		)
	}
}

func (s *session) sendError(message string) {
	s.sendJSON(Message{Type: "error", Payload: map[string]any{"message": message}})
}
