package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type wsHub struct {
	mu     sync.Mutex
	groups map[string]map[*websocket.Conn]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{
		groups: make(map[string]map[*websocket.Conn]struct{}),
	}
}

func (h *wsHub) Add(code string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.groups[code] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Remove(code string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.groups[code]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.groups, code)
	}
}

func (h *wsHub) Send(conn *websocket.Conn, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, data)
}

// Broadcast is fire and forget: a connection that fails to take the write
// gets evicted, everyone else is unaffected.
func (h *wsHub) Broadcast(code string, payload any) {
	h.mu.Lock()
	group := h.groups[code]
	conns := make([]*websocket.Conn, 0, len(group))
	for conn := range group {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.Remove(code, conn)
		}
	}
}

// handleWebsocket authenticates the player, joins the session room, and
// replies with the full snapshot. A reconnect goes through the same path
// and never creates a second player.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	playerID := r.URL.Query().Get("player_id")
	token := r.URL.Query().Get("token")

	session, ok := s.store.Get(code)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, err := s.authenticatePlayer(session, playerID, token); err != nil {
		writeError(w, httpStatusForError(err), err.Error())
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Info().Str("code", code).Str("player", playerID).Str("remote", r.RemoteAddr).Msg("ws connected")

	s.ws.Add(code, conn)
	session = s.markConnected(code, playerID, true)
	if session != nil {
		s.ws.Send(conn, wsEnvelope{Type: eventSessionState, Data: snapshot(session)})
		s.broadcastEvent(code, eventRosterChanged, map[string]any{
			"player_id": playerID,
			"connected": true,
		})
	}
	go s.readWS(code, playerID, conn)
}

func (s *Server) readWS(code, playerID string, conn *websocket.Conn) {
	defer func() {
		s.ws.Remove(code, conn)
		if session := s.markConnected(code, playerID, false); session != nil {
			s.broadcastEvent(code, eventRosterChanged, map[string]any{
				"player_id": playerID,
				"connected": false,
			})
		}
	}()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			log.Info().Str("code", code).Str("player", playerID).Err(err).Msg("ws disconnected")
			return
		}
		var inbound wsEnvelope
		if err := json.Unmarshal(payload, &inbound); err != nil {
			s.ws.Send(conn, wsEnvelope{Type: eventError, Data: map[string]any{
				"kind":    errValidation,
				"message": "invalid message",
			}})
			continue
		}
		if inbound.Type == "ping" {
			s.ws.Send(conn, wsEnvelope{Type: eventPong, Data: map[string]any{
				"server_time": timeNowUTC().Format(time.RFC3339),
			}})
		}
	}
}

// markConnected flips the liveness flag without touching roster membership;
// disconnects never lose a player's captions or scores.
func (s *Server) markConnected(code, playerID string, connected bool) *Session {
	session, err := s.store.Update(code, func(session *Session) error {
		player, ok := findPlayer(session, playerID)
		if !ok {
			return errf(errNotFound, "player not found")
		}
		player.Connected = connected
		if connected {
			session.LastActivity = timeNowUTC()
		}
		return nil
	})
	if err != nil {
		return nil
	}
	return session
}

func (s *Server) broadcastEvent(code, eventType string, data any) {
	if s.ws == nil {
		return
	}
	s.ws.Broadcast(code, wsEnvelope{Type: eventType, Data: data})
}

func (s *Server) broadcastState(session *Session) {
	if s.ws == nil || session == nil {
		return
	}
	s.ws.Broadcast(session.Code, wsEnvelope{Type: eventSessionState, Data: snapshot(session)})
}
