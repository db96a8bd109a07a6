package server

import (
	"net/http"
	"strconv"
	"time"

	"caption-cage/internal/db"
)

type createSessionRequest struct {
	HostName     string `json:"host_name"`
	TotalRounds  int    `json:"total_rounds"`
	MaxPlayers   int    `json:"max_players"`
	RoundSeconds *int   `json:"round_seconds"`
}

type joinRequest struct {
	Name string `json:"name"`
}

type playerRequest struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
}

type captionRequest struct {
	PlayerID string `json:"player_id"`
	Token    string `json:"token"`
	Text     string `json:"text"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "host_name is required")
		return
	}
	settings := Settings{
		TotalRounds:  req.TotalRounds,
		MaxPlayers:   req.MaxPlayers,
		RoundSeconds: -1,
	}
	if req.RoundSeconds != nil {
		// Explicit zero disables the round deadline.
		settings.RoundSeconds = *req.RoundSeconds
	}
	result, err := s.CreateSession(req.HostName, settings)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"code":      result.Session.Code,
		"player_id": result.Player.ID,
		"token":     result.Token,
		"session":   snapshot(result.Session),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := s.store.Get(r.PathValue("code"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, snapshot(session))
}

func (s *Server) handleJoinSession(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	session, player, token, err := s.JoinSession(r.PathValue("code"), req.Name)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":      session.Code,
		"player_id": player.ID,
		"token":     token,
		"session":   snapshot(session),
	})
}

func (s *Server) handleStartRound(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player_id and token are required")
		return
	}
	session, err := s.StartRound(r.Context(), r.PathValue("code"), req.PlayerID, req.Token)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(session))
}

func (s *Server) handleSubmitCaption(w http.ResponseWriter, r *http.Request) {
	roundNumber, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || roundNumber <= 0 {
		writeError(w, http.StatusBadRequest, "invalid round number")
		return
	}
	var req captionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "caption text is required")
		return
	}
	session, closed, err := s.SubmitCaption(r.PathValue("code"), roundNumber, req.PlayerID, req.Token, req.Text)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"submitted":    true,
		"round_closed": closed,
		"session":      snapshot(session),
	})
}

func (s *Server) handleRevealRound(w http.ResponseWriter, r *http.Request) {
	roundNumber, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || roundNumber <= 0 {
		writeError(w, http.StatusBadRequest, "invalid round number")
		return
	}
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player_id and token are required")
		return
	}
	session, err := s.RevealRound(r.PathValue("code"), roundNumber, req.PlayerID, req.Token)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(session))
}

func (s *Server) handlePlayAgain(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player_id and token are required")
		return
	}
	session, err := s.PlayAgain(r.PathValue("code"), req.PlayerID, req.Token)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(session))
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player_id and token are required")
		return
	}
	session, err := s.EndSession(r.PathValue("code"), req.PlayerID, req.Token)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot(session))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	session, ok := s.store.Get(r.PathValue("code"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":        session.Code,
		"game_number": session.GameNumber,
		"leaderboard": buildLeaderboard(session),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusServiceUnavailable, "events not available")
		return
	}
	session, ok := s.store.Get(r.PathValue("code"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if session.DBID == 0 {
		if err := s.ensureSessionDBID(session); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load session")
			return
		}
	}
	var records []db.Event
	if err := s.db.Where("session_id = ?", session.DBID).Order("created_at asc").Find(&records).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}
	events := make([]map[string]any, 0, len(records))
	for _, record := range records {
		events = append(events, map[string]any{
			"id":         record.ID,
			"type":       record.Type,
			"created_at": record.CreatedAt,
			"payload":    record.Payload,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"code":   session.Code,
		"events": events,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"server_time": timeNowUTC().Format(time.RFC3339),
		"sessions":    s.store.Len(),
	})
}
