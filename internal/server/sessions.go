package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type CreateSessionResult struct {
	Session *Session
	Player  *Player
	Token   string
}

// CreateSession builds a lobby with the caller as host and returns the
// credential the host uses for every later request.
func (s *Server) CreateSession(hostName string, settings Settings) (*CreateSessionResult, error) {
	name, err := validateName(hostName)
	if err != nil {
		return nil, err
	}
	settings = s.settingsWithDefaults(settings)
	settings, err = validateSettings(settings, s.cfg.MaxRoundsPerGame, s.cfg.MaxPlayersPerSession)
	if err != nil {
		return nil, err
	}

	now := timeNowUTC()
	host := Player{
		ID:        uuid.NewString(),
		Name:      name,
		IsHost:    true,
		JoinOrder: 0,
		JoinedAt:  now,
	}
	session := &Session{
		Status:       statusLobby,
		HostID:       host.ID,
		GameNumber:   1,
		Settings:     settings,
		Players:      []Player{host},
		CreatedAt:    now,
		LastActivity: now,
	}

	// Codes collide rarely; retry a few times before giving up.
	var putErr error
	for attempt := 0; attempt < 5; attempt++ {
		session.Code = newSessionCode()
		if putErr = s.store.Put(session); putErr == nil {
			break
		}
	}
	if putErr != nil {
		return nil, putErr
	}

	if err := s.persistSession(session); err != nil {
		log.Error().Err(err).Str("code", session.Code).Msg("failed to persist session")
	}
	log.Info().Str("code", session.Code).Str("host", name).Msg("session created")

	token := issuePlayerToken(s.cfg.AppSecret, host.ID, session.Code, now)
	return &CreateSessionResult{Session: session, Player: &session.Players[0], Token: token}, nil
}

func (s *Server) settingsWithDefaults(settings Settings) Settings {
	if settings.TotalRounds == 0 {
		settings.TotalRounds = s.cfg.TotalRounds
	}
	if settings.MaxPlayers == 0 {
		settings.MaxPlayers = s.cfg.MaxPlayersPerSession
	}
	if settings.RoundSeconds < 0 {
		settings.RoundSeconds = s.cfg.RoundSeconds
	}
	return settings
}

// JoinSession adds a player to a lobby. Reconnecting players do not join
// again; they come back over the websocket with their token.
func (s *Server) JoinSession(code, playerName string) (*Session, *Player, string, error) {
	name, err := validateName(playerName)
	if err != nil {
		return nil, nil, "", err
	}
	now := timeNowUTC()
	playerID := uuid.NewString()
	session, err := s.store.Update(code, func(session *Session) error {
		if !sessionLive(session.Status) {
			return errf(errNotFound, "session not found")
		}
		if session.Status != statusLobby {
			return errf(errState, "session has already started")
		}
		for i := range session.Players {
			if normalizeText(session.Players[i].Name) == name {
				return errf(errConflict, "name is already taken")
			}
		}
		if len(session.Players) >= session.Settings.MaxPlayers {
			return errf(errState, "session is full")
		}
		session.Players = append(session.Players, Player{
			ID:        playerID,
			Name:      name,
			JoinOrder: len(session.Players),
			JoinedAt:  now,
		})
		session.LastActivity = now
		return nil
	})
	if err != nil {
		return nil, nil, "", err
	}

	player, _ := findPlayer(session, playerID)
	if err := s.persistPlayer(session, player); err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to persist player")
	}
	log.Info().Str("code", code).Str("player", name).Msg("player joined")

	token := issuePlayerToken(s.cfg.AppSecret, playerID, code, now)
	s.broadcastEvent(session.Code, eventRosterChanged, map[string]any{
		"player_id": playerID,
		"name":      name,
	})
	s.broadcastState(session)
	return session, player, token, nil
}

// EndSession finishes a session on host request. Finished sessions keep
// their leaderboard until they expire.
func (s *Server) EndSession(code, playerID, token string) (*Session, error) {
	session, err := s.store.Update(code, func(session *Session) error {
		if _, err := s.authenticateHost(session, playerID, token); err != nil {
			return err
		}
		if !sessionLive(session.Status) {
			return errf(errState, "session is already over")
		}
		session.Status = statusFinished
		session.LastActivity = timeNowUTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.cancelRoundTimer(code)
	if err := s.persistSessionUpdate(session, "session_ended", EventPayload{Status: session.Status, Reason: "host"}); err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to persist session end")
	}
	log.Info().Str("code", code).Msg("session ended")
	s.broadcastEvent(code, eventSessionEnded, map[string]any{
		"reason":      "host",
		"leaderboard": buildLeaderboard(session),
	})
	s.broadcastState(session)
	return session, nil
}

// PlayAgain starts a fresh game in the same session: the roster stays, the
// rounds and scores reset, and the lobby reopens.
func (s *Server) PlayAgain(code, playerID, token string) (*Session, error) {
	session, err := s.store.Update(code, func(session *Session) error {
		if _, err := s.authenticateHost(session, playerID, token); err != nil {
			return err
		}
		if session.Status != statusFinished {
			return errf(errState, "session must be finished to play again")
		}
		session.GameNumber++
		session.Rounds = nil
		session.Status = statusLobby
		session.LastActivity = timeNowUTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.persistSessionUpdate(session, "game_restarted", EventPayload{GameNumber: session.GameNumber}); err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to persist game restart")
	}
	log.Info().Str("code", code).Int("game_number", session.GameNumber).Msg("new game started")
	s.broadcastState(session)
	return session, nil
}

// sweepExpiredSessions marks idle sessions expired and drops them from the
// live store. The background sweeper calls this on an interval.
func (s *Server) sweepExpiredSessions() {
	ttl := time.Duration(s.cfg.SessionTTLMinutes) * time.Minute
	now := timeNowUTC()
	for _, code := range s.store.Codes() {
		session, err := s.store.Update(code, func(session *Session) error {
			if now.Sub(session.LastActivity) < ttl {
				return errf(errState, "session still active")
			}
			session.Status = statusExpired
			return nil
		})
		if err != nil {
			continue
		}
		s.cancelRoundTimer(code)
		if err := s.persistSessionUpdate(session, "session_expired", EventPayload{Status: statusExpired}); err != nil {
			log.Error().Err(err).Str("code", code).Msg("failed to persist session expiry")
		}
		s.broadcastEvent(code, eventSessionEnded, map[string]any{"reason": "expired"})
		s.store.Remove(code)
		log.Info().Str("code", code).Msg("session expired")
	}
}
