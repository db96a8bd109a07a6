package server

import "strings"

func (s *Server) authenticatePlayer(session *Session, playerID, token string) (*Player, error) {
	if session == nil {
		return nil, errf(errNotFound, "session not found")
	}
	if strings.TrimSpace(playerID) == "" {
		return nil, errf(errUnauthorized, "player_id is required")
	}
	player, ok := findPlayer(session, playerID)
	if !ok {
		return nil, errf(errUnauthorized, "player is not part of this session")
	}
	if err := verifyPlayerToken(s.cfg.AppSecret, token, playerID, session.Code, timeNowUTC()); err != nil {
		return nil, err
	}
	return player, nil
}

func (s *Server) authenticateHost(session *Session, playerID, token string) (*Player, error) {
	player, err := s.authenticatePlayer(session, playerID, token)
	if err != nil {
		return nil, err
	}
	if session.HostID == "" || player.ID != session.HostID {
		return nil, errf(errUnauthorized, "only the host can perform this action")
	}
	return player, nil
}
