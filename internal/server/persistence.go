package server

import (
	"encoding/json"
	"errors"
	"time"

	"caption-cage/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// The memory store is authoritative; these writers mirror accepted state
// into Postgres after the fact. A persistence failure is logged by the
// caller and never rolls back the in-memory mutation.

// rememberDBIDs writes database-assigned IDs back to the stored session.
// The store hands out detached copies, so an ID set on a copy would
// otherwise be lost to the next reader.
func (s *Server) rememberDBIDs(code string, assign func(session *Session)) {
	_, _ = s.store.Update(code, func(session *Session) error {
		assign(session)
		return nil
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (s *Server) persistSession(session *Session) error {
	if s.db == nil {
		return nil
	}
	record := db.Session{
		Code:         session.Code,
		Status:       session.Status,
		HostPlayerID: session.HostID,
		GameNumber:   session.GameNumber,
		TotalRounds:  session.Settings.TotalRounds,
		MaxPlayers:   session.Settings.MaxPlayers,
		RoundSeconds: session.Settings.RoundSeconds,
		LastActivity: session.LastActivity,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	session.DBID = record.ID
	s.rememberDBIDs(session.Code, func(live *Session) {
		live.DBID = record.ID
	})
	for i := range session.Players {
		if err := s.persistPlayer(session, &session.Players[i]); err != nil {
			return err
		}
	}
	return s.persistEvent(session, "session_created", EventPayload{
		Code:       session.Code,
		GameNumber: session.GameNumber,
	})
}

func (s *Server) persistSessionUpdate(session *Session, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureSessionDBID(session); err != nil {
		return err
	}
	updates := map[string]any{
		"status":        session.Status,
		"game_number":   session.GameNumber,
		"last_activity": session.LastActivity,
	}
	if err := s.db.Model(&db.Session{}).Where("id = ?", session.DBID).Updates(updates).Error; err != nil {
		return err
	}
	return s.persistEvent(session, eventType, payload)
}

func (s *Server) persistPlayer(session *Session, player *Player) error {
	if s.db == nil {
		return nil
	}
	if player.DBID != 0 {
		return nil
	}
	if err := s.ensureSessionDBID(session); err != nil {
		return err
	}
	record := db.Player{
		SessionID: session.DBID,
		PlayerID:  player.ID,
		Name:      player.Name,
		IsHost:    player.IsHost,
		JoinOrder: player.JoinOrder,
		JoinedAt:  player.JoinedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			var existing db.Player
			if lookupErr := s.db.Where("session_id = ? AND player_id = ?", session.DBID, player.ID).First(&existing).Error; lookupErr == nil {
				player.DBID = existing.ID
				s.rememberPlayerDBID(session.Code, player.ID, existing.ID)
				return nil
			}
		}
		return err
	}
	player.DBID = record.ID
	s.rememberPlayerDBID(session.Code, player.ID, record.ID)
	return s.persistEvent(session, "player_joined", EventPayload{
		PlayerName: player.Name,
		PlayerID:   player.ID,
	})
}

func (s *Server) persistRound(session *Session, round *Round) error {
	if s.db == nil {
		return nil
	}
	if round == nil || round.DBID != 0 {
		return nil
	}
	if err := s.ensureSessionDBID(session); err != nil {
		return err
	}
	record := db.Round{
		SessionID:  session.DBID,
		GameNumber: session.GameNumber,
		Number:     round.Number,
		Status:     round.Status,
		ImageURL:   round.ImageURL,
		ImageID:    round.ImageID,
		StartedAt:  round.StartedAt,
	}
	if !round.EndsAt.IsZero() {
		endsAt := round.EndsAt
		record.EndsAt = &endsAt
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	round.DBID = record.ID
	gameNumber := session.GameNumber
	s.rememberDBIDs(session.Code, func(live *Session) {
		if live.GameNumber != gameNumber {
			return
		}
		if liveRound := roundByNumber(live, round.Number); liveRound != nil {
			liveRound.DBID = record.ID
		}
	})
	return s.persistEvent(session, "round_started", EventPayload{
		GameNumber:  session.GameNumber,
		RoundNumber: round.Number,
		ImageURL:    round.ImageURL,
	})
}

func (s *Server) persistCaption(session *Session, round *Round, playerID string) error {
	if s.db == nil {
		return nil
	}
	if round == nil || round.DBID == 0 {
		return nil
	}
	caption, ok := findCaption(round, playerID)
	if !ok || caption.DBID != 0 {
		return nil
	}
	player, ok := findPlayer(session, playerID)
	if !ok || player.DBID == 0 {
		return nil
	}
	record := db.Caption{
		RoundID:     round.DBID,
		PlayerID:    player.DBID,
		Text:        caption.Text,
		SubmittedAt: caption.SubmittedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	caption.DBID = record.ID
	s.rememberDBIDs(session.Code, func(live *Session) {
		liveRound := roundByNumber(live, round.Number)
		if liveRound == nil {
			return
		}
		if liveCaption, ok := findCaption(liveRound, playerID); ok {
			liveCaption.DBID = record.ID
		}
	})
	return nil
}

func (s *Server) persistScores(session *Session, round *Round) error {
	if s.db == nil {
		return nil
	}
	if round == nil {
		return nil
	}
	for i := range round.Captions {
		caption := &round.Captions[i]
		if caption.Score == nil || caption.DBID == 0 {
			continue
		}
		updates := map[string]any{
			"humour":         caption.Score.Humour,
			"relevance":      caption.Score.Relevance,
			"total":          caption.Score.Total,
			"comment":        caption.Score.Comment,
			"fallback_score": caption.Score.Fallback,
		}
		if err := s.db.Model(&db.Caption{}).Where("id = ?", caption.DBID).Updates(updates).Error; err != nil {
			return err
		}
	}
	if round.DBID != 0 {
		if err := s.db.Model(&db.Round{}).Where("id = ?", round.DBID).Update("status", round.Status).Error; err != nil {
			return err
		}
	}
	return s.persistEvent(session, "round_revealed", EventPayload{
		GameNumber:  session.GameNumber,
		RoundNumber: round.Number,
		Count:       len(round.Captions),
	})
}

func (s *Server) persistEvent(session *Session, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if err := s.ensureSessionDBID(session); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	record := db.Event{
		SessionID: session.DBID,
		Type:      eventType,
		Payload:   datatypes.JSON(data),
		CreatedAt: time.Now().UTC(),
	}
	return s.db.Create(&record).Error
}

func (s *Server) ensureSessionDBID(session *Session) error {
	if session.DBID != 0 {
		return nil
	}
	var record db.Session
	if err := s.db.Where("code = ?", session.Code).First(&record).Error; err != nil {
		return err
	}
	session.DBID = record.ID
	s.rememberDBIDs(session.Code, func(live *Session) {
		live.DBID = record.ID
	})
	return nil
}

func (s *Server) rememberPlayerDBID(code, playerID string, id uint) {
	s.rememberDBIDs(code, func(live *Session) {
		if livePlayer, ok := findPlayer(live, playerID); ok {
			livePlayer.DBID = id
		}
	})
}
