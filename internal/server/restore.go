package server

import (
	"time"

	"caption-cage/internal/db"

	"github.com/rs/zerolog/log"
)

// RestoreSessions rehydrates live sessions from the database after a
// restart. Rounds that were mid-flight resume their deadline timer, and
// rounds caught between close and reveal get scored again.
func (s *Server) RestoreSessions() error {
	if s.db == nil {
		return nil
	}
	cutoff := timeNowUTC().Add(-time.Duration(s.cfg.SessionTTLMinutes) * time.Minute)
	var records []db.Session
	err := s.db.
		Where("status IN ?", []string{statusLobby, statusInRound, statusRevealing, statusFinished}).
		Where("last_activity > ?", cutoff).
		Find(&records).Error
	if err != nil {
		return err
	}

	restored := 0
	for i := range records {
		session, err := s.restoreSession(&records[i])
		if err != nil {
			log.Error().Err(err).Str("code", records[i].Code).Msg("failed to restore session")
			continue
		}
		if err := s.store.Put(session); err != nil {
			log.Error().Err(err).Str("code", session.Code).Msg("failed to register restored session")
			continue
		}
		restored++
		s.resumeRound(session)
	}
	if restored > 0 {
		log.Info().Int("sessions", restored).Msg("sessions restored")
	}
	return nil
}

func (s *Server) restoreSession(record *db.Session) (*Session, error) {
	var playerRecords []db.Player
	if err := s.db.Where("session_id = ?", record.ID).Order("join_order asc").Find(&playerRecords).Error; err != nil {
		return nil, err
	}
	var roundRecords []db.Round
	err := s.db.
		Where("session_id = ? AND game_number = ?", record.ID, record.GameNumber).
		Order("number asc").
		Find(&roundRecords).Error
	if err != nil {
		return nil, err
	}

	session := &Session{
		Code:   record.Code,
		DBID:   record.ID,
		Status: record.Status,
		HostID: record.HostPlayerID,
		Settings: Settings{
			TotalRounds:  record.TotalRounds,
			MaxPlayers:   record.MaxPlayers,
			RoundSeconds: record.RoundSeconds,
		},
		GameNumber:   record.GameNumber,
		CreatedAt:    record.CreatedAt,
		LastActivity: record.LastActivity,
	}

	dbIDToPlayerID := make(map[uint]string, len(playerRecords))
	for _, player := range playerRecords {
		session.Players = append(session.Players, Player{
			ID:        player.PlayerID,
			DBID:      player.ID,
			Name:      player.Name,
			IsHost:    player.IsHost,
			JoinOrder: player.JoinOrder,
			JoinedAt:  player.JoinedAt,
		})
		dbIDToPlayerID[player.ID] = player.PlayerID
	}

	for _, roundRecord := range roundRecords {
		round := Round{
			Number:    roundRecord.Number,
			DBID:      roundRecord.ID,
			Status:    roundRecord.Status,
			ImageURL:  roundRecord.ImageURL,
			ImageID:   roundRecord.ImageID,
			StartedAt: roundRecord.StartedAt,
		}
		if roundRecord.EndsAt != nil {
			round.EndsAt = *roundRecord.EndsAt
		}
		var captionRecords []db.Caption
		if err := s.db.Where("round_id = ?", roundRecord.ID).Order("submitted_at asc").Find(&captionRecords).Error; err != nil {
			return nil, err
		}
		for _, captionRecord := range captionRecords {
			caption := Caption{
				PlayerID:    dbIDToPlayerID[captionRecord.PlayerID],
				DBID:        captionRecord.ID,
				Text:        captionRecord.Text,
				SubmittedAt: captionRecord.SubmittedAt,
			}
			if captionRecord.Total != nil {
				caption.Score = &Score{
					Humour:    derefInt(captionRecord.Humour),
					Relevance: derefInt(captionRecord.Relevance),
					Total:     *captionRecord.Total,
					Comment:   captionRecord.Comment,
					Fallback:  captionRecord.FallbackScore,
				}
			}
			round.Captions = append(round.Captions, caption)
		}
		session.Rounds = append(session.Rounds, round)
	}
	return session, nil
}

// resumeRound picks the restored session back up where it stopped.
func (s *Server) resumeRound(session *Session) {
	round := currentRound(session)
	if round == nil {
		return
	}
	switch round.Status {
	case roundActive:
		if round.EndsAt.IsZero() {
			return
		}
		if round.EndsAt.After(timeNowUTC()) {
			s.scheduleRoundTimer(session.Code, session.GameNumber, round.Number, round.EndsAt)
		} else {
			go s.autoCloseRound(session.Code, session.GameNumber, round.Number)
		}
	case roundScoring:
		go s.scoreRound(session.Code, session.GameNumber, round.Number)
	}
}

func derefInt(value *int) int {
	if value == nil {
		return 0
	}
	return *value
}
