package server

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// StartRound opens the next round. The image is fetched before taking the
// session lock; a dead image source degrades to the placeholder instead of
// blocking the round.
func (s *Server) StartRound(ctx context.Context, code, playerID, token string) (*Session, error) {
	session, ok := s.store.Get(code)
	if !ok {
		return nil, errf(errNotFound, "session not found")
	}
	if _, err := s.authenticateHost(session, playerID, token); err != nil {
		return nil, err
	}

	image := s.fetchRoundImage(ctx)
	now := timeNowUTC()
	session, err := s.store.Update(code, func(session *Session) error {
		if _, err := s.authenticateHost(session, playerID, token); err != nil {
			return err
		}
		switch session.Status {
		case statusLobby:
		case statusRevealing:
			if round := currentRound(session); round != nil && round.Status != roundRevealed {
				return errf(errState, "previous round is still being scored")
			}
		case statusInRound:
			return errf(errState, "a round is already in progress")
		default:
			return errf(errState, "session is over")
		}
		if len(session.Players) < 2 {
			return errf(errState, "not enough players")
		}
		if len(session.Rounds) >= session.Settings.TotalRounds {
			return errf(errState, "all rounds have been played")
		}
		round := Round{
			Number:    len(session.Rounds) + 1,
			Status:    roundActive,
			ImageURL:  image.URL,
			ImageID:   image.ID,
			StartedAt: now,
		}
		if session.Settings.RoundSeconds > 0 {
			round.EndsAt = now.Add(time.Duration(session.Settings.RoundSeconds) * time.Second)
		}
		session.Rounds = append(session.Rounds, round)
		session.Status = statusInRound
		session.LastActivity = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	round := currentRound(session)
	if err := s.persistRound(session, round); err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to persist round")
	}
	log.Info().Str("code", code).Int("round", round.Number).Str("image", round.ImageID).Msg("round started")

	started := map[string]any{
		"round_number": round.Number,
		"game_number":  session.GameNumber,
		"image_url":    round.ImageURL,
		"started_at":   round.StartedAt.UTC().Format(time.RFC3339),
	}
	if !round.EndsAt.IsZero() {
		started["ends_at"] = round.EndsAt.UTC().Format(time.RFC3339)
		s.scheduleRoundTimer(code, session.GameNumber, round.Number, round.EndsAt)
	}
	s.broadcastEvent(code, eventRoundStarted, started)
	s.broadcastState(session)
	return session, nil
}

// SubmitCaption records a player's caption exactly once. Accepting the last
// missing caption and closing the round happen under the same lock, so two
// racing submissions cannot both close it.
func (s *Server) SubmitCaption(code string, roundNumber int, playerID, token, text string) (*Session, bool, error) {
	caption, err := validateCaption(text)
	if err != nil {
		return nil, false, err
	}
	now := timeNowUTC()
	closed := false
	closedGame := 0
	closedRoundNumber := 0
	session, err := s.store.Update(code, func(session *Session) error {
		if _, err := s.authenticatePlayer(session, playerID, token); err != nil {
			return err
		}
		if session.Status != statusInRound {
			return errf(errState, "captions are not being accepted")
		}
		round := currentRound(session)
		if round == nil {
			return errf(errState, "round not started")
		}
		if roundNumber > 0 && round.Number != roundNumber {
			return errf(errState, "round %d is not the current round", roundNumber)
		}
		if round.Status != roundActive {
			return errf(errState, "captions are closed for this round")
		}
		if !round.EndsAt.IsZero() && now.After(round.EndsAt) {
			return errf(errState, "round time is up")
		}
		if _, exists := findCaption(round, playerID); exists {
			return errf(errConflict, "caption already submitted")
		}
		round.Captions = append(round.Captions, Caption{
			PlayerID:    playerID,
			Text:        caption,
			SubmittedAt: now,
		})
		session.LastActivity = now
		closedGame = session.GameNumber
		closedRoundNumber = round.Number
		if len(round.Captions) == len(session.Players) {
			closeRoundLocked(session, round)
			closed = true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	round := currentRound(session)
	if err := s.persistCaption(session, round, playerID); err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to persist caption")
	}
	log.Info().Str("code", code).Str("player", playerID).Int("round", round.Number).Msg("caption submitted")

	s.broadcastEvent(code, eventCaptionLocked, map[string]any{
		"player_id": playerID,
		"submitted": true,
	})
	if closed {
		s.cancelRoundTimer(code)
		s.broadcastState(session)
		go s.scoreRound(code, closedGame, closedRoundNumber)
	}
	return session, closed, nil
}

// RevealRound lets the host close an active round early. Scoring and the
// reveal then run exactly as if the deadline had hit. A retry while the
// judges are still out is acknowledged without closing twice.
func (s *Server) RevealRound(code string, roundNumber int, playerID, token string) (*Session, error) {
	closedRound := 0
	closedGame := 0
	alreadyScoring := false
	session, err := s.store.Update(code, func(session *Session) error {
		if _, err := s.authenticateHost(session, playerID, token); err != nil {
			return err
		}
		round := currentRound(session)
		if round == nil {
			return errf(errState, "no round to reveal")
		}
		if roundNumber > 0 && round.Number != roundNumber {
			return errf(errState, "round %d is not the current round", roundNumber)
		}
		switch round.Status {
		case roundActive:
			if session.Status != statusInRound {
				return errf(errState, "no round to reveal")
			}
			closeRoundLocked(session, round)
			closedRound = round.Number
			closedGame = session.GameNumber
			session.LastActivity = timeNowUTC()
		case roundScoring:
			alreadyScoring = true
		default:
			return errf(errState, "round is already revealed")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alreadyScoring {
		return session, nil
	}
	s.cancelRoundTimer(code)
	log.Info().Str("code", code).Int("round", closedRound).Msg("round closed by host")
	s.broadcastState(session)
	go s.scoreRound(code, closedGame, closedRound)
	return session, nil
}

// autoCloseRound fires from the deadline timer. A stale timer loses the
// race against all-submitted or a host reveal and becomes a no-op.
func (s *Server) autoCloseRound(code string, gameNumber, roundNumber int) {
	session, err := s.store.Update(code, func(session *Session) error {
		if session.GameNumber != gameNumber || session.Status != statusInRound {
			return errf(errState, "round changed")
		}
		round := currentRound(session)
		if round == nil || round.Number != roundNumber || round.Status != roundActive {
			return errf(errState, "round changed")
		}
		closeRoundLocked(session, round)
		return nil
	})
	if err != nil {
		return
	}
	log.Info().Str("code", code).Int("round", roundNumber).Msg("round closed by deadline")
	s.broadcastState(session)
	s.scoreRound(code, gameNumber, roundNumber)
}

func closeRoundLocked(session *Session, round *Round) {
	round.Status = roundScoring
	session.Status = statusRevealing
}

// scoreRound judges every caption of a closed round concurrently, attaches
// the scores, and reveals. Re-entry is harmless: the round leaves scoring
// status on the first completion.
func (s *Server) scoreRound(code string, gameNumber, roundNumber int) {
	type captionRef struct {
		playerID string
		text     string
	}
	var (
		refs     []captionRef
		imageURL string
	)
	_, err := s.store.Update(code, func(session *Session) error {
		if session.GameNumber != gameNumber {
			return errf(errState, "game changed")
		}
		round := roundByNumber(session, roundNumber)
		if round == nil || round.Status != roundScoring {
			return errf(errState, "round is not scoring")
		}
		imageURL = round.ImageURL
		for _, caption := range round.Captions {
			refs = append(refs, captionRef{playerID: caption.PlayerID, text: caption.Text})
		}
		return nil
	})
	if err != nil {
		return
	}

	scores := make([]Score, len(refs))
	var wg sync.WaitGroup
	for i := range refs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scores[i] = s.scoreCaption(context.Background(), imageURL, refs[i].text)
		}(i)
	}
	wg.Wait()

	session, err := s.store.Update(code, func(session *Session) error {
		if session.GameNumber != gameNumber {
			return errf(errState, "game changed")
		}
		round := roundByNumber(session, roundNumber)
		if round == nil || round.Status != roundScoring {
			return errf(errState, "round is not scoring")
		}
		for i, ref := range refs {
			if caption, ok := findCaption(round, ref.playerID); ok {
				score := scores[i]
				caption.Score = &score
			}
		}
		round.Status = roundRevealed
		if round.Number >= session.Settings.TotalRounds {
			session.Status = statusFinished
		}
		session.LastActivity = timeNowUTC()
		return nil
	})
	if err != nil {
		return
	}

	round := roundByNumber(session, roundNumber)
	if err := s.persistScores(session, round); err != nil {
		log.Error().Err(err).Str("code", code).Msg("failed to persist scores")
	}
	log.Info().Str("code", code).Int("round", roundNumber).Int("captions", len(refs)).Msg("round revealed")

	s.broadcastEvent(code, eventRoundRevealed, buildRoundResults(session, round))
	s.broadcastState(session)
	if session.Status == statusFinished {
		s.broadcastEvent(code, eventSessionEnded, map[string]any{
			"reason":      "completed",
			"leaderboard": buildLeaderboard(session),
		})
	}
}
