package server

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// scheduleRoundTimer arms the deadline for the current round. Re-arming
// replaces any previous timer for the session.
func (s *Server) scheduleRoundTimer(code string, gameNumber, roundNumber int, endsAt time.Time) {
	duration := time.Until(endsAt)
	if duration <= 0 {
		duration = time.Millisecond
	}
	s.timersMu.Lock()
	if existing, ok := s.timers[code]; ok {
		existing.Stop()
	}
	s.timers[code] = time.AfterFunc(duration, func() {
		s.autoCloseRound(code, gameNumber, roundNumber)
	})
	s.timersMu.Unlock()
}

func (s *Server) cancelRoundTimer(code string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[code]; ok {
		timer.Stop()
		delete(s.timers, code)
	}
}

// StartSweeper expires idle sessions on an interval until ctx is done.
func (s *Server) StartSweeper(ctx context.Context) {
	interval := time.Duration(s.cfg.SweepIntervalSeconds) * time.Second
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweepExpiredSessions()
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("session sweeper started")
}
