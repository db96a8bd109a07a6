package server

import (
	"testing"
	"time"
)

func TestCreateSessionDefaults(t *testing.T) {
	srv := newGameServer(t)
	result, err := srv.CreateSession("Ada", Settings{RoundSeconds: -1})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	cfg := testConfig()
	settings := result.Session.Settings
	if settings.TotalRounds != cfg.TotalRounds {
		t.Fatalf("expected default rounds %d, got %d", cfg.TotalRounds, settings.TotalRounds)
	}
	if settings.MaxPlayers != cfg.MaxPlayersPerSession {
		t.Fatalf("expected default max players %d, got %d", cfg.MaxPlayersPerSession, settings.MaxPlayers)
	}
	if settings.RoundSeconds != cfg.RoundSeconds {
		t.Fatalf("expected default round seconds %d, got %d", cfg.RoundSeconds, settings.RoundSeconds)
	}
	if len(result.Session.Code) != 6 {
		t.Fatalf("expected 6 character code, got %q", result.Session.Code)
	}
	if !result.Player.IsHost || result.Session.HostID != result.Player.ID {
		t.Fatalf("creator should be the host: %#v", result.Player)
	}
	if err := verifyPlayerToken(cfg.AppSecret, result.Token, result.Player.ID, result.Session.Code, time.Now()); err != nil {
		t.Fatalf("issued token should verify: %v", err)
	}
}

func TestCreateSessionKeepsExplicitZeroDeadline(t *testing.T) {
	srv := newGameServer(t)
	result, err := srv.CreateSession("Ada", Settings{RoundSeconds: 0})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if result.Session.Settings.RoundSeconds != 0 {
		t.Fatalf("explicit zero should disable the deadline, got %d", result.Session.Settings.RoundSeconds)
	}
}

func TestCreateSessionValidatesHostName(t *testing.T) {
	srv := newGameServer(t)
	if _, err := srv.CreateSession("  ", Settings{RoundSeconds: -1}); errKind(err) != errValidation {
		t.Fatalf("blank host name should be rejected, got %v", err)
	}
	if _, err := srv.CreateSession("Ada", Settings{TotalRounds: 99, RoundSeconds: -1}); errKind(err) != errValidation {
		t.Fatalf("out of range rounds should be rejected, got %v", err)
	}
}

func TestJoinSessionNormalizesDuplicateNames(t *testing.T) {
	srv := newGameServer(t)
	result, err := srv.CreateSession("Ada", Settings{RoundSeconds: -1})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	_, _, _, err = srv.JoinSession(result.Session.Code, "  ada  ")
	if err != nil {
		t.Fatalf("casing differs, join should pass: %v", err)
	}
	_, _, _, err = srv.JoinSession(result.Session.Code, " Ada  ")
	if errKind(err) != errConflict {
		t.Fatalf("whitespace variant of a taken name should conflict, got %v", err)
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	srv := newGameServer(t)
	result, err := srv.CreateSession("Ada", Settings{RoundSeconds: -1})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	code := result.Session.Code

	srv.sweepExpiredSessions()
	if _, ok := srv.store.Get(code); !ok {
		t.Fatalf("fresh session must survive a sweep")
	}

	ttl := time.Duration(testConfig().SessionTTLMinutes) * time.Minute
	_, err = srv.store.Update(code, func(session *Session) error {
		session.LastActivity = timeNowUTC().Add(-ttl - time.Minute)
		return nil
	})
	if err != nil {
		t.Fatalf("backdate session: %v", err)
	}

	srv.sweepExpiredSessions()
	if _, ok := srv.store.Get(code); ok {
		t.Fatalf("idle session should be swept")
	}
}
