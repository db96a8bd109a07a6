package server

import "time"

const (
	statusLobby     = "lobby"
	statusInRound   = "in_round"
	statusRevealing = "revealing"
	statusFinished  = "finished"
	statusExpired   = "expired"
)

const (
	roundActive   = "active"
	roundScoring  = "scoring"
	roundRevealed = "revealed"
)

type Settings struct {
	TotalRounds  int
	MaxPlayers   int
	RoundSeconds int
}

type Session struct {
	Code         string
	DBID         uint
	Status       string
	HostID       string
	GameNumber   int
	Settings     Settings
	Players      []Player
	Rounds       []Round
	CreatedAt    time.Time
	LastActivity time.Time
}

type Player struct {
	ID        string
	DBID      uint
	Name      string
	IsHost    bool
	JoinOrder int
	Connected bool
	JoinedAt  time.Time
}

type Round struct {
	Number    int
	DBID      uint
	Status    string
	ImageURL  string
	ImageID   string
	StartedAt time.Time
	EndsAt    time.Time
	Captions  []Caption
}

type Caption struct {
	PlayerID    string
	DBID        uint
	Text        string
	SubmittedAt time.Time
	Score       *Score
}

type Score struct {
	Humour    int    `json:"humour"`
	Relevance int    `json:"relevance"`
	Total     int    `json:"total"`
	Comment   string `json:"comment"`
	Fallback  bool   `json:"fallback"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Total    int    `json:"total"`
}

func currentRound(session *Session) *Round {
	if len(session.Rounds) == 0 {
		return nil
	}
	return &session.Rounds[len(session.Rounds)-1]
}

func roundByNumber(session *Session, number int) *Round {
	if session == nil || number <= 0 {
		return nil
	}
	for i := range session.Rounds {
		if session.Rounds[i].Number == number {
			return &session.Rounds[i]
		}
	}
	return nil
}

func findPlayer(session *Session, playerID string) (*Player, bool) {
	for i := range session.Players {
		if session.Players[i].ID == playerID {
			return &session.Players[i], true
		}
	}
	return nil, false
}

func findCaption(round *Round, playerID string) (*Caption, bool) {
	for i := range round.Captions {
		if round.Captions[i].PlayerID == playerID {
			return &round.Captions[i], true
		}
	}
	return nil, false
}

func sessionLive(status string) bool {
	switch status {
	case statusLobby, statusInRound, statusRevealing:
		return true
	default:
		return false
	}
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
