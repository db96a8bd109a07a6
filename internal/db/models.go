package db

import (
	"time"

	"gorm.io/datatypes"
)

type Session struct {
	ID           uint      `gorm:"primaryKey"`
	Code         string    `gorm:"size:12;uniqueIndex;not null"`
	Status       string    `gorm:"size:32;not null"`
	HostPlayerID string    `gorm:"size:64;not null"`
	GameNumber   int       `gorm:"not null;default:1"`
	TotalRounds  int       `gorm:"not null"`
	MaxPlayers   int       `gorm:"not null"`
	RoundSeconds int       `gorm:"not null"`
	LastActivity time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
	Players      []Player
	Rounds       []Round
	Events       []Event
}

type Player struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID uint      `gorm:"index;not null;uniqueIndex:idx_players_session_player"`
	PlayerID  string    `gorm:"size:64;not null;uniqueIndex:idx_players_session_player"`
	Name      string    `gorm:"size:64;not null"`
	IsHost    bool      `gorm:"not null;default:false"`
	JoinOrder int       `gorm:"not null"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Captions  []Caption
}

type Round struct {
	ID         uint      `gorm:"primaryKey"`
	SessionID  uint      `gorm:"index;not null;uniqueIndex:idx_rounds_session_game_number"`
	GameNumber int       `gorm:"not null;uniqueIndex:idx_rounds_session_game_number"`
	Number     int       `gorm:"not null;uniqueIndex:idx_rounds_session_game_number"`
	Status     string    `gorm:"size:32;not null"`
	ImageURL   string    `gorm:"size:512;not null"`
	ImageID    string    `gorm:"size:128"`
	StartedAt  time.Time `gorm:"not null"`
	EndsAt     *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	Captions   []Caption
}

type Caption struct {
	ID            uint      `gorm:"primaryKey"`
	RoundID       uint      `gorm:"index;not null;uniqueIndex:idx_captions_round_player"`
	PlayerID      uint      `gorm:"index;not null;uniqueIndex:idx_captions_round_player"`
	Text          string    `gorm:"size:280;not null"`
	Humour        *int      `gorm:""`
	Relevance     *int      `gorm:""`
	Total         *int      `gorm:""`
	Comment       string    `gorm:"size:280"`
	FallbackScore bool      `gorm:"not null;default:false"`
	SubmittedAt   time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	SessionID uint           `gorm:"index;not null"`
	RoundID   *uint          `gorm:"index"`
	PlayerID  *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
