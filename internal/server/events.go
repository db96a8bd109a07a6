package server

// Outbound websocket event types. Every payload is wrapped in an envelope
// so clients can switch on "type".
const (
	eventSessionState  = "session_state"
	eventRosterChanged = "roster_changed"
	eventRoundStarted  = "round_started"
	eventCaptionLocked = "caption_locked"
	eventRoundRevealed = "round_revealed"
	eventSessionEnded  = "session_ended"
	eventError         = "error"
	eventPong          = "pong"
)

type wsEnvelope struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// EventPayload is the audit-log record body stored alongside lifecycle
// events when a database is attached.
type EventPayload struct {
	Code        string `json:"code,omitempty"`
	PlayerName  string `json:"player,omitempty"`
	PlayerID    string `json:"player_id,omitempty"`
	GameNumber  int    `json:"game_number,omitempty"`
	RoundNumber int    `json:"round_number,omitempty"`
	Status      string `json:"status,omitempty"`
	Reason      string `json:"reason,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Count       int    `json:"count,omitempty"`
}
