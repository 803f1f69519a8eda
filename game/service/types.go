package service

import (
	"time"

	"github.com/wricardo/mcp-training/bagatelle/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Realtime       bool               `json:"realtime"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// LaunchOptions selects the launch strength. ChargeSeconds, when positive,
// wins over Power and is converted the same way the launcher does it.
type LaunchOptions struct {
	Power         float64 `json:"power"`
	ChargeSeconds float64 `json:"charge_seconds,omitempty"`
	Settle        bool    `json:"settle,omitempty"` // run the turn to completion before returning
}

// LaunchResult contains the result of a launch request
type LaunchResult struct {
	Success   bool               `json:"success"`
	Power     float64            `json:"power"`
	GameState *engine.GameState  `json:"game_state"`
	Message   string             `json:"message"`
	Events    []GameEvent        `json:"events,omitempty"`
	Frames    int                `json:"frames,omitempty"`
	Turn      *engine.TurnRecord `json:"turn,omitempty"`
}

// StepResult contains the outcome of advancing a session's simulation
type StepResult struct {
	SessionID     string             `json:"session_id"`
	FramesRun     int                `json:"frames_run"`
	GameState     *engine.GameState  `json:"game_state"`
	Events        []GameEvent        `json:"events,omitempty"`
	TurnEnded     bool               `json:"turn_ended"`
	Turn          *engine.TurnRecord `json:"turn,omitempty"`
	StoppedReason string             `json:"stopped_reason,omitempty"` // settled|dud|game_over|frame_limit|idle
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "launch", "charge", "dud", "turn_end", "game_over", "reset", "realtime"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	PlayerID  int       `json:"player_id,omitempty"`
	Points    int       `json:"points,omitempty"`
}

// HistoryOptions configures turn history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated turn history
type HistoryResponse struct {
	Turns       []engine.TurnRecord `json:"turns"`
	TotalTurns  int                 `json:"total_turns"`
	Page        int                 `json:"page"`
	PageSize    int                 `json:"page_size"`
	TotalPages  int                 `json:"total_pages"`
	HasNext     bool                `json:"has_next"`
	HasPrevious bool                `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename       string `json:"filename"`
	ConfigID       string `json:"config_id"` // The identifier to use for session creation
	Name           string `json:"name"`      // Display name
	Description    string `json:"description"`
	Players        int    `json:"players"`
	BallsPerPlayer int    `json:"balls_per_player"`
	Holes          int    `json:"holes"`
	TotalPoints    int    `json:"total_points"`
}

// Event types
const (
	EventLaunch   = "launch"
	EventCharge   = "charge"
	EventDud      = "dud"
	EventTurnEnd  = "turn_end"
	EventGameOver = "game_over"
	EventReset    = "reset"
	EventRealtime = "realtime"
)

// Step stop reasons
const (
	StopSettled    = "settled"
	StopDud        = "dud"
	StopGameOver   = "game_over"
	StopFrameLimit = "frame_limit"
	StopIdle       = "idle"
)
