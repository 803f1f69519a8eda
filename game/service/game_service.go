package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/bagatelle/game/engine"
	"github.com/wricardo/mcp-training/bagatelle/game/results"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
	ErrGameOver        = errors.New("game is over")
	ErrInvalidFrames   = errors.New("invalid frame count")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Launch(ctx context.Context, sessionID string, opts LaunchOptions) (*LaunchResult, error)
	StartCharge(ctx context.Context, sessionID string) (*LaunchResult, error)
	ReleaseCharge(ctx context.Context, sessionID string, settle bool) (*LaunchResult, error)
	Step(ctx context.Context, sessionID string, frames int) (*StepResult, error)
	Settle(ctx context.Context, sessionID string, maxFrames int) (*StepResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Realtime sessions are advanced by a wall-clock loop instead of Step calls
	SetRealtime(ctx context.Context, sessionID string, enabled bool) (*SessionInfo, error)
	AdvanceRealtime(ctx context.Context, dt float64) ([]*StepResult, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// Finished games
	ListResults(ctx context.Context, limit int) ([]*results.Result, error)
	GetResult(ctx context.Context, resultID string) (*results.Result, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Session represents an active game session. The engine is not safe for
// concurrent use; hold the session lock around every engine call.
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
	Realtime       bool
	ArchivedGame   int // engine game number already written to the results store

	mu sync.Mutex
}

// Lock serializes access to the session's engine
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session lock
func (s *Session) Unlock() { s.mu.Unlock() }
