package results

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/bagatelle/game/engine"
)

var ErrResultNotFound = errors.New("result not found")

// DefaultListLimit caps List when the caller passes a non-positive limit
const DefaultListLimit = 50

// Result is the archived summary of one finished game
type Result struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"session_id"`
	ConfigName string          `json:"config_name"`
	Game       int             `json:"game"`
	Players    []engine.Player `json:"players"`
	WinnerID   int             `json:"winner_id"`
	Tie        bool            `json:"tie"`
	TopScore   int             `json:"top_score"`
	Turns      int             `json:"turns"`
	Duds       int             `json:"duds"`
	Frames     int64           `json:"frames"`
	Elapsed    float64         `json:"elapsed"`
	FinishedAt time.Time       `json:"finished_at"`
}

// Store archives finished games. Implementations must be safe for
// concurrent use.
type Store interface {
	Save(ctx context.Context, result *Result) error
	Get(ctx context.Context, id string) (*Result, error)
	// List returns the most recent results first
	List(ctx context.Context, limit int) ([]*Result, error)
	Close() error
}

// NewResult builds a result from a finished game's final snapshot and its turn log
func NewResult(sessionID, configName string, state *engine.GameState, turns []engine.TurnRecord) *Result {
	players := make([]engine.Player, len(state.Players))
	copy(players, state.Players)

	r := &Result{
		ID:         uuid.NewString(),
		SessionID:  sessionID,
		ConfigName: configName,
		Game:       state.Game,
		Players:    players,
		WinnerID:   state.WinnerID,
		Tie:        state.Tie,
		TopScore:   engine.TopScore(players),
		Frames:     state.Frame,
		Elapsed:    state.Elapsed,
		FinishedAt: time.Now(),
	}
	for _, t := range turns {
		if t.Game != state.Game {
			continue
		}
		r.Turns++
		if t.Outcome == engine.TurnDud {
			r.Duds++
		}
	}
	return r
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
