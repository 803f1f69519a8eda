package loop

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/bagatelle/game/engine"
	"github.com/wricardo/mcp-training/bagatelle/game/service"
)

// DefaultTickRate is used when a non-positive rate is given
const DefaultTickRate = 60

// Advancer moves realtime sessions forward; GameService satisfies it
type Advancer interface {
	AdvanceRealtime(ctx context.Context, dt float64) ([]*service.StepResult, error)
}

// Broadcaster receives snapshots of sessions that changed during a tick
type Broadcaster interface {
	BroadcastToSession(sessionID string, state *engine.GameState)
}

// GameLoop ticks realtime sessions at a fixed rate
type GameLoop struct {
	advancer    Advancer
	broadcaster Broadcaster
	tickRate    int

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewGameLoop creates a loop; broadcaster may be nil
func NewGameLoop(advancer Advancer, broadcaster Broadcaster, tickRate int) *GameLoop {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &GameLoop{
		advancer:    advancer,
		broadcaster: broadcaster,
		tickRate:    tickRate,
		stopChan:    make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or Stop is called
func (g *GameLoop) Run(ctx context.Context) {
	g.setRunning(true)
	defer g.setRunning(false)

	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	log.Printf("Game loop started at %d ticks/second", g.tickRate)

	for {
		select {
		case <-ctx.Done():
			log.Println("Game loop stopped")
			return
		case <-g.stopChan:
			log.Println("Game loop stopped")
			return
		case <-ticker.C:
			g.tick(ctx)
		}
	}
}

// Stop ends Run. Safe to call more than once.
func (g *GameLoop) Stop() {
	g.stopOnce.Do(func() {
		close(g.stopChan)
	})
}

// Running reports whether Run is active
func (g *GameLoop) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// TickRate returns the ticks per second
func (g *GameLoop) TickRate() int {
	return g.tickRate
}

func (g *GameLoop) setRunning(running bool) {
	g.mu.Lock()
	g.running = running
	g.mu.Unlock()
}

func (g *GameLoop) tick(ctx context.Context) {
	dt := 1.0 / float64(g.tickRate)

	changed, err := g.advancer.AdvanceRealtime(ctx, dt)
	if err != nil && ctx.Err() == nil {
		log.Printf("Realtime tick error: %v", err)
	}

	if g.broadcaster == nil {
		return
	}
	for _, result := range changed {
		g.broadcaster.BroadcastToSession(result.SessionID, result.GameState)
	}
}
