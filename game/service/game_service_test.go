package service_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/bagatelle/game/engine"
	"github.com/wricardo/mcp-training/bagatelle/game/results"
	"github.com/wricardo/mcp-training/bagatelle/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.GameConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("t%03d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, errors.New("session already exists")
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.GameConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.GameConfig
}

func NewMockConfigManager() *MockConfigManager {
	classic := engine.DefaultConfig()

	solo := engine.DefaultConfig()
	solo.Name = "Solo"
	solo.Description = "One player, one ball"
	solo.Players = 1
	solo.BallsPerPlayer = 1

	return &MockConfigManager{
		configs: map[string]*engine.GameConfig{
			"classic": classic,
			"solo":    solo,
		},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.GameConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	var configs []*service.ConfigInfo
	for id, config := range m.configs {
		configs = append(configs, &service.ConfigInfo{
			Filename: id + ".json",
			ConfigID: id,
			Name:     config.Name,
			Players:  config.Players,
		})
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

func (m *MockConfigManager) GetDefault() *engine.GameConfig {
	return m.configs["classic"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.GameConfig) error {
	if err := engine.ValidateGameConfig(config); err != nil {
		return err
	}
	m.configs[name] = config
	return nil
}

// MockResultStore implements results.Store in memory
type MockResultStore struct {
	saved   []*results.Result
	saveErr error
}

func (m *MockResultStore) Save(ctx context.Context, result *results.Result) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, result)
	return nil
}

func (m *MockResultStore) Get(ctx context.Context, id string) (*results.Result, error) {
	for _, r := range m.saved {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, results.ErrResultNotFound
}

func (m *MockResultStore) List(ctx context.Context, limit int) ([]*results.Result, error) {
	list := make([]*results.Result, 0, len(m.saved))
	for i := len(m.saved) - 1; i >= 0; i-- {
		list = append(list, m.saved[i])
	}
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockResultStore) Close() error { return nil }

func newTestService() (service.GameService, *MockResultStore) {
	store := &MockResultStore{}
	return service.NewGameService(NewMockSessionManager(), NewMockConfigManager(), store), store
}

func createSession(t *testing.T, svc service.GameService, configName string) *service.SessionInfo {
	t.Helper()
	info, err := svc.CreateSession(context.Background(), configName)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	return info
}

func TestGameService_CreateSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	t.Run("default config", func(t *testing.T) {
		info := createSession(t, svc, "")
		if info.ConfigName != "classic" {
			t.Errorf("Expected config id classic, got %s", info.ConfigName)
		}
		if info.GameState.State != engine.WaitingToLaunch {
			t.Errorf("Expected %s, got %s", engine.WaitingToLaunch, info.GameState.State)
		}
	})

	t.Run("named config", func(t *testing.T) {
		info := createSession(t, svc, "solo")
		if info.ConfigName != "solo" || len(info.GameState.Players) != 1 {
			t.Errorf("Expected a solo session, got %s with %d players", info.ConfigName, len(info.GameState.Players))
		}
	})

	t.Run("unknown config", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "nope")
		if !errors.Is(err, service.ErrConfigNotFound) {
			t.Fatalf("Expected ErrConfigNotFound, got %v", err)
		}
	})
}

func TestGameService_SessionLifecycle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	info := createSession(t, svc, "")

	got, err := svc.GetSession(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if got.ID != info.ID {
		t.Errorf("Expected session %s, got %s", info.ID, got.ID)
	}

	createSession(t, svc, "solo")
	list, err := svc.ListSessions(ctx)
	if err != nil {
		t.Fatalf("Failed to list sessions: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(list))
	}

	if err := svc.DeleteSession(ctx, info.ID); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := svc.GetSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := svc.DeleteSession(ctx, info.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound deleting twice, got %v", err)
	}
}

func TestGameService_UnknownSession(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	checks := map[string]func() error{
		"state": func() error { _, err := svc.GetGameState(ctx, "zzzz"); return err },
		"launch": func() error {
			_, err := svc.Launch(ctx, "zzzz", service.LaunchOptions{Power: 500})
			return err
		},
		"step":     func() error { _, err := svc.Step(ctx, "zzzz", 10); return err },
		"settle":   func() error { _, err := svc.Settle(ctx, "zzzz", 0); return err },
		"reset":    func() error { _, err := svc.Reset(ctx, "zzzz"); return err },
		"realtime": func() error { _, err := svc.SetRealtime(ctx, "zzzz", true); return err },
		"history": func() error {
			_, err := svc.GetTurnHistory(ctx, "zzzz", service.HistoryOptions{})
			return err
		},
	}

	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			if err := check(); !errors.Is(err, service.ErrSessionNotFound) {
				t.Errorf("Expected ErrSessionNotFound, got %v", err)
			}
		})
	}
}

func TestGameService_Launch(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	info := createSession(t, svc, "")

	result, err := svc.Launch(ctx, info.ID, service.LaunchOptions{Power: 900})
	if err != nil {
		t.Fatalf("Failed to launch: %v", err)
	}
	if !result.Success || result.Power != 900 {
		t.Errorf("Expected successful launch at 900, got %+v", result)
	}
	if result.GameState.State != engine.BallInPlay {
		t.Errorf("Expected %s, got %s", engine.BallInPlay, result.GameState.State)
	}
	if len(result.Events) != 1 || result.Events[0].Type != service.EventLaunch {
		t.Errorf("Expected a single launch event, got %+v", result.Events)
	}

	again, err := svc.Launch(ctx, info.ID, service.LaunchOptions{Power: 900})
	if err != nil {
		t.Fatalf("Expected ignored launch without error, got %v", err)
	}
	if again.Success {
		t.Error("Expected launch during play to be unsuccessful")
	}
	if again.GameState.Players[0].BallsRemaining != 4 {
		t.Errorf("Expected ignored launch to leave 4 balls, got %d", again.GameState.Players[0].BallsRemaining)
	}
}

func TestGameService_LaunchWithCharge(t *testing.T) {
	svc, _ := newTestService()
	info := createSession(t, svc, "")

	tests := []struct {
		charge   float64
		expected float64
	}{
		{1, 650},
		{2, 1300},
		{10, 1300},
	}

	for _, test := range tests {
		t.Run(fmt.Sprintf("charge %g", test.charge), func(t *testing.T) {
			if _, err := svc.Reset(context.Background(), info.ID); err != nil {
				t.Fatalf("Failed to reset: %v", err)
			}
			result, err := svc.Launch(context.Background(), info.ID, service.LaunchOptions{Power: 1, ChargeSeconds: test.charge})
			if err != nil {
				t.Fatalf("Failed to launch: %v", err)
			}
			if result.Power != test.expected {
				t.Errorf("Expected power %g, got %g", test.expected, result.Power)
			}
		})
	}
}

func TestGameService_ChargeAndRelease(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	info := createSession(t, svc, "")

	if result, _ := svc.ReleaseCharge(ctx, info.ID, false); result == nil || result.Success {
		t.Fatalf("Expected release without a charge to be unsuccessful, got %+v", result)
	}

	charge, err := svc.StartCharge(ctx, info.ID)
	if err != nil {
		t.Fatalf("Failed to start charging: %v", err)
	}
	if !charge.Success || !charge.GameState.Launcher.Charging {
		t.Fatalf("Expected the launcher to be charging, got %+v", charge.GameState.Launcher)
	}
	if len(charge.Events) != 1 || charge.Events[0].Type != service.EventCharge {
		t.Errorf("Expected a charge event, got %+v", charge.Events)
	}

	// One simulated second of charge is half of the two second maximum.
	if _, err := svc.Step(ctx, info.ID, 60); err != nil {
		t.Fatalf("Failed to step: %v", err)
	}
	result, err := svc.ReleaseCharge(ctx, info.ID, false)
	if err != nil {
		t.Fatalf("Failed to release: %v", err)
	}
	if !result.Success || math.Abs(result.Power-650) > 1e-6 {
		t.Errorf("Expected a launch at 650, got success=%v power=%g", result.Success, result.Power)
	}
	if result.GameState.State != engine.BallInPlay || result.GameState.Launcher.Charging {
		t.Errorf("Expected the ball in play and the launcher idle, got %s %+v", result.GameState.State, result.GameState.Launcher)
	}
	if len(result.Events) != 1 || result.Events[0].Type != service.EventLaunch {
		t.Errorf("Expected a launch event, got %+v", result.Events)
	}

	busy, err := svc.StartCharge(ctx, info.ID)
	if err != nil || busy.Success {
		t.Errorf("Expected charging during play to be unsuccessful, got %+v, %v", busy, err)
	}
}

func TestGameService_RealtimeCharge(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	info := createSession(t, svc, "")

	if _, err := svc.SetRealtime(ctx, info.ID, true); err != nil {
		t.Fatalf("Failed to enable realtime: %v", err)
	}
	if _, err := svc.StartCharge(ctx, info.ID); err != nil {
		t.Fatalf("Failed to start charging: %v", err)
	}

	changed, err := svc.AdvanceRealtime(ctx, 0.5)
	if err != nil {
		t.Fatalf("Failed to advance: %v", err)
	}
	if len(changed) != 1 {
		t.Fatalf("Expected the charging session to advance, got %d results", len(changed))
	}
	if got := changed[0].GameState.Launcher.ChargeTime; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected 0.5s of charge, got %g", got)
	}

	// A quarter charge cannot clear the channel wall.
	result, err := svc.ReleaseCharge(ctx, info.ID, true)
	if err != nil {
		t.Fatalf("Failed to release: %v", err)
	}
	if math.Abs(result.Power-325) > 1e-6 {
		t.Errorf("Expected power 325, got %g", result.Power)
	}
	if result.Turn == nil || result.Turn.Outcome != engine.TurnDud {
		t.Errorf("Expected the settled turn to be a dud, got %+v", result.Turn)
	}
}

func TestGameService_LaunchAndSettleDud(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	info := createSession(t, svc, "")

	result, err := svc.Launch(ctx, info.ID, service.LaunchOptions{Power: 50, Settle: true})
	if err != nil {
		t.Fatalf("Failed to launch: %v", err)
	}
	if result.Turn == nil || result.Turn.Outcome != engine.TurnDud {
		t.Fatalf("Expected a dud turn, got %+v", result.Turn)
	}
	if result.GameState.State != engine.WaitingToLaunch || result.GameState.CurrentPlayer != 0 {
		t.Errorf("Expected the same player waiting to relaunch, got %s for player %d",
			result.GameState.State, result.GameState.CurrentPlayer)
	}
	if result.GameState.Players[0].BallsRemaining != 5 {
		t.Errorf("Expected the dud ball returned, got %d remaining", result.GameState.Players[0].BallsRemaining)
	}

	foundDud := false
	for _, ev := range result.Events {
		if ev.Type == service.EventDud {
			foundDud = true
		}
	}
	if !foundDud {
		t.Errorf("Expected a dud event, got %+v", result.Events)
	}
	if len(store.saved) != 0 {
		t.Errorf("Expected nothing archived, got %d results", len(store.saved))
	}
}

func TestGameService_Step(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	info := createSession(t, svc, "")

	t.Run("invalid frame counts", func(t *testing.T) {
		for _, frames := range []int{0, -5, engine.MaxStepFrames + 1} {
			if _, err := svc.Step(ctx, info.ID, frames); !errors.Is(err, service.ErrInvalidFrames) {
				t.Errorf("Step(%d): expected ErrInvalidFrames, got %v", frames, err)
			}
		}
	})

	t.Run("runs the requested frames", func(t *testing.T) {
		if _, err := svc.Launch(ctx, info.ID, service.LaunchOptions{Power: 900}); err != nil {
			t.Fatalf("Failed to launch: %v", err)
		}
		result, err := svc.Step(ctx, info.ID, 10)
		if err != nil {
			t.Fatalf("Failed to step: %v", err)
		}
		if result.FramesRun != 10 || result.GameState.Frame != 10 {
			t.Errorf("Expected 10 frames, got %d (engine frame %d)", result.FramesRun, result.GameState.Frame)
		}
		if result.StoppedReason != service.StopFrameLimit || result.TurnEnded {
			t.Errorf("Expected frame_limit without turn end, got %s", result.StoppedReason)
		}
		if result.GameState.Balls[0].Position.Y >= 730 {
			t.Errorf("Expected the ball to have moved up the channel, got y=%g", result.GameState.Balls[0].Position.Y)
		}
	})
}

func TestGameService_Settle(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	info := createSession(t, svc, "")

	idle, err := svc.Settle(ctx, info.ID, 0)
	if err != nil {
		t.Fatalf("Failed to settle idle session: %v", err)
	}
	if idle.StoppedReason != service.StopIdle || idle.FramesRun != 0 {
		t.Errorf("Expected idle with no frames, got %s after %d", idle.StoppedReason, idle.FramesRun)
	}

	if _, err := svc.Settle(ctx, info.ID, engine.MaxStepFrames+1); !errors.Is(err, service.ErrInvalidFrames) {
		t.Errorf("Expected ErrInvalidFrames, got %v", err)
	}

	if _, err := svc.Launch(ctx, info.ID, service.LaunchOptions{Power: 50}); err != nil {
		t.Fatalf("Failed to launch: %v", err)
	}

	short, err := svc.Settle(ctx, info.ID, 2)
	if err != nil {
		t.Fatalf("Failed to settle: %v", err)
	}
	if short.StoppedReason != service.StopFrameLimit || short.FramesRun != 2 {
		t.Errorf("Expected frame_limit after 2 frames, got %s after %d", short.StoppedReason, short.FramesRun)
	}

	done, err := svc.Settle(ctx, info.ID, 0)
	if err != nil {
		t.Fatalf("Failed to settle: %v", err)
	}
	if done.StoppedReason != service.StopDud || !done.TurnEnded {
		t.Errorf("Expected the weak launch to end as a dud, got %s", done.StoppedReason)
	}
}

func TestGameService_GameOverArchivesOnce(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	info := createSession(t, svc, "solo")

	result, err := svc.Launch(ctx, info.ID, service.LaunchOptions{Power: 1300, Settle: true})
	if err != nil {
		t.Fatalf("Failed to launch: %v", err)
	}
	if result.GameState.State != engine.GameOver {
		t.Fatalf("Expected a full power single ball game to end, got %s (turn %+v)", result.GameState.State, result.Turn)
	}
	if len(store.saved) != 1 {
		t.Fatalf("Expected one archived result, got %d", len(store.saved))
	}

	saved := store.saved[0]
	if saved.SessionID != info.ID || saved.ConfigName != "solo" || saved.Turns != 1 {
		t.Errorf("Unexpected archived result: %+v", saved)
	}
	if saved.WinnerID != 1 {
		t.Errorf("Expected the only player to win, got winner %d", saved.WinnerID)
	}

	// Further calls on the finished game neither fail nor re-archive
	if _, err := svc.Step(ctx, info.ID, 5); err != nil {
		t.Fatalf("Failed to step finished game: %v", err)
	}
	if _, err := svc.Settle(ctx, info.ID, 0); err != nil {
		t.Fatalf("Failed to settle finished game: %v", err)
	}
	if len(store.saved) != 1 {
		t.Errorf("Expected the result to be archived once, got %d", len(store.saved))
	}
	if _, err := svc.Launch(ctx, info.ID, service.LaunchOptions{Power: 900}); !errors.Is(err, service.ErrGameOver) {
		t.Errorf("Expected ErrGameOver launching after the end, got %v", err)
	}

	list, err := svc.ListResults(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Expected 1 listed result, got %d", len(list))
	}
	if _, err := svc.GetResult(ctx, saved.ID); err != nil {
		t.Errorf("Failed to get result: %v", err)
	}

	// A new game after reset is archived separately
	if _, err := svc.Reset(ctx, info.ID); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}
	if _, err := svc.Launch(ctx, info.ID, service.LaunchOptions{Power: 1300, Settle: true}); err != nil {
		t.Fatalf("Failed to launch after reset: %v", err)
	}
	if len(store.saved) != 2 || store.saved[1].Game != 2 {
		t.Errorf("Expected a second result for game 2, got %d results", len(store.saved))
	}
}

func TestGameService_ArchiveFailureRetries(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()
	info := createSession(t, svc, "solo")

	store.saveErr = errors.New("disk full")
	if _, err := svc.Launch(ctx, info.ID, service.LaunchOptions{Power: 1300, Settle: true}); err != nil {
		t.Fatalf("Archive failures must not fail the launch: %v", err)
	}
	if len(store.saved) != 0 {
		t.Fatalf("Expected nothing saved while the store fails")
	}

	store.saveErr = nil
	if _, err := svc.Settle(ctx, info.ID, 0); err != nil {
		t.Fatalf("Failed to settle: %v", err)
	}
	if len(store.saved) != 1 {
		t.Errorf("Expected the archive to be retried, got %d results", len(store.saved))
	}
}

func TestGameService_NilResultStore(t *testing.T) {
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager(), nil)
	ctx := context.Background()

	list, err := svc.ListResults(ctx, 10)
	if err != nil || len(list) != 0 {
		t.Errorf("Expected empty results without a store, got %v, %v", list, err)
	}
	if _, err := svc.GetResult(ctx, "x"); !errors.Is(err, results.ErrResultNotFound) {
		t.Errorf("Expected ErrResultNotFound, got %v", err)
	}
}

func TestGameService_Realtime(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	live := createSession(t, svc, "")
	manual := createSession(t, svc, "")

	info, err := svc.SetRealtime(ctx, live.ID, true)
	if err != nil {
		t.Fatalf("Failed to enable realtime: %v", err)
	}
	if !info.Realtime {
		t.Error("Expected realtime flag to be set")
	}

	if _, err := svc.AdvanceRealtime(ctx, 0); err == nil {
		t.Error("Expected error for zero delta")
	}

	idle, err := svc.AdvanceRealtime(ctx, 1.0/60)
	if err != nil {
		t.Fatalf("Failed to advance: %v", err)
	}
	if len(idle) != 0 {
		t.Errorf("Expected no changes while nothing is in play, got %d", len(idle))
	}

	svc.Launch(ctx, live.ID, service.LaunchOptions{Power: 900})
	svc.Launch(ctx, manual.ID, service.LaunchOptions{Power: 900})

	changed, err := svc.AdvanceRealtime(ctx, 1.0/60)
	if err != nil {
		t.Fatalf("Failed to advance: %v", err)
	}
	if len(changed) != 1 || changed[0].SessionID != live.ID {
		t.Fatalf("Expected only the realtime session to advance, got %d results", len(changed))
	}
	if changed[0].FramesRun != 1 {
		t.Errorf("Expected 1 frame, got %d", changed[0].FramesRun)
	}

	state, _ := svc.GetGameState(ctx, manual.ID)
	if state.Frame != 0 {
		t.Errorf("Expected the manual session untouched, got frame %d", state.Frame)
	}
}

func TestGameService_TurnHistory(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	info := createSession(t, svc, "")

	for i := 0; i < 3; i++ {
		if _, err := svc.Launch(ctx, info.ID, service.LaunchOptions{Power: 50, Settle: true}); err != nil {
			t.Fatalf("Failed to launch: %v", err)
		}
	}

	tests := []struct {
		name          string
		opts          service.HistoryOptions
		expectedLen   int
		expectedNext  bool
		expectedPrev  bool
		expectedPages int
	}{
		{"defaults", service.HistoryOptions{}, 3, false, false, 1},
		{"first page", service.HistoryOptions{Page: 1, Limit: 2}, 2, true, false, 2},
		{"second page", service.HistoryOptions{Page: 2, Limit: 2}, 1, false, true, 2},
		{"past the end", service.HistoryOptions{Page: 5, Limit: 2, Order: "asc"}, 0, false, true, 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp, err := svc.GetTurnHistory(ctx, info.ID, test.opts)
			if err != nil {
				t.Fatalf("Failed to get history: %v", err)
			}
			if resp.TotalTurns != 3 {
				t.Errorf("Expected 3 turns total, got %d", resp.TotalTurns)
			}
			if len(resp.Turns) != test.expectedLen {
				t.Errorf("Expected %d turns, got %d", test.expectedLen, len(resp.Turns))
			}
			if resp.HasNext != test.expectedNext || resp.HasPrevious != test.expectedPrev {
				t.Errorf("Expected next=%v prev=%v, got next=%v prev=%v",
					test.expectedNext, test.expectedPrev, resp.HasNext, resp.HasPrevious)
			}
			if resp.TotalPages != test.expectedPages {
				t.Errorf("Expected %d pages, got %d", test.expectedPages, resp.TotalPages)
			}
			for _, turn := range resp.Turns {
				if turn.Outcome != engine.TurnDud {
					t.Errorf("Expected dud turns, got %s", turn.Outcome)
				}
			}
		})
	}

	desc, _ := svc.GetTurnHistory(ctx, info.ID, service.HistoryOptions{Order: "desc"})
	asc, _ := svc.GetTurnHistory(ctx, info.ID, service.HistoryOptions{Order: "asc"})
	if desc.Turns[0].Timestamp < asc.Turns[0].Timestamp {
		t.Error("Expected descending order to start with the newest turn")
	}
}

func TestGameService_Configs(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	configs, err := svc.ListConfigs(ctx)
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}
	if len(configs) != 2 || configs[0].ConfigID != "classic" {
		t.Errorf("Expected classic and solo, got %d configs", len(configs))
	}

	custom := engine.DefaultConfig()
	custom.Name = "Custom"
	if err := svc.SaveConfig(ctx, "custom", custom); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	loaded, err := svc.LoadConfig(ctx, "custom")
	if err != nil || loaded.Name != "Custom" {
		t.Errorf("Expected saved config to load, got %v, %v", loaded, err)
	}
}
