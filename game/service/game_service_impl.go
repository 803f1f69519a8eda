package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/wricardo/mcp-training/bagatelle/game/engine"
	"github.com/wricardo/mcp-training/bagatelle/game/results"
)

// FrameDT is the simulated time of one requested frame
const FrameDT = 1.0 / 60

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	results  results.Store // nil disables archiving
}

// NewGameService creates a new game service instance. store may be nil.
func NewGameService(sessions SessionManager, configs ConfigManager, store results.Store) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		results:  store,
	}
}

// getConfigID returns the config_id for a display name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

// getSession looks a session up and marks it as accessed
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, err
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Realtime:       sess.Realtime,
		GameState:      sess.Engine.GetState(),
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found. Available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found. Use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	sess.Lock()
	defer sess.Unlock()

	sess.ConfigID = configName
	if sess.ConfigID == "" {
		sess.ConfigID = s.getConfigID(config.Name)
	}

	log.Printf("Session %s created with config %s", sess.ID, sess.ConfigID)
	return sessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		sess.Lock()
		result = append(result, sessionInfo(sess))
		sess.Unlock()
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return err
	}
	return nil
}

// Launch fires the waiting ball. A launch while a ball is in play is
// reported as unsuccessful, not as an error.
func (s *gameServiceImpl) Launch(ctx context.Context, sessionID string, opts LaunchOptions) (*LaunchResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Engine.IsGameOver() {
		return nil, ErrGameOver
	}

	power := launchPower(sess.Config, opts)
	player := sess.Engine.CurrentPlayer()

	if !sess.Engine.Launch(power) {
		state := sess.Engine.GetState()
		return &LaunchResult{
			Success:   false,
			Power:     power,
			GameState: state,
			Message:   "A ball is already in play",
		}, nil
	}

	return s.launched(ctx, sess, player, power, opts.Settle), nil
}

// launched reports a launch that the engine accepted and optionally runs the
// turn to completion. Caller holds the session lock.
func (s *gameServiceImpl) launched(ctx context.Context, sess *Session, player engine.Player, power float64, settle bool) *LaunchResult {
	events := []GameEvent{{
		Type:      EventLaunch,
		Message:   fmt.Sprintf("%s launched at %.0f power", player.Name, power),
		Timestamp: time.Now(),
		PlayerID:  player.ID,
	}}

	result := &LaunchResult{
		Success: true,
		Power:   power,
	}

	if settle {
		historyLen := len(sess.Engine.GetTurnHistory())
		result.Frames = sess.Engine.RunUntilSettled(FrameDT, engine.MaxStepFrames)
		if turn := newTurn(sess.Engine, historyLen); turn != nil {
			result.Turn = turn
			events = append(events, turnEvents(sess.Engine, turn)...)
		}
		s.archiveIfFinished(ctx, sess)
	}

	result.GameState = sess.Engine.GetState()
	result.Message = result.GameState.Message
	result.Events = events
	return result
}

// StartCharge starts charging the launcher. The charge grows with simulated
// time, from Step calls or the realtime loop, until ReleaseCharge.
func (s *gameServiceImpl) StartCharge(ctx context.Context, sessionID string) (*LaunchResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Engine.IsGameOver() {
		return nil, ErrGameOver
	}

	if !sess.Engine.StartCharging() {
		return &LaunchResult{
			Success:   false,
			GameState: sess.Engine.GetState(),
			Message:   "A ball is already in play",
		}, nil
	}

	player := sess.Engine.CurrentPlayer()
	msg := fmt.Sprintf("%s is charging the launcher", player.Name)
	return &LaunchResult{
		Success:   true,
		GameState: sess.Engine.GetState(),
		Message:   msg,
		Events: []GameEvent{{
			Type:      EventCharge,
			Message:   msg,
			Timestamp: time.Now(),
			PlayerID:  player.ID,
		}},
	}, nil
}

// ReleaseCharge launches with whatever the launcher has built up
func (s *gameServiceImpl) ReleaseCharge(ctx context.Context, sessionID string, settle bool) (*LaunchResult, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Engine.IsGameOver() {
		return nil, ErrGameOver
	}

	launcher := sess.Engine.GetBoard().Launcher
	power := launcher.ChargePower() * sess.Config.Physics.MaxLaunchPower
	player := sess.Engine.CurrentPlayer()

	if !sess.Engine.ReleaseCharge() {
		return &LaunchResult{
			Success:   false,
			GameState: sess.Engine.GetState(),
			Message:   "The launcher is not charging",
		}, nil
	}
	return s.launched(ctx, sess, player, power, settle), nil
}

// launchPower converts launch options into a launch speed
func launchPower(config *engine.GameConfig, opts LaunchOptions) float64 {
	if opts.ChargeSeconds > 0 && config.Physics.MaxChargeTime > 0 {
		fraction := math.Min(opts.ChargeSeconds/config.Physics.MaxChargeTime, 1)
		return fraction * config.Physics.MaxLaunchPower
	}
	return opts.Power
}

// Step advances the simulation by a number of frames, stopping early only
// when the game ends
func (s *gameServiceImpl) Step(ctx context.Context, sessionID string, frames int) (*StepResult, error) {
	if frames <= 0 || frames > engine.MaxStepFrames {
		return nil, fmt.Errorf("%w: %d (must be between 1 and %d)", ErrInvalidFrames, frames, engine.MaxStepFrames)
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	historyLen := len(sess.Engine.GetTurnHistory())
	run := 0
	for run < frames && !sess.Engine.IsGameOver() {
		sess.Engine.Update(FrameDT)
		run++
	}

	result := s.finishStep(ctx, sess, historyLen, run)
	if result.StoppedReason == "" && run == frames {
		result.StoppedReason = StopFrameLimit
	}
	return result, nil
}

// Settle runs the current turn until it ends or maxFrames pass. A
// non-positive maxFrames uses the largest allowed step.
func (s *gameServiceImpl) Settle(ctx context.Context, sessionID string, maxFrames int) (*StepResult, error) {
	if maxFrames <= 0 {
		maxFrames = engine.MaxStepFrames
	}
	if maxFrames > engine.MaxStepFrames {
		return nil, fmt.Errorf("%w: %d (must be at most %d)", ErrInvalidFrames, maxFrames, engine.MaxStepFrames)
	}

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if sess.Engine.GetPhase() != engine.BallInPlay {
		s.archiveIfFinished(ctx, sess)
		result := &StepResult{
			SessionID:     sess.ID,
			GameState:     sess.Engine.GetState(),
			StoppedReason: StopIdle,
		}
		if sess.Engine.IsGameOver() {
			result.StoppedReason = StopGameOver
		}
		return result, nil
	}

	historyLen := len(sess.Engine.GetTurnHistory())
	run := sess.Engine.RunUntilSettled(FrameDT, maxFrames)

	result := s.finishStep(ctx, sess, historyLen, run)
	if result.StoppedReason == "" {
		result.StoppedReason = StopFrameLimit
	}
	return result, nil
}

// finishStep builds a StepResult after the engine has been advanced and
// archives the game if it just ended. Caller holds the session lock.
func (s *gameServiceImpl) finishStep(ctx context.Context, sess *Session, historyLen, frames int) *StepResult {
	result := &StepResult{
		SessionID: sess.ID,
		FramesRun: frames,
	}

	if turn := newTurn(sess.Engine, historyLen); turn != nil {
		result.TurnEnded = true
		result.Turn = turn
		result.Events = turnEvents(sess.Engine, turn)
		result.StoppedReason = StopSettled
		if turn.Outcome == engine.TurnDud {
			result.StoppedReason = StopDud
		}
	}
	if sess.Engine.IsGameOver() {
		result.StoppedReason = StopGameOver
	}

	s.archiveIfFinished(ctx, sess)
	result.GameState = sess.Engine.GetState()
	return result
}

// newTurn returns the most recent turn record if the history grew past historyLen
func newTurn(e *engine.GameEngine, historyLen int) *engine.TurnRecord {
	if len(e.GetTurnHistory()) <= historyLen {
		return nil
	}
	return e.GetLastTurn()
}

// turnEvents describes a finished turn, plus game over when it was the last one
func turnEvents(e *engine.GameEngine, turn *engine.TurnRecord) []GameEvent {
	now := time.Now()
	events := []GameEvent{}

	if turn.Outcome == engine.TurnDud {
		events = append(events, GameEvent{
			Type:      EventDud,
			Message:   fmt.Sprintf("Turn %d was a dud; the ball is returned", turn.TurnNumber),
			Timestamp: now,
			PlayerID:  turn.PlayerID,
		})
	} else {
		msg := fmt.Sprintf("Turn %d settled", turn.TurnNumber)
		if turn.HoleID != 0 {
			msg = fmt.Sprintf("Turn %d settled in hole %d for %d points", turn.TurnNumber, turn.HoleID, turn.Points)
		}
		events = append(events, GameEvent{
			Type:      EventTurnEnd,
			Message:   msg,
			Timestamp: now,
			PlayerID:  turn.PlayerID,
			Points:    turn.Points,
		})
	}

	if e.IsGameOver() {
		events = append(events, GameEvent{
			Type:      EventGameOver,
			Message:   e.GetState().Message,
			Timestamp: now,
		})
	}
	return events
}

// archiveIfFinished writes one result per finished game. A failed write is
// retried on the next call. Caller holds the session lock.
func (s *gameServiceImpl) archiveIfFinished(ctx context.Context, sess *Session) {
	if s.results == nil || !sess.Engine.IsGameOver() {
		return
	}

	state := sess.Engine.GetState()
	if sess.ArchivedGame == state.Game {
		return
	}

	result := results.NewResult(sess.ID, sess.ConfigID, state, sess.Engine.GetTurnHistory())
	if err := s.results.Save(ctx, result); err != nil {
		log.Printf("Warning: Failed to archive result for session %s: %v", sess.ID, err)
		return
	}
	sess.ArchivedGame = state.Game
	log.Printf("Session %s game %d archived as result %s", sess.ID, state.Game, result.ID)
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	return sess.Engine.Reset(), nil
}

// SetRealtime switches wall-clock ticking on or off for a session
func (s *gameServiceImpl) SetRealtime(ctx context.Context, sessionID string, enabled bool) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	sess.Realtime = enabled
	return sessionInfo(sess), nil
}

// AdvanceRealtime moves every realtime session forward by dt seconds and
// returns the sessions whose board changed
func (s *gameServiceImpl) AdvanceRealtime(ctx context.Context, dt float64) ([]*StepResult, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("invalid realtime delta: %v", dt)
	}

	var changed []*StepResult
	for _, sess := range s.sessions.List() {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		if result := s.advanceSession(ctx, sess, dt); result != nil {
			changed = append(changed, result)
		}
	}
	return changed, nil
}

func (s *gameServiceImpl) advanceSession(ctx context.Context, sess *Session, dt float64) *StepResult {
	sess.Lock()
	defer sess.Unlock()

	if !sess.Realtime || sess.Engine.IsGameOver() {
		return nil
	}

	before := sess.Engine.GetState()
	if before.State != engine.BallInPlay && !before.Launcher.Charging {
		return nil
	}

	historyLen := len(sess.Engine.GetTurnHistory())
	sess.Engine.Update(dt)

	frames := int(sess.Engine.GetState().Frame - before.Frame)
	return s.finishStep(ctx, sess, historyLen, frames)
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return sess.Engine.GetState(), nil
}

// GetTurnHistory returns paginated turn history across every game the session has played
func (s *gameServiceImpl) GetTurnHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	history := sess.Engine.GetTurnHistory()
	sess.Unlock()

	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var turns []engine.TurnRecord
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			turns = append(turns, history[i])
		}
	} else if start < total {
		turns = history[start:end]
	}

	if turns == nil {
		turns = []engine.TurnRecord{}
	}

	return &HistoryResponse{
		Turns:       turns,
		TotalTurns:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// ListResults returns recently finished games, newest first
func (s *gameServiceImpl) ListResults(ctx context.Context, limit int) ([]*results.Result, error) {
	if s.results == nil {
		return []*results.Result{}, nil
	}
	return s.results.List(ctx, limit)
}

// GetResult returns one archived game
func (s *gameServiceImpl) GetResult(ctx context.Context, resultID string) (*results.Result, error) {
	if s.results == nil {
		return nil, results.ErrResultNotFound
	}
	return s.results.Get(ctx, resultID)
}
