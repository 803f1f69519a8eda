package engine

import (
	"fmt"
	"math"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Simulation
	Update(dt float64)
	Launch(power float64) bool
	StartCharging() bool
	ReleaseCharge() bool

	// Game state
	GetState() *GameState
	Reset() *GameState
	IsGameOver() bool
	GetPhase() State
	Winner() (Player, bool)
	RecomputeScores()

	// Configuration and geometry
	GetConfig() *GameConfig
	GetBoard() *Board

	// History
	GetTurnHistory() []TurnRecord
	GetLastTurn() *TurnRecord
}

// GameEngine is the turn controller. It owns every ball, the board and the
// players, and is mutated only from Update, Launch and the charge methods.
// It is not safe for concurrent use.
type GameEngine struct {
	config  *GameConfig
	board   *Board
	physics *Physics

	state           State
	players         []Player
	current         int
	balls           []*Ball
	currentBall     *Ball
	enteredPlayArea bool
	nextBallID      int

	message   string
	frame     int64
	elapsed   float64
	game      int
	turn      int
	turnStart int64
	turnTime  float64
	turnPower float64
	history   []TurnRecord
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{config: config}
	e.init()
	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the classic configuration
func NewEngineWithDefaults() *GameEngine {
	e := &GameEngine{config: DefaultConfig()}
	e.init()
	return e
}

func (e *GameEngine) init() {
	e.board = NewBoard(e.config.Board)
	e.board.Launcher.MaxChargeTime = e.config.Physics.MaxChargeTime
	e.physics = NewPhysics(e.board, e.config.Physics)

	e.players = make([]Player, e.config.Players)
	for i := range e.players {
		name := fmt.Sprintf("Player %d", i+1)
		if i < len(e.config.PlayerNames) && e.config.PlayerNames[i] != "" {
			name = e.config.PlayerNames[i]
		}
		e.players[i] = Player{
			ID:             i + 1,
			Name:           name,
			Color:          PlayerColors[i%len(PlayerColors)],
			BallsRemaining: e.config.BallsPerPlayer,
		}
	}

	e.state = WaitingToLaunch
	e.current = 0
	e.balls = nil
	e.enteredPlayArea = false
	e.nextBallID = 1
	e.frame = 0
	e.elapsed = 0
	e.turn = 1
	e.game++
	e.message = e.config.Messages.Welcome
	e.prepareBall()
}

// Update advances the simulation by dt seconds. Large steps are split so no
// single physics step exceeds MaxStep; non-positive dt is ignored and dt
// beyond MaxUpdateDelta is clamped.
func (e *GameEngine) Update(dt float64) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) || e.state == GameOver {
		return
	}
	dt = math.Min(dt, MaxUpdateDelta)

	steps := int(math.Ceil(dt / e.config.Physics.MaxStep))
	if steps < 1 {
		steps = 1
	}
	step := dt / float64(steps)
	for i := 0; i < steps && e.state != GameOver; i++ {
		e.step(step)
	}
}

func (e *GameEngine) step(dt float64) {
	e.frame++
	e.elapsed += dt
	e.board.Launcher.UpdateCharge(dt)

	p := e.physics
	for _, ball := range e.balls {
		p.Integrate(ball, dt)
		if p.CollideBoard(ball) == RegionOutOfBounds {
			continue
		}
		p.CollidePegs(ball)
	}
	for i := 0; i < len(e.balls); i++ {
		for j := i + 1; j < len(e.balls); j++ {
			p.CollideBalls(e.balls[i], e.balls[j])
		}
	}

	e.reconcileOccupancy()

	if e.state == BallInPlay {
		e.evaluateTurn()
		return
	}
	// Settled balls stay in their holes while the next player lines up.
	for _, ball := range e.balls {
		e.holdInHole(ball)
	}
}

// reconcileOccupancy drops occupants that drifted, woke up or were knocked out
func (e *GameEngine) reconcileOccupancy() {
	c := e.config.Physics
	for i := range e.board.Holes {
		hole := &e.board.Holes[i]
		if hole.OccupantID == 0 {
			continue
		}
		ball := e.ballByID(hole.OccupantID)
		if ball == nil ||
			!ball.InHole ||
			ball.Position.Distance(hole.Position) > c.OccupantTolerance ||
			ball.Speed() > c.OccupantWakeSpeed {
			hole.OccupantID = 0
		}
	}
}

func (e *GameEngine) evaluateTurn() {
	p := e.physics
	ball := e.currentBall

	if !e.enteredPlayArea {
		region := e.board.ClassifyRegion(ball.Position)
		switch {
		case e.board.InPlayArea(ball.Position), region == RegionOutOfBounds:
			e.enteredPlayArea = true
		case region == RegionChannel && p.IsStopped(ball):
			e.returnDud()
			return
		case p.IsStopped(ball):
			// At rest past the channel without clearing the inset, e.g. on
			// the floor against the separator wall.
			e.enteredPlayArea = true
		}
	}

	allStopped := e.enteredPlayArea
	for _, b := range e.balls {
		if b == ball && !e.enteredPlayArea {
			continue
		}
		if e.board.ClassifyRegion(b.Position) == RegionOutOfBounds {
			continue
		}
		if !p.IsStopped(b) {
			allStopped = false
		}
		e.holdInHole(b)
	}

	if allStopped {
		e.RecomputeScores()
		e.endTurn(TurnSettled)
	}
}

// holdInHole runs the hole attraction pass for one ball
func (e *GameEngine) holdInHole(ball *Ball) {
	p := e.physics
	if e.board.ClassifyRegion(ball.Position) == RegionOutOfBounds {
		return
	}
	if hole := p.HoleContaining(e.board.Holes, ball.Position); hole != nil {
		p.ApplyHoleTrap(ball, hole)
	} else {
		p.ReleaseBall(ball, e.board.Holes)
	}
}

// returnDud takes a ball that never left the channel off the board and hands it back
func (e *GameEngine) returnDud() {
	ball := e.currentBall
	e.removeBall(ball.ID)
	e.physics.ReleaseBall(ball, e.board.Holes)
	ball.ResetTo(e.board.BallStart)

	player := &e.players[e.current]
	player.ReturnBall(e.config.BallsPerPlayer)

	e.recordTurn(TurnDud)
	e.state = WaitingToLaunch
	e.message = fmt.Sprintf(e.config.Messages.Dud, player.Name)
}

func (e *GameEngine) endTurn(outcome TurnOutcome) {
	e.recordTurn(outcome)
	e.turn++

	if !e.anyBallsRemaining() {
		e.state = GameOver
		e.currentBall = nil
		e.board.Launcher.Reset()
		e.RecomputeScores()
		e.message = e.gameOverMessage()
		return
	}

	e.nextPlayer()
	e.prepareBall()
	e.state = WaitingToLaunch
	player := e.players[e.current]
	e.message = fmt.Sprintf(e.config.Messages.NextTurn, player.Name, player.BallsRemaining)
}

func (e *GameEngine) gameOverMessage() string {
	if winner, ok := e.Winner(); ok {
		return fmt.Sprintf(e.config.Messages.Winner, winner.Name, winner.Score)
	}
	if len(e.players) > 0 {
		return fmt.Sprintf(e.config.Messages.Tie, TopScore(e.players))
	}
	return e.config.Messages.GameOver
}

// nextPlayer advances round robin, skipping players with no balls left
func (e *GameEngine) nextPlayer() {
	for i := 1; i <= len(e.players); i++ {
		idx := (e.current + i) % len(e.players)
		if e.players[idx].HasBalls() {
			e.current = idx
			return
		}
	}
}

func (e *GameEngine) anyBallsRemaining() bool {
	for _, p := range e.players {
		if p.HasBalls() {
			return true
		}
	}
	return false
}

// prepareBall puts a fresh ball for the current player at the bottom of the channel
func (e *GameEngine) prepareBall() {
	player := e.players[e.current]
	e.currentBall = &Ball{
		ID:       e.nextBallID,
		Owner:    player.ID,
		Color:    player.Color,
		Position: e.board.BallStart,
		Radius:   e.board.BallRadius,
	}
	e.nextBallID++
}

// Launch fires the waiting ball with the given power. It is ignored unless
// the game is waiting for a launch.
func (e *GameEngine) Launch(power float64) bool {
	if e.state != WaitingToLaunch || e.currentBall == nil {
		return false
	}
	if math.IsNaN(power) {
		return false
	}
	player := &e.players[e.current]
	if !player.UseBall() {
		return false
	}

	power = math.Max(0, math.Min(power, e.config.Physics.MaxLaunchPower))
	e.currentBall.Launch(power)
	e.balls = append(e.balls, e.currentBall)
	e.board.Launcher.Reset()

	e.state = BallInPlay
	e.enteredPlayArea = false
	e.turnStart = e.frame
	e.turnTime = e.elapsed
	e.turnPower = power
	e.message = fmt.Sprintf(e.config.Messages.Launched, player.Name, power)
	return true
}

// StartCharging begins charging the launcher
func (e *GameEngine) StartCharging() bool {
	if e.state != WaitingToLaunch {
		return false
	}
	e.board.Launcher.StartCharging()
	return true
}

// ReleaseCharge launches with the power accumulated since StartCharging
func (e *GameEngine) ReleaseCharge() bool {
	if e.state != WaitingToLaunch || !e.board.Launcher.Charging {
		return false
	}
	return e.Launch(e.board.Launcher.ReleaseCharge(e.config.Physics.MaxLaunchPower))
}

// RecomputeScores rebuilds every score from the balls resting in holes
func (e *GameEngine) RecomputeScores() {
	for i := range e.players {
		e.players[i].Score = 0
	}
	for _, ball := range e.balls {
		hole := e.holeOccupiedBy(ball.ID)
		if hole == nil || !ball.InHole || !e.physics.IsStopped(ball) {
			continue
		}
		if player := e.playerByID(ball.Owner); player != nil {
			player.Score += hole.Points
		}
	}
}

// Winner returns the leading player, or false when the top score is shared
func (e *GameEngine) Winner() (Player, bool) {
	if len(e.players) == 0 {
		return Player{}, false
	}
	best := 0
	tied := false
	for i := 1; i < len(e.players); i++ {
		switch {
		case e.players[i].Score > e.players[best].Score:
			best, tied = i, false
		case e.players[i].Score == e.players[best].Score:
			tied = true
		}
	}
	if tied {
		return Player{}, false
	}
	return e.players[best], true
}

func (e *GameEngine) recordTurn(outcome TurnOutcome) {
	record := TurnRecord{
		Game:       e.game,
		TurnNumber: e.turn,
		PlayerID:   e.players[e.current].ID,
		Power:      e.turnPower,
		Outcome:    outcome,
		Frames:     e.frame - e.turnStart,
		Duration:   e.elapsed - e.turnTime,
		Timestamp:  time.Now().Unix(),
	}
	if outcome == TurnSettled && e.currentBall != nil {
		if hole := e.holeOccupiedBy(e.currentBall.ID); hole != nil {
			record.HoleID = hole.ID
			record.Points = hole.Points
		}
	}
	record.Scores = make([]int, len(e.players))
	for i, p := range e.players {
		record.Scores[i] = p.Score
	}
	e.history = append(e.history, record)
}

func (e *GameEngine) removeBall(id int) {
	for i, b := range e.balls {
		if b.ID == id {
			e.balls = append(e.balls[:i], e.balls[i+1:]...)
			return
		}
	}
}

func (e *GameEngine) ballByID(id int) *Ball {
	for _, b := range e.balls {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (e *GameEngine) playerByID(id int) *Player {
	for i := range e.players {
		if e.players[i].ID == id {
			return &e.players[i]
		}
	}
	return nil
}

func (e *GameEngine) holeOccupiedBy(ballID int) *Hole {
	for i := range e.board.Holes {
		if e.board.Holes[i].OccupantID == ballID {
			return &e.board.Holes[i]
		}
	}
	return nil
}

// GetState returns a snapshot of the game. The snapshot shares nothing with the engine.
func (e *GameEngine) GetState() *GameState {
	state := &GameState{
		ConfigName:      e.config.Name,
		State:           e.state,
		CurrentPlayer:   e.current,
		Players:         append([]Player(nil), e.players...),
		Balls:           make([]Ball, 0, len(e.balls)),
		Holes:           append([]Hole(nil), e.board.Holes...),
		Launcher:        e.board.Launcher,
		EnteredPlayArea: e.enteredPlayArea,
		Message:         e.message,
		Frame:           e.frame,
		Elapsed:         e.elapsed,
		Game:            e.game,
		TurnNumber:      e.turn,
	}
	for _, b := range e.balls {
		state.Balls = append(state.Balls, *b)
	}
	if e.currentBall != nil && e.state == WaitingToLaunch {
		waiting := *e.currentBall
		state.WaitingBall = &waiting
	}
	if e.state == GameOver {
		if winner, ok := e.Winner(); ok {
			state.WinnerID = winner.ID
		} else {
			state.Tie = true
		}
	}
	if last := e.GetLastTurn(); last != nil {
		lastCopy := *last
		state.LastTurn = &lastCopy
	}
	return state
}

// Reset restarts the game from its configuration. Turn history is kept.
func (e *GameEngine) Reset() *GameState {
	e.init()
	return e.GetState()
}

// IsGameOver returns whether the game has ended
func (e *GameEngine) IsGameOver() bool {
	return e.state == GameOver
}

// GetPhase returns the turn controller state
func (e *GameEngine) GetPhase() State {
	return e.state
}

// CurrentPlayer returns the player whose turn it is
func (e *GameEngine) CurrentPlayer() Player {
	return e.players[e.current]
}

// Players returns a copy of the players
func (e *GameEngine) Players() []Player {
	return append([]Player(nil), e.players...)
}

// BallsOnBoard returns copies of every launched ball still on the board
func (e *GameEngine) BallsOnBoard() []Ball {
	out := make([]Ball, 0, len(e.balls))
	for _, b := range e.balls {
		out = append(out, *b)
	}
	return out
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// GetBoard returns the board geometry. Callers must treat it as read-only.
func (e *GameEngine) GetBoard() *Board {
	return e.board
}

// GetTurnHistory returns every recorded turn, across resets
func (e *GameEngine) GetTurnHistory() []TurnRecord {
	return append([]TurnRecord(nil), e.history...)
}

// GetLastTurn returns the last recorded turn, or nil if none
func (e *GameEngine) GetLastTurn() *TurnRecord {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// RunUntilSettled steps the engine at dt until the current turn ends, the
// game is over or maxFrames steps have run. Returns the frames stepped.
func (e *GameEngine) RunUntilSettled(dt float64, maxFrames int) int {
	startTurns := len(e.history)
	frames := 0
	for frames < maxFrames && e.state == BallInPlay && len(e.history) == startTurns {
		e.Update(dt)
		frames++
	}
	return frames
}
