package engine

// State is the turn controller state
type State string

const (
	WaitingToLaunch State = "waiting_to_launch"
	BallInPlay      State = "ball_in_play"
	GameOver        State = "game_over"

	// Validation constants
	MinPlayers        = 1
	MaxPlayers        = 4
	MinBallsPerPlayer = 1
	MaxBallsPerPlayer = 20
	MaxStepFrames     = 36000

	// MaxUpdateDelta is the longest span a single Update call simulates
	MaxUpdateDelta = 1.0
)

// Region classifies where a ball sits on the board for boundary collision
type Region int

const (
	RegionChannel Region = iota
	RegionArc
	RegionBody
	RegionOutOfBounds
)

func (r Region) String() string {
	switch r {
	case RegionChannel:
		return "channel"
	case RegionArc:
		return "arc"
	case RegionBody:
		return "body"
	case RegionOutOfBounds:
		return "out_of_bounds"
	}
	return "unknown"
}

// TurnOutcome describes how a turn ended
type TurnOutcome string

const (
	TurnSettled TurnOutcome = "settled"
	TurnDud     TurnOutcome = "dud"
)

// Default player colors, in seat order
var PlayerColors = []string{"#4CAF50", "#2196F3", "#FFC107", "#F44336"}

// Ball is a single ball owned by a player
type Ball struct {
	ID       int     `json:"id"`
	Owner    int     `json:"owner"`
	Color    string  `json:"color"`
	Position Vec2    `json:"position"`
	Velocity Vec2    `json:"velocity"`
	Radius   float64 `json:"radius"`
	Active   bool    `json:"active"`
	InHole   bool    `json:"in_hole"`

	// TimeAtLowSpeed accumulates seconds spent continuously below the low speed threshold.
	TimeAtLowSpeed float64 `json:"time_at_low_speed"`
}

// Speed returns the magnitude of the ball velocity
func (b *Ball) Speed() float64 {
	return b.Velocity.Magnitude()
}

// Launch activates the ball with an upward velocity of the given power
func (b *Ball) Launch(power float64) {
	b.Active = true
	b.InHole = false
	b.TimeAtLowSpeed = 0
	b.Velocity = Vec2{X: 0, Y: -power}
}

// ResetTo puts the ball back at rest, inactive, at the given position
func (b *Ball) ResetTo(pos Vec2) {
	b.Position = pos
	b.Velocity = Vec2{}
	b.Active = false
	b.InHole = false
	b.TimeAtLowSpeed = 0
}

// Peg is a fixed round obstacle
type Peg struct {
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
}

// Hole is a scoring pocket. OccupantID is the ID of the ball credited as
// resting in it, zero when empty.
type Hole struct {
	ID         int     `json:"id"`
	Position   Vec2    `json:"position"`
	Radius     float64 `json:"radius"`
	Points     int     `json:"points"`
	OccupantID int     `json:"occupant_id,omitempty"`
}

// Player is a seat in the game. Score is derived from the board.
type Player struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Color          string `json:"color"`
	Score          int    `json:"score"`
	BallsRemaining int    `json:"balls_remaining"`
}

// UseBall consumes one ball if any remain
func (p *Player) UseBall() bool {
	if p.BallsRemaining <= 0 {
		return false
	}
	p.BallsRemaining--
	return true
}

// ReturnBall gives back a ball that never entered play
func (p *Player) ReturnBall(max int) {
	if p.BallsRemaining < max {
		p.BallsRemaining++
	}
}

func (p *Player) HasBalls() bool {
	return p.BallsRemaining > 0
}

// GameState is a read-only snapshot of a game
type GameState struct {
	ConfigName      string      `json:"config_name"`
	State           State       `json:"state"`
	CurrentPlayer   int         `json:"current_player"`
	Players         []Player    `json:"players"`
	Balls           []Ball      `json:"balls"`
	WaitingBall     *Ball       `json:"waiting_ball,omitempty"`
	Holes           []Hole      `json:"holes"`
	Launcher        Launcher    `json:"launcher"`
	EnteredPlayArea bool        `json:"entered_play_area"`
	Message         string      `json:"message"`
	Frame           int64       `json:"frame"`
	Elapsed         float64     `json:"elapsed"`
	Game            int         `json:"game"`
	TurnNumber      int         `json:"turn_number"`
	WinnerID        int         `json:"winner_id,omitempty"`
	Tie             bool        `json:"tie"`
	LastTurn        *TurnRecord `json:"last_turn,omitempty"`
}

// TurnRecord is one entry in the turn history
type TurnRecord struct {
	Game       int         `json:"game"`
	TurnNumber int         `json:"turn_number"`
	PlayerID   int         `json:"player_id"`
	Power      float64     `json:"power"`
	Outcome    TurnOutcome `json:"outcome"`
	Frames     int64       `json:"frames"`
	Duration   float64     `json:"duration"`
	HoleID     int         `json:"hole_id,omitempty"`
	Points     int         `json:"points"`
	Scores     []int       `json:"scores"`
	Timestamp  int64       `json:"timestamp"`
}
