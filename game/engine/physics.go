package engine

import "math"

// Physics applies the per-frame rules to balls on a board. It holds no state
// of its own beyond the board geometry and the tuning constants, so every
// method is a pure transformation of the balls and holes passed in.
type Physics struct {
	Board  *Board
	Config PhysicsConfig
}

// NewPhysics creates a physics pass over board with the given tuning
func NewPhysics(board *Board, config PhysicsConfig) *Physics {
	return &Physics{Board: board, Config: config}
}

// Integrate applies gravity (suspended while in a hole), moves the ball and
// updates the low-speed accumulator.
func (p *Physics) Integrate(ball *Ball, dt float64) {
	if !ball.Active {
		return
	}
	if !ball.InHole {
		ball.Velocity.Y += p.Config.Gravity * dt
	}
	ball.Position = ball.Position.Plus(ball.Velocity.Times(dt))

	if ball.Speed() < p.Config.LowSpeedThreshold {
		ball.TimeAtLowSpeed += dt
	} else {
		ball.TimeAtLowSpeed = 0
	}
}

// CollideBoard clamps the ball against the walls of the region it is in and
// returns that region.
func (p *Physics) CollideBoard(ball *Ball) Region {
	region := p.Board.ClassifyRegion(ball.Position)
	switch region {
	case RegionChannel:
		p.collideChannel(ball)
	case RegionArc:
		p.collideArc(ball)
	case RegionBody:
		p.collideBody(ball)
	}
	return region
}

func (p *Physics) collideChannel(ball *Ball) {
	ch := p.Board.LaunchChannel
	r := ball.Radius
	rest := p.Config.BounceRestitution

	if ball.Position.X-r < ch.Left() {
		ball.Position.X = ch.Left() + r
		ball.Velocity.X = math.Abs(ball.Velocity.X) * rest
	}
	if ball.Position.X+r > ch.Right() {
		ball.Position.X = ch.Right() - r
		ball.Velocity.X = -math.Abs(ball.Velocity.X) * rest
	}
	if ball.Position.Y+r > ch.Bottom() {
		ball.Position.Y = ch.Bottom() - r
		ball.Velocity.X *= p.Config.ChannelFloorFriction
		ball.Velocity.Y = -math.Abs(ball.Velocity.Y) * p.Config.ChannelFloorBounce
	}
}

func (p *Physics) collideArc(ball *Ball) {
	b := p.Board
	offset := ball.Position.Minus(b.ArcCenter)
	dist := offset.Magnitude()
	limit := b.ArcRadius - ball.Radius

	if dist > limit && dist > 0 {
		outward := offset.Times(1 / dist)
		ball.Position = b.ArcCenter.Plus(outward.Times(limit))

		// Only reflect when heading out through the arc.
		inward := outward.Times(-1)
		if vn := ball.Velocity.Dot(inward); vn < 0 {
			ball.Velocity = ball.Velocity.Minus(inward.Times(2 * vn)).Times(p.Config.BounceRestitution)
		}
	}

	if ball.Position.Y > b.ChannelWallTopY && ball.Position.X < b.ChannelWallX {
		p.collideSeparator(ball)
	}
}

func (p *Physics) collideBody(ball *Ball) {
	ma := p.Board.MainArea
	r := ball.Radius
	rest := p.Config.BounceRestitution

	if ball.Position.X-r < ma.Left() {
		ball.Position.X = ma.Left() + r
		ball.Velocity.X = math.Abs(ball.Velocity.X) * rest
	}
	p.collideSeparator(ball)
	if ball.Position.Y+r > ma.Bottom() {
		ball.Position.Y = ma.Bottom() - r
		ball.Velocity.X *= p.Config.FloorFriction
		ball.Velocity.Y = -math.Abs(ball.Velocity.Y) * p.Config.FloorBounce
	}
}

// collideSeparator keeps a ball that is left of the channel wall on its side.
func (p *Physics) collideSeparator(ball *Ball) {
	wallX := p.Board.ChannelWallX
	if ball.Position.X < wallX && ball.Position.X+ball.Radius > wallX {
		ball.Position.X = wallX - ball.Radius
		ball.Velocity.X = -math.Abs(ball.Velocity.X) * p.Config.BounceRestitution
	}
}

// CollidePeg pushes the ball out of the peg and, if it was moving into the
// peg, reflects its velocity about the contact normal. Returns true on contact.
func (p *Physics) CollidePeg(ball *Ball, peg *Peg) bool {
	offset := ball.Position.Minus(peg.Position)
	dist := offset.Magnitude()
	minDist := ball.Radius + peg.Radius
	if dist >= minDist || dist == 0 {
		return false
	}

	normal := offset.Times(1 / dist)
	ball.Position = ball.Position.Plus(normal.Times(minDist - dist))

	if dot := ball.Velocity.Dot(normal); dot < 0 {
		ball.Velocity = ball.Velocity.Minus(normal.Times(2 * dot)).Times(p.Config.BounceRestitution)
	}
	return true
}

// CollidePegs runs CollidePeg against every peg on the board
func (p *Physics) CollidePegs(ball *Ball) int {
	hits := 0
	for i := range p.Board.Pegs {
		if p.CollidePeg(ball, &p.Board.Pegs[i]) {
			hits++
		}
	}
	return hits
}

// CollideBalls resolves an overlap between two equal-mass balls. Both lose
// their in-hole status on contact. Returns true on contact.
func (p *Physics) CollideBalls(a, b *Ball) bool {
	offset := a.Position.Minus(b.Position)
	dist := offset.Magnitude()
	minDist := a.Radius + b.Radius
	if dist == 0 || dist >= minDist {
		return false
	}

	normal := offset.Times(1 / dist)
	half := (minDist - dist) / 2
	a.Position = a.Position.Plus(normal.Times(half))
	b.Position = b.Position.Minus(normal.Times(half))

	impulse := a.Velocity.Minus(b.Velocity).Dot(normal)
	a.Velocity = a.Velocity.Minus(normal.Times(impulse)).Times(p.Config.BallRestitution)
	b.Velocity = b.Velocity.Plus(normal.Times(impulse)).Times(p.Config.BallRestitution)

	a.InHole = false
	b.InHole = false
	return true
}

// CaptureRadius is the distance from a hole center at which attraction starts
func (p *Physics) CaptureRadius(hole *Hole) float64 {
	return hole.Radius * p.Config.HoleCaptureMultiple
}

// HoleContaining returns the nearest hole whose capture radius contains pos
func (p *Physics) HoleContaining(holes []Hole, pos Vec2) *Hole {
	var best *Hole
	bestDist := math.Inf(1)
	for i := range holes {
		h := &holes[i]
		d := pos.Distance(h.Position)
		if d < p.CaptureRadius(h) && d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// ApplyHoleTrap pulls a ball toward a hole. Fast balls that were not already
// captured skim past; a hole held by another ball rejects the capture.
func (p *Physics) ApplyHoleTrap(ball *Ball, hole *Hole) {
	c := p.Config
	if hole.OccupantID != 0 && hole.OccupantID != ball.ID {
		return
	}

	speed := ball.Speed()
	if speed > c.HoleEscapeSpeed && !ball.InHole {
		return
	}

	toCenter := hole.Position.Minus(ball.Position)
	dist := toCenter.Magnitude()
	pull := toCenter.Normalize()

	switch {
	case dist < hole.Radius:
		ball.InHole = true
		ball.Velocity = ball.Velocity.Plus(pull.Times(c.HoleInsidePull * c.ForceStep)).Times(c.HoleInsideFriction)

		if speed < c.HoleSnapSpeed || dist < hole.Radius*c.HoleSnapFraction {
			ball.Velocity = Vec2{}
			ball.Position = hole.Position
			if hole.OccupantID == 0 {
				hole.OccupantID = ball.ID
			}
		}

	case dist < p.CaptureRadius(hole):
		// Slower balls get a stronger pull.
		speedFactor := math.Max(0, 1-speed/c.HoleEscapeSpeed)
		strength := c.HoleOutsidePullBase + c.HoleOutsidePullBonus*speedFactor
		ball.Velocity = ball.Velocity.Plus(pull.Times(strength * c.ForceStep)).Times(c.HoleOutsideFriction)

	default:
		ball.InHole = false
		if hole.OccupantID == ball.ID {
			hole.OccupantID = 0
		}
	}
}

// ReleaseBall clears the ball's in-hole flag and any occupancy it holds
func (p *Physics) ReleaseBall(ball *Ball, holes []Hole) {
	ball.InHole = false
	for i := range holes {
		if holes[i].OccupantID == ball.ID {
			holes[i].OccupantID = 0
		}
	}
}

// IsStopped reports whether the ball is at rest. Balls in a hole use a looser
// speed threshold and a shorter dwell.
func (p *Physics) IsStopped(ball *Ball) bool {
	speed := ball.Speed()
	if ball.InHole {
		return speed < p.Config.InHoleRestSpeed && ball.TimeAtLowSpeed > p.Config.InHoleRestTime
	}
	return speed < p.Config.LowSpeedThreshold && ball.TimeAtLowSpeed > p.Config.StoppedTime
}
