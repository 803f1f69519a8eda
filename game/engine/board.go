package engine

// Board is the static geometry of the playfield: a semicircular arc on top of
// a rectangular body, with the launch channel on the right behind a separator
// wall. Geometry never changes after NewBoard; only hole occupancy does.
type Board struct {
	Width           float64  `json:"width"`
	Height          float64  `json:"height"`
	MainArea        Rect     `json:"main_area"`
	LaunchChannel   Rect     `json:"launch_channel"`
	ArcCenter       Vec2     `json:"arc_center"`
	ArcRadius       float64  `json:"arc_radius"`
	ChannelWallX    float64  `json:"channel_wall_x"`
	ChannelWallTopY float64  `json:"channel_wall_top_y"`
	BallRadius      float64  `json:"ball_radius"`
	BallStart       Vec2     `json:"ball_start"`
	FallOutMargin   float64  `json:"fall_out_margin"`
	PlayAreaInset   float64  `json:"play_area_inset"`
	Holes           []Hole   `json:"holes"`
	Pegs            []Peg    `json:"pegs"`
	Launcher        Launcher `json:"launcher"`
}

// NewBoard derives the board geometry from its configuration
func NewBoard(cfg BoardConfig) *Board {
	innerWidth := cfg.Width - 2*cfg.Margin
	arcRadius := innerWidth / 2
	arcCenter := Vec2{X: cfg.Width / 2, Y: cfg.TopMargin + arcRadius}

	mainArea := Rect{
		X:      cfg.Margin,
		Y:      arcCenter.Y,
		Width:  innerWidth,
		Height: cfg.Height - arcCenter.Y - cfg.BottomMargin,
	}

	wallX := mainArea.Right() - cfg.ChannelWidth
	wallTopY := arcCenter.Y - cfg.ChannelOpening
	channel := Rect{
		X:      wallX,
		Y:      wallTopY,
		Width:  cfg.ChannelWidth,
		Height: mainArea.Bottom() - wallTopY,
	}

	b := &Board{
		Width:           cfg.Width,
		Height:          cfg.Height,
		MainArea:        mainArea,
		LaunchChannel:   channel,
		ArcCenter:       arcCenter,
		ArcRadius:       arcRadius,
		ChannelWallX:    wallX,
		ChannelWallTopY: wallTopY,
		BallRadius:      cfg.BallRadius,
		BallStart:       Vec2{X: channel.Center().X, Y: mainArea.Bottom() - cfg.BallRadius},
		FallOutMargin:   cfg.FallOutMargin,
		PlayAreaInset:   cfg.PlayAreaInset,
		Launcher:        NewLauncher(Vec2{X: channel.Center().X, Y: mainArea.Bottom() + 10}),
	}

	if len(cfg.Holes) > 0 {
		for i, h := range cfg.Holes {
			b.Holes = append(b.Holes, Hole{ID: i + 1, Position: Vec2{X: h.X, Y: h.Y}, Radius: cfg.HoleRadius, Points: h.Points})
		}
	} else {
		b.Holes = standardHoles(b, cfg.HoleRadius)
	}

	if len(cfg.Pegs) > 0 {
		for _, p := range cfg.Pegs {
			radius := p.Radius
			if radius == 0 {
				radius = cfg.PegRadius
			}
			b.Pegs = append(b.Pegs, Peg{Position: Vec2{X: p.X, Y: p.Y}, Radius: radius})
		}
	} else {
		b.Pegs = standardPegs(b, cfg.PegRadius)
	}

	return b
}

// standardHoles lays out five rows of holes centred on the play column:
// 100, 75 75, 50 50 50, 25 25, 25 10 25.
func standardHoles(b *Board, radius float64) []Hole {
	centerX := (b.MainArea.Left() + b.ChannelWallX) / 2
	startY := b.ArcCenter.Y - 60
	const rowSpacing = 110

	rows := []struct {
		offsets []float64
		points  []int
	}{
		{[]float64{0}, []int{100}},
		{[]float64{-105, 105}, []int{75, 75}},
		{[]float64{-140, 0, 140}, []int{50, 50, 50}},
		{[]float64{-105, 105}, []int{25, 25}},
		{[]float64{-140, 0, 140}, []int{25, 10, 25}},
	}

	var holes []Hole
	for r, row := range rows {
		y := startY + float64(r)*rowSpacing
		for i, dx := range row.offsets {
			holes = append(holes, Hole{
				ID:       len(holes) + 1,
				Position: Vec2{X: centerX + dx, Y: y},
				Radius:   radius,
				Points:   row.points[i],
			})
		}
	}
	return holes
}

// standardPegs places a peg on top of the channel wall, two short rows under
// the arc and a staggered grid through the body.
func standardPegs(b *Board, radius float64) []Peg {
	centerX := (b.MainArea.Left() + b.ChannelWallX) / 2
	peg := func(x, y float64) Peg {
		return Peg{Position: Vec2{X: x, Y: y}, Radius: radius}
	}

	pegs := []Peg{peg(b.ChannelWallX, b.ChannelWallTopY)}

	upperY := b.ArcCenter.Y - 60
	for _, dx := range []float64{-120, -40, 40, 120} {
		pegs = append(pegs, peg(centerX+dx, upperY))
	}

	secondY := b.ArcCenter.Y - 10
	for _, dx := range []float64{-80, 0, 80} {
		pegs = append(pegs, peg(centerX+dx, secondY))
	}

	const (
		gridRows    = 5
		gridStep    = 75
		gridSpacing = 80
	)
	gridY := b.ArcCenter.Y + 50
	for row := 0; row < gridRows; row++ {
		count, offset := 4, -120.0
		if row%2 == 1 {
			count, offset = 3, -80.0
		}
		y := gridY + float64(row)*gridStep
		for i := 0; i < count; i++ {
			pegs = append(pegs, peg(centerX+offset+float64(i)*gridSpacing, y))
		}
	}
	return pegs
}

// ClassifyRegion tells which boundary rules apply at pos
func (b *Board) ClassifyRegion(pos Vec2) Region {
	switch {
	case pos.Y > b.MainArea.Bottom()+b.FallOutMargin:
		return RegionOutOfBounds
	case b.InLaunchChannel(pos):
		return RegionChannel
	case pos.Y < b.ArcCenter.Y:
		return RegionArc
	default:
		return RegionBody
	}
}

// InLaunchChannel reports whether pos is right of the separator wall and
// below the point where the wall opens into the arc.
func (b *Board) InLaunchChannel(pos Vec2) bool {
	return pos.X >= b.ChannelWallX && pos.Y > b.ChannelWallTopY
}

// InPlayArea reports whether pos has cleared the channel mouth and dropped below the arc
func (b *Board) InPlayArea(pos Vec2) bool {
	return pos.X < b.ChannelWallX-b.PlayAreaInset && pos.Y > b.ArcCenter.Y
}

// InsidePlayfield reports whether pos is inside the arc or the body, left of the channel wall
func (b *Board) InsidePlayfield(pos Vec2) bool {
	if pos.X <= b.MainArea.Left() || pos.X >= b.ChannelWallX || pos.Y >= b.MainArea.Bottom() {
		return false
	}
	if pos.Y < b.ArcCenter.Y {
		return pos.Distance(b.ArcCenter) < b.ArcRadius
	}
	return true
}

// Contains reports whether pos is within the board bounds plus the fall-out margin
func (b *Board) Contains(pos Vec2, slack float64) bool {
	top := b.ArcCenter.Y - b.ArcRadius
	return pos.X >= b.MainArea.Left()-slack &&
		pos.X <= b.MainArea.Right()+slack &&
		pos.Y >= top-slack &&
		pos.Y <= b.MainArea.Bottom()+b.FallOutMargin+slack
}

// HoleAt returns the hole with the given ID
func (b *Board) HoleAt(id int) *Hole {
	for i := range b.Holes {
		if b.Holes[i].ID == id {
			return &b.Holes[i]
		}
	}
	return nil
}
