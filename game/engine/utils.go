package engine

import "sort"

// TopScore returns the highest score among players
func TopScore(players []Player) int {
	top := 0
	for i, p := range players {
		if i == 0 || p.Score > top {
			top = p.Score
		}
	}
	return top
}

// TotalPoints sums the point values of all holes
func TotalPoints(holes []Hole) int {
	total := 0
	for _, h := range holes {
		total += h.Points
	}
	return total
}

// OccupiedHoles returns the holes that currently have an occupant
func OccupiedHoles(holes []Hole) []Hole {
	var out []Hole
	for _, h := range holes {
		if h.OccupantID != 0 {
			out = append(out, h)
		}
	}
	return out
}

// CountBallsInHoles counts balls flagged as being in a hole
func CountBallsInHoles(balls []Ball) int {
	count := 0
	for _, b := range balls {
		if b.InHole {
			count++
		}
	}
	return count
}

// BallsOwnedBy counts the balls on the board that belong to a player
func BallsOwnedBy(balls []Ball, playerID int) int {
	count := 0
	for _, b := range balls {
		if b.Owner == playerID {
			count++
		}
	}
	return count
}

// PointRow groups holes of the same row (same Y) for summaries
type PointRow struct {
	Y      float64 `json:"y"`
	Points []int   `json:"points"`
	Holes  []Hole  `json:"holes"`
}

// HoleRows groups holes by row, top to bottom, left to right
func HoleRows(holes []Hole) []PointRow {
	sorted := append([]Hole(nil), holes...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Position.Y != sorted[j].Position.Y {
			return sorted[i].Position.Y < sorted[j].Position.Y
		}
		return sorted[i].Position.X < sorted[j].Position.X
	})

	var rows []PointRow
	for _, h := range sorted {
		if len(rows) == 0 || rows[len(rows)-1].Y != h.Position.Y {
			rows = append(rows, PointRow{Y: h.Position.Y})
		}
		last := &rows[len(rows)-1]
		last.Points = append(last.Points, h.Points)
		last.Holes = append(last.Holes, h)
	}
	return rows
}

// NearestHole returns the hole closest to pos and its distance
func NearestHole(holes []Hole, pos Vec2) (Hole, float64, bool) {
	var best Hole
	bestDist := -1.0
	for _, h := range holes {
		d := pos.Distance(h.Position)
		if bestDist < 0 || d < bestDist {
			best, bestDist = h, d
		}
	}
	return best, bestDist, bestDist >= 0
}
