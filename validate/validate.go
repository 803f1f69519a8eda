// Command validate checks the board configurations in a directory (default
// ../configs). For each .json, .yaml or .yml file it checks:
//   - the file parses and passes the engine's config validation
//   - a full-power launch can lift a ball over the channel wall
//   - no two pegs overlap
//
// It also warns about pegs sitting inside holes and holes in the same row
// that leave less than a ball's width between them.
package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/bagatelle/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) warn(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	config, err := engine.ParseGameConfig(data, filePath)
	if err != nil {
		result.fail("Invalid config: %v", err)
		return result
	}

	board := engine.NewBoard(config.Board)
	result.info("✓ %s: %d players x %d balls", config.Name, config.Players, config.BallsPerPlayer)
	result.info("✓ Holes: %d worth %d points, pegs: %d", len(board.Holes), engine.TotalPoints(board.Holes), len(board.Pegs))

	checkLaunchPower(&result, board, config.Physics)
	checkPegs(&result, board)
	checkHoleRows(&result, board)

	return result
}

// checkLaunchPower makes sure full power clears the separator wall. A ball
// launched at v rises v²/2g before gravity stops it.
func checkLaunchPower(result *ValidationResult, board *engine.Board, physics engine.PhysicsConfig) {
	climb := board.BallStart.Y - board.ChannelWallTopY
	rise := physics.MaxLaunchPower * physics.MaxLaunchPower / (2 * physics.Gravity)
	minPower := math.Sqrt(2 * physics.Gravity * climb)

	if rise <= climb {
		result.fail("max_launch_power %.0f only lifts a ball %.0fpx; the channel wall needs %.0fpx (power %.0f)",
			physics.MaxLaunchPower, rise, climb, minPower)
		return
	}
	result.info("✓ Launch: anything below about %.0f power is a dud (max %.0f)", minPower, physics.MaxLaunchPower)
}

func checkPegs(result *ValidationResult, board *engine.Board) {
	overlaps := 0
	for i, p := range board.Pegs {
		for j := 0; j < i; j++ {
			q := board.Pegs[j]
			if p.Position.Distance(q.Position) < p.Radius+q.Radius {
				result.fail("Pegs %d and %d overlap at (%.0f, %.0f)", j+1, i+1, p.Position.X, p.Position.Y)
				overlaps++
			}
		}
		for _, h := range board.Holes {
			if p.Position.Distance(h.Position) < h.Radius {
				result.warn("Peg %d at (%.0f, %.0f) sits inside hole #%d", i+1, p.Position.X, p.Position.Y, h.ID)
			}
		}
	}
	if overlaps == 0 {
		result.info("✓ Pegs: no overlaps")
	}
}

func checkHoleRows(result *ValidationResult, board *engine.Board) {
	ball := 2 * board.BallRadius
	for _, row := range engine.HoleRows(board.Holes) {
		holes := append([]engine.Hole(nil), row.Holes...)
		sort.Slice(holes, func(i, j int) bool { return holes[i].Position.X < holes[j].Position.X })

		for i := 1; i < len(holes); i++ {
			a, b := holes[i-1], holes[i]
			gap := b.Position.X - a.Position.X - a.Radius - b.Radius
			if gap < ball {
				result.warn("Holes #%d and #%d leave %.0fpx between them, less than a ball (%.0fpx)", a.ID, b.ID, gap, ball)
			}
		}
	}
}

// findConfigs lists the config files in dir, sorted by name
func findConfigs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && engine.IsConfigFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// main validates every config in the directory given as the first argument
// (default ../configs), printing a concise report and exiting with non-zero
// status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := findConfigs(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Println("  ⚠️  " + warning)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
