// Command analyze inspects bagatelle board configurations and simulates
// launches headlessly. It prints the hole layout of a board, plays a whole
// game from a list of launch powers, and sweeps a power range to show where a
// single ball comes to rest.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/bagatelle/game/config"
	"github.com/wricardo/mcp-training/bagatelle/game/engine"
	"github.com/wricardo/mcp-training/bagatelle/game/service"
)

// SweepResult is where a single ball launched at Power ended up
type SweepResult struct {
	Power   float64
	Outcome engine.TurnOutcome
	HoleID  int
	Points  int
	Frames  int64
}

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "analyze",
		Usage: "Inspect bagatelle boards and simulate launches",
		Commands: []*cli.Command{
			{
				Name:   "board",
				Usage:  "Print the board geometry and hole rows",
				Flags:  configFlags(),
				Action: boardAction,
			},
			{
				Name:  "run",
				Usage: "Play a full game headlessly with a list of launch powers",
				Flags: append(configFlags(),
					&cli.StringFlag{
						Name:     "powers",
						Usage:    "comma separated launch powers, used in order and cycled",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-turns",
						Usage: "give up after this many turns (duds count)",
						Value: 200,
					},
				),
				Action: runAction,
			},
			{
				Name:  "sweep",
				Usage: "Launch one ball at each power in a range and report where it settles",
				Flags: append(configFlags(),
					&cli.FloatFlag{Name: "from", Usage: "first power", Value: 0},
					&cli.FloatFlag{Name: "to", Usage: "last power (defaults to the board maximum)"},
					&cli.FloatFlag{Name: "step", Usage: "power increment", Value: 25},
				),
				Action: sweepAction,
			},
		},
	}
}

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config-dir",
			Usage:   "directory containing game configurations",
			Value:   "configs",
			Sources: cli.EnvVars("CONFIG_DIR"),
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config name or path to a .json/.yaml file (default: the directory default)",
		},
	}
}

// loadConfig resolves a config by file path, then by name in dir. An empty
// name gives the directory default, or the built-in board without a directory.
func loadConfig(dir, name string) (*engine.GameConfig, error) {
	if name != "" && engine.IsConfigFile(name) {
		if _, err := os.Stat(name); err == nil {
			return engine.LoadGameConfig(name)
		}
	}

	manager, err := config.NewManager(dir)
	if err != nil {
		if name == "" {
			return engine.DefaultConfig(), nil
		}
		return nil, err
	}

	if name == "" {
		return manager.GetDefault(), nil
	}

	cfg, err := manager.LoadConfig(name)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", name, err)
	}
	return cfg, nil
}

func boardAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config-dir"), cmd.String("config"))
	if err != nil {
		return err
	}
	describeBoard(cmd.Root().Writer, cfg)
	return nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config-dir"), cmd.String("config"))
	if err != nil {
		return err
	}

	powers, err := parsePowers(cmd.String("powers"))
	if err != nil {
		return err
	}

	e, err := playGame(cfg, powers, int(cmd.Int("max-turns")))
	if e != nil {
		printGame(cmd.Root().Writer, e)
	}
	return err
}

func sweepAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config-dir"), cmd.String("config"))
	if err != nil {
		return err
	}

	to := cmd.Float("to")
	if to <= 0 {
		to = cfg.Physics.MaxLaunchPower
	}

	results, err := sweep(cfg, cmd.Float("from"), to, cmd.Float("step"))
	if err != nil {
		return err
	}
	printSweep(cmd.Root().Writer, results)
	return nil
}

func describeBoard(w io.Writer, cfg *engine.GameConfig) {
	board := engine.NewBoard(cfg.Board)

	fmt.Fprintf(w, "Name: %s\n", cfg.Name)
	fmt.Fprintf(w, "Description: %s\n", cfg.Description)
	fmt.Fprintf(w, "Players: %d, balls each: %d\n", cfg.Players, cfg.BallsPerPlayer)
	fmt.Fprintf(w, "Board: %.0f x %.0f, arc radius %.0f centred at (%.0f, %.0f)\n",
		board.Width, board.Height, board.ArcRadius, board.ArcCenter.X, board.ArcCenter.Y)
	fmt.Fprintf(w, "Launch channel: x %.0f-%.0f, wall top y=%.0f, ball start (%.0f, %.0f)\n",
		board.LaunchChannel.Left(), board.LaunchChannel.Right(), board.ChannelWallTopY,
		board.BallStart.X, board.BallStart.Y)
	fmt.Fprintf(w, "Max launch power: %.0f (full charge %.1fs)\n", cfg.Physics.MaxLaunchPower, cfg.Physics.MaxChargeTime)
	fmt.Fprintf(w, "Pegs: %d\n", len(board.Pegs))
	fmt.Fprintf(w, "Holes: %d, total points: %d\n", len(board.Holes), engine.TotalPoints(board.Holes))

	for _, row := range engine.HoleRows(board.Holes) {
		ids := make([]string, 0, len(row.Holes))
		for _, h := range row.Holes {
			ids = append(ids, fmt.Sprintf("#%d(%d)", h.ID, h.Points))
		}
		fmt.Fprintf(w, "  y=%-4.0f %s\n", row.Y, strings.Join(ids, " "))
	}
}

// parsePowers reads "900, 850,1200" into launch powers
func parsePowers(s string) ([]float64, error) {
	var powers []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid power %q: %w", part, err)
		}
		if p < 0 {
			return nil, fmt.Errorf("invalid power %q: must not be negative", part)
		}
		powers = append(powers, p)
	}
	if len(powers) == 0 {
		return nil, fmt.Errorf("no launch powers given")
	}
	return powers, nil
}

// playGame launches powers in order, cycling, until the game ends. The
// engine is returned even on error so the partial game can be printed.
func playGame(cfg *engine.GameConfig, powers []float64, maxTurns int) (*engine.GameEngine, error) {
	e, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, err
	}

	for turn := 0; !e.IsGameOver(); turn++ {
		if turn >= maxTurns {
			return e, fmt.Errorf("game not finished after %d turns", maxTurns)
		}
		if !e.Launch(powers[turn%len(powers)]) {
			return e, fmt.Errorf("launch rejected on turn %d (state %s)", turn+1, e.GetPhase())
		}
		e.RunUntilSettled(service.FrameDT, engine.MaxStepFrames)
		if e.GetPhase() == engine.BallInPlay {
			return e, fmt.Errorf("turn %d did not settle within %d frames", turn+1, engine.MaxStepFrames)
		}
	}
	return e, nil
}

func printGame(w io.Writer, e *engine.GameEngine) {
	for _, t := range e.GetTurnHistory() {
		line := fmt.Sprintf("turn %d: player %d power %.0f -> %s", t.TurnNumber, t.PlayerID, t.Power, t.Outcome)
		if t.HoleID != 0 {
			line += fmt.Sprintf(" hole #%d (+%d)", t.HoleID, t.Points)
		}
		fmt.Fprintln(w, line)
	}

	state := e.GetState()
	fmt.Fprintln(w)
	for _, p := range state.Players {
		fmt.Fprintf(w, "%s: %d\n", p.Name, p.Score)
	}
	if state.Message != "" {
		fmt.Fprintln(w, state.Message)
	}
}

// sweep launches a single ball on a fresh board for each power in [from, to]
func sweep(cfg *engine.GameConfig, from, to, step float64) ([]SweepResult, error) {
	if step <= 0 {
		return nil, fmt.Errorf("step must be positive, got %.2f", step)
	}
	if to < from {
		return nil, fmt.Errorf("empty range %.0f..%.0f", from, to)
	}

	var results []SweepResult
	for i := 0; ; i++ {
		power := from + float64(i)*step
		if power > to {
			break
		}

		e, err := engine.NewEngine(cfg)
		if err != nil {
			return nil, err
		}
		if !e.Launch(power) {
			return nil, fmt.Errorf("launch at %.0f rejected", power)
		}
		e.RunUntilSettled(service.FrameDT, engine.MaxStepFrames)

		turn := e.GetLastTurn()
		if turn == nil {
			return nil, fmt.Errorf("power %.0f did not settle within %d frames", power, engine.MaxStepFrames)
		}
		results = append(results, SweepResult{
			Power:   turn.Power,
			Outcome: turn.Outcome,
			HoleID:  turn.HoleID,
			Points:  turn.Points,
			Frames:  turn.Frames,
		})
	}
	return results, nil
}

func printSweep(w io.Writer, results []SweepResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "POWER\tOUTCOME\tHOLE\tPOINTS\tFRAMES")

	powersByHole := map[int][]float64{}
	for _, r := range results {
		hole := "-"
		if r.HoleID != 0 {
			hole = fmt.Sprintf("#%d", r.HoleID)
			powersByHole[r.HoleID] = append(powersByHole[r.HoleID], r.Power)
		}
		fmt.Fprintf(tw, "%.0f\t%s\t%s\t%d\t%d\n", r.Power, r.Outcome, hole, r.Points, r.Frames)
	}
	tw.Flush()

	if len(powersByHole) == 0 {
		fmt.Fprintln(w, "\nNo power in range landed in a hole")
		return
	}

	ids := make([]int, 0, len(powersByHole))
	for id := range powersByHole {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fmt.Fprintln(w, "\nPowers by hole:")
	for _, id := range ids {
		parts := make([]string, 0, len(powersByHole[id]))
		for _, p := range powersByHole[id] {
			parts = append(parts, strconv.FormatFloat(p, 'f', 0, 64))
		}
		fmt.Fprintf(w, "  #%d: %s\n", id, strings.Join(parts, ", "))
	}
}
