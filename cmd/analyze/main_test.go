package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/bagatelle/game/engine"
)

func writeConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	classic := `{"name": "Classic", "description": "Two players", "players": 2, "balls_per_player": 2}`
	solo := "name: Solo\ndescription: One player\nplayers: 1\nballs_per_player: 1\n"

	if err := os.WriteFile(filepath.Join(dir, "classic.json"), []byte(classic), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "solo.yaml"), []byte(solo), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestParsePowers(t *testing.T) {
	tests := []struct {
		input   string
		want    []float64
		wantErr bool
	}{
		{"900", []float64{900}, false},
		{"900, 850,1200", []float64{900, 850, 1200}, false},
		{" 0 ,", []float64{0}, false},
		{"", nil, true},
		{"fast", nil, true},
		{"900,-5", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parsePowers(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePowers(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfigDir(t)

	tests := []struct {
		name     string
		dir      string
		config   string
		wantName string
		wantErr  bool
	}{
		{"directory default", dir, "", "Classic", false},
		{"by name", dir, "solo", "Solo", false},
		{"by file path", "/non/existent", filepath.Join(dir, "solo.yaml"), "Solo", false},
		{"built-in without directory", "/non/existent", "", "classic", false},
		{"unknown name", dir, "missing", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := loadConfig(tt.dir, tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadConfig error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cfg.Name != tt.wantName {
				t.Errorf("Expected config %q, got %q", tt.wantName, cfg.Name)
			}
		})
	}
}

func TestDescribeBoard(t *testing.T) {
	var buf bytes.Buffer
	cfg := engine.DefaultConfig()
	describeBoard(&buf, cfg)

	board := engine.NewBoard(cfg.Board)
	out := buf.String()
	for _, want := range []string{
		"Name: classic",
		"Board: 480 x 800",
		"Max launch power: 1300",
		"total points: " + strconv.Itoa(engine.TotalPoints(board.Holes)),
		"#1(",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}

	rows := engine.HoleRows(board.Holes)
	if got := strings.Count(out, "  y="); got != len(rows) {
		t.Errorf("Expected %d hole rows, got %d", len(rows), got)
	}
}

func TestSweep_LowPowerIsDud(t *testing.T) {
	results, err := sweep(engine.DefaultConfig(), 0, 100, 50)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r.Outcome != engine.TurnDud {
			t.Errorf("Power %.0f: expected dud, got %s", r.Power, r.Outcome)
		}
		if r.Points != 0 || r.HoleID != 0 {
			t.Errorf("Power %.0f: a dud cannot score", r.Power)
		}
	}

	var buf bytes.Buffer
	printSweep(&buf, results)
	if !strings.Contains(buf.String(), "No power in range landed in a hole") {
		t.Errorf("Unexpected sweep output:\n%s", buf.String())
	}
}

func TestSweep_InvalidRange(t *testing.T) {
	cfg := engine.DefaultConfig()

	if _, err := sweep(cfg, 0, 100, 0); err == nil {
		t.Error("Expected error for zero step")
	}
	if _, err := sweep(cfg, 500, 100, 25); err == nil {
		t.Error("Expected error for reversed range")
	}
}

func TestPrintSweep_GroupsByHole(t *testing.T) {
	var buf bytes.Buffer
	printSweep(&buf, []SweepResult{
		{Power: 900, Outcome: engine.TurnSettled, HoleID: 3, Points: 75},
		{Power: 925, Outcome: engine.TurnSettled, HoleID: 3, Points: 75},
		{Power: 950, Outcome: engine.TurnSettled},
		{Power: 975, Outcome: engine.TurnSettled, HoleID: 1, Points: 100},
	})

	out := buf.String()
	for _, want := range []string{"Powers by hole:", "#1: 975", "#3: 900, 925"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "#1: 975") > strings.Index(out, "#3: 900") {
		t.Error("Expected holes in id order")
	}
}

func TestPlayGame_DudsNeverFinish(t *testing.T) {
	e, err := playGame(engine.DefaultConfig(), []float64{0}, 5)
	if err == nil {
		t.Fatal("Expected error when every launch is a dud")
	}
	if e == nil {
		t.Fatal("Expected the partial game to be returned")
	}

	history := e.GetTurnHistory()
	if len(history) != 5 {
		t.Fatalf("Expected 5 dud turns, got %d", len(history))
	}

	// Duds hand the ball back, so the first player keeps launching
	for _, turn := range history {
		if turn.Outcome != engine.TurnDud || turn.PlayerID != 1 {
			t.Errorf("Unexpected turn %+v", turn)
		}
	}
}

func TestApp_Board(t *testing.T) {
	dir := writeConfigDir(t)

	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf

	if err := app.Run(context.Background(), []string{"analyze", "board", "--config-dir", dir, "--config", "solo"}); err != nil {
		t.Fatalf("board command failed: %v", err)
	}

	if !strings.Contains(buf.String(), "Name: Solo") || !strings.Contains(buf.String(), "Players: 1, balls each: 1") {
		t.Errorf("Unexpected board output:\n%s", buf.String())
	}
}

func TestApp_RunRequiresPowers(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf

	if err := app.Run(context.Background(), []string{"analyze", "run", "--config-dir", writeConfigDir(t)}); err == nil {
		t.Error("Expected error without --powers")
	}
}
