package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GameConfig represents a board and its rules, loaded from JSON or YAML
type GameConfig struct {
	Name           string        `json:"name" yaml:"name"`
	Description    string        `json:"description" yaml:"description"`
	Players        int           `json:"players" yaml:"players"`
	BallsPerPlayer int           `json:"balls_per_player" yaml:"balls_per_player"`
	PlayerNames    []string      `json:"player_names,omitempty" yaml:"player_names,omitempty"`
	Board          BoardConfig   `json:"board" yaml:"board"`
	Physics        PhysicsConfig `json:"physics" yaml:"physics"`
	Messages       Messages      `json:"messages" yaml:"messages"`
}

// BoardConfig describes the board geometry. When Holes or Pegs are empty the
// standard layout is generated from the geometry.
type BoardConfig struct {
	Width          float64    `json:"width" yaml:"width"`
	Height         float64    `json:"height" yaml:"height"`
	Margin         float64    `json:"margin" yaml:"margin"`
	TopMargin      float64    `json:"top_margin" yaml:"top_margin"`
	BottomMargin   float64    `json:"bottom_margin" yaml:"bottom_margin"`
	ChannelWidth   float64    `json:"channel_width" yaml:"channel_width"`
	ChannelOpening float64    `json:"channel_opening" yaml:"channel_opening"`
	BallRadius     float64    `json:"ball_radius" yaml:"ball_radius"`
	PegRadius      float64    `json:"peg_radius" yaml:"peg_radius"`
	HoleRadius     float64    `json:"hole_radius" yaml:"hole_radius"`
	FallOutMargin  float64    `json:"fall_out_margin" yaml:"fall_out_margin"`
	PlayAreaInset  float64    `json:"play_area_inset" yaml:"play_area_inset"`
	Holes          []HoleSpec `json:"holes,omitempty" yaml:"holes,omitempty"`
	Pegs           []PegSpec  `json:"pegs,omitempty" yaml:"pegs,omitempty"`
}

// HoleSpec places a hole at absolute board coordinates
type HoleSpec struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Points int     `json:"points" yaml:"points"`
}

// PegSpec places a peg at absolute board coordinates. A zero radius uses the board peg radius.
type PegSpec struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Radius float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
}

// PhysicsConfig holds the tuning constants. Pull strengths are velocity
// deltas per ForceStep, not per frame dt.
type PhysicsConfig struct {
	Gravity              float64 `json:"gravity" yaml:"gravity"`
	MaxLaunchPower       float64 `json:"max_launch_power" yaml:"max_launch_power"`
	MaxChargeTime        float64 `json:"max_charge_time" yaml:"max_charge_time"`
	BounceRestitution    float64 `json:"bounce_restitution" yaml:"bounce_restitution"`
	BallRestitution      float64 `json:"ball_restitution" yaml:"ball_restitution"`
	ChannelFloorFriction float64 `json:"channel_floor_friction" yaml:"channel_floor_friction"`
	ChannelFloorBounce   float64 `json:"channel_floor_bounce" yaml:"channel_floor_bounce"`
	FloorFriction        float64 `json:"floor_friction" yaml:"floor_friction"`
	FloorBounce          float64 `json:"floor_bounce" yaml:"floor_bounce"`
	ForceStep            float64 `json:"force_step" yaml:"force_step"`
	MaxStep              float64 `json:"max_step" yaml:"max_step"`

	HoleCaptureMultiple  float64 `json:"hole_capture_multiple" yaml:"hole_capture_multiple"`
	HoleEscapeSpeed      float64 `json:"hole_escape_speed" yaml:"hole_escape_speed"`
	HoleOutsidePullBase  float64 `json:"hole_outside_pull_base" yaml:"hole_outside_pull_base"`
	HoleOutsidePullBonus float64 `json:"hole_outside_pull_bonus" yaml:"hole_outside_pull_bonus"`
	HoleOutsideFriction  float64 `json:"hole_outside_friction" yaml:"hole_outside_friction"`
	HoleInsidePull       float64 `json:"hole_inside_pull" yaml:"hole_inside_pull"`
	HoleInsideFriction   float64 `json:"hole_inside_friction" yaml:"hole_inside_friction"`
	HoleSnapSpeed        float64 `json:"hole_snap_speed" yaml:"hole_snap_speed"`
	HoleSnapFraction     float64 `json:"hole_snap_fraction" yaml:"hole_snap_fraction"`
	OccupantTolerance    float64 `json:"occupant_tolerance" yaml:"occupant_tolerance"`
	OccupantWakeSpeed    float64 `json:"occupant_wake_speed" yaml:"occupant_wake_speed"`

	LowSpeedThreshold float64 `json:"low_speed_threshold" yaml:"low_speed_threshold"`
	StoppedTime       float64 `json:"stopped_time" yaml:"stopped_time"`
	InHoleRestSpeed   float64 `json:"in_hole_rest_speed" yaml:"in_hole_rest_speed"`
	InHoleRestTime    float64 `json:"in_hole_rest_time" yaml:"in_hole_rest_time"`
}

// Messages is the text catalog used for GameState.Message
type Messages struct {
	Welcome  string `json:"welcome" yaml:"welcome"`
	Launched string `json:"launched" yaml:"launched"`
	Dud      string `json:"dud" yaml:"dud"`
	NextTurn string `json:"next_turn" yaml:"next_turn"`
	GameOver string `json:"game_over" yaml:"game_over"`
	Winner   string `json:"winner" yaml:"winner"`
	Tie      string `json:"tie" yaml:"tie"`
}

// DefaultBoardConfig returns the classic 480x800 board geometry
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		Width:          480,
		Height:         800,
		Margin:         20,
		TopMargin:      80,
		BottomMargin:   60,
		ChannelWidth:   40,
		ChannelOpening: 40,
		BallRadius:     10,
		PegRadius:      6,
		HoleRadius:     20,
		FallOutMargin:  50,
		PlayAreaInset:  30,
	}
}

// DefaultPhysicsConfig returns the standard tuning
func DefaultPhysicsConfig() PhysicsConfig {
	return PhysicsConfig{
		Gravity:              400,
		MaxLaunchPower:       1300,
		MaxChargeTime:        2,
		BounceRestitution:    0.7,
		BallRestitution:      0.9,
		ChannelFloorFriction: 0.9,
		ChannelFloorBounce:   0.4,
		FloorFriction:        0.8,
		FloorBounce:          0.5,
		ForceStep:            0.016,
		MaxStep:              1.0 / 30,

		HoleCaptureMultiple:  1.5,
		HoleEscapeSpeed:      260,
		HoleOutsidePullBase:  200,
		HoleOutsidePullBonus: 600,
		HoleOutsideFriction:  0.97,
		HoleInsidePull:       1500,
		HoleInsideFriction:   0.85,
		HoleSnapSpeed:        15,
		HoleSnapFraction:     0.3,
		OccupantTolerance:    3,
		OccupantWakeSpeed:    50,

		LowSpeedThreshold: 20,
		StoppedTime:       0.5,
		InHoleRestSpeed:   100,
		InHoleRestTime:    0.3,
	}
}

// DefaultMessages returns the standard message catalog
func DefaultMessages() Messages {
	return Messages{
		Welcome:  "Welcome to Bagatelle! Charge the launcher and let go.",
		Launched: "%s launched at %.0f power",
		Dud:      "The ball never left the channel. %s, launch again!",
		NextTurn: "%s to launch (%d balls left)",
		GameOver: "Game over!",
		Winner:   "Game over! %s wins with %d points",
		Tie:      "Game over! It's a tie at %d points",
	}
}

// DefaultConfig returns the built-in classic two-player configuration
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:           "classic",
		Description:    "Classic bagatelle board: five rows of holes, two players, five balls each",
		Players:        2,
		BallsPerPlayer: 5,
		Board:          DefaultBoardConfig(),
		Physics:        DefaultPhysicsConfig(),
		Messages:       DefaultMessages(),
	}
}

// ApplyDefaults fills zero-valued fields from the default configuration
func (c *GameConfig) ApplyDefaults() {
	if c.Players == 0 {
		c.Players = 2
	}
	if c.BallsPerPlayer == 0 {
		c.BallsPerPlayer = 5
	}
	c.Board.applyDefaults(DefaultBoardConfig())
	c.Physics.applyDefaults(DefaultPhysicsConfig())

	def := DefaultMessages()
	fillString(&c.Messages.Welcome, def.Welcome)
	fillString(&c.Messages.Launched, def.Launched)
	fillString(&c.Messages.Dud, def.Dud)
	fillString(&c.Messages.NextTurn, def.NextTurn)
	fillString(&c.Messages.GameOver, def.GameOver)
	fillString(&c.Messages.Winner, def.Winner)
	fillString(&c.Messages.Tie, def.Tie)
}

// ValidateGameConfig validates a configuration after defaults are applied
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("config validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("config validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("config validation: description is required")
	}

	if config.Players < MinPlayers || config.Players > MaxPlayers {
		return fmt.Errorf("config validation: players must be between %d and %d, got %d", MinPlayers, MaxPlayers, config.Players)
	}
	if config.BallsPerPlayer < MinBallsPerPlayer || config.BallsPerPlayer > MaxBallsPerPlayer {
		return fmt.Errorf("config validation: balls_per_player must be between %d and %d, got %d",
			MinBallsPerPlayer, MaxBallsPerPlayer, config.BallsPerPlayer)
	}
	if len(config.PlayerNames) > config.Players {
		return fmt.Errorf("config validation: %d player_names given for %d players", len(config.PlayerNames), config.Players)
	}

	if err := validateBoard(&config.Board); err != nil {
		return err
	}
	if err := validatePhysics(&config.Physics); err != nil {
		return err
	}

	// Validate format strings
	if !strings.Contains(config.Messages.Launched, "%s") {
		return fmt.Errorf("config validation: messages.launched must contain %%s for the player name")
	}
	if !strings.Contains(config.Messages.Winner, "%s") || !strings.Contains(config.Messages.Winner, "%d") {
		return fmt.Errorf("config validation: messages.winner must contain %%s and %%d")
	}
	if !strings.Contains(config.Messages.Tie, "%d") {
		return fmt.Errorf("config validation: messages.tie must contain %%d for the score")
	}

	return nil
}

func validateBoard(b *BoardConfig) error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("config validation: board width and height must be positive, got %.0fx%.0f", b.Width, b.Height)
	}
	if b.BallRadius <= 0 || b.PegRadius <= 0 || b.HoleRadius <= 0 {
		return fmt.Errorf("config validation: ball, peg and hole radii must be positive")
	}

	innerWidth := b.Width - 2*b.Margin
	if innerWidth <= 0 {
		return fmt.Errorf("config validation: margin %.0f leaves no room on a board %.0f wide", b.Margin, b.Width)
	}
	if b.ChannelWidth <= 0 || b.ChannelWidth >= innerWidth {
		return fmt.Errorf("config validation: channel_width must be between 0 and %.0f, got %.0f", innerWidth, b.ChannelWidth)
	}
	if b.ChannelWidth < 2*b.BallRadius {
		return fmt.Errorf("config validation: channel_width %.0f is narrower than a ball (%.0f)", b.ChannelWidth, 2*b.BallRadius)
	}

	// Arc radius is half the inner width, the body starts at the arc center.
	bodyTop := b.TopMargin + innerWidth/2
	bodyHeight := b.Height - bodyTop - b.BottomMargin
	if bodyHeight <= 2*b.BallRadius {
		return fmt.Errorf("config validation: board height %.0f leaves no room below the arc", b.Height)
	}

	board := NewBoard(*b)
	for i, h := range board.Holes {
		if h.Points <= 0 {
			return fmt.Errorf("config validation: hole %d must be worth positive points, got %d", i+1, h.Points)
		}
		if !board.InsidePlayfield(h.Position) {
			return fmt.Errorf("config validation: hole %d at (%.0f, %.0f) is outside the playfield", i+1, h.Position.X, h.Position.Y)
		}
		for j := 0; j < i; j++ {
			if h.Position.Distance(board.Holes[j].Position) < 2*h.Radius {
				return fmt.Errorf("config validation: holes %d and %d overlap", j+1, i+1)
			}
		}
	}
	for i, p := range board.Pegs {
		if !board.Contains(p.Position, 0) {
			return fmt.Errorf("config validation: peg %d at (%.0f, %.0f) is outside the playfield", i+1, p.Position.X, p.Position.Y)
		}
	}
	return nil
}

type namedValue struct {
	name  string
	value float64
}

func validatePhysics(p *PhysicsConfig) error {
	positive := []namedValue{
		{"gravity", p.Gravity},
		{"max_launch_power", p.MaxLaunchPower},
		{"max_charge_time", p.MaxChargeTime},
		{"force_step", p.ForceStep},
		{"max_step", p.MaxStep},
		{"hole_escape_speed", p.HoleEscapeSpeed},
		{"hole_inside_pull", p.HoleInsidePull},
		{"hole_snap_speed", p.HoleSnapSpeed},
		{"low_speed_threshold", p.LowSpeedThreshold},
		{"in_hole_rest_speed", p.InHoleRestSpeed},
	}
	for _, f := range positive {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("config validation: physics.%s must be positive, got %g", f.name, f.value)
		}
	}

	nonNegative := []namedValue{
		{"hole_outside_pull_base", p.HoleOutsidePullBase},
		{"hole_outside_pull_bonus", p.HoleOutsidePullBonus},
		{"occupant_tolerance", p.OccupantTolerance},
		{"occupant_wake_speed", p.OccupantWakeSpeed},
		{"stopped_time", p.StoppedTime},
		{"in_hole_rest_time", p.InHoleRestTime},
	}
	for _, f := range nonNegative {
		if !(f.value >= 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("config validation: physics.%s must not be negative, got %g", f.name, f.value)
		}
	}

	fractions := []namedValue{
		{"bounce_restitution", p.BounceRestitution},
		{"ball_restitution", p.BallRestitution},
		{"channel_floor_friction", p.ChannelFloorFriction},
		{"channel_floor_bounce", p.ChannelFloorBounce},
		{"floor_friction", p.FloorFriction},
		{"floor_bounce", p.FloorBounce},
		{"hole_outside_friction", p.HoleOutsideFriction},
		{"hole_inside_friction", p.HoleInsideFriction},
		{"hole_snap_fraction", p.HoleSnapFraction},
	}
	for _, f := range fractions {
		if math.IsNaN(f.value) || f.value <= 0 || f.value > 1 {
			return fmt.Errorf("config validation: physics.%s must be in (0, 1], got %g", f.name, f.value)
		}
	}

	if !(p.HoleCaptureMultiple > 1) || math.IsInf(p.HoleCaptureMultiple, 0) {
		return fmt.Errorf("config validation: physics.hole_capture_multiple must be greater than 1, got %g", p.HoleCaptureMultiple)
	}
	if p.HoleInsideFriction > p.HoleOutsideFriction {
		return fmt.Errorf("config validation: physics.hole_inside_friction (%g) must damp at least as hard as hole_outside_friction (%g)",
			p.HoleInsideFriction, p.HoleOutsideFriction)
	}
	if p.InHoleRestSpeed < p.LowSpeedThreshold {
		return fmt.Errorf("config validation: physics.in_hole_rest_speed must not be below low_speed_threshold")
	}
	return nil
}

// ParseGameConfig decodes a config from JSON or YAML, choosing by file extension
func ParseGameConfig(data []byte, filename string) (*GameConfig, error) {
	var config GameConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	}

	config.ApplyDefaults()
	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadGameConfig loads a game configuration from a JSON or YAML file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	return ParseGameConfig(data, configPath)
}

// ConfigExtensions lists the file extensions recognised as configs, in lookup order
var ConfigExtensions = []string{".json", ".yaml", ".yml"}

// IsConfigFile reports whether name has a recognised config extension
func IsConfigFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range ConfigExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadConfigByName loads a configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	var configPath string
	if IsConfigFile(configName) {
		configPath = filepath.Join("configs", configName)
	} else {
		for _, ext := range ConfigExtensions {
			candidate := filepath.Join("configs", configName+ext)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
	}

	if configPath == "" {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file '%s' not found", configName)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %v", configName, err)
	}

	config, err := ParseGameConfig(data, configPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config '%s': %v", configName, err)
	}
	return config, nil
}

func (b *BoardConfig) applyDefaults(def BoardConfig) {
	fillFloat(&b.Width, def.Width)
	fillFloat(&b.Height, def.Height)
	fillFloat(&b.Margin, def.Margin)
	fillFloat(&b.TopMargin, def.TopMargin)
	fillFloat(&b.BottomMargin, def.BottomMargin)
	fillFloat(&b.ChannelWidth, def.ChannelWidth)
	fillFloat(&b.ChannelOpening, def.ChannelOpening)
	fillFloat(&b.BallRadius, def.BallRadius)
	fillFloat(&b.PegRadius, def.PegRadius)
	fillFloat(&b.HoleRadius, def.HoleRadius)
	fillFloat(&b.FallOutMargin, def.FallOutMargin)
	fillFloat(&b.PlayAreaInset, def.PlayAreaInset)
}

func (p *PhysicsConfig) applyDefaults(def PhysicsConfig) {
	fillFloat(&p.Gravity, def.Gravity)
	fillFloat(&p.MaxLaunchPower, def.MaxLaunchPower)
	fillFloat(&p.MaxChargeTime, def.MaxChargeTime)
	fillFloat(&p.BounceRestitution, def.BounceRestitution)
	fillFloat(&p.BallRestitution, def.BallRestitution)
	fillFloat(&p.ChannelFloorFriction, def.ChannelFloorFriction)
	fillFloat(&p.ChannelFloorBounce, def.ChannelFloorBounce)
	fillFloat(&p.FloorFriction, def.FloorFriction)
	fillFloat(&p.FloorBounce, def.FloorBounce)
	fillFloat(&p.ForceStep, def.ForceStep)
	fillFloat(&p.MaxStep, def.MaxStep)
	fillFloat(&p.HoleCaptureMultiple, def.HoleCaptureMultiple)
	fillFloat(&p.HoleEscapeSpeed, def.HoleEscapeSpeed)
	fillFloat(&p.HoleOutsidePullBase, def.HoleOutsidePullBase)
	fillFloat(&p.HoleOutsidePullBonus, def.HoleOutsidePullBonus)
	fillFloat(&p.HoleOutsideFriction, def.HoleOutsideFriction)
	fillFloat(&p.HoleInsidePull, def.HoleInsidePull)
	fillFloat(&p.HoleInsideFriction, def.HoleInsideFriction)
	fillFloat(&p.HoleSnapSpeed, def.HoleSnapSpeed)
	fillFloat(&p.HoleSnapFraction, def.HoleSnapFraction)
	fillFloat(&p.OccupantTolerance, def.OccupantTolerance)
	fillFloat(&p.OccupantWakeSpeed, def.OccupantWakeSpeed)
	fillFloat(&p.LowSpeedThreshold, def.LowSpeedThreshold)
	fillFloat(&p.StoppedTime, def.StoppedTime)
	fillFloat(&p.InHoleRestSpeed, def.InHoleRestSpeed)
	fillFloat(&p.InHoleRestTime, def.InHoleRestTime)
}

func fillFloat(dst *float64, def float64) {
	if *dst == 0 {
		*dst = def
	}
}

func fillString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
