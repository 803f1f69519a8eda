// Package engine provides the physics and turn logic for the bagatelle board.
//
// The engine package implements:
//   - Board geometry: the arc, the rectangular body and the launch channel
//   - Per-frame physics: walls, pegs, ball-ball contact and hole capture
//   - The turn controller: launching, dud returns, settling and scoring
//   - Configuration loading and validation (JSON or YAML)
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. Physics holds the stateless per-frame rules,
// Board the static geometry and GameState a read-only snapshot handed to
// callers. GameConfig carries the board layout, tuning constants and the
// message catalog.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.Launch(900)
//	for gameEngine.GetPhase() == engine.BallInPlay {
//		gameEngine.Update(1.0 / 60)
//	}
//	state := gameEngine.GetState()
//
// Game Rules:
//
// Each player in turn launches a ball up the channel. Once it has cleared the
// channel mouth and every ball on the board is at rest, scores are rebuilt
// from the balls resting in holes, so a later ball that knocks an earlier one
// out changes the score. A ball that falls back into the channel without
// entering play is returned to its player. The game ends when nobody has a
// ball left; equal top scores are a tie.
//
// The engine is single-threaded. Callers that share one across goroutines
// must serialize access.
package engine
