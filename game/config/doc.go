// Package config provides configuration management for the bagatelle game.
//
// The config package handles:
//   - Loading board configurations from JSON or YAML files
//   - Caching parsed configurations by id
//   - Default configuration selection
//   - Configuration discovery and listing
//
// Configuration Format:
//
// Configurations live in the configs directory as name.json, name.yaml or
// name.yml. The file name without extension is the config id used when
// creating sessions. Each configuration defines:
//   - Player count and balls per player
//   - Board geometry, with optional explicit hole and peg placement
//   - Physics tuning constants
//   - Messages shown as the game progresses
//
// Fields left out of a file take the classic board's values.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("quick")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// The default is classic when present, otherwise the first loadable file,
// otherwise the built-in classic board.
package config
