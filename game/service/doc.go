// Package service provides the business logic layer for the bagatelle game.
//
// The service package implements:
//   - Multi-session game management
//   - Launching, frame stepping and settling turns
//   - Realtime sessions advanced by a wall-clock ticker
//   - Paginated turn history
//   - Archiving finished games to a results store
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns an engine and a lock; every engine call
// happens with that lock held, so HTTP handlers, MCP tools and the realtime
// loop can share a session safely.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	store, _ := results.NewFileStore("results")
//	gameService := service.NewGameService(sessionMgr, configMgr, store)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	launch, err := gameService.Launch(ctx, info.ID, service.LaunchOptions{Power: 900})
//	settled, err := gameService.Settle(ctx, info.ID, 0)
//
// Frames:
//
// Step and Settle advance the engine in frames of FrameDT (1/60 s). A single
// call is limited to engine.MaxStepFrames. Launch with Settle set runs the
// whole turn before returning.
package service
