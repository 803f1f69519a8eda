// Package loop runs the fixed-rate ticker behind realtime sessions.
//
// Each tick advances every realtime session by 1/tickRate seconds through
// the service and hands the snapshots of sessions that moved to a
// broadcaster, normally the websocket hub.
//
//	gameLoop := loop.NewGameLoop(gameService, hub, 60)
//	go gameLoop.Run(ctx)
//	defer gameLoop.Stop()
package loop
