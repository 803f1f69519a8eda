// Package api provides the HTTP REST API for the bagatelle server.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Create a session ({"config_id": "classic", "realtime": false})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Session details with state and config
//   - DELETE /api/sessions/{id} - Delete a session
//
// Play:
//   - GET /api/sessions/{id}/state - Current game state
//   - POST /api/sessions/{id}/launch - {"power": 900} or {"charge_seconds": 1.2}, optional "settle": true
//   - POST /api/sessions/{id}/step - Advance {"frames": N} frames (default 1)
//   - POST /api/sessions/{id}/settle - Run until the turn ends ({"max_frames": N} optional)
//   - POST /api/sessions/{id}/reset - Start a new game
//   - POST /api/sessions/{id}/realtime - {"enabled": true} hands the session to the server tick
//   - GET /api/sessions/{id}/history - Turn history (?page=1&limit=20&order=desc)
//
// Boards and configs:
//   - GET /api/configs - List configurations
//   - POST /api/configs - Save a configuration
//   - GET /api/configs/{name} - Load a configuration
//   - GET /api/board - Derived board geometry (?config=name or ?session=id)
//
// Results:
//   - GET /api/results - Finished games, newest first (?limit=N)
//   - GET /api/results/{id} - One finished game
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - WebSocket snapshots for a session
//
// Errors are returned as {"error": "..."}. Unknown sessions, configs and
// results give 404, bad frame counts and invalid configs give 400, and
// launching into a finished game gives 409.
//
// Every handler that changes a session publishes the new snapshot, and any
// turn events, to the WebSocket hub.
package api
