// Package mcp exposes the bagatelle REST API as Model Context Protocol tools.
//
// The Client is a thin proxy: every tool call becomes one or two HTTP requests
// against the API server and the JSON response is rendered as plain text for
// the agent.
//
// Tools:
//   - game_instructions: Rules, scoring and launch tips
//   - create_session, get_session, list_sessions: Session management
//   - game_state: Scores, balls, filled holes and the last turn
//   - describe_board: Holes by row with position, points and occupant
//   - launch: Launch the next ball by power or charge time, settling by default
//   - charge_launcher, release_launcher: Hold and let go of the launcher; the charge follows simulated time
//   - step, settle: Advance the simulation frame by frame or to the end of the turn
//   - reset_game: Start a new game on the same board
//   - turn_history: Paginated turn records
//   - list_configs, list_results: Boards and finished games
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST bodies to /mcp are passed to GetMCPServer().HandleMessage
//
// API errors come back as tool error results rather than Go errors, so the
// agent sees the server's message.
package mcp
