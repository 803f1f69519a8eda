package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/bagatelle/game/engine"
	"github.com/wricardo/mcp-training/bagatelle/game/results"
	"github.com/wricardo/mcp-training/bagatelle/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			// Settling a long turn can take a moment
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Bagatelle",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Bagatelle - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Players take turns launching balls up the channel. Balls that come to rest in a
hole score that hole's points for their owner. Highest score when every ball is
played wins.

AVAILABLE TOOLS:
- game_instructions: Rules, physics notes and power tips
- create_session / get_session / list_sessions: Manage games
- game_state: Current scores, balls and holes
- describe_board: Hole ids, positions, points and who occupies them
- launch: Launch the next ball (power 0-1300 or charge_seconds), settles by default
- step / settle: Advance the simulation by frames or to the end of the turn
- reset_game: Start over
- turn_history: Past turns with power, outcome and points
- list_configs: Available boards
- list_results: Finished games

NOTE: The 'intent' parameter on launch serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func noArgs() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use (optional, see list_configs)",
				},
				"realtime": map[string]interface{}{
					"type":        "boolean",
					"description": "Let the server advance the simulation in real time",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: noArgs(),
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_board",
		Description: "List every hole with its id, position, points and occupant. Pass a session_id for live occupancy or a config_id for an empty board.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to describe when no session is given",
				},
			},
		},
	}, c.handleDescribeBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "launch",
		Description: "Launch the current player's next ball",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"power": map[string]interface{}{
					"type":        "number",
					"description": "Launch speed in px/s (0-1300 on the classic board)",
				},
				"charge_seconds": map[string]interface{}{
					"type":        "number",
					"description": "Hold time on the launcher instead of power (full charge at 2s)",
				},
				"settle": map[string]interface{}{
					"type":        "boolean",
					"description": "Run the turn to completion before returning (default true)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this launch (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleLaunch)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "charge_launcher",
		Description: "Start holding the launcher. The charge grows with simulated time (step, or the realtime loop) until release_launcher.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleCharge)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "release_launcher",
		Description: "Let go of a charging launcher, launching with the charge built up so far",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"settle": map[string]interface{}{
					"type":        "boolean",
					"description": "Run the turn to completion before returning (default false)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRelease)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Advance the simulation by a number of 1/60s frames",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"frames": map[string]interface{}{
					"type":        "integer",
					"description": "Frames to run (default 1)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "settle",
		Description: "Run the simulation until the current turn ends",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"max_frames": map[string]interface{}{
					"type":        "integer",
					"description": "Frame cap (optional)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSettle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "turn_history",
		Description: "Get turn history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleTurnHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: noArgs(),
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_results",
		Description: "List recently finished games",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Number of results (default 50)",
				},
			},
		},
	}, c.handleListResults)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: noArgs(),
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool arguments; missing arguments read as an empty map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)
	if configID == "" {
		// Older clients send config_name
		configID, _ = args["config_name"].(string)
	}
	realtime, _ := args["realtime"].(bool)

	body := map[string]interface{}{}
	if configID != "" {
		body["config_id"] = configID
	}
	if realtime {
		body["realtime"] = true
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nRealtime: %t\n\n%s",
		session.ID, session.ConfigName, session.Realtime, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Active Sessions (%d):\n\n", response.Count))
	for _, s := range response.Sessions {
		status := ""
		if s.GameState != nil {
			status = fmt.Sprintf(", %s, turn %d", s.GameState.State, s.GameState.TurnNumber)
		}
		b.WriteString(fmt.Sprintf("- %s (Config: %s%s, Created: %s)\n",
			s.ID, s.ConfigName, status, s.CreatedAt.Format("15:04:05")))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleDescribeBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	configID, _ := args["config_id"].(string)

	var board struct {
		ConfigName  string       `json:"config_name"`
		Board       engine.Board `json:"board"`
		TotalPoints int          `json:"total_points"`
	}

	query := "/api/board"
	if sessionID != "" {
		query += "?session=" + url.QueryEscape(sessionID)
	} else if configID != "" {
		query += "?config=" + url.QueryEscape(configID)
	}
	if err := c.apiCall(ctx, "GET", query, nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Board geometry comes from the config; occupancy only exists in a live game
	holes := board.Board.Holes
	var state *engine.GameState
	if sessionID != "" {
		var live engine.GameState
		if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &live); err == nil {
			state = &live
			holes = live.Holes
		}
	}

	return mcp.NewToolResultText(formatBoard(board.ConfigName, &board.Board, holes, board.TotalPoints, state)), nil
}

func (c *Client) handleLaunch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	power, _ := args["power"].(float64)
	chargeSeconds, _ := args["charge_seconds"].(float64)
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	settle := true
	if v, ok := args["settle"].(bool); ok {
		settle = v
	}

	body := service.LaunchOptions{
		Power:         power,
		ChargeSeconds: chargeSeconds,
		Settle:        settle,
	}

	var result service.LaunchResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/launch"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLaunchResult(&result)), nil
}

func (c *Client) handleCharge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.LaunchResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/charge"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatChargeResult(&result)), nil
}

func (c *Client) handleRelease(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	settle, _ := args["settle"].(bool)

	var result service.LaunchResult
	body := map[string]bool{"settle": settle}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/release"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatLaunchResult(&result)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	frames := 1
	if f, ok := args["frames"].(float64); ok {
		frames = int(f)
	}

	var result service.StepResult
	body := map[string]int{"frames": frames}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/step"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleSettle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	body := map[string]int{}
	if f, ok := args["max_frames"].(float64); ok {
		body["max_frames"] = int(f)
	}

	var result service.StepResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/settle"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatStepResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleTurnHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, cfg := range configs {
		b.WriteString(fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Players: %d, Balls each: %d, Holes: %d, Points on board: %d\n\n",
			cfg.Name, cfg.ConfigID, cfg.Description, cfg.Players, cfg.BallsPerPlayer, cfg.Holes, cfg.TotalPoints))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleListResults(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := "/api/results"
	if limit, ok := arguments(request)["limit"].(float64); ok && limit > 0 {
		path += fmt.Sprintf("?limit=%d", int(limit))
	}

	var response struct {
		Count   int               `json:"count"`
		Results []*results.Result `json:"results"`
	}
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatResults(response.Results)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🎯 Bagatelle - Complete Instructions

GAME OBJECTIVE:
Score the most points by landing your balls in the board's holes. Every player
has the same number of balls; the game ends when all of them have been played.

THE BOARD:
• A tall rectangle with a half-circle arc on top
• A launch channel runs up the right side, separated from the play area by a wall
• Pegs deflect the ball on the way down
• Holes are arranged in rows: 100 at the top, then 75, 50, 25 and a 10 at the bottom

TURNS:
1. The current player launches one ball up the channel (launch tool)
2. The ball rounds the arc and drops into the play area
3. The turn ends when every ball on the board is at rest
4. If the ball never reaches the play area it is a DUD: the ball comes back and
   the same player launches again

SCORING:
• A ball resting in a hole scores that hole's points for the ball's owner
• One ball per hole: a ball rolling into an occupied hole can knock the
  resting ball out
• Scores are recomputed from the board each time the balls settle, so
  knocked-out balls lose their points

LAUNCHING:
• power: launch speed in px/s, 0-1300 on the classic board
• charge_seconds: seconds holding the launcher; 2s is full power
• settle (default true): run the turn to completion and report the outcome
• Low power never clears the channel wall and is a dud
• Or hold the launcher yourself: charge_launcher, step (60 frames = 1s of
  charge), then release_launcher

🤖 STRATEGY TIPS:
- Use describe_board to see hole positions, points and which are taken
- Use turn_history to see which powers landed where and refine from there
- Small power changes make large differences once the ball hits pegs
- Knocking an opponent's ball out of a high hole can swing the game
- Use step for frame-by-frame analysis when a result surprises you

SESSION MANAGEMENT:
- Multiple game sessions can run simultaneously
- Each session has a unique 4-character ID
- Realtime sessions are advanced by the server clock; watch them over WebSocket
- reset_game starts a fresh game on the same board
- Finished games are archived; see list_results

Good luck and steady hands! 🎱`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nRealtime: %t\nCreated: %s\n\n%s",
		session.ID, session.ConfigName, session.Realtime,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Config: %s | Game: %d | Turn: %d | Frame: %d\n",
		state.ConfigName, state.Game, state.TurnNumber, state.Frame))
	result.WriteString(fmt.Sprintf("State: %s\n", state.State))

	if len(state.Players) > 0 {
		result.WriteString("\nPlayers:\n")
		for i, p := range state.Players {
			marker := "  "
			if i == state.CurrentPlayer && state.State != engine.GameOver {
				marker = "▶ "
			}
			result.WriteString(fmt.Sprintf("%s%s: %d pts, %d balls left\n", marker, p.Name, p.Score, p.BallsRemaining))
		}
	}

	inHoles := engine.CountBallsInHoles(state.Balls)
	result.WriteString(fmt.Sprintf("\nBalls on board: %d (%d in holes)\n", len(state.Balls), inHoles))

	occupied := engine.OccupiedHoles(state.Holes)
	if len(occupied) > 0 {
		parts := make([]string, 0, len(occupied))
		for _, h := range occupied {
			parts = append(parts, fmt.Sprintf("#%d(%d)", h.ID, h.Points))
		}
		result.WriteString(fmt.Sprintf("Filled holes: %s\n", strings.Join(parts, " ")))
	}

	if state.Launcher.Charging {
		result.WriteString(fmt.Sprintf("Launcher: charging %.2fs/%.2fs\n", state.Launcher.ChargeTime, state.Launcher.MaxChargeTime))
	}

	if state.LastTurn != nil {
		result.WriteString("Last turn: " + formatTurnLine(state.LastTurn) + "\n")
	}

	// Status
	if state.State == engine.GameOver {
		if state.Tie {
			result.WriteString("\n🤝 TIE")
		} else {
			result.WriteString(fmt.Sprintf("\n🏆 GAME OVER - winner: player %d", state.WinnerID))
		}
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

func formatTurnLine(turn *engine.TurnRecord) string {
	if turn.Outcome == engine.TurnDud {
		return fmt.Sprintf("player %d power %.0f → dud (%d frames)", turn.PlayerID, turn.Power, turn.Frames)
	}
	landing := "no hole"
	if turn.HoleID != 0 {
		landing = fmt.Sprintf("hole #%d (+%d)", turn.HoleID, turn.Points)
	}
	return fmt.Sprintf("player %d power %.0f → %s (%d frames)", turn.PlayerID, turn.Power, landing, turn.Frames)
}

func formatEvents(events []service.GameEvent) string {
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Events:\n")
	for _, event := range events {
		b.WriteString(fmt.Sprintf("- %s: %s\n", event.Type, event.Message))
	}
	return b.String()
}

func formatLaunchResult(result *service.LaunchResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString(fmt.Sprintf("✓ Launched at power %.0f\n", result.Power))
	} else {
		b.WriteString("✗ Launch rejected\n")
	}
	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}
	if result.Frames > 0 {
		b.WriteString(fmt.Sprintf("Simulated %d frames\n", result.Frames))
	}
	if result.Turn != nil {
		b.WriteString("Turn: " + formatTurnLine(result.Turn) + "\n")
	}
	b.WriteString(formatEvents(result.Events))

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatChargeResult(result *service.LaunchResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Charging\n")
	} else {
		b.WriteString("✗ Charge rejected\n")
	}
	if result.Message != "" {
		b.WriteString(result.Message + "\n")
	}
	if result.GameState != nil {
		l := result.GameState.Launcher
		b.WriteString(fmt.Sprintf("Launcher: %.2fs of %.2fs held (%.0f%%)\n", l.ChargeTime, l.MaxChargeTime, l.ChargePower()*100))
	}
	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

func formatStepResult(result *service.StepResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Ran %d frames", result.FramesRun))
	if result.StoppedReason != "" {
		b.WriteString(fmt.Sprintf(" (stopped: %s)", result.StoppedReason))
	}
	b.WriteString("\n")
	if result.TurnEnded && result.Turn != nil {
		b.WriteString("Turn ended: " + formatTurnLine(result.Turn) + "\n")
	}
	b.WriteString(formatEvents(result.Events))

	b.WriteString("\n" + formatGameState(result.GameState))
	return b.String()
}

// formatBoard lists holes grouped by row, top to bottom
func formatBoard(configName string, board *engine.Board, holes []engine.Hole, totalPoints int, state *engine.GameState) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Board: %s (%.0fx%.0f) | %d holes | %d points | %d pegs\n",
		configName, board.Width, board.Height, len(holes), totalPoints, len(board.Pegs)))
	b.WriteString(fmt.Sprintf("Channel wall top: y=%.0f | Ball start: (%.0f,%.0f)\n\n",
		board.ChannelWallTopY, board.BallStart.X, board.BallStart.Y))

	owners := map[int]string{}
	if state != nil {
		names := map[int]string{}
		for _, p := range state.Players {
			names[p.ID] = p.Name
		}
		for _, ball := range state.Balls {
			owners[ball.ID] = names[ball.Owner]
		}
	}

	for _, row := range engine.HoleRows(holes) {
		b.WriteString(fmt.Sprintf("Row y=%.0f:\n", row.Y))
		for _, h := range row.Holes {
			occupant := "empty"
			if h.OccupantID != 0 {
				occupant = fmt.Sprintf("ball %d", h.OccupantID)
				if name := owners[h.OccupantID]; name != "" {
					occupant += " (" + name + ")"
				}
			}
			b.WriteString(fmt.Sprintf("  #%d at (%.0f,%.0f) r=%.0f %d pts - %s\n",
				h.ID, h.Position.X, h.Position.Y, h.Radius, h.Points, occupant))
		}
	}

	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Turn History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalTurns))

	if len(history.Turns) == 0 {
		b.WriteString("(no turns yet)\n")
		return b.String()
	}

	for _, turn := range history.Turns {
		t := turn
		b.WriteString(fmt.Sprintf("Game %d, turn %d: %s\n", t.Game, t.TurnNumber, formatTurnLine(&t)))
	}

	return b.String()
}

func formatResults(list []*results.Result) string {
	if len(list) == 0 {
		return "No finished games yet"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Finished Games (%d):\n\n", len(list)))
	for _, r := range list {
		outcome := fmt.Sprintf("winner player %d", r.WinnerID)
		if r.Tie {
			outcome = "tie"
		}
		scores := make([]string, 0, len(r.Players))
		for _, p := range r.Players {
			scores = append(scores, fmt.Sprintf("%s %d", p.Name, p.Score))
		}
		b.WriteString(fmt.Sprintf("- %s [%s] session %s, %s, top %d (%s), %d turns, %s\n",
			r.ID, r.ConfigName, r.SessionID, outcome, r.TopScore,
			strings.Join(scores, ", "), r.Turns, r.FinishedAt.Format("2006-01-02 15:04")))
	}
	return b.String()
}
