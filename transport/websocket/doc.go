// Package websocket pushes game state to browsers and other watchers.
//
// Clients connect with a session ID (?sessionId=ab12) and receive JSON
// messages for that session only:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "turn_end", "data": {...}}
//
// Commands are not accepted over the socket; launching, stepping and
// settling go through the REST API or MCP tools.
//
// Snapshots from BroadcastToSession are delivered on the caller's goroutine,
// which lets the realtime loop publish at its tick rate without a queue in
// between. Events from BroadcastEvent are queued and delivered by Run; when
// the queue is full the event is dropped. A client whose send buffer is full
// is disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("sessionId"))
//	})
package websocket
