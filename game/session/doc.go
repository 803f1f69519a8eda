// Package session provides in-memory session management for the bagatelle game.
//
// Each session owns an independent engine built from the configuration it
// was created with. The manager handles:
//   - Thread-safe session storage and case-insensitive lookup
//   - Random 4-character hex session IDs
//   - Expiry of sessions that have not been touched for a while
//
// The manager's lock only guards the session map. Callers driving a
// session's engine take the session's own lock (service.Session.Lock).
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//	sessions := manager.List()
//	removed := manager.CleanupExpiredSessions(2 * time.Hour)
//
// Sessions are not persisted. Finished games are archived separately by the
// results package.
package session
