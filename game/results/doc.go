// Package results archives finished bagatelle games.
//
// A Result is written once when a session's game reaches game_over. Two
// Store implementations are provided:
//   - FileStore: one JSON file per result in a local directory
//   - RedisStore: a JSON string per result plus a newest-first index list
//
// Usage:
//
//	store, err := results.NewFileStore("results")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	recent, err := store.List(ctx, 10)
//
// Results are a read-only archive. Live sessions are never restored from them.
package results
