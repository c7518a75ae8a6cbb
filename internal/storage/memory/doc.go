// Package memory holds the process-local session store.
//
// Sessions are keyed by token hash in a sharded concurrent map, with a
// secondary username index for bulk revocation. Nothing here is
// persisted: the store starts empty and is discarded on restart.
//
// Every operation touches a single token entry and is atomic for that
// entry. There is no store-wide lock.
package memory
