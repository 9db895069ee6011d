package docstore

import "fmt"

// Redis key pattern helpers
//
// All Redis keys and Pub/Sub channels are namespaced by team scope so that
// several teams can share one Redis server without seeing each other's
// documents or events.
//
// Key pattern: roster:{team}:doc:{document_key}
// Channel pattern: roster:{team}:doc_events

// DocKey returns the Redis key holding a document's current JSON value.
// Pattern: roster:{team}:doc:{document_key}
func DocKey(team string, key Key) string {
	return fmt.Sprintf("roster:%s:doc:%s", team, key)
}

// DocEventsChannel returns the Pub/Sub channel carrying document change events.
// Pattern: roster:{team}:doc_events
func DocEventsChannel(team string) string {
	return fmt.Sprintf("roster:%s:doc_events", team)
}
