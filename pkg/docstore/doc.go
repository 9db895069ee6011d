// Package docstore provides the typed document model and the team-scoped
// Redis store behind roster.
//
// # Overview
//
// A team shares a small set of JSON documents: one availability grid per
// week, a note per scope, a link list and a team name. Each document lives
// under a DocumentKey whose family fixes the value shape:
//
//	schedule:<monday>   WeekAvailability
//	notes:<scope>       Note (scope is "shared" or a participant)
//	team:name           TeamName
//	resources           ResourceList
//
// Values cross the wire through EncodeValue/DecodeValue, which reject a
// value whose shape does not match its key.
//
// # Redis Schema
//
// Documents: roster:{team}:doc:{document_key} (string, JSON value)
// Change feed: roster:{team}:doc_events (Pub/Sub, JSON Event)
//
// PutDoc stores the value and publishes an Event carrying it in a single
// MULTI/EXEC. Every subscriber, the writer included, receives the event.
// Writes are whole-document upserts; last writer wins.
//
// # Usage Example
//
//	client, err := docstore.NewClient(&redis.Options{Addr: "localhost:6379"}, "team-a")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	key := docstore.ScheduleKey("2025-09-29")
//	week := docstore.WeekAvailability{}.With("alex", "2025-10-01", docstore.StatusYes)
//	raw, err := docstore.EncodeValue(key, week)
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = client.PutDoc(ctx, key, raw)
package docstore
