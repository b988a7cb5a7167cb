// Package counter implements durable key to integer storage for the
// escalation counter.
//
// FileRepository keeps all counters in one protobuf JSON document and
// replaces it atomically on every write; SQLiteRepository keeps them in a
// single table. Open picks one according to configuration.
package counter
