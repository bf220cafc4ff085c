// Package store provides a SQLite-backed journal of tracking events.
//
// The journal is append-only: one row per TrackEvent call, ordered by a
// logical sequence number (never by wall-clock time). Properties are stored
// as RFC 8785 canonical JSON so that identical events produce identical rows.
//
// Only events are persisted. Projects themselves live in memory and are not
// written here.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - user_version: Schema migration tracking
package store
