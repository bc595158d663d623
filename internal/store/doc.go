// Package store provides SQLite-backed durable storage for progress
// snapshots and their integrity reports.
//
// The store is deliberately dumb about snapshot contents: bodies are kept
// verbatim as text and never parsed here. Validation happens in the keeper,
// which runs every body through the integrity engine on the way in and on
// the way out.
//
// # Tables
//
//   - snapshots: append-only, per-owner seq; the highest seq is current
//   - recovery_reports: one row per load or save enforcement
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Writes that fail with a transient SQLite error (busy, locked, short read)
// are retried with exponential backoff; see retry.go.
//
// Record ids are UUIDv7 so that id order follows insertion time.
package store
