// Package ir provides the loosely-typed value representation used for
// untrusted progress data, plus canonical JSON and content fingerprints.
//
// Snapshot text arrives from storage the engine does not control, so every
// value is first decoded into the sealed IRValue family before any section
// repairer looks at it. ir imports nothing internal; every other internal
// package may import it.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers and timestamps
//   - JSON null is rejected on conversion (a missing field is not a value)
//   - All JSON tags use snake_case
//   - Canonical JSON (RFC 8785) is the only input to fingerprinting
package ir
