// Package progress defines the persisted learning-progress snapshot and the
// report types produced when a snapshot is checked and repaired.
//
// A Snapshot is the complete state for one learner:
//   - Metadata: the owner identity
//   - OverallProgress: lesson completions, domain completions, streak, counters
//   - Settings: a fixed set of user preferences, each with its last-changed time
//   - NavigationState: where the learner currently is
//   - ComponentProgress: per-component progress records
//
// Every schema field declares exactly one merge Strategy. The strategies are
// consumed by the multi-device merge executor, which lives outside this module;
// here they are part of the data model and are validated exhaustively.
//
// All timestamps are int64 milliseconds since the Unix epoch. 0 means "never".
package progress
