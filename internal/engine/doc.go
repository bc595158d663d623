// Package engine implements progress integrity enforcement and recovery.
//
// Enforce takes untrusted snapshot text, the owner the caller expects, and
// the current curriculum, and returns a snapshot that is guaranteed valid
// together with a report of everything that had to be repaired.
//
// PIPELINE:
//
//  1. Parse: decode the text. Unreadable input short-circuits to a fully
//     defaulted snapshot with an owner-mismatch critical failure.
//  2. Repair: five independent section repairers (metadata, overall
//     progress, settings, navigation, component progress). Each returns its
//     repaired value and its own metrics; none shares state with another.
//  3. Aggregate: fold section outputs into one EnforcementResult and decide
//     PerfectlyValid, which holds only if no section repaired anything and
//     no critical failure was recorded.
//
// CRITICAL PATTERNS:
//
// Purity: Enforce performs no I/O, holds no state between calls, never
// mutates its inputs, and never returns a value aliasing its inputs. It is
// safe to call concurrently.
//
// Corruption vs drift: counters lost to partial writes are detected before
// curriculum reconciliation, over the unfiltered entries, and the two are
// reported independently.
//
// Errors: malformed data is never an error. Only caller bugs (an empty
// curriculum, a missing collaborator) return a *PreconditionError, and they
// do so before the input is looked at.
package engine
