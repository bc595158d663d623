// Package keeper is the caller side of the integrity contract.
//
// Load is tolerant: whatever is stored is passed through the engine and
// only the repaired snapshot is handed out, with the report recorded for
// later inspection. Save is intolerant: a snapshot assembled by the
// application is run through the engine again and any repair at all means
// the state managers produced bad data, so the save is refused with an
// *ImperfectSaveError and nothing is written.
package keeper
