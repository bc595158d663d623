// Package harness runs recovery scenarios.
//
// A scenario is a YAML file holding a small inline curriculum, the owner a
// snapshot is expected to belong to, the raw snapshot text as it might be
// found in storage, and assertions about what recovery must produce.
//
// Each scenario runs end to end against a fresh in-memory store: the text
// is imported verbatim, loaded through the tolerant path, and the repaired
// snapshot is then saved through the intolerant path. A repaired snapshot
// that the save path refuses is always a failure, whatever the assertions
// say.
//
// Golden files hold the canonical JSON of the scenario's report (the
// repaired snapshot, the sections that needed repair and the two validity
// flags). Regenerate them with:
//
//	go test ./internal/harness -update
package harness
