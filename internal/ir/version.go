package ir

// Version constants for the snapshot format and engine.
const (
	// SchemaVersion is the snapshot wire format version.
	SchemaVersion = "1"

	// EngineVersion is the integrity engine version recorded with saved reports.
	EngineVersion = "0.1.0"
)
