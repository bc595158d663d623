package engine

import "github.com/roach88/tally/internal/progress"

// repairMetadata extracts the owner id. An absent or malformed owner adopts
// the expected one. A present but different owner is a critical failure;
// the expected id is used regardless.
func repairMetadata(root map[string]any, expectedOwner string) (progress.Metadata, progress.MetadataMetrics, *progress.OwnerMismatch) {
	out := progress.Metadata{OwnerID: expectedOwner}

	owner, ok := objectAt(root, "metadata")["owner_id"].(string)
	if !ok || owner == "" {
		return out, progress.MetadataMetrics{DefaultedRatio: 1.0}, nil
	}
	if owner != expectedOwner {
		found := owner
		return out, progress.MetadataMetrics{}, &progress.OwnerMismatch{Expected: expectedOwner, Found: &found}
	}
	return out, progress.MetadataMetrics{}, nil
}
