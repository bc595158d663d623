package keeper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/tally/internal/progress"
	"github.com/roach88/tally/internal/telemetry"
)

// ImperfectSaveError is returned by Save when the snapshot needed repair.
// It is a programming error in whatever assembled the snapshot, not a
// data problem, and callers should surface it rather than retry.
type ImperfectSaveError struct {
	OwnerID string
	Result  *progress.EnforcementResult
}

func (e *ImperfectSaveError) Error() string {
	var parts []string
	if e.Result != nil {
		if e.Result.CriticalFailures.OwnerMismatch != nil {
			parts = append(parts, "owner_mismatch")
		}
		parts = append(parts, telemetry.RepairedSections(e.Result.Metrics)...)
	}
	return fmt.Sprintf("IMPERFECT_SAVE: snapshot for %s needed repair before save (%s)", e.OwnerID, strings.Join(parts, ", "))
}

// IsImperfectSave returns true if err is or wraps an ImperfectSaveError.
func IsImperfectSave(err error) bool {
	var ise *ImperfectSaveError
	return errors.As(err, &ise)
}
