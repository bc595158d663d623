package curriculum

import (
	"errors"
	"fmt"
)

// Load error codes. They share the E0xx space used by the CLI.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeScanError     = "E002" // Directory scan error
	ErrCodeNoFiles       = "E003" // No curriculum files found
	ErrCodeParseFailed   = "E004" // YAML or CUE parse failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeDuplicateID   = "E201" // Entity or domain id defined twice
	ErrCodeTypeConflict  = "E202" // Component id defined with two types
	ErrCodeInvalidEntity = "E203" // Missing or reserved id, empty type
)

// LoadError describes a curriculum that could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Path    string // file the error came from, if any
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsTypeConflict reports whether err is a component type conflict.
func IsTypeConflict(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == ErrCodeTypeConflict
}

// IsDuplicateID reports whether err is a duplicate entity or domain id.
func IsDuplicateID(err error) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Code == ErrCodeDuplicateID
}
