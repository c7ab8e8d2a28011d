package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidListing  = errors.New("invalid listing")
	ErrConfirmRequired = errors.New("confirmation required")
)

// FieldError is a validation failure rendered against one form field,
// caught before anything is persisted.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string { return e.Field + ": " + e.Reason }

// ValidationError aggregates per-field failures for one submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	return "validation failed: " + e.Fields[0].Error()
}
