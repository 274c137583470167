package domain

import "errors"

// ErrValidation is the root error for schema and invariant violations.
// Callers wrap it with a caller-fixable detail message.
var ErrValidation = errors.New("validation failed")
