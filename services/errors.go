package services

import (
	"errors"
	"fmt"

	"football-analysis/store"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrDuplicatePrediction = errors.New("prediction already submitted for this match")
	ErrMatchNotSettled     = errors.New("match is not settled")
	ErrMatchClosed         = errors.New("match no longer accepts predictions")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("already exists")
)

// ValidationError reports malformed input on a single field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// lookupErr converts store misses into ErrNotFound naming what was looked up.
func lookupErr(what string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func conflictErr(what string, err error) error {
	if errors.Is(err, store.ErrDuplicate) {
		return fmt.Errorf("%s: %w", what, ErrConflict)
	}
	return err
}
