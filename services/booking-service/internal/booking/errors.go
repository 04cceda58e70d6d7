package booking

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound        = errors.New("appointment not found")
	ErrInvalidDuration = errors.New("duration_minutes must be positive")
	ErrInvalidStatus   = errors.New("unknown appointment status")
)

// ConflictError reports an overlap with an existing pending or confirmed
// appointment. The conflicting id lets callers point users at the clash.
type ConflictError struct {
	ConflictingID string
	Start         time.Time
	End           time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot conflict with appointment %s (%s to %s)",
		e.ConflictingID,
		e.Start.Format(time.RFC3339),
		e.End.Format(time.RFC3339),
	)
}

func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
