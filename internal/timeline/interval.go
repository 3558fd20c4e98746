package timeline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInterval marks a silence interval whose end does not lie
	// strictly after its start. This indicates malformed upstream data.
	ErrInvalidInterval = errors.New("invalid interval")

	// ErrNonPositiveDuration marks a total duration of zero or less.
	ErrNonPositiveDuration = errors.New("non-positive duration")
)

// Interval is a time range on the source timeline, in seconds.
// Both silence intervals and keep ranges use this representation.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Length returns the interval length in seconds.
func (iv Interval) Length() float64 {
	return iv.End - iv.Start
}

// validateSilences rejects any interval with end <= start.
func validateSilences(silences []Interval) error {
	for i, iv := range silences {
		if iv.End <= iv.Start {
			return fmt.Errorf("%w: silence %d has start %.3f and end %.3f", ErrInvalidInterval, i, iv.Start, iv.End)
		}
	}
	return nil
}
