package syncer

import (
	"errors"
	"fmt"

	"github.com/jim60105/subx-cli-sub001/internal/vad"
)

// ErrOffsetUnavailable marks a detection run that produced no speech
// segments. It is distinct from a zero-magnitude offset: zero is a valid
// correction, unavailable means no correction can be derived.
var ErrOffsetUnavailable = errors.New("offset unavailable: no speech detected")

// Bounds caps the magnitude of any applied correction.
type Bounds struct {
	MaxOffsetSeconds float64
}

// DefaultBounds returns the stock offset cap.
func DefaultBounds() Bounds {
	return Bounds{MaxOffsetSeconds: 60}
}

// Validate rejects non-positive caps.
func (b Bounds) Validate() error {
	if b.MaxOffsetSeconds <= 0 {
		return fmt.Errorf("max_offset_seconds %.3f must be positive", b.MaxOffsetSeconds)
	}
	return nil
}

// ComputeOffset derives the additive correction from the first detected
// speech segment and the first cue start. Empty segment lists yield
// ErrOffsetUnavailable; the caller must not apply any shift in that case.
func ComputeOffset(segments []vad.Segment, firstCueStart float64, bounds Bounds) (offset float64, clamped bool, err error) {
	if len(segments) == 0 {
		return 0, false, ErrOffsetUnavailable
	}
	raw := segments[0].Start - firstCueStart
	offset, clamped = ClampOffset(raw, bounds)
	return offset, clamped, nil
}

// ClampOffset restricts raw to ±bounds.MaxOffsetSeconds and reports
// whether clamping occurred. A clamped offset is still applied; the flag
// lets callers warn instead of failing outright on a misdetection.
func ClampOffset(raw float64, bounds Bounds) (float64, bool) {
	limit := bounds.MaxOffsetSeconds
	switch {
	case raw > limit:
		return limit, true
	case raw < -limit:
		return -limit, true
	default:
		return raw, false
	}
}
