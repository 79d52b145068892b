package syncer

import (
	"time"

	"github.com/jim60105/subx-cli-sub001/internal/subtitles"
	"github.com/jim60105/subx-cli-sub001/internal/vad"
)

// AudioInfo summarizes the decoded source for reporting. ChannelCount is
// always 1 after transcoding; it is zero when the manual method skipped
// decoding entirely.
type AudioInfo struct {
	SampleRate      uint32
	ChannelCount    int
	DurationSeconds float64
}

// Result is the only artifact that outlives a pipeline run. It is created
// once per invocation and immutable after construction.
type Result struct {
	// OffsetSeconds is the applied correction. Meaningless when
	// OffsetUnavailable is set.
	OffsetSeconds float64

	// Clamped reports that the raw offset exceeded the bounds and the
	// applied value was capped. Advisory, not an error.
	Clamped bool

	// OffsetUnavailable reports that detection found no speech; no shift
	// was applied and ShiftedCues is nil.
	OffsetUnavailable bool

	// Segments holds the detected speech intervals (nil for manual runs).
	Segments []vad.Segment

	// ShiftedCues is the corrected cue sequence; the request's cues are
	// never mutated.
	ShiftedCues []subtitles.Cue

	ProcessingDuration time.Duration
	AudioInfo          AudioInfo
	Method             string

	// Trace records the stages the run passed through, in order.
	Trace []Stage
}
