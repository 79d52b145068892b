// Package syncer derives a time offset between detected speech and a
// subtitle's first cue and applies it to the whole cue sequence. The
// engine runs a linear stage machine (transcode, detect, calculate,
// apply) for the VAD method, or applies a caller-supplied offset directly
// for the manual method. Both paths share the clamp-and-flag bounds
// policy.
package syncer
