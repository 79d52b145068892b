// Package vad classifies PCM buffers into speech segments. Chunks sized
// from the sample rate are scored by an adaptive energy model, then the
// classifications run through padding, minimum-duration and merge passes
// to produce an ascending, non-overlapping segment list.
package vad
