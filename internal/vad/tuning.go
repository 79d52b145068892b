package vad

import "fmt"

// Bounds enforced on Tuning fields.
const (
	MaxPaddingChunks       = 10
	MaxMinSpeechDurationMS = 5000
	MaxSpeechMergeGapMS    = 2000
)

// Tuning carries the detection knobs. Values are immutable once
// constructed; the configuration layer validates and hands them in.
type Tuning struct {
	Enabled             bool
	Sensitivity         float32
	PaddingChunks       uint32
	MinSpeechDurationMS uint32
	SpeechMergeGapMS    uint32
}

// DefaultTuning returns the stock detection knobs.
func DefaultTuning() Tuning {
	return Tuning{
		Enabled:             true,
		Sensitivity:         0.75,
		PaddingChunks:       3,
		MinSpeechDurationMS: 100,
		SpeechMergeGapMS:    200,
	}
}

// Validate checks every field against its documented range.
func (t Tuning) Validate() error {
	if t.Sensitivity < 0 || t.Sensitivity > 1 {
		return fmt.Errorf("vad sensitivity %.3f out of range [0.0, 1.0]", t.Sensitivity)
	}
	if t.PaddingChunks > MaxPaddingChunks {
		return fmt.Errorf("vad padding_chunks %d exceeds maximum %d", t.PaddingChunks, MaxPaddingChunks)
	}
	if t.MinSpeechDurationMS > MaxMinSpeechDurationMS {
		return fmt.Errorf("vad min_speech_duration_ms %d exceeds maximum %d", t.MinSpeechDurationMS, MaxMinSpeechDurationMS)
	}
	if t.SpeechMergeGapMS > MaxSpeechMergeGapMS {
		return fmt.Errorf("vad speech_merge_gap_ms %d exceeds maximum %d", t.SpeechMergeGapMS, MaxSpeechMergeGapMS)
	}
	return nil
}
