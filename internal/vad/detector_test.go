package vad_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/jim60105/subx-cli-sub001/internal/pcm"
	"github.com/jim60105/subx-cli-sub001/internal/testsupport"
	"github.com/jim60105/subx-cli-sub001/internal/vad"
)

func detect(t *testing.T, d *vad.Detector, buf *pcm.Buffer) []vad.Segment {
	t.Helper()
	segments, err := d.Detect(context.Background(), buf)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	return segments
}

func TestChunkSize(t *testing.T) {
	cases := []struct {
		rate uint32
		want int
	}{
		{8000, 1024},
		{16000, 1024},
		{22050, 1378},
		{44100, 2756},
		{48000, 3000},
	}
	for _, tc := range cases {
		if got := vad.ChunkSize(tc.rate); got != tc.want {
			t.Fatalf("ChunkSize(%d): got %d want %d", tc.rate, got, tc.want)
		}
	}
}

func TestNewDetectorRejectsLowSampleRate(t *testing.T) {
	for _, rate := range []uint32{0, 4000, 7999} {
		_, err := vad.NewDetector(rate, vad.DefaultTuning())
		if !errors.Is(err, vad.ErrVADInit) {
			t.Fatalf("rate %d: expected ErrVADInit, got %v", rate, err)
		}
	}
	if _, err := vad.NewDetector(8000, vad.DefaultTuning()); err != nil {
		t.Fatalf("rate 8000 must construct: %v", err)
	}
}

func TestNewDetectorRejectsDisabledTuning(t *testing.T) {
	tuning := vad.DefaultTuning()
	tuning.Enabled = false
	if _, err := vad.NewDetector(16000, tuning); err == nil {
		t.Fatal("expected error for disabled tuning")
	}
}

func TestDetectSilenceYieldsNoSegments(t *testing.T) {
	detector, err := vad.NewDetector(16000, vad.DefaultTuning())
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	buf := testsupport.SpeechBuffer(16000, 10, 0, 0) // all silence
	if segments := detect(t, detector, buf); len(segments) != 0 {
		t.Fatalf("expected no segments in silence, got %d", len(segments))
	}
}

func TestDetectFindsSpeechBurst(t *testing.T) {
	tuning := vad.DefaultTuning()
	tuning.PaddingChunks = 0
	detector, err := vad.NewDetector(16000, tuning)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	buf := testsupport.SpeechBuffer(16000, 10, 2.5, 4.0)
	segments := detect(t, detector, buf)
	if len(segments) != 1 {
		t.Fatalf("expected a single segment, got %d: %v", len(segments), segments)
	}
	seg := segments[0]
	if math.Abs(seg.Start-2.5) > 0.15 {
		t.Fatalf("segment start %f too far from 2.5", seg.Start)
	}
	if math.Abs(seg.End-4.0) > 0.15 {
		t.Fatalf("segment end %f too far from 4.0", seg.End)
	}
	if seg.Start >= seg.End {
		t.Fatalf("segment must have positive duration: %+v", seg)
	}
}

func TestDetectPaddingExtendsRuns(t *testing.T) {
	base := vad.DefaultTuning()
	base.PaddingChunks = 0
	padded := vad.DefaultTuning()
	padded.PaddingChunks = 3

	buf := testsupport.SpeechBuffer(16000, 10, 2.5, 4.0)
	chunkDur := float64(vad.ChunkSize(16000)) / 16000.0

	d0, err := vad.NewDetector(16000, base)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	d3, err := vad.NewDetector(16000, padded)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	bare := detect(t, d0, buf)
	wide := detect(t, d3, buf)
	if len(bare) != 1 || len(wide) != 1 {
		t.Fatalf("expected single segments, got %d and %d", len(bare), len(wide))
	}
	wantStart := bare[0].Start - 3*chunkDur
	wantEnd := bare[0].End + 3*chunkDur
	if math.Abs(wide[0].Start-wantStart) > 1e-9 {
		t.Fatalf("padded start: got %f want %f", wide[0].Start, wantStart)
	}
	if math.Abs(wide[0].End-wantEnd) > 1e-9 {
		t.Fatalf("padded end: got %f want %f", wide[0].End, wantEnd)
	}
}

func TestDetectDropsShortRuns(t *testing.T) {
	tuning := vad.DefaultTuning()
	tuning.PaddingChunks = 0
	tuning.MinSpeechDurationMS = 500
	detector, err := vad.NewDetector(16000, tuning)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	// One chunk (~64 ms) of tone is below the 500 ms floor.
	buf := testsupport.SpeechBuffer(16000, 10, 5.0, 5.06)
	if segments := detect(t, detector, buf); len(segments) != 0 {
		t.Fatalf("expected blip to be discarded as noise, got %v", segments)
	}
}

func TestDetectMergesCloseRuns(t *testing.T) {
	buf := testsupport.SpeechBuffer(16000, 10, 2.0, 2.5)
	burst := testsupport.Tone(16000, 0.5, 440, 0.5)
	offset := int(16000 * 2.8)
	copy(buf.Samples[offset:], burst)

	narrow := vad.DefaultTuning()
	narrow.PaddingChunks = 0
	narrow.SpeechMergeGapMS = 100
	wide := narrow
	wide.SpeechMergeGapMS = 500

	dNarrow, err := vad.NewDetector(16000, narrow)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	dWide, err := vad.NewDetector(16000, wide)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	if segments := detect(t, dNarrow, buf); len(segments) != 2 {
		t.Fatalf("100ms merge gap must keep the bursts apart, got %v", segments)
	}
	if segments := detect(t, dWide, buf); len(segments) != 1 {
		t.Fatalf("500ms merge gap must coalesce the bursts, got %v", segments)
	}
}

func TestDetectContinuousSpeech(t *testing.T) {
	tuning := vad.DefaultTuning()
	tuning.PaddingChunks = 0
	detector, err := vad.NewDetector(16000, tuning)
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}

	// Tone for the whole buffer: every chunk carries the same energy, so
	// a purely self-relative threshold would see no contrast at all.
	buf := &pcm.Buffer{Samples: testsupport.Tone(16000, 10, 440, 0.5), SampleRate: 16000}
	segments := detect(t, detector, buf)
	if len(segments) != 1 {
		t.Fatalf("wall-to-wall speech must yield one segment, got %v", segments)
	}
	if segments[0].Start > 0.1 || segments[0].End < 9.9 {
		t.Fatalf("segment must span the whole buffer: %+v", segments[0])
	}
}

func TestDetectHonorsCancelledContext(t *testing.T) {
	detector, err := vad.NewDetector(16000, vad.DefaultTuning())
	if err != nil {
		t.Fatalf("NewDetector: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = detector.Detect(ctx, testsupport.SpeechBuffer(16000, 10, 2.5, 4.0))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestMergeSegmentsIsIdempotent(t *testing.T) {
	input := []vad.Segment{
		{Start: 0.0, End: 1.0},
		{Start: 1.05, End: 2.0},
		{Start: 3.0, End: 3.5},
		{Start: 3.55, End: 4.0},
		{Start: 9.0, End: 9.5},
	}
	once := vad.MergeSegments(input, 0.2)
	twice := vad.MergeSegments(once, 0.2)

	if len(once) != 3 {
		t.Fatalf("expected 3 merged segments, got %v", once)
	}
	if len(twice) != len(once) {
		t.Fatalf("merge not idempotent: %v vs %v", once, twice)
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("merge not a fixed point at %d: %+v vs %+v", i, once[i], twice[i])
		}
	}
}

func TestMergeSegmentsKeepsOrderingInvariant(t *testing.T) {
	input := []vad.Segment{
		{Start: 0.0, End: 1.0},
		{Start: 1.1, End: 2.0},
		{Start: 2.05, End: 2.5},
	}
	merged := vad.MergeSegments(input, 0.2)
	for i := 1; i < len(merged); i++ {
		if merged[i].Start <= merged[i-1].End {
			t.Fatalf("segments overlap after merge: %+v", merged)
		}
	}
	for _, seg := range merged {
		if seg.Start >= seg.End {
			t.Fatalf("degenerate segment after merge: %+v", seg)
		}
	}
}

func TestTuningValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*vad.Tuning)
		valid  bool
	}{
		{"defaults", func(*vad.Tuning) {}, true},
		{"sensitivity low", func(tu *vad.Tuning) { tu.Sensitivity = -0.1 }, false},
		{"sensitivity high", func(tu *vad.Tuning) { tu.Sensitivity = 1.1 }, false},
		{"padding too large", func(tu *vad.Tuning) { tu.PaddingChunks = 11 }, false},
		{"padding at cap", func(tu *vad.Tuning) { tu.PaddingChunks = 10 }, true},
		{"min speech too large", func(tu *vad.Tuning) { tu.MinSpeechDurationMS = 5001 }, false},
		{"merge gap too large", func(tu *vad.Tuning) { tu.SpeechMergeGapMS = 2001 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tuning := vad.DefaultTuning()
			tc.mutate(&tuning)
			err := tuning.Validate()
			if tc.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
