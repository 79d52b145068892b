package vad

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jim60105/subx-cli-sub001/internal/pcm"
)

// ErrVADInit marks a detector that cannot be constructed for the given
// sample rate.
var ErrVADInit = errors.New("vad init failure")

// minSampleRate is the lowest rate the energy model accepts; below that a
// chunk holds too little signal to score.
const minSampleRate = 8000

// absoluteFloor is the minimum normalized RMS a chunk must carry to ever
// count as speech. It keeps all-silence buffers from producing segments
// when the adaptive threshold collapses to zero.
const absoluteFloor = 0.008

// absoluteSpeechLevel caps the adaptive threshold. A chunk above this RMS
// (about -26 dBFS) always counts as speech, so a buffer of near-uniform
// dialogue is not scored against its own level and classified as silence.
const absoluteSpeechLevel = 0.05

// ChunkSize returns the classification chunk length in samples:
// max(rate/16, 1024). The ratio keeps chunk duration near 62.5 ms at any
// rate; the floor stops low rates from producing degenerate frames.
func ChunkSize(sampleRate uint32) int {
	size := int(sampleRate / 16)
	if size < 1024 {
		size = 1024
	}
	return size
}

// Detector scores fixed-size chunks against an adaptive energy threshold
// and shapes the results into speech segments. A detector is built for
// one sample rate and holds no mutable state, so it is safe to reuse
// across buffers at that rate.
type Detector struct {
	sampleRate uint32
	chunkSize  int
	tuning     Tuning
}

// NewDetector builds a detector for the given sample rate. Disabled
// tuning is rejected outright; unusable sample rates fail with ErrVADInit.
func NewDetector(sampleRate uint32, tuning Tuning) (*Detector, error) {
	if !tuning.Enabled {
		return nil, errors.New("vad disabled by tuning")
	}
	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	if sampleRate < minSampleRate {
		return nil, fmt.Errorf("%w: sample rate %d Hz below minimum %d Hz", ErrVADInit, sampleRate, minSampleRate)
	}
	return &Detector{
		sampleRate: sampleRate,
		chunkSize:  ChunkSize(sampleRate),
		tuning:     tuning,
	}, nil
}

// Detect classifies the buffer and returns ascending, non-overlapping
// speech segments in seconds. An empty result is not an error; it means
// no chunk scored above threshold. The context is checked periodically
// during scoring so an expired deadline interrupts long buffers.
func (d *Detector) Detect(ctx context.Context, buf *pcm.Buffer) ([]Segment, error) {
	if buf.Len() == 0 {
		return nil, nil
	}

	energies, err := chunkEnergies(ctx, buf.Samples, d.chunkSize)
	if err != nil {
		return nil, err
	}
	threshold := d.threshold(energies)

	flags := make([]bool, len(energies))
	for i, e := range energies {
		flags[i] = e > threshold
	}

	runs := speechRuns(flags)
	runs = padRuns(runs, int(d.tuning.PaddingChunks), len(flags))

	chunkDur := float64(d.chunkSize) / float64(d.sampleRate)
	minDur := float64(d.tuning.MinSpeechDurationMS) / 1000.0

	segments := make([]Segment, 0, len(runs))
	for _, r := range runs {
		seg := Segment{
			Start: float64(r.start) * chunkDur,
			End:   float64(r.end) * chunkDur,
		}
		if seg.Duration() < minDur {
			continue
		}
		segments = append(segments, seg)
	}

	return MergeSegments(segments, float64(d.tuning.SpeechMergeGapMS)/1000.0), nil
}

// threshold derives the speech decision level for one buffer. The noise
// floor and speech ceiling come from RMS percentiles; sensitivity slides
// the cut between them, with higher sensitivity meaning a lower bar. The
// result is clamped to [absoluteFloor, absoluteSpeechLevel] so the
// relative model degrades sanely on all-silence and all-speech buffers.
func (d *Detector) threshold(energies []float64) float64 {
	floor := percentile(energies, 20)
	ceiling := percentile(energies, 95)
	span := ceiling - floor
	if span < 0 {
		span = 0
	}
	sensitivity := float64(d.tuning.Sensitivity)
	thr := floor + span*(1-sensitivity)
	if thr > absoluteSpeechLevel {
		thr = absoluteSpeechLevel
	}
	if thr < absoluteFloor {
		thr = absoluteFloor
	}
	return thr
}

// chunkEnergies computes normalized RMS per chunk. The trailing partial
// chunk is scored over the samples it actually holds. The context is
// consulted every ctxCheckInterval chunks.
func chunkEnergies(ctx context.Context, samples []int16, chunkSize int) ([]float64, error) {
	const ctxCheckInterval = 256

	count := (len(samples) + chunkSize - 1) / chunkSize
	energies := make([]float64, 0, count)
	for start := 0; start < len(samples); start += chunkSize {
		if len(energies)%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		end := start + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		var sum float64
		for _, s := range samples[start:end] {
			v := float64(s) / 32768.0
			sum += v * v
		}
		energies = append(energies, math.Sqrt(sum/float64(end-start)))
	}
	return energies, nil
}

func percentile(values []float64, p int) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Round(float64(p) / 100.0 * float64(len(sorted)-1)))
	return sorted[idx]
}
