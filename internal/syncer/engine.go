package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jim60105/subx-cli-sub001/internal/pcm"
	"github.com/jim60105/subx-cli-sub001/internal/subtitles"
	"github.com/jim60105/subx-cli-sub001/internal/vad"
)

// Stage names one state of the engine's linear run.
type Stage int

const (
	StageIdle Stage = iota
	StageTranscoding
	StageDetecting
	StageCalculating
	StageApplying
	StageDone
	StageAborted
)

// String returns the stage name used in traces, logs and errors.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageTranscoding:
		return "transcoding"
	case StageDetecting:
		return "detecting"
	case StageCalculating:
		return "calculating"
	case StageApplying:
		return "applying"
	case StageDone:
		return "done"
	case StageAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// AudioDecoder supplies mono PCM buffers for the transcoding stage.
type AudioDecoder interface {
	DecodeToPCM(ctx context.Context, path string) (*pcm.Buffer, error)
}

// Request describes one synchronization: one audio source against one cue
// sequence. Tuning and Bounds arrive already validated from the
// configuration layer; the engine never reads configuration itself.
type Request struct {
	AudioPath string
	Cues      []subtitles.Cue
	Method    Method
	Tuning    vad.Tuning
	Bounds    Bounds
}

// Engine orchestrates the pipeline. It holds no per-request state, so one
// engine serves any number of concurrent requests.
type Engine struct {
	decoder      AudioDecoder
	log          *slog.Logger
	stageTimeout time.Duration
}

// Option adjusts engine construction.
type Option func(*Engine)

// WithStageTimeout caps the combined transcoding and detecting stages,
// the only stages that can run unboundedly long on pathological inputs.
// Zero means no cap.
func WithStageTimeout(d time.Duration) Option {
	return func(e *Engine) { e.stageTimeout = d }
}

// NewEngine builds an engine around the given decoder.
func NewEngine(decoder AudioDecoder, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Engine{decoder: decoder, log: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Synchronize runs one request through the stage machine and returns the
// corrected cue sequence plus diagnostics. Fatal conditions abort the run
// immediately with a stage-tagged error; a detection run with no speech
// succeeds with Result.OffsetUnavailable set and no shift applied.
func (e *Engine) Synchronize(ctx context.Context, req Request) (*Result, error) {
	started := time.Now()
	run := newRun(req.Method)

	if err := req.Bounds.Validate(); err != nil {
		return nil, run.abort(StageIdle, err)
	}

	if req.Method.IsManual() {
		return e.applyManual(run, req, started)
	}

	if !req.Tuning.Enabled {
		return nil, run.abort(StageIdle, errors.New("vad disabled by tuning; use the manual method"))
	}
	if _, ok := subtitles.FirstStart(req.Cues); !ok {
		return nil, run.abort(StageIdle, errors.New("subtitle has no cues"))
	}

	// One deadline spans the two unbounded stages.
	stageCtx := ctx
	cancel := context.CancelFunc(func() {})
	if e.stageTimeout > 0 {
		stageCtx, cancel = context.WithTimeout(ctx, e.stageTimeout)
	}

	run.advance(StageTranscoding)
	buf, err := e.decoder.DecodeToPCM(stageCtx, req.AudioPath)
	if err != nil {
		cancel()
		return nil, run.abort(StageTranscoding, err)
	}
	// The decoder may have ignored an expiring deadline; enforce it at
	// the stage boundary.
	if err := stageCtx.Err(); err != nil {
		cancel()
		return nil, run.abort(StageTranscoding, err)
	}
	info := AudioInfo{
		SampleRate:      buf.SampleRate,
		ChannelCount:    1,
		DurationSeconds: buf.Duration(),
	}

	run.advance(StageDetecting)
	detector, err := vad.NewDetector(buf.SampleRate, req.Tuning)
	if err != nil {
		cancel()
		return nil, run.abort(StageDetecting, err)
	}
	segments, err := detector.Detect(stageCtx, buf)
	cancel()
	if err != nil {
		return nil, run.abort(StageDetecting, err)
	}
	buf = nil // the buffer does not outlive detection
	e.log.Debug("speech detection finished",
		"path", req.AudioPath,
		"segments", len(segments),
		"sample_rate", info.SampleRate,
	)

	run.advance(StageCalculating)
	firstCue, _ := subtitles.FirstStart(req.Cues)
	offset, clamped, err := ComputeOffset(segments, firstCue, req.Bounds)
	if err != nil {
		if errors.Is(err, ErrOffsetUnavailable) {
			// Not fatal: the caller decides whether to fall back to a
			// manual offset. No shift is applied.
			run.advance(StageDone)
			return &Result{
				OffsetUnavailable:  true,
				Segments:           segments,
				ProcessingDuration: time.Since(started),
				AudioInfo:          info,
				Method:             req.Method.String(),
				Trace:              run.trace,
			}, nil
		}
		return nil, run.abort(StageCalculating, err)
	}

	run.advance(StageApplying)
	shifted := subtitles.Shift(req.Cues, offset)

	run.advance(StageDone)
	return &Result{
		OffsetSeconds:      offset,
		Clamped:            clamped,
		Segments:           segments,
		ShiftedCues:        shifted,
		ProcessingDuration: time.Since(started),
		AudioInfo:          info,
		Method:             req.Method.String(),
		Trace:              run.trace,
	}, nil
}

// applyManual takes the caller-supplied offset as-is, still subject to
// the clamp-and-flag policy, and skips the processing stages entirely.
func (e *Engine) applyManual(run *runState, req Request, started time.Time) (*Result, error) {
	offset, clamped := ClampOffset(req.Method.ManualOffset(), req.Bounds)

	run.advance(StageApplying)
	shifted := subtitles.Shift(req.Cues, offset)

	run.advance(StageDone)
	return &Result{
		OffsetSeconds:      offset,
		Clamped:            clamped,
		ShiftedCues:        shifted,
		ProcessingDuration: time.Since(started),
		Method:             req.Method.String(),
		Trace:              run.trace,
	}, nil
}

// runState tracks the linear stage progression of a single request.
type runState struct {
	current Stage
	trace   []Stage
	method  Method
}

func newRun(method Method) *runState {
	return &runState{current: StageIdle, trace: []Stage{StageIdle}, method: method}
}

func (r *runState) advance(next Stage) {
	r.current = next
	r.trace = append(r.trace, next)
}

// abort moves the run to the terminal aborted state and tags the error
// with the stage that originated it.
func (r *runState) abort(at Stage, err error) error {
	r.current = StageAborted
	r.trace = append(r.trace, StageAborted)
	return fmt.Errorf("sync %s (%s): %w", at, r.method, err)
}
