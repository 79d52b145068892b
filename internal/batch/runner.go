package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/jim60105/subx-cli-sub001/internal/subtitles"
	"github.com/jim60105/subx-cli-sub001/internal/syncer"
	"github.com/jim60105/subx-cli-sub001/internal/vad"
)

// Synchronizer runs one synchronization request. Satisfied by
// *syncer.Engine.
type Synchronizer interface {
	Synchronize(ctx context.Context, req syncer.Request) (*syncer.Result, error)
}

// Outcome is the terminal state of one pair.
type Outcome struct {
	Pair   Pair
	Format subtitles.Format
	Result *syncer.Result
	Err    error
}

// Runner fans pairs out over a bounded worker pool. The engine is
// stateless, so requests share nothing and need no locking here.
type Runner struct {
	sync      Synchronizer
	workers   int
	log       *slog.Logger
	onOutcome func(Outcome)
	outcomeMu sync.Mutex
}

// NewRunner builds a runner; workers <= 0 uses the CPU count.
func NewRunner(s Synchronizer, workers int, logger *slog.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{sync: s, workers: workers, log: logger}
}

// OnOutcome registers a callback invoked once per finished pair, in
// completion order. Used for progress reporting.
func (r *Runner) OnOutcome(fn func(Outcome)) {
	r.onOutcome = fn
}

// Run synchronizes every pair and returns outcomes in the same order as
// the input. A fatal error on one pair is recorded in its outcome and
// leaves the siblings untouched.
func (r *Runner) Run(ctx context.Context, pairs []Pair, method syncer.Method, tuning vad.Tuning, bounds syncer.Bounds) []Outcome {
	outcomes := make([]Outcome, len(pairs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = r.runOne(ctx, pairs[idx], method, tuning, bounds)
				r.notify(outcomes[idx])
			}
		}()
	}

	for idx := range pairs {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			outcomes[idx] = Outcome{Pair: pairs[idx], Err: ctx.Err()}
			r.notify(outcomes[idx])
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func (r *Runner) runOne(ctx context.Context, pair Pair, method syncer.Method, tuning vad.Tuning, bounds syncer.Bounds) Outcome {
	outcome := Outcome{Pair: pair}

	cues, format, err := subtitles.ReadFile(pair.SubtitlePath)
	if err != nil {
		outcome.Err = fmt.Errorf("read %q: %w", pair.SubtitlePath, err)
		return outcome
	}
	outcome.Format = format

	result, err := r.sync.Synchronize(ctx, syncer.Request{
		AudioPath: pair.MediaPath,
		Cues:      cues,
		Method:    method,
		Tuning:    tuning,
		Bounds:    bounds,
	})
	if err != nil {
		outcome.Err = err
		r.log.Warn("batch item failed", "media", pair.MediaPath, "error", err)
		return outcome
	}
	outcome.Result = result
	return outcome
}

func (r *Runner) notify(outcome Outcome) {
	if r.onOutcome == nil {
		return
	}
	r.outcomeMu.Lock()
	defer r.outcomeMu.Unlock()
	r.onOutcome(outcome)
}
