package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jim60105/subx-cli-sub001/internal/batch"
	"github.com/jim60105/subx-cli-sub001/internal/subtitles"
	"github.com/jim60105/subx-cli-sub001/internal/syncer"
	"github.com/jim60105/subx-cli-sub001/internal/vad"
)

// fakeSynchronizer applies the request's manual offset without any audio
// processing, with an optional per-path failure.
type fakeSynchronizer struct {
	mu     sync.Mutex
	calls  []string
	failOn string
}

func (f *fakeSynchronizer) Synchronize(_ context.Context, req syncer.Request) (*syncer.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.AudioPath)
	f.mu.Unlock()

	if f.failOn != "" && filepath.Base(req.AudioPath) == f.failOn {
		return nil, errors.New("synthetic failure")
	}
	offset := req.Method.ManualOffset()
	return &syncer.Result{
		OffsetSeconds: offset,
		ShiftedCues:   subtitles.Shift(req.Cues, offset),
		Method:        req.Method.String(),
	}, nil
}

func writeSubtitle(t *testing.T, path string) {
	t.Helper()
	content := "1\n00:00:01,000 --> 00:00:02,000\nhi\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write subtitle: %v", err)
	}
}

func fixturePairs(t *testing.T, names ...string) []batch.Pair {
	t.Helper()
	dir := t.TempDir()
	pairs := make([]batch.Pair, 0, len(names))
	for _, name := range names {
		media := filepath.Join(dir, name+".mkv")
		sub := filepath.Join(dir, name+".srt")
		touch(t, media)
		writeSubtitle(t, sub)
		pairs = append(pairs, batch.Pair{MediaPath: media, SubtitlePath: sub})
	}
	return pairs
}

func TestRunnerProcessesAllPairsInOrder(t *testing.T) {
	pairs := fixturePairs(t, "a", "b", "c", "d")
	fake := &fakeSynchronizer{}
	runner := batch.NewRunner(fake, 2, nil)

	outcomes := runner.Run(context.Background(), pairs, syncer.ManualMethod(1.5), vad.DefaultTuning(), syncer.DefaultBounds())
	if len(outcomes) != len(pairs) {
		t.Fatalf("expected %d outcomes, got %d", len(pairs), len(outcomes))
	}
	for i, outcome := range outcomes {
		if outcome.Pair != pairs[i] {
			t.Fatalf("outcome %d out of order: %+v", i, outcome.Pair)
		}
		if outcome.Err != nil {
			t.Fatalf("outcome %d failed: %v", i, outcome.Err)
		}
		if outcome.Result.OffsetSeconds != 1.5 {
			t.Fatalf("outcome %d offset %f", i, outcome.Result.OffsetSeconds)
		}
		if outcome.Format != subtitles.FormatSRTFile {
			t.Fatalf("outcome %d format %v", i, outcome.Format)
		}
		if outcome.Result.ShiftedCues[0].Start != 2.5 {
			t.Fatalf("outcome %d cues not shifted: %+v", i, outcome.Result.ShiftedCues)
		}
	}
	if len(fake.calls) != len(pairs) {
		t.Fatalf("expected %d synchronizer calls, got %d", len(pairs), len(fake.calls))
	}
}

func TestRunnerIsolatesFailures(t *testing.T) {
	pairs := fixturePairs(t, "a", "b", "c")
	fake := &fakeSynchronizer{failOn: "b.mkv"}
	runner := batch.NewRunner(fake, 2, nil)

	outcomes := runner.Run(context.Background(), pairs, syncer.ManualMethod(1), vad.DefaultTuning(), syncer.DefaultBounds())
	if outcomes[0].Err != nil || outcomes[2].Err != nil {
		t.Fatalf("siblings of a failed pair must succeed: %v / %v", outcomes[0].Err, outcomes[2].Err)
	}
	if outcomes[1].Err == nil {
		t.Fatal("failing pair must carry its error")
	}
	if outcomes[1].Result != nil {
		t.Fatal("failed outcome must not carry a result")
	}
}

func TestRunnerRecordsUnreadableSubtitle(t *testing.T) {
	pairs := fixturePairs(t, "a")
	pairs = append(pairs, batch.Pair{
		MediaPath:    pairs[0].MediaPath,
		SubtitlePath: filepath.Join(t.TempDir(), "missing.srt"),
	})
	fake := &fakeSynchronizer{}
	runner := batch.NewRunner(fake, 1, nil)

	outcomes := runner.Run(context.Background(), pairs, syncer.ManualMethod(1), vad.DefaultTuning(), syncer.DefaultBounds())
	if outcomes[0].Err != nil {
		t.Fatalf("readable pair failed: %v", outcomes[0].Err)
	}
	if outcomes[1].Err == nil {
		t.Fatal("missing subtitle must surface in the outcome")
	}
	if len(fake.calls) != 1 {
		t.Fatalf("synchronizer must not run for unreadable pairs, got %d calls", len(fake.calls))
	}
}

func TestRunnerOnOutcomeSeesEveryPair(t *testing.T) {
	pairs := fixturePairs(t, "a", "b", "c")
	fake := &fakeSynchronizer{}
	runner := batch.NewRunner(fake, 3, nil)

	var mu sync.Mutex
	seen := map[string]bool{}
	runner.OnOutcome(func(o batch.Outcome) {
		mu.Lock()
		seen[o.Pair.MediaPath] = true
		mu.Unlock()
	})

	runner.Run(context.Background(), pairs, syncer.ManualMethod(0.5), vad.DefaultTuning(), syncer.DefaultBounds())
	if len(seen) != len(pairs) {
		t.Fatalf("callback saw %d of %d pairs", len(seen), len(pairs))
	}
}

func TestRunnerHonorsCancelledContext(t *testing.T) {
	pairs := fixturePairs(t, "a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := batch.NewRunner(&fakeSynchronizer{}, 1, nil)
	outcomes := runner.Run(ctx, pairs, syncer.ManualMethod(1), vad.DefaultTuning(), syncer.DefaultBounds())
	// Undispatched pairs carry the context error; a pair a worker already
	// grabbed may still finish.
	for i, outcome := range outcomes {
		if outcome.Err != nil && !errors.Is(outcome.Err, context.Canceled) {
			t.Fatalf("outcome %d: unexpected error %v", i, outcome.Err)
		}
	}
}
