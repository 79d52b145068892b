package batch_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jim60105/subx-cli-sub001/internal/batch"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("touch %s: %v", path, err)
	}
}

func TestDiscoverPairs(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b-episode.mkv"))
	touch(t, filepath.Join(dir, "b-episode.srt"))
	touch(t, filepath.Join(dir, "a-episode.mp4"))
	touch(t, filepath.Join(dir, "a-episode.vtt"))
	touch(t, filepath.Join(dir, "orphan.mkv")) // no subtitle
	touch(t, filepath.Join(dir, "loose.srt"))  // no media
	touch(t, filepath.Join(dir, "notes.txt"))
	if err := os.Mkdir(filepath.Join(dir, "season2.mkv"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	pairs, err := batch.DiscoverPairs(dir)
	if err != nil {
		t.Fatalf("DiscoverPairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d: %v", len(pairs), pairs)
	}
	// Deterministic order by media path.
	if filepath.Base(pairs[0].MediaPath) != "a-episode.mp4" {
		t.Fatalf("pairs unsorted: %v", pairs)
	}
	if filepath.Base(pairs[0].SubtitlePath) != "a-episode.vtt" {
		t.Fatalf("pair 0 subtitle wrong: %v", pairs[0])
	}
	if filepath.Base(pairs[1].SubtitlePath) != "b-episode.srt" {
		t.Fatalf("pair 1 subtitle wrong: %v", pairs[1])
	}
}

func TestDiscoverPairsPrefersSRT(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "movie.mkv"))
	touch(t, filepath.Join(dir, "movie.srt"))
	touch(t, filepath.Join(dir, "movie.vtt"))

	pairs, err := batch.DiscoverPairs(dir)
	if err != nil {
		t.Fatalf("DiscoverPairs: %v", err)
	}
	if len(pairs) != 1 || filepath.Base(pairs[0].SubtitlePath) != "movie.srt" {
		t.Fatalf("expected .srt to win: %v", pairs)
	}
}

func TestDiscoverPairsMissingDirectory(t *testing.T) {
	if _, err := batch.DiscoverPairs(filepath.Join(t.TempDir(), "gone")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestAcquireLockExcludesSecondHolder(t *testing.T) {
	dir := t.TempDir()
	release, err := batch.AcquireLock(dir)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}

	if _, err := batch.AcquireLock(dir); err == nil {
		t.Fatal("second lock on the same directory must fail")
	}

	release()
	release2, err := batch.AcquireLock(dir)
	if err != nil {
		t.Fatalf("lock must be reacquirable after release: %v", err)
	}
	release2()
}
