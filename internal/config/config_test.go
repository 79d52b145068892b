package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jim60105/subx-cli-sub001/internal/config"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	if cfg.Tools.FFmpegBin != "ffmpeg" || cfg.Tools.FFprobeBin != "ffprobe" {
		t.Fatalf("tool defaults wrong: %+v", cfg.Tools)
	}
	if !cfg.VAD.Enabled {
		t.Fatal("vad must default to enabled")
	}
	if cfg.Sync.MaxOffsetSeconds != 60 || cfg.Sync.TimeoutSeconds != 300 {
		t.Fatalf("sync defaults wrong: %+v", cfg.Sync)
	}
	if cfg.Batch.Workers != 4 {
		t.Fatalf("batch defaults wrong: %+v", cfg.Batch)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("missing file must report exists=false")
	}
	if resolved != path {
		t.Fatalf("resolved %q, want %q", resolved, path)
	}
	if cfg.Sync.MaxOffsetSeconds != 60 {
		t.Fatalf("missing file must yield defaults: %+v", cfg.Sync)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[vad]
sensitivity = 0.5
padding_chunks = 5

[sync]
max_offset_seconds = 30.0

[tools]
ffmpeg_bin = "  /opt/ffmpeg/bin/ffmpeg  "
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("exists must be true")
	}
	if cfg.VAD.Sensitivity != 0.5 || cfg.VAD.PaddingChunks != 5 {
		t.Fatalf("vad overlay wrong: %+v", cfg.VAD)
	}
	// Untouched values keep their defaults.
	if cfg.VAD.MinSpeechDurationMS != 100 || cfg.Sync.TimeoutSeconds != 300 {
		t.Fatalf("defaults lost during overlay: %+v %+v", cfg.VAD, cfg.Sync)
	}
	if cfg.Sync.MaxOffsetSeconds != 30 {
		t.Fatalf("sync overlay wrong: %+v", cfg.Sync)
	}
	if cfg.Tools.FFmpegBin != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("binary path not trimmed: %q", cfg.Tools.FFmpegBin)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[vad\nbroken"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := config.Default()
	cfg.VAD.Sensitivity = 1.5
	cfg.Sync.MaxOffsetSeconds = 0
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	msg := err.Error()
	for _, fragment := range []string{"sensitivity", "max_offset_seconds", "format"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("error must mention %q: %v", fragment, err)
		}
	}
}

func TestValidateBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		valid  bool
	}{
		{"merge gap at cap", func(c *config.Config) { c.VAD.SpeechMergeGapMS = 2000 }, true},
		{"merge gap over cap", func(c *config.Config) { c.VAD.SpeechMergeGapMS = 2001 }, false},
		{"min speech over cap", func(c *config.Config) { c.VAD.MinSpeechDurationMS = 5001 }, false},
		{"negative timeout", func(c *config.Config) { c.Sync.TimeoutSeconds = -1 }, false},
		{"zero timeout", func(c *config.Config) { c.Sync.TimeoutSeconds = 0 }, true},
		{"negative workers", func(c *config.Config) { c.Batch.Workers = -1 }, false},
		{"zero workers", func(c *config.Config) { c.Batch.Workers = 0 }, true},
		{"json log format", func(c *config.Config) { c.Log.Format = "json" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.valid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestTuningAndBoundsMapping(t *testing.T) {
	cfg := config.Default()
	cfg.VAD.Sensitivity = 0.6
	cfg.VAD.PaddingChunks = 2
	cfg.Sync.MaxOffsetSeconds = 45

	tuning := cfg.Tuning()
	if tuning.Sensitivity != 0.6 || tuning.PaddingChunks != 2 || !tuning.Enabled {
		t.Fatalf("tuning mapping wrong: %+v", tuning)
	}
	if bounds := cfg.Bounds(); bounds.MaxOffsetSeconds != 45 {
		t.Fatalf("bounds mapping wrong: %+v", bounds)
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subx", "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}

	// The sample must itself be valid, loadable configuration.
	cfg, _, exists, err := config.Load(path)
	if err != nil || !exists {
		t.Fatalf("load sample: %v (exists=%v)", err, exists)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample must validate: %v", err)
	}

	if err := config.WriteSample(path); err == nil {
		t.Fatal("WriteSample must refuse to overwrite")
	}
}
