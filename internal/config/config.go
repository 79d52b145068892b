package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jim60105/subx-cli-sub001/internal/syncer"
	"github.com/jim60105/subx-cli-sub001/internal/vad"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// Tools names the external binaries the decode path shells out to.
type Tools struct {
	FFmpegBin  string `toml:"ffmpeg_bin"`
	FFprobeBin string `toml:"ffprobe_bin"`
}

// VAD contains the speech-detection knobs.
type VAD struct {
	Enabled             bool    `toml:"enabled"`
	Sensitivity         float32 `toml:"sensitivity"`
	PaddingChunks       uint32  `toml:"padding_chunks"`
	MinSpeechDurationMS uint32  `toml:"min_speech_duration_ms"`
	SpeechMergeGapMS    uint32  `toml:"speech_merge_gap_ms"`
}

// Sync contains offset bounds and the per-request processing timeout.
type Sync struct {
	MaxOffsetSeconds float64 `toml:"max_offset_seconds"`
	TimeoutSeconds   int     `toml:"timeout_seconds"`
}

// Batch contains batch-mode scheduling configuration.
type Batch struct {
	Workers int `toml:"workers"`
}

// Log contains logging configuration.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Paths Paths `toml:"paths"`
	Tools Tools `toml:"tools"`
	VAD   VAD   `toml:"vad"`
	Sync  Sync  `toml:"sync"`
	Batch Batch `toml:"batch"`
	Log   Log   `toml:"log"`
}

// Default returns the stock configuration.
func Default() *Config {
	tuning := vad.DefaultTuning()
	return &Config{
		Paths: Paths{},
		Tools: Tools{FFmpegBin: "ffmpeg", FFprobeBin: "ffprobe"},
		VAD: VAD{
			Enabled:             tuning.Enabled,
			Sensitivity:         tuning.Sensitivity,
			PaddingChunks:       tuning.PaddingChunks,
			MinSpeechDurationMS: tuning.MinSpeechDurationMS,
			SpeechMergeGapMS:    tuning.SpeechMergeGapMS,
		},
		Sync:  Sync{MaxOffsetSeconds: 60, TimeoutSeconds: 300},
		Batch: Batch{Workers: 4},
		Log:   Log{Level: "info", Format: "console"},
	}
}

// DefaultPath returns the conventional configuration file location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "subx", "config.toml"), nil
}

// Load reads the configuration file at path, or the default location when
// path is empty. A missing file yields the defaults with exists=false.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved = strings.TrimSpace(path)
	if resolved == "" {
		resolved, err = DefaultPath()
		if err != nil {
			return nil, "", false, err
		}
	}

	cfg = Default()
	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, resolved, false, nil
		}
		return nil, resolved, false, fmt.Errorf("read config %q: %w", resolved, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, resolved, true, fmt.Errorf("parse config %q: %w", resolved, err)
	}
	cfg.normalize()
	return cfg, resolved, true, nil
}

// WriteSample writes the embedded sample configuration to path, refusing
// to overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %q already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// EnsureDirectories creates the configured work and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure directory %q: %w", dir, err)
		}
	}
	return nil
}

// Tuning converts the VAD section into the immutable value struct the
// detector consumes.
func (c *Config) Tuning() vad.Tuning {
	return vad.Tuning{
		Enabled:             c.VAD.Enabled,
		Sensitivity:         c.VAD.Sensitivity,
		PaddingChunks:       c.VAD.PaddingChunks,
		MinSpeechDurationMS: c.VAD.MinSpeechDurationMS,
		SpeechMergeGapMS:    c.VAD.SpeechMergeGapMS,
	}
}

// Bounds converts the sync section into the offset cap value struct.
func (c *Config) Bounds() syncer.Bounds {
	return syncer.Bounds{MaxOffsetSeconds: c.Sync.MaxOffsetSeconds}
}

func (c *Config) normalize() {
	c.Paths.WorkDir = expandHome(strings.TrimSpace(c.Paths.WorkDir))
	c.Paths.LogDir = expandHome(strings.TrimSpace(c.Paths.LogDir))
	c.Tools.FFmpegBin = strings.TrimSpace(c.Tools.FFmpegBin)
	c.Tools.FFprobeBin = strings.TrimSpace(c.Tools.FFprobeBin)
	if c.Tools.FFmpegBin == "" {
		c.Tools.FFmpegBin = "ffmpeg"
	}
	if c.Tools.FFprobeBin == "" {
		c.Tools.FFprobeBin = "ffprobe"
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
