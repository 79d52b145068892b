package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jim60105/subx-cli-sub001/internal/journal"
	"github.com/jim60105/subx-cli-sub001/internal/syncer"
	"github.com/jim60105/subx-cli-sub001/internal/vad"
)

const timePrecision = 10 * time.Millisecond

func contextWithTimeout(parent context.Context, seconds int) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, time.Duration(seconds)*time.Second)
}

// journalDir picks where the sync-run journal lives: the configured log
// directory when set, the user cache directory otherwise.
func journalDir(ctx *commandContext) (string, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	if cfg.Paths.LogDir != "" {
		return cfg.Paths.LogDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(base, "subx"), nil
}

// buildRecord maps one run outcome onto a journal record.
func buildRecord(media, subtitle string, method syncer.Method, result *syncer.Result, runErr error, dryRun bool) journal.Record {
	rec := journal.Record{
		MediaPath:    media,
		SubtitlePath: subtitle,
		Method:       method.String(),
	}
	switch {
	case runErr != nil:
		rec.Status = journal.StatusFailed
		rec.ErrorMessage = runErr.Error()
	case result.OffsetUnavailable:
		rec.Status = journal.StatusUnavailable
		rec.SegmentCount = len(result.Segments)
		rec.SampleRate = result.AudioInfo.SampleRate
		rec.DurationMS = result.ProcessingDuration.Milliseconds()
	default:
		rec.Status = journal.StatusApplied
		if dryRun {
			rec.Status = journal.StatusDryRun
		}
		rec.OffsetSeconds = result.OffsetSeconds
		rec.Clamped = result.Clamped
		rec.SegmentCount = len(result.Segments)
		rec.SampleRate = result.AudioInfo.SampleRate
		rec.DurationMS = result.ProcessingDuration.Milliseconds()
	}
	return rec
}

type segmentJSON struct {
	Start float64 `json:"start_seconds"`
	End   float64 `json:"end_seconds"`
}

type resultJSON struct {
	Media             string        `json:"media"`
	Subtitle          string        `json:"subtitle,omitempty"`
	Method            string        `json:"method"`
	OffsetSeconds     float64       `json:"offset_seconds"`
	Clamped           bool          `json:"clamped"`
	OffsetUnavailable bool          `json:"offset_unavailable"`
	SegmentCount      int           `json:"segment_count"`
	Segments          []segmentJSON `json:"segments,omitempty"`
	SampleRate        uint32        `json:"sample_rate"`
	DurationSeconds   float64       `json:"duration_seconds"`
	ProcessingMS      int64         `json:"processing_ms"`
}

func printResultJSON(cmd *cobra.Command, media, subtitle string, result *syncer.Result) error {
	payload := resultJSON{
		Media:             media,
		Subtitle:          subtitle,
		Method:            result.Method,
		OffsetSeconds:     result.OffsetSeconds,
		Clamped:           result.Clamped,
		OffsetUnavailable: result.OffsetUnavailable,
		SegmentCount:      len(result.Segments),
		Segments:          segmentsJSON(result.Segments),
		SampleRate:        result.AudioInfo.SampleRate,
		DurationSeconds:   result.AudioInfo.DurationSeconds,
		ProcessingMS:      result.ProcessingDuration.Milliseconds(),
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func segmentsJSON(segments []vad.Segment) []segmentJSON {
	out := make([]segmentJSON, len(segments))
	for i, seg := range segments {
		out[i] = segmentJSON{Start: seg.Start, End: seg.End}
	}
	return out
}
