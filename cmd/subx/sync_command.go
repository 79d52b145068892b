package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jim60105/subx-cli-sub001/internal/journal"
	"github.com/jim60105/subx-cli-sub001/internal/subtitles"
	"github.com/jim60105/subx-cli-sub001/internal/syncer"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var manualOffset float64
	var outputPath string
	var dryRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "sync <media-file> <subtitle-file>",
		Short: "Align a subtitle file against its audio source",
		Long: `Detects speech in the media file and shifts the subtitle timeline to
match. Pass --offset to skip detection and apply a known offset directly.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaPath, err := resolveFile(args[0])
			if err != nil {
				return err
			}
			subtitlePath, err := resolveFile(args[1])
			if err != nil {
				return err
			}

			engine, cfg, err := ctx.newEngine()
			if err != nil {
				return err
			}

			cues, format, err := subtitles.ReadFile(subtitlePath)
			if err != nil {
				return err
			}

			method := syncer.VADMethod()
			if cmd.Flags().Changed("offset") {
				method = syncer.ManualMethod(manualOffset)
			}

			result, err := engine.Synchronize(cmd.Context(), syncer.Request{
				AudioPath: mediaPath,
				Cues:      cues,
				Method:    method,
				Tuning:    cfg.Tuning(),
				Bounds:    cfg.Bounds(),
			})
			recordRun(cmd, ctx, mediaPath, subtitlePath, method, result, err, dryRun)
			if err != nil {
				return err
			}

			if jsonOut {
				return printResultJSON(cmd, mediaPath, subtitlePath, result)
			}

			if result.OffsetUnavailable {
				fmt.Fprintf(cmd.OutOrStdout(),
					"No speech detected in %s (%d segments); no shift applied.\n"+
						"Rerun with --offset <seconds> to apply a manual correction.\n",
					filepath.Base(mediaPath), len(result.Segments))
				return nil
			}

			if result.Clamped {
				fmt.Fprintf(cmd.ErrOrStderr(),
					"warning: computed offset exceeded the %.1fs cap and was clamped\n",
					cfg.Sync.MaxOffsetSeconds)
			}

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = subtitlePath
			}
			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "dry-run: offset %+.3fs would be written to %s\n",
					result.OffsetSeconds, target)
				return nil
			}
			if err := subtitles.WriteFile(target, result.ShiftedCues, format); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied offset %+.3fs to %s (%d cues, %d speech segments, %s)\n",
				result.OffsetSeconds, target, len(result.ShiftedCues), len(result.Segments),
				result.ProcessingDuration.Round(timePrecision))
			return nil
		},
	}

	cmd.Flags().Float64Var(&manualOffset, "offset", 0, "Apply this offset in seconds instead of detecting speech")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the shifted subtitle here instead of in place")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the offset without writing any file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the result as JSON")

	return cmd
}

// recordRun journals the outcome; journal failures only warn, they never
// fail the sync itself.
func recordRun(cmd *cobra.Command, ctx *commandContext, mediaPath, subtitlePath string, method syncer.Method, result *syncer.Result, runErr error, dryRun bool) {
	dir, err := journalDir(ctx)
	if err != nil {
		return
	}
	store, err := journal.Open(dir)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: journal unavailable: %v\n", err)
		return
	}
	defer store.Close()

	rec := buildRecord(mediaPath, subtitlePath, method, result, runErr, dryRun)
	if _, err := store.Insert(cmd.Context(), rec); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: journal write failed: %v\n", err)
	}
}

func resolveFile(arg string) (string, error) {
	path := strings.TrimSpace(arg)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}
	path, _ = filepath.Abs(path)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file %q not found", path)
		}
		return "", fmt.Errorf("stat %q: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path %q is a directory", path)
	}
	return path, nil
}
