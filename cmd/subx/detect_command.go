package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jim60105/subx-cli-sub001/internal/syncer"
	"github.com/jim60105/subx-cli-sub001/internal/transcode"
	"github.com/jim60105/subx-cli-sub001/internal/vad"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "detect <media-file>",
		Short: "Decode a media file and print the detected speech segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaPath, err := resolveFile(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx := cmd.Context()
			if cfg.Sync.TimeoutSeconds > 0 {
				var cancel func()
				runCtx, cancel = contextWithTimeout(runCtx, cfg.Sync.TimeoutSeconds)
				defer cancel()
			}

			transcoder := transcode.NewTranscoder(cfg.Tools.FFmpegBin, cfg.Tools.FFprobeBin, cfg.Paths.WorkDir, logger)
			started := time.Now()
			buf, err := transcoder.DecodeToPCM(runCtx, mediaPath)
			if err != nil {
				return err
			}
			detector, err := vad.NewDetector(buf.SampleRate, cfg.Tuning())
			if err != nil {
				return err
			}
			segments, err := detector.Detect(runCtx, buf)
			if err != nil {
				return err
			}

			if jsonOut {
				result := &syncer.Result{
					Segments:           segments,
					OffsetUnavailable:  len(segments) == 0,
					ProcessingDuration: time.Since(started),
					Method:             "vad",
					AudioInfo: syncer.AudioInfo{
						SampleRate:      buf.SampleRate,
						ChannelCount:    1,
						DurationSeconds: buf.Duration(),
					},
				}
				return printResultJSON(cmd, mediaPath, "", result)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %.1fs of audio at %d Hz, %d speech segment(s)\n",
				mediaPath, buf.Duration(), buf.SampleRate, len(segments))
			if len(segments) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(segments))
			for i, seg := range segments {
				rows = append(rows, []string{
					fmt.Sprintf("%d", i+1),
					fmt.Sprintf("%.3f", seg.Start),
					fmt.Sprintf("%.3f", seg.End),
					fmt.Sprintf("%.3f", seg.Duration()),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Start (s)", "End (s)", "Length (s)"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the segments as JSON")
	return cmd
}
