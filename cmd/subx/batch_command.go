package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jim60105/subx-cli-sub001/internal/batch"
	"github.com/jim60105/subx-cli-sub001/internal/journal"
	"github.com/jim60105/subx-cli-sub001/internal/subtitles"
	"github.com/jim60105/subx-cli-sub001/internal/syncer"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var manualOffset float64
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Synchronize every media/subtitle pair in a directory",
		Long: `Pairs media files with subtitles sharing the same name stem and runs
each pair through the sync pipeline on a worker pool. One pair's failure
never affects the others.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := strings.TrimSpace(args[0])
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("stat %q: %w", dir, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("path %q is not a directory", dir)
			}
			dir, _ = filepath.Abs(dir)

			engine, cfg, err := ctx.newEngine()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			pairs, err := batch.DiscoverPairs(dir)
			if err != nil {
				return err
			}
			if len(pairs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No media/subtitle pairs found.")
				return nil
			}

			release, err := batch.AcquireLock(dir)
			if err != nil {
				return err
			}
			defer release()

			method := syncer.VADMethod()
			if cmd.Flags().Changed("offset") {
				method = syncer.ManualMethod(manualOffset)
			}

			runner := batch.NewRunner(engine, cfg.Batch.Workers, logger)
			var bar *progressbar.ProgressBar
			if isatty.IsTerminal(os.Stderr.Fd()) {
				bar = progressbar.NewOptions(len(pairs),
					progressbar.OptionSetDescription("syncing"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionClearOnFinish(),
				)
				runner.OnOutcome(func(batch.Outcome) { _ = bar.Add(1) })
			}

			outcomes := runner.Run(cmd.Context(), pairs, method, cfg.Tuning(), cfg.Bounds())
			if bar != nil {
				_ = bar.Finish()
			}

			var store *journal.Store
			if dir, dirErr := journalDir(ctx); dirErr == nil {
				if store, err = journal.Open(dir); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: journal unavailable: %v\n", err)
					store = nil
				} else {
					defer store.Close()
				}
			}

			applied, failed := 0, 0
			rows := make([][]string, 0, len(outcomes))
			for _, outcome := range outcomes {
				name := filepath.Base(outcome.Pair.MediaPath)
				switch {
				case outcome.Err != nil:
					failed++
					rows = append(rows, []string{name, "failed", "", truncate(outcome.Err.Error(), 60)})
				case outcome.Result.OffsetUnavailable:
					rows = append(rows, []string{name, "no speech", "", "use --offset for this pair"})
				default:
					status := "applied"
					note := ""
					if outcome.Result.Clamped {
						note = "offset clamped"
					}
					if dryRun {
						status = "dry-run"
					} else if err := subtitles.WriteFile(outcome.Pair.SubtitlePath, outcome.Result.ShiftedCues, outcome.Format); err != nil {
						failed++
						rows = append(rows, []string{name, "failed", "", truncate(err.Error(), 60)})
						continue
					}
					applied++
					rows = append(rows, []string{name, status, fmt.Sprintf("%+.3fs", outcome.Result.OffsetSeconds), note})
				}
				if store != nil {
					rec := buildRecord(outcome.Pair.MediaPath, outcome.Pair.SubtitlePath, method, outcome.Result, outcome.Err, dryRun)
					if _, insErr := store.Insert(cmd.Context(), rec); insErr != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "warning: journal write failed: %v\n", insErr)
					}
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Media", "Status", "Offset", "Note"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d applied, %d failed, %d total\n", applied, failed, len(outcomes))
			if failed > 0 {
				return fmt.Errorf("%d of %d pairs failed", failed, len(outcomes))
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&manualOffset, "offset", 0, "Apply this offset in seconds to every pair instead of detecting speech")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report offsets without writing any files")

	return cmd
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
