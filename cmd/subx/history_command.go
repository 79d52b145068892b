package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jim60105/subx-cli-sub001/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var prune int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past synchronization runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := journalDir(ctx)
			if err != nil {
				return err
			}
			store, err := journal.Open(dir)
			if err != nil {
				return err
			}
			defer store.Close()

			if cmd.Flags().Changed("prune") {
				removed, err := store.Prune(cmd.Context(), prune)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d record(s), keeping the newest %d.\n", removed, prune)
				return nil
			}

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No synchronization runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				offset := ""
				if rec.Status == journal.StatusApplied || rec.Status == journal.StatusDryRun {
					offset = fmt.Sprintf("%+.3fs", rec.OffsetSeconds)
					if rec.Clamped {
						offset += " (clamped)"
					}
				}
				rows = append(rows, []string{
					rec.CreatedAt.Local().Format(time.DateTime),
					filepath.Base(rec.MediaPath),
					rec.Method,
					rec.Status,
					offset,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"When", "Media", "Method", "Status", "Offset"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum records to show (0 for all)")
	cmd.Flags().IntVar(&prune, "prune", 0, "Delete all but the newest N records instead of listing")

	return cmd
}
