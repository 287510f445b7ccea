package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04:05"

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently moved files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			entries, err := svc.History(cmd.Context(), folder, limit)
			if err != nil {
				return err
			}
			if ctx.json {
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No moves recorded")
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{
					e.Timestamp.Local().Format(timeLayout),
					e.Filename,
					e.Destination,
					e.Folder,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"When", "File", "Destination", "Folder"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Only moves in this folder")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum number of moves")
	return cmd
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent organize runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			runs, err := svc.Runs(cmd.Context(), folder, limit)
			if err != nil {
				return err
			}
			if ctx.json {
				return writeJSON(cmd, runs)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID,
					r.StartedAt.Local().Format(timeLayout),
					string(r.Trigger),
					r.Folder,
					strconv.Itoa(r.Moved),
					strconv.Itoa(r.Conflicts),
					strconv.Itoa(r.Failures),
					r.Duration().Round(time.Millisecond).String(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Started", "Trigger", "Folder", "Moved", "Conflicts", "Failed", "Took"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Only runs over this folder")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs")
	return cmd
}
