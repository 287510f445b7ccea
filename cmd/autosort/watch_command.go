package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/monitor"
)

const watchHelp = "Watch a folder and sort files as they arrive, until interrupted.\n" +
	"Changes are debounced (--debounce) so a burst of new files causes one sweep.\n\n" +
	skippedFilesHelp

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var sweepFirst bool

	cmd := &cobra.Command{
		Use:   "watch <folder>",
		Short: "Watch a folder and sort new files until interrupted",
		Long:  watchHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if sweepFirst {
				res, err := svc.Organize(runCtx, args[0], domain.TriggerManual)
				if err != nil {
					return err
				}
				printResult(cmd, res)
			}

			status, err := svc.StartWatch(runCtx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", status.Folder)

			session, ok := svc.Session(status.Folder)
			if !ok {
				return fmt.Errorf("watch session for %s vanished", status.Folder)
			}

			select {
			case <-runCtx.Done():
				session.Stop()
				printWatchSummary(cmd, session.Status())
				return nil
			case <-session.Done():
			}

			// The session ended on its own, e.g. the folder was deleted.
			final := session.Status()
			printWatchSummary(cmd, final)
			return final.LastError
		},
	}

	cmd.Flags().BoolVar(&sweepFirst, "sweep-first", false, "Organize the folder once before watching")
	return cmd
}

func printWatchSummary(cmd *cobra.Command, st monitor.Status) {
	fmt.Fprintf(cmd.OutOrStdout(), "Stopped watching %s: %d sweeps, %d files moved\n", st.Folder, st.Sweeps, st.Moved)
}
