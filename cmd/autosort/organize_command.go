package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/listenupapp/autosort/internal/domain"
	"github.com/listenupapp/autosort/internal/organizer"
)

// skippedFilesHelp describes which files are left in place.
const skippedFilesHelp = `Only regular files directly inside the folder are moved; subfolders are
never entered. By default these files are left in place:
  - dotfiles such as .bashrc (pass --include-hidden=true or set
    INCLUDE_HIDDEN=true to sort them too)
  - partial and temporary downloads: *.tmp, *.temp, *.part, *.partial,
    *.crdownload, *.download, ~$* office lock files
  - .DS_Store, Thumbs.db, desktop.ini
  - autosort's own rules file, move log, and history database`

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "organize <folder>",
		Short: "Sort the files in a folder once",
		Long:  "Sort the files in a folder once into category subfolders.\n\n" + skippedFilesHelp,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			res, err := svc.Organize(cmd.Context(), args[0], domain.TriggerManual)
			if res != nil {
				if ctx.json {
					if jerr := writeJSON(cmd, res); jerr != nil {
						return jerr
					}
				} else {
					printResult(cmd, res)
				}
			}
			return err
		},
	}
}

func printResult(cmd *cobra.Command, res *organizer.Result) {
	out := cmd.OutOrStdout()
	if len(res.Entries) == 0 {
		fmt.Fprintf(out, "Nothing to organize in %s\n", res.Folder)
	} else {
		rows := make([][]string, 0, len(res.Entries))
		for _, e := range res.Entries {
			rel, err := filepath.Rel(res.Folder, e.FinalPath)
			if err != nil {
				rel = e.FinalPath
			}
			rows = append(rows, []string{e.Filename, e.Destination, rel})
		}
		fmt.Fprintln(out, renderTable([]string{"File", "Destination", "Moved To"}, rows, nil))
	}

	fmt.Fprintf(out, "%s moved, %s conflicts, %s failed, %s skipped (%s)\n",
		strconv.Itoa(len(res.Entries)),
		strconv.Itoa(res.Conflicts),
		strconv.Itoa(res.Failures),
		strconv.Itoa(res.Skipped),
		res.RunID,
	)
}
