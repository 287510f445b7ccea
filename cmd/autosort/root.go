package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() (*cobra.Command, *commandContext) {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "autosort",
		Short:         "Sort the files in a folder into category subfolders",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	ctx.root = rootCmd

	flags := rootCmd.PersistentFlags()
	flags.String("env-file", ".env", "Path to .env file")
	flags.String("state-path", "", "Directory for rules, log, history, and locks (default ~/.autosort)")
	flags.String("rules-path", "", "Rules file, .json or .yaml")
	flags.String("categories-path", "", "Category table file, .json or .yaml")
	flags.String("log-file", "", "Move log path")
	flags.String("history-db", "", "History database path")
	flags.String("collision-policy", "", "skip, rename, or overwrite")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("watcher", "", "Watcher backend: auto, inotify, fsnotify")
	flags.String("debounce", "", "Quiet period before a sweep, e.g. 500ms")
	flags.String("include-hidden", "", "Organize dotfiles too (true/false)")
	flags.BoolVar(&ctx.json, "json", false, "Print JSON instead of tables")

	rootCmd.AddCommand(newOrganizeCommand(ctx))
	rootCmd.AddCommand(newWatchCommand(ctx))
	rootCmd.AddCommand(newRulesCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newCategoriesCommand(ctx))

	return rootCmd, ctx
}
