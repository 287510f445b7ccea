package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/listenupapp/autosort/internal/domain"
)

func newRulesCommand(ctx *commandContext) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage keyword rules",
	}

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List rules in match order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			list := svc.Rules()
			if ctx.json {
				return writeJSON(cmd, list)
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No rules; files are sorted by extension")
				return nil
			}

			rows := make([][]string, 0, len(list))
			for i, r := range list {
				rows = append(rows, []string{strconv.Itoa(i), r.Keyword, r.Destination})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"#", "Keyword", "Destination"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	})

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "add <keyword> <destination>",
		Short: "Add a rule; files whose name contains keyword go to destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			added, err := svc.AddRule(domain.Rule{Keyword: args[0], Destination: args[1]})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", added)
			return nil
		},
	})

	rulesCmd.AddCommand(&cobra.Command{
		Use:   "remove <index>",
		Short: "Remove the rule at index (see rules list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid rule index %q", args[0])
			}

			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			removed, err := svc.RemoveRule(index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", removed)
			return nil
		},
	})

	return rulesCmd
}
