package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the extension to folder table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}

			cats := svc.Categories()
			policy := svc.CollisionPolicy()
			if ctx.json {
				return writeJSON(cmd, map[string]any{
					"categories":       cats,
					"collision_policy": policy,
				})
			}

			rows := make([][]string, 0, len(cats))
			for _, c := range cats {
				exts := strings.Join(c.Extensions, " ")
				if exts == "" {
					exts = "(anything else)"
				}
				rows = append(rows, []string{c.Name, exts})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Folder", "Extensions"}, rows, nil))
			fmt.Fprintf(out, "Name collisions: %s\n", policy)
			return nil
		},
	}
}
