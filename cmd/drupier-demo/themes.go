package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tothom/drupier-demo"
)

func newThemesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "Register and list themes",
	}
	cmd.AddCommand(
		newThemesRegisterCommand(a),
		newThemesListCommand(a),
		newThemesDiscoverCommand(a),
	)
	return cmd
}

func newThemesRegisterCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "register <dir>",
		Short: "Register the theme described by <dir>/theme.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme, err := a.module.RegisterTheme(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("register theme: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s %s (%s)\n", theme.Name, theme.Version, theme.ThemePath)
			return nil
		},
	}
}

func newThemesListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := a.module.Themes().ListThemes(cmd.Context())
			if err != nil {
				return fmt.Errorf("list themes: %w", err)
			}
			renderThemes(cmd, list)
			return nil
		},
	}
}

func newThemesDiscoverCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "discover [dir]",
		Short: "Register every theme found under a directory",
		Long:  "Register every theme directory carrying a theme.json. Defaults to the configured theme base path.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			found, err := a.module.DiscoverThemes(cmd.Context(), dir)
			renderThemes(cmd, found)
			if err != nil {
				return fmt.Errorf("discover themes: %w", err)
			}
			return nil
		},
	}
}

func renderThemes(cmd *cobra.Command, list []*drupier.Theme) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Version", "Path"})
	for _, theme := range list {
		t.AppendRow(table.Row{theme.Name, theme.Version, theme.ThemePath})
	}
	t.Render()
}
