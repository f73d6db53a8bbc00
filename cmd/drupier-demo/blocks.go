package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tothom/drupier-demo"
)

func newBlocksCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "List and render blocks",
	}
	cmd.AddCommand(newBlocksListCommand(a), newBlocksRenderCommand(a))
	return cmd
}

func newBlocksListCommand(a *app) *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if locale == "" {
				locale = a.cfg.I18N.DefaultLocale
			}
			translator := a.module.Translator()

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Label", "Category"})
			for _, def := range a.module.Blocks() {
				t.AppendRow(table.Row{
					def.ID,
					translated(translator, locale, def.LabelKey, def.AdminLabel),
					translated(translator, locale, def.CategoryKey, def.Category),
				})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "locale used for labels")
	return cmd
}

func newBlocksRenderCommand(a *app) *cobra.Command {
	var (
		locale   string
		terminal bool
	)
	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Render a block to stdout",
		Long:  "Render a block by id or slug. With --terminal the README block is rendered from its Markdown source for the terminal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := drupier.FormatHTML
			if terminal {
				format = drupier.FormatTerminal
			}
			if err := a.module.WriteBlock(cmd.Context(), cmd.OutOrStdout(), args[0], locale, format); err != nil {
				return fmt.Errorf("render %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().StringVar(&locale, "locale", "", "locale for translated output")
	cmd.Flags().BoolVar(&terminal, "terminal", false, "render Markdown for the terminal instead of HTML")
	return cmd
}

type labelTranslator interface {
	Translate(locale, key string, args ...any) (string, error)
}

func translated(translator labelTranslator, locale, key, fallback string) string {
	if translator == nil || key == "" {
		return fallback
	}
	msg, err := translator.Translate(locale, key)
	if err != nil || msg == "" || msg == key {
		return fallback
	}
	return msg
}
