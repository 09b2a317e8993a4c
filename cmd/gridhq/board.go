// ABOUTME: Whole-board commands: summary counts and YAML or Markdown export.
package main

import (
	"fmt"
	"strings"

	"github.com/2389-research/gridhq/board/core"
	"github.com/2389-research/gridhq/board/export"
	"github.com/2389-research/gridhq/tui"
	"github.com/spf13/cobra"
)

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Count active cards by lane, priority, and epic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			cards, err := b.ListCards(ctx, core.ListFilter{})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderSummary(core.Summarize(cards, a.now())))
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format   string
		archived bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the board as YAML or Markdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "yaml" && format != "markdown" && format != "md" {
				return fmt.Errorf("unknown export format %q: want yaml or markdown", format)
			}
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			cards, err := b.ListCards(ctx, core.ListFilter{IncludeArchived: archived})
			if err != nil {
				return err
			}
			focus, err := b.Focus.Get(ctx)
			if err != nil {
				return err
			}

			var doc string
			if format == "yaml" {
				doc, err = export.ExportYAML(cards, focus, a.now())
				if err != nil {
					return err
				}
			} else {
				doc = export.ExportMarkdown(cards, focus, a.now())
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), doc)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "yaml or markdown")
	cmd.Flags().BoolVar(&archived, "archived", false, "include archived cards")
	return cmd
}
