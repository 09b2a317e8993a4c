// ABOUTME: focus subcommands: show the focus record and write it directly.
package main

import (
	"fmt"
	"strings"

	"github.com/2389-research/gridhq/board/core"
	"github.com/2389-research/gridhq/tui"
	"github.com/spf13/cobra"
)

func newFocusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focus",
		Short: "Show or set what you are focused on",
	}
	cmd.AddCommand(newFocusShowCmd(a), newFocusSetCmd(a))
	return cmd
}

func newFocusShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the focus record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			rec, err := b.Focus.Get(ctx)
			if err != nil {
				return err
			}
			return printFocus(cmd, a, rec)
		},
	}
}

func newFocusSetCmd(a *app) *cobra.Command {
	var message, mode, card string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Write the focus record; only the flags you pass change",
		Long: `Sets the focus message, mode, or card. Modes are idle, working,
waiting, and sleeping. Pass --card "" to clear the focused card.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			changed := cmd.Flags().Changed
			var in core.FocusInput
			if changed("message") {
				in.Message = core.Present(message)
			}
			if changed("mode") {
				in.Mode = core.Present(mode)
			}
			if changed("card") {
				in.FocusCardID = clearable(card)
				if strings.TrimSpace(card) != "" {
					id, err := a.resolveCardID(ctx, b, card)
					if err != nil {
						return err
					}
					in.FocusCardID = core.Present(id)
				}
			}
			rec, err := b.Focus.Update(ctx, in)
			if err != nil {
				return err
			}
			return printFocus(cmd, a, rec)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&message, "message", "m", "", "free-text focus message")
	f.StringVar(&mode, "mode", "", "idle, working, waiting, sleeping")
	f.StringVar(&card, "card", "", "id of the card being worked on")
	return cmd
}

func printFocus(cmd *cobra.Command, a *app, rec core.FocusRecord) error {
	bar := tui.NewFocusBar(rec, a.now())
	fmt.Fprintln(cmd.OutOrStdout(), bar.View())
	if rec.FocusCardID != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "card: %s\n", *rec.FocusCardID)
	}
	return nil
}
