// ABOUTME: cards subcommands: list, show, create, update, move, archive, delete, and comment.
// ABOUTME: Update flags only apply when given; an empty value clears optional fields.
package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/2389-research/gridhq/board/core"
	"github.com/2389-research/gridhq/tui"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newCardsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "cards",
		Aliases: []string{"card"},
		Short:   "Create, edit, and list cards",
	}
	cmd.AddCommand(
		newCardsListCmd(a),
		newCardsShowCmd(a),
		newCardsCreateCmd(a),
		newCardsUpdateCmd(a),
		newCardsMoveCmd(a),
		newCardsArchiveCmd(a),
		newCardsDeleteCmd(a),
		newCardsCommentCmd(a),
	)
	return cmd
}

func newCardsListCmd(a *app) *cobra.Command {
	var (
		archived bool
		epics    bool
		epicID   string
		status   string
		flat     bool
		width    int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the board, or a flat table with --flat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			filter := core.ListFilter{
				IncludeArchived: archived,
				EpicsOnly:       epics,
				EpicID:          strings.TrimSpace(epicID),
				Status:          core.Status(strings.TrimSpace(status)),
			}
			cards, err := b.ListCards(ctx, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if flat {
				return writeCardTable(out, cards, a.now())
			}
			focus, err := b.Focus.Get(ctx)
			if err != nil {
				return err
			}
			view := tui.NewBoardView(cards, focus, a.now())
			view.SetWidth(width)
			fmt.Fprintln(out, view.View())
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&archived, "archived", false, "include archived cards")
	f.BoolVar(&epics, "epics", false, "only epics")
	f.StringVar(&epicID, "epic", "", "only children of this epic")
	f.StringVar(&status, "status", "", "only cards in this lane")
	f.BoolVar(&flat, "flat", false, "print one card per line instead of lanes")
	f.IntVar(&width, "width", 120, "terminal width for the lane view")
	return cmd
}

func writeCardTable(out io.Writer, cards []core.Card, now time.Time) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tSORT\tPRIORITY\tDUE\tUPDATED\tTITLE")
	for _, c := range cards {
		priority, due := "-", "-"
		if c.Priority != nil {
			priority = string(*c.Priority)
		}
		if c.DueDate != nil {
			due = c.DueDate.UTC().Format("2006-01-02")
		}
		title := c.Title
		if c.IsEpic {
			title = "[epic] " + title
		}
		if c.Archived {
			title += " (archived)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			c.ID, c.Status, c.Sort, priority, due, humanize.RelTime(c.UpdatedAt, now, "ago", "from now"), title)
	}
	return tw.Flush()
}

func newCardsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a card with its comments and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			id, err := a.resolveCardID(ctx, b, args[0])
			if err != nil {
				return err
			}
			card, err := b.GetCard(ctx, id)
			if err != nil {
				return err
			}
			comments, err := b.ListComments(ctx, id)
			if err != nil {
				return err
			}
			attachments, err := b.ListAttachments(ctx, id)
			if err != nil {
				return err
			}
			detail := tui.CardDetail{Card: card, Comments: comments, Attachments: attachments}
			fmt.Fprintln(cmd.OutOrStdout(), tui.RenderCardDetail(detail, a.now()))
			return nil
		},
	}
}

func newCardsCreateCmd(a *app) *cobra.Command {
	var (
		in     core.CreateCardInput
		labels string
		due    string
	)
	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a card and print its id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			in.Title = strings.Join(args, " ")
			in.Labels = splitLabels(labels)
			if strings.TrimSpace(due) != "" {
				t, err := core.ParseDueDate(due)
				if err != nil {
					return err
				}
				in.DueDate = &t
			}
			id, err := b.CreateCard(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Status, "status", "", "lane: backlog, doing, blocked, done (default backlog)")
	f.StringVar(&in.Description, "description", "", "card description")
	f.StringVar(&in.Priority, "priority", "", "low, medium, high, urgent")
	f.StringVar(&labels, "labels", "", "comma separated labels")
	f.StringVar(&due, "due", "", "due date, e.g. 2026-03-01 or 2026-03-01T17:00:00Z")
	f.BoolVar(&in.IsEpic, "epic", false, "create an epic")
	f.StringVar(&in.EpicID, "parent", "", "epic this card belongs to")
	return cmd
}

func newCardsUpdateCmd(a *app) *cobra.Command {
	var (
		title, status, description, priority string
		labels, due, parent                  string
		sort                                 int64
		epic, archived                       bool
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a card",
		Long: `Only the flags you pass are written. Passing an empty value to
--description, --priority, --labels, --due, or --parent clears that field.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			id, err := a.resolveCardID(ctx, b, args[0])
			if err != nil {
				return err
			}

			changed := cmd.Flags().Changed
			var in core.UpdateCardInput
			if changed("title") {
				in.Title = core.Present(title)
			}
			if changed("status") {
				in.Status = core.Present(status)
			}
			if changed("description") {
				in.Description = clearable(description)
			}
			if changed("priority") {
				in.Priority = clearable(priority)
			}
			if changed("parent") {
				in.EpicID = clearable(parent)
			}
			if changed("labels") {
				in.Labels = core.Null[[]string]()
				if l := splitLabels(labels); l != nil {
					in.Labels = core.Present(l)
				}
			}
			if changed("due") {
				in.DueDate = core.Null[time.Time]()
				if strings.TrimSpace(due) != "" {
					t, err := core.ParseDueDate(due)
					if err != nil {
						return err
					}
					in.DueDate = core.Present(t)
				}
			}
			if changed("sort") {
				in.Sort = core.Present(sort)
			}
			if changed("epic") {
				in.IsEpic = core.Present(epic)
			}
			if changed("archived") {
				in.Archived = core.Present(archived)
			}

			if err := b.UpdateCard(ctx, id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", id)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "new title")
	f.StringVar(&status, "status", "", "new lane")
	f.StringVar(&description, "description", "", "new description")
	f.StringVar(&priority, "priority", "", "low, medium, high, urgent")
	f.StringVar(&labels, "labels", "", "comma separated labels, replacing the current set")
	f.StringVar(&due, "due", "", "due date")
	f.StringVar(&parent, "parent", "", "epic this card belongs to")
	f.Int64Var(&sort, "sort", 0, "position within the lane")
	f.BoolVar(&epic, "epic", false, "mark or unmark the card as an epic")
	f.BoolVar(&archived, "archived", false, "archive or restore the card")
	return cmd
}

func newCardsMoveCmd(a *app) *cobra.Command {
	var sort int64
	cmd := &cobra.Command{
		Use:   "move <id> <status>",
		Short: "Move a card to another lane",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			id, err := a.resolveCardID(ctx, b, args[0])
			if err != nil {
				return err
			}
			in := core.UpdateCardInput{Status: core.Present(args[1])}
			if cmd.Flags().Changed("sort") {
				in.Sort = core.Present(sort)
			}
			if err := b.UpdateCard(ctx, id, in); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved %s to %s\n", id, strings.TrimSpace(args[1]))
			return nil
		},
	}
	cmd.Flags().Int64Var(&sort, "sort", 0, "position within the new lane")
	return cmd
}

func newCardsArchiveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <id>",
		Short: "Archive a card; it stays in the database but leaves the board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			id, err := a.resolveCardID(ctx, b, args[0])
			if err != nil {
				return err
			}
			if err := b.ArchiveCard(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "archived %s\n", id)
			return nil
		},
	}
}

func newCardsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a card permanently, with its comments and attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			id, err := a.resolveCardID(ctx, b, args[0])
			if err != nil {
				return err
			}
			if err := b.DeleteCard(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}

func newCardsCommentCmd(a *app) *cobra.Command {
	var author, parent string
	cmd := &cobra.Command{
		Use:   "comment <id> <text>",
		Short: "Add a comment to a card",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.openBoard(ctx)
			if err != nil {
				return err
			}
			id, err := a.resolveCardID(ctx, b, args[0])
			if err != nil {
				return err
			}
			c, err := b.AddComment(ctx, author, id, strings.Join(args[1:], " "), parent)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "author to record, e.g. an email")
	cmd.Flags().StringVar(&parent, "reply-to", "", "comment id this replies to")
	return cmd
}

// clearable maps an empty flag value to null.
func clearable(v string) core.OptionalField[string] {
	if strings.TrimSpace(v) == "" {
		return core.Null[string]()
	}
	return core.Present(v)
}

func splitLabels(v string) []string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return core.NormalizeLabels(strings.Split(v, ","))
}
