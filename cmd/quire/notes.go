package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/core"
	"github.com/aretw0/quire/pkg/editor"
)

func newAddCmd(g *globals) *cobra.Command {
	var (
		title, content, category string
		tags                     []string
		pin                      bool
	)
	cmd := &cobra.Command{
		Use:   "add [content]",
		Short: "Add a note",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			d := editor.New()
			d.Title = title
			d.Content = content
			if len(args) == 1 {
				d.Content = args[0]
			}
			d.Category = category
			for _, t := range tags {
				d.AddTag(t)
			}

			n, err := d.Save(cmd.Context(), app.Notes)
			if err != nil {
				return err
			}
			if pin {
				if err := app.Notes.TogglePin(cmd.Context(), n.ID); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), n.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Note content")
	cmd.Flags().StringVar(&category, "category", editor.DefaultCategory, "Category name")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag (repeatable)")
	cmd.Flags().BoolVar(&pin, "pin", false, "Pin the note")
	return cmd
}

func newEditCmd(g *globals) *cobra.Command {
	var (
		title, content, category string
		addTags, removeTags      []string
	)
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a note (ID or unique prefix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := findNote(app.Notes, args[0])
			if err != nil {
				return err
			}

			d := editor.Edit(n)
			flags := cmd.Flags()
			if flags.Changed("title") {
				d.Title = title
			}
			if flags.Changed("content") {
				d.Content = content
			}
			if flags.Changed("category") {
				d.Category = category
			}
			for _, t := range addTags {
				d.AddTag(t)
			}
			for _, t := range removeTags {
				d.RemoveTag(t)
			}
			if !d.HasChanges() {
				fmt.Fprintln(cmd.OutOrStdout(), "no changes")
				return nil
			}

			saved, err := d.Save(cmd.Context(), app.Notes)
			if err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), saved)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	cmd.Flags().StringVar(&category, "category", "", "New category")
	cmd.Flags().StringArrayVar(&addTags, "tag", nil, "Tag to add (repeatable)")
	cmd.Flags().StringArrayVar(&removeTags, "untag", nil, "Tag to remove (repeatable)")
	return cmd
}

func newRmCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := findNote(app.Notes, args[0])
			if err != nil {
				return err
			}
			if err := app.Notes.DeleteNote(cmd.Context(), n.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", n.ID)
			return nil
		},
	}
}

func newPinCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin or unpin a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := findNote(app.Notes, args[0])
			if err != nil {
				return err
			}
			if err := app.Notes.TogglePin(cmd.Context(), n.ID); err != nil {
				return err
			}
			state := "pinned"
			if n.IsPinned {
				state = "unpinned"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, n.ID)
			return nil
		},
	}
}

// findNote resolves an exact ID or a unique ID prefix.
func findNote(s *core.Store, ref string) (core.Note, error) {
	if n, err := s.Note(ref); err == nil {
		return n, nil
	}
	var found []core.Note
	for _, n := range s.Notes() {
		if strings.HasPrefix(n.ID, ref) {
			found = append(found, n)
		}
	}
	switch len(found) {
	case 0:
		return core.Note{}, fmt.Errorf("%w: %s", core.ErrNotFound, ref)
	case 1:
		return found[0], nil
	}
	return core.Note{}, fmt.Errorf("prefix %q matches %d notes", ref, len(found))
}

func printNote(w io.Writer, n core.Note) {
	pin := " "
	if n.IsPinned {
		pin = "*"
	}
	title := n.Title
	if title == "" {
		title = firstLine(n.Content)
	}
	fmt.Fprintf(w, "%s %s  %s", pin, n.ID, title)
	if n.Category != "" {
		fmt.Fprintf(w, "  (%s)", n.Category)
	}
	for _, t := range n.Tags {
		fmt.Fprintf(w, " #%s", t)
	}
	fmt.Fprintln(w)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	if r := []rune(line); len(r) > 60 {
		return string(r[:57]) + "..."
	}
	return line
}
