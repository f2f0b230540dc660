package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/core"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printNotes(w io.Writer, notes []core.Note, asJSON bool) error {
	notes = core.SortForDisplay(notes)
	if asJSON {
		return writeJSON(w, notes)
	}
	for _, n := range notes {
		printNote(w, n)
	}
	return nil
}

func newListCmd(g *globals) *cobra.Command {
	var (
		category string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, pinned first then most recently updated",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			notes := app.Notes.Notes()
			if cmd.Flags().Changed("category") {
				notes = app.Notes.NotesByCategory(category)
			}
			return printNotes(cmd.OutOrStdout(), notes, asJSON)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only notes of this category")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newSearchCmd(g *globals) *cobra.Command {
	var (
		asJSON bool
		clear  bool
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search titles, contents and tags; without a query, show recent searches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			recent, err := core.LoadRecentSearches(ctx, app.KV)
			if err != nil {
				g.logger.Warn("ignoring recent searches", "error", err)
			}

			if clear {
				recent.Clear()
				return recent.Save(ctx, app.KV)
			}

			if len(args) == 0 {
				for _, q := range recent.List() {
					fmt.Fprintln(out, q)
				}
				return nil
			}

			query := args[0]
			if err := printNotes(out, app.Notes.SearchNotes(query), asJSON); err != nil {
				return err
			}
			recent.Push(query)
			if err := recent.Save(ctx, app.KV); err != nil {
				g.logger.Debug("recent searches not saved", "error", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&clear, "clear", false, "Forget recent searches")
	return cmd
}

func newCategoriesCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories with their note counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			categories := app.Notes.Categories()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), categories)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tNOTES\tCOLOR\tLATEST")
			for _, c := range categories {
				latest := ""
				if n, ok := core.MostRecent(app.Notes.NotesByCategory(c.Name)); ok {
					latest = n.Title
					if latest == "" {
						latest = firstLine(n.Content)
					}
				}
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", c.Name, c.NoteCount, c.Color, latest)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func newTagsCmd(g *globals) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show the most used tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			tags := core.PopularTags(app.Notes.Notes(), top)
			if len(tags) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "#"+strings.Join(tags, " #"))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 6, "Number of tags to show")
	return cmd
}
