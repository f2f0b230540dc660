package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/quire/pkg/theme"
)

func newThemeCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the theme preferences",
	}
	cmd.AddCommand(
		newThemeShowCmd(g),
		newThemeListCmd(),
		newThemeSetCmd(g),
		newThemeAccentCmd(g),
		newThemeAutoCmd(g),
	)
	return cmd
}

func newThemeShowCmd(g *globals) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the selected and resolved theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			current := app.Theme.Current()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), current)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "theme:    %s\n", app.Theme.ThemeID())
			fmt.Fprintf(out, "resolved: %s (%s)\n", current.ID, current.Name)
			fmt.Fprintf(out, "accent:   %s\n", app.Theme.AccentColor())
			fmt.Fprintf(out, "auto:     %t\n", app.Theme.AutoTheme())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the resolved palette as JSON")
	return cmd
}

func newThemeListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List themes and accent colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "THEME\tNAME\tBACKGROUND")
			for _, id := range []string{theme.Light, theme.Dark, theme.Midnight} {
				t := theme.Resolve(id, theme.DefaultAccentColor)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", t.ID, t.Name, t.Colors.Background)
			}
			fmt.Fprintln(tw)
			fmt.Fprintln(tw, "ACCENT\tNAME\tCOLOR")
			for _, a := range theme.AccentColors() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", a.ID, a.Name, a.Color)
			}
			return tw.Flush()
		},
	}
}

func newThemeSetCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "set <light|dark|midnight>",
		Short: "Select the theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			id := strings.ToLower(args[0])
			if !theme.Known(id) {
				g.logger.Warn("unknown theme, it will display as the default", "theme", id, "default", theme.DefaultThemeID)
			}
			return app.Theme.SetTheme(cmd.Context(), id)
		},
	}
}

func newThemeAccentCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "accent <name|#RRGGBB>",
		Short: "Set the accent color by catalogue name or hex value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			color, err := accentColor(args[0])
			if err != nil {
				return err
			}
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Theme.SetAccentColor(cmd.Context(), color)
		},
	}
}

func accentColor(arg string) (string, error) {
	for _, a := range theme.AccentColors() {
		if strings.EqualFold(a.ID, arg) || strings.EqualFold(a.Color, arg) {
			return a.Color, nil
		}
	}
	if len(arg) == 7 && arg[0] == '#' {
		if _, err := strconv.ParseUint(arg[1:], 16, 32); err == nil {
			return strings.ToUpper(arg), nil
		}
	}
	return "", fmt.Errorf("unknown accent color %q", arg)
}

func newThemeAutoCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "auto <on|off>",
		Short: "Follow the system appearance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enabled bool
			switch strings.ToLower(args[0]) {
			case "on", "true", "yes", "1":
				enabled = true
			case "off", "false", "no", "0":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			app, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Theme.SetAutoTheme(cmd.Context(), enabled)
		},
	}
}
