package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pictag/internal/hotkey"
	"pictag/pkg/types"
)

// NewCategoriesCmd creates the categories command
func NewCategoriesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category", "cat"},
		Short:   "Manage the directory's categories",
	}

	cmd.AddCommand(newCategoriesListCmd(opts))
	cmd.AddCommand(newCategoriesAddCmd(opts))
	cmd.AddCommand(newCategoriesEditCmd(opts))
	cmd.AddCommand(newCategoriesRemoveCmd(opts))
	cmd.AddCommand(newCategoriesExcludeCmd(opts))

	return cmd
}

func newCategoriesListCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories with their hotkeys and image counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			categories := a.session.Categories()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), categories)
			}

			counts := map[string]int{}
			for _, entry := range a.session.Document().ImageCategories {
				for _, c := range entry.Assignments {
					counts[c.CategoryID]++
				}
			}
			keys := map[string][]string{}
			for _, h := range a.session.Hotkeys() {
				action := hotkey.ParseAction(h.Action)
				if action.CategoryID != "" {
					keys[action.CategoryID] = append(keys[action.CategoryID], hotkey.Describe(h.Key, h.Modifiers))
				}
			}

			out := cmd.OutOrStdout()
			if len(categories) == 0 {
				fmt.Fprintln(out, infoText("No categories yet. Add one with 'pictag categories add <name>'."))
				return nil
			}
			for _, c := range categories {
				fmt.Fprintf(out, "%s %-20s %-8s %4d images  %s\n",
					swatch(c.Color), c.Name, strings.Join(keys[c.ID], ","), counts[c.ID], mutedText(c.ID))
				if len(c.MutuallyExclusiveWith) > 0 {
					fmt.Fprintf(out, "   excludes: %s\n", strings.Join(a.categoryNames(c.MutuallyExclusiveWith), ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	return cmd
}

func newCategoriesAddCmd(opts *rootOptions) *cobra.Command {
	var (
		color     string
		exclusive []string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category; a free digit hotkey is bound to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			ids, err := a.categoryIDs(exclusive)
			if err != nil {
				return err
			}
			created, err := a.session.CreateCategory(cmd.Context(), types.Category{
				Name:                  args[0],
				Color:                 color,
				MutuallyExclusiveWith: ids,
			})
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Created category %s (%s)", created.Name, created.ID)
			for _, h := range a.session.Hotkeys() {
				if hotkey.ParseAction(h.Action).CategoryID == created.ID {
					msg += " on key " + hotkey.Describe(h.Key, h.Modifiers)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), successText(msg))
			return nil
		},
	}

	cmd.Flags().StringVar(&color, "color", "#8888ff", "hex colour")
	cmd.Flags().StringSliceVarP(&exclusive, "exclusive", "x", nil, "categories this one excludes (id or name)")
	return cmd
}

func newCategoriesEditCmd(opts *rootOptions) *cobra.Command {
	var (
		name  string
		color string
	)

	cmd := &cobra.Command{
		Use:   "edit <category>",
		Short: "Rename or recolour a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.findCategory(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				c.Name = name
			}
			if cmd.Flags().Changed("color") {
				c.Color = color
			}
			if err := a.session.UpdateCategory(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successText("Updated category "+c.Name))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new hex colour")
	return cmd
}

func newCategoriesRemoveCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <category>",
		Aliases: []string{"rm", "delete"},
		Short:   "Delete a category, its assignments and its hotkey actions",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.findCategory(args[0])
			if err != nil {
				return err
			}
			if err := a.session.DeleteCategory(cmd.Context(), c.ID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successText("Deleted category "+c.Name))
			return nil
		},
	}
	return cmd
}

func newCategoriesExcludeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exclude <category> [other...]",
		Short: "Set the categories that cannot be assigned together with one",
		Long:  `Replace the exclusion set of a category. With no other categories the set is cleared. Exclusion is applied in both directions.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.findCategory(args[0])
			if err != nil {
				return err
			}
			ids, err := a.categoryIDs(args[1:])
			if err != nil {
				return err
			}
			if err := a.session.SetExclusions(cmd.Context(), c.ID, ids); err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), successText("Cleared exclusions of "+c.Name))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), successText(fmt.Sprintf("%s now excludes %s", c.Name, strings.Join(a.categoryNames(ids), ", "))))
			return nil
		},
	}
	return cmd
}

// categoryIDs resolves category references to ids
func (a *app) categoryIDs(refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		c, err := a.findCategory(ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (a *app) categoryNames(ids []string) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if c, ok := a.session.Category(id); ok {
			names = append(names, c.Name)
		} else {
			names = append(names, id)
		}
	}
	return names
}
