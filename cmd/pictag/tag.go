package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewTagCmd creates the tag command
func NewTagCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Assign categories to images",
	}

	cmd.AddCommand(newTagChangeCmd(opts, "toggle", "Add a category to an image, or remove it when already assigned", false))
	cmd.AddCommand(newTagChangeCmd(opts, "assign", "Add a category to an image; an existing assignment is kept", true))
	cmd.AddCommand(newTagShowCmd(opts))

	return cmd
}

func newTagChangeCmd(opts *rootOptions, use, short string, addOnly bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <image> <category>",
		Short: short,
		Long:  short + ". Categories the new one is mutually exclusive with are removed from the image.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			path := a.resolvePath(args[0])
			c, err := a.findCategory(args[1])
			if err != nil {
				return err
			}

			change := a.session.ToggleCategory
			if addOnly {
				change = a.session.AssignCategory
			}
			added, err := change(cmd.Context(), path, c.ID)
			if err != nil {
				return err
			}

			verb := "Removed"
			if added {
				verb = "Added"
			}
			fmt.Fprintln(cmd.OutOrStdout(), successText(fmt.Sprintf("%s %s on %s", verb, c.Name, path)))
			return nil
		},
	}
}

func newTagShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <image>",
		Short: "Print the categories of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			path := a.resolvePath(args[0])
			assigned := a.session.AssignmentsFor(path)
			out := cmd.OutOrStdout()
			if len(assigned) == 0 {
				fmt.Fprintln(out, infoText(path+" has no categories"))
				return nil
			}
			ids := make([]string, len(assigned))
			for i, as := range assigned {
				ids[i] = as.CategoryID
			}
			fmt.Fprintf(out, "%s: %s\n", path, strings.Join(a.categoryNames(ids), ", "))
			return nil
		},
	}
}
