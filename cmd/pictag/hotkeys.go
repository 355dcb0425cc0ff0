package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pictag/internal/errors"
	"pictag/internal/hotkey"
	"pictag/pkg/types"
)

// NewHotkeysCmd creates the hotkeys command
func NewHotkeysCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hotkeys",
		Aliases: []string{"hotkey", "keys"},
		Short:   "Manage the directory's hotkeys",
	}

	cmd.AddCommand(newHotkeysListCmd(opts))
	cmd.AddCommand(newHotkeysAddCmd(opts))
	cmd.AddCommand(newHotkeysRemoveCmd(opts))

	return cmd
}

func newHotkeysListCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List hotkeys and their actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			hotkeys := a.session.Hotkeys()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), hotkeys)
			}
			out := cmd.OutOrStdout()
			for _, h := range hotkeys {
				fmt.Fprintf(out, "%-16s %-32s %s\n", hotkey.Describe(h.Key, h.Modifiers), a.describeAction(h.Action), mutedText(h.ID))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")
	return cmd
}

func newHotkeysAddCmd(opts *rootOptions) *cobra.Command {
	var (
		mods       []string
		toggle     string
		toggleNext string
	)

	cmd := &cobra.Command{
		Use:   "add <key> [action]",
		Short: "Bind a key to an action",
		Long: `Bind a key, with optional modifiers, to an action.

Actions are next_image, previous_image, delete_image_and_next,
toggle_category_<id> and toggle_category_next_<id>. Use --toggle or
--toggle-next to name the category instead of writing its id.

Keys are single characters or names such as ArrowRight, Delete or Enter.
Ctrl and Cmd are treated as the same modifier.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			var action string
			switch {
			case toggle != "":
				c, err := a.findCategory(toggle)
				if err != nil {
					return err
				}
				action = hotkey.ToggleAction(c.ID)
			case toggleNext != "":
				c, err := a.findCategory(toggleNext)
				if err != nil {
					return err
				}
				action = hotkey.ToggleNextAction(c.ID)
			case len(args) == 2:
				action = args[1]
			default:
				return errors.NewValidationError("an action or --toggle/--toggle-next is required", "action")
			}

			modifiers := make([]types.Modifier, 0, len(mods))
			for _, m := range mods {
				mod, err := parseModifier(m)
				if err != nil {
					return err
				}
				modifiers = append(modifiers, mod)
			}

			h, err := a.session.AddHotkey(cmd.Context(), types.HotkeyConfig{Key: args[0], Modifiers: modifiers, Action: action})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successText(fmt.Sprintf("Bound %s to %s", hotkey.Describe(h.Key, h.Modifiers), a.describeAction(h.Action))))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&mods, "mod", "m", nil, "modifiers: Ctrl, Cmd, Alt, Shift")
	cmd.Flags().StringVar(&toggle, "toggle", "", "toggle this category (id or name)")
	cmd.Flags().StringVar(&toggleNext, "toggle-next", "", "toggle this category (id or name) and advance")
	return cmd
}

func newHotkeysRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a hotkey",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.session.RemoveHotkey(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), successText("Removed hotkey "+args[0]))
			return nil
		},
	}
}

func parseModifier(s string) (types.Modifier, error) {
	for _, m := range []types.Modifier{types.ModCtrl, types.ModCmd, types.ModAlt, types.ModShift} {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	if strings.EqualFold(s, "meta") {
		return types.ModCmd, nil
	}
	return "", errors.NewValidationError("unknown modifier: "+s, "modifiers")
}

// describeAction renders an action with the category name in place of
// its id
func (a *app) describeAction(raw string) string {
	action := hotkey.ParseAction(raw)
	switch action.Kind {
	case hotkey.ActionNone:
		return mutedText("(none)")
	case hotkey.ActionToggleCategory, hotkey.ActionToggleCategoryNext:
		name := action.CategoryID
		if c, ok := a.session.Category(action.CategoryID); ok {
			name = c.Name
		}
		return action.Kind.String() + " " + name
	default:
		return raw
	}
}
