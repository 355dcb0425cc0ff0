package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pictag/internal/errors"
	"pictag/pkg/types"
)

// NewViewCmd creates the view command
func NewViewCmd(opts *rootOptions) *cobra.Command {
	var (
		category   string
		name       string
		nameOp     string
		sizeOp     string
		size       string
		size2      string
		sortField  string
		direction  string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the filtered and sorted images",
		Long: `Apply a filter and an ordering to the directory's images and print the result.

The category filter takes a category id or name, or "uncategorized".
Sizes are in KB.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			f := types.DefaultFilters()
			switch category {
			case "", "all":
			case types.CategoryFilterUncategorized:
				f.CategoryID = types.CategoryFilterUncategorized
			default:
				c, err := a.findCategory(category)
				if err != nil {
					return err
				}
				f.CategoryID = c.ID
			}
			f.NamePattern = name
			f.NameOperator = types.NameOperator(nameOp)
			f.SizeOperator = types.SizeOperator(sizeOp)
			f.SizeValue = size
			f.SizeValue2 = size2
			a.session.SetFilters(f)

			o := a.session.Sort()
			if cmd.Flags().Changed("sort") {
				field, err := types.ParseSortField(sortField)
				if err != nil {
					return errors.NewValidationError(err.Error(), "sort")
				}
				o.Field = field
			}
			if cmd.Flags().Changed("direction") {
				dir, err := types.ParseSortDirection(direction)
				if err != nil {
					return errors.NewValidationError(err.Error(), "direction")
				}
				o.Direction = dir
			}
			a.session.SetSort(o)

			images := a.session.View()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), images)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, primaryText(fmt.Sprintf("%d of %d images, %s %s", len(images), len(a.session.Images()), o.Field, o.Direction)))
			printImages(out, images)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", `category id or name, "uncategorized" or "all"`)
	cmd.Flags().StringVarP(&name, "name", "n", "", "file name pattern")
	cmd.Flags().StringVar(&nameOp, "name-op", string(types.NameContains), "contains, startsWith, endsWith or exact")
	cmd.Flags().StringVar(&sizeOp, "size-op", string(types.SizeLargerThan), "largerThan, lessThan or between")
	cmd.Flags().StringVar(&size, "size", "", "size bound in KB")
	cmd.Flags().StringVar(&size2, "size2", "", "upper bound in KB for between")
	cmd.Flags().StringVarP(&sortField, "sort", "s", "", "name, dateCreated, lastCategorized or size")
	cmd.Flags().StringVar(&direction, "direction", "", "ascending or descending")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")

	return cmd
}
