package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pictag/pkg/types"
)

// NewScanCmd creates the scan command
func NewScanCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the images of the directory",
		Long:  `Scan the directory for image files above the minimum size and print their size, dimensions and creation date.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			images := a.session.Images()
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), images)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, primaryText(fmt.Sprintf("%d images in %s", len(images), a.dir)))
			printImages(out, images)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output results in JSON format")

	return cmd
}

func printImages(out io.Writer, images []types.Image) {
	for _, img := range images {
		dims := ""
		if img.Width > 0 && img.Height > 0 {
			dims = fmt.Sprintf("%dx%d", img.Width, img.Height)
		}
		created := ""
		if !img.CreatedAt.IsZero() {
			created = img.CreatedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(out, "%-40s %10s %11s %s\n", img.Name(), humanize.Bytes(uint64(img.Size)), dims, mutedText(created))
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
