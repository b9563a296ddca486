package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"imgdataset/pkg/ui"
)

func newSaveCmd(a *app) *cobra.Command {
	var (
		name string
		tf   transformFlags
	)

	cmd := &cobra.Command{
		Use:   "save <url>",
		Short: "Download and store a single image",
		Long: `Fetch one image and store it as <data-dir>/<name>.jpg. Without --name the
URL's ixid query parameter is used.`,
		Example: `  imgdataset save "https://images.unsplash.com/photo-1?ixid=ABC123"
  imgdataset save https://example.com/cat.png --name cat-001 --resize 128x128`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transform, err := tf.build()
			if err != nil {
				return err
			}

			res := a.persister().Persist(args[0], name, transform)
			if res.Err != nil {
				return fmt.Errorf("failed to save %s: %w", args[0], res.Err)
			}

			bounds := res.Image.Bounds()
			ui.PrintInfo("Saved", res.Path)
			ui.PrintInfo("Size", fmt.Sprintf("%dx%d", bounds.Dx(), bounds.Dy()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "image id (default: the URL's ixid)")
	tf.register(cmd, false)

	return cmd
}
