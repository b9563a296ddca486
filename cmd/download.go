package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"imgdataset/internal/downloader"
	"imgdataset/pkg/ui"
)

// transformFlags holds the image transform options shared by download and
// save
type transformFlags struct {
	resize    string
	grayscale bool
}

func (t *transformFlags) register(cmd *cobra.Command, persistent bool) {
	fs := cmd.Flags()
	if persistent {
		fs = cmd.PersistentFlags()
	}
	fs.StringVar(&t.resize, "resize", "", "resize and center-crop to WxH, e.g. 224x224")
	fs.BoolVar(&t.grayscale, "grayscale", false, "store images in grayscale")
}

// build returns the transform, nil for none
func (t *transformFlags) build() (downloader.Transform, error) {
	var transforms []downloader.Transform
	if t.resize != "" {
		w, h, err := downloader.ParseSize(t.resize)
		if err != nil {
			return nil, err
		}
		transforms = append(transforms, downloader.Resize(w, h))
	}
	if t.grayscale {
		transforms = append(transforms, downloader.Grayscale())
	}
	if len(transforms) == 0 {
		return nil, nil
	}
	return downloader.Chain(transforms...), nil
}

func newDownloadCmd(a *app) *cobra.Command {
	var (
		tf      transformFlags
		workers int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download the images of dictionaries or URL lists",
		Long: `Download images and store them as <data-dir>/<id>.jpg.

Entries are independent: a failing entry is reported and the batch moves on.
With --workers 1 (the default) entries are processed one at a time in
dictionary order; with more workers they run concurrently but the report
and the destination log keep dictionary order.`,
	}

	tf.register(cmd, true)
	cmd.PersistentFlags().IntVarP(&workers, "workers", "w", 1, "number of concurrent downloads (1-10)")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "per-request timeout")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "label <label>...",
			Short: "Download the dictionaries saved for labels",
			Long: `Download every entry of <data-dir>/<label>.json and append the stored paths
to <data-dir>/<label>.txt.`,
			Example: `  imgdataset download label cat dog
  imgdataset download label cat --resize 224x224 --workers 4`,
			Args: cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDownloadLabels(a, &tf, args)
			},
		},
		&cobra.Command{
			Use:   "file <dictionary.json>...",
			Short: "Download the entries of dictionary files",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDownloadFiles(a, &tf, args)
			},
		},
		&cobra.Command{
			Use:   "urls <url>...",
			Short: "Download URLs, naming each image by its ixid parameter",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDownloadURLs(a, &tf, args)
			},
		},
	)

	return cmd
}

func runDownloadLabels(a *app, tf *transformFlags, labels []string) error {
	transform, err := tf.build()
	if err != nil {
		return err
	}

	batch := a.batch()
	var failedLabels int
	for _, label := range labels {
		batch.SetObserver(ui.NewBatchProgress(label, a.verbose()))

		report, err := batch.DownloadLabel(label, transform)
		if err != nil {
			ui.PrintError(fmt.Sprintf("Failed to download %s", label), err)
			failedLabels++
			continue
		}
		printFailures(report)
	}

	if failedLabels == len(labels) {
		return fmt.Errorf("no label could be downloaded")
	}
	return nil
}

func runDownloadFiles(a *app, tf *transformFlags, paths []string) error {
	transform, err := tf.build()
	if err != nil {
		return err
	}

	batch := a.batch()
	var failedFiles int
	for _, path := range paths {
		batch.SetObserver(ui.NewBatchProgress(path, a.verbose()))

		report, err := batch.DownloadAllFromFile(path, transform)
		if err != nil {
			ui.PrintError(fmt.Sprintf("Failed to download %s", path), err)
			failedFiles++
			continue
		}
		printFailures(report)
	}

	if failedFiles == len(paths) {
		return fmt.Errorf("no dictionary could be downloaded")
	}
	return nil
}

func runDownloadURLs(a *app, tf *transformFlags, urls []string) error {
	transform, err := tf.build()
	if err != nil {
		return err
	}

	batch := a.batch()
	batch.SetObserver(ui.NewBatchProgress("urls", a.verbose()))

	report := batch.DownloadAllURLs(urls, transform)
	printFailures(report)

	if report.Succeeded == 0 {
		return fmt.Errorf("no url could be downloaded")
	}
	return nil
}

// printFailures lists failed entries after the progress summary
func printFailures(report downloader.Report) {
	for _, res := range report.Results {
		if res.Err == nil {
			continue
		}
		name := res.ID
		if name == "" {
			name = res.URL
		}
		ui.PrintWarning(fmt.Sprintf("  %s", name), res.Err)
	}
}
