package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"imgdataset/pkg/collector"
	"imgdataset/pkg/ui"
)

func newCollectCmd(a *app) *cobra.Command {
	var (
		limit    int
		download bool
	)

	cmd := &cobra.Command{
		Use:   "collect <query>...",
		Short: "Collect image URLs for search queries into label dictionaries",
		Long: `Scan the search page of each query and merge the images that carry an ixid
into <data-dir>/<query>.json. Running collect again only adds or updates
entries.`,
		Example: `  imgdataset collect cat dog
  imgdataset collect "red fox" --limit 20 --download`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(a, args, download)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum images per query (0 = all on the page)")
	cmd.Flags().BoolVar(&download, "download", false, "download the collected images right away")

	return cmd
}

func runCollect(a *app, queries []string, download bool) error {
	c := collector.New(a.client(), a.cfg.Collector.SearchURL, a.log)
	store := a.dictionaries()

	var collected int
	for _, query := range queries {
		dict, err := c.Collect(query, a.cfg.Collector.Limit)
		if err != nil {
			ui.PrintError(fmt.Sprintf("Failed to collect %s", query), err)
			continue
		}
		if dict.Len() == 0 {
			ui.PrintWarning(fmt.Sprintf("No images with an ixid found for %s", query))
			continue
		}

		path, err := store.Save(dict, query)
		if err != nil {
			ui.PrintError(fmt.Sprintf("Failed to save %s", query), err)
			continue
		}
		collected++

		ui.PrintInfo(query, fmt.Sprintf("%d new or updated entries → %s", dict.Len(), path))

		if download {
			batch := a.batch()
			batch.SetObserver(ui.NewBatchProgress(query, a.verbose()))
			report, err := batch.DownloadLabel(query, nil)
			if err != nil {
				ui.PrintError(fmt.Sprintf("Failed to download %s", query), err)
				continue
			}
			printFailures(report)
		}
	}

	if collected == 0 {
		return fmt.Errorf("nothing collected")
	}
	return nil
}
