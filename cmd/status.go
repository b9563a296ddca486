package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"imgdataset/pkg/ui"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <label>...",
		Short: "Show how much of each label's dictionary is stored",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(a, args)
		},
	}
}

func runStatus(a *app, labels []string) error {
	dicts := a.dictionaries()
	images := a.images()

	ui.PrintInfo("Data directory", a.cfg.DataDir)
	ui.PrintInfo("Stored images", fmt.Sprint(images.StoredCount()))

	for _, label := range labels {
		dict, err := dicts.Load(label)
		if err != nil {
			ui.PrintError(fmt.Sprintf("%s: no dictionary", label), err)
			continue
		}

		stored := 0
		for _, id := range dict.Keys() {
			if images.IsStored(id) {
				stored++
			}
		}

		logged, err := images.DestinationCount(label)
		if err != nil {
			return fmt.Errorf("failed to read destination log for %s: %w", label, err)
		}

		ui.PrintInfo(label, fmt.Sprintf("%d entries, %d stored, %d destination log lines", dict.Len(), stored, logged))
	}
	return nil
}
