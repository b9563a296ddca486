package cmd

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"imgdataset/pkg/annotations"
	"imgdataset/pkg/ui"
)

func newAnnotateCmd(a *app) *cobra.Command {
	var (
		out       string
		format    string
		labelsOut string
	)

	cmd := &cobra.Command{
		Use:   "annotate <label>...",
		Short: "Export label annotations for saved dictionaries",
		Long: `Write one row per image id of each label's dictionary. The label index is
the label's position in the argument list. CSV rows have the form

  <id>.jpg, <index>,

with no header. Every label must have a saved dictionary; a missing one fails
the whole export.`,
		Example: `  imgdataset annotate cat dog
  imgdataset annotate cat dog --out train.csv --labels-out labels.json
  imgdataset annotate cat dog --format parquet --out train.parquet`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(a, args, labelsOut, cmd.Flags().Changed("out"))
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default from config, unsplash.csv or unsplash.parquet)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: csv or parquet")
	cmd.Flags().StringVar(&labelsOut, "labels-out", "", "also write the label map as JSON to this file")

	return cmd
}

func runAnnotate(a *app, labels []string, labelsOut string, explicitOut bool) error {
	exporter := annotations.NewExporter(a.dictionaries(), a.log)
	path := a.cfg.Annotations.File
	if !explicitOut {
		path = annotationsPath(path, a.cfg.Annotations.Format)
	}

	var (
		labelMap annotations.LabelMap
		err      error
	)
	switch strings.ToLower(a.cfg.Annotations.Format) {
	case "parquet":
		labelMap, err = exporter.ExportParquet(labels, path)
	default:
		labelMap, err = exporter.Export(labels, path)
	}
	if err != nil {
		return err
	}

	if labelsOut != "" {
		if err := annotations.SaveLabelMap(labelsOut, labelMap); err != nil {
			return err
		}
		ui.PrintInfo("Label map", labelsOut)
	}

	ui.PrintInfo("Annotations", path)
	for _, key := range sortedIndices(labelMap) {
		ui.PrintInfo(fmt.Sprintf("  %s", key), labelMap[key])
	}
	return nil
}

// annotationsPath swaps a configured .csv extension for .parquet when the
// export format is parquet
func annotationsPath(path, format string) string {
	if strings.ToLower(format) != "parquet" || !strings.EqualFold(filepath.Ext(path), ".csv") {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".parquet"
}

// sortedIndices orders label map keys numerically
func sortedIndices(m annotations.LabelMap) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})
	return keys
}
