package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"imgdataset/pkg/storage"
	"imgdataset/pkg/ui"
)

func newInspectCmd(a *app) *cobra.Command {
	var scan bool

	cmd := &cobra.Command{
		Use:   "inspect <url>",
		Short: "Show status, headers and encoding of a URL",
		Long: `Send one GET to a URL and print its status code, content type, text
encoding and response headers. With --scan the URL is parsed as an HTML page
and the images it references are listed with the id they would be stored
under.`,
		Example: `  imgdataset inspect https://unsplash.com
  imgdataset inspect https://unsplash.com/s/photos/cat --scan`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(a, args[0], scan)
		},
	}

	cmd.Flags().BoolVar(&scan, "scan", false, "list the images referenced by the page")

	return cmd
}

func runInspect(a *app, url string, scan bool) error {
	client := a.client()

	probe, err := client.Probe(url)
	if err != nil {
		return err
	}

	ui.PrintInfo("URL", probe.URL)
	ui.PrintInfo("Status", fmt.Sprint(probe.StatusCode))
	ui.PrintInfo("Content type", probe.ContentType)
	ui.PrintInfo("Encoding", probe.Encoding)

	keys := make([]string, 0, len(probe.Header))
	for k := range probe.Header {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ui.PrintInfo("  "+k, probe.Header.Get(k))
	}

	if !scan {
		return nil
	}

	urls, err := client.ScanPage(url)
	if err != nil {
		return err
	}

	ui.PrintHighlight(fmt.Sprintf("%d images", len(urls)))
	for _, u := range urls {
		id, err := storage.ResolveName("", u)
		if err != nil {
			id = "-"
		}
		ui.PrintInfo(id, u)
	}
	return nil
}
