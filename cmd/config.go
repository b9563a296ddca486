package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"imgdataset/pkg/ui"
)

const exampleConfig = `# imgdataset configuration
#
# Environment variables prefixed with IMGDATASET_ override this file,
# for example IMGDATASET_DATA_DIR or IMGDATASET_WORKERS. Command line
# flags override both.

# Root directory for images, dictionaries and destination logs
data_dir: "./data"

download:
  # Per-request timeout
  timeout: 30s

  # Concurrent downloads, 1-10. 1 processes entries strictly in order.
  workers: 1

  # User agent sent with every request (empty for the default)
  user_agent: ""

  # Quality of stored JPEG files, 1-100
  jpeg_quality: 95

collector:
  # Search page scanned by 'collect'; {query} is replaced by the query
  search_url: "https://unsplash.com/s/photos/{query}"

  # Maximum images kept per query, 0 for all
  limit: 0

annotations:
  # Output of 'annotate'
  file: "unsplash.csv"

  # csv or parquet
  format: "csv"

grid:
  # Columns when no shape is given
  columns: 5

  # Cell size in pixels
  cell_size: 200

  # Output of 'grid'
  output: "grid.jpg"

logging:
  # debug, info, warn, error or disabled
  level: "info"

  # Also write JSON logs to this file (optional)
  file: ""
`

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage imgdataset configuration.

Configuration is resolved from, highest priority first:
  - Command line flags
  - Environment variables (IMGDATASET_*)
  - .env files (./.env, ~/.imgdataset.env)
  - Configuration file
  - Default values`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create an example configuration file",
			Long: `Create an example configuration file with all available options.

The file is created as .imgdataset.yaml in the current directory unless a
different path is given with --config.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigInit(a)
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the resolved configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigShow(a)
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Validate the resolved configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigValidate(a)
			},
		},
	)

	return cmd
}

func runConfigInit(a *app) error {
	configPath := a.configFile
	if configPath == "" {
		configPath = ".imgdataset.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	return nil
}

func runConfigShow(a *app) error {
	data, err := yaml.Marshal(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current configuration")
	fmt.Fprint(ui.Output, string(data))
	return nil
}

func runConfigValidate(a *app) error {
	if err := a.cfg.Validate(); err != nil {
		ui.PrintError("Configuration has errors:")
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				ui.PrintError("  - " + e.Error())
			}
		} else {
			ui.PrintError("  - " + err.Error())
		}
		return errors.New("invalid configuration")
	}

	if a.cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(a.cfg.Logging.File), 0755); err != nil {
			return fmt.Errorf("cannot create log directory: %w", err)
		}
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("Data directory", a.cfg.DataDir)
	ui.PrintInfo("Workers", fmt.Sprint(a.cfg.Download.Workers))
	ui.PrintInfo("Search URL", a.cfg.Collector.SearchURL)
	ui.PrintInfo("Log level", a.cfg.Logging.Level)
	return nil
}
