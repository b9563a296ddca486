package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"imgdataset/internal/downloader"
	"imgdataset/pkg/config"
	"imgdataset/pkg/dictionary"
	"imgdataset/pkg/fetcher"
	"imgdataset/pkg/logger"
	"imgdataset/pkg/storage"
	"imgdataset/pkg/ui"
)

// app carries global flags and the resolved configuration to subcommands
type app struct {
	configFile string
	dataDir    string
	logLevel   string
	quiet      bool
	noColor    bool

	cfg *config.Config
	log logger.Logger
}

// flagKeys maps command line flags onto configuration keys
var flagKeys = map[string]string{
	"data-dir":  "data-dir",
	"log-level": "log-level",
	"workers":   "workers",
	"timeout":   "timeout",
	"limit":     "limit",
	"format":    "annotations-format",
	"cell-size": "cell-size",
}

// NewRootCmd builds the imgdataset command tree
func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "imgdataset",
		Short: "Build labeled image datasets from search queries and URLs",
		Long: `imgdataset fetches images over HTTP, stores them as JPEG files under a data
directory, records id→URL dictionaries per label as JSON and exports flat
label annotations for classification tasks.

Typical flow:
  imgdataset collect cat dog        # search pages → data/cat.json, data/dog.json
  imgdataset download label cat dog # dictionaries → data/<id>.jpg
  imgdataset annotate cat dog       # → unsplash.csv with "<id>.jpg, <index>,"
  imgdataset grid --dict data/cat.json`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "config file (default is .imgdataset.yaml or ~/.config/imgdataset/config.yaml)")
	cmd.PersistentFlags().StringVarP(&a.dataDir, "data-dir", "d", "", "data directory (default ./data)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	cmd.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "suppress all output except errors")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colored output")

	cmd.CompletionOptions.DisableDefaultCmd = true

	cmd.AddCommand(
		newCollectCmd(a),
		newDownloadCmd(a),
		newSaveCmd(a),
		newAnnotateCmd(a),
		newGridCmd(a),
		newInspectCmd(a),
		newStatusCmd(a),
		newConfigCmd(a),
	)

	return cmd
}

// setup resolves configuration and initializes logging and terminal output
func (a *app) setup(cmd *cobra.Command) error {
	ui.SetQuiet(a.quiet)
	if a.noColor {
		ui.SetColor(false)
	}

	flags := a.flagOverrides(cmd)

	// config subcommands report on invalid configuration themselves; init
	// creates the file --config names, so there is nothing to resolve yet
	if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
		if cmd.Name() == "init" {
			a.log = logger.NewNopLogger()
			return nil
		}
		cfg, err := config.Resolve(a.configFile, flags)
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.log = logger.NewNopLogger()
		return nil
	}

	cfg, err := config.Load(a.configFile, flags)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = logger.GetLogger()
	a.log.DebugWithFields("configuration loaded", map[string]interface{}{
		"command":  cmd.CommandPath(),
		"data_dir": cfg.DataDir,
		"workers":  cfg.Download.Workers,
	})

	return nil
}

// flagOverrides collects explicitly set flags for config.MergeCommandLineFlags
func (a *app) flagOverrides(cmd *cobra.Command) map[string]interface{} {
	overrides := make(map[string]interface{})
	fs := cmd.Flags()

	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		switch f.Value.Type() {
		case "int":
			v, _ := fs.GetInt(name)
			overrides[key] = v
		case "duration":
			v, _ := fs.GetDuration(name)
			overrides[key] = v
		default:
			overrides[key] = f.Value.String()
		}
	}

	if f := fs.Lookup("out"); f != nil && f.Changed {
		switch cmd.Name() {
		case "annotate":
			overrides["annotations-file"] = f.Value.String()
		case "grid":
			overrides["grid-output"] = f.Value.String()
		}
	}

	if a.quiet && !fs.Changed("log-level") {
		overrides["log-level"] = "error"
	}

	return overrides
}

func (a *app) client() *fetcher.Client {
	return fetcher.NewClient(a.cfg.Download.Timeout, a.cfg.Download.UserAgent, a.log)
}

func (a *app) images() *storage.Manager {
	return storage.NewManager(a.cfg.DataDir, a.cfg.Download.JPEGQuality, a.log)
}

func (a *app) dictionaries() *dictionary.Store {
	return dictionary.NewStore(a.cfg.DataDir, a.log)
}

func (a *app) persister() *downloader.Persister {
	return downloader.NewPersister(a.client(), a.images(), a.log)
}

func (a *app) batch() *downloader.Batch {
	return downloader.NewBatch(a.persister(), a.dictionaries(), a.images(), a.cfg.Download.Workers, a.log)
}

func (a *app) verbose() bool {
	return strings.EqualFold(a.cfg.Logging.Level, "debug")
}
