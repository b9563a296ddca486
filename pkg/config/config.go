package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the dataset tool
type Config struct {
	// Root directory for images, dictionaries and logs
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Search page collection
	Collector CollectorConfig `yaml:"collector" json:"collector"`

	// Annotation export
	Annotations AnnotationsConfig `yaml:"annotations" json:"annotations"`

	// Grid rendering
	Grid GridConfig `yaml:"grid" json:"grid"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	Workers     int           `yaml:"workers" json:"workers"`
	UserAgent   string        `yaml:"user_agent" json:"user_agent"`
	JPEGQuality int           `yaml:"jpeg_quality" json:"jpeg_quality"`
}

// CollectorConfig holds search page settings
type CollectorConfig struct {
	SearchURL string `yaml:"search_url" json:"search_url"`
	Limit     int    `yaml:"limit" json:"limit"`
}

// AnnotationsConfig holds annotation export settings
type AnnotationsConfig struct {
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format"`
}

// GridConfig holds grid rendering settings
type GridConfig struct {
	Columns  int    `yaml:"columns" json:"columns"`
	CellSize int    `yaml:"cell_size" json:"cell_size"`
	Output   string `yaml:"output" json:"output"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data",
		Download: DownloadConfig{
			Timeout:     30 * time.Second,
			Workers:     1,
			UserAgent:   "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			JPEGQuality: 95,
		},
		Collector: CollectorConfig{
			SearchURL: "https://unsplash.com/s/photos/{query}",
			Limit:     0,
		},
		Annotations: AnnotationsConfig{
			File:   "unsplash.csv",
			Format: "csv",
		},
		Grid: GridConfig{
			Columns:  5,
			CellSize: 200,
			Output:   "grid.jpg",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if dataDir := os.Getenv("IMGDATASET_DATA_DIR"); dataDir != "" {
		c.DataDir = dataDir
	}

	if timeout := os.Getenv("IMGDATASET_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid IMGDATASET_TIMEOUT: %w", err)
		}
		c.Download.Timeout = d
	}

	if workers := os.Getenv("IMGDATASET_WORKERS"); workers != "" {
		val, err := strconv.Atoi(workers)
		if err != nil {
			return fmt.Errorf("invalid IMGDATASET_WORKERS: %w", err)
		}
		c.Download.Workers = val
	}

	if userAgent := os.Getenv("IMGDATASET_USER_AGENT"); userAgent != "" {
		c.Download.UserAgent = userAgent
	}

	if searchURL := os.Getenv("IMGDATASET_SEARCH_URL"); searchURL != "" {
		c.Collector.SearchURL = searchURL
	}

	if annotations := os.Getenv("IMGDATASET_ANNOTATIONS_FILE"); annotations != "" {
		c.Annotations.File = annotations
	}

	if logLevel := os.Getenv("IMGDATASET_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	if logFile := os.Getenv("IMGDATASET_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".imgdataset.yaml",
		".imgdataset.yml",
		filepath.Join(home, ".config", "imgdataset", "config.yaml"),
		filepath.Join(home, ".config", "imgdataset", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.DataDir == "" {
		errs = append(errs, errors.New("data directory is required"))
	}

	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.Workers <= 0 {
		errs = append(errs, errors.New("workers must be positive"))
	}
	if c.Download.Workers > 10 {
		errs = append(errs, errors.New("workers should not exceed 10"))
	}
	if c.Download.JPEGQuality < 1 || c.Download.JPEGQuality > 100 {
		errs = append(errs, errors.New("jpeg quality must be between 1 and 100"))
	}

	if !strings.Contains(c.Collector.SearchURL, "{query}") {
		errs = append(errs, errors.New("search url must contain {query}"))
	}
	if c.Collector.Limit < 0 {
		errs = append(errs, errors.New("collector limit cannot be negative"))
	}

	validFormats := map[string]bool{"csv": true, "parquet": true}
	if !validFormats[strings.ToLower(c.Annotations.Format)] {
		errs = append(errs, errors.New("invalid annotations format"))
	}
	if c.Annotations.File == "" {
		errs = append(errs, errors.New("annotations file is required"))
	}

	if c.Grid.Columns <= 0 {
		errs = append(errs, errors.New("grid columns must be positive"))
	}
	if c.Grid.CellSize <= 0 {
		errs = append(errs, errors.New("grid cell size must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if dataDir, ok := flags["data-dir"].(string); ok && dataDir != "" {
		c.DataDir = dataDir
	}
	if workers, ok := flags["workers"].(int); ok && workers > 0 {
		c.Download.Workers = workers
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Download.Timeout = timeout
	}
	if limit, ok := flags["limit"].(int); ok && limit >= 0 {
		c.Collector.Limit = limit
	}
	if out, ok := flags["annotations-file"].(string); ok && out != "" {
		c.Annotations.File = out
	}
	if format, ok := flags["annotations-format"].(string); ok && format != "" {
		c.Annotations.Format = format
	}
	if cell, ok := flags["cell-size"].(int); ok && cell > 0 {
		c.Grid.CellSize = cell
	}
	if out, ok := flags["grid-output"].(string); ok && out != "" {
		c.Grid.Output = out
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Resolve loads configuration from all sources without validating it.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Resolve(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".imgdataset.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	return config, nil
}

// Load resolves configuration from all sources and validates it
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	config, err := Resolve(configPath, flags)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
