package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the xport configuration file (~/.config/xport/config.yaml).
// Numeric fields are pointers so "not set" can be told apart from zero.
type Config struct {
	DataDir string `yaml:"data_dir"`

	// Output
	ExportFormat string `yaml:"export_format"`
	HeadRows     *int64 `yaml:"head_rows"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "xport", "config.yaml")
}

// applyLoggingConfig applies config file logging defaults when the
// corresponding CLI flag was not explicitly set.
func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") && !debug {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

func applyDataDirConfig(c *cli.Command, cfg Config) {
	if cfg.DataDir != "" && !c.IsSet("data-dir") {
		dataDir = cfg.DataDir
	}
}

func applyHeadConfig(c *cli.Command, cfg Config, rows *int64) {
	if cfg.HeadRows != nil && !c.IsSet("rows") && !c.IsSet("n") {
		*rows = *cfg.HeadRows
	}
}

func applyExportConfig(c *cli.Command, cfg Config, format *string) {
	if cfg.ExportFormat != "" && !c.IsSet("format") {
		*format = cfg.ExportFormat
	}
}

func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
