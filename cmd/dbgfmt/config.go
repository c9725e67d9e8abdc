package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"

	"github.com/Neumenon/dbgfmt/stream"
)

// config is the TOML config file. Command-line flags override it.
type config struct {
	Format    string `toml:"format"`
	Indent    string `toml:"indent"`
	Prefix    string `toml:"prefix"`
	Color     bool   `toml:"color"`
	Dedupe    bool   `toml:"dedupe"`
	MaxRecord int    `toml:"max_record"`
}

// ConfigError reports a config file that could not be parsed.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// defaultConfigPath returns the per-user config location, or "" when
// the user config directory is unknown.
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "dbgfmt", "config.toml")
}

// loadConfig reads the config file at path, or the default location when
// path is empty. A missing file yields the zero config.
func loadConfig(path string) (*config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}
	cfg := &config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// options resolves the config into run options.
func (c *config) options() (*options, error) {
	opts := &options{
		format:    formatDebug,
		indent:    c.Indent,
		color:     c.Color,
		dedupe:    c.Dedupe,
		maxRecord: stream.DefaultMaxRecord,
	}
	if c.Format != "" {
		f, err := parseFormat(c.Format)
		if err != nil {
			return nil, err
		}
		opts.format = f
	}
	if c.Prefix != "" {
		re, err := compilePrefix(c.Prefix)
		if err != nil {
			return nil, err
		}
		opts.prefix = re
	}
	if c.MaxRecord < 0 {
		return nil, fmt.Errorf("invalid max_record %d", c.MaxRecord)
	}
	if c.MaxRecord > 0 {
		opts.maxRecord = c.MaxRecord
	}
	return opts, nil
}

// compilePrefix compiles a log prefix expression anchored at line start.
func compilePrefix(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)`)
	if err != nil {
		return nil, fmt.Errorf("invalid prefix: %w", err)
	}
	return re, nil
}
