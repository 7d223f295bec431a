package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"impractical.co/semka"
	"impractical.co/semka/host"
)

const (
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

// config is everything the CLI needs to load and render a site.
type config struct {
	SiteDir       string
	BaseURL       string
	DocumentsRoot string
	MaxDepth      int
	LogLevel      slog.Level
	Concurrency   int
	Format        string
	Timeout       time.Duration
}

func defaultConfig() config {
	return config{
		SiteDir:       ".",
		DocumentsRoot: semka.DefaultDocumentsRoot,
		MaxDepth:      semka.DefaultMaxDepth,
		LogLevel:      slog.LevelWarn,
		Concurrency:   host.DefaultConcurrency,
		Format:        formatHTML,
		Timeout:       30 * time.Second,
	}
}

// semka.toml key mapping to config.
type fileConfig struct {
	SiteDir       string `toml:"site_dir"`
	BaseURL       string `toml:"base_url"`
	DocumentsRoot string `toml:"documents_root"`
	MaxDepth      int    `toml:"max_depth"`
	LogLevel      string `toml:"log_level"`
	Concurrency   int    `toml:"concurrency"`
	Format        string `toml:"format"`
	Timeout       string `toml:"timeout"`
}

// loadConfig overlays the keys set in the TOML file at path on cfg.
func loadConfig(path string, cfg config) (config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load semka config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load semka config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("site_dir") {
		cfg.SiteDir = strings.TrimSpace(raw.SiteDir)
	}
	if meta.IsDefined("base_url") {
		cfg.BaseURL = strings.TrimSpace(raw.BaseURL)
	}
	if meta.IsDefined("documents_root") {
		cfg.DocumentsRoot = strings.TrimSpace(raw.DocumentsRoot)
	}
	if meta.IsDefined("max_depth") {
		cfg.MaxDepth = raw.MaxDepth
	}
	if meta.IsDefined("log_level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.TrimSpace(raw.LogLevel))); err != nil {
			return config{}, fmt.Errorf("load semka config: log_level: %w", err)
		}
	}
	if meta.IsDefined("concurrency") {
		cfg.Concurrency = raw.Concurrency
	}
	if meta.IsDefined("format") {
		cfg.Format = strings.TrimSpace(raw.Format)
	}
	if meta.IsDefined("timeout") {
		timeout, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return config{}, fmt.Errorf("load semka config: timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	return cfg, cfg.validate()
}

func (c config) validate() error {
	if c.Format != formatHTML && c.Format != formatMarkdown {
		return fmt.Errorf("unsupported format %q (expected %s or %s)", c.Format, formatHTML, formatMarkdown)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if _, err := semka.ParsePath(c.DocumentsRoot); err != nil {
		return fmt.Errorf("documents_root: %w", err)
	}
	return nil
}
