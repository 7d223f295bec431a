package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"impractical.co/semka"
	"impractical.co/semka/fetch"
	"impractical.co/semka/host"
	"impractical.co/semka/widgets"
)

type options struct {
	configPath string
	cfg        config
	logLevel   string
	timeout    string
}

func newRootCmd() *cobra.Command {
	opts := &options{cfg: defaultConfig()}
	cmd := &cobra.Command{
		Use:           "semka",
		Short:         "Load and render semka sites",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.resolve(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to a semka.toml config file")
	flags.StringVar(&opts.cfg.SiteDir, "site-dir", opts.cfg.SiteDir, "Directory holding the site")
	flags.StringVar(&opts.cfg.BaseURL, "base-url", "", "Load the site from this URL instead of a directory")
	flags.StringVar(&opts.cfg.DocumentsRoot, "documents-root", opts.cfg.DocumentsRoot, "Directory of documents, relative to the site")
	flags.IntVar(&opts.cfg.MaxDepth, "max-depth", opts.cfg.MaxDepth, "How deeply documents may include each other")
	flags.StringVar(&opts.logLevel, "log-level", opts.cfg.LogLevel.String(), "Log level (debug, info, warn, error)")
	flags.IntVar(&opts.cfg.Concurrency, "concurrency", opts.cfg.Concurrency, "How many fetches run at once")
	flags.StringVar(&opts.timeout, "timeout", opts.cfg.Timeout.String(), "Give up loading the site after this long")

	cmd.AddCommand(newRenderCmd(opts), newDepsCmd(opts))
	return cmd
}

// resolve loads the config file, if any, and lets flags that were set
// explicitly win over it.
func (o *options) resolve(cmd *cobra.Command) error {
	flagCfg := o.cfg
	cfg := defaultConfig()
	if o.configPath != "" {
		var err error
		cfg, err = loadConfig(o.configPath, cfg)
		if err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("site-dir") {
		cfg.SiteDir = flagCfg.SiteDir
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = flagCfg.BaseURL
	}
	if flags.Changed("documents-root") {
		cfg.DocumentsRoot = flagCfg.DocumentsRoot
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = flagCfg.MaxDepth
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = flagCfg.Concurrency
	}
	if flags.Changed("format") {
		cfg.Format = flagCfg.Format
	}
	if flags.Changed("log-level") {
		if err := cfg.LogLevel.UnmarshalText([]byte(o.logLevel)); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
	}
	if flags.Changed("timeout") {
		timeout, err := time.ParseDuration(o.timeout)
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	o.cfg = cfg
	return cfg.validate()
}

// load builds a Site for page and runs a host Loop until every document
// it needs has loaded or failed.
func (o *options) load(cmd *cobra.Command, page string) (*host.Loop, context.Context, error) {
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: o.cfg.LogLevel}))
	ctx := semka.LoggingContext(cmd.Context(), logger)

	fetcher, err := o.fetcher()
	if err != nil {
		return nil, ctx, err
	}
	site := &semka.Site{
		Registry: semka.NewRegistry().
			AddWidget(widgets.MarkdownFactory()).
			AddWidget(widgets.StylesheetFactory()),
		DocumentsRoot: semka.MustParsePath(o.cfg.DocumentsRoot),
		MaxDepth:      o.cfg.MaxDepth,
	}
	if page != "" {
		site.PagePath, err = semka.ParsePath(page)
		if err != nil {
			return nil, ctx, err
		}
	}

	loop := host.New(site, fetcher, host.WithConcurrency(o.cfg.Concurrency))
	loadCtx, cancel := context.WithTimeout(ctx, o.cfg.Timeout)
	defer cancel()
	if err := loop.RunUntilIdle(loadCtx); err != nil {
		return nil, ctx, fmt.Errorf("error loading site: %w", err)
	}
	return loop, ctx, nil
}

func (o *options) fetcher() (semka.Fetcher, error) {
	if o.cfg.BaseURL != "" {
		return fetch.NewHTTP(o.cfg.BaseURL)
	}
	info, err := os.Stat(o.cfg.SiteDir)
	if err != nil {
		return nil, fmt.Errorf("site dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site dir %q is not a directory", o.cfg.SiteDir)
	}
	return fetch.NewFS(os.DirFS(o.cfg.SiteDir)), nil
}
