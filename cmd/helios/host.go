package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/five82/helios/internal/config"
	"github.com/five82/helios/internal/host"
)

type hostOptions struct {
	configPath  string
	almanacPath string
	listen      string
	legacy      bool
	debug       bool
}

func newHostCmd() *cobra.Command {
	var opts hostOptions
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Serve solar event times to clients",
		Long: `Run the companion host. It greets each client with a handshake and answers
time requests with three-day bundles read from the almanac.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default ~/.config/helios/config.toml)")
	flags.StringVar(&opts.almanacPath, "almanac", "", "almanac YAML, overrides almanac_path")
	flags.StringVar(&opts.listen, "listen", "", "listen address, overrides listen")
	flags.BoolVar(&opts.legacy, "legacy", false, "answer with single-day payloads")
	flags.BoolVar(&opts.debug, "debug", false, "log at debug level")
	return cmd
}

func runHost(cmd *cobra.Command, opts hostOptions) error {
	fs := afero.NewOsFs()

	cfg, err := config.Load(fs, opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.listen != "" {
		cfg.Listen = opts.listen
	}
	if opts.almanacPath != "" {
		path, err := config.ExpandPath(opts.almanacPath)
		if err != nil {
			return fmt.Errorf("almanac path: %w", err)
		}
		cfg.AlmanacPath = path
	}

	zone, err := cfg.Zone()
	if err != nil {
		return err
	}

	almanac, err := host.LoadAlmanac(fs, cfg.AlmanacPath)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger.Info("almanac loaded",
		slog.String("path", cfg.AlmanacPath),
		slog.String("location", almanac.Location),
		slog.Int("days", len(almanac.Days)),
		slog.Bool("legacy", opts.legacy),
	)

	server := host.NewServer(host.Options{
		Almanac:  almanac,
		Location: zone,
		Legacy:   opts.legacy,
		Logger:   logger,
	})
	return host.Serve(cmd.Context(), cfg.Listen, server)
}
