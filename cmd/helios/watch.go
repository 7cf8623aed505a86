package main

import (
	"github.com/spf13/cobra"

	"github.com/five82/helios/internal/app"
)

func newWatchCmd() *cobra.Command {
	var opts app.Options
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show solar event times from the host",
		Long: `Connect to the host and show the selected day's dawn, sunrise, sunset and dusk.

On a terminal this runs the interactive view. When stdout is not a terminal,
or with --plain, status changes and days are printed one per line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/helios/config.toml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file (default ~/.config/helios/prefs.toml)")
	flags.StringVar(&opts.HostAddr, "host", "", "host address, overrides host_addr")
	flags.BoolVar(&opts.Plain, "plain", false, "print lines instead of the interactive view")
	flags.Int32Var(&opts.StartOffset, "offset", 0, "day offset to start on")
	flags.BoolVar(&opts.Debug, "debug", false, "log at debug level")
	return cmd
}
