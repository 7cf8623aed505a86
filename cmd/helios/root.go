package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version and Commit are set at build time via ldflags
	Version = "dev"
	Commit  = ""
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "helios",
		Short: "Helios - sunrise and sunset times from a paired host",
		Long: `Helios shows dawn, sunrise, sunset and dusk for today and nearby days.

The client (watch) asks a companion host for three-day bundles over a
websocket and caches them, so moving between neighboring days is instant.
The host (host) answers from a YAML almanac of precomputed times.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(fmt.Sprintf("helios version %s\ncommit: %s\n", Version, Commit))

	root.AddCommand(newWatchCmd())
	root.AddCommand(newHostCmd())
	root.AddCommand(newSchemaCmd())
	return root
}
