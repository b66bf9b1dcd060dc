package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

// SetupCmd creates the root command with all subcommands registered.
func SetupCmd(version string) *cobra.Command {
	opts := &Options{}
	cmd := NewRootCmd(opts)
	cmd.Version = version
	cmd.AddCommand(
		NewResolveCmd(opts),
		NewServeCmd(opts),
		NewPingCmd(opts),
		NewProbeCmd(opts),
	)
	return cmd
}

func main() {
	cmd := SetupCmd(Version)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
