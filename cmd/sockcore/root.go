package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hervehildenbrand/sockcore/internal/config"
	"github.com/hervehildenbrand/sockcore/pkg/socket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options holds the flags shared by every subcommand.
type Options struct {
	ConfigPath string
	LogLevel   string
	DryRun     bool
	IPv4Only   bool // Force IPv4 only
	IPv6Only   bool // Force IPv6 only
}

// NewRootCmd creates and returns the root cobra command.
func NewRootCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sockcore",
		Short: "Socket layer toolkit",
		Long: `sockcore exercises a portable socket layer: name resolution,
a datagram reflector, datagram round-trip pings and non-blocking
stream connect probes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// -4 and -6 are mutually exclusive
			if opts.IPv4Only && opts.IPv6Only {
				return fmt.Errorf("-4/--ipv4 and -6/--ipv6 are mutually exclusive")
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "Validate args and config without running")

	// IP version flags
	cmd.PersistentFlags().BoolVarP(&opts.IPv4Only, "ipv4", "4", false, "Use IPv4 only")
	cmd.PersistentFlags().BoolVarP(&opts.IPv6Only, "ipv6", "6", false, "Use IPv6 only")

	return cmd
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	switch {
	case opts.IPv4Only && cfg.Family != config.FamilyIPv4:
		cfg.Family = config.FamilyIPv4
		cfg.Bind = "0.0.0.0"
	case opts.IPv6Only && cfg.Family != config.FamilyIPv6:
		cfg.Family = config.FamilyIPv6
		cfg.Bind = "::"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// family returns the address family selected by -4/-6, or FamilyUnspec.
func (o *Options) family() socket.Family {
	switch {
	case o.IPv4Only:
		return socket.FamilyIPv4
	case o.IPv6Only:
		return socket.FamilyIPv6
	default:
		return socket.FamilyUnspec
	}
}

// newLogger builds the process logger and installs it in the socket layer.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	lvl, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if lvl <= zap.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Encoding = "console"
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	socket.SetLogger(logger)
	return logger, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// parseDuration parses a duration flag value.
func parseDuration(flag, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid --%s %q: %w", flag, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid --%s %q: must not be negative", flag, value)
	}
	return d, nil
}
