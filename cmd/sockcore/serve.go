package main

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"time"

	"github.com/hervehildenbrand/sockcore/internal/config"
	"github.com/hervehildenbrand/sockcore/internal/display"
	"github.com/hervehildenbrand/sockcore/internal/reflector"
	"github.com/hervehildenbrand/sockcore/pkg/socket"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd(opts *Options) *cobra.Command {
	var bind string
	var port int
	var tui bool
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a datagram reflector",
		Long: `Run a datagram reflector that echoes every datagram back to its
sender. Use it as the far end for 'sockcore ping'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("bind") {
				cfg.Bind = bind
				if ip, err := netip.ParseAddr(bind); err == nil && ip.Is6() {
					cfg.Family = config.FamilyIPv6
				} else {
					cfg.Family = config.FamilyIPv4
				}
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			rcfg, err := reflectorConfig(cfg)
			if err != nil {
				return err
			}
			if opts.DryRun {
				return nil
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			r := reflector.New(rcfg, logger.Named("reflector"))
			if err := r.Start(); err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if tui && display.IsTerminal(os.Stdout) {
				return serveTUI(ctx, cancel, r, refresh)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "reflecting on %s\n", r.Addr())
			if err := r.Serve(ctx); err != nil {
				return err
			}
			display.NewSimpleRenderer().RenderStats(cmd.OutOrStdout(), r.Stats())
			return nil
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Bind address (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port (overrides config)")
	cmd.Flags().BoolVar(&tui, "tui", false, "Live view of peers (needs a terminal)")
	cmd.Flags().DurationVar(&refresh, "refresh", time.Second, "Live view refresh interval")

	return cmd
}

// reflectorConfig maps the file configuration onto the reflector.
func reflectorConfig(cfg *config.Config) (*reflector.Config, error) {
	ip, err := netip.ParseAddr(cfg.Bind)
	if err != nil {
		return nil, fmt.Errorf("invalid bind address %q", cfg.Bind)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if ip.Is4() != (cfg.Family == config.FamilyIPv4) {
		return nil, fmt.Errorf("bind address %s does not match family %s", cfg.Bind, cfg.Family)
	}

	return &reflector.Config{
		Bind:        socket.AddressFromNetIP(ip.WithZone(""), uint16(cfg.Port)),
		RecvBuffer:  cfg.RecvBuffer,
		SendBuffer:  cfg.SendBuffer,
		WaitTimeout: cfg.WaitTimeout,
	}, nil
}

// serveTUI runs the reflector in the background while the live view owns
// the terminal. Quitting the view stops the reflector.
func serveTUI(ctx context.Context, cancel context.CancelFunc, r *reflector.Reflector, refresh time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx) }()

	tuiErr := display.RunTUI(r.Addr().String(), r.Stats, refresh)
	cancel()

	if err := <-done; err != nil {
		return err
	}
	return tuiErr
}
