package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/hervehildenbrand/sockcore/internal/display"
	"github.com/hervehildenbrand/sockcore/internal/probe"
	"github.com/hervehildenbrand/sockcore/pkg/socket"
	"github.com/spf13/cobra"
)

// NewProbeCmd creates the probe subcommand.
func NewProbeCmd(opts *Options) *cobra.Command {
	var (
		timeout    string
		workers    int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "probe <host:port>...",
		Short: "Check stream endpoints with non-blocking connects",
		Long: `Start a non-blocking connect to each endpoint, wait for it to become
writable and read the socket error to classify it as open, closed or
filtered. Endpoints are probed concurrently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			probeTimeout := cfg.ProbeTimeout
			if cmd.Flags().Changed("timeout") {
				if probeTimeout, err = parseDuration("timeout", timeout); err != nil {
					return err
				}
				if probeTimeout == 0 {
					return fmt.Errorf("invalid --timeout %q: must be positive", timeout)
				}
			}
			if cmd.Flags().Changed("workers") {
				if workers <= 0 {
					return fmt.Errorf("invalid --workers %d: must be positive", workers)
				}
				cfg.ProbeWorkers = workers
			}

			endpoints := make([]endpoint, 0, len(args))
			for _, arg := range args {
				ep, err := parseEndpoint(arg)
				if err != nil {
					return err
				}
				endpoints = append(endpoints, ep)
			}
			if opts.DryRun {
				return nil
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			targets, unresolved := resolveEndpoints(ctx, socket.NewResolver(), endpoints, opts.family())

			prober := probe.NewConnectProber(probeTimeout, cfg.ProbeWorkers, logger.Named("probe"))
			results := append(unresolved, prober.ProbeAll(ctx, targets)...)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			r := display.NewSimpleRenderer()
			for _, res := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r.RenderProbe(res))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&timeout, "timeout", "", "Connect timeout per endpoint (overrides config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent probes (overrides config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

// endpoint is a host and port from the command line.
type endpoint struct {
	raw  string
	host string
	port uint16
}

func parseEndpoint(s string) (endpoint, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return endpoint{}, fmt.Errorf("invalid endpoint %q: %w", s, err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil || port == 0 {
		return endpoint{}, fmt.Errorf("invalid port in endpoint %q", s)
	}
	if host == "" {
		return endpoint{}, fmt.Errorf("missing host in endpoint %q", s)
	}
	return endpoint{raw: s, host: host, port: uint16(port)}, nil
}

// resolveEndpoints resolves every endpoint. Failures come back as closed
// results so they are reported alongside the probes.
func resolveEndpoints(ctx context.Context, resolver *socket.Resolver, endpoints []endpoint, family socket.Family) ([]socket.Address, []probe.ConnectResult) {
	var targets []socket.Address
	var failed []probe.ConnectResult

	for _, ep := range endpoints {
		addr, err := resolver.ResolveFamily(ctx, ep.host, family)
		if err != nil {
			failed = append(failed, probe.ConnectResult{
				Target: ep.raw,
				State:  probe.StateClosed,
				Error:  err.Error(),
			})
			continue
		}
		targets = append(targets, addr.WithPort(ep.port))
	}
	return targets, failed
}
