package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/hervehildenbrand/sockcore/internal/config"
	"github.com/hervehildenbrand/sockcore/internal/display"
	"github.com/hervehildenbrand/sockcore/internal/export"
	"github.com/hervehildenbrand/sockcore/internal/monitor"
	"github.com/hervehildenbrand/sockcore/internal/probe"
	"github.com/hervehildenbrand/sockcore/pkg/rtt"
	"github.com/hervehildenbrand/sockcore/pkg/socket"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewPingCmd creates the ping subcommand.
func NewPingCmd(opts *Options) *cobra.Command {
	var (
		count      int
		interval   string
		rateLimit  float64
		size       int
		timeout    string
		jsonOutput bool
		output     string
		format     string
		watch      string
		latencyMax string
		lossMax    float64
	)

	cmd := &cobra.Command{
		Use:   "ping <host> [port]",
		Short: "Measure datagram round trips against a reflector",
		Long: `Send sequenced datagrams to a reflector started with 'sockcore serve'
and report the round-trip time of each echo. The port defaults to the
configured reflector port.

With --watch the ping round repeats on the given interval and changes
between rounds (replying address, latency, loss, reachability) are
reported as they happen.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			port := cfg.Port
			if len(args) == 2 {
				port, err = strconv.Atoi(args[1])
				if err != nil || port <= 0 || port > 65535 {
					return fmt.Errorf("invalid port %q", args[1])
				}
			}

			pcfg, err := pingConfig(cmd, cfg, count, interval, rateLimit, size, timeout)
			if err != nil {
				return err
			}
			if output != "" && format != "" {
				if _, err := export.NewExporter(export.Format(format)); err != nil {
					return err
				}
			}
			mcfg, err := monitorConfig(cmd, watch, latencyMax, lossMax)
			if err != nil {
				return err
			}
			if mcfg != nil && (jsonOutput || output != "") {
				return fmt.Errorf("--watch cannot be combined with --json or --output")
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

			addr, err := socket.NewResolver().ResolveFamily(ctx, args[0], opts.family())
			if err != nil {
				return fmt.Errorf("failed to resolve %q: %w", args[0], err)
			}
			target := addr.WithPort(uint16(port))

			out := cmd.OutOrStdout()
			pinger := probe.NewPinger(pcfg, logger.Named("ping"))
			if mcfg != nil {
				return runWatch(ctx, out, pinger, args[0], target, mcfg, logger)
			}

			r := display.NewSimpleRenderer()
			var callback probe.SampleCallback
			if !jsonOutput {
				r.RenderSeriesHeader(out, args[0], target.String(), pcfg.PayloadSize)
				callback = func(s rtt.Sample) {
					fmt.Fprintln(out, r.RenderSample(s))
				}
			}

			series, pingErr := pinger.Ping(ctx, args[0], target, callback)
			if series == nil {
				return pingErr
			}

			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(export.Convert(series)); err != nil {
					return err
				}
			} else {
				r.RenderSummary(out, series)
			}

			if output != "" {
				if err := export.ExportToFile(output, export.Format(format), series); err != nil {
					return err
				}
				logger.Info("series exported", zap.String("file", output))
			}

			if pingErr != nil && ctx.Err() == nil {
				return pingErr
			}
			if series.Received() == 0 {
				return fmt.Errorf("no replies from %s", target)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "c", 0, "Number of pings (overrides config)")
	cmd.Flags().StringVarP(&interval, "interval", "i", "", "Gap between pings (overrides config)")
	cmd.Flags().Float64Var(&rateLimit, "rate", 0, "Max pings per second (overrides config)")
	cmd.Flags().IntVarP(&size, "size", "s", 0, "Payload size in bytes (overrides config)")
	cmd.Flags().StringVar(&timeout, "timeout", "", "Reply timeout per ping (overrides config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Export to file (json/csv/txt)")
	cmd.Flags().StringVar(&format, "format", "", "Explicit export format")
	cmd.Flags().StringVar(&watch, "watch", "", "Repeat rounds on this interval and report changes")
	cmd.Flags().StringVar(&latencyMax, "latency-threshold", "", "Alert when average RTT exceeds this (with --watch)")
	cmd.Flags().Float64Var(&lossMax, "loss-threshold", 0, "Alert when loss % exceeds this (with --watch)")

	return cmd
}

// pingConfig merges the file configuration with explicitly set flags.
func pingConfig(cmd *cobra.Command, cfg *config.Config, count int, interval string, rateLimit float64, size int, timeout string) (*probe.PingConfig, error) {
	pcfg := &probe.PingConfig{
		Count:       cfg.PingCount,
		Interval:    cfg.PingInterval,
		Rate:        cfg.PingRate,
		PayloadSize: cfg.PayloadSize,
		Timeout:     cfg.PingTimeout,
	}

	flags := cmd.Flags()
	if flags.Changed("count") {
		pcfg.Count = count
	}
	if flags.Changed("interval") {
		d, err := parseDuration("interval", interval)
		if err != nil {
			return nil, err
		}
		pcfg.Interval = d
	}
	if flags.Changed("rate") {
		pcfg.Rate = rateLimit
	}
	if flags.Changed("size") {
		pcfg.PayloadSize = size
	}
	if flags.Changed("timeout") {
		d, err := parseDuration("timeout", timeout)
		if err != nil {
			return nil, err
		}
		pcfg.Timeout = d
	}

	if err := pcfg.Validate(); err != nil {
		return nil, err
	}
	return pcfg, nil
}

// monitorConfig builds the watch configuration, or nil without --watch.
func monitorConfig(cmd *cobra.Command, watch, latencyMax string, lossMax float64) (*monitor.Config, error) {
	flags := cmd.Flags()
	if !flags.Changed("watch") {
		if flags.Changed("latency-threshold") || flags.Changed("loss-threshold") {
			return nil, fmt.Errorf("thresholds require --watch")
		}
		return nil, nil
	}

	mcfg := monitor.DefaultConfig()
	d, err := parseDuration("watch", watch)
	if err != nil {
		return nil, err
	}
	if d == 0 {
		return nil, fmt.Errorf("invalid --watch %q: must be positive", watch)
	}
	mcfg.Interval = d

	if flags.Changed("latency-threshold") {
		if mcfg.LatencyThreshold, err = parseDuration("latency-threshold", latencyMax); err != nil {
			return nil, err
		}
	}
	if lossMax < 0 || lossMax > 100 {
		return nil, fmt.Errorf("invalid --loss-threshold %v: must be between 0 and 100", lossMax)
	}
	mcfg.LossThreshold = lossMax
	return mcfg, nil
}

// runWatch repeats ping rounds until ctx is cancelled, printing a line per
// round and one per detected change.
func runWatch(ctx context.Context, out io.Writer, pinger *probe.Pinger, name string, target socket.Address, mcfg *monitor.Config, logger *zap.Logger) error {
	r := display.NewSimpleRenderer()
	m := monitor.NewMonitor(mcfg, logger.Named("monitor"))
	m.SetRoundCallback(func(s *rtt.Series) {
		fmt.Fprintln(out, r.RenderRound(s))
	})
	m.SetCallback(func(changes []monitor.Change) {
		for _, c := range changes {
			fmt.Fprintln(out, r.RenderChange(c))
		}
	})

	fmt.Fprintf(out, "watching %s (%s) every %s\n", name, target, mcfg.Interval)
	err := m.Run(ctx, func(ctx context.Context) (*rtt.Series, error) {
		return pinger.Ping(ctx, name, target, nil)
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
