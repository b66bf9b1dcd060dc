package main

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/hervehildenbrand/sockcore/internal/display"
	"github.com/hervehildenbrand/sockcore/pkg/socket"
	"github.com/spf13/cobra"
)

// maxHostLen matches NI_MAXHOST.
const maxHostLen = 1025

// NewResolveCmd creates the resolve subcommand.
func NewResolveCmd(opts *Options) *cobra.Command {
	var jsonOutput bool
	var noReverse bool
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "resolve <name>...",
		Short: "Resolve names to addresses and back",
		Long: `Resolve each name to its first address record, print the numeric
form and the reverse lookup. IP literals are parsed without a lookup.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if opts.DryRun {
				return nil
			}
			if _, err := newLogger(cfg); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			results := resolveAll(ctx, socket.NewResolver(), args, opts.family(), !noReverse)

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			r := display.NewSimpleRenderer()
			failed := 0
			for _, res := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r.RenderResolve(res))
				if res.Error != "" {
					failed++
				}
			}
			if failed == len(results) {
				return fmt.Errorf("no names resolved")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&noReverse, "no-reverse", false, "Skip reverse lookups")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Overall lookup timeout")

	return cmd
}

// resolveAll resolves each name, formatting results with the socket layer's
// text helpers.
func resolveAll(ctx context.Context, resolver *socket.Resolver, names []string, family socket.Family, reverse bool) []display.ResolveResult {
	results := make([]display.ResolveResult, 0, len(names))
	buf := make([]byte, maxHostLen)

	for _, name := range names {
		res := display.ResolveResult{Name: name}

		addr, err := resolver.ResolveFamily(ctx, name, family)
		if err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		res.Family = addr.Family().String()

		n, err := socket.FormatLiteral(addr, buf)
		if err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		res.Address = string(buf[:n])

		if reverse {
			if n, err := resolver.ReverseLookup(ctx, addr, buf); err == nil {
				res.Reverse = string(buf[:n])
			}
		}
		results = append(results, res)
	}
	return results
}
