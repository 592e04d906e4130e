// Command scanctl exercises the virus-scanning subsystem from the shell:
// scan files, probe the daemon, and print its version banner.
//
// Exit codes: 0 clean, 1 threat detected, 2 scanner unavailable.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/quay/zlog"

	"github.com/coursekit/virusscan"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
	case virusscan.IsThreat(err):
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

type app struct {
	envFile string
	verbose bool
	policy  virusscan.Policy
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "scanctl",
		Short:         "Interact with the file-content virus scanner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := zerolog.InfoLevel
			if a.verbose {
				level = zerolog.DebugLevel
			}
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().Timestamp().Logger()
			zlog.Set(&log)

			p, err := virusscan.PolicyFromEnv(a.envFile)
			if err != nil {
				return err
			}
			a.policy = p
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "optional .env file with SCAN_* settings")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(newScanCmd(a), newPingCmd(a), newVersionCmd(a))
	return root
}

func newScanCmd(a *app) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "scan FILE...",
		Short: "Scan files and report verdicts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := virusscan.New(cmd.Context(), a.policy)
			if err != nil {
				return err
			}
			return scanFiles(cmd.Context(), o, args, jobs)
		},
	}
	cmd.Flags().IntVar(&jobs, "jobs", 4, "maximum concurrent scans")
	return cmd
}

type fileResult struct {
	path    string
	verdict *virusscan.Verdict
	err     error
}

// scanFiles scans every path, bounded-concurrently, and reports per-file
// outcomes. The worst outcome wins the exit code: a detection beats an
// unavailability beats clean.
func scanFiles(ctx context.Context, o *virusscan.Orchestrator, paths []string, jobs int) error {
	// Each goroutine writes only its own slot.
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				results[i] = fileResult{path: path, err: err}
				return nil
			}
			verdict, err := o.Scan(gctx, data, filepath.Base(path))
			results[i] = fileResult{path: path, verdict: verdict, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var worst error
	for _, r := range results {
		switch {
		case r.err == nil:
			fmt.Printf("%s: %s (%v)\n", r.path, r.verdict.Message, r.verdict.Duration)
		case virusscan.IsThreat(r.err):
			fmt.Printf("%s: %v\n", r.path, r.err)
			worst = r.err
		default:
			fmt.Printf("%s: %v\n", r.path, r.err)
			if worst == nil || !virusscan.IsThreat(worst) {
				worst = r.err
			}
		}
	}
	return worst
}

func newPingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Probe the scanning backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := virusscan.New(cmd.Context(), a.policy)
			if err != nil {
				return err
			}
			if !o.HealthCheck(cmd.Context()) {
				return virusscan.NewUnavailableError("health check failed", nil)
			}
			fmt.Printf("%s: ok\n", o.Provider())
			return nil
		},
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the daemon's version banner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := virusscan.NewClamd(a.policy.Network, a.policy.Address,
				virusscan.WithTimeout(a.policy.Timeout))
			if err != nil {
				return err
			}
			v, err := c.Version(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(v)
			return nil
		},
	}
}
