// sortsrv 병렬 머지소트 TCP 서버
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rlaau/prlsort/internal/logging"
	"github.com/rlaau/prlsort/mergesort"
	"github.com/rlaau/prlsort/server"
)

type options struct {
	addr        string
	threshold   int
	strategy    string
	poolSize    int
	maxLine     int
	metricsAddr string
	logLevel    string
}

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "sortsrv",
		Short:         "Serve parallel merge sort requests over TCP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}

	bindFlags(cmd.Flags(), &opts)
	return cmd
}

func bindFlags(f *pflag.FlagSet, opts *options) {
	f.StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	f.IntVar(&opts.threshold, "threshold", mergesort.DefaultThreshold, "ranges shorter than this are sorted sequentially")
	f.StringVar(&opts.strategy, "strategy", mergesort.StrategyFork.String(), "child task scheduling: fork or pool")
	f.IntVar(&opts.poolSize, "pool-size", 0, "slots shared by all connections with --strategy=pool (0 = GOMAXPROCS)")
	f.IntVar(&opts.maxLine, "max-line-bytes", server.DefaultMaxLineBytes, "maximum request line size")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (empty = off)")
	f.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
}

func run(ctx context.Context, opts options) error {
	logger, err := logging.New(os.Stderr, opts.logLevel)
	if err != nil {
		return err
	}
	strategy, err := mergesort.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := server.NewMetrics(reg)

	if opts.metricsAddr != "" {
		ms := &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics listening", "addr", opts.metricsAddr)
			if err := ms.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			ms.Shutdown(shutdownCtx)
		}()
	}

	srv := server.New(server.Config{
		Addr:         opts.addr,
		Threshold:    opts.threshold,
		Strategy:     strategy,
		PoolSize:     opts.poolSize,
		MaxLineBytes: opts.maxLine,
	}, logger, metrics)
	return srv.ListenAndServe(ctx)
}
