// bench 데이터 크기별 순차 / 병렬 머지소트 속도 비교
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rlaau/prlsort/bench"
	"github.com/rlaau/prlsort/benchstore"
	"github.com/rlaau/prlsort/mergesort"
)

type options struct {
	sizes        []int
	runs         int
	seed         int64
	depth        int
	threshold    int
	strategy     string
	fileModeFrom int
	markdown     string
	jsonOut      string
	store        string
	storePath    string
}

func main() {
	if err := newCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "bench",
		Short:         "Benchmark sequential vs parallel merge sort",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return run(ctx, out, opts)
		},
	}

	bindFlags(cmd.Flags(), &opts)
	return cmd
}

func bindFlags(f *pflag.FlagSet, opts *options) {
	f.IntSliceVar(&opts.sizes, "sizes", bench.DefaultSizes, "data sizes to benchmark")
	f.IntVar(&opts.runs, "runs", 3, "runs per size")
	f.Int64Var(&opts.seed, "seed", 42, "data generation seed")
	f.IntVar(&opts.depth, "depth", mergesort.AutoDepth, "parallel depth budget (-1 = from hardware)")
	f.IntVar(&opts.threshold, "threshold", mergesort.DefaultThreshold, "sequential fallback threshold")
	f.StringVar(&opts.strategy, "strategy", mergesort.StrategyFork.String(), "fork or pool")
	f.IntVar(&opts.fileModeFrom, "file-mode-from", 100000, "sizes at or above this are read back from a file (0 = never)")
	f.StringVar(&opts.markdown, "markdown", "benchmark_results.md", "markdown report path (empty = skip)")
	f.StringVar(&opts.jsonOut, "json", "benchmark_results.json", "JSON report path (empty = skip)")
	f.StringVar(&opts.store, "store", "", "persist records into "+strings.Join(benchstore.Backends(), ", ")+" (empty = off)")
	f.StringVar(&opts.storePath, "store-path", "", "store file or directory (default: bench.<backend>)")
}

func run(ctx context.Context, out io.Writer, opts options) error {
	strategy, err := mergesort.ParseStrategy(opts.strategy)
	if err != nil {
		return err
	}

	var store benchstore.Store
	if opts.store != "" {
		path := opts.storePath
		if path == "" {
			path = "bench." + opts.store
		}
		store, err = benchstore.Open(opts.store, path)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	fmt.Fprintln(out, "병렬 머지소트 벤치마크 시작...")
	fmt.Fprintf(out, "CPU 코어 수: %d\n", runtime.NumCPU())
	fmt.Fprintf(out, "GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	fmt.Fprintf(out, "깊이 예산: %d, 임계값: %d, 전략: %s\n\n", mergesort.ResolveDepth(opts.depth), opts.threshold, strategy)

	plan := bench.Plan{
		Sizes:        opts.sizes,
		Runs:         opts.runs,
		Seed:         opts.seed,
		Depth:        opts.depth,
		Threshold:    opts.threshold,
		Strategy:     strategy,
		FileModeFrom: opts.fileModeFrom,
	}

	var storeErr error
	records, err := bench.Run(ctx, plan, func(rec benchstore.Record) {
		fmt.Fprintf(out, "  %s개 (%s) - 테스트 %d: 순차 %v, 병렬 %v, x%.2f, 메모리 %s, 태스크 %d\n",
			humanize.Comma(int64(rec.DataSize)), rec.StorageType, rec.TestRun, rec.Sequential, rec.Parallel, rec.Speedup,
			humanize.Bytes(rec.MemoryUsage), rec.Tasks)
		if store != nil && storeErr == nil {
			storeErr = store.Put(rec)
		}
	})
	if err != nil {
		return err
	}
	if storeErr != nil {
		return errors.Wrap(storeErr, "store record")
	}

	fmt.Fprintln(out, "결과 저장 중...")
	if err := writeFile(opts.markdown, records, bench.WriteMarkdown); err != nil {
		return err
	}
	if err := writeFile(opts.jsonOut, records, bench.WriteJSON); err != nil {
		return err
	}
	if store != nil {
		saved, err := store.List()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s 저장소에 누적 기록 %s개\n", opts.store, humanize.Comma(int64(len(saved))))
	}

	fmt.Fprintln(out, "벤치마크 완료!")
	return nil
}

func writeFile(path string, records []benchstore.Record, write func(io.Writer, []benchstore.Record) error) error {
	if path == "" {
		return nil
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer file.Close()

	if err := write(file, records); err != nil {
		return err
	}
	return errors.Wrapf(file.Close(), "close %s", path)
}
