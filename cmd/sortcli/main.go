// sortcli 정렬 서버에 랜덤 배열을 보내는 클라이언트
package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/rlaau/prlsort/client"
	"github.com/rlaau/prlsort/mergesort"
	"github.com/rlaau/prlsort/protocol"
)

// printLimit 이 크기 이하 결과는 배열 전체를 출력
const printLimit = 20

type options struct {
	addr    string
	size    int
	depth   int
	seed    int64
	timeout time.Duration
}

func main() {
	if err := newCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cobra.Command {
	var opts options
	root := &cobra.Command{
		Use:           "sortcli",
		Short:         "Send random arrays to a sortsrv instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.addr, "addr", "localhost:8888", "server address")
	pf.IntVar(&opts.size, "size", 1000, "size of the generated array")
	pf.IntVar(&opts.depth, "depth", mergesort.AutoDepth, "parallel depth budget (-1 = from hardware)")
	pf.Int64Var(&opts.seed, "seed", 0, "random seed (0 = time based)")
	pf.DurationVar(&opts.timeout, "timeout", time.Minute, "per-request timeout")

	root.AddCommand(&cobra.Command{
		Use:   "sort",
		Short: "Request a parallel sort",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return session(cmd.Context(), out, opts, func(ctx context.Context, c *client.Client, data []int) error {
				sorted, err := c.Sort(ctx, opts.depth, data)
				if err != nil {
					return err
				}
				printSorted(out, sorted)
				return nil
			})
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "test-sort",
		Short: "Request a sequential vs parallel speedup test",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return session(cmd.Context(), out, opts, func(ctx context.Context, c *client.Client, data []int) error {
				res, err := c.Speedup(ctx, opts.depth, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Sort result: %s\n", sortedWord(res.Sorted))
				fmt.Fprintf(out, " Sequential Time: %d ms\n", res.SequentialMillis)
				fmt.Fprintf(out, " Parallel Time: %d ms\n", res.ParallelMillis)
				fmt.Fprintf(out, " Speedup: x%s\n", res.Ratio)
				return nil
			})
		},
	})
	return root
}

// session 접속, 요청 하나, DONE 순서로 진행
func session(ctx context.Context, out io.Writer, opts options, work func(context.Context, *client.Client, []int) error) error {
	reqCtx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	c, err := client.Dial(reqCtx, opts.addr)
	if err != nil {
		return err
	}
	defer c.Close()
	fmt.Fprintf(out, "Client id #%d\n", c.ID())

	seed := opts.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	data := client.RandomArray(rand.New(rand.NewSource(seed)), opts.size)

	if err := work(reqCtx, c, data); err != nil {
		return err
	}
	if err := c.Done(reqCtx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Server acknowledged completion.")
	return nil
}

func printSorted(out io.Writer, sorted []int) {
	if len(sorted) <= printLimit {
		fmt.Fprintf(out, "Sorted array: %s\n", protocol.FormatInts(sorted))
		return
	}
	fmt.Fprintf(out, "Sort result: %s\n", sortedWord(sorted))
}

func sortedWord(data []int) string {
	if slices.IsSorted(data) {
		return "Sorted"
	}
	return "Unsorted"
}
