package mergesort

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"slices"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategies = []Strategy{StrategyFork, StrategyPool}

func TestParallelScenarioA(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			var stats Stats
			a := []int{5, 3, 8, 1}
			err := SortParallel(context.Background(), a, Config{Threshold: 1000, Depth: 4, Strategy: strategy, Stats: &stats})
			require.NoError(t, err)
			assert.Equal(t, []int{1, 3, 5, 8}, a)
			assert.Equal(t, StatsSnapshot{Leaves: 1}, stats.Snapshot())
		})
	}
}

func TestParallelScenarioB(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			var stats Stats
			data := randomData(rng, 2000)
			err := SortParallel(context.Background(), data, Config{Threshold: 1000, Depth: 1, Strategy: strategy, Stats: &stats})
			require.NoError(t, err)
			assert.True(t, isSorted(data))
			assert.Equal(t, StatsSnapshot{Splits: 1, Tasks: 2, Leaves: 2, Merges: 1}, stats.Snapshot())
		})
	}
}

func TestParallelThresholdBoundary(t *testing.T) {
	const threshold = 10
	rng := rand.New(rand.NewSource(1))

	var below Stats
	data := randomData(rng, threshold-1)
	require.NoError(t, SortParallel(context.Background(), data, Config{Threshold: threshold, Depth: 3, Stats: &below}))
	assert.True(t, isSorted(data))
	assert.Zero(t, below.Snapshot().Splits, "length threshold-1 must stay sequential")
	assert.EqualValues(t, 1, below.Snapshot().Leaves)

	var above Stats
	data = randomData(rng, threshold+1)
	require.NoError(t, SortParallel(context.Background(), data, Config{Threshold: threshold, Depth: 1, Stats: &above}))
	assert.True(t, isSorted(data))
	assert.GreaterOrEqual(t, above.Snapshot().Splits, int64(1), "length threshold+1 must fork")
}

func TestParallelDepthZeroMatchesSequential(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	data := randomData(rng, 10_000)
	want := slices.Clone(data)
	SortSequential(want)

	var stats Stats
	require.NoError(t, SortParallel(context.Background(), data, Config{Threshold: 1, Depth: 0, Stats: &stats}))
	assert.Equal(t, want, data)
	assert.Equal(t, StatsSnapshot{Leaves: 1}, stats.Snapshot())
}

func TestParallelEmptyAndSingleSpawnNothing(t *testing.T) {
	for _, data := range [][]int{nil, {}, {7}} {
		var stats Stats
		in := slices.Clone(data)
		require.NoError(t, SortParallel(context.Background(), in, Config{Threshold: 1, Depth: 8, Stats: &stats}))
		assert.Equal(t, data, in)
		assert.Equal(t, StatsSnapshot{}, stats.Snapshot())
	}
}

func TestParallelFanOutBoundedByDepth(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, strategy := range strategies {
		for depth := 0; depth <= 5; depth++ {
			t.Run(fmt.Sprintf("%s/depth=%d", strategy, depth), func(t *testing.T) {
				var stats Stats
				data := randomData(rng, 4096)
				require.NoError(t, SortParallel(context.Background(), data, Config{Threshold: 1, Depth: depth, Strategy: strategy, Stats: &stats}))
				assert.True(t, isSorted(data))

				s := stats.Snapshot()
				leaves := int64(1) << depth
				assert.Equal(t, leaves, s.Leaves)
				assert.Equal(t, leaves-1, s.Splits)
				assert.Equal(t, s.Splits, s.Merges)
				assert.Equal(t, 2*s.Splits, s.Tasks)
			})
		}
	}
}

func TestParallelPermutationAndSortedness(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	sizes := []int{2, 3, 15, 999, 1000, 1001, 2000, 12_345, 100_000}
	for _, strategy := range strategies {
		for _, size := range sizes {
			t.Run(fmt.Sprintf("%s/%d", strategy, size), func(t *testing.T) {
				data := randomData(rng, size)
				want := slices.Clone(data)
				slices.Sort(want)

				require.NoError(t, SortParallel(context.Background(), data, Config{Threshold: 64, Depth: AutoDepth, Strategy: strategy}))
				assert.True(t, isSorted(data))
				assert.Equal(t, want, data)
			})
		}
	}
}

func TestParallelIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	data := randomData(rng, 5000)
	SortSequential(data)
	want := slices.Clone(data)

	require.NoError(t, SortParallel(context.Background(), data, Config{Threshold: 100, Depth: 3}))
	assert.Equal(t, want, data)
}

func TestParallelSubRange(t *testing.T) {
	a := []int{100, 5, 4, 3, 2, 1, -100}
	require.NoError(t, Parallel(context.Background(), a, 1, 5, Config{Threshold: 1, Depth: 2}))
	assert.Equal(t, []int{100, 1, 2, 3, 4, 5, -100}, a)
}

func TestParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			var stats Stats
			data := []int{3, 2, 1, 0}
			err := SortParallel(ctx, data, Config{Threshold: 1, Depth: 2, Strategy: strategy, Stats: &stats})
			require.Error(t, err)
			assert.True(t, errors.Is(err, context.Canceled))
			assert.Zero(t, stats.Snapshot().Merges, "no merge may run after cancellation")
		})
	}
}

func TestParallelCancelledMidSort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 슬롯을 미리 잡아 두면 모든 자식이 현재 고루틴에서 차례로 실행됨
	pool := NewPool(1)
	require.True(t, pool.tryAcquire())
	defer pool.release()

	stats := &Stats{onLeaf: func(left, _ int) {
		if left == 0 {
			cancel()
		}
	}}
	data := randomData(rand.New(rand.NewSource(5)), 4000)
	err := SortParallel(ctx, data, Config{Threshold: 100, Depth: 2, Strategy: StrategyPool, Pool: pool, Stats: stats})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	// [0, 999] 정렬 후 [1000, 1999]에서 멈추고 위쪽 병합은 모두 건너뜀
	assert.Equal(t, StatsSnapshot{Splits: 2, Tasks: 4, Leaves: 1, Merges: 0}, stats.Snapshot())
	assert.True(t, isSorted(data[:1000]))
}

func TestParallelCancelledByPooledSibling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := &Stats{onLeaf: func(left, _ int) {
		switch left {
		case 2000:
			// 풀 고루틴에서 실행되는 오른쪽 절반
			cancel()
		case 0:
			<-ctx.Done()
		}
	}}
	data := randomData(rand.New(rand.NewSource(6)), 4000)
	err := SortParallel(ctx, data, Config{Threshold: 100, Depth: 2, Strategy: StrategyPool, Pool: NewPool(1), Stats: stats})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, stats.Snapshot().Merges, "no merge may run above an abandoned range")
}

func TestParallelSharedPool(t *testing.T) {
	pool := NewPool(2)
	rng := rand.New(rand.NewSource(9))

	inputs := make([][]int, 8)
	for i := range inputs {
		inputs[i] = randomData(rng, 20_000)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(inputs))
	for i := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = SortParallel(context.Background(), inputs[i], Config{Threshold: 256, Depth: 4, Strategy: StrategyPool, Pool: pool})
		}()
	}
	wg.Wait()

	for i := range inputs {
		require.NoError(t, errs[i])
		assert.True(t, isSorted(inputs[i]))
	}
	used, capacity := pool.Status()
	assert.Zero(t, used, "all slots must be released")
	assert.Equal(t, 2, capacity)
}

func TestResolveDepth(t *testing.T) {
	assert.Equal(t, autoDepth(runtime.GOMAXPROCS(0)), ResolveDepth(AutoDepth))
	assert.Equal(t, 0, ResolveDepth(-5))
	assert.Equal(t, 0, ResolveDepth(0))
	assert.Equal(t, 3, ResolveDepth(3))
	assert.Equal(t, MaxDepth, ResolveDepth(MaxDepth+10))
}

func TestAutoDepth(t *testing.T) {
	cases := map[int]int{0: 0, 1: 0, 2: 1, 3: 1, 4: 2, 7: 2, 8: 3, 12: 3, 16: 4, 64: 6}
	for procs, want := range cases {
		assert.Equal(t, want, autoDepth(procs), "procs=%d", procs)
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("POOL")
	require.NoError(t, err)
	assert.Equal(t, StrategyPool, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyFork, s)

	_, err = ParseStrategy("threads")
	assert.Error(t, err)
}

func TestNewPoolDefaultSize(t *testing.T) {
	_, capacity := NewPool(0).Status()
	assert.Equal(t, runtime.GOMAXPROCS(0), capacity)
}
