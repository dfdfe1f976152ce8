package mergesort

import (
	"context"
	"math/bits"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultThreshold 이보다 짧은 범위는 포크 비용이 이득보다 큼
	DefaultThreshold = 1000
	// AutoDepth 하드웨어 병렬도에서 깊이를 계산하라는 표시값
	AutoDepth = -1
	// MaxDepth 깊이 상한. 동시 태스크 수는 2^depth 이하
	MaxDepth = 24
)

// Strategy 분할된 자식 태스크를 실행하는 방식
type Strategy int

const (
	// StrategyFork 분할마다 고루틴 두 개, errgroup 배리어로 합류
	StrategyFork Strategy = iota
	// StrategyPool 공유 슬롯 풀이 허용할 때만 오른쪽 자식을 새 고루틴에서 실행
	StrategyPool
)

func (s Strategy) String() string {
	switch s {
	case StrategyFork:
		return "fork"
	case StrategyPool:
		return "pool"
	default:
		return "unknown"
	}
}

// ParseStrategy "fork" / "pool" 문자열 해석
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fork":
		return StrategyFork, nil
	case "pool":
		return StrategyPool, nil
	default:
		return 0, errors.Newf("unknown strategy %q", name)
	}
}

// Config 병렬 디스패처 설정. 제로 값은 기본 임계값, 깊이 0, fork 전략.
type Config struct {
	Threshold int      // <= 0 이면 DefaultThreshold
	Depth     int      // AutoDepth(-1) 이면 log2(GOMAXPROCS)
	Strategy  Strategy // 자식 실행 방식
	Pool      *Pool    // StrategyPool 용. nil 이면 정렬마다 새로 만듦
	Stats     *Stats   // 선택적 호출 횟수 훅
}

func (c Config) threshold() int {
	if c.Threshold <= 0 {
		return DefaultThreshold
	}
	return c.Threshold
}

// ResolveDepth 표시값 처리 후 [0, MaxDepth]로 제한된 깊이 예산
func ResolveDepth(depth int) int {
	if depth == AutoDepth {
		return autoDepth(runtime.GOMAXPROCS(0))
	}
	return min(max(depth, 0), MaxDepth)
}

// autoDepth floor(log2(procs))
func autoDepth(procs int) int {
	if procs < 1 {
		return 0
	}
	return min(bits.Len(uint(procs))-1, MaxDepth)
}

// SortParallel 슬라이스 전체를 병렬 머지소트로 정렬.
// 에러가 반환되면 arr는 부분적으로만 정렬되어 있을 수 있음.
func SortParallel(ctx context.Context, arr []int, cfg Config) error {
	if len(arr) <= 1 {
		return nil
	}
	return Parallel(ctx, arr, 0, len(arr)-1, cfg)
}

// Parallel arr[left..right]를 깊이 제한 병렬 머지소트로 정렬
func Parallel(ctx context.Context, arr []int, left, right int, cfg Config) error {
	if left >= right {
		return nil
	}
	checkRange(arr, left, right)

	d := &dispatcher{
		arr:       arr,
		threshold: cfg.threshold(),
		strategy:  cfg.Strategy,
		pool:      cfg.Pool,
		stats:     cfg.Stats,
	}
	if d.strategy == StrategyPool && d.pool == nil {
		d.pool = NewPool(0)
	}
	return d.sort(ctx, left, right, ResolveDepth(cfg.Depth))
}

// dispatcher 한 번의 정렬 호출 동안 공유되는 상태.
// 형제 태스크는 서로 겹치지 않는 범위만 쓰므로 arr에 락이 필요 없음.
type dispatcher struct {
	arr       []int
	threshold int
	strategy  Strategy
	pool      *Pool
	stats     *Stats
}

func (d *dispatcher) sort(ctx context.Context, left, right, depth int) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrapf(err, "sort [%d, %d] abandoned", left, right)
	}

	if right-left < d.threshold || depth <= 0 {
		d.stats.leaf(left, right)
		sequential(d.arr, left, right)
		return nil
	}

	mid := left + (right-left)/2
	d.stats.split()

	var err error
	switch d.strategy {
	case StrategyPool:
		err = d.joinPooled(ctx, left, mid, right, depth-1)
	default:
		err = d.joinForked(ctx, left, mid, right, depth-1)
	}
	if err != nil {
		// 자식 중 하나라도 끝나지 않았으면 병합하지 않음
		return err
	}

	merge(d.arr, left, mid, right)
	d.stats.merged()
	return nil
}

// joinForked 두 자식을 각각 고루틴에서 실행하고 둘 다 끝날 때까지 대기
func (d *dispatcher) joinForked(ctx context.Context, left, mid, right, depth int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return d.sort(gctx, left, mid, depth)
	})
	g.Go(func() error {
		return d.sort(gctx, mid+1, right, depth)
	})
	return g.Wait()
}

// joinPooled 왼쪽 자식은 현재 고루틴에서, 오른쪽 자식은 슬롯이 있으면 새 고루틴에서 실행.
// 슬롯이 없으면 오른쪽도 현재 고루틴에서 이어서 처리.
func (d *dispatcher) joinPooled(ctx context.Context, left, mid, right, depth int) error {
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var g errgroup.Group
	pooled := d.pool.tryAcquire()
	if pooled {
		g.Go(func() error {
			defer d.pool.release()
			err := d.sort(cctx, mid+1, right, depth)
			if err != nil {
				cancel()
			}
			return err
		})
	}

	err := d.sort(cctx, left, mid, depth)
	if err != nil {
		cancel()
	} else if !pooled {
		err = d.sort(cctx, mid+1, right, depth)
	}

	if waitErr := g.Wait(); err == nil {
		err = waitErr
	}
	return err
}
