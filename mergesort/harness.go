package mergesort

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// Measurement 순차 / 병렬 실행 시간과 속도 향상 비율
type Measurement struct {
	Sequential time.Duration
	Parallel   time.Duration
	Speedup    float64
	Depth      int // 실제로 사용된 깊이 예산
}

// SequentialMillis 순차 실행 시간 (ms)
func (m Measurement) SequentialMillis() int64 {
	return m.Sequential.Milliseconds()
}

// ParallelMillis 병렬 실행 시간 (ms)
func (m Measurement) ParallelMillis() int64 {
	return m.Parallel.Milliseconds()
}

// Ratio 소수점 두 자리 비율 문자열
func (m Measurement) Ratio() string {
	return strconv.FormatFloat(m.Speedup, 'f', 2, 64)
}

// Speedup 같은 입력의 독립 복사본 두 개로 순차 / 병렬 정렬 시간을 잰다.
// arr는 수정하지 않으며 병렬 실행 결과를 반환.
func Speedup(ctx context.Context, arr []int, cfg Config) ([]int, Measurement, error) {
	seqData := slices.Clone(arr)
	prlData := slices.Clone(arr)
	depth := ResolveDepth(cfg.Depth)
	cfg.Depth = depth

	start := time.Now()
	SortSequential(seqData)
	seqTime := time.Since(start)

	start = time.Now()
	if err := SortParallel(ctx, prlData, cfg); err != nil {
		return nil, Measurement{}, errors.Wrap(err, "parallel run")
	}
	prlTime := time.Since(start)

	if !slices.Equal(seqData, prlData) {
		return nil, Measurement{}, errors.AssertionFailedf("sequential and parallel outputs differ for %d elements", len(arr))
	}

	m := Measurement{
		Sequential: seqTime,
		Parallel:   prlTime,
		Speedup:    speedupRatio(seqTime, prlTime),
		Depth:      depth,
	}
	return prlData, m, nil
}

// speedupRatio 병렬 시간이 0 이하이면 최소 단위(1ns)로 보정
func speedupRatio(seq, prl time.Duration) float64 {
	seq = max(seq, 0)
	prl = max(prl, 1)
	return float64(seq) / float64(prl)
}
