// Package bench 데이터 크기별 순차 / 병렬 머지소트 속도 비교 벤치마크
package bench

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/rlaau/prlsort/benchstore"
	"github.com/rlaau/prlsort/mergesort"
)

// 저장 방식
const (
	StorageMemory = "memory"
	StorageFile   = "file"
)

// DefaultSizes 기본 데이터 크기
var DefaultSizes = []int{1000, 10000, 100000}

// Plan 벤치마크 설정
type Plan struct {
	Sizes        []int
	Runs         int   // 크기마다 반복 횟수
	Seed         int64 // 데이터 생성 시드
	Depth        int
	Threshold    int
	Strategy     mergesort.Strategy
	FileModeFrom int    // 이 크기 이상은 파일을 거쳐 읽음. 0이면 사용 안 함
	TempDir      string // 파일 모드용 디렉터리. 비어 있으면 os.TempDir
}

func (p Plan) withDefaults() Plan {
	if len(p.Sizes) == 0 {
		p.Sizes = DefaultSizes
	}
	if p.Runs <= 0 {
		p.Runs = 3
	}
	if p.Threshold <= 0 {
		p.Threshold = mergesort.DefaultThreshold
	}
	if p.TempDir == "" {
		p.TempDir = os.TempDir()
	}
	return p
}

// Run 크기 x 반복 조합마다 속도 측정 하네스 실행.
// progress가 nil이 아니면 기록이 만들어질 때마다 호출.
func Run(ctx context.Context, plan Plan, progress func(benchstore.Record)) ([]benchstore.Record, error) {
	plan = plan.withDefaults()
	cfg := mergesort.Config{
		Threshold: plan.Threshold,
		Depth:     plan.Depth,
		Strategy:  plan.Strategy,
	}
	if plan.Strategy == mergesort.StrategyPool {
		cfg.Pool = mergesort.NewPool(0)
	}

	var results []benchstore.Record
	for _, size := range plan.Sizes {
		data := GenerateRandomData(size, plan.Seed)

		storage := StorageMemory
		var filename string
		if plan.FileModeFrom > 0 && size >= plan.FileModeFrom {
			storage = StorageFile
			filename = filepath.Join(plan.TempDir, "test_data_"+strconv.Itoa(size)+".txt")
			if err := WriteDataFile(data, filename); err != nil {
				return results, err
			}
		}

		for run := 1; run <= plan.Runs; run++ {
			if err := ctx.Err(); err != nil {
				removeFile(filename)
				return results, errors.Wrap(err, "benchmark interrupted")
			}

			input := data
			if storage == StorageFile {
				// 매번 파일에서 읽기
				fileData, err := ReadDataFile(filename)
				if err != nil {
					removeFile(filename)
					return results, err
				}
				input = fileData
			}

			runCfg := cfg
			runCfg.Stats = &mergesort.Stats{}
			goroutines := runtime.NumGoroutine()
			mem := startStats()

			_, m, err := mergesort.Speedup(ctx, input, runCfg)
			if err != nil {
				removeFile(filename)
				return results, errors.Wrapf(err, "size %d run %d", size, run)
			}

			rec := benchstore.Record{
				DataSize:    size,
				Depth:       m.Depth,
				Threshold:   plan.Threshold,
				Strategy:    plan.Strategy.String(),
				StorageType: storage,
				TestRun:     run,
				Sequential:  m.Sequential,
				Parallel:    m.Parallel,
				Speedup:     m.Speedup,
				MemoryUsage: mem.allocated(),
				Goroutines:  goroutines,
				Tasks:       runCfg.Stats.Snapshot().Tasks,
				CreatedAt:   time.Now(),
			}
			results = append(results, rec)
			if progress != nil {
				progress(rec)
			}
		}
		removeFile(filename)
	}
	return results, nil
}

// memStats 측정 구간의 메모리 통계
type memStats struct {
	start runtime.MemStats
}

// startStats 측정 전 시스템 안정화 후 시작 통계 기록
func startStats() *memStats {
	runtime.GC()
	var s memStats
	runtime.ReadMemStats(&s.start)
	return &s
}

// allocated 시작 이후 누적 할당 바이트
func (s *memStats) allocated() uint64 {
	var end runtime.MemStats
	runtime.ReadMemStats(&end)
	return end.TotalAlloc - s.start.TotalAlloc
}

func removeFile(filename string) {
	if filename != "" {
		os.Remove(filename)
	}
}
