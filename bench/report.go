package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/rlaau/prlsort/benchstore"
)

var storageNames = map[string]string{
	StorageMemory: "인메모리",
	StorageFile:   "파일",
}

// group 같은 크기 / 저장 방식 기록 묶음
type group struct {
	size    int
	storage string
}

// Summary 묶음 하나의 평균
type Summary struct {
	DataSize    int
	StorageType string
	Runs        int
	Sequential  time.Duration
	Parallel    time.Duration
	Speedup     float64
	MemoryUsage uint64
}

// Summarize 크기 / 저장 방식별 평균. 처음 등장한 순서 유지
func Summarize(records []benchstore.Record) []Summary {
	keyOf := func(r benchstore.Record) group { return group{r.DataSize, r.StorageType} }
	grouped := lo.GroupBy(records, keyOf)
	order := lo.Uniq(lo.Map(records, func(r benchstore.Record, _ int) group { return keyOf(r) }))

	return lo.Map(order, func(g group, _ int) Summary {
		recs := grouped[g]
		n := len(recs)
		return Summary{
			DataSize:    g.size,
			StorageType: g.storage,
			Runs:        n,
			Sequential:  lo.SumBy(recs, func(r benchstore.Record) time.Duration { return r.Sequential }) / time.Duration(n),
			Parallel:    lo.SumBy(recs, func(r benchstore.Record) time.Duration { return r.Parallel }) / time.Duration(n),
			Speedup:     lo.SumBy(recs, func(r benchstore.Record) float64 { return r.Speedup }) / float64(n),
			MemoryUsage: lo.SumBy(recs, func(r benchstore.Record) uint64 { return r.MemoryUsage }) / uint64(n),
		}
	})
}

// WriteMarkdown 크기별 표와 요약 통계를 마크다운으로 기록
func WriteMarkdown(w io.Writer, records []benchstore.Record) error {
	var b strings.Builder

	b.WriteString("# 병렬 머지소트 속도 향상 벤치마크 결과\n\n")
	fmt.Fprintf(&b, "실행 시간: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "CPU 코어 수: %d\n", runtime.NumCPU())
	fmt.Fprintf(&b, "GOMAXPROCS: %d\n\n", runtime.GOMAXPROCS(0))

	summaries := Summarize(records)
	for _, s := range summaries {
		fmt.Fprintf(&b, "## %s - %s개 데이터\n\n", storageName(s.StorageType), humanize.Comma(int64(s.DataSize)))
		b.WriteString("| 테스트 | 깊이 | 전략 | 순차 | 병렬 | 속도 향상 | 메모리 | 고루틴 | 태스크 |\n")
		b.WriteString("|--------|------|------|------|------|-----------|--------|--------|--------|\n")
		for _, r := range records {
			if r.DataSize != s.DataSize || r.StorageType != s.StorageType {
				continue
			}
			fmt.Fprintf(&b, "| %d | %d | %s | %v | %v | x%.2f | %s | %d | %d |\n",
				r.TestRun, r.Depth, r.Strategy, r.Sequential, r.Parallel, r.Speedup,
				humanize.Bytes(r.MemoryUsage), r.Goroutines, r.Tasks)
		}
		b.WriteString("\n")
	}

	b.WriteString("## 요약 통계\n\n")
	b.WriteString("| 데이터 | 저장 | 반복 | 평균 순차 | 평균 병렬 | 평균 속도 향상 | 평균 메모리 |\n")
	b.WriteString("|--------|------|------|-----------|-----------|----------------|-------------|\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "| %s | %s | %d | %v | %v | x%.2f | %s |\n",
			humanize.Comma(int64(s.DataSize)), storageName(s.StorageType), s.Runs, s.Sequential, s.Parallel, s.Speedup,
			humanize.Bytes(s.MemoryUsage))
	}

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "write markdown")
}

// WriteJSON 기록 전체를 들여쓰기 JSON으로
func WriteJSON(w io.Writer, records []benchstore.Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(records), "write json")
}

func storageName(storage string) string {
	if name, ok := storageNames[storage]; ok {
		return name
	}
	return storage
}
