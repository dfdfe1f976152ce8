package bench

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlaau/prlsort/benchstore"
	"github.com/rlaau/prlsort/mergesort"
)

func TestGenerateRandomDataDeterministic(t *testing.T) {
	a := GenerateRandomData(500, 42)
	b := GenerateRandomData(500, 42)
	c := GenerateRandomData(500, 43)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	for _, v := range a {
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 1000000)
	}
}

func TestDataFileRoundTrip(t *testing.T) {
	data := GenerateRandomData(25_000, 1)
	filename := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, WriteDataFile(data, filename))

	got, err := ReadDataFile(filename)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestReadDataFileErrors(t *testing.T) {
	_, err := ReadDataFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	filename := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, WriteDataFile(nil, filename))
	got, err := ReadDataFile(filename)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRun(t *testing.T) {
	plan := Plan{
		Sizes:        []int{100, 2000},
		Runs:         2,
		Seed:         42,
		Depth:        2,
		Threshold:    100,
		Strategy:     mergesort.StrategyPool,
		FileModeFrom: 2000,
		TempDir:      t.TempDir(),
	}

	var seen int
	recs, err := Run(context.Background(), plan, func(benchstore.Record) { seen++ })
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, 4, seen)

	assert.Equal(t, 100, recs[0].DataSize)
	assert.Equal(t, StorageMemory, recs[0].StorageType)
	assert.Equal(t, 1, recs[0].TestRun)
	assert.Equal(t, 2, recs[1].TestRun)
	assert.Equal(t, 2000, recs[2].DataSize)
	assert.Equal(t, StorageFile, recs[2].StorageType)
	for _, r := range recs {
		assert.Equal(t, "pool", r.Strategy)
		assert.Equal(t, 2, r.Depth)
		assert.GreaterOrEqual(t, r.Speedup, 0.0)
		assert.NotZero(t, r.MemoryUsage, "both clones are allocated during the run")
		assert.Positive(t, r.Goroutines)
	}
	// 100개는 임계값 미만이라 분할 없음, 2000개는 깊이 2까지 분할 3번
	assert.Zero(t, recs[0].Tasks)
	assert.Equal(t, int64(6), recs[2].Tasks)

	files, err := filepath.Glob(filepath.Join(plan.TempDir, "test_data_*.txt"))
	require.NoError(t, err)
	assert.Empty(t, files, "file mode data must be removed")
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Plan{Sizes: []int{10}, Runs: 1}, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func sampleRecords() []benchstore.Record {
	return []benchstore.Record{
		{DataSize: 1000, StorageType: StorageMemory, TestRun: 1, Depth: 2, Strategy: "fork", Sequential: 4 * time.Millisecond, Parallel: 2 * time.Millisecond, Speedup: 2, MemoryUsage: 2000},
		{DataSize: 1000, StorageType: StorageMemory, TestRun: 2, Depth: 2, Strategy: "fork", Sequential: 2 * time.Millisecond, Parallel: 2 * time.Millisecond, Speedup: 1, MemoryUsage: 4000},
		{DataSize: 100000, StorageType: StorageFile, TestRun: 1, Depth: 2, Strategy: "fork", Sequential: 90 * time.Millisecond, Parallel: 30 * time.Millisecond, Speedup: 3},
	}
}

func TestSummarize(t *testing.T) {
	sums := Summarize(sampleRecords())
	require.Len(t, sums, 2)
	assert.Equal(t, Summary{DataSize: 1000, StorageType: StorageMemory, Runs: 2, Sequential: 3 * time.Millisecond, Parallel: 2 * time.Millisecond, Speedup: 1.5, MemoryUsage: 3000}, sums[0])
	assert.Equal(t, 100000, sums[1].DataSize)
	assert.Equal(t, 1, sums[1].Runs)
	assert.Empty(t, Summarize(nil))
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, sampleRecords()))
	out := buf.String()

	assert.Contains(t, out, "## 인메모리 - 1,000개 데이터")
	assert.Contains(t, out, "## 파일 - 100,000개 데이터")
	assert.Contains(t, out, "## 요약 통계")
	assert.Contains(t, out, "x1.50 | 3.0 kB |")
	assert.Equal(t, 2, strings.Count(out, "| 1 | 2 | fork |"))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	recs := sampleRecords()
	require.NoError(t, WriteJSON(&buf, recs))

	var got []benchstore.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, len(recs))
	assert.Equal(t, recs[2].DataSize, got[2].DataSize)
	assert.Contains(t, buf.String(), "\n  {")
}
