// Package benchstore 벤치마크 결과를 bbolt / badger / pebble에 저장
package benchstore

import (
	"encoding/binary"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Record 속도 측정 한 번의 결과
type Record struct {
	DataSize    int           `json:"data_size"`
	Depth       int           `json:"depth"`
	Threshold   int           `json:"threshold"`
	Strategy    string        `json:"strategy"`
	StorageType string        `json:"storage_type"`
	TestRun     int           `json:"test_run"`
	Sequential  time.Duration `json:"sequential"`
	Parallel    time.Duration `json:"parallel"`
	Speedup     float64       `json:"speedup"`
	MemoryUsage uint64        `json:"memory_usage_bytes"` // 측정 동안 누적 할당량
	Goroutines  int           `json:"goroutine_num"`      // 측정 시작 시점 고루틴 수
	Tasks       int64         `json:"tasks"`              // 병렬 실행이 만든 자식 태스크 수
	CreatedAt   time.Time     `json:"created_at"`
}

// Store 결과 저장소. List는 CreatedAt 순, 같으면 저장한 순서대로 반환
type Store interface {
	Put(rec Record) error
	List() ([]Record, error)
	Close() error
}

// 지원 백엔드
const (
	BackendBbolt  = "bbolt"
	BackendBadger = "badger"
	BackendPebble = "pebble"
)

// ErrUnknownBackend 지원하지 않는 백엔드 이름
var ErrUnknownBackend = errors.New("unknown backend")

// Backends 지원 백엔드 목록
func Backends() []string {
	return []string{BackendBbolt, BackendBadger, BackendPebble}
}

// Open backend 이름으로 저장소 열기. bbolt는 파일 경로, 나머지는 디렉터리 경로
func Open(backend, path string) (Store, error) {
	switch strings.ToLower(backend) {
	case BackendBbolt:
		return OpenBbolt(path)
	case BackendBadger:
		return OpenBadger(path)
	case BackendPebble:
		return OpenPebble(path)
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", backend)
	}
}

// bucketName bbolt 버킷 이름
const bucketName = "benchmark"

// recordPrefix 기록 키 접두사. 다른 메타 키와 구분
const recordPrefix = 'r'

// recordKey 'r' + 16바이트 big-endian (unixNano, seq) 키.
// seq는 저장소에 영속되는 증가값이라 다시 열어도 같은 키가 나오지 않음.
func recordKey(at time.Time, seq uint64) []byte {
	key := make([]byte, 17)
	key[0] = recordPrefix
	binary.BigEndian.PutUint64(key[1:9], uint64(at.UnixNano()))
	binary.BigEndian.PutUint64(key[9:], seq)
	return key
}

// encode CreatedAt이 비어 있으면 현재 시각으로 채우고 시각과 값을 반환
func encode(rec Record) (time.Time, []byte, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	val, err := json.Marshal(rec)
	if err != nil {
		return time.Time{}, nil, errors.Wrap(err, "encode record")
	}
	return rec.CreatedAt, val, nil
}

func decode(val []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		return Record{}, errors.Wrap(err, "decode record")
	}
	return rec, nil
}
