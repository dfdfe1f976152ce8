package benchstore

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
)

// quietLogger pebble 내부 로그 버림
type quietLogger struct{}

func (quietLogger) Infof(string, ...interface{}) {}

func (quietLogger) Fatalf(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

type pebbleStore struct {
	db *pebble.DB

	mu  sync.Mutex
	seq uint64 // 마지막으로 쓴 시퀀스. seqKey에 기록과 함께 커밋
}

// OpenPebble 디렉터리 기반 pebble 저장소
func OpenPebble(dir string) (Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{Logger: quietLogger{}})
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble %s", dir)
	}
	seq, err := loadSeq(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &pebbleStore{db: db, seq: seq}, nil
}

func loadSeq(db *pebble.DB) (uint64, error) {
	val, closer, err := db.Get(seqKey)
	if errors.Is(err, pebble.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "pebble sequence")
	}
	defer closer.Close()
	if len(val) != 8 {
		return 0, errors.Newf("pebble sequence: bad length %d", len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

func (s *pebbleStore) Put(rec Record) error {
	at, val, err := encode(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.seq + 1
	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(recordKey(at, seq), val, nil); err != nil {
		return errors.Wrap(err, "pebble put")
	}
	if err := b.Set(seqKey, binary.BigEndian.AppendUint64(nil, seq), nil); err != nil {
		return errors.Wrap(err, "pebble put")
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return errors.Wrap(err, "pebble put")
	}
	s.seq = seq
	return nil
}

func (s *pebbleStore) List() (out []Record, err error) {
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{recordPrefix},
		UpperBound: []byte{recordPrefix + 1},
	})
	if err != nil {
		return nil, errors.Wrap(err, "pebble iterator")
	}
	defer func() {
		if cerr := it.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "pebble iterator close")
		}
	}()

	for it.First(); it.Valid(); it.Next() {
		// Value()는 다음 이동 전까지만 유효
		rec, err := decode(slices.Clone(it.Value()))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *pebbleStore) Close() error {
	return s.db.Close()
}
