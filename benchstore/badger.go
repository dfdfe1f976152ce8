package benchstore

import (
	"github.com/cockroachdb/errors"
	"github.com/dgraph-io/badger/v3"
)

// seqKey 기록 시퀀스를 보관하는 메타 키
var seqKey = []byte("seq")

// seqBandwidth badger 시퀀스가 한 번에 임대하는 개수
const seqBandwidth = 64

type badgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

// OpenBadger 디렉터리 기반 badger 저장소
func OpenBadger(dir string) (Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, errors.Wrapf(err, "open badger %s", dir)
	}
	seq, err := db.GetSequence(seqKey, seqBandwidth)
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "badger sequence")
	}
	return &badgerStore{db: db, seq: seq}, nil
}

func (s *badgerStore) Put(rec Record) error {
	at, val, err := encode(rec)
	if err != nil {
		return err
	}
	seq, err := s.seq.Next()
	if err != nil {
		return errors.Wrap(err, "badger sequence")
	}
	return errors.Wrap(s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(recordKey(at, seq), val)
	}), "badger put")
}

func (s *badgerStore) List() ([]Record, error) {
	var out []Record
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{recordPrefix}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := decode(val)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "badger list")
	}
	return out, nil
}

func (s *badgerStore) Close() error {
	// 임대하고 쓰지 않은 시퀀스 반납
	relErr := s.seq.Release()
	if err := s.db.Close(); err != nil {
		return err
	}
	return errors.Wrap(relErr, "badger sequence release")
}
