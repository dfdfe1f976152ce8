package benchstore

import (
	"time"

	"github.com/cockroachdb/errors"
	"go.etcd.io/bbolt"
)

type bboltStore struct {
	db *bbolt.DB
}

// OpenBbolt 단일 파일 bbolt 저장소
func OpenBbolt(path string) (Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bbolt %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create bucket")
	}
	return &bboltStore{db: db}, nil
}

func (s *bboltStore) Put(rec Record) error {
	at, val, err := encode(rec)
	if err != nil {
		return err
	}
	return errors.Wrap(s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))
		// 버킷 시퀀스는 같은 트랜잭션으로 커밋됨
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(recordKey(at, seq), val)
	}), "bbolt put")
}

func (s *bboltStore) List() ([]Record, error) {
	var out []Record
	err := s.db.View(func(tx *bbolt.Tx) error {
		// bbolt 커서는 키 순서로 순회
		return tx.Bucket([]byte(bucketName)).ForEach(func(_, v []byte) error {
			rec, err := decode(v)
			if err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "bbolt list")
	}
	return out, nil
}

func (s *bboltStore) Close() error {
	return s.db.Close()
}
