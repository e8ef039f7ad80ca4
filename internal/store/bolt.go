package store

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/galvinograd/purple-titanium/internal/pterrors"
)

var entriesBucket = []byte("titanium_entries")

// BoltStore is the single-file embedded backend: every cache entry lives
// in one bolt database file under the same signature-keyed, checksummed
// encoding the filesystem backend uses, so a workspace can switch
// cache_backend in config without touching anything upstream.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (creating if necessary) a bolt database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o644, nil)
	if err != nil {
		return nil, pterrors.WrapStorage("open bolt store", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(entriesBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, pterrors.WrapStorage("init bolt bucket", err)
	}
	return &BoltStore{db: db}, nil
}

// Close releases the underlying bolt database file.
func (s *BoltStore) Close() error { return s.db.Close() }

func (s *BoltStore) Save(ctx context.Context, signatureHex string, e Entry) error {
	data := encode(e)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).Put([]byte(signatureHex), data)
	})
	if err != nil {
		return pterrors.WrapStorage("save cache entry", err)
	}
	return nil
}

func (s *BoltStore) Load(ctx context.Context, signatureHex string) (Entry, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(entriesBucket).Get([]byte(signatureHex))
		if v == nil {
			return fmt.Errorf("no entry for signature %s", signatureHex)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return Entry{}, pterrors.WrapStorage("load cache entry", err)
	}
	e, err := decode(data)
	if err != nil {
		return Entry{}, &pterrors.CacheCorruptionError{Signature: signatureHex, Reason: err.Error()}
	}
	return e, nil
}

func (s *BoltStore) Exists(ctx context.Context, signatureHex string) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(entriesBucket).Get([]byte(signatureHex)) != nil
		return nil
	})
	if err != nil {
		return false, pterrors.WrapStorage("check cache entry", err)
	}
	return found, nil
}

func (s *BoltStore) Invalidate(ctx context.Context, signatureHex string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).Delete([]byte(signatureHex))
	})
	if err != nil {
		return pterrors.WrapStorage("invalidate cache entry", err)
	}
	return nil
}

// Signatures lists every key currently stored in the entries bucket.
func (s *BoltStore) Signatures(ctx context.Context) ([]string, error) {
	var out []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).ForEach(func(k, _ []byte) error {
			out = append(out, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, pterrors.WrapStorage("list cache entries", err)
	}
	return out, nil
}

var _ Store = (*FSStore)(nil)
var _ Store = (*BoltStore)(nil)
