// Package tokenstore keeps the admin and user bearer tokens between ibctl
// runs in a small Badger database.
package tokenstore

import (
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

const (
	AdminTokenKey = "adminToken"
	UserTokenKey  = "token"
)

var ErrEmptyKey = errors.New("tokenstore: key is empty")

type Store struct {
	db *badger.DB
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("tokenstore: path is required")
	}
	return open(badger.DefaultOptions(path))
}

func OpenInMemory() (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, errors.Wrap(err, "tokenstore: open")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns "" for a missing key.
func (s *Store) Get(key string) (string, error) {
	k, err := normalize(key)
	if err != nil {
		return "", err
	}
	var out string
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = string(val)
			return nil
		})
	})
	if err != nil {
		return "", errors.Wrapf(err, "tokenstore: get %s", key)
	}
	return out, nil
}

func (s *Store) Set(key, value string) error {
	k, err := normalize(key)
	if err != nil {
		return err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, []byte(value))
	})
	return errors.Wrapf(err, "tokenstore: set %s", key)
}

func (s *Store) Delete(keys ...string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, key := range keys {
			k, err := normalize(key)
			if err != nil {
				return err
			}
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	return errors.Wrap(err, "tokenstore: delete")
}

// Clear removes both auth tokens.
func (s *Store) Clear() error {
	return s.Delete(AdminTokenKey, UserTokenKey)
}

func normalize(key string) ([]byte, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return nil, ErrEmptyKey
	}
	return []byte(k), nil
}
