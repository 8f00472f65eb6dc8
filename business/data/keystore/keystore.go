// Package keystore provides the durable key/value slots shared by the
// mining and auction engines.
package keystore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the requested key has no value.
var ErrNotFound = errors.New("key not found")

// Config represents the mandatory settings needed to open the key store.
type Config struct {
	Log *zap.SugaredLogger

	// DataDir is the directory holding the badger files. An in-memory
	// store is used when empty, which is useful for testing.
	DataDir string
}

// KeyStore manages the process-wide singleton slots such as the current
// mining target and the serialized auction round.
type KeyStore struct {
	log *zap.SugaredLogger
	db  *badger.DB
}

// Open creates or opens the badger database.
func Open(cfg Config) (*KeyStore, error) {
	var opts badger.Options

	switch cfg.DataDir {
	case "":
		opts = badger.DefaultOptions("").WithInMemory(true)

	default:
		if _, err := os.Stat(cfg.DataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading data dir: %w", err)
			}
			if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data dir: %w", err)
			}
		}
		opts = badger.DefaultOptions(filepath.Join(cfg.DataDir, "keys"))
	}

	// The default INFO logging is a bit verbose.
	opts = opts.WithLogger(badgerLogger{log: cfg.Log}).WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger database: %w", err)
	}

	return &KeyStore{
		log: cfg.Log,
		db:  db,
	}, nil
}

// Close releases the underlying database handle.
func (ks *KeyStore) Close() error {
	return ks.db.Close()
}

// Get retrieves the value stored under the specified key. ErrNotFound is
// returned when the slot has never been written.
func (ks *KeyStore) Get(key string) ([]byte, error) {
	var value []byte

	err := ks.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Set overwrites the value stored under the specified key.
func (ks *KeyStore) Set(key string, value []byte) error {
	return ks.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

// Delete clears the slot stored under the specified key. Deleting a key
// that does not exist is not an error.
func (ks *KeyStore) Delete(key string) error {
	return ks.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}
