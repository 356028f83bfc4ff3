// Package store persists AFT state in BadgerDB behind a write-ahead log.
//
// Every write is appended to the WAL before it is applied to Badger. On
// startup the WAL is replayed into Badger, so a crash between the two steps
// loses nothing.
package store

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"
	"github.com/vadiminshakov/sasaft/core/dto"
)

const (
	historyPrefix = "aft:history:"
	cursorKey     = "aft:history:cursor"
	registration  = "aft:registration"
	lockOptions   = "aft:lock"
	receiptData   = "aft:receipt"
)

// ErrNotFound returned when key does not exist in the store.
var ErrNotFound = errors.New("key not found")

// Store keeps AFT state in BadgerDB and reconstructs it from the WAL on startup.
type Store struct {
	wal *gowal.Wal
	db  *badger.DB
	mu  sync.RWMutex

	// next WAL index
	seq uint64
}

// RecoveryState contains information extracted from WAL during startup.
type RecoveryState struct {
	// Replayed is the number of WAL entries applied to the database.
	Replayed int
	// NextIndex is the WAL index the next write will use.
	NextIndex uint64
}

// New creates a new WAL-backed store and reconstructs state from WAL entries using BadgerDB.
func New(wal *gowal.Wal, dbPath string) (*Store, *RecoveryState, error) {
	if wal == nil {
		return nil, nil, errors.New("wal is nil")
	}
	if dbPath == "" {
		return nil, nil, errors.New("db path is empty")
	}

	if err := os.MkdirAll(dbPath, 0o755); err != nil {
		return nil, nil, errors.Wrap(err, "create badger directory")
	}

	opts := badger.DefaultOptions(dbPath).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open badger db")
	}

	s := &Store{
		wal: wal,
		db:  db,
	}

	recovery, err := s.recover()
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	s.seq = recovery.NextIndex

	return s, recovery, nil
}

// Put logs the value to the WAL and stores it under key.
func (s *Store) Put(key string, value []byte) error {
	if key == "" {
		return errors.New("key cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.wal.Write(s.seq, key, value); err != nil {
		return errors.Wrapf(err, "write wal entry %d", s.seq)
	}
	s.seq++

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), cloneBytes(value))
	})
}

// Get retrieves value by key. Returns ErrNotFound if key does not exist.
func (s *Store) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if stdErrors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// PutHistory persists one history slot together with the write cursor.
func (s *Store) PutHistory(slot uint8, rec dto.TransferRecord, cursor uint8) error {
	if err := s.putJSON(historyKey(slot), rec); err != nil {
		return err
	}
	return s.Put(cursorKey, []byte{cursor})
}

// LoadHistory returns every persisted history slot and the write cursor.
func (s *Store) LoadHistory() (map[uint8]dto.TransferRecord, uint8, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make(map[uint8]dto.TransferRecord)
	var cursor uint8

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(historyPrefix)})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())
			if key == cursorKey {
				if err := item.Value(func(val []byte) error {
					if len(val) == 1 {
						cursor = val[0]
					}
					return nil
				}); err != nil {
					return err
				}
				continue
			}

			var slot uint8
			if _, err := fmt.Sscanf(strings.TrimPrefix(key, historyPrefix), "%03d", &slot); err != nil {
				return errors.Wrapf(err, "parse history key %q", key)
			}

			var rec dto.TransferRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return errors.Wrapf(err, "decode history slot %d", slot)
			}
			entries[slot] = rec
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return entries, cursor, nil
}

func (s *Store) PutRegistration(state dto.RegistrationState) error {
	return s.putJSON(registration, state)
}

// LoadRegistration returns ErrNotFound when the machine was never registered.
func (s *Store) LoadRegistration() (dto.RegistrationState, error) {
	var state dto.RegistrationState
	err := s.getJSON(registration, &state)
	return state, err
}

func (s *Store) PutLockOptions(state dto.LockState) error {
	return s.putJSON(lockOptions, state)
}

func (s *Store) LoadLockOptions() (dto.LockState, error) {
	var state dto.LockState
	err := s.getJSON(lockOptions, &state)
	return state, err
}

// PutReceiptData persists the receipt fields keyed by LP75 field code.
func (s *Store) PutReceiptData(fields map[byte]string) error {
	return s.putJSON(receiptData, fields)
}

func (s *Store) LoadReceiptData() (map[byte]string, error) {
	fields := make(map[byte]string)
	err := s.getJSON(receiptData, &fields)
	return fields, err
}

// Close closes the underlying Badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return s.Put(key, data)
}

func (s *Store) getJSON(key string, v any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	return errors.Wrapf(json.Unmarshal(data, v), "decode %s", key)
}

func (s *Store) recover() (*RecoveryState, error) {
	var (
		maxIndex   uint64
		hasEntries bool
		replayed   int
	)

	for msg := range s.wal.Iterator() {
		if !hasEntries || msg.Idx > maxIndex {
			maxIndex = msg.Idx
		}
		hasEntries = true

		if msg.Key == "" || msg.Value == nil {
			continue
		}

		if err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(msg.Key), cloneBytes(msg.Value))
		}); err != nil {
			return nil, errors.Wrap(err, "apply wal entry")
		}
		replayed++
	}

	next := uint64(0)
	if hasEntries {
		next = maxIndex + 1
	}

	return &RecoveryState{Replayed: replayed, NextIndex: next}, nil
}

func historyKey(slot uint8) string {
	return fmt.Sprintf("%s%03d", historyPrefix, slot)
}

func cloneBytes(src []byte) []byte {
	if src == nil {
		return nil
	}

	dst := make([]byte, len(src))
	copy(dst, src)
	return dst
}
