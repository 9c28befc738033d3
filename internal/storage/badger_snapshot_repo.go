package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/annel0/deadcity/internal/logging"
	"github.com/dgraph-io/badger/v3"
)

const savePrefix = "save:"

// BadgerSnapshotRepo хранит сохранения в BadgerDB под ключами save:<слот>
type BadgerSnapshotRepo struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewBadgerSnapshotRepo открывает (или создаёт) базу в каталоге dbPath
func NewBadgerSnapshotRepo(dbPath string) (*BadgerSnapshotRepo, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("не задан путь к BadgerDB")
	}
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}
	logging.Info("💾 Хранилище сохранений BadgerDB: %s", dbPath)

	return &BadgerSnapshotRepo{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

// Close закрывает базу; повторный вызов безопасен
func (r *BadgerSnapshotRepo) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.isReady {
		return nil
	}
	r.isReady = false
	return r.db.Close()
}

func (r *BadgerSnapshotRepo) ready() error {
	if !r.isReady {
		return fmt.Errorf("хранилище не готово")
	}
	return nil
}

func (r *BadgerSnapshotRepo) Save(ctx context.Context, rec Record) error {
	if err := prepare(&rec); err != nil {
		return err
	}
	if err := checkContext(ctx); err != nil {
		return err
	}
	data, err := Encode(rec)
	if err != nil {
		return err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if err := r.ready(); err != nil {
		return err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(savePrefix+rec.Slot), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

func (r *BadgerSnapshotRepo) Load(ctx context.Context, slot string) (Record, bool, error) {
	if err := validSlot(slot); err != nil {
		return Record{}, false, err
	}
	if err := checkContext(ctx); err != nil {
		return Record{}, false, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if err := r.ready(); err != nil {
		return Record{}, false, err
	}

	var data []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(savePrefix + slot))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	rec, err := Decode(data)
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (r *BadgerSnapshotRepo) Delete(ctx context.Context, slot string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if err := r.ready(); err != nil {
		return err
	}

	key := []byte(savePrefix + slot)
	return r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("сохранение %q не найдено", slot)
			}
			return err
		}
		return txn.Delete(key)
	})
}

func (r *BadgerSnapshotRepo) List(ctx context.Context) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mutex.RLock()
	defer r.mutex.RUnlock()
	if err := r.ready(); err != nil {
		return nil, err
	}

	var slots []string
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(savePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// ключи идут в порядке байтов, то есть по алфавиту
		for it.Rewind(); it.Valid(); it.Next() {
			slots = append(slots, strings.TrimPrefix(string(it.Item().Key()), savePrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}
	return slots, nil
}
