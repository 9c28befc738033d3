package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemorySnapshotRepo реализует SnapshotRepo в памяти.
// Используется по умолчанию и в тестах.
// ВНИМАНИЕ: Данные теряются при перезапуске!
type MemorySnapshotRepo struct {
	mu   sync.RWMutex
	data map[string][]byte // слот -> закодированная запись
}

// NewMemorySnapshotRepo создает пустое хранилище в памяти
func NewMemorySnapshotRepo() *MemorySnapshotRepo {
	return &MemorySnapshotRepo{data: make(map[string][]byte)}
}

// Save кодирует запись тем же форматом, что и BadgerDB
func (r *MemorySnapshotRepo) Save(ctx context.Context, rec Record) error {
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

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[rec.Slot] = data
	return nil
}

func (r *MemorySnapshotRepo) Load(ctx context.Context, slot string) (Record, bool, error) {
	if err := validSlot(slot); err != nil {
		return Record{}, false, err
	}
	if err := checkContext(ctx); err != nil {
		return Record{}, false, err
	}

	r.mu.RLock()
	data, ok := r.data[slot]
	r.mu.RUnlock()
	if !ok {
		return Record{}, false, nil
	}
	rec, err := Decode(data)
	if err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (r *MemorySnapshotRepo) Delete(ctx context.Context, slot string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[slot]; !ok {
		return fmt.Errorf("сохранение %q не найдено", slot)
	}
	delete(r.data, slot)
	return nil
}

func (r *MemorySnapshotRepo) List(ctx context.Context) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	slots := make([]string, 0, len(r.data))
	for slot := range r.data {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	return slots, nil
}

// Count количество слотов (для отладки)
func (r *MemorySnapshotRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

func (r *MemorySnapshotRepo) Close() error { return nil }
