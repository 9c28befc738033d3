package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/progression"
)

// Record сохранение прогресса в слоте.
// Прогресс переживает смерти и перезапуски, мир каждый раз создаётся заново.
type Record struct {
	Slot         string               `json:"slot" msgpack:"slot"`
	SavedAt      time.Time            `json:"savedAt" msgpack:"saved_at"`
	Tick         uint64               `json:"tick" msgpack:"tick"`
	TimeSurvived float64              `json:"timeSurvived" msgpack:"time_survived"`
	Progression  progression.Snapshot `json:"progression" msgpack:"progression"`
}

// SnapshotRepo определяет интерфейс хранилища сохранений.
// Слоты адресуются строковым именем ("default", "autosave"...).
type SnapshotRepo interface {
	// Save записывает сохранение в слот rec.Slot, перезаписывая старое.
	// Нулевое SavedAt заменяется текущим временем.
	Save(ctx context.Context, rec Record) error

	// Load читает слот. false означает, что сохранения нет.
	Load(ctx context.Context, slot string) (Record, bool, error)

	// Delete удаляет слот; отсутствующий слот даёт ошибку.
	Delete(ctx context.Context, slot string) error

	// List имена слотов по алфавиту.
	List(ctx context.Context) ([]string, error)

	Close() error
}

// Open создаёт хранилище по конфигурации
func Open(cfg config.StorageConfig) (SnapshotRepo, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		return NewMemorySnapshotRepo(), nil
	case "badger":
		return NewBadgerSnapshotRepo(cfg.Path)
	}
	return nil, fmt.Errorf("неизвестное хранилище: %q", cfg.Backend)
}

func validSlot(slot string) error {
	if slot == "" {
		return fmt.Errorf("пустое имя слота")
	}
	if strings.ContainsAny(slot, ":/\\") {
		return fmt.Errorf("недопустимое имя слота: %q", slot)
	}
	return nil
}

func prepare(rec *Record) error {
	if err := validSlot(rec.Slot); err != nil {
		return err
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now().UTC()
	}
	return nil
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
