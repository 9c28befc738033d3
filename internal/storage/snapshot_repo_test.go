package storage

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/progression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(slot string) Record {
	p := progression.New()
	p.AddExperience(350)
	p.UpdateStat(progression.StatZombiesKilled, 12)
	p.VisitArea("2:2")
	return Record{
		Slot:         slot,
		Tick:         4200,
		TimeSurvived: 70.5,
		Progression:  p.Save(),
	}
}

// repoCases оба хранилища проходят один и тот же набор проверок
func repoCases(t *testing.T) map[string]SnapshotRepo {
	badgerRepo, err := NewBadgerSnapshotRepo(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = badgerRepo.Close() })

	return map[string]SnapshotRepo{
		"memory": NewMemorySnapshotRepo(),
		"badger": badgerRepo,
	}
}

func TestSnapshotRepoRoundTrip(t *testing.T) {
	for name, repo := range repoCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, found, err := repo.Load(ctx, "default")
			require.NoError(t, err)
			assert.False(t, found)

			rec := sampleRecord("default")
			require.NoError(t, repo.Save(ctx, rec))

			got, found, err := repo.Load(ctx, "default")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, "default", got.Slot)
			assert.Equal(t, uint64(4200), got.Tick)
			assert.Equal(t, 70.5, got.TimeSurvived)
			assert.False(t, got.SavedAt.IsZero())
			assert.Equal(t, rec.Progression.Level, got.Progression.Level)
			assert.Equal(t, rec.Progression.Experience, got.Progression.Experience)
			assert.Equal(t, rec.Progression.Skills, got.Progression.Skills)
			assert.Equal(t, 12.0, got.Progression.Stats[progression.StatZombiesKilled])
			assert.Equal(t, []string{"2:2"}, got.Progression.Visited)

			restored := progression.New()
			require.NoError(t, restored.Load(got.Progression))
			assert.Equal(t, 2, restored.Level())
		})
	}
}

func TestSnapshotRepoListAndDelete(t *testing.T) {
	for name, repo := range repoCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, slot := range []string{"zeta", "autosave", "default"} {
				require.NoError(t, repo.Save(ctx, sampleRecord(slot)))
			}
			// перезапись не плодит слоты
			require.NoError(t, repo.Save(ctx, sampleRecord("default")))

			slots, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"autosave", "default", "zeta"}, slots)

			require.NoError(t, repo.Delete(ctx, "zeta"))
			assert.Error(t, repo.Delete(ctx, "zeta"))

			slots, err = repo.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"autosave", "default"}, slots)
		})
	}
}

func TestSnapshotRepoRejectsBadInput(t *testing.T) {
	for name, repo := range repoCases(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			assert.Error(t, repo.Save(ctx, sampleRecord("")))
			assert.Error(t, repo.Save(ctx, sampleRecord("a:b")))

			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			assert.ErrorIs(t, repo.Save(cancelled, sampleRecord("default")), context.Canceled)
			_, _, err := repo.Load(cancelled, "default")
			assert.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestBadgerSnapshotRepoPersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	saved := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo, err := NewBadgerSnapshotRepo(dir)
	require.NoError(t, err)
	rec := sampleRecord("default")
	rec.SavedAt = saved
	require.NoError(t, repo.Save(ctx, rec))
	require.NoError(t, repo.Close())
	require.NoError(t, repo.Close(), "повторное закрытие безопасно")

	_, _, err = repo.Load(ctx, "default")
	assert.Error(t, err, "закрытое хранилище не читается")

	reopened, err := NewBadgerSnapshotRepo(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, found, err := reopened.Load(ctx, "default")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, saved.Equal(got.SavedAt))
}

func TestCodec(t *testing.T) {
	data, err := Encode(sampleRecord("default"))
	require.NoError(t, err)
	assert.Equal(t, codecVersion, data[0])

	_, err = Decode(nil)
	assert.Error(t, err)

	broken := append([]byte{}, data...)
	broken[0] = 99
	_, err = Decode(broken)
	assert.Error(t, err)

	_, err = Decode([]byte{codecVersion, 1, 2, 3})
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	repo, err := Open(config.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemorySnapshotRepo{}, repo)

	repo, err = Open(config.StorageConfig{Backend: "badger", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &BadgerSnapshotRepo{}, repo)
	require.NoError(t, repo.Close())

	_, err = Open(config.StorageConfig{Backend: "mongo"})
	assert.Error(t, err)
}
