package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPortWithEnvFallback(t *testing.T) {
	t.Run("config wins", func(t *testing.T) {
		t.Setenv("DEADCITY_REST_PORT", "9999")
		s := ServerConfig{RESTPort: 8000}
		assert.Equal(t, 8000, s.GetRESTPort())
	})
	t.Run("env fallback", func(t *testing.T) {
		t.Setenv("DEADCITY_REST_PORT", "9999")
		s := ServerConfig{}
		assert.Equal(t, 9999, s.GetRESTPort())
	})
	t.Run("invalid env uses default", func(t *testing.T) {
		t.Setenv("DEADCITY_METRICS_PORT", "abc")
		s := ServerConfig{}
		assert.Equal(t, 2113, s.GetMetricsPort())
	})
}

func TestLoadWithoutPathReturnsDefault(t *testing.T) {
	t.Setenv("DEADCITY_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Simulation.GetTickRate())
	assert.Equal(t, "memory", cfg.Storage.Backend)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simd.yaml")
	data := []byte("simulation:\n  tick_rate: 30\nstorage:\n  backend: badger\n  path: /tmp/saves\n")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Simulation.GetTickRate())
	assert.Equal(t, "badger", cfg.Storage.Backend)
	// незаданные поля остаются по умолчанию
	assert.Equal(t, "default", cfg.Storage.SaveSlot)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: mongo\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultCatalogIsValid(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())

	assert.Len(t, c.Zombies.Types, 4)
	assert.Len(t, c.Weapons, 4)
	assert.Len(t, c.Vehicles, 5)

	pistol, ok := c.Weapon("pistol")
	require.True(t, ok)
	assert.Equal(t, "Pistola", pistol.Name)
	assert.Equal(t, 12, pistol.MagazineSize)

	tank, ok := c.ZombieType("Tanque")
	require.True(t, ok)
	assert.Equal(t, 200.0, tank.Health)

	_, ok = c.ZombieType("Unknown")
	assert.False(t, ok)

	assert.Len(t, c.ModificationsFor(SlotMagazine), 3)
}

func TestParseCatalogOverridesSections(t *testing.T) {
	data := []byte(`
zombies:
  max_count: 5
  types:
    - name: Walker
      health: 10
      damage: 1
      speed: 1
      detection_range: 10
      attack_range: 1
      attack_rate: 1
`)
	c, err := ParseCatalog(data, "inline")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Zombies.MaxCount)
	require.Len(t, c.Zombies.Types, 1)
	assert.Equal(t, "Walker", c.Zombies.Types[0].Name)
	// остальные разделы по умолчанию
	assert.Len(t, c.Weapons, 4)
	assert.Equal(t, 2000.0, c.World.Size)
}

func TestValidateRejectsBadStats(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Catalog)
	}{
		{"no zombie types", func(c *Catalog) { c.Zombies.Types = nil }},
		{"zero health", func(c *Catalog) { c.Zombies.Types[0].Health = 0 }},
		{"attack beyond detection", func(c *Catalog) { c.Zombies.Types[0].AttackRange = 100 }},
		{"empty magazine", func(c *Catalog) { c.Weapons[0].MagazineSize = 0 }},
		{"no seats", func(c *Catalog) { c.Vehicles[0].Seats = 0 }},
		{"unknown slot", func(c *Catalog) { c.Modifications[0].Slot = "stock" }},
		{"loot chance", func(c *Catalog) { c.Zombies.LootChance = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultCatalog()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestFactor(t *testing.T) {
	assert.Equal(t, 1.0, Factor(0))
	assert.Equal(t, 1.5, Factor(1.5))
}
