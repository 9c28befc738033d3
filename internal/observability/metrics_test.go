package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewSimMetrics(reg)
	require.NoError(t, err)

	m.ObserveTick(2 * time.Millisecond)
	m.ObserveTick(3 * time.Millisecond)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticks))

	m.SetZombies(map[string]int{"chase": 3}, []string{"idle", "chase"})
	assert.Equal(t, 3.0, testutil.ToFloat64(m.zombies.WithLabelValues("chase")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.zombies.WithLabelValues("idle")))

	m.Shot("Pistola", "kill")
	m.Killed("Comum")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.shots.WithLabelValues("Pistola", "kill")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.kills.WithLabelValues("Comum")))

	_, err = NewSimMetrics(reg)
	assert.Error(t, err)
}

func TestNilSimMetrics(t *testing.T) {
	var m *SimMetrics
	assert.NotPanics(t, func() {
		m.ObserveTick(time.Millisecond)
		m.SetZombies(nil, []string{"idle"})
		m.Shot("Rifle", "miss")
		m.Killed("Tanque")
		m.Spawned()
		m.PlayerHealth(10)
		m.GameOver()
	})
}
