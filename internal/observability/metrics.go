package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SimMetrics метрики симуляции. Нулевой указатель допустим: все методы
// тогда ничего не делают.
type SimMetrics struct {
	tickDuration prometheus.Histogram
	ticks        prometheus.Counter
	zombies      *prometheus.GaugeVec
	shots        *prometheus.CounterVec
	kills        *prometheus.CounterVec
	spawns       prometheus.Counter
	playerHealth prometheus.Gauge
	gameOvers    prometheus.Counter
}

// NewSimMetrics создаёт метрики и регистрирует их в reg
func NewSimMetrics(reg prometheus.Registerer) (*SimMetrics, error) {
	m := &SimMetrics{
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "deadcity",
			Subsystem: "sim",
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика симуляции.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01, 0.02, 0.05},
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "deadcity",
			Subsystem: "sim",
			Name:      "ticks_total",
			Help:      "Число выполненных тиков.",
		}),
		zombies: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "deadcity",
			Subsystem: "zombies",
			Name:      "count",
			Help:      "Зомби в мире по состоянию ИИ.",
		}, []string{"state"}),
		shots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deadcity",
			Subsystem: "combat",
			Name:      "shots_total",
			Help:      "Выстрелы по оружию и результату.",
		}, []string{"weapon", "result"}),
		kills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "deadcity",
			Subsystem: "zombies",
			Name:      "killed_total",
			Help:      "Убитые зомби по типу.",
		}, []string{"type"}),
		spawns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "deadcity",
			Subsystem: "zombies",
			Name:      "spawned_total",
			Help:      "Появившиеся зомби.",
		}),
		playerHealth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "deadcity",
			Subsystem: "player",
			Name:      "health",
			Help:      "Текущее здоровье игрока.",
		}),
		gameOvers: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "deadcity",
			Subsystem: "player",
			Name:      "game_over_total",
			Help:      "Сколько раз игрок погиб.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.tickDuration, m.ticks, m.zombies, m.shots, m.kills, m.spawns, m.playerHealth, m.gameOvers,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveTick фиксирует длительность тика
func (m *SimMetrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
}

// SetZombies выставляет число зомби по состояниям. Состояния без зомби
// обнуляются.
func (m *SimMetrics) SetZombies(byState map[string]int, states []string) {
	if m == nil {
		return
	}
	for _, s := range states {
		m.zombies.WithLabelValues(s).Set(float64(byState[s]))
	}
}

// Shot учитывает выстрел; result = hit | miss | kill
func (m *SimMetrics) Shot(weapon, result string) {
	if m == nil {
		return
	}
	m.shots.WithLabelValues(weapon, result).Inc()
}

func (m *SimMetrics) Killed(zombieType string) {
	if m == nil {
		return
	}
	m.kills.WithLabelValues(zombieType).Inc()
}

func (m *SimMetrics) Spawned() {
	if m == nil {
		return
	}
	m.spawns.Inc()
}

func (m *SimMetrics) PlayerHealth(h float64) {
	if m == nil {
		return
	}
	m.playerHealth.Set(h)
}

func (m *SimMetrics) GameOver() {
	if m == nil {
		return
	}
	m.gameOvers.Inc()
}
