package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации демона симуляции.
// Каталог игровых сущностей лежит отдельно (см. Catalog) и
// подключается через CatalogPath.
type Config struct {
	EventBus    EventBusConfig   `yaml:"eventbus"`
	Server      ServerConfig     `yaml:"server"`
	Simulation  SimulationConfig `yaml:"simulation"`
	Storage     StorageConfig    `yaml:"storage"`
	Telemetry   TelemetryConfig  `yaml:"telemetry"`
	Logging     LoggingConfig    `yaml:"logging"`
	CatalogPath string           `yaml:"catalog_path"`
}

// EventBusConfig параметры шины событий. Пустой URL означает
// встроенную шину в памяти.
type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

// SimulationConfig параметры цикла тиков
type SimulationConfig struct {
	TickRate int   `yaml:"tick_rate"`
	Seed     int64 `yaml:"seed"`
	// MaxDelta ограничивает шаг при подвисании хоста, секунды
	MaxDelta float64 `yaml:"max_delta"`
}

// StorageConfig хранилище сохранений прогресса
type StorageConfig struct {
	Backend  string `yaml:"backend"` // memory | badger
	Path     string `yaml:"path"`
	SaveSlot string `yaml:"save_slot"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  bool   `yaml:"file"`
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "DEADCITY_REST_PORT", 8090)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "DEADCITY_METRICS_PORT", 2113)
}

// GetTickRate частота тиков в герцах, по умолчанию 60
func (s *SimulationConfig) GetTickRate() int {
	if s.TickRate > 0 {
		return s.TickRate
	}
	return 60
}

// TickInterval длительность одного тика
func (s *SimulationConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.GetTickRate())
}

// GetMaxDelta верхняя граница шага симуляции
func (s *SimulationConfig) GetMaxDelta() float64 {
	if s.MaxDelta > 0 {
		return s.MaxDelta
	}
	return 0.1
}

// RetentionDuration срок хранения событий в JetStream
func (e *EventBusConfig) RetentionDuration() time.Duration {
	if e.Retention <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(e.Retention) * time.Hour
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Default конфигурация без файла: шина в памяти, хранилище в памяти,
// телеметрия выключена.
func Default() *Config {
	return &Config{
		EventBus:   EventBusConfig{Stream: "DEADCITY"},
		Simulation: SimulationConfig{TickRate: 60, MaxDelta: 0.1},
		Storage:    StorageConfig{Backend: "memory", Path: "data/saves", SaveSlot: "default"},
		Telemetry:  TelemetryConfig{ServiceName: "deadcity-simd"},
		Logging:    LoggingConfig{Level: "INFO"},
	}
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV DEADCITY_CONFIG; если и он
// пуст, возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("DEADCITY_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	switch cfg.Storage.Backend {
	case "", "memory", "badger":
	default:
		return nil, fmt.Errorf("invalid config %s: unknown storage backend %q", path, cfg.Storage.Backend)
	}

	return cfg, nil
}
