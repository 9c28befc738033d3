package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/deadcity/internal/api"
	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/eventbus"
	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/observability"
	"github.com/annel0/deadcity/internal/sim"
	"github.com/annel0/deadcity/internal/storage"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const autosaveInterval = time.Minute

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или DEADCITY_CONFIG)")
	catalogPath := flag.String("catalog", "", "путь к каталогу сущностей (перекрывает catalog_path)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if cfg.Logging.File {
		if err := logging.InitDefaultLogger("simd"); err != nil {
			log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
		}
		defer logging.CloseDefaultLogger()
	}
	logging.SetDefaultLevel(logging.ParseLevel(cfg.Logging.Level))

	logging.Info("🧟 Запуск симуляции Dead City...")

	if err := run(cfg, *catalogPath); err != nil {
		logging.Error("❌ %v", err)
		logging.CloseDefaultLogger()
		os.Exit(1)
	}
	logging.Info("👋 Симуляция остановлена")
}

func run(cfg *config.Config, catalogOverride string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === КАТАЛОГ ===
	catalogPath := cfg.CatalogPath
	if catalogOverride != "" {
		catalogPath = catalogOverride
	}
	catalog, err := config.LoadCatalog(catalogPath)
	if err != nil {
		return fmt.Errorf("каталог: %w", err)
	}
	logging.Info("📚 Каталог: %d типов зомби, %d видов оружия, %d машин",
		len(catalog.Zombies.Types), len(catalog.Weapons), len(catalog.Vehicles))

	// === МЕТРИКИ ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	simMetrics, err := observability.NewSimMetrics(registry)
	if err != nil {
		return fmt.Errorf("метрики симуляции: %w", err)
	}

	// === ТЕЛЕМЕТРИЯ ===
	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, observability.TelemetryOptions{
			ServiceName: cfg.Telemetry.ServiceName,
		})
		if err != nil {
			logging.Warn("⚠️ Трассировка отключена: %v", err)
		} else {
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(sctx)
			}()
		}
	}

	// === ШИНА СОБЫТИЙ ===
	bus, err := openBus(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()
	eventbus.Init(bus)

	if sub, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("⚠️ Журнал событий не запущен: %v", err)
	} else {
		defer sub.Unsubscribe()
	}
	exporter, err := eventbus.NewMetricsExporter(bus, registry)
	if err != nil {
		return fmt.Errorf("метрики шины: %w", err)
	}
	exporter.Start()
	defer exporter.Stop()

	// === ХРАНИЛИЩЕ ===
	repo, err := storage.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf("хранилище: %w", err)
	}
	defer repo.Close()

	// === СИМУЛЯЦИЯ ===
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	input := sim.NewManualInput()
	s, err := sim.New(sim.Options{
		Catalog:  catalog,
		Seed:     seed,
		MaxDelta: cfg.Simulation.GetMaxDelta(),
		Bus:      bus,
		Metrics:  simMetrics,
		Input:    input,
	})
	if err != nil {
		return fmt.Errorf("симуляция: %w", err)
	}
	s.OnGameOver = func(timeSurvived float64) {
		logging.Info("💀 Игра окончена: выжил %s", vec.FormatTime(timeSurvived))
	}
	restoreProgress(ctx, s, repo, cfg.Storage.SaveSlot)

	runner := sim.NewRunner(s, cfg.Simulation.TickInterval())
	logging.Info("🌆 Мир готов: seed=%d, %d зомби, %d машин, %d Гц",
		seed, s.ZombieManager().ActiveCount(), len(s.Vehicles()), cfg.Simulation.GetTickRate())

	// === HTTP ===
	restPort := cfg.Server.GetRESTPort()
	rest, err := api.NewRestServer(api.Config{
		Port:     fmt.Sprintf(":%d", restPort),
		Runner:   runner,
		Input:    input,
		Repo:     repo,
		SaveSlot: cfg.Storage.SaveSlot,
		Registry: registry,
	})
	if err != nil {
		return fmt.Errorf("REST API: %w", err)
	}

	metricsPort := cfg.Server.GetMetricsPort()
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", metricsPort),
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 3)
	go func() { errCh <- rest.Start() }()
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("метрики: %w", err)
		}
	}()

	simCtx, cancelSim := context.WithCancel(ctx)
	simDone := make(chan struct{})
	go func() {
		defer close(simDone)
		errCh <- runner.Run(simCtx)
	}()
	go autosave(simCtx, runner, repo, cfg.Storage.SaveSlot)

	logging.Info("✅ Все сервисы запущены")
	logging.Info("   🌐 REST API: http://localhost:%d/api/state", restPort)
	logging.Info("   📊 Метрики: http://localhost:%d/metrics", metricsPort)
	logging.Info("   ❤️  Health check: http://localhost:%d/health", restPort)

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info("📡 Получен сигнал, завершение работы...")
	case runErr = <-errCh:
	}

	// === GRACEFUL SHUTDOWN ===
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rest.Stop(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки REST API: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("❌ Ошибка остановки сервера метрик: %v", err)
	}

	cancelSim()
	<-simDone
	saveProgress(shutdownCtx, s, repo, cfg.Storage.SaveSlot)
	return runErr
}

func openBus(cfg config.EventBusConfig) (eventbus.EventBus, error) {
	if cfg.URL == "" {
		logging.Info("📨 Шина событий: в памяти")
		return eventbus.NewMemoryBus(4096), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, cfg.RetentionDuration())
	if err != nil {
		return nil, fmt.Errorf("JetStream %s: %w", cfg.URL, err)
	}
	logging.Info("📨 Шина событий: JetStream %s, поток %s", cfg.URL, cfg.Stream)
	return bus, nil
}

// restoreProgress подхватывает сохранённый прогресс до старта цикла
func restoreProgress(ctx context.Context, s *sim.Simulation, repo storage.SnapshotRepo, slot string) {
	rec, found, err := repo.Load(ctx, slot)
	switch {
	case err != nil:
		logging.Warn("⚠️ Не удалось прочитать сохранение %s: %v", slot, err)
	case !found:
		logging.Info("🆕 Сохранение %s не найдено, новый прогресс", slot)
	default:
		if err := s.Progression().Load(rec.Progression); err != nil {
			logging.Warn("⚠️ Сохранение %s повреждено: %v", slot, err)
		}
	}
}

// saveProgress пишет прогресс после остановки цикла
func saveProgress(ctx context.Context, s *sim.Simulation, repo storage.SnapshotRepo, slot string) {
	rec := storage.Record{
		Slot:         slot,
		Tick:         s.Ticks(),
		TimeSurvived: s.TimeSurvived(),
		Progression:  s.Progression().Save(),
	}
	if err := repo.Save(ctx, rec); err != nil {
		logging.Error("❌ Ошибка сохранения прогресса: %v", err)
		return
	}
	logging.Info("💾 Прогресс сохранён в слот %s", slot)
}

// autosave периодически сохраняет прогресс через очередь команд
func autosave(ctx context.Context, runner *sim.Runner, repo storage.SnapshotRepo, slot string) {
	ticker := time.NewTicker(autosaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var rec storage.Record
			err := runner.Do(ctx, func(s *sim.Simulation) error {
				rec = storage.Record{
					Slot:         slot,
					Tick:         s.Ticks(),
					TimeSurvived: s.TimeSurvived(),
					Progression:  s.Progression().Save(),
				}
				return nil
			})
			if err != nil {
				continue
			}
			if err := repo.Save(ctx, rec); err != nil {
				logging.Warn("⚠️ Автосохранение не удалось: %v", err)
				continue
			}
			logging.Debug("💾 Автосохранение: тик %d", rec.Tick)
		}
	}
}
