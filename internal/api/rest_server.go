package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/middleware"
	"github.com/annel0/deadcity/internal/sim"
	"github.com/annel0/deadcity/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Version версия API в /api/server
const Version = "v0.3.0"

// RestServer представляет REST API симуляции
type RestServer struct {
	router     *gin.Engine
	httpServer *http.Server
	runner     *sim.Runner
	input      *sim.ManualInput
	repo       storage.SnapshotRepo
	saveSlot   string
	port       string
	metrics    *ServerMetrics
	timeout    time.Duration
	logger     *logging.Logger
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port     string           // адрес вида ":8090"
	Runner   *sim.Runner      // цикл симуляции; все изменения идут через него
	Input    *sim.ManualInput // ввод игрока, выставляемый через /api/input
	Repo     storage.SnapshotRepo
	SaveSlot string               // слот по умолчанию для /api/save и /api/load
	Registry *prometheus.Registry // nil: дефолтный регистр
	Timeout  time.Duration        // ожидание команды симуляции
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) (*RestServer, error) {
	if config.Runner == nil {
		return nil, fmt.Errorf("rest: runner is required")
	}
	if config.Port == "" {
		config.Port = ":8090"
	}
	if config.SaveSlot == "" {
		config.SaveSlot = "default"
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware("deadcity_api"))
	router.Use(middleware.NewRequestLogger().Handler())

	var (
		reg      prometheus.Registerer
		gatherer prometheus.Gatherer
	)
	if config.Registry != nil {
		reg, gatherer = config.Registry, config.Registry
	}
	promMw, err := middleware.NewPrometheusMiddleware("deadcity_api", reg)
	if err != nil {
		return nil, fmt.Errorf("rest: metrics: %w", err)
	}
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, gatherer)

	rs := &RestServer{
		router:   router,
		runner:   config.Runner,
		input:    config.Input,
		repo:     config.Repo,
		saveSlot: config.SaveSlot,
		port:     config.Port,
		metrics:  NewServerMetrics(),
		timeout:  config.Timeout,
		logger:   logging.GetComponentLogger("api"),
	}
	rs.setupRoutes()
	rs.httpServer = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return rs, nil
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := rs.router.Group("/api")
	{
		// Чтение
		api.GET("/state", rs.handleState)
		api.GET("/server", rs.handleServerInfo)
		api.GET("/progression", rs.handleProgression)
		api.POST("/raycast", rs.handleRaycast)

		// Популяция
		api.POST("/zombies", rs.handleSpawnZombie)
		api.DELETE("/zombies", rs.handleDespawnAll)

		// Управление игроком
		api.POST("/input", rs.handleInput)
		api.POST("/actions/:action", rs.handleAction)
		api.POST("/inventory/:index/use", rs.handleUseItem)
		api.POST("/inventory/:index/drop", rs.handleDropItem)
		api.POST("/weapons/:index/equip", rs.handleEquipWeapon)
		api.POST("/weapons/:index/drop", rs.handleDropWeapon)
		api.POST("/weapons/mods", rs.handleAddModification)
		api.POST("/skills/:key/upgrade", rs.handleUpgradeSkill)

		// Сохранения
		api.GET("/saves", rs.handleListSaves)
		api.POST("/save", rs.handleSave)
		api.POST("/load", rs.handleLoad)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler корневой обработчик (для httptest)
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Start запускает HTTP-сервер и блокируется до Stop
func (rs *RestServer) Start() error {
	rs.logger.Info("🌐 REST API слушает %s", rs.port)
	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop корректно завершает HTTP-сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	return rs.httpServer.Shutdown(ctx)
}

// do выполняет команду в цикле симуляции с таймаутом запроса
func (rs *RestServer) do(c *gin.Context, fn sim.Command) error {
	ctx, cancel := context.WithTimeout(c.Request.Context(), rs.timeout)
	defer cancel()
	return rs.runner.Do(ctx, fn)
}
