package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/player"
	"github.com/annel0/deadcity/internal/progression"
	"github.com/annel0/deadcity/internal/sim"
	"github.com/annel0/deadcity/internal/storage"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/annel0/deadcity/internal/zombie"
	"github.com/gin-gonic/gin"
)

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RaycastRequest запрос луча против статики мира
type RaycastRequest struct {
	Origin      vec.Vec3 `json:"origin"`
	Direction   vec.Vec3 `json:"direction"`
	MaxDistance float64  `json:"maxDistance"`
}

// RaycastResponse результат луча; Hit=false означает отсутствие пересечения
type RaycastResponse struct {
	Hit      bool      `json:"hit"`
	Point    *vec.Vec3 `json:"point,omitempty"`
	Distance float64   `json:"distance,omitempty"`
	Kind     string    `json:"kind,omitempty"`
	ID       uint64    `json:"id,omitempty"`
}

// SpawnRequest появление зомби. Без позиции точка подбирается
// по правилам периодического появления.
type SpawnRequest struct {
	Type     string    `json:"type"`
	Position *vec.Vec3 `json:"position,omitempty"`
}

// ModRequest установка модификации на экипированное оружие
type ModRequest struct {
	Name string `json:"name" binding:"required"`
}

// SlotRequest выбор слота сохранения
type SlotRequest struct {
	Slot string `json:"slot"`
}

// ShotResponse итог выстрела
type ShotResponse struct {
	Fired         bool    `json:"fired"`
	ReloadStarted bool    `json:"reloadStarted,omitempty"`
	Hit           bool    `json:"hit"`
	Target        string  `json:"target,omitempty"`
	TargetID      uint64  `json:"targetId,omitempty"`
	Damage        float64 `json:"damage,omitempty"`
	Killed        bool    `json:"killed,omitempty"`
}

// statusFor переводит ошибку симуляции в HTTP-статус
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrInvalidOperation), errors.Is(err, entity.ErrPlacementFailed):
		return http.StatusConflict
	case errors.Is(err, entity.ErrResourceExhausted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusServiceUnavailable
}

var errBadRequest = errors.New("bad request")

func (rs *RestServer) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		rs.logger.Warn("⚠️ %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, GenericResponse{Success: false, Message: err.Error()})
}

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, GenericResponse{Success: true, Message: message, Data: data})
}

func indexParam(c *gin.Context) (int, error) {
	i, err := strconv.Atoi(c.Param("index"))
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: invalid index %q", errBadRequest, c.Param("index"))
	}
	return i, nil
}

func (rs *RestServer) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, rs.runner.State())
}

func (rs *RestServer) handleServerInfo(c *gin.Context) {
	cpuPercent, rss, err := rs.metrics.ProcessStats()
	if err != nil {
		rs.logger.Debug("Показатели процесса недоступны: %v", err)
	}
	st := rs.runner.State()

	info := map[string]interface{}{
		"version":     Version,
		"name":        "Dead City Simulation",
		"status":      "running",
		"uptime":      rs.metrics.Uptime().String(),
		"rss_mb":      fmt.Sprintf("%.1f", rss),
		"cpu_percent": fmt.Sprintf("%.1f", cpuPercent),
		"tick":        st.Tick,
		"zombies":     len(st.Zombies),
		"game_over":   st.GameOver,
		"server_time": time.Now().Unix(),
		"memory":      rs.metrics.MemoryStats(),
	}
	if st.GameOver {
		info["status"] = "game_over"
	}
	ok(c, http.StatusOK, "Информация о сервере", info)
}

func (rs *RestServer) handleProgression(c *gin.Context) {
	var snap progression.Snapshot
	err := rs.do(c, func(s *sim.Simulation) error {
		snap = s.Progression().Save()
		return nil
	})
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (rs *RestServer) handleRaycast(c *gin.Context) {
	var req RaycastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rs.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if req.Direction.Length() == 0 {
		rs.fail(c, fmt.Errorf("%w: direction must be non-zero", errBadRequest))
		return
	}

	var resp RaycastResponse
	err := rs.do(c, func(s *sim.Simulation) error {
		hit, found := s.RaycastQuery(req.Origin, req.Direction.Normalized(), req.MaxDistance)
		if found {
			p := hit.Point
			resp = RaycastResponse{
				Hit:      true,
				Point:    &p,
				Distance: hit.Distance,
				Kind:     hit.Tag.Kind.String(),
				ID:       uint64(hit.Tag.ID),
			}
		}
		return nil
	})
	if err != nil {
		rs.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (rs *RestServer) handleSpawnZombie(c *gin.Context) {
	var req SpawnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rs.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	var state sim.EntityState
	err := rs.do(c, func(s *sim.Simulation) error {
		var (
			z   *zombie.Zombie
			err error
		)
		switch {
		case req.Position != nil && req.Type != "":
			z, err = s.SpawnZombie(req.Type, *req.Position)
		case req.Position == nil && req.Type == "":
			z, err = s.ZombieManager().SpawnRandom(s.Player().Position())
		default:
			return fmt.Errorf("%w: type and position go together", errBadRequest)
		}
		if err != nil {
			return err
		}
		for _, st := range s.State().Zombies {
			if st.ID == uint64(z.ID()) {
				state = st
			}
		}
		return nil
	})
	if err != nil {
		rs.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Зомби создан", state)
}

func (rs *RestServer) handleDespawnAll(c *gin.Context) {
	var n int
	if err := rs.do(c, func(s *sim.Simulation) error {
		n = s.DespawnAll()
		return nil
	}); err != nil {
		rs.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Зомби убраны", gin.H{"removed": n})
}

func (rs *RestServer) handleInput(c *gin.Context) {
	if rs.input == nil {
		rs.fail(c, fmt.Errorf("%w: input is driven locally", entity.ErrInvalidOperation))
		return
	}
	var in player.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		rs.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	rs.input.Set(in)
	ok(c, http.StatusAccepted, "Ввод принят", nil)
}

func (rs *RestServer) handleAction(c *gin.Context) {
	action := c.Param("action")
	var data interface{}

	err := rs.do(c, func(s *sim.Simulation) error {
		switch action {
		case "fire":
			res, err := s.Fire()
			if err != nil && !res.ReloadStarted {
				return err
			}
			shot := ShotResponse{
				Fired:         res.Fired,
				ReloadStarted: res.ReloadStarted,
				Hit:           res.Hit,
				Damage:        res.Damage,
				Killed:        res.Killed,
			}
			if res.Hit {
				shot.Target = res.Target.Kind.String()
				shot.TargetID = uint64(res.Target.ID)
			}
			data = shot
			return nil
		case "reload":
			return s.Reload()
		case "interact":
			done, err := s.Interact()
			data = gin.H{"action": done}
			return err
		case "reset":
			s.Reset()
			return nil
		}
		return fmt.Errorf("%w: unknown action %q", errBadRequest, action)
	})
	if err != nil {
		rs.fail(c, err)
		return
	}
	ok(c, http.StatusOK, action, data)
}

// slotAction общий обработчик действий со слотом инвентаря или оружия
func (rs *RestServer) slotAction(c *gin.Context, message string, fn func(s *sim.Simulation, index int) error) {
	index, err := indexParam(c)
	if err != nil {
		rs.fail(c, err)
		return
	}
	if err := rs.do(c, func(s *sim.Simulation) error { return fn(s, index) }); err != nil {
		rs.fail(c, err)
		return
	}
	ok(c, http.StatusOK, message, nil)
}

func (rs *RestServer) handleUseItem(c *gin.Context) {
	rs.slotAction(c, "Предмет использован", (*sim.Simulation).UseItem)
}

func (rs *RestServer) handleDropItem(c *gin.Context) {
	rs.slotAction(c, "Предмет выброшен", (*sim.Simulation).DropItem)
}

func (rs *RestServer) handleEquipWeapon(c *gin.Context) {
	rs.slotAction(c, "Оружие экипировано", (*sim.Simulation).EquipWeapon)
}

func (rs *RestServer) handleDropWeapon(c *gin.Context) {
	rs.slotAction(c, "Оружие выброшено", (*sim.Simulation).DropWeapon)
}

func (rs *RestServer) handleAddModification(c *gin.Context) {
	var req ModRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		rs.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if err := rs.do(c, func(s *sim.Simulation) error { return s.AddModification(req.Name) }); err != nil {
		rs.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Модификация установлена", nil)
}

func (rs *RestServer) handleUpgradeSkill(c *gin.Context) {
	key := c.Param("key")
	var skill progression.Skill
	err := rs.do(c, func(s *sim.Simulation) error {
		if err := s.UpgradeSkill(key); err != nil {
			return err
		}
		skill, _ = s.Progression().Skill(key)
		return nil
	})
	if err != nil {
		rs.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Навык улучшен", skill)
}

func (rs *RestServer) slot(c *gin.Context) string {
	var req SlotRequest
	_ = c.ShouldBindJSON(&req)
	if req.Slot == "" {
		return rs.saveSlot
	}
	return req.Slot
}

func (rs *RestServer) handleListSaves(c *gin.Context) {
	if rs.repo == nil {
		rs.fail(c, fmt.Errorf("%w: storage is disabled", entity.ErrInvalidOperation))
		return
	}
	slots, err := rs.repo.List(c.Request.Context())
	if err != nil {
		rs.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Сохранения", slots)
}

func (rs *RestServer) handleSave(c *gin.Context) {
	if rs.repo == nil {
		rs.fail(c, fmt.Errorf("%w: storage is disabled", entity.ErrInvalidOperation))
		return
	}
	rec := storage.Record{Slot: rs.slot(c)}
	if err := rs.do(c, func(s *sim.Simulation) error {
		rec.Tick = s.Ticks()
		rec.TimeSurvived = s.TimeSurvived()
		rec.Progression = s.Progression().Save()
		return nil
	}); err != nil {
		rs.fail(c, err)
		return
	}
	if err := rs.repo.Save(c.Request.Context(), rec); err != nil {
		rs.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	rs.logger.Info("💾 Прогресс сохранён в слот %s", rec.Slot)
	ok(c, http.StatusOK, "Прогресс сохранён", gin.H{"slot": rec.Slot})
}

func (rs *RestServer) handleLoad(c *gin.Context) {
	if rs.repo == nil {
		rs.fail(c, fmt.Errorf("%w: storage is disabled", entity.ErrInvalidOperation))
		return
	}
	slot := rs.slot(c)
	rec, found, err := rs.repo.Load(c.Request.Context(), slot)
	if err != nil {
		rs.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if !found {
		rs.fail(c, fmt.Errorf("%w: save slot %q", entity.ErrNotFound, slot))
		return
	}
	if err := rs.do(c, func(s *sim.Simulation) error {
		return s.Progression().Load(rec.Progression)
	}); err != nil {
		rs.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Прогресс загружен", gin.H{"slot": slot, "level": rec.Progression.Level})
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}
