// Package combat отвечает за оружие: состояние магазина, перезарядку по
// дедлайну, модификации и разрешение выстрела лучом.
package combat

import (
	"fmt"
	"math"

	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/vec"
)

// Stats итоговые характеристики оружия с учётом модификаций
type Stats struct {
	Damage       float64 `json:"damage"`
	FireRate     float64 `json:"fire_rate"`
	ReloadTime   float64 `json:"reload_time"`
	MagazineSize int     `json:"magazine_size"`
	Range        float64 `json:"range"`
	Recoil       float64 `json:"recoil"`
	Accuracy     float64 `json:"accuracy"`
	Noise        float64 `json:"noise"`
}

// AmmoState состояние боезапаса для HUD
type AmmoState struct {
	Current   int  `json:"current" msgpack:"current"`
	Magazine  int  `json:"magazine" msgpack:"magazine"`
	Total     int  `json:"total" msgpack:"total"`
	Reloading bool `json:"reloading" msgpack:"reloading"`
}

// Weapon оружие. Все времена в секундах игрового времени.
type Weapon struct {
	id    entity.ID
	base  config.WeaponType
	mods  map[config.ModSlot]config.Modification
	stats Stats

	currentAmmo int
	totalAmmo   int

	reloading      bool
	reloadDeadline float64
	lastFire       float64
	fired          bool

	owner    entity.ID
	position vec.Vec3
}

// NewWeapon создаёт оружие с полным магазином и пустым запасом
func NewWeapon(id entity.ID, base config.WeaponType, position vec.Vec3) *Weapon {
	w := &Weapon{
		id:       id,
		base:     base,
		mods:     make(map[config.ModSlot]config.Modification),
		position: position,
	}
	w.ApplyModificationEffects()
	w.currentAmmo = w.stats.MagazineSize
	return w
}

func (w *Weapon) ID() entity.ID             { return w.id }
func (w *Weapon) Kind() entity.Kind         { return entity.KindWeapon }
func (w *Weapon) Position() vec.Vec3        { return w.position }
func (w *Weapon) Rotation() entity.Rotation { return entity.Rotation{} }
func (w *Weapon) Name() string              { return w.base.Name }
func (w *Weapon) Type() string              { return w.base.Kind }
func (w *Weapon) Base() config.WeaponType   { return w.base }
func (w *Weapon) Stats() Stats              { return w.stats }
func (w *Weapon) CurrentAmmo() int          { return w.currentAmmo }
func (w *Weapon) TotalAmmo() int            { return w.totalAmmo }
func (w *Weapon) MagazineSize() int         { return w.stats.MagazineSize }
func (w *Weapon) IsReloading() bool         { return w.reloading }
func (w *Weapon) ReloadDeadline() float64   { return w.reloadDeadline }
func (w *Weapon) LastFireTime() float64     { return w.lastFire }
func (w *Weapon) Owner() entity.ID          { return w.owner }

// Ammo снимок боезапаса
func (w *Weapon) Ammo() AmmoState {
	return AmmoState{
		Current:   w.currentAmmo,
		Magazine:  w.stats.MagazineSize,
		Total:     w.totalAmmo,
		Reloading: w.reloading,
	}
}

// PickUp закрепляет оружие за владельцем
func (w *Weapon) PickUp(owner entity.ID) error {
	if w.owner != entity.None {
		return fmt.Errorf("%w: %s already owned", entity.ErrInvalidOperation, w.base.Name)
	}
	w.owner = owner
	return nil
}

// Drop кладёт оружие в мир
func (w *Weapon) Drop(position vec.Vec3) {
	w.owner = entity.None
	w.position = position
}

// SetAmmo задаёт боезапас напрямую (стартовое снаряжение, загрузка)
func (w *Weapon) SetAmmo(current, total int) {
	w.currentAmmo = max(0, min(current, w.stats.MagazineSize))
	w.totalAmmo = max(0, total)
}

// AddAmmo добавляет патроны в запас
func (w *Weapon) AddAmmo(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: ammo amount must be positive", entity.ErrInvalidOperation)
	}
	w.totalAmmo += amount
	return nil
}

// Причины отказа в выстреле
var (
	ErrReloading = fmt.Errorf("%w: weapon is reloading", entity.ErrInvalidOperation)
	ErrNoAmmo    = fmt.Errorf("%w: magazine is empty", entity.ErrInvalidOperation)
	ErrCooldown  = fmt.Errorf("%w: fire rate cooldown", entity.ErrInvalidOperation)
)

// CanFire проверяет условия выстрела в момент now
func (w *Weapon) CanFire(now float64) error {
	if w.reloading {
		return ErrReloading
	}
	if w.currentAmmo <= 0 {
		return ErrNoAmmo
	}
	if w.fired && now-w.lastFire < w.stats.FireRate {
		return ErrCooldown
	}
	return nil
}

// consumeShot фиксирует выстрел
func (w *Weapon) consumeShot(now float64) {
	w.lastFire = now
	w.fired = true
	w.currentAmmo--
}

// Reload начинает перезарядку, завершающуюся в now + ReloadTime.
// Начатую перезарядку нельзя прервать.
func (w *Weapon) Reload(now float64) error {
	if w.reloading {
		return fmt.Errorf("%w: already reloading", entity.ErrInvalidOperation)
	}
	if w.currentAmmo >= w.stats.MagazineSize {
		return fmt.Errorf("%w: magazine is full", entity.ErrInvalidOperation)
	}
	if w.totalAmmo <= 0 {
		return fmt.Errorf("%w: no reserve ammo", entity.ErrResourceExhausted)
	}
	w.reloading = true
	w.reloadDeadline = now + w.stats.ReloadTime
	return nil
}

// Update завершает перезарядку, если дедлайн наступил. Возвращает true
// в тик завершения.
func (w *Weapon) Update(now float64) bool {
	if !w.reloading || now < w.reloadDeadline {
		return false
	}
	n := min(w.stats.MagazineSize-w.currentAmmo, w.totalAmmo)
	if n > 0 {
		w.currentAmmo += n
		w.totalAmmo -= n
	}
	w.reloading = false
	return true
}

// Modification модификация в слоте
func (w *Weapon) Modification(slot config.ModSlot) (config.Modification, bool) {
	m, ok := w.mods[slot]
	return m, ok
}

// AddModification ставит модификацию в свободный слот
func (w *Weapon) AddModification(mod config.Modification) error {
	if _, busy := w.mods[mod.Slot]; busy {
		return fmt.Errorf("%w: slot %s is occupied", entity.ErrInvalidOperation, mod.Slot)
	}
	w.mods[mod.Slot] = mod
	w.ApplyModificationEffects()
	return nil
}

// RemoveModification снимает модификацию и возвращает её
func (w *Weapon) RemoveModification(slot config.ModSlot) (config.Modification, bool) {
	mod, ok := w.mods[slot]
	if !ok {
		return config.Modification{}, false
	}
	delete(w.mods, slot)
	w.ApplyModificationEffects()
	return mod, true
}

// ApplyModificationEffects пересчитывает характеристики от базовых.
// Повторный вызов без изменения слотов даёт те же значения.
func (w *Weapon) ApplyModificationEffects() {
	s := Stats{
		Damage:       w.base.Damage,
		FireRate:     w.base.FireRate,
		ReloadTime:   w.base.ReloadTime,
		MagazineSize: w.base.MagazineSize,
		Range:        w.base.Range,
		Recoil:       w.base.Recoil,
		Accuracy:     1,
		Noise:        1,
	}
	magazine := float64(w.base.MagazineSize)

	for _, slot := range config.Slots {
		mod, ok := w.mods[slot]
		if !ok {
			continue
		}
		switch slot {
		case config.SlotScope:
			s.Range *= config.Factor(mod.ZoomFactor)
			s.Accuracy *= config.Factor(mod.Accuracy)
		case config.SlotBarrel:
			s.Recoil /= config.Factor(mod.RecoilReduction)
			s.Noise *= config.Factor(mod.NoiseFactor)
		case config.SlotGrip:
			s.Recoil /= config.Factor(mod.StabilityFactor)
		case config.SlotMagazine:
			magazine *= config.Factor(mod.CapacityMultiplier)
			s.ReloadTime *= config.Factor(mod.ReloadTimeMultiplier)
		}
	}
	s.MagazineSize = int(math.Floor(magazine))
	w.stats = s

	// патроны сверх нового магазина возвращаются в запас
	if w.currentAmmo > s.MagazineSize {
		w.totalAmmo += w.currentAmmo - s.MagazineSize
		w.currentAmmo = s.MagazineSize
	}
}
