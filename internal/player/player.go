// Package player содержит состояние игрока: движение от первого лица,
// выносливость, здоровье, оружие, инвентарь и посадку в машины.
package player

import (
	"fmt"
	"math"
	"sort"

	"github.com/annel0/deadcity/internal/combat"
	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/item"
	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/physics"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/annel0/deadcity/internal/vehicle"
)

const (
	// Mass масса тела игрока
	Mass = 80.0
	// Height рост игрока
	Height = 1.8
	// PitchLimit ограничение наклона взгляда
	PitchLimit = math.Pi / 3

	lookScale        = 0.002
	sprintDrainShare = 0.1
	exitClearance    = 0.5
)

// Input состояние управления за тик
type Input struct {
	Forward bool    `json:"forward"`
	Back    bool    `json:"back"`
	Left    bool    `json:"left"`
	Right   bool    `json:"right"`
	Sprint  bool    `json:"sprint"`
	Jump    bool    `json:"jump"`
	LookDX  float64 `json:"look_dx"`
	LookDY  float64 `json:"look_dy"`
}

// Player игрок
type Player struct {
	id   entity.ID
	cfg  config.PlayerConfig
	body *physics.Body
	rot  entity.Rotation

	health     float64
	maxHealth  float64
	stamina    float64
	maxStamina float64
	sprinting  bool
	dead       bool

	moveSpeed    float64
	sprintSpeed  float64
	jumpForce    float64
	staminaRegen float64

	vehicle   entity.ID
	weapons   []*combat.Weapon
	current   int
	inventory *item.Inventory

	// OnDeath сигнал окончания игры
	OnDeath func(p *Player)

	logger *logging.Logger
}

// New создаёт игрока стоящим в точке feet
func New(id entity.ID, cfg config.PlayerConfig, feet vec.Vec3) *Player {
	radius := cfg.Radius
	if radius <= 0 {
		radius = 0.5
	}
	body := physics.NewBody(Mass, physics.NewBox(vec.New(radius*2, Height, radius*2)), vec.Zero,
		physics.Tag{Kind: entity.KindPlayer, ID: id})
	body.PlaceFeet(feet)

	p := &Player{
		id:        id,
		cfg:       cfg,
		body:      body,
		current:   -1,
		inventory: item.NewInventory(id, cfg.InventorySlots, cfg.InventoryWeight),
		logger:    logging.GetComponentLogger("player"),
	}
	p.ApplyAttributes(cfg.Health, cfg.Stamina, 1, 1, 1)
	p.health = p.maxHealth
	p.stamina = p.maxStamina
	return p
}

func (p *Player) ID() entity.ID                 { return p.id }
func (p *Player) Kind() entity.Kind             { return entity.KindPlayer }
func (p *Player) Position() vec.Vec3            { return p.body.Feet() }
func (p *Player) Rotation() entity.Rotation     { return p.rot }
func (p *Player) Body() *physics.Body           { return p.body }
func (p *Player) Health() float64               { return p.health }
func (p *Player) MaxHealth() float64            { return p.maxHealth }
func (p *Player) Stamina() float64              { return p.stamina }
func (p *Player) MaxStamina() float64           { return p.maxStamina }
func (p *Player) IsDead() bool                  { return p.dead }
func (p *Player) Sprinting() bool               { return p.sprinting }
func (p *Player) Inventory() *item.Inventory    { return p.inventory }
func (p *Player) Vehicle() entity.ID            { return p.vehicle }
func (p *Player) InVehicle() bool               { return p.vehicle != entity.None }
func (p *Player) Inert() bool                   { return p.body.Inert }
func (p *Player) InteractionRange() float64     { return p.cfg.InteractionRange }
func (p *Player) SetRotation(r entity.Rotation) { p.rot = r; p.clampPitch() }

// EyePosition точка глаз (камера от первого лица)
func (p *Player) EyePosition() vec.Vec3 {
	return p.Position().Add(vec.New(0, p.cfg.CameraHeight, 0))
}

// ApplyAttributes применяет характеристики, зависящие от навыков
func (p *Player) ApplyAttributes(maxHealth, maxStamina, speedMul, regenMul, jumpMul float64) {
	p.maxHealth = maxHealth
	p.maxStamina = maxStamina
	p.moveSpeed = p.cfg.MoveSpeed * speedMul
	p.sprintSpeed = p.cfg.SprintSpeed * speedMul
	p.staminaRegen = p.cfg.StaminaRegen * regenMul
	p.jumpForce = p.cfg.JumpForce * jumpMul
	p.health = math.Min(p.health, p.maxHealth)
	p.stamina = math.Min(p.stamina, p.maxStamina)
}

// Move задаёт скорость тела по вводу. Интегрирует тело физический движок.
func (p *Player) Move(dt float64, in Input) {
	if p.dead || p.InVehicle() {
		return
	}

	dir := vec.Zero
	switch {
	case in.Forward:
		dir.Z = -1
	case in.Back:
		dir.Z = 1
	}
	switch {
	case in.Left:
		dir.X = -1
	case in.Right:
		dir.X = 1
	}
	if dir.Length() > 1 {
		dir = dir.Normalized()
	}
	dir = dir.RotateY(p.rot.Yaw)
	moving := dir.LengthSq() > 0

	p.sprinting = in.Sprint && p.stamina > 0
	speed := p.moveSpeed
	if p.sprinting {
		speed = p.sprintSpeed
	}

	switch {
	case p.sprinting && moving:
		p.stamina -= p.maxStamina * sprintDrainShare * dt
		if p.stamina < 0 {
			p.stamina = 0
			p.sprinting = false
		}
	case !p.sprinting:
		p.stamina = math.Min(p.maxStamina, p.stamina+p.staminaRegen*dt)
	}

	p.body.Velocity.X = dir.X * speed
	p.body.Velocity.Z = dir.Z * speed

	if in.Jump && p.body.Grounded {
		p.body.Velocity.Y = p.jumpForce
		p.body.Grounded = false
	}
}

// Look поворачивает взгляд по смещению указателя
func (p *Player) Look(dx, dy float64) {
	p.rot.Yaw -= dx * p.cfg.MouseSensitivity * lookScale
	p.rot.Pitch -= dy * p.cfg.MouseSensitivity * lookScale
	p.clampPitch()
}

// ApplyRecoil сдвигает взгляд после выстрела
func (p *Player) ApplyRecoil(pitchDelta, yawDelta float64) {
	p.rot.Pitch += pitchDelta
	p.rot.Yaw += yawDelta
	p.clampPitch()
}

func (p *Player) clampPitch() {
	p.rot.Pitch = vec.Clamp(p.rot.Pitch, -PitchLimit, PitchLimit)
}

// TakeDamage уменьшает здоровье; на нуле игрок погибает и подаётся сигнал конца игры
func (p *Player) TakeDamage(amount float64) {
	if p.dead || amount <= 0 {
		return
	}
	p.health -= amount
	if p.health <= 0 {
		p.health = 0
		p.dead = true
		p.body.Stop()
		p.logger.Info("💀 Игрок #%d погиб", p.id)
		if p.OnDeath != nil {
			p.OnDeath(p)
		}
	}
}

// Heal восстанавливает здоровье не выше максимума
func (p *Player) Heal(amount float64) {
	if p.dead {
		return
	}
	p.health = math.Min(p.maxHealth, p.health+amount)
}

// Eat голод не моделируется, еда только расходуется
func (p *Player) Eat(amount float64) {
	p.logger.Debug("🥫 Игрок #%d поел (+%.0f)", p.id, amount)
}

// Drink жажда не моделируется, вода только расходуется
func (p *Player) Drink(amount float64) {
	p.logger.Debug("💧 Игрок #%d попил (+%.0f)", p.id, amount)
}

// Reset восстанавливает игрока в точке возрождения
func (p *Player) Reset(feet vec.Vec3) {
	p.health = p.maxHealth
	p.stamina = p.maxStamina
	p.dead = false
	p.sprinting = false
	p.rot = entity.Rotation{}
	p.vehicle = entity.None
	p.body.Inert = false
	p.body.Stop()
	p.body.PlaceFeet(feet)
}

// EnterVehicle садится в машину; тело игрока перестаёт участвовать в физике
func (p *Player) EnterVehicle(v *vehicle.Vehicle) (vehicle.Seat, error) {
	if p.dead {
		return vehicle.SeatNone, fmt.Errorf("%w: player is dead", entity.ErrInvalidOperation)
	}
	if p.InVehicle() {
		return vehicle.SeatNone, fmt.Errorf("%w: already in a vehicle", entity.ErrInvalidOperation)
	}
	seat, err := v.Enter(p.id)
	if err != nil {
		return seat, err
	}
	p.vehicle = v.ID()
	p.body.Inert = true
	p.body.Stop()
	p.FollowVehicle(v)
	return seat, nil
}

// ExitVehicle выходит из машины
func (p *Player) ExitVehicle(v *vehicle.Vehicle) error {
	if p.vehicle != v.ID() {
		return fmt.Errorf("%w: not in vehicle %d", entity.ErrInvalidOperation, v.ID())
	}
	if err := v.Exit(p.id); err != nil {
		return err
	}
	p.Eject(v)
	return nil
}

// Eject ставит игрока рядом с машиной (выход или уничтожение машины)
func (p *Player) Eject(v *vehicle.Vehicle) {
	half := v.Spec().Size.X / 2
	side := vec.New(-1, 0, 0).RotateY(v.Rotation().Yaw)
	feet := v.Position().Add(side.Mul(half + p.body.Shape.HalfExtents.X + exitClearance))

	p.vehicle = entity.None
	p.body.Inert = false
	p.body.Stop()
	p.body.PlaceFeet(feet.WithY(v.Position().Y))
}

// FollowVehicle переносит тело игрока в машину
func (p *Player) FollowVehicle(v *vehicle.Vehicle) {
	p.body.PlaceFeet(v.Position())
	p.rot.Yaw = v.Rotation().Yaw
}

// AddWeapon подбирает оружие; первое подобранное сразу экипируется
func (p *Player) AddWeapon(w *combat.Weapon) error {
	if err := w.PickUp(p.id); err != nil {
		return err
	}
	p.weapons = append(p.weapons, w)
	if p.current < 0 {
		p.current = len(p.weapons) - 1
	}
	return nil
}

// Weapons копия списка оружия
func (p *Player) Weapons() []*combat.Weapon {
	out := make([]*combat.Weapon, len(p.weapons))
	copy(out, p.weapons)
	return out
}

// CurrentWeapon экипированное оружие
func (p *Player) CurrentWeapon() (*combat.Weapon, bool) {
	if p.current < 0 || p.current >= len(p.weapons) {
		return nil, false
	}
	return p.weapons[p.current], true
}

// Equip экипирует оружие по индексу
func (p *Player) Equip(index int) error {
	if index < 0 || index >= len(p.weapons) {
		return fmt.Errorf("%w: weapon slot %d", entity.ErrNotFound, index)
	}
	if index == p.current {
		return fmt.Errorf("%w: already equipped", entity.ErrInvalidOperation)
	}
	p.current = index
	return nil
}

// Unequip убирает оружие в руки
func (p *Player) Unequip() {
	p.current = -1
}

// DropWeapon выбрасывает оружие перед игроком
func (p *Player) DropWeapon(index int) (*combat.Weapon, error) {
	if index < 0 || index >= len(p.weapons) {
		return nil, fmt.Errorf("%w: weapon slot %d", entity.ErrNotFound, index)
	}
	w := p.weapons[index]
	p.weapons = append(p.weapons[:index], p.weapons[index+1:]...)
	switch {
	case p.current == index:
		p.current = -1
	case p.current > index:
		p.current--
	}
	w.Drop(item.DropPosition(p.Position(), p.rot.Yaw))
	return w, nil
}

// AddAmmo добавляет патроны в запас экипированного оружия
func (p *Player) AddAmmo(amount int) error {
	w, ok := p.CurrentWeapon()
	if !ok {
		return fmt.Errorf("%w: no weapon equipped", entity.ErrInvalidOperation)
	}
	return w.AddAmmo(amount)
}

// Interactable объект в радиусе взаимодействия
type Interactable struct {
	Target   entity.Positioned
	Distance float64
}

// Interactables объекты ближе радиуса взаимодействия, по возрастанию расстояния
func (p *Player) Interactables(candidates ...[]entity.Positioned) []Interactable {
	var out []Interactable
	origin := p.Position()
	for _, group := range candidates {
		for _, c := range group {
			d := origin.DistanceTo(c.Position())
			if d < p.cfg.InteractionRange {
				out = append(out, Interactable{Target: c, Distance: d})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}
