// Package vehicle моделирует машины: управление, расход топлива,
// посадку и высадку, повреждения и ремонт.
package vehicle

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/annel0/deadcity/internal/config"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/physics"
	"github.com/annel0/deadcity/internal/vec"
)

const (
	friction         = 0.95
	brakingForce     = 0.8
	maxSteeringAngle = math.Pi / 4
	controlRamp      = 2.0
	pedalDecay       = 0.95
	steeringDecay    = 0.9
	fuelPerThrottle  = 0.01
	minTurnSpeed     = 0.1
)

// Controls состояние клавиш водителя за тик
type Controls struct {
	Forward bool
	Back    bool
	Left    bool
	Right   bool
}

// Seat место, занятое при посадке
type Seat int

const (
	SeatNone Seat = iota
	SeatDriver
	SeatPassenger
)

// Vehicle машина. Владеет своим телом; водитель и пассажиры хранятся как ID.
type Vehicle struct {
	id   entity.ID
	spec config.VehicleType
	body *physics.Body

	health      float64
	fuel        float64
	throttle    float64
	brake       float64
	steering    float64
	yaw         float64
	running     bool
	needsRepair bool
	destroyed   bool

	driver     entity.ID
	passengers []entity.ID

	// OnDestroyed вызывается один раз при уничтожении со списком высаженных
	OnDestroyed func(v *Vehicle, ejected []entity.ID)

	logger *logging.Logger
}

// New создаёт машину с половиной бака. Нужен ли ремонт, решает rng
// (в 70% случаев машина сломана).
func New(id entity.ID, spec config.VehicleType, feet vec.Vec3, yaw float64, rng *rand.Rand) *Vehicle {
	size := spec.Size
	if size == vec.Zero {
		size = vec.New(2, 1.5, 4.5)
	}
	mass := spec.Mass
	if mass <= 0 {
		mass = 1500
	}

	body := physics.NewBody(mass, physics.NewBox(size), vec.Zero, physics.Tag{Kind: entity.KindVehicle, ID: id})
	body.PlaceFeet(feet)
	body.Rotation = vec.New(0, yaw, 0)

	return &Vehicle{
		id:          id,
		spec:        spec,
		body:        body,
		health:      spec.Health,
		fuel:        spec.FuelCapacity * 0.5,
		yaw:         yaw,
		needsRepair: rng.Float64() > 0.3,
		logger:      logging.GetComponentLogger("vehicle"),
	}
}

func (v *Vehicle) ID() entity.ID             { return v.id }
func (v *Vehicle) Kind() entity.Kind         { return entity.KindVehicle }
func (v *Vehicle) Position() vec.Vec3        { return v.body.Feet() }
func (v *Vehicle) Rotation() entity.Rotation { return entity.Rotation{Yaw: v.yaw} }
func (v *Vehicle) Body() *physics.Body       { return v.body }
func (v *Vehicle) Spec() config.VehicleType  { return v.spec }
func (v *Vehicle) Name() string              { return v.spec.Name }
func (v *Vehicle) Health() float64           { return v.health }
func (v *Vehicle) MaxHealth() float64        { return v.spec.Health }
func (v *Vehicle) IsDead() bool              { return v.destroyed }
func (v *Vehicle) Destroyed() bool           { return v.destroyed }
func (v *Vehicle) Fuel() float64             { return v.fuel }
func (v *Vehicle) MaxFuel() float64          { return v.spec.FuelCapacity }
func (v *Vehicle) Running() bool             { return v.running }
func (v *Vehicle) NeedsRepair() bool         { return v.needsRepair }
func (v *Vehicle) Driver() entity.ID         { return v.driver }
func (v *Vehicle) Occupied() bool            { return v.driver != entity.None }
func (v *Vehicle) Inert() bool               { return false }
func (v *Vehicle) Speed() float64            { return v.body.Velocity.WithY(0).Length() }

// Pedals текущие значения педалей и руля
func (v *Vehicle) Pedals() (throttle, brake, steering float64) {
	return v.throttle, v.brake, v.steering
}

// Passengers копия списка пассажиров
func (v *Vehicle) Passengers() []entity.ID {
	out := make([]entity.ID, len(v.passengers))
	copy(out, v.passengers)
	return out
}

// Occupants водитель и пассажиры
func (v *Vehicle) Occupants() []entity.ID {
	var out []entity.ID
	if v.driver != entity.None {
		out = append(out, v.driver)
	}
	return append(out, v.passengers...)
}

// Contains находится ли сущность в машине
func (v *Vehicle) Contains(id entity.ID) bool {
	if v.driver == id {
		return true
	}
	for _, p := range v.passengers {
		if p == id {
			return true
		}
	}
	return false
}

// Update шаг управления для машины с водителем и заведённым мотором.
// Стоящая машина не катится.
func (v *Vehicle) Update(dt float64, c Controls) {
	if !v.Occupied() || !v.running {
		v.body.Velocity = vec.Zero.WithY(v.body.Velocity.Y)
		return
	}

	v.updateControls(dt, c)
	v.updatePhysics(dt)
	v.consumeFuel(dt)
}

func (v *Vehicle) updateControls(dt float64, c Controls) {
	switch {
	case c.Forward:
		v.throttle = math.Min(1, v.throttle+dt*controlRamp)
		v.brake = 0
	case c.Back:
		v.brake = math.Min(1, v.brake+dt*controlRamp)
		v.throttle = 0
	default:
		v.throttle *= pedalDecay
		v.brake *= pedalDecay
	}

	switch {
	case c.Left:
		v.steering = math.Max(-1, v.steering-dt*controlRamp)
	case c.Right:
		v.steering = math.Min(1, v.steering+dt*controlRamp)
	default:
		v.steering *= steeringDecay
	}
}

// updatePhysics задаёт горизонтальную скорость тела; интегрирует её движок
func (v *Vehicle) updatePhysics(dt float64) {
	dir := vec.New(0, 0, 1).RotateY(v.yaw)
	vel := v.body.Velocity.WithY(0)

	if v.throttle > 0 {
		vel = vel.Add(dir.Mul(v.throttle * v.spec.Acceleration * dt))
	}
	if v.brake > 0 {
		vel = vel.Add(dir.Mul(-sign(vel.Dot(dir)) * v.brake * brakingForce * dt))
	}

	vel = vel.Mul(friction)
	speed := vel.Length()
	if speed > v.spec.MaxSpeed {
		vel = vel.Normalized().Mul(v.spec.MaxSpeed)
	}

	if speed > minTurnSpeed {
		steer := v.steering * maxSteeringAngle * v.spec.Handling
		v.yaw += steer * dt * (speed / v.spec.MaxSpeed)
		v.body.Rotation = vec.New(0, v.yaw, 0)
	}

	v.body.Velocity = vel.WithY(v.body.Velocity.Y)
}

func (v *Vehicle) consumeFuel(dt float64) {
	v.fuel -= v.throttle * fuelPerThrottle * dt
	if v.fuel <= 0 {
		v.fuel = 0
		v.running = false
		v.logger.Info("⛽ %s #%d: закончилось топливо", v.spec.Name, v.id)
	}
}

// Enter сажает сущность: первым за руль (с попыткой завести мотор),
// далее пассажиром, пока есть места.
func (v *Vehicle) Enter(id entity.ID) (Seat, error) {
	if v.destroyed {
		return SeatNone, fmt.Errorf("%w: %s is destroyed", entity.ErrInvalidOperation, v.spec.Name)
	}
	if v.Contains(id) {
		return SeatNone, fmt.Errorf("%w: already inside", entity.ErrInvalidOperation)
	}

	if !v.Occupied() {
		v.driver = id
		if err := v.StartEngine(); err != nil {
			v.logger.Debug("🚗 %s: мотор не завёлся: %v", v.spec.Name, err)
		}
		return SeatDriver, nil
	}
	if len(v.passengers) < v.spec.Seats-1 {
		v.passengers = append(v.passengers, id)
		return SeatPassenger, nil
	}
	return SeatNone, fmt.Errorf("%w: %s is full", entity.ErrInvalidOperation, v.spec.Name)
}

// Exit высаживает сущность. Место водителя занимает первый пассажир.
func (v *Vehicle) Exit(id entity.ID) error {
	if v.driver == id {
		v.driver = entity.None
		if len(v.passengers) > 0 {
			v.driver = v.passengers[0]
			v.passengers = v.passengers[1:]
		}
		return nil
	}
	for i, p := range v.passengers {
		if p == id {
			v.passengers = append(v.passengers[:i], v.passengers[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: entity %d is not inside", entity.ErrNotFound, id)
}

// StartEngine заводит мотор, если машина исправна и есть топливо
func (v *Vehicle) StartEngine() error {
	if v.destroyed {
		return fmt.Errorf("%w: destroyed", entity.ErrInvalidOperation)
	}
	if v.needsRepair {
		return fmt.Errorf("%w: needs repair", entity.ErrInvalidOperation)
	}
	if v.fuel <= 0 {
		return fmt.Errorf("%w: out of fuel", entity.ErrResourceExhausted)
	}
	v.running = true
	return nil
}

// StopEngine глушит мотор
func (v *Vehicle) StopEngine() {
	v.running = false
}

// Repair чинит машину и восстанавливает здоровье. Уничтоженную машину
// починить нельзя. Повторный ремонт исправной машины ничего не меняет.
func (v *Vehicle) Repair() error {
	if v.destroyed {
		return fmt.Errorf("%w: %s is destroyed", entity.ErrInvalidOperation, v.spec.Name)
	}
	v.needsRepair = false
	v.health = v.spec.Health
	v.logger.Debug("🔧 %s #%d отремонтирован", v.spec.Name, v.id)
	return nil
}

// Refuel заправляет не выше объёма бака и возвращает залитое количество
func (v *Vehicle) Refuel(amount float64) float64 {
	prev := v.fuel
	v.fuel = math.Min(v.spec.FuelCapacity, v.fuel+amount)
	return v.fuel - prev
}

// TakeDamage уменьшает здоровье; на нуле машина уничтожается
func (v *Vehicle) TakeDamage(amount float64) {
	if v.destroyed || amount <= 0 {
		return
	}
	v.health -= amount
	if v.health <= 0 {
		v.destroy()
	}
}

// destroy высаживает всех, глушит мотор и навсегда выводит машину из строя
func (v *Vehicle) destroy() {
	ejected := v.Occupants()
	v.driver = entity.None
	v.passengers = nil
	v.running = false
	v.throttle, v.brake, v.steering = 0, 0, 0
	v.health = 0
	v.destroyed = true
	v.body.Velocity = vec.Zero.WithY(v.body.Velocity.Y)

	v.logger.Info("💥 %s #%d уничтожен, высажено %d", v.spec.Name, v.id, len(ejected))
	if v.OnDestroyed != nil {
		v.OnDestroyed(v, ejected)
	}
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
