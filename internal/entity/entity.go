// Package entity содержит общие определения сущностей симуляции:
// идентификаторы, виды, интерфейсы возможностей и таблицу сущностей.
package entity

import (
	"github.com/annel0/deadcity/internal/vec"
)

// ID уникальный идентификатор сущности. Идентификаторы не переиспользуются,
// поэтому устаревший ID после удаления сущности просто не находится в таблице.
type ID uint64

// None пустой идентификатор
const None ID = 0

// Kind вид сущности или статического объекта
type Kind uint8

const (
	KindNone Kind = iota
	KindPlayer
	KindZombie
	KindVehicle
	KindItem
	KindWeapon
	KindBuilding
	KindTree
	KindProjectile
)

// String возвращает строковое представление вида
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindZombie:
		return "zombie"
	case KindVehicle:
		return "vehicle"
	case KindItem:
		return "item"
	case KindWeapon:
		return "weapon"
	case KindBuilding:
		return "building"
	case KindTree:
		return "tree"
	case KindProjectile:
		return "projectile"
	default:
		return "none"
	}
}

// IsScenery true для неподвижной застройки мира
func (k Kind) IsScenery() bool {
	return k == KindBuilding || k == KindTree
}

// Rotation ориентация сущности (углы Эйлера, порядок YXZ)
type Rotation struct {
	Yaw   float64 `json:"yaw" msgpack:"yaw"`
	Pitch float64 `json:"pitch" msgpack:"pitch"`
}

// Positioned сущность с положением в мире
type Positioned interface {
	ID() ID
	Kind() Kind
	Position() vec.Vec3
	Rotation() Rotation
}

// Damageable сущность, которая может получать урон
type Damageable interface {
	Positioned
	Health() float64
	MaxHealth() float64
	TakeDamage(amount float64)
	IsDead() bool
}

// Collidable сущность, участвующая в разрешении столкновений.
// Inert возвращает true, когда тело больше не должно сталкиваться (труп, пассажир).
type Collidable interface {
	Positioned
	Inert() bool
}

// Updatable сущность, обновляемая каждый тик
type Updatable interface {
	Positioned
	Update(dt float64)
}
