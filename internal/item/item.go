// Package item описывает предметы, лежащие в мире или в инвентаре игрока,
// таблицу лута и применение предметов.
package item

import (
	"fmt"
	"math/rand"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/vec"
)

// Type вид предмета
type Type string

const (
	TypeAmmo   Type = "ammo"
	TypeMedkit Type = "medkit"
	TypeFood   Type = "food"
	TypeDrink  Type = "drink"
	TypeFuel   Type = "fuel"
	TypeRepair Type = "repair"
)

// Consumable расходуется ли предмет при использовании
func (t Type) Consumable() bool {
	switch t {
	case TypeAmmo, TypeMedkit, TypeFood, TypeDrink, TypeFuel, TypeRepair:
		return true
	}
	return false
}

// Template описание предмета в каталоге
type Template struct {
	Type        Type    `json:"type" msgpack:"type"`
	Name        string  `json:"name" msgpack:"name"`
	Description string  `json:"description,omitempty" msgpack:"description,omitempty"`
	Value       float64 `json:"value" msgpack:"value"`
	Weight      float64 `json:"weight" msgpack:"weight"`
	Stackable   bool    `json:"stackable" msgpack:"stackable"`
	MaxStack    int     `json:"max_stack" msgpack:"max_stack"`
	Quantity    int     `json:"quantity" msgpack:"quantity"`
}

// LootTable предметы, которые могут выпасть из зомби
var LootTable = []Template{
	{Type: TypeAmmo, Name: "Munição", Description: "Munição para armas", Value: 10, Weight: 0.5, Stackable: true, MaxStack: 100, Quantity: 10},
	{Type: TypeMedkit, Name: "Bandagem", Description: "Recupera um pouco de vida", Value: 20, Weight: 0.5, Stackable: true, MaxStack: 5, Quantity: 1},
	{Type: TypeFood, Name: "Comida Enlatada", Description: "Reduz a fome", Value: 15, Weight: 1, Stackable: true, MaxStack: 5, Quantity: 1},
	{Type: TypeDrink, Name: "Água", Description: "Reduz a sede", Value: 10, Weight: 1, Stackable: true, MaxStack: 5, Quantity: 1},
}

// Supplies предметы обслуживания машин
var Supplies = []Template{
	{Type: TypeFuel, Name: "Galão de Combustível", Description: "Reabastece um veículo", Value: 20, Weight: 2, Stackable: true, MaxStack: 3, Quantity: 1},
	{Type: TypeRepair, Name: "Kit de Reparo", Description: "Conserta um veículo", Value: 1, Weight: 2, Stackable: true, MaxStack: 3, Quantity: 1},
}

// RandomLoot выбирает случайный шаблон из таблицы лута
func RandomLoot(rng *rand.Rand) Template {
	return LootTable[rng.Intn(len(LootTable))]
}

// FindTemplate ищет шаблон по имени в таблице лута и припасах
func FindTemplate(name string) (Template, bool) {
	for _, t := range LootTable {
		if t.Name == name {
			return t, true
		}
	}
	for _, t := range Supplies {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// Item экземпляр предмета. Владелец хранится как ID.
type Item struct {
	Template
	id       entity.ID
	position vec.Vec3
	owner    entity.ID
	pickedUp bool
}

// New создаёт предмет, лежащий в мире
func New(id entity.ID, tpl Template, position vec.Vec3) *Item {
	it := &Item{Template: tpl, id: id, position: position}
	if it.Quantity <= 0 {
		it.Quantity = 1
	}
	if it.MaxStack <= 0 {
		it.MaxStack = 1
	}
	return it
}

func (it *Item) ID() entity.ID              { return it.id }
func (it *Item) Kind() entity.Kind          { return entity.KindItem }
func (it *Item) Position() vec.Vec3         { return it.position }
func (it *Item) Rotation() entity.Rotation  { return entity.Rotation{} }
func (it *Item) Owner() entity.ID           { return it.owner }
func (it *Item) PickedUp() bool             { return it.pickedUp }
func (it *Item) TotalWeight() float64       { return it.Weight * float64(it.Quantity) }
func (it *Item) SetPosition(p vec.Vec3)     { it.position = p }
func (it *Item) sameStack(other *Item) bool { return it.Name == other.Name && it.Type == other.Type }

// VehicleService машина, которую можно заправить или починить предметом
type VehicleService interface {
	Refuel(amount float64) float64
	Repair() error
}

// User владелец, к которому применяется предмет
type User interface {
	Heal(amount float64)
	Eat(amount float64)
	Drink(amount float64)
	// ServiceVehicle текущая машина пользователя или ближайшая к нему
	ServiceVehicle() (VehicleService, bool)
	// AddAmmo добавляет патроны в запас экипированного оружия
	AddAmmo(amount int) error
}

// Use применяет одну единицу предмета. Количество уменьшается только при успехе.
func (it *Item) Use(u User) error {
	switch it.Type {
	case TypeMedkit:
		u.Heal(it.Value)
	case TypeFood:
		u.Eat(it.Value)
	case TypeDrink:
		u.Drink(it.Value)
	case TypeFuel:
		v, ok := u.ServiceVehicle()
		if !ok {
			return fmt.Errorf("%w: no vehicle nearby to refuel", entity.ErrInvalidOperation)
		}
		v.Refuel(it.Value)
	case TypeRepair:
		v, ok := u.ServiceVehicle()
		if !ok {
			return fmt.Errorf("%w: no vehicle nearby to repair", entity.ErrInvalidOperation)
		}
		if err := v.Repair(); err != nil {
			return err
		}
	case TypeAmmo:
		if err := u.AddAmmo(int(it.Value)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %s cannot be used directly", entity.ErrInvalidOperation, it.Name)
	}

	if it.Type.Consumable() {
		it.Quantity--
	}
	logging.Debug("🎒 Использован предмет %s (осталось %d)", it.Name, it.Quantity)
	return nil
}

// DropPosition точка перед владельцем, куда кладётся выброшенный предмет
func DropPosition(ownerPos vec.Vec3, yaw float64) vec.Vec3 {
	return ownerPos.Add(vec.Direction(yaw, 0).Mul(1.5))
}
