package item

import (
	"fmt"

	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/vec"
)

// Inventory слоты и вес переносимых предметов.
// Вес учитывает и количество, добавленное в существующие стопки.
type Inventory struct {
	owner     entity.ID
	maxSlots  int
	maxWeight float64
	slots     []*Item
	weight    float64
}

// NewInventory создаёт пустой инвентарь
func NewInventory(owner entity.ID, maxSlots int, maxWeight float64) *Inventory {
	if maxSlots <= 0 {
		maxSlots = 20
	}
	if maxWeight <= 0 {
		maxWeight = 50
	}
	return &Inventory{
		owner:     owner,
		maxSlots:  maxSlots,
		maxWeight: maxWeight,
		slots:     make([]*Item, maxSlots),
	}
}

func (inv *Inventory) Owner() entity.ID   { return inv.owner }
func (inv *Inventory) Weight() float64    { return inv.weight }
func (inv *Inventory) MaxWeight() float64 { return inv.maxWeight }
func (inv *Inventory) MaxSlots() int      { return inv.maxSlots }

// Slots копия слотов (nil для пустого слота)
func (inv *Inventory) Slots() []*Item {
	out := make([]*Item, len(inv.slots))
	copy(out, inv.slots)
	return out
}

// Item предмет в слоте
func (inv *Inventory) Item(index int) (*Item, bool) {
	if index < 0 || index >= len(inv.slots) || inv.slots[index] == nil {
		return nil, false
	}
	return inv.slots[index], true
}

func (inv *Inventory) freeSlot() int {
	for i, s := range inv.slots {
		if s == nil {
			return i
		}
	}
	return -1
}

// Add кладёт предмет: сначала доливает существующие стопки, остаток
// занимает свободный слот. При нехватке места или веса инвентарь не меняется.
func (inv *Inventory) Add(it *Item) error {
	if inv.weight+it.TotalWeight() > inv.maxWeight {
		logging.Debug("🎒 Инвентарь слишком тяжёлый для %s", it.Name)
		return fmt.Errorf("%w: inventory too heavy", entity.ErrResourceExhausted)
	}

	remaining := it.Quantity
	if it.Stackable {
		for _, s := range inv.slots {
			if s != nil && s.sameStack(it) && s.Quantity < s.MaxStack {
				remaining -= min(remaining, s.MaxStack-s.Quantity)
				if remaining == 0 {
					break
				}
			}
		}
	}

	free := -1
	if remaining > 0 {
		if free = inv.freeSlot(); free < 0 {
			logging.Debug("🎒 Инвентарь полон, %s не помещается", it.Name)
			return fmt.Errorf("%w: inventory full", entity.ErrResourceExhausted)
		}
	}

	inv.weight += it.TotalWeight()
	if it.Stackable {
		for _, s := range inv.slots {
			if it.Quantity == 0 {
				break
			}
			if s != nil && s.sameStack(it) && s.Quantity < s.MaxStack {
				n := min(it.Quantity, s.MaxStack-s.Quantity)
				s.Quantity += n
				it.Quantity -= n
			}
		}
	}
	if it.Quantity > 0 {
		inv.slots[free] = it
	}

	it.owner = inv.owner
	it.pickedUp = true
	return nil
}

// Remove убирает предмет из инвентаря
func (inv *Inventory) Remove(it *Item) bool {
	for i, s := range inv.slots {
		if s == it {
			inv.weight -= s.TotalWeight()
			inv.slots[i] = nil
			return true
		}
	}
	return false
}

// Use применяет предмет из слота. Опустевшая стопка освобождает слот.
func (inv *Inventory) Use(index int, u User) error {
	it, ok := inv.Item(index)
	if !ok {
		return fmt.Errorf("%w: slot %d is empty", entity.ErrNotFound, index)
	}

	before := it.Quantity
	if err := it.Use(u); err != nil {
		return err
	}
	inv.weight -= it.Weight * float64(before-it.Quantity)
	if it.Quantity <= 0 {
		inv.slots[index] = nil
	}
	return nil
}

// Drop выкладывает предмет из слота в мир в заданную точку
func (inv *Inventory) Drop(index int, position vec.Vec3) (*Item, error) {
	it, ok := inv.Item(index)
	if !ok {
		return nil, fmt.Errorf("%w: slot %d is empty", entity.ErrNotFound, index)
	}

	inv.weight -= it.TotalWeight()
	inv.slots[index] = nil
	it.pickedUp = false
	it.owner = entity.None
	it.position = position
	return it, nil
}

// Count суммарное количество предметов с данным именем и видом
func (inv *Inventory) Count(name string, t Type) int {
	count := 0
	for _, s := range inv.slots {
		if s != nil && s.Name == name && s.Type == t {
			count += s.Quantity
		}
	}
	return count
}

// Has есть ли как минимум quantity предметов
func (inv *Inventory) Has(name string, t Type, quantity int) bool {
	return inv.Count(name, t) >= quantity
}

// FirstByType первый слот с предметом данного вида
func (inv *Inventory) FirstByType(t Type) (*Item, int, bool) {
	for i, s := range inv.slots {
		if s != nil && s.Type == t {
			return s, i, true
		}
	}
	return nil, -1, false
}

// Clear очищает инвентарь
func (inv *Inventory) Clear() {
	for i := range inv.slots {
		inv.slots[i] = nil
	}
	inv.weight = 0
}
