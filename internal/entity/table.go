package entity

import (
	"sort"
	"sync"

	"github.com/annel0/deadcity/internal/vec"
)

// Table хранит все живые сущности симуляции по ID.
// Ссылки между сущностями (цель зомби, владелец предмета) хранятся как ID,
// поэтому удаление сущности не оставляет висячих указателей.
type Table struct {
	entities map[ID]Positioned
	nextID   ID
	mu       sync.RWMutex
}

// NewTable создаёт пустую таблицу сущностей
func NewTable() *Table {
	return &Table{
		entities: make(map[ID]Positioned),
		nextID:   1,
	}
}

// NextID выдаёт новый уникальный идентификатор
func (t *Table) NextID() ID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	return id
}

// Add регистрирует сущность
func (t *Table) Add(e Positioned) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entities[e.ID()] = e
}

// Remove удаляет сущность. Возвращает false, если её не было.
func (t *Table) Remove(id ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.entities[id]; !ok {
		return false
	}
	delete(t.entities, id)
	return true
}

// Get возвращает сущность по ID
func (t *Table) Get(id ID) (Positioned, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entities[id]
	return e, ok
}

// Damageable возвращает сущность по ID, если она может получать урон
func (t *Table) Damageable(id ID) (Damageable, bool) {
	e, ok := t.Get(id)
	if !ok {
		return nil, false
	}
	d, ok := e.(Damageable)
	return d, ok
}

// Len количество сущностей
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entities)
}

// All возвращает все сущности, упорядоченные по ID
func (t *Table) All() []Positioned {
	t.mu.RLock()
	result := make([]Positioned, 0, len(t.entities))
	for _, e := range t.entities {
		result = append(result, e)
	}
	t.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}

// ByKind возвращает сущности указанного вида, упорядоченные по ID
func (t *Table) ByKind(kind Kind) []Positioned {
	var result []Positioned
	for _, e := range t.All() {
		if e.Kind() == kind {
			result = append(result, e)
		}
	}
	return result
}

// InRange возвращает сущности в радиусе от точки
func (t *Table) InRange(center vec.Vec3, radius float64) []Positioned {
	var result []Positioned
	for _, e := range t.All() {
		if center.DistanceTo(e.Position()) <= radius {
			result = append(result, e)
		}
	}
	return result
}

// Clear удаляет все сущности. Счётчик ID не сбрасывается.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entities = make(map[ID]Positioned)
}

// Stats возвращает количество сущностей по видам
func (t *Table) Stats() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	stats := make(map[string]int)
	for _, e := range t.entities {
		stats[e.Kind().String()]++
	}
	return stats
}
