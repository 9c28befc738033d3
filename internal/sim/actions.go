package sim

import (
	"fmt"

	"github.com/annel0/deadcity/internal/combat"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/eventbus"
	"github.com/annel0/deadcity/internal/item"
	"github.com/annel0/deadcity/internal/physics"
	"github.com/annel0/deadcity/internal/player"
	"github.com/annel0/deadcity/internal/progression"
	"github.com/annel0/deadcity/internal/vec"
	"github.com/annel0/deadcity/internal/vehicle"
	"github.com/annel0/deadcity/internal/zombie"
)

// RaycastQuery ближайшее пересечение луча со статикой мира, строго ближе
// maxDistance (<= 0 без ограничения). Состояние не меняет.
func (s *Simulation) RaycastQuery(origin, direction vec.Vec3, maxDistance float64) (physics.Hit, bool) {
	return s.engine.Raycast(origin, direction, maxDistance)
}

// SpawnZombie создаёт зомби типа typeName в точке feet
func (s *Simulation) SpawnZombie(typeName string, feet vec.Vec3) (*zombie.Zombie, error) {
	return s.zombies.Spawn(typeName, feet)
}

// DespawnAll убирает всех зомби, включая трупы
func (s *Simulation) DespawnAll() int {
	return s.zombies.DespawnAll()
}

func (s *Simulation) alive() error {
	if s.gameOver {
		return fmt.Errorf("%w: game over", entity.ErrInvalidOperation)
	}
	return nil
}

// Fire выстрел из экипированного оружия
func (s *Simulation) Fire() (combat.ShotResult, error) {
	if err := s.alive(); err != nil {
		return combat.ShotResult{}, err
	}
	if s.player.InVehicle() {
		return combat.ShotResult{}, fmt.Errorf("%w: cannot shoot from a vehicle", entity.ErrInvalidOperation)
	}
	w, ok := s.player.CurrentWeapon()
	if !ok {
		return combat.ShotResult{}, fmt.Errorf("%w: no weapon equipped", entity.ErrInvalidOperation)
	}

	res, err := s.resolver.Fire(w, s.player, s.now)
	if err != nil || !res.Fired {
		return res, err
	}

	outcome := "miss"
	switch {
	case res.Killed:
		outcome = "kill"
	case res.Hit:
		outcome = "hit"
	}
	s.metrics.Shot(w.Name(), outcome)

	payload := eventbus.WeaponFired{
		ShooterID: uint64(s.player.ID()),
		Weapon:    w.Name(),
		Hit:       res.Hit,
		Damage:    res.Damage,
		Killed:    res.Killed,
		Ammo:      w.CurrentAmmo(),
	}
	if res.Hit {
		payload.Target = res.Target.Kind.String()
	}
	s.emit(eventbus.TypeWeaponFired, eventbus.PriorityLow, payload)
	return res, nil
}

// Reload перезарядка экипированного оружия
func (s *Simulation) Reload() error {
	if err := s.alive(); err != nil {
		return err
	}
	w, ok := s.player.CurrentWeapon()
	if !ok {
		return fmt.Errorf("%w: no weapon equipped", entity.ErrInvalidOperation)
	}
	return s.resolver.Reload(w, s.now)
}

// EquipWeapon берёт в руки оружие из списка
func (s *Simulation) EquipWeapon(index int) error {
	if err := s.alive(); err != nil {
		return err
	}
	return s.player.Equip(index)
}

// DropWeapon выбрасывает оружие перед игроком
func (s *Simulation) DropWeapon(index int) error {
	if err := s.alive(); err != nil {
		return err
	}
	w, err := s.player.DropWeapon(index)
	if err != nil {
		return err
	}
	s.addWeapon(w)
	return nil
}

// AddModification ставит модификацию из каталога на экипированное оружие
func (s *Simulation) AddModification(name string) error {
	if err := s.alive(); err != nil {
		return err
	}
	mod, ok := s.catalog.Modification(name)
	if !ok {
		return fmt.Errorf("%w: modification %q", entity.ErrNotFound, name)
	}
	w, ok := s.player.CurrentWeapon()
	if !ok {
		return fmt.Errorf("%w: no weapon equipped", entity.ErrInvalidOperation)
	}
	if err := w.AddModification(*mod); err != nil {
		return err
	}
	s.progress.UpdateStat(progression.StatWeaponsCustomized, 1)
	return nil
}

// UpgradeSkill тратит очко навыка
func (s *Simulation) UpgradeSkill(key string) error {
	return s.progress.UpgradeSkill(key)
}

// interactables объекты в радиусе взаимодействия, ближайший первым
func (s *Simulation) interactables() []player.Interactable {
	vehicles := make([]entity.Positioned, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		if !v.Destroyed() {
			vehicles = append(vehicles, v)
		}
	}
	items := make([]entity.Positioned, 0, len(s.items))
	for _, it := range s.items {
		items = append(items, it)
	}
	weapons := make([]entity.Positioned, 0, len(s.weapons))
	for _, w := range s.weapons {
		weapons = append(weapons, w)
	}
	return s.player.Interactables(vehicles, items, weapons)
}

func (s *Simulation) promptText() string {
	if s.gameOver {
		return ""
	}
	near := s.interactables()
	if len(near) == 0 {
		return ""
	}
	switch t := near[0].Target.(type) {
	case *vehicle.Vehicle:
		if s.player.Vehicle() == t.ID() {
			return "Pressione E para sair do veículo"
		}
		return "Pressione E para entrar no veículo"
	case *item.Item:
		return "Pressione E para pegar " + t.Name
	case *combat.Weapon:
		return "Pressione E para pegar " + t.Name()
	}
	return "Pressione E para interagir"
}

// Interact действие с ближайшим объектом: сесть или выйти из машины,
// подобрать предмет или оружие. Возвращает описание сделанного.
func (s *Simulation) Interact() (string, error) {
	if err := s.alive(); err != nil {
		return "", err
	}

	if v := s.currentVehicle(); v != nil {
		if err := s.player.ExitVehicle(v); err != nil {
			return "", err
		}
		return "exit " + v.Name(), nil
	}

	near := s.interactables()
	if len(near) == 0 {
		return "", fmt.Errorf("%w: nothing to interact with", entity.ErrNotFound)
	}

	switch t := near[0].Target.(type) {
	case *vehicle.Vehicle:
		seat, err := s.player.EnterVehicle(t)
		if err != nil {
			return "", err
		}
		if seat == vehicle.SeatDriver {
			return "drive " + t.Name(), nil
		}
		return "ride " + t.Name(), nil

	case *item.Item:
		name := t.Name
		if err := s.player.Inventory().Add(t); err != nil {
			return "", err
		}
		s.removeItem(t)
		s.progress.UpdateStat(progression.StatItemsCollected, 1)
		return "pick up " + name, nil

	case *combat.Weapon:
		if err := s.player.AddWeapon(t); err != nil {
			return "", err
		}
		s.removeWeapon(t)
		return "pick up " + t.Name(), nil
	}
	return "", fmt.Errorf("%w: unsupported interaction", entity.ErrInvalidOperation)
}

// UseItem применяет предмет из слота инвентаря
func (s *Simulation) UseItem(index int) error {
	if err := s.alive(); err != nil {
		return err
	}
	return s.player.Inventory().Use(index, itemUser{s})
}

// DropItem выкладывает предмет из слота перед игроком
func (s *Simulation) DropItem(index int) error {
	if err := s.alive(); err != nil {
		return err
	}
	pos := item.DropPosition(s.player.Position(), s.player.Rotation().Yaw)
	it, err := s.player.Inventory().Drop(index, pos)
	if err != nil {
		return err
	}
	s.addItem(it)
	s.emit(eventbus.TypeItemDropped, eventbus.PriorityLow, eventbus.ItemDropped{
		ItemID:   uint64(it.ID()),
		Name:     it.Name,
		Quantity: it.Quantity,
		Position: point(pos),
	})
	return nil
}

// itemUser связывает предметы с игроком и машинами рядом
type itemUser struct {
	s *Simulation
}

func (u itemUser) Heal(amount float64)      { u.s.player.Heal(amount) }
func (u itemUser) Eat(amount float64)       { u.s.player.Eat(amount) }
func (u itemUser) Drink(amount float64)     { u.s.player.Drink(amount) }
func (u itemUser) AddAmmo(amount int) error { return u.s.player.AddAmmo(amount) }

// ServiceVehicle текущая машина игрока или ближайшая целая в радиусе взаимодействия
func (u itemUser) ServiceVehicle() (item.VehicleService, bool) {
	if v := u.s.currentVehicle(); v != nil {
		return serviced{v: v, s: u.s}, true
	}
	for _, near := range u.s.interactables() {
		if v, ok := near.Target.(*vehicle.Vehicle); ok {
			return serviced{v: v, s: u.s}, true
		}
	}
	return nil, false
}

// serviced считает ремонты в статистику
type serviced struct {
	v *vehicle.Vehicle
	s *Simulation
}

func (sv serviced) Refuel(amount float64) float64 { return sv.v.Refuel(amount) }

func (sv serviced) Repair() error {
	if err := sv.v.Repair(); err != nil {
		return err
	}
	sv.s.progress.UpdateStat(progression.StatVehiclesRepaired, 1)
	return nil
}

// Reset начинает игру заново: зомби, предметы и машины пересоздаются,
// игрок возрождается в центре. Прогресс сохраняется.
func (s *Simulation) Reset() {
	s.zombies.DespawnAll()

	for _, it := range s.Items() {
		s.removeItem(it)
	}
	for _, w := range s.GroundWeapons() {
		s.removeWeapon(w)
	}
	for _, v := range s.vehicles {
		s.table.Remove(v.ID())
		s.engine.RemoveBody(v.Body())
		s.scene.Unregister(v.ID())
	}
	s.vehicles = nil

	s.player.Reset(vec.Zero)
	s.player.Inventory().Clear()
	s.applyAttributes(s.progress.Attributes())
	s.spawnVehicles()
	s.world.Reset()

	s.gameOver = false
	s.startedAt = s.now
	if !s.noWave {
		s.zombies.SpawnInitial(s.player.Position())
	}
	s.logger.Info("🔁 Новая игра: %d зомби, %d машин", s.zombies.ActiveCount(), len(s.vehicles))
}
