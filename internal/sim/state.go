package sim

import (
	"github.com/annel0/deadcity/internal/combat"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/vec"
)

// EntityState то, что видят рендер и HUD у одной сущности
type EntityState struct {
	ID        uint64          `json:"id" msgpack:"id"`
	Kind      string          `json:"kind" msgpack:"kind"`
	Name      string          `json:"name,omitempty" msgpack:"name,omitempty"`
	Position  vec.Vec3        `json:"position" msgpack:"position"`
	Rotation  entity.Rotation `json:"rotation" msgpack:"rotation"`
	Health    float64         `json:"health,omitempty" msgpack:"health,omitempty"`
	MaxHealth float64         `json:"maxHealth,omitempty" msgpack:"max_health,omitempty"`
	State     string          `json:"state,omitempty" msgpack:"state,omitempty"`
}

// PlayerState состояние игрока
type PlayerState struct {
	EntityState
	Stamina    float64          `json:"stamina" msgpack:"stamina"`
	MaxStamina float64          `json:"maxStamina" msgpack:"max_stamina"`
	Vehicle    uint64           `json:"vehicle,omitempty" msgpack:"vehicle,omitempty"`
	Weapon     string           `json:"weapon,omitempty" msgpack:"weapon,omitempty"`
	Ammo       combat.AmmoState `json:"ammo" msgpack:"ammo"`
	Level      int              `json:"level" msgpack:"level"`
	Experience int              `json:"experience" msgpack:"experience"`
}

// State снимок симуляции для внешних потребителей
type State struct {
	Tick         uint64        `json:"tick" msgpack:"tick"`
	Time         float64       `json:"time" msgpack:"time"`
	TimeSurvived float64       `json:"timeSurvived" msgpack:"time_survived"`
	TimeOfDay    float64       `json:"timeOfDay" msgpack:"time_of_day"`
	GameOver     bool          `json:"gameOver" msgpack:"game_over"`
	Prompt       string        `json:"prompt,omitempty" msgpack:"prompt,omitempty"`
	Player       PlayerState   `json:"player" msgpack:"player"`
	Zombies      []EntityState `json:"zombies" msgpack:"zombies"`
	Vehicles     []EntityState `json:"vehicles" msgpack:"vehicles"`
	Items        []EntityState `json:"items" msgpack:"items"`
}

// State собирает снимок. Вызывать между тиками.
func (s *Simulation) State() State {
	p := s.player
	st := State{
		Tick:         s.ticks,
		Time:         s.now,
		TimeSurvived: s.TimeSurvived(),
		TimeOfDay:    s.world.Environment().TimeOfDay,
		GameOver:     s.gameOver,
		Prompt:       s.prompt,
		Player: PlayerState{
			EntityState: EntityState{
				ID:        uint64(p.ID()),
				Kind:      entity.KindPlayer.String(),
				Position:  p.Position(),
				Rotation:  p.Rotation(),
				Health:    p.Health(),
				MaxHealth: p.MaxHealth(),
			},
			Stamina:    p.Stamina(),
			MaxStamina: p.MaxStamina(),
			Vehicle:    uint64(p.Vehicle()),
			Level:      s.progress.Level(),
			Experience: s.progress.Experience(),
		},
	}
	if w, ok := p.CurrentWeapon(); ok {
		st.Player.Weapon = w.Name()
		st.Player.Ammo = w.Ammo()
	}

	for _, z := range s.zombies.Zombies() {
		st.Zombies = append(st.Zombies, EntityState{
			ID:        uint64(z.ID()),
			Kind:      entity.KindZombie.String(),
			Name:      z.Type(),
			Position:  z.Position(),
			Rotation:  z.Rotation(),
			Health:    z.Health(),
			MaxHealth: z.MaxHealth(),
			State:     z.State(),
		})
	}
	for _, v := range s.vehicles {
		vs := EntityState{
			ID:        uint64(v.ID()),
			Kind:      entity.KindVehicle.String(),
			Name:      v.Name(),
			Position:  v.Position(),
			Rotation:  v.Rotation(),
			Health:    v.Health(),
			MaxHealth: v.MaxHealth(),
			State:     "parked",
		}
		switch {
		case v.Destroyed():
			vs.State = "destroyed"
		case v.Running():
			vs.State = "running"
		case v.NeedsRepair():
			vs.State = "broken"
		}
		st.Vehicles = append(st.Vehicles, vs)
	}
	for _, it := range s.items {
		st.Items = append(st.Items, EntityState{
			ID:       uint64(it.ID()),
			Kind:     entity.KindItem.String(),
			Name:     it.Name,
			Position: it.Position(),
		})
	}
	for _, w := range s.weapons {
		st.Items = append(st.Items, EntityState{
			ID:       uint64(w.ID()),
			Kind:     entity.KindWeapon.String(),
			Name:     w.Name(),
			Position: w.Position(),
		})
	}
	return st
}
