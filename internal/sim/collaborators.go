package sim

import (
	"sync"

	"github.com/annel0/deadcity/internal/combat"
	"github.com/annel0/deadcity/internal/entity"
	"github.com/annel0/deadcity/internal/player"
	"github.com/annel0/deadcity/internal/vec"
)

// Scene принимает прокси сущностей для отрисовки и положение камеры
type Scene interface {
	Register(id entity.ID, kind entity.Kind)
	Unregister(id entity.ID)
	SetCamera(position vec.Vec3, rot entity.Rotation)
}

// Key код клавиши
type Key string

const (
	KeyForward Key = "KeyW"
	KeyBack    Key = "KeyS"
	KeyLeft    Key = "KeyA"
	KeyRight   Key = "KeyD"
	KeySprint  Key = "ShiftLeft"
	KeyJump    Key = "Space"
)

// Input состояние клавиш и относительное смещение указателя за тик
type Input interface {
	Key(k Key) bool
	// PointerDelta смещение с прошлого опроса
	PointerDelta() (dx, dy float64)
}

// HUD интерфейс игрока
type HUD interface {
	UpdateHUD(healthPercent float64, ammo combat.AmmoState, prompt string)
}

type noopScene struct{}

func (noopScene) Register(entity.ID, entity.Kind)     {}
func (noopScene) Unregister(entity.ID)                {}
func (noopScene) SetCamera(vec.Vec3, entity.Rotation) {}

type noopHUD struct{}

func (noopHUD) UpdateHUD(float64, combat.AmmoState, string) {}

// ManualInput ввод, который выставляется извне (REST, тесты).
// Смещение указателя накапливается до ближайшего тика.
type ManualInput struct {
	mu     sync.Mutex
	keys   map[Key]bool
	dx, dy float64
}

// NewManualInput пустой ввод: ничего не нажато
func NewManualInput() *ManualInput {
	return &ManualInput{keys: make(map[Key]bool)}
}

func (in *ManualInput) Key(k Key) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.keys[k]
}

func (in *ManualInput) PointerDelta() (float64, float64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	dx, dy := in.dx, in.dy
	in.dx, in.dy = 0, 0
	return dx, dy
}

// SetKey нажимает или отпускает клавишу
func (in *ManualInput) SetKey(k Key, down bool) {
	in.mu.Lock()
	in.keys[k] = down
	in.mu.Unlock()
}

// Set заменяет состояние клавиш и добавляет смещение указателя
func (in *ManualInput) Set(state player.Input) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.keys[KeyForward] = state.Forward
	in.keys[KeyBack] = state.Back
	in.keys[KeyLeft] = state.Left
	in.keys[KeyRight] = state.Right
	in.keys[KeySprint] = state.Sprint
	in.keys[KeyJump] = state.Jump
	in.dx += state.LookDX
	in.dy += state.LookDY
}

// readInput собирает состояние управления игрока
func readInput(in Input) player.Input {
	dx, dy := in.PointerDelta()
	return player.Input{
		Forward: in.Key(KeyForward),
		Back:    in.Key(KeyBack),
		Left:    in.Key(KeyLeft),
		Right:   in.Key(KeyRight),
		Sprint:  in.Key(KeySprint),
		Jump:    in.Key(KeyJump),
		LookDX:  dx,
		LookDY:  dy,
	}
}
