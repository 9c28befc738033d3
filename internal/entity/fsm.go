package entity

// State представляет состояние конечного автомата владельца T
type State[T any] interface {
	Name() string
	Enter(owner T)
	Update(owner T, dt float64)
	Exit(owner T)
}

// Machine конечный автомат с ровно одним активным состоянием
type Machine[T any] struct {
	owner   T
	current State[T]
	// terminal состояние, из которого нет переходов
	terminal string
}

// NewMachine создаёт автомат и входит в начальное состояние
func NewMachine[T any](owner T, initial State[T], terminal string) *Machine[T] {
	m := &Machine[T]{owner: owner, terminal: terminal}
	m.current = initial
	if initial != nil {
		initial.Enter(owner)
	}
	return m
}

// Current возвращает активное состояние
func (m *Machine[T]) Current() State[T] {
	return m.current
}

// Is проверяет имя активного состояния
func (m *Machine[T]) Is(name string) bool {
	return m.current != nil && m.current.Name() == name
}

// Set переводит автомат в новое состояние. Переход в то же самое состояние
// не вызывает Exit/Enter. Из терминального состояния переходов нет.
func (m *Machine[T]) Set(next State[T]) bool {
	if next == nil || next == m.current {
		return false
	}
	if m.current != nil && m.terminal != "" && m.current.Name() == m.terminal {
		return false
	}
	if m.current != nil {
		m.current.Exit(m.owner)
	}
	m.current = next
	m.current.Enter(m.owner)
	return true
}

// Update выполняет поведение активного состояния
func (m *Machine[T]) Update(dt float64) {
	if m.current != nil {
		m.current.Update(m.owner, dt)
	}
}
