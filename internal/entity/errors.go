package entity

import "errors"

// Отклонённые операции. Ни одна из них не фатальна: вызывающая сторона
// оставляет состояние без изменений и при необходимости уведомляет игрока.
var (
	// ErrInvalidOperation операция недопустима в текущем состоянии
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrResourceExhausted не хватает ресурса (место в инвентаре, топливо)
	ErrResourceExhausted = errors.New("resource exhausted")
	// ErrPlacementFailed не удалось подобрать позицию за отведённое число попыток
	ErrPlacementFailed = errors.New("placement failed")
	// ErrNotFound сущность не найдена (в том числе устаревший ID)
	ErrNotFound = errors.New("entity not found")
)
