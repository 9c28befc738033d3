package sim

import (
	"context"
	"sync"
	"time"

	"github.com/annel0/deadcity/internal/logging"
	"github.com/annel0/deadcity/internal/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Command действие над симуляцией, выполняемое между тиками
type Command func(s *Simulation) error

type request struct {
	fn   Command
	done chan error
}

// Runner крутит симуляцию с фиксированной частотой в одной горутине.
// Внешние вызовы (REST, автосохранение) передаются командами и
// выполняются строго между тиками; читатели получают копию State.
type Runner struct {
	sim      *Simulation
	interval time.Duration
	requests chan request
	tracer   trace.Tracer

	mu    sync.RWMutex
	state State

	logger *logging.Logger
}

// NewRunner создаёт раннер с шагом interval
func NewRunner(sim *Simulation, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Second / 60
	}
	r := &Runner{
		sim:      sim,
		interval: interval,
		requests: make(chan request, 64),
		tracer:   observability.Tracer(),
		logger:   logging.GetSimLogger(),
	}
	r.publish()
	return r
}

// Run выполняет тики до отмены ctx
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("⏱️ Цикл симуляции запущен: шаг %v", r.interval)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("⏹️ Цикл симуляции остановлен на тике %d", r.sim.Ticks())
			return nil
		case req := <-r.requests:
			req.done <- req.fn(r.sim)
			r.publish()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			r.step(ctx, dt)
		}
	}
}

func (r *Runner) step(ctx context.Context, dt float64) {
	_, span := r.tracer.Start(ctx, "sim.tick", trace.WithAttributes(
		attribute.Int64("sim.tick", int64(r.sim.Ticks()+1)),
		attribute.Float64("sim.dt", dt),
	))
	r.sim.Tick(dt)
	span.SetAttributes(attribute.Int("sim.zombies", r.sim.ZombieManager().ActiveCount()))
	span.End()
	r.publish()
}

func (r *Runner) publish() {
	st := r.sim.State()
	r.mu.Lock()
	r.state = st
	r.mu.Unlock()
}

// State последний опубликованный снимок
func (r *Runner) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Do ставит команду в очередь и ждёт её выполнения
func (r *Runner) Do(ctx context.Context, fn Command) error {
	req := request{fn: fn, done: make(chan error, 1)}
	select {
	case r.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
