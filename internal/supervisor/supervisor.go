package supervisor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"OrderNotifier/internal/metrics"
	"github.com/wb-go/wbf/zlog"
)

// Supervisor запускает фоновые задачи, которые не должны блокировать вызывающего.
// Задачи не наследуют отмену контекста вызывающего и не отменяются при остановке:
// Wait только дожидается их завершения.
type Supervisor struct {
	started uint64
	active  int64
	failed  uint64

	wg sync.WaitGroup

	onFailure func(name string, err error)
}

type Option func(*Supervisor)

// Counters счетчики задач супервизора.
type Counters struct {
	Active  int64  `json:"active"`
	Started uint64 `json:"started"`
	Failed  uint64 `json:"failed"`
}

// WithFailureHook добавляет обработчик неудачных задач в дополнение к логу и метрике.
func WithFailureHook(fn func(name string, err error)) Option {
	return func(s *Supervisor) { s.onFailure = fn }
}

// New создает новый супервизор.
func New(opts ...Option) *Supervisor {
	s := &Supervisor{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Go запускает задачу name. Паника внутри fn перехватывается и считается ошибкой задачи.
func (s *Supervisor) Go(ctx context.Context, name string, fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	taskCtx := context.WithoutCancel(ctx)

	atomic.AddUint64(&s.started, 1)
	atomic.AddInt64(&s.active, 1)
	metrics.TasksActive.Inc()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer metrics.TasksActive.Dec()
		defer atomic.AddInt64(&s.active, -1)

		if err := Run(taskCtx, name, fn); err != nil {
			s.fail(name, err)
		}
	}()
}

// Run выполняет fn в текущей горутине, превращая панику в ошибку.
func Run(ctx context.Context, name string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Logger.Error().
				Str("task", name).
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("task panicked")
			err = fmt.Errorf("panic in %s: %v", name, r)
		}
	}()
	return fn(ctx)
}

func (s *Supervisor) fail(name string, err error) {
	atomic.AddUint64(&s.failed, 1)
	metrics.TaskFailures.WithLabelValues(name).Inc()
	zlog.Logger.Error().Err(err).Str("task", name).Msg("supervised task failed")
	if s.onFailure != nil {
		s.onFailure(name, err)
	}
}

// Counters возвращает текущие значения счетчиков.
func (s *Supervisor) Counters() Counters {
	return Counters{
		Active:  atomic.LoadInt64(&s.active),
		Started: atomic.LoadUint64(&s.started),
		Failed:  atomic.LoadUint64(&s.failed),
	}
}

// Wait ждет завершения всех запущенных задач или отмены ctx.
func (s *Supervisor) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
