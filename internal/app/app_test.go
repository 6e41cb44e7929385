package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stepLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *stepLog) add(step string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

func (l *stepLog) get() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.steps...)
}

type fakeServer struct{ log *stepLog }

func (s fakeServer) Shutdown(context.Context) error {
	s.log.add("http")
	return nil
}

type fakeTasks struct{ log *stepLog }

func (t fakeTasks) Wait(context.Context) error {
	t.log.add("tasks")
	return nil
}

func TestDrain_StopsIntakeBeforeWaitingTasks(t *testing.T) {
	log := &stepLog{}
	consumerDone := make(chan struct{})
	stopWorkers := func() {
		log.add("workers")
		go func() {
			time.Sleep(10 * time.Millisecond)
			log.add("consumer stopped")
			close(consumerDone)
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	drain(ctx, fakeServer{log}, stopWorkers, consumerDone, fakeTasks{log})

	assert.Equal(t, []string{"http", "workers", "consumer stopped", "tasks"}, log.get())
}

func TestDrain_WithoutConsumer(t *testing.T) {
	log := &stepLog{}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	drain(ctx, fakeServer{log}, func() { log.add("workers") }, nil, fakeTasks{log})

	assert.Equal(t, []string{"http", "workers", "tasks"}, log.get())
}
