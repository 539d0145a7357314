// Package timer runs named countdowns that tick once per interval and fire a
// callback when they reach zero. Remaining time is computed from a deadline,
// so a slow tick never drifts the countdown.
package timer

import (
	"context"
	"errors"
	"sync"
	"time"
)

const DefaultInterval = time.Second

// ErrCancelled is returned by Wait when the countdown was stopped early.
var ErrCancelled = errors.New("countdown cancelled")

// Countdown describes one timer.
type Countdown struct {
	Name     string
	Duration time.Duration
	Interval time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
	// OnTick receives the remaining time after every interval.
	OnTick func(remaining time.Duration)
	// OnDone runs once when the deadline passes. It does not run on cancel.
	OnDone func(ctx context.Context)
}

// Task is a running countdown.
type Task struct {
	name     string
	deadline time.Time
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

// Start runs c in its own goroutine until it finishes, ctx is done or the
// task is cancelled.
func Start(ctx context.Context, c Countdown) *Task {
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		name:     c.Name,
		deadline: c.Now().Add(c.Duration),
		now:      c.Now,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go t.run(ctx, c)
	return t
}

func (t *Task) run(ctx context.Context, c Countdown) {
	defer close(t.done)
	defer t.cancel()

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	for {
		remaining := t.Remaining()
		if remaining <= 0 {
			if c.OnDone != nil {
				c.OnDone(context.WithoutCancel(ctx))
			}
			return
		}
		select {
		case <-ctx.Done():
			t.mu.Lock()
			t.err = ErrCancelled
			t.mu.Unlock()
			return
		case <-ticker.C:
			if c.OnTick != nil {
				c.OnTick(max(t.Remaining(), 0))
			}
		}
	}
}

func (t *Task) Name() string { return t.name }

// Remaining is the time left before the deadline, never negative.
func (t *Task) Remaining() time.Duration {
	return max(t.deadline.Sub(t.now()), 0)
}

func (t *Task) Cancel() { t.cancel() }

// Done is closed when the task stops.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task stops. It returns ErrCancelled when the task
// did not run to zero.
func (t *Task) Wait() error {
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Scheduler keeps at most one running countdown per name.
type Scheduler struct {
	ctx context.Context

	mu    sync.Mutex
	tasks map[string]*Task
}

func NewScheduler(ctx context.Context) *Scheduler {
	return &Scheduler{ctx: ctx, tasks: map[string]*Task{}}
}

// Schedule starts c, cancelling any countdown with the same name.
func (s *Scheduler) Schedule(c Countdown) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.tasks[c.Name]; ok {
		old.Cancel()
	}
	t := Start(s.ctx, c)
	s.tasks[c.Name] = t
	go func() {
		<-t.Done()
		s.mu.Lock()
		if s.tasks[c.Name] == t {
			delete(s.tasks, c.Name)
		}
		s.mu.Unlock()
	}()
	return t
}

// Cancel stops the named countdown. It reports whether one was running.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	t, ok := s.tasks[name]
	delete(s.tasks, name)
	s.mu.Unlock()
	if ok {
		t.Cancel()
	}
	return ok
}

func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = map[string]*Task{}
	s.mu.Unlock()
	for _, t := range tasks {
		t.Cancel()
	}
}

// Active returns the running countdowns keyed by name.
func (s *Scheduler) Active() map[string]time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]time.Duration, len(s.tasks))
	for name, t := range s.tasks {
		out[name] = t.Remaining()
	}
	return out
}
