package companion

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Monitor re-checks the companion status on an interval.
type Monitor struct {
	status   StatusFunc
	interval time.Duration
	timeout  time.Duration
	onChange func(online bool, err error)

	mu      sync.RWMutex
	online  bool
	lastErr error
	checked time.Time
}

// StatusFunc reports nil when the companion is reachable.
type StatusFunc func(ctx context.Context) error

func NewMonitor(status StatusFunc, interval time.Duration, onChange func(online bool, err error)) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		status:   status,
		interval: interval,
		timeout:  5 * time.Second,
		onChange: onChange,
		lastErr:  errors.New("not checked yet"),
	}
}

// Check polls once and records the result.
func (m *Monitor) Check(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	err := m.status(cctx)

	m.mu.Lock()
	changed := m.online != (err == nil) || m.checked.IsZero()
	m.online = err == nil
	m.lastErr = err
	m.checked = time.Now()
	m.mu.Unlock()

	if changed {
		if err != nil {
			log.Printf("[companion] offline: %v", err)
		} else {
			log.Printf("[companion] online")
		}
		if m.onChange != nil {
			m.onChange(err == nil, err)
		}
	}
	return err
}

// Run checks immediately and then every interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	_ = m.Check(ctx)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = m.Check(ctx)
		}
	}
}

func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Snapshot returns the last result.
func (m *Monitor) Snapshot() (online bool, checked time.Time, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online, m.checked, m.lastErr
}
