package clock

import (
	"sync"
	"time"
)

// Clock source of the current instant
type Clock interface {
	Now() time.Time
}

// Real wall clock
type Real struct{}

func (Real) Now() time.Time {
	return time.Now()
}

// Mock clock for tests; safe for concurrent use
type Mock struct {
	mu  sync.Mutex
	now time.Time
}

func NewMock(now time.Time) *Mock {
	return &Mock{now: now}
}

func (m *Mock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

func (m *Mock) Add(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}
