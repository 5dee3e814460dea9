package clock

import (
	"sync"
	"time"

	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// System reads the wall clock.
type System struct{}

func (System) Now() int64 { return time.Now().Unix() }

// Fixed is a settable clock for --at overrides and tests.
type Fixed struct {
	mu  sync.Mutex
	now int64
}

func NewFixed(now int64) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *Fixed) Set(now int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Advance moves the clock forward by d, truncated to whole seconds.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now += int64(d / time.Second)
}

// NewClock returns a fixed clock when the runtime config pins the time.
func NewClock(cfg *config.RuntimeConfig) usecase.Clock {
	if cfg.Now != 0 {
		return NewFixed(cfg.Now)
	}
	return System{}
}

var (
	_ usecase.Clock = System{}
	_ usecase.Clock = (*Fixed)(nil)
)
