// Package audit delivers committed domain events to the log and to an
// append-only JSON lines file.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/trebuchet-org/lockgov/internal/domain/config"
	"github.com/trebuchet-org/lockgov/internal/domain/events"
	"github.com/trebuchet-org/lockgov/internal/usecase"
)

// Record is one line of the audit file.
type Record struct {
	Event string       `json:"event"`
	Time  int64        `json:"time"`
	Data  events.Event `json:"data"`
}

// Sink logs every event and, when a path is configured, appends it to
// the audit file.
type Sink struct {
	log   *slog.Logger
	clock usecase.Clock
	path  string
	mu    sync.Mutex
}

// NewSink resolves cfg.AuditFile against the data directory.
func NewSink(cfg *config.RuntimeConfig, clock usecase.Clock, log *slog.Logger) *Sink {
	path := cfg.AuditFile
	if path != "" && !filepath.IsAbs(path) {
		path = filepath.Join(cfg.DataDir, path)
	}
	return &Sink{
		log:   log.With("component", "audit"),
		clock: clock,
		path:  path,
	}
}

// Path returns the audit file path, empty when disabled.
func (s *Sink) Path() string {
	return s.path
}

func (s *Sink) Publish(ctx context.Context, evts []events.Event) error {
	if len(evts) == 0 {
		return nil
	}

	now := s.clock.Now()
	for _, e := range evts {
		s.log.InfoContext(ctx, e.EventName(), "data", e)
	}
	if s.path == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, e := range evts {
		if err := enc.Encode(Record{Event: e.EventName(), Time: now, Data: e}); err != nil {
			return fmt.Errorf("failed to write audit record: %w", err)
		}
	}
	return nil
}

var _ usecase.EventSink = (*Sink)(nil)
