// Package alert provides the sinks behind the disposition tracker's
// AlertSink: an append-only in-memory sink for tests and single-process
// deployments, and a Kafka producer for everything else.
package alert

import (
	"context"
	"sync"

	"vigil/internal/disposition"
)

// MemorySink records alerts in process memory, append-only.
type MemorySink struct {
	mu     sync.RWMutex
	alerts []disposition.Alert
}

// NewMemorySink creates an empty in-memory alert sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(ctx context.Context, alert disposition.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, alert)
	return nil
}

// Alerts returns a copy of everything emitted so far.
func (s *MemorySink) Alerts() []disposition.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]disposition.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}
