// Package activitysvc records instructor and team actions for audit trails.
package activitysvc

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/trezcool/mazungumzo/core"
)

type consoleLogger struct {
	logger core.Logger
}

var _ core.ActivityLogger = (*consoleLogger)(nil)

func NewConsoleLogger(logger core.Logger) core.ActivityLogger {
	return &consoleLogger{logger: logger}
}

func (l *consoleLogger) Record(eventType, actorID string, meta map[string]interface{}) {
	entry := struct {
		Event   string                 `json:"event"`
		ActorID string                 `json:"actor_id"`
		At      time.Time              `json:"at"`
		Meta    map[string]interface{} `json:"meta,omitempty"`
	}{eventType, actorID, time.Now().UTC(), meta}

	b, err := json.Marshal(entry)
	if err != nil {
		l.logger.Warn(fmt.Sprintf("recording activity %s: %v", eventType, err), err)
		return
	}
	l.logger.Info("activity: " + string(b))
}

// Record captures one recorded event for test assertions.
type Record struct {
	Event   string
	ActorID string
	Meta    map[string]interface{}
}

type mockLogger struct {
	mu      sync.Mutex
	records []Record
}

var _ core.ActivityLogger = (*mockLogger)(nil)

func NewMockLogger() *mockLogger {
	return &mockLogger{}
}

func (l *mockLogger) Record(eventType, actorID string, meta map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, Record{Event: eventType, ActorID: actorID, Meta: meta})
}

func (l *mockLogger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}
