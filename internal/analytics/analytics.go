package analytics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"liquiditySupply/internal/model"
)

const (
	CategoryLiquidity = "Liquidity"
	ActionAdd         = "Add"
)

// Event is a product analytics event.
type Event struct {
	ID       string    `json:"id"`
	Category string    `json:"category"`
	Action   string    `json:"action"`
	Label    string    `json:"label"`
	At       time.Time `json:"at"`
}

// Sink receives analytics events. Emission never fails the caller.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

func NewEvent(category, action, label string) Event {
	return Event{
		ID:       uuid.NewString(),
		Category: category,
		Action:   action,
		Label:    label,
		At:       time.Now().UTC(),
	}
}

// AddLiquidity tags a deposit with its asset pair.
func AddLiquidity(assets model.AssetPair) Event {
	return NewEvent(CategoryLiquidity, ActionAdd, assets.Label())
}

// LogSink writes events to a zap logger.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(_ context.Context, event Event) {
	s.logger.Info("analytics event",
		zap.String("id", event.ID),
		zap.String("category", event.Category),
		zap.String("action", event.Action),
		zap.String("label", event.Label),
		zap.Time("at", event.At),
	)
}

// Memory keeps events in order; used by tests and dry runs.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Emit(_ context.Context, event Event) {
	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
}

func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
