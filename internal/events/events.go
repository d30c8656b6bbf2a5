// Package events defines the messages emitted after seat allocation changes.
package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/exam-seat-api/pkg/broker"
)

// Routing keys on the seating exchange.
const (
	AllocationGenerated = "allocation.generated"
	AllocationCleared   = "allocation.cleared"
)

// AllocationGeneratedEvent is emitted after a generation run commits.
type AllocationGeneratedEvent struct {
	ExamID        string    `json:"examId"`
	ExamDate      string    `json:"examDate"`
	Eligible      int       `json:"eligible"`
	SeatsUsed     int       `json:"seatsUsed"`
	HallsUsed     int       `json:"hallsUsed"`
	HallIDs       []string  `json:"hallIds"`
	SharedBenches int       `json:"sharedBenches"`
	Trigger       string    `json:"trigger"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// AllocationClearedEvent is emitted after allocations are removed.
type AllocationClearedEvent struct {
	ExamID     string    `json:"examId"`
	ExamDate   string    `json:"examDate,omitempty"`
	Removed    int64     `json:"removed"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Emitter publishes events on a best-effort basis. Failures are logged and never returned.
type Emitter struct {
	publisher broker.Publisher
	timeout   time.Duration
	logger    *zap.Logger
}

// NewEmitter wraps publisher. A nil publisher discards events.
func NewEmitter(publisher broker.Publisher, logger *zap.Logger) *Emitter {
	if publisher == nil {
		publisher = broker.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{publisher: publisher, timeout: 3 * time.Second, logger: logger}
}

// Generated publishes an AllocationGeneratedEvent.
func (e *Emitter) Generated(ctx context.Context, evt AllocationGeneratedEvent) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	e.emit(ctx, AllocationGenerated, evt)
}

// Cleared publishes an AllocationClearedEvent.
func (e *Emitter) Cleared(ctx context.Context, evt AllocationClearedEvent) {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	e.emit(ctx, AllocationCleared, evt)
}

func (e *Emitter) emit(ctx context.Context, key string, payload interface{}) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()
	if err := e.publisher.Publish(ctx, key, payload); err != nil {
		e.logger.Warn("publish allocation event", zap.String("routing_key", key), zap.Error(err))
	}
}
