// Package audit decouples state-changing operations from the audit
// trail. Operations emit an Event after each successful state change,
// a Sink persists them. Failures of the sink are logged and never
// propagate back into the operation that emitted the event.
package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/voucherhub/backend/internal/models"
)

// Event captures a single completed action.
type Event struct {
	ActorID    uuid.UUID
	Action     string
	TargetType string
	TargetID   uuid.UUID
	Timestamp  time.Time
}

// A Sink consumes audit events.
type Sink interface {
	Record(event Event)
}

// DatabaseSink appends events to the audit_logs table.
type DatabaseSink struct {
	DB *gorm.DB
}

func (s DatabaseSink) Record(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().In(time.UTC)
	}

	err := s.DB.Create(&models.AuditLog{
		ActorID:    event.ActorID,
		Action:     event.Action,
		TargetType: event.TargetType,
		TargetID:   event.TargetID,
		Timestamp:  event.Timestamp,
	}).Error
	if err != nil {
		log.Error().Err(err).
			Str("action", event.Action).
			Str("target-type", event.TargetType).
			Str("target-id", event.TargetID.String()).
			Msg("audit event could not be recorded")
	}
}

// sink is the Sink all events are emitted to.
var sink Sink

// Use sets the sink that Emit records to.
func Use(s Sink) {
	sink = s
}

// Emit records the event with the configured sink. Events emitted
// before a sink is configured are dropped.
func Emit(event Event) {
	if sink == nil {
		return
	}

	sink.Record(event)
}
