package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubjectLessonCompleted is the NATS subject for lesson completion events.
const SubjectLessonCompleted = "aicodemaster.lessons.completed"

// LessonCompletedEvent is the published payload when a learner's solution is
// judged correct for the first time or again.
type LessonCompletedEvent struct {
	UserID     uint      `json:"user_id"`
	LessonID   uint      `json:"lesson_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NATSPublisher publishes domain events to a NATS connection.
type NATSPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
	now    func() time.Time
}

// NewNATSPublisher constructs an event publisher over an established
// connection.
func NewNATSPublisher(conn *nats.Conn, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "events").Logger(),
		now:    time.Now,
	}
}

// LessonCompleted publishes a completion event. Publishing is fire and
// forget; the tutoring flow never blocks on the broker.
func (p *NATSPublisher) LessonCompleted(_ context.Context, userID, lessonID uint) error {
	event := LessonCompletedEvent{
		UserID:     userID,
		LessonID:   lessonID,
		OccurredAt: p.now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.conn.Publish(SubjectLessonCompleted, data)
}
