package walks

import (
	"context"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewActivityRepository builds the repository for persisted activity
// records.
func NewActivityRepository(db *bun.DB) repository.Repository[*ActivityRecord] {
	handlers := repository.ModelHandlers[*ActivityRecord]{
		NewRecord: func() *ActivityRecord {
			return &ActivityRecord{}
		},
		GetID: func(record *ActivityRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *ActivityRecord, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "event_type"
		},
	}
	return repository.NewRepository(db, handlers)
}

// PersistentActivitySink writes activity events to the activity_log table
// through the activity repository.
type PersistentActivitySink struct {
	repo   repository.Repository[*ActivityRecord]
	logger Logger
}

var _ ActivitySink = (*PersistentActivitySink)(nil)

// NewPersistentActivitySink returns a sink backed by the given repository.
func NewPersistentActivitySink(repo repository.Repository[*ActivityRecord]) *PersistentActivitySink {
	return &PersistentActivitySink{
		repo:   repo,
		logger: defLogger{},
	}
}

// WithLogger sets the logger used to report failed writes.
func (s *PersistentActivitySink) WithLogger(logger Logger) *PersistentActivitySink {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Record stores the event. Sink failures are logged, never surfaced, so
// auditing can't break the operation being audited.
func (s *PersistentActivitySink) Record(ctx context.Context, event ActivityEvent) error {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}

	record := &ActivityRecord{
		ID:         uuid.New(),
		EventType:  string(event.EventType),
		ActorID:    event.Actor.ID,
		ActorType:  event.Actor.Type,
		UserID:     event.UserID,
		Metadata:   event.Metadata,
		OccurredAt: occurred,
	}

	if _, err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to record activity event", "event", event.EventType, "error", err)
		return err
	}

	return nil
}
