package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivityRecord is the persisted form of an ActivityEvent.
type ActivityRecord struct {
	bun.BaseModel `bun:"table:auth_activity,alias:act"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	EventType     string         `bun:"event_type,notnull" json:"event_type,omitempty"`
	ActorID       string         `bun:"actor_id" json:"actor_id,omitempty"`
	ActorType     string         `bun:"actor_type" json:"actor_type,omitempty"`
	UserID        string         `bun:"user_id" json:"user_id,omitempty"`
	ChurchID      string         `bun:"church_id" json:"church_id,omitempty"`
	Metadata      map[string]any `bun:"metadata,type:jsonb" json:"metadata,omitempty"`
	OccurredAt    time.Time      `bun:"occurred_at,notnull" json:"occurred_at,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// ActivityStore is a bun-backed ActivitySink writing one row per event.
type ActivityStore struct {
	db *bun.DB
}

// NewActivityStore returns a persistent audit sink.
func NewActivityStore(db *bun.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Record implements ActivitySink.
func (s *ActivityStore) Record(ctx context.Context, event ActivityEvent) error {
	record := &ActivityRecord{
		ID:         uuid.New(),
		EventType:  string(event.EventType),
		ActorID:    event.Actor.ID,
		ActorType:  event.Actor.Type,
		UserID:     event.UserID,
		ChurchID:   event.ChurchID,
		Metadata:   event.Metadata,
		OccurredAt: event.OccurredAt,
	}

	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now()
	}

	_, err := s.db.NewInsert().Model(record).Exec(ctx)
	return err
}

var _ ActivitySink = (*ActivityStore)(nil)
