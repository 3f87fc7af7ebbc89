package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type ProfileEventType string

const (
	ProfileEventCreated ProfileEventType = "profile.created"
	ProfileEventUpdated ProfileEventType = "profile.updated"
	ProfileEventDeleted ProfileEventType = "profile.deleted"
)

type ProfileEventPayload struct {
	EventType  ProfileEventType `json:"event_type"`
	ProfileID  uuid.UUID        `json:"profile_id"`
	Slug       string           `json:"slug"`
	Category   string           `json:"category"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// OrphanedAttachmentsPayload lists storage keys that were written by a submission
// that never produced a document.
type OrphanedAttachmentsPayload struct {
	Reason     string    `json:"reason"`
	Keys       []string  `json:"keys"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EventPublisher interface {
	PublishProfileEvent(ctx context.Context, payload ProfileEventPayload) error
	PublishOrphanedAttachments(ctx context.Context, payload OrphanedAttachmentsPayload) error
}
