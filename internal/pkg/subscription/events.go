package subscription

import (
	"time"

	"github.com/google/uuid"

	"github.com/submate-app/SubMate/app/models"
)

// EventKind identifies a lifecycle change worth notifying the owner about.
type EventKind string

const (
	EventCreated     EventKind = "created"
	EventEdited      EventKind = "edited"
	EventDeactivated EventKind = "deactivated"
	EventActivated   EventKind = "activated"
	EventDeleted     EventKind = "deleted"
)

// Event is a post-commit notification record. Lifecycle operations return
// events instead of calling the mailer inline; a dispatcher delivers them
// best-effort after the state change has been persisted, so a failed email
// can never fail or roll back the operation itself.
type Event struct {
	ID           string
	Kind         EventKind
	Subscription models.Subscription
	OccurredAt   time.Time
}

func newEvent(kind EventKind, sub models.Subscription, at time.Time) Event {
	return Event{
		ID:           uuid.NewString(),
		Kind:         kind,
		Subscription: sub,
		OccurredAt:   at,
	}
}
