package events

import (
	"time"

	"github.com/caseworks/servicedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered   EventType = "user_registered"
	EventCaseCreated      EventType = "case_created"
	EventCaseStateChanged EventType = "case_state_changed"
	EventCaseCommentAdded EventType = "case_comment_added"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CaseID    int64       `json:"case_id,omitempty"`
	ActorID   int64       `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload carries the data the welcome notification needs.
// InitialPassword is delivered out-of-band and never persisted in plaintext.
type UserRegisteredPayload struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	InitialPassword string `json:"-"`
}

// CaseCreatedPayload payload.
type CaseCreatedPayload struct {
	Title    string              `json:"title"`
	Priority domain.CasePriority `json:"priority"`
}

// CaseStateChangedPayload payload.
type CaseStateChangedPayload struct {
	OldState domain.CaseState `json:"old_state"`
	NewState domain.CaseState `json:"new_state"`
}

// CaseCommentAddedPayload payload.
type CaseCommentAddedPayload struct {
	CommentID   int64  `json:"comment_id"`
	AuthorID    int64  `json:"author_id"`
	TextPreview string `json:"text_preview"`
}
