package dto

import (
	"time"

	"github.com/caseworks/servicedesk/internal/domain"
)

// CreateCaseRequest payload.
type CreateCaseRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    domain.CasePriority `json:"priority"`
}

// UpdateStateRequest payload.
type UpdateStateRequest struct {
	State domain.CaseState `json:"state"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// CommentResponse represents a case comment.
type CommentResponse struct {
	ID        int64     `json:"id"`
	CaseID    int64     `json:"case_id"`
	AuthorID  int64     `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CaseResponse provides full case info including its comment thread.
type CaseResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    domain.CasePriority `json:"priority"`
	State       domain.CaseState    `json:"state"`
	OwnerID     int64               `json:"owner_id"`
	CreatedAt   time.Time           `json:"created_at"`
	Comments    []CommentResponse   `json:"comments"`
}
