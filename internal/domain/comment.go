package domain

import "time"

// Comment is a remark on a service case. Immutable once created; the author
// does not have to own the case.
type Comment struct {
	ID        int64
	CaseID    int64
	AuthorID  int64
	Text      string
	CreatedAt time.Time
}
