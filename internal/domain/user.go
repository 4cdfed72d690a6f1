package domain

import "time"

// User is the domain model for account holders who file service cases.
type User struct {
	ID                 int64
	Username           string
	Email              string
	PasswordHash       string
	IsActive           bool
	MustChangePassword bool
	CreatedAt          time.Time
}
