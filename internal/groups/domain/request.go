package domain

import "time"

// RequestStatus tracks a join request through its lifecycle:
// pending -> approved | denied. Approved and denied are terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDenied   RequestStatus = "denied"
)

func (s RequestStatus) Valid() bool {
	return s == RequestPending || s == RequestApproved || s == RequestDenied
}

// MemberRequest is a non-member's ask to join a private group, subject to
// owner approval. At most one pending request exists per (group, user).
type MemberRequest struct {
	ID        string
	GroupID   string
	UserID    string
	Status    RequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
