package domain

import "time"

// InvitationStatus tracks an invitation through its lifecycle:
// pending -> accepted | declined. Accepted and declined are terminal.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

func (s InvitationStatus) Valid() bool {
	return s == InvitationPending || s == InvitationAccepted || s == InvitationDeclined
}

// Invitation is an owner-initiated ask for a non-member to join, subject to
// invitee acceptance. At most one pending invitation exists per
// (group, invitee).
type Invitation struct {
	ID        string
	GroupID   string
	InviterID string
	InviteeID string
	Status    InvitationStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}
