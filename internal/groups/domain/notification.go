package domain

import "time"

// NotificationKind categorises notifications for presentation.
type NotificationKind string

const (
	// KindGroup covers every membership-workflow notification (requests,
	// approvals, invitations, removals).
	KindGroup NotificationKind = "group"
)

// Notification is a fire-and-forget message to a user. Creating one must
// never abort the mutation that triggered it.
type Notification struct {
	ID             string
	UserID         string
	Kind           NotificationKind
	Title          string
	Message        string
	RelatedGroupID string // empty when the notification is not group-scoped
	Read           bool
	CreatedAt      time.Time
}
