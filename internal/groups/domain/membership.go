package domain

import "time"

// Role of a user within a group. Exactly one owner row exists per group.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleMember
}

// Membership is the durable record that a user belongs to a group. The
// (GroupID, UserID) pair is unique; it is the single source of truth for
// "is a member".
type Membership struct {
	GroupID  string
	UserID   string
	Role     Role
	JoinedAt time.Time
}
