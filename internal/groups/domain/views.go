package domain

import "time"

// Read-model shapes returned by listing queries. They join in the display
// fields the web layer needs so it never has to stitch rows itself.

// MemberInfo is a membership row joined with the member's user record.
type MemberInfo struct {
	UserID      string
	Username    string
	DisplayName string
	Role        Role
	JoinedAt    time.Time
}

// RequestInfo is a pending join request joined with the requester.
type RequestInfo struct {
	MemberRequest

	Username    string
	DisplayName string
}

// InvitationInfo is a pending invitation joined with group and inviter names.
type InvitationInfo struct {
	Invitation

	GroupName       string
	InviterUsername string
}

// GroupSummary is a group joined with its member count, used for discovery
// listings.
type GroupSummary struct {
	Group

	MemberCount int
}
