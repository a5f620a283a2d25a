package store

import (
	"context"
	"errors"
	"time"

	"github.com/nichenest/nichenest/internal/groups/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
//
// The uniqueness constraints carried by the schema — the (group, user)
// primary key on memberships and the partial unique indexes on pending
// requests/invitations — are the hard backstop against duplicate-insert
// races; drivers surface violations as ErrAlreadyExists.
type Store interface {
	Users() Users
	Groups() Groups
	Memberships() Memberships
	MemberRequests() MemberRequests
	Invitations() Invitations
	Notifications() Notifications

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction: rolled back when fn returns
	// an error, committed otherwise. Every multi-step membership mutation
	// goes through this.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username is taken.
	CreateUser(ctx context.Context, u domain.User) error

	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// SearchUsers matches usernames and display names by prefix, for the
	// invite picker.
	SearchUsers(ctx context.Context, query string, limit int) ([]domain.User, error)
}

type Groups interface {
	// CreateGroup inserts a new group. Returns ErrAlreadyExists when the
	// name is taken.
	CreateGroup(ctx context.Context, g domain.Group) error

	GetGroupByID(ctx context.Context, id string) (domain.Group, error)

	// ListGroupsForUser returns the groups the user is a member of, newest
	// membership first.
	ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error)

	// ListPublicGroups returns public groups with member counts for the
	// discovery page, newest first.
	ListPublicGroups(ctx context.Context, limit int) ([]domain.GroupSummary, error)

	// UpdateGroupSettings mutates description and privacy and bumps
	// updated_at. The name and owner are immutable.
	UpdateGroupSettings(ctx context.Context, groupID, description string, privacy domain.Privacy) error

	// DeleteGroup removes the group; memberships, requests, invitations
	// cascade per schema.
	DeleteGroup(ctx context.Context, groupID string) error
}

type Memberships interface {
	// AddMember is a hard insert. Returns ErrAlreadyExists when a
	// membership already exists for (group, user) — callers decide whether
	// that is a conflict (join, approve) or fine (never: those use Upsert).
	AddMember(ctx context.Context, m domain.Membership) error

	// UpsertMember is the idempotent insert-or-update-role variant used by
	// invitation acceptance, where the invitee may have become a member
	// through a concurrently approved join request.
	UpsertMember(ctx context.Context, m domain.Membership) error

	GetMembership(ctx context.Context, groupID, userID string) (domain.Membership, error)

	IsMember(ctx context.Context, groupID, userID string) (bool, error)

	// IsOwner is true only for the row with role=owner.
	IsOwner(ctx context.Context, groupID, userID string) (bool, error)

	// RemoveMember deletes the membership row. The owner-protection rule is
	// enforced by the service layer before deletion.
	RemoveMember(ctx context.Context, groupID, userID string) error

	// ListMembers returns the group's members with user display fields,
	// owner first then by join date.
	ListMembers(ctx context.Context, groupID string) ([]domain.MemberInfo, error)

	CountMembers(ctx context.Context, groupID string) (int, error)
}

type MemberRequests interface {
	// CreateRequest inserts a pending join request. Returns
	// ErrAlreadyExists when a pending request already exists for
	// (group, user).
	CreateRequest(ctx context.Context, r domain.MemberRequest) error

	GetRequestByID(ctx context.Context, id string) (domain.MemberRequest, error)

	HasPendingRequest(ctx context.Context, groupID, userID string) (bool, error)

	// ListPendingForGroup returns pending requests with requester display
	// fields, newest first.
	ListPendingForGroup(ctx context.Context, groupID string) ([]domain.RequestInfo, error)

	// ResolveRequest flips a pending request to approved or denied. Returns
	// ErrNotFound when the request is missing or no longer pending, which
	// makes double resolution observable to callers.
	ResolveRequest(ctx context.Context, id string, status domain.RequestStatus) error

	// DeleteResolvedBefore removes approved/denied rows older than cutoff
	// (housekeeping).
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) error
}

type Invitations interface {
	// CreateInvitation inserts a pending invitation. Returns
	// ErrAlreadyExists when a pending invitation already exists for
	// (group, invitee).
	CreateInvitation(ctx context.Context, inv domain.Invitation) error

	GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error)

	HasPendingInvitation(ctx context.Context, groupID, inviteeID string) (bool, error)

	// ListPendingForInvitee returns the user's pending invitations with
	// group and inviter names, newest first.
	ListPendingForInvitee(ctx context.Context, inviteeID string) ([]domain.InvitationInfo, error)

	// ResolveInvitation flips a pending invitation to accepted or declined.
	// Returns ErrNotFound when the invitation is missing or no longer
	// pending.
	ResolveInvitation(ctx context.Context, id string, status domain.InvitationStatus) error

	// DeleteResolvedBefore removes accepted/declined rows older than cutoff
	// (housekeeping).
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) error
}

type Notifications interface {
	CreateNotification(ctx context.Context, n domain.Notification) error

	// ListForUser returns the user's latest notifications, newest first.
	ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)

	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkRead marks one notification read; scoped to the owning user so a
	// caller can never touch someone else's notifications.
	MarkRead(ctx context.Context, id, userID string) error

	MarkAllRead(ctx context.Context, userID string) error

	// DeleteReadBefore removes read rows older than cutoff (housekeeping).
	DeleteReadBefore(ctx context.Context, cutoff time.Time) error
}
