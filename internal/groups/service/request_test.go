package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nichenest/nichenest/internal/groups/domain"
)

func TestApproveRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	notifications := &NotificationService{Store: st}
	membership := &MembershipService{Store: st, Notifier: notifications}
	requests := &MemberRequestService{Store: st, Notifier: notifications}

	owner := seedUser(t, st, "owner")
	requester := seedUser(t, st, "requester")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	_, err := membership.Join(ctx, group.ID, requester.ID)
	require.NoError(t, err)
	requestID := pendingRequestID(t, st, group.ID)

	t.Run("non-owner cannot approve", func(t *testing.T) {
		require.ErrorIs(t, requests.Approve(ctx, group.ID, requestID, requester.ID), ErrNotOwner)
	})

	t.Run("owner approves", func(t *testing.T) {
		require.NoError(t, requests.Approve(ctx, group.ID, requestID, owner.ID))

		member, err := st.Memberships().IsMember(ctx, group.ID, requester.ID)
		require.NoError(t, err)
		require.True(t, member)

		list, _, err := notifications.Latest(ctx, requester.ID, 10)
		require.NoError(t, err)
		require.Equal(t, "Group Request Approved", list[0].Title)
	})

	t.Run("second approval fails, membership stays single", func(t *testing.T) {
		require.ErrorIs(t, requests.Approve(ctx, group.ID, requestID, owner.ID), ErrRequestNotFound)

		count, err := st.Memberships().CountMembers(ctx, group.ID)
		require.NoError(t, err)
		require.Equal(t, 2, count)
	})
}

func TestDenyRequest(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	notifications := &NotificationService{Store: st}
	membership := &MembershipService{Store: st, Notifier: notifications}
	requests := &MemberRequestService{Store: st, Notifier: notifications}

	owner := seedUser(t, st, "owner")
	requester := seedUser(t, st, "requester")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	_, err := membership.Join(ctx, group.ID, requester.ID)
	require.NoError(t, err)
	requestID := pendingRequestID(t, st, group.ID)

	require.NoError(t, requests.Deny(ctx, group.ID, requestID, owner.ID))

	t.Run("requester does not become a member", func(t *testing.T) {
		member, err := st.Memberships().IsMember(ctx, group.ID, requester.ID)
		require.NoError(t, err)
		require.False(t, member)
	})

	t.Run("requester is notified", func(t *testing.T) {
		list, _, err := notifications.Latest(ctx, requester.ID, 10)
		require.NoError(t, err)
		require.Equal(t, "Group Request Denied", list[0].Title)
	})

	t.Run("denied request cannot be approved afterwards", func(t *testing.T) {
		require.ErrorIs(t, requests.Approve(ctx, group.ID, requestID, owner.ID), ErrRequestNotFound)
	})

	t.Run("requester may ask again after denial", func(t *testing.T) {
		outcome, err := membership.Join(ctx, group.ID, requester.ID)
		require.NoError(t, err)
		require.Equal(t, JoinOutcomeRequested, outcome)
	})
}

func TestApproveAfterInvitationAccepted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	membership := &MembershipService{Store: st}
	requests := &MemberRequestService{Store: st}
	invitations := &InvitationService{Store: st}

	owner := seedUser(t, st, "owner")
	user := seedUser(t, st, "user")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	// The user requests to join, then the owner independently invites them
	// and the user accepts before the request is reviewed.
	_, err := membership.Join(ctx, group.ID, user.ID)
	require.NoError(t, err)
	requestID := pendingRequestID(t, st, group.ID)

	inv, err := invitations.Invite(ctx, group.ID, owner.ID, user.ID)
	require.NoError(t, err)
	require.NoError(t, invitations.Respond(ctx, inv.ID, user.ID, ResponseAccept))

	// Approving the stale request now conflicts with the existing
	// membership; the approval rolls back and the request stays pending.
	require.ErrorIs(t, requests.Approve(ctx, group.ID, requestID, owner.ID), ErrAlreadyMember)

	pending, err := st.MemberRequests().HasPendingRequest(ctx, group.ID, user.ID)
	require.NoError(t, err)
	require.True(t, pending)

	// Denying it clears the queue without touching the membership.
	require.NoError(t, requests.Deny(ctx, group.ID, requestID, owner.ID))
	member, err := st.Memberships().IsMember(ctx, group.ID, user.ID)
	require.NoError(t, err)
	require.True(t, member)
}

func TestListPendingRequests(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	membership := &MembershipService{Store: st}
	requests := &MemberRequestService{Store: st}

	owner := seedUser(t, st, "owner")
	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	_, err := membership.Join(ctx, group.ID, alice.ID)
	require.NoError(t, err)
	_, err = membership.Join(ctx, group.ID, bob.ID)
	require.NoError(t, err)

	t.Run("owner sees requester display fields", func(t *testing.T) {
		list, err := requests.ListPending(ctx, group.ID, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, r := range list {
			require.NotEmpty(t, r.Username)
			require.Equal(t, domain.RequestPending, r.Status)
		}
	})

	t.Run("non-owner is refused", func(t *testing.T) {
		_, err := requests.ListPending(ctx, group.ID, alice.ID)
		require.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := requests.ListPending(ctx, "missing", owner.ID)
		require.ErrorIs(t, err, ErrGroupNotFound)
	})
}
