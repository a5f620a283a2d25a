package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nichenest/nichenest/internal/groups/domain"
)

func TestInvite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	notifications := &NotificationService{Store: st}
	svc := &InvitationService{Store: st, Notifier: notifications}

	owner := seedUser(t, st, "owner")
	invitee := seedUser(t, st, "invitee")
	member := seedUser(t, st, "member")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	require.NoError(t, st.Memberships().AddMember(ctx, domain.Membership{
		GroupID: group.ID, UserID: member.ID, Role: domain.RoleMember,
	}))

	t.Run("non-owner cannot invite", func(t *testing.T) {
		_, err := svc.Invite(ctx, group.ID, member.ID, invitee.ID)
		require.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("unknown invitee", func(t *testing.T) {
		_, err := svc.Invite(ctx, group.ID, owner.ID, "missing")
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("cannot invite an existing member", func(t *testing.T) {
		_, err := svc.Invite(ctx, group.ID, owner.ID, member.ID)
		require.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("invite succeeds and notifies the invitee", func(t *testing.T) {
		inv, err := svc.Invite(ctx, group.ID, owner.ID, invitee.ID)
		require.NoError(t, err)
		require.Equal(t, domain.InvitationPending, inv.Status)

		list, unread, err := notifications.Latest(ctx, invitee.ID, 10)
		require.NoError(t, err)
		require.Equal(t, 1, unread)
		require.Equal(t, "Group Invitation", list[0].Title)
	})

	t.Run("duplicate invitation is rejected", func(t *testing.T) {
		_, err := svc.Invite(ctx, group.ID, owner.ID, invitee.ID)
		require.ErrorIs(t, err, ErrAlreadyInvited)
	})
}

func TestRespondAccept(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	notifications := &NotificationService{Store: st}
	svc := &InvitationService{Store: st, Notifier: notifications}

	owner := seedUser(t, st, "owner")
	invitee := seedUser(t, st, "invitee")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	inv, err := svc.Invite(ctx, group.ID, owner.ID, invitee.ID)
	require.NoError(t, err)

	t.Run("only the invitee may respond", func(t *testing.T) {
		require.ErrorIs(t, svc.Respond(ctx, inv.ID, owner.ID, ResponseAccept), ErrNotInvitee)
	})

	t.Run("accept makes the invitee a member and notifies the inviter", func(t *testing.T) {
		require.NoError(t, svc.Respond(ctx, inv.ID, invitee.ID, ResponseAccept))

		member, err := st.Memberships().IsMember(ctx, group.ID, invitee.ID)
		require.NoError(t, err)
		require.True(t, member)

		list, _, err := notifications.Latest(ctx, owner.ID, 10)
		require.NoError(t, err)
		require.Equal(t, "Invitation Accepted", list[0].Title)
	})

	t.Run("resolved invitation cannot be responded to again", func(t *testing.T) {
		require.ErrorIs(t, svc.Respond(ctx, inv.ID, invitee.ID, ResponseAccept), ErrInvitationNotFound)
		require.ErrorIs(t, svc.Respond(ctx, inv.ID, invitee.ID, ResponseDecline), ErrInvitationNotFound)
	})
}

func TestRespondDecline(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	notifications := &NotificationService{Store: st}
	svc := &InvitationService{Store: st, Notifier: notifications}

	owner := seedUser(t, st, "owner")
	invitee := seedUser(t, st, "invitee")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	inv, err := svc.Invite(ctx, group.ID, owner.ID, invitee.ID)
	require.NoError(t, err)

	ownerBefore, _, err := notifications.Latest(ctx, owner.ID, 10)
	require.NoError(t, err)

	require.NoError(t, svc.Respond(ctx, inv.ID, invitee.ID, ResponseDecline))

	t.Run("invitee does not become a member", func(t *testing.T) {
		member, err := st.Memberships().IsMember(ctx, group.ID, invitee.ID)
		require.NoError(t, err)
		require.False(t, member)
	})

	t.Run("decline sends no notification", func(t *testing.T) {
		ownerAfter, _, err := notifications.Latest(ctx, owner.ID, 10)
		require.NoError(t, err)
		require.Len(t, ownerAfter, len(ownerBefore))
	})

	t.Run("owner may invite again after a decline", func(t *testing.T) {
		_, err := svc.Invite(ctx, group.ID, owner.ID, invitee.ID)
		require.NoError(t, err)
	})
}

func TestRespondValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &InvitationService{Store: st}

	user := seedUser(t, st, "user")

	require.ErrorIs(t, svc.Respond(ctx, "missing", user.ID, ResponseAccept), ErrInvitationNotFound)
	require.ErrorIs(t, svc.Respond(ctx, "missing", user.ID, "maybe"), ErrInvalidResponse)
}

func TestAcceptAfterRequestApproved(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	membership := &MembershipService{Store: st}
	requests := &MemberRequestService{Store: st}
	invitations := &InvitationService{Store: st}

	owner := seedUser(t, st, "owner")
	user := seedUser(t, st, "user")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	// Invitation goes out first, then the owner approves a join request
	// that raced in through another tab before the user accepts.
	inv, err := invitations.Invite(ctx, group.ID, owner.ID, user.ID)
	require.NoError(t, err)

	require.NoError(t, st.MemberRequests().CreateRequest(ctx, domain.MemberRequest{
		ID: "req-race", GroupID: group.ID, UserID: user.ID, Status: domain.RequestPending,
	}))
	require.NoError(t, requests.Approve(ctx, group.ID, "req-race", owner.ID))

	// Acceptance upserts, so the existing membership stays a single row.
	require.NoError(t, invitations.Respond(ctx, inv.ID, user.ID, ResponseAccept))

	count, err := st.Memberships().CountMembers(ctx, group.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	_, err = membership.Join(ctx, group.ID, user.ID)
	require.ErrorIs(t, err, ErrAlreadyMember)
}

func TestListPendingForUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &InvitationService{Store: st}

	owner := seedUser(t, st, "owner")
	invitee := seedUser(t, st, "invitee")
	groupA := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)
	groupB := seedGroup(t, st, "Hikers", domain.PrivacyPublic, owner.ID)

	_, err := svc.Invite(ctx, groupA.ID, owner.ID, invitee.ID)
	require.NoError(t, err)
	invB, err := svc.Invite(ctx, groupB.ID, owner.ID, invitee.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Respond(ctx, invB.ID, invitee.ID, ResponseDecline))

	list, err := svc.ListPendingForUser(ctx, invitee.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Bikers", list[0].GroupName)
	require.Equal(t, "owner", list[0].InviterUsername)
}
