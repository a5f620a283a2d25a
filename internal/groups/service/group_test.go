package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nichenest/nichenest/internal/groups/domain"
)

func TestCreateGroup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &GroupService{Store: st}

	owner := seedUser(t, st, "owner")

	t.Run("creates group with owner membership", func(t *testing.T) {
		group, err := svc.Create(ctx, owner.ID, "Hikers", "We hike.", domain.PrivacyPublic)
		require.NoError(t, err)
		require.NotEmpty(t, group.ID)

		isOwner, err := st.Memberships().IsOwner(ctx, group.ID, owner.ID)
		require.NoError(t, err)
		require.True(t, isOwner)

		count, err := st.Memberships().CountMembers(ctx, group.ID)
		require.NoError(t, err)
		require.Equal(t, 1, count)
	})

	t.Run("duplicate name is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, owner.ID, "Hikers", "Another hiking club.", domain.PrivacyPublic)
		require.ErrorIs(t, err, ErrGroupNameTaken)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Create(ctx, owner.ID, "ab", "Too short a name.", domain.PrivacyPublic)
		require.ErrorIs(t, err, domain.ErrInvalidGroupName)

		_, err = svc.Create(ctx, owner.ID, "Valid Name", "", domain.PrivacyPublic)
		require.ErrorIs(t, err, domain.ErrInvalidGroupDescription)

		_, err = svc.Create(ctx, owner.ID, "Valid Name", "A description.", "secret")
		require.ErrorIs(t, err, domain.ErrInvalidPrivacy)
	})

	t.Run("html is stripped from name and description", func(t *testing.T) {
		group, err := svc.Create(ctx, owner.ID, "<b>Bikers</b>", "<script>alert(1)</script>We ride.", domain.PrivacyPrivate)
		require.NoError(t, err)
		require.Equal(t, "Bikers", group.Name)
		require.Equal(t, "We ride.", group.Description)
	})
}

func TestGetGroupView(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	groups := &GroupService{Store: st}
	membership := &MembershipService{Store: st}

	owner := seedUser(t, st, "owner")
	requester := seedUser(t, st, "requester")
	outsider := seedUser(t, st, "outsider")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	_, err := membership.Join(ctx, group.ID, requester.ID)
	require.NoError(t, err)

	t.Run("owner view", func(t *testing.T) {
		view, err := groups.Get(ctx, group.ID, owner.ID)
		require.NoError(t, err)
		require.True(t, view.ViewerIsMember)
		require.True(t, view.ViewerIsOwner)
		require.Equal(t, 1, view.MemberCount)
	})

	t.Run("requester view", func(t *testing.T) {
		view, err := groups.Get(ctx, group.ID, requester.ID)
		require.NoError(t, err)
		require.False(t, view.ViewerIsMember)
		require.True(t, view.ViewerHasRequested)
	})

	t.Run("outsider view", func(t *testing.T) {
		view, err := groups.Get(ctx, group.ID, outsider.ID)
		require.NoError(t, err)
		require.False(t, view.ViewerIsMember)
		require.False(t, view.ViewerHasRequested)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := groups.Get(ctx, "missing", owner.ID)
		require.ErrorIs(t, err, ErrGroupNotFound)
	})
}

func TestDiscoverAndListForUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &GroupService{Store: st}

	owner := seedUser(t, st, "owner")
	member := seedUser(t, st, "member")
	public := seedGroup(t, st, "Hikers", domain.PrivacyPublic, owner.ID)
	seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	require.NoError(t, st.Memberships().AddMember(ctx, domain.Membership{
		GroupID: public.ID, UserID: member.ID, Role: domain.RoleMember,
	}))

	t.Run("discover lists only public groups with counts", func(t *testing.T) {
		summaries, err := svc.Discover(ctx, 0)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		require.Equal(t, "Hikers", summaries[0].Name)
		require.Equal(t, 2, summaries[0].MemberCount)
	})

	t.Run("list for user follows memberships", func(t *testing.T) {
		mine, err := svc.ListForUser(ctx, member.ID)
		require.NoError(t, err)
		require.Len(t, mine, 1)
		require.Equal(t, public.ID, mine[0].ID)

		owners, err := svc.ListForUser(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, owners, 2)
	})
}

func TestUpdateSettings(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	svc := &GroupService{Store: st}

	owner := seedUser(t, st, "owner")
	other := seedUser(t, st, "other")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	t.Run("owner flips privacy", func(t *testing.T) {
		require.NoError(t, svc.UpdateSettings(ctx, group.ID, owner.ID, "Now open to all.", domain.PrivacyPublic))

		updated, err := st.Groups().GetGroupByID(ctx, group.ID)
		require.NoError(t, err)
		require.Equal(t, domain.PrivacyPublic, updated.Privacy)
		require.Equal(t, "Now open to all.", updated.Description)
	})

	t.Run("non-owner is refused", func(t *testing.T) {
		require.ErrorIs(t, svc.UpdateSettings(ctx, group.ID, other.ID, "Hijacked.", domain.PrivacyPublic), ErrNotOwner)
	})

	t.Run("invalid privacy rejected", func(t *testing.T) {
		require.ErrorIs(t, svc.UpdateSettings(ctx, group.ID, owner.ID, "Fine.", "hidden"), domain.ErrInvalidPrivacy)
	})
}

func TestDeleteGroup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	groups := &GroupService{Store: st}
	membership := &MembershipService{Store: st}

	owner := seedUser(t, st, "owner")
	requester := seedUser(t, st, "requester")
	group := seedGroup(t, st, "Bikers", domain.PrivacyPrivate, owner.ID)

	_, err := membership.Join(ctx, group.ID, requester.ID)
	require.NoError(t, err)

	t.Run("non-owner cannot delete", func(t *testing.T) {
		require.ErrorIs(t, groups.Delete(ctx, group.ID, requester.ID), ErrNotOwner)
	})

	t.Run("delete cascades to requests and memberships", func(t *testing.T) {
		require.NoError(t, groups.Delete(ctx, group.ID, owner.ID))

		_, err := st.Groups().GetGroupByID(ctx, group.ID)
		require.Error(t, err)

		pending, err := st.MemberRequests().HasPendingRequest(ctx, group.ID, requester.ID)
		require.NoError(t, err)
		require.False(t, pending)
	})
}
