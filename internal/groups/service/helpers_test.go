package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nichenest/nichenest/internal/groups/domain"
	"github.com/nichenest/nichenest/internal/groups/store"
	"github.com/nichenest/nichenest/internal/groups/store/drivers/sqlite"
	"github.com/nichenest/nichenest/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedUser(t *testing.T, s store.Store, username string) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		DisplayName:  username,
		PasswordHash: "unused",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func seedGroup(t *testing.T, s store.Store, name string, privacy domain.Privacy, ownerID string) domain.Group {
	t.Helper()

	now := time.Now().UTC()
	g := domain.Group{
		ID:          idx.New().String(),
		Name:        name,
		Description: "a test group",
		Privacy:     privacy,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	ctx := context.Background()
	require.NoError(t, s.Groups().CreateGroup(ctx, g))
	require.NoError(t, s.Memberships().AddMember(ctx, domain.Membership{
		GroupID:  g.ID,
		UserID:   ownerID,
		Role:     domain.RoleOwner,
		JoinedAt: now,
	}))
	return g
}

func pendingRequestID(t *testing.T, s store.Store, groupID string) string {
	t.Helper()

	requests, err := s.MemberRequests().ListPendingForGroup(context.Background(), groupID)
	require.NoError(t, err)
	require.NotEmpty(t, requests)
	return requests[0].ID
}
