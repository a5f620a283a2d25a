package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nichenest/nichenest/internal/groups/domain"
	"github.com/nichenest/nichenest/internal/groups/store"
	"github.com/nichenest/nichenest/pkg/idx"
	"github.com/nichenest/nichenest/pkg/slogx"
)

var (
	ErrGroupNotFound     = errors.New("group not found")
	ErrNotMember         = errors.New("user is not a member of this group")
	ErrAlreadyMember     = errors.New("user is already a member of this group")
	ErrAlreadyRequested  = errors.New("a join request is already pending for this group")
	ErrAlreadyInvited    = errors.New("an invitation is already pending for this group")
	ErrNotOwner          = errors.New("only the group owner may perform this action")
	ErrOwnerCannotLeave  = errors.New("the group owner cannot leave the group")
	ErrCannotRemoveOwner = errors.New("the group owner cannot be removed")
)

// JoinOutcome reports what a join attempt produced: immediate membership for
// public groups, a pending request for private ones.
type JoinOutcome string

const (
	JoinOutcomeJoined    JoinOutcome = "joined"
	JoinOutcomeRequested JoinOutcome = "requested"
)

// MembershipService owns the membership ledger: joining, leaving and
// removal. All mutations run inside a single transaction so the membership
// checks and the write they guard see the same state.
type MembershipService struct {
	Store    store.Store
	Notifier Notifier
}

// Join processes a join attempt against the group's privacy setting. Public
// groups admit the user immediately; private groups record a pending request
// and notify the owner. A user with any standing toward the group (member,
// pending request, pending invitation) cannot join again.
func (s *MembershipService) Join(ctx context.Context, groupID, userID string) (JoinOutcome, error) {
	log := slogx.FromContext(ctx)

	var (
		outcome JoinOutcome
		group   domain.Group
		user    domain.User
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error

		// 1. The group must exist; its privacy decides the path.
		group, err = tx.Groups().GetGroupByID(ctx, groupID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		} else if err != nil {
			return fmt.Errorf("load group: %w", err)
		}

		// 2. Reject any existing standing toward the group.
		if err := checkNoStanding(ctx, tx, groupID, userID); err != nil {
			return err
		}

		// 3. Public: admit now. Private: queue a request for the owner.
		now := time.Now().UTC()
		if group.Privacy == domain.PrivacyPublic {
			err = tx.Memberships().AddMember(ctx, domain.Membership{
				GroupID:  groupID,
				UserID:   userID,
				Role:     domain.RoleMember,
				JoinedAt: now,
			})
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrAlreadyMember
			} else if err != nil {
				return fmt.Errorf("add member: %w", err)
			}
			outcome = JoinOutcomeJoined
			return nil
		}

		user, err = tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load requester: %w", err)
		}

		err = tx.MemberRequests().CreateRequest(ctx, domain.MemberRequest{
			ID:        idx.New().String(),
			GroupID:   groupID,
			UserID:    userID,
			Status:    domain.RequestPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyRequested
		} else if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		outcome = JoinOutcomeRequested
		return nil
	})
	if err != nil {
		return "", err
	}

	if outcome == JoinOutcomeRequested {
		dispatch(ctx, s.Notifier, group.OwnerID,
			"New Group Join Request",
			fmt.Sprintf("%s has requested to join %s", displayName(user), group.Name),
			group.ID,
		)
	}

	log.Info("group join processed",
		slog.String("group_id", groupID),
		slog.String("user_id", userID),
		slog.String("outcome", string(outcome)),
	)
	return outcome, nil
}

// Leave removes the caller's own membership. The owner can never leave; they
// must delete the group instead.
func (s *MembershipService) Leave(ctx context.Context, groupID, userID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Groups().GetGroupByID(ctx, groupID); errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		} else if err != nil {
			return fmt.Errorf("load group: %w", err)
		}

		membership, err := tx.Memberships().GetMembership(ctx, groupID, userID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotMember
		} else if err != nil {
			return fmt.Errorf("load membership: %w", err)
		}
		if membership.Role == domain.RoleOwner {
			return ErrOwnerCannotLeave
		}

		if err := tx.Memberships().RemoveMember(ctx, groupID, userID); err != nil {
			return fmt.Errorf("remove member: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("member left group",
		slog.String("group_id", groupID),
		slog.String("user_id", userID),
	)
	return nil
}

// RemoveMember lets the owner evict a member. The owner's own row is
// untouchable and the removed user is notified.
func (s *MembershipService) RemoveMember(ctx context.Context, groupID, actorID, targetID string) error {
	var group domain.Group
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		group, err = tx.Groups().GetGroupByID(ctx, groupID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		} else if err != nil {
			return fmt.Errorf("load group: %w", err)
		}

		owner, err := tx.Memberships().IsOwner(ctx, groupID, actorID)
		if err != nil {
			return fmt.Errorf("check owner: %w", err)
		}
		if !owner {
			return ErrNotOwner
		}

		membership, err := tx.Memberships().GetMembership(ctx, groupID, targetID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotMember
		} else if err != nil {
			return fmt.Errorf("load membership: %w", err)
		}
		if membership.Role == domain.RoleOwner {
			return ErrCannotRemoveOwner
		}

		if err := tx.Memberships().RemoveMember(ctx, groupID, targetID); err != nil {
			return fmt.Errorf("remove member: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	dispatch(ctx, s.Notifier, targetID,
		"Removed from Group",
		fmt.Sprintf("You have been removed from the group: %s", group.Name),
		group.ID,
	)

	slogx.FromContext(ctx).Info("member removed from group",
		slog.String("group_id", groupID),
		slog.String("actor_id", actorID),
		slog.String("target_id", targetID),
	)
	return nil
}

// ListMembers returns the group's roster, owner first. Private group rosters
// are visible to members only.
func (s *MembershipService) ListMembers(ctx context.Context, groupID, callerID string) ([]domain.MemberInfo, error) {
	if err := s.requireAccess(ctx, groupID, callerID); err != nil {
		return nil, err
	}
	return s.Store.Memberships().ListMembers(ctx, groupID)
}

// CanAccess reports whether the user may view the group's content: always
// for public groups, members only for private ones.
func (s *MembershipService) CanAccess(ctx context.Context, groupID, userID string) (bool, error) {
	group, err := s.Store.Groups().GetGroupByID(ctx, groupID)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrGroupNotFound
	} else if err != nil {
		return false, err
	}
	if group.Privacy == domain.PrivacyPublic {
		return true, nil
	}
	return s.Store.Memberships().IsMember(ctx, groupID, userID)
}

func (s *MembershipService) requireAccess(ctx context.Context, groupID, userID string) error {
	ok, err := s.CanAccess(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotMember
	}
	return nil
}

// checkNoStanding rejects a join attempt when the user already has any
// standing toward the group. The checks run inside the caller's transaction;
// the schema's unique constraints remain the backstop for races between
// transactions.
func checkNoStanding(ctx context.Context, tx store.Tx, groupID, userID string) error {
	member, err := tx.Memberships().IsMember(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if member {
		return ErrAlreadyMember
	}

	requested, err := tx.MemberRequests().HasPendingRequest(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check pending request: %w", err)
	}
	if requested {
		return ErrAlreadyRequested
	}

	invited, err := tx.Invitations().HasPendingInvitation(ctx, groupID, userID)
	if err != nil {
		return fmt.Errorf("check pending invitation: %w", err)
	}
	if invited {
		return ErrAlreadyInvited
	}
	return nil
}

// displayName prefers the display name and falls back to the username.
func displayName(u domain.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
