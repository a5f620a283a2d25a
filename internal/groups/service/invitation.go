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
	ErrInvitationNotFound = errors.New("invitation not found or already resolved")
	ErrNotInvitee         = errors.New("invitation belongs to another user")
	ErrInvalidResponse    = errors.New("response must be accept or decline")
)

// InvitationResponse is the invitee's answer to a pending invitation.
type InvitationResponse string

const (
	ResponseAccept  InvitationResponse = "accept"
	ResponseDecline InvitationResponse = "decline"
)

// InvitationService runs the invitation queue: owners invite, invitees
// accept or decline. Acceptance upserts the membership because the invitee
// may have joined through an approved request while the invitation sat
// pending.
type InvitationService struct {
	Store    store.Store
	Notifier Notifier
}

// Invite creates a pending invitation from the group owner to another user
// and notifies the invitee.
func (s *InvitationService) Invite(ctx context.Context, groupID, inviterID, inviteeID string) (domain.Invitation, error) {
	var (
		group   domain.Group
		inviter domain.User
		inv     domain.Invitation
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		group, err = tx.Groups().GetGroupByID(ctx, groupID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		} else if err != nil {
			return fmt.Errorf("load group: %w", err)
		}

		owner, err := tx.Memberships().IsOwner(ctx, groupID, inviterID)
		if err != nil {
			return fmt.Errorf("check owner: %w", err)
		}
		if !owner {
			return ErrNotOwner
		}

		inviter, err = tx.Users().GetUserByID(ctx, inviterID)
		if err != nil {
			return fmt.Errorf("load inviter: %w", err)
		}

		if _, err = tx.Users().GetUserByID(ctx, inviteeID); errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		} else if err != nil {
			return fmt.Errorf("load invitee: %w", err)
		}

		member, err := tx.Memberships().IsMember(ctx, groupID, inviteeID)
		if err != nil {
			return fmt.Errorf("check membership: %w", err)
		}
		if member {
			return ErrAlreadyMember
		}

		invited, err := tx.Invitations().HasPendingInvitation(ctx, groupID, inviteeID)
		if err != nil {
			return fmt.Errorf("check pending invitation: %w", err)
		}
		if invited {
			return ErrAlreadyInvited
		}

		now := time.Now().UTC()
		inv = domain.Invitation{
			ID:        idx.New().String(),
			GroupID:   groupID,
			InviterID: inviterID,
			InviteeID: inviteeID,
			Status:    domain.InvitationPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = tx.Invitations().CreateInvitation(ctx, inv)
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyInvited
		} else if err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Invitation{}, err
	}

	dispatch(ctx, s.Notifier, inviteeID,
		"Group Invitation",
		fmt.Sprintf("%s invited you to join the group: %s", inviter.Username, group.Name),
		group.ID,
	)

	slogx.FromContext(ctx).Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("group_id", groupID),
		slog.String("invitee_id", inviteeID),
	)
	return inv, nil
}

// ListPendingForUser returns the caller's pending invitations.
func (s *InvitationService) ListPendingForUser(ctx context.Context, userID string) ([]domain.InvitationInfo, error) {
	return s.Store.Invitations().ListPendingForInvitee(ctx, userID)
}

// Respond resolves a pending invitation on behalf of its invitee. Accepting
// makes the invitee a member (idempotently, via upsert) and notifies the
// inviter; declining only flips the status.
func (s *InvitationService) Respond(ctx context.Context, invitationID, userID string, response InvitationResponse) error {
	if response != ResponseAccept && response != ResponseDecline {
		return ErrInvalidResponse
	}

	var (
		group   domain.Group
		invitee domain.User
		inv     domain.Invitation
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		inv, err = tx.Invitations().GetInvitationByID(ctx, invitationID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvitationNotFound
		} else if err != nil {
			return fmt.Errorf("load invitation: %w", err)
		}
		if inv.InviteeID != userID {
			return ErrNotInvitee
		}
		if inv.Status != domain.InvitationPending {
			return ErrInvitationNotFound
		}

		group, err = tx.Groups().GetGroupByID(ctx, inv.GroupID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrGroupNotFound
		} else if err != nil {
			return fmt.Errorf("load group: %w", err)
		}

		if response == ResponseDecline {
			err = tx.Invitations().ResolveInvitation(ctx, invitationID, domain.InvitationDeclined)
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvitationNotFound
			}
			return err
		}

		invitee, err = tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("load invitee: %w", err)
		}

		err = tx.Invitations().ResolveInvitation(ctx, invitationID, domain.InvitationAccepted)
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvitationNotFound
		} else if err != nil {
			return fmt.Errorf("resolve invitation: %w", err)
		}

		// Upsert, not insert: the invitee may already be a member through a
		// join request approved after this invitation was sent.
		err = tx.Memberships().UpsertMember(ctx, domain.Membership{
			GroupID:  inv.GroupID,
			UserID:   userID,
			Role:     domain.RoleMember,
			JoinedAt: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("upsert member: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if response == ResponseAccept {
		dispatch(ctx, s.Notifier, inv.InviterID,
			"Invitation Accepted",
			fmt.Sprintf("%s accepted your invitation to join %s", invitee.Username, group.Name),
			group.ID,
		)
	}

	slogx.FromContext(ctx).Info("invitation resolved",
		slog.String("invitation_id", invitationID),
		slog.String("group_id", inv.GroupID),
		slog.String("response", string(response)),
	)
	return nil
}
