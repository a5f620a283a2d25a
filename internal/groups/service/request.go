package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nichenest/nichenest/internal/groups/domain"
	"github.com/nichenest/nichenest/internal/groups/store"
	"github.com/nichenest/nichenest/pkg/slogx"
)

var ErrRequestNotFound = errors.New("join request not found or already resolved")

// MemberRequestService resolves the private-group join request queue. Only
// the group owner may approve or deny, and resolution is transactional: a
// request that cannot be honoured (the requester slipped in through an
// accepted invitation meanwhile) stays pending rather than being half
// resolved.
type MemberRequestService struct {
	Store    store.Store
	Notifier Notifier
}

// ListPending returns the group's pending requests for the owner's review.
func (s *MemberRequestService) ListPending(ctx context.Context, groupID, callerID string) ([]domain.RequestInfo, error) {
	if _, err := s.Store.Groups().GetGroupByID(ctx, groupID); errors.Is(err, store.ErrNotFound) {
		return nil, ErrGroupNotFound
	} else if err != nil {
		return nil, err
	}

	owner, err := s.Store.Memberships().IsOwner(ctx, groupID, callerID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, ErrNotOwner
	}
	return s.Store.MemberRequests().ListPendingForGroup(ctx, groupID)
}

// Approve grants a pending request: the requester becomes a member and the
// request flips to approved in the same transaction. If the membership
// insert conflicts the whole approval rolls back and the request remains
// pending.
func (s *MemberRequestService) Approve(ctx context.Context, groupID, requestID, approverID string) error {
	var (
		group domain.Group
		req   domain.MemberRequest
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		group, req, err = loadPendingRequest(ctx, tx, groupID, requestID, approverID)
		if err != nil {
			return err
		}

		err = tx.Memberships().AddMember(ctx, domain.Membership{
			GroupID:  groupID,
			UserID:   req.UserID,
			Role:     domain.RoleMember,
			JoinedAt: time.Now().UTC(),
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrAlreadyMember
		} else if err != nil {
			return fmt.Errorf("add member: %w", err)
		}

		err = tx.MemberRequests().ResolveRequest(ctx, requestID, domain.RequestApproved)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		} else if err != nil {
			return fmt.Errorf("resolve request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	dispatch(ctx, s.Notifier, req.UserID,
		"Group Request Approved",
		fmt.Sprintf("Your request to join %s has been approved!", group.Name),
		group.ID,
	)

	slogx.FromContext(ctx).Info("join request approved",
		slog.String("group_id", groupID),
		slog.String("request_id", requestID),
		slog.String("requester_id", req.UserID),
	)
	return nil
}

// Deny rejects a pending request and notifies the requester.
func (s *MemberRequestService) Deny(ctx context.Context, groupID, requestID, denierID string) error {
	var (
		group domain.Group
		req   domain.MemberRequest
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		group, req, err = loadPendingRequest(ctx, tx, groupID, requestID, denierID)
		if err != nil {
			return err
		}

		err = tx.MemberRequests().ResolveRequest(ctx, requestID, domain.RequestDenied)
		if errors.Is(err, store.ErrNotFound) {
			return ErrRequestNotFound
		} else if err != nil {
			return fmt.Errorf("resolve request: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	dispatch(ctx, s.Notifier, req.UserID,
		"Group Request Denied",
		fmt.Sprintf("Your request to join %s has been denied.", group.Name),
		group.ID,
	)

	slogx.FromContext(ctx).Info("join request denied",
		slog.String("group_id", groupID),
		slog.String("request_id", requestID),
		slog.String("requester_id", req.UserID),
	)
	return nil
}

// loadPendingRequest validates the common preconditions for resolving a
// request: the group exists, the actor owns it, and the request is a pending
// one belonging to that group.
func loadPendingRequest(ctx context.Context, tx store.Tx, groupID, requestID, actorID string) (domain.Group, domain.MemberRequest, error) {
	group, err := tx.Groups().GetGroupByID(ctx, groupID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Group{}, domain.MemberRequest{}, ErrGroupNotFound
	} else if err != nil {
		return domain.Group{}, domain.MemberRequest{}, fmt.Errorf("load group: %w", err)
	}

	owner, err := tx.Memberships().IsOwner(ctx, groupID, actorID)
	if err != nil {
		return domain.Group{}, domain.MemberRequest{}, fmt.Errorf("check owner: %w", err)
	}
	if !owner {
		return domain.Group{}, domain.MemberRequest{}, ErrNotOwner
	}

	req, err := tx.MemberRequests().GetRequestByID(ctx, requestID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Group{}, domain.MemberRequest{}, ErrRequestNotFound
	} else if err != nil {
		return domain.Group{}, domain.MemberRequest{}, fmt.Errorf("load request: %w", err)
	}
	if req.GroupID != groupID || req.Status != domain.RequestPending {
		return domain.Group{}, domain.MemberRequest{}, ErrRequestNotFound
	}
	return group, req, nil
}
