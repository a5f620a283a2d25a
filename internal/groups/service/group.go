package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/nichenest/nichenest/internal/groups/domain"
	"github.com/nichenest/nichenest/internal/groups/store"
	"github.com/nichenest/nichenest/pkg/idx"
	"github.com/nichenest/nichenest/pkg/slogx"
)

var ErrGroupNameTaken = errors.New("a group with this name already exists")

// sanitizer strips all HTML from user-supplied text before it is persisted.
var sanitizer = bluemonday.StrictPolicy()

func sanitizeText(s string) string {
	return strings.TrimSpace(sanitizer.Sanitize(s))
}

// GroupService handles the group records themselves. Creation writes the
// group and the owner's membership row in one transaction so a group can
// never exist without its owner on the roster.
type GroupService struct {
	Store store.Store
}

// DefaultDiscoverLimit caps the public discovery listing.
const DefaultDiscoverLimit = 50

// Create makes a new group owned by ownerID.
func (s *GroupService) Create(ctx context.Context, ownerID, name, description string, privacy domain.Privacy) (domain.Group, error) {
	now := time.Now().UTC()
	group := domain.Group{
		ID:          idx.New().String(),
		Name:        sanitizeText(name),
		Description: sanitizeText(description),
		Privacy:     privacy,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := group.Validate(); err != nil {
		return domain.Group{}, err
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		err := tx.Groups().CreateGroup(ctx, group)
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrGroupNameTaken
		} else if err != nil {
			return fmt.Errorf("create group: %w", err)
		}

		err = tx.Memberships().AddMember(ctx, domain.Membership{
			GroupID:  group.ID,
			UserID:   ownerID,
			Role:     domain.RoleOwner,
			JoinedAt: now,
		})
		if err != nil {
			return fmt.Errorf("add owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Group{}, err
	}

	slogx.FromContext(ctx).Info("group created",
		slog.String("group_id", group.ID),
		slog.String("owner_id", ownerID),
		slog.String("privacy", string(group.Privacy)),
	)
	return group, nil
}

// GroupView is a group seen through a particular viewer's eyes, with the
// standing flags the web layer renders join/leave controls from.
type GroupView struct {
	domain.Group

	MemberCount        int
	ViewerIsMember     bool
	ViewerIsOwner      bool
	ViewerHasRequested bool
}

// Get returns the group together with the viewer's standing toward it. The
// group's existence is never hidden; content visibility for private groups
// is the concern of CanAccess.
func (s *GroupService) Get(ctx context.Context, groupID, viewerID string) (GroupView, error) {
	group, err := s.Store.Groups().GetGroupByID(ctx, groupID)
	if errors.Is(err, store.ErrNotFound) {
		return GroupView{}, ErrGroupNotFound
	} else if err != nil {
		return GroupView{}, err
	}

	view := GroupView{Group: group}
	if view.MemberCount, err = s.Store.Memberships().CountMembers(ctx, groupID); err != nil {
		return GroupView{}, err
	}

	membership, err := s.Store.Memberships().GetMembership(ctx, groupID, viewerID)
	switch {
	case err == nil:
		view.ViewerIsMember = true
		view.ViewerIsOwner = membership.Role == domain.RoleOwner
	case errors.Is(err, store.ErrNotFound):
		if view.ViewerHasRequested, err = s.Store.MemberRequests().HasPendingRequest(ctx, groupID, viewerID); err != nil {
			return GroupView{}, err
		}
	default:
		return GroupView{}, err
	}
	return view, nil
}

// ListForUser returns the groups the user belongs to, newest membership
// first.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	return s.Store.Groups().ListGroupsForUser(ctx, userID)
}

// Discover returns public groups with member counts, newest first.
func (s *GroupService) Discover(ctx context.Context, limit int) ([]domain.GroupSummary, error) {
	if limit <= 0 || limit > DefaultDiscoverLimit {
		limit = DefaultDiscoverLimit
	}
	return s.Store.Groups().ListPublicGroups(ctx, limit)
}

// UpdateSettings changes the group's description and privacy. Owner only;
// name and owner are immutable.
func (s *GroupService) UpdateSettings(ctx context.Context, groupID, actorID, description string, privacy domain.Privacy) error {
	description = sanitizeText(description)
	if description == "" {
		return domain.ErrInvalidGroupDescription
	}
	if !privacy.Valid() {
		return domain.ErrInvalidPrivacy
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := requireOwner(ctx, tx, groupID, actorID); err != nil {
			return err
		}
		if err := tx.Groups().UpdateGroupSettings(ctx, groupID, description, privacy); err != nil {
			return fmt.Errorf("update settings: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("group settings updated",
		slog.String("group_id", groupID),
		slog.String("privacy", string(privacy)),
	)
	return nil
}

// Delete removes the group and, via cascade, its memberships, requests and
// invitations. Owner only.
func (s *GroupService) Delete(ctx context.Context, groupID, actorID string) error {
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := requireOwner(ctx, tx, groupID, actorID); err != nil {
			return err
		}
		if err := tx.Groups().DeleteGroup(ctx, groupID); err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("group deleted",
		slog.String("group_id", groupID),
		slog.String("actor_id", actorID),
	)
	return nil
}

func requireOwner(ctx context.Context, tx store.Tx, groupID, actorID string) error {
	if _, err := tx.Groups().GetGroupByID(ctx, groupID); errors.Is(err, store.ErrNotFound) {
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
	return nil
}
