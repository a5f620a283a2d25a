package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nichenest/nichenest/internal/groups/domain"
	"github.com/nichenest/nichenest/internal/groups/store"
	"github.com/nichenest/nichenest/pkg/idx"
	"github.com/nichenest/nichenest/pkg/slogx"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notifier is the narrow port through which the membership services deliver
// notifications. Delivery is fire-and-forget: a Notify failure must never
// affect the mutation that triggered it.
type Notifier interface {
	Notify(
		ctx context.Context,
		recipientID string,
		kind domain.NotificationKind,
		title, message, relatedGroupID string,
	) (string, error)
}

// NotificationService is the store-backed Notifier plus the read side the
// web layer polls.
type NotificationService struct {
	Store store.Store
}

const DefaultNotificationLimit = 10

func (s *NotificationService) Notify(
	ctx context.Context,
	recipientID string,
	kind domain.NotificationKind,
	title, message, relatedGroupID string,
) (string, error) {
	n := domain.Notification{
		ID:             idx.New().String(),
		UserID:         recipientID,
		Kind:           kind,
		Title:          title,
		Message:        message,
		RelatedGroupID: relatedGroupID,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.Store.Notifications().CreateNotification(ctx, n); err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Debug("notification created",
		slog.String("notification_id", n.ID),
		slog.String("recipient_id", recipientID),
		slog.String("title", title),
	)
	return n.ID, nil
}

// Latest returns the user's newest notifications together with the unread
// count, matching what the web layer polls for.
func (s *NotificationService) Latest(ctx context.Context, userID string, limit int) ([]domain.Notification, int, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}

	notifications, err := s.Store.Notifications().ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.Store.Notifications().CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return notifications, unread, nil
}

// MarkRead marks one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID, userID string) error {
	err := s.Store.Notifications().MarkRead(ctx, notificationID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

// MarkAllRead marks every unread notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.Store.Notifications().MarkAllRead(ctx, userID)
}

// dispatch delivers a membership notification through the port with
// log-and-continue semantics. Callers invoke it only after their transaction
// has committed, so a failed mutation never notifies and a failed
// notification never rolls back a mutation.
func dispatch(ctx context.Context, n Notifier, recipientID, title, message, groupID string) {
	if n == nil {
		return
	}
	if _, err := n.Notify(ctx, recipientID, domain.KindGroup, title, message, groupID); err != nil {
		slogx.FromContext(ctx).Warn("notification dispatch failed",
			slog.String("recipient_id", recipientID),
			slog.String("title", title),
			slog.Any("error", err),
		)
	}
}
