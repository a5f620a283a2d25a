package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/nichenest/nichenest/internal/groups/domain"
)

type notificationsRepo struct {
	db dbtx
}

func (r *notificationsRepo) CreateNotification(ctx context.Context, n domain.Notification) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, kind, title, message, related_group_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, string(n.Kind), n.Title, n.Message, nullString(n.RelatedGroupID), n.Read, n.CreatedAt,
	)
	return err
}

func (r *notificationsRepo) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, kind, title, message, related_group_id, is_read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var related sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Kind, &n.Title, &n.Message, &related, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.RelatedGroupID = related.String
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *notificationsRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&count)
	return count, err
}

func (r *notificationsRepo) MarkRead(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *notificationsRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	return err
}

func (r *notificationsRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE is_read = 1 AND created_at < ?`, cutoff)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
