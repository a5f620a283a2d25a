package sqlite

import (
	"context"
	"time"

	"github.com/nichenest/nichenest/internal/groups/domain"
)

type memberRequestsRepo struct {
	db dbtx
}

func (r *memberRequestsRepo) CreateRequest(ctx context.Context, req domain.MemberRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_member_requests (id, group_id, user_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID, req.GroupID, req.UserID, string(req.Status), req.CreatedAt, req.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *memberRequestsRepo) GetRequestByID(ctx context.Context, id string) (domain.MemberRequest, error) {
	var req domain.MemberRequest
	err := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, user_id, status, created_at, updated_at
		FROM group_member_requests WHERE id = ?`, id).
		Scan(&req.ID, &req.GroupID, &req.UserID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return domain.MemberRequest{}, mapNotFound(err)
	}
	return req, nil
}

func (r *memberRequestsRepo) HasPendingRequest(ctx context.Context, groupID, userID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM group_member_requests
		WHERE group_id = ? AND user_id = ? AND status = 'pending'`,
		groupID, userID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *memberRequestsRepo) ListPendingForGroup(ctx context.Context, groupID string) ([]domain.RequestInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT gmr.id, gmr.group_id, gmr.user_id, gmr.status, gmr.created_at, gmr.updated_at,
		       u.username, u.display_name
		FROM group_member_requests gmr
		JOIN users u ON u.id = gmr.user_id
		WHERE gmr.group_id = ? AND gmr.status = 'pending'
		ORDER BY gmr.created_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []domain.RequestInfo
	for rows.Next() {
		var ri domain.RequestInfo
		if err := rows.Scan(
			&ri.ID, &ri.GroupID, &ri.UserID, &ri.Status, &ri.CreatedAt, &ri.UpdatedAt,
			&ri.Username, &ri.DisplayName,
		); err != nil {
			return nil, err
		}
		requests = append(requests, ri)
	}
	return requests, rows.Err()
}

func (r *memberRequestsRepo) ResolveRequest(ctx context.Context, id string, status domain.RequestStatus) error {
	// Guarded by status='pending' so a second resolution affects zero rows.
	res, err := r.db.ExecContext(ctx, `
		UPDATE group_member_requests SET status = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *memberRequestsRepo) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM group_member_requests
		WHERE status != 'pending' AND updated_at < ?`, cutoff)
	return err
}
