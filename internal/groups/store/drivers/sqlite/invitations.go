package sqlite

import (
	"context"
	"time"

	"github.com/nichenest/nichenest/internal/groups/domain"
)

type invitationsRepo struct {
	db dbtx
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_invitations (id, group_id, inviter_id, invitee_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.GroupID, inv.InviterID, inv.InviteeID, string(inv.Status), inv.CreatedAt, inv.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	var inv domain.Invitation
	err := r.db.QueryRowContext(ctx, `
		SELECT id, group_id, inviter_id, invitee_id, status, created_at, updated_at
		FROM group_invitations WHERE id = ?`, id).
		Scan(&inv.ID, &inv.GroupID, &inv.InviterID, &inv.InviteeID, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return domain.Invitation{}, mapNotFound(err)
	}
	return inv, nil
}

func (r *invitationsRepo) HasPendingInvitation(ctx context.Context, groupID, inviteeID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM group_invitations
		WHERE group_id = ? AND invitee_id = ? AND status = 'pending'`,
		groupID, inviteeID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *invitationsRepo) ListPendingForInvitee(ctx context.Context, inviteeID string) ([]domain.InvitationInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT gi.id, gi.group_id, gi.inviter_id, gi.invitee_id, gi.status, gi.created_at, gi.updated_at,
		       g.name, u.username
		FROM group_invitations gi
		JOIN groups g ON g.id = gi.group_id
		JOIN users u ON u.id = gi.inviter_id
		WHERE gi.invitee_id = ? AND gi.status = 'pending'
		ORDER BY gi.created_at DESC`,
		inviteeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []domain.InvitationInfo
	for rows.Next() {
		var ii domain.InvitationInfo
		if err := rows.Scan(
			&ii.ID, &ii.GroupID, &ii.InviterID, &ii.InviteeID, &ii.Status, &ii.CreatedAt, &ii.UpdatedAt,
			&ii.GroupName, &ii.InviterUsername,
		); err != nil {
			return nil, err
		}
		invitations = append(invitations, ii)
	}
	return invitations, rows.Err()
}

func (r *invitationsRepo) ResolveInvitation(ctx context.Context, id string, status domain.InvitationStatus) error {
	// Guarded by status='pending' so a second resolution affects zero rows.
	res, err := r.db.ExecContext(ctx, `
		UPDATE group_invitations SET status = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(status), time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *invitationsRepo) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM group_invitations
		WHERE status != 'pending' AND updated_at < ?`, cutoff)
	return err
}
