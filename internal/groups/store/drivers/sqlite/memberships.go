package sqlite

import (
	"context"

	"github.com/nichenest/nichenest/internal/groups/domain"
)

type membershipsRepo struct {
	db dbtx
}

func (r *membershipsRepo) AddMember(ctx context.Context, m domain.Membership) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)`,
		m.GroupID, m.UserID, string(m.Role), m.JoinedAt,
	)
	return mapConstraint(err)
}

func (r *membershipsRepo) UpsertMember(ctx context.Context, m domain.Membership) error {
	// Insert-or-update-role: the row may already exist when a join request
	// was approved while an invitation was pending.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO group_members (group_id, user_id, role, joined_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (group_id, user_id) DO UPDATE SET role = excluded.role`,
		m.GroupID, m.UserID, string(m.Role), m.JoinedAt,
	)
	return err
}

func (r *membershipsRepo) GetMembership(ctx context.Context, groupID, userID string) (domain.Membership, error) {
	var m domain.Membership
	err := r.db.QueryRowContext(ctx, `
		SELECT group_id, user_id, role, joined_at
		FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	).Scan(&m.GroupID, &m.UserID, &m.Role, &m.JoinedAt)
	if err != nil {
		return domain.Membership{}, mapNotFound(err)
	}
	return m, nil
}

func (r *membershipsRepo) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	return r.exists(ctx, `
		SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID)
}

func (r *membershipsRepo) IsOwner(ctx context.Context, groupID, userID string) (bool, error) {
	return r.exists(ctx, `
		SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ? AND role = 'owner'`,
		groupID, userID)
}

func (r *membershipsRepo) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *membershipsRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *membershipsRepo) ListMembers(ctx context.Context, groupID string) ([]domain.MemberInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT gm.user_id, u.username, u.display_name, gm.role, gm.joined_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY CASE gm.role WHEN 'owner' THEN 0 ELSE 1 END, gm.joined_at`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.MemberInfo
	for rows.Next() {
		var m domain.MemberInfo
		if err := rows.Scan(&m.UserID, &m.Username, &m.DisplayName, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *membershipsRepo) CountMembers(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM group_members WHERE group_id = ?`, groupID).Scan(&count)
	return count, err
}
