package sqlite

import (
	"context"
	"time"

	"github.com/nichenest/nichenest/internal/groups/domain"
)

type groupsRepo struct {
	db dbtx
}

func (r *groupsRepo) CreateGroup(ctx context.Context, g domain.Group) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO groups (id, name, description, privacy, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Description, string(g.Privacy), g.OwnerID, g.CreatedAt, g.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *groupsRepo) GetGroupByID(ctx context.Context, id string) (domain.Group, error) {
	var g domain.Group
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, privacy, owner_id, created_at, updated_at
		FROM groups WHERE id = ?`, id).
		Scan(&g.ID, &g.Name, &g.Description, &g.Privacy, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return domain.Group{}, mapNotFound(err)
	}
	return g, nil
}

func (r *groupsRepo) ListGroupsForUser(ctx context.Context, userID string) ([]domain.Group, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.description, g.privacy, g.owner_id, g.created_at, g.updated_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY gm.joined_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.Privacy, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *groupsRepo) ListPublicGroups(ctx context.Context, limit int) ([]domain.GroupSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.description, g.privacy, g.owner_id, g.created_at, g.updated_at,
		       COUNT(gm.user_id) AS member_count
		FROM groups g
		LEFT JOIN group_members gm ON gm.group_id = g.id
		WHERE g.privacy = 'public'
		GROUP BY g.id
		ORDER BY g.created_at DESC
		LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []domain.GroupSummary
	for rows.Next() {
		var s domain.GroupSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.Description, &s.Privacy, &s.OwnerID, &s.CreatedAt, &s.UpdatedAt,
			&s.MemberCount,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *groupsRepo) UpdateGroupSettings(ctx context.Context, groupID, description string, privacy domain.Privacy) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE groups SET description = ?, privacy = ?, updated_at = ? WHERE id = ?`,
		description, string(privacy), time.Now().UTC(), groupID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *groupsRepo) DeleteGroup(ctx context.Context, groupID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, groupID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
