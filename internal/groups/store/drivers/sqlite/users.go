package sqlite

import (
	"context"

	"github.com/nichenest/nichenest/internal/groups/domain"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.DisplayName, u.PasswordHash, u.CreatedAt, u.UpdatedAt,
	)
	return mapConstraint(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getUser(ctx, `
		SELECT id, username, display_name, password_hash, created_at, updated_at
		FROM users WHERE id = ?`, id)
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getUser(ctx, `
		SELECT id, username, display_name, password_hash, created_at, updated_at
		FROM users WHERE username = ?`, username)
}

func (r *usersRepo) getUser(ctx context.Context, query string, arg any) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) SearchUsers(ctx context.Context, query string, limit int) ([]domain.User, error) {
	pattern := query + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, display_name, password_hash, created_at, updated_at
		FROM users
		WHERE username LIKE ? OR display_name LIKE ?
		ORDER BY username
		LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
