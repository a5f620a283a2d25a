package sqlite

import (
	"context"
	"database/sql"

	"github.com/nichenest/nichenest/internal/groups/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the outer DB stays
// open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested transactions are not supported.
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

// ApplyMigrations is a no-op; migrations are applied before any transaction
// starts.
func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) Users() store.Users                   { return &usersRepo{db: t.tx} }
func (t *txStore) Groups() store.Groups                 { return &groupsRepo{db: t.tx} }
func (t *txStore) Memberships() store.Memberships       { return &membershipsRepo{db: t.tx} }
func (t *txStore) MemberRequests() store.MemberRequests { return &memberRequestsRepo{db: t.tx} }
func (t *txStore) Invitations() store.Invitations       { return &invitationsRepo{db: t.tx} }
func (t *txStore) Notifications() store.Notifications   { return &notificationsRepo{db: t.tx} }
