// Package sqlite implements store.Store on modernc.org/sqlite with
// hand-written SQL.
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nichenest/nichenest/internal/groups/store"

	sqlite3 "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, so every repo works inside
// and outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// A :memory: database exists per connection; pin the pool to one so
	// every query sees the same database.
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enforce FKs; required for the ON DELETE CASCADE chains to work.
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

// WithTx executes fn within a transaction, automatically handling
// commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Safe to call even after commit.
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users                   { return &usersRepo{db: s.db} }
func (s *Store) Groups() store.Groups                 { return &groupsRepo{db: s.db} }
func (s *Store) Memberships() store.Memberships       { return &membershipsRepo{db: s.db} }
func (s *Store) MemberRequests() store.MemberRequests { return &memberRequestsRepo{db: s.db} }
func (s *Store) Invitations() store.Invitations       { return &invitationsRepo{db: s.db} }
func (s *Store) Notifications() store.Notifications   { return &notificationsRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// requireAffected turns a zero-row UPDATE/DELETE into store.ErrNotFound so
// "resolve a request that is no longer pending" and friends are observable.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// mapConstraint translates unique/primary-key violations into
// store.ErrAlreadyExists. These are expected outcomes on the membership and
// queue tables, not faults.
func mapConstraint(err error) error {
	var se *sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlitelib.SQLITE_CONSTRAINT_UNIQUE, sqlitelib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return store.ErrAlreadyExists
		}
	}
	return err
}
