package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/nichenest/nichenest/internal/groups/domain"
	"github.com/nichenest/nichenest/internal/groups/store"
	"github.com/nichenest/nichenest/pkg/cryptox"
	"github.com/nichenest/nichenest/pkg/idx"
	"github.com/nichenest/nichenest/pkg/jwtx"
	"github.com/nichenest/nichenest/pkg/slogx"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidUsername    = errors.New("username must be 3-30 characters of letters, digits, underscores")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrQueryTooShort      = errors.New("search query must be at least 2 characters")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

const (
	MinPasswordLength  = 8
	DefaultSearchLimit = 10
)

// UserService covers registration, login and the user lookups the
// invitation picker needs.
type UserService struct {
	Store store.Store
	Codec *jwtx.Codec
}

// Register creates a new account with an argon2id password hash.
func (s *UserService) Register(ctx context.Context, username, displayName, password string) (domain.User, error) {
	if !usernamePattern.MatchString(username) {
		return domain.User{}, ErrInvalidUsername
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, ErrPasswordTooShort
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Username:     username,
		DisplayName:  sanitizeText(displayName),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.DisplayName == "" {
		user.DisplayName = username
	}

	err = s.Store.Users().CreateUser(ctx, user)
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.User{}, ErrUsernameTaken
	} else if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Authenticate verifies the credentials and mints a session token. Lookup
// misses and password mismatches collapse into ErrInvalidCredentials so the
// response does not leak which usernames exist.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (domain.User, string, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, "", ErrInvalidCredentials
	} else if err != nil {
		return domain.User{}, "", err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	token, err := s.Codec.Mint(user.ID, user.Username)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("mint token: %w", err)
	}

	slogx.FromContext(ctx).Info("user authenticated",
		slog.String("user_id", user.ID),
	)
	return user, token, nil
}

// GetByID loads a user record.
func (s *UserService) GetByID(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// Search finds users by username or display name prefix.
func (s *UserService) Search(ctx context.Context, query string) ([]domain.User, error) {
	if len(query) < 2 {
		return nil, ErrQueryTooShort
	}
	return s.Store.Users().SearchUsers(ctx, query, DefaultSearchLimit)
}
