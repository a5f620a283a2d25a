package domain

import (
	"errors"
	"time"
)

// Privacy controls who can see and join a group.
type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyPrivate Privacy = "private"
)

func (p Privacy) Valid() bool {
	return p == PrivacyPublic || p == PrivacyPrivate
}

const (
	GroupNameMinLength = 3
	GroupNameMaxLength = 100
)

var (
	ErrInvalidGroupName        = errors.New("domain: group name must be 3-100 characters")
	ErrInvalidGroupDescription = errors.New("domain: group description must not be empty")
	ErrInvalidPrivacy          = errors.New("domain: privacy must be public or private")
)

// Group is a named community space. The owner is set at creation and never
// changes through the membership workflow.
type Group struct {
	ID          string
	Name        string
	Description string
	Privacy     Privacy
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the creation invariants. Name uniqueness is enforced by
// the store.
func (g Group) Validate() error {
	if len(g.Name) < GroupNameMinLength || len(g.Name) > GroupNameMaxLength {
		return ErrInvalidGroupName
	}
	if g.Description == "" {
		return ErrInvalidGroupDescription
	}
	if !g.Privacy.Valid() {
		return ErrInvalidPrivacy
	}
	return nil
}
