// Package user models accounts and the follow graph.
package user

import (
	"net/mail"
	"strings"
	"time"

	"pcforge-backend/internal/domain/shared"
)

// User is a registered account. Email addresses are unique across the
// system and double as the login identifier.
type User struct {
	ID           shared.UserID  `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	Bio          string         `json:"bio,omitempty"`
	IsAdmin      bool           `json:"isAdmin"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Version      shared.Version `json:"version"`
}

const maxBioLength = 500

// New creates an account. The password hash is produced by the caller; the
// domain never sees plaintext passwords.
func New(id shared.UserID, username, email, passwordHash string) (*User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || passwordHash == "" {
		return nil, shared.ErrValidation
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, shared.ErrValidation
	}

	now := time.Now()
	return &User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      shared.NewVersion(),
	}, nil
}

// UpdateBio replaces the profile bio.
func (u *User) UpdateBio(bio string) error {
	if len(bio) > maxBioLength {
		return shared.ErrValidation
	}
	u.Bio = bio
	u.UpdatedAt = time.Now()
	u.Version = u.Version.Next()
	return nil
}

// Follow is a directed edge in the follow graph.
type Follow struct {
	FollowerID shared.UserID `json:"followerId"`
	FolloweeID shared.UserID `json:"followeeId"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// NewFollow creates a follow edge, rejecting self-follows.
func NewFollow(follower, followee shared.UserID) (*Follow, error) {
	if follower.Equals(followee) {
		return nil, shared.ErrSelfFollow
	}
	return &Follow{
		FollowerID: follower,
		FolloweeID: followee,
		CreatedAt:  time.Now(),
	}, nil
}
