// Package users implements account registration, login, and profiles.
package users

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/domain/user"
	"pcforge-backend/internal/errors"
	"pcforge-backend/internal/repository"
	"pcforge-backend/pkg/auth"
)

const minPasswordLength = 8

var errInvalidCredentials = errors.Unauthorized(errors.CodeInvalidCredentials.String(),
	"invalid email or password").Build()

// Service handles accounts. Password hashes use bcrypt and never leave the
// service; login failures are indistinguishable between unknown email and
// wrong password.
type Service struct {
	repo   repository.UserRepository
	tokens *auth.Service
	logger *zap.Logger
}

// NewService creates a users service.
func NewService(repo repository.UserRepository, tokens *auth.Service, logger *zap.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// RegisterInput carries the fields for a new account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is a user together with a fresh access token.
type AuthResult struct {
	User  *user.User
	Token string
}

// Register creates an account and logs it in.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if len(input.Password) < minPasswordLength {
		return nil, errors.Validation(errors.CodeValidationFailed.String(),
			"password must be at least 8 characters").Build()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Internal(errors.CodeInternalError.String(), "password hashing failed").
			WithCause(err).Build()
	}

	id, err := shared.NewUserID(uuid.New().String())
	if err != nil {
		return nil, err
	}
	u, err := user.New(id, input.Username, input.Email, string(hash))
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(u.ID.String(), u.Email, u.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("userId", u.ID.String()),
		zap.String("username", u.Username),
	)
	return &AuthResult{User: u, Token: token}, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if shared.IsNotFoundError(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(u.ID.String(), u.Email, u.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("userId", u.ID.String()))
	return &AuthResult{User: u, Token: token}, nil
}

// Profile is a user's public view with follow graph counts.
type Profile struct {
	User      *user.User `json:"user"`
	Followers int        `json:"followers"`
	Following int        `json:"following"`
}

// GetProfile fetches a user's profile with follower counts.
func (s *Service) GetProfile(ctx context.Context, id shared.UserID) (*Profile, error) {
	u, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	followers, err := s.repo.CountFollowers(ctx, id)
	if err != nil {
		return nil, err
	}
	following, err := s.repo.CountFollowing(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, Followers: followers, Following: following}, nil
}

// UpdateBio replaces a user's profile bio.
func (s *Service) UpdateBio(ctx context.Context, id shared.UserID, bio string) (*user.User, error) {
	u, err := s.repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := u.UpdateBio(bio); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
