package services

import (
	"context"
	"log"
	"strings"

	"valuta/internal/apperrors"
	"valuta/internal/models"
	"valuta/internal/repositories"
	"valuta/internal/schemas"
	"valuta/internal/security"
)

// EventPublisher pushes account events to the message broker. A nil
// publisher disables events.
type EventPublisher interface {
	PublishUserRegistered(payload map[string]interface{}) error
}

// AuthService handles business logic for registration and authentication.
// Every logical operation runs in its own fresh unit of work.
type AuthService struct {
	uow       repositories.UnitOfWorkFactory
	hasher    security.PasswordHasher
	tokens    security.Codec
	publisher EventPublisher
}

// NewAuthService creates a new AuthService.
func NewAuthService(uow repositories.UnitOfWorkFactory, hasher security.PasswordHasher, tokens security.Codec, publisher EventPublisher) *AuthService {
	return &AuthService{
		uow:       uow,
		hasher:    hasher,
		tokens:    tokens,
		publisher: publisher,
	}
}

// Register creates a new user. Username and email are lowercased before
// any lookup; the username check runs before the email check, so a
// conflict on both fields reports username. The unit of work commits
// only when the insert succeeded.
func (s *AuthService) Register(ctx context.Context, input schemas.UserCreate) (schemas.UserReturn, error) {
	username := strings.ToLower(input.Username)
	email := strings.ToLower(input.Email)

	var out schemas.UserReturn
	err := s.uow.Do(ctx, func(uow repositories.UnitOfWork) error {
		existing, err := uow.Users().GetByUsername(username)
		if err != nil {
			return err
		}
		if existing != nil {
			return &apperrors.UniqueFieldError{Field: "username", Value: username}
		}

		existing, err = uow.Users().GetByEmail(email)
		if err != nil {
			return err
		}
		if existing != nil {
			return &apperrors.UniqueFieldError{Field: "email", Value: email}
		}

		digest, err := s.hasher.Hash(input.Password)
		if err != nil {
			return err
		}

		created, err := uow.Users().Create(&models.User{
			Username: username,
			Email:    email,
			Password: digest,
		})
		if err != nil {
			return err
		}

		out = schemas.UserReturn{
			Username: created.Username,
			Email:    created.Email,
		}
		return nil
	})
	if err != nil {
		return schemas.UserReturn{}, err
	}

	// Best effort: a broker outage must not fail a committed registration.
	if s.publisher != nil {
		if pubErr := s.publisher.PublishUserRegistered(map[string]interface{}{
			"username": out.Username,
			"email":    out.Email,
		}); pubErr != nil {
			log.Printf("WARN: failed to publish user_registered event for %s: %v", out.Username, pubErr)
		}
	}
	return out, nil
}

// Authenticate checks the credentials and returns the normalized
// username on success. The lookup runs in its own scoped unit of work;
// the credential decision happens after that scope closes. Password
// verification is skipped entirely when the user does not exist.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, error) {
	username = strings.ToLower(username)

	var user *models.User
	err := s.uow.Do(ctx, func(uow repositories.UnitOfWork) error {
		found, err := uow.Users().GetByUsername(username)
		if err != nil {
			return err
		}
		user = found
		return nil
	})
	if err != nil {
		return "", err
	}

	if user == nil || !s.hasher.Verify(password, user.Password) {
		return "", apperrors.ErrUnauthorized
	}
	return username, nil
}

// IssueToken mints a bearer token for an already-authenticated username.
func (s *AuthService) IssueToken(username string) (schemas.Token, error) {
	tokenString, err := s.tokens.Issue(map[string]interface{}{"sub": username})
	if err != nil {
		return schemas.Token{}, err
	}
	return schemas.Token{
		AccessToken: tokenString,
		TokenType:   "bearer",
	}, nil
}
