package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"valuta/internal/apperrors"
	"valuta/internal/models"
	"valuta/internal/repositories"
	"valuta/internal/schemas"
	"valuta/internal/security"
	"valuta/internal/services"
)

// MockPasswordHasher is a mock implementation of security.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(plaintext, digest string) bool {
	args := m.Called(plaintext, digest)
	return args.Bool(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishUserRegistered(payload map[string]interface{}) error {
	args := m.Called(payload)
	return args.Error(0)
}

func newUoWFactory(t *testing.T) (*repositories.GORMUnitOfWorkFactory, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}
	return repositories.NewGORMUnitOfWorkFactory(db), db
}

func newTestCodec() *security.TokenCodec {
	return security.NewTokenCodec("test_jwt_secret", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	uowFactory, db := newUoWFactory(t)
	mockHasher := new(MockPasswordHasher)
	mockPublisher := new(MockEventPublisher)
	authService := services.NewAuthService(uowFactory, mockHasher, newTestCodec(), mockPublisher)

	mockHasher.On("Hash", "Valid1!x").Return("hashed-digest", nil).Once()
	mockPublisher.On("PublishUserRegistered", mock.MatchedBy(func(payload map[string]interface{}) bool {
		return payload["username"] == "alex" && payload["email"] == "alex@example.com"
	})).Return(nil).Once()

	out, err := authService.Register(context.Background(), schemas.UserCreate{
		Username: "Alex",
		Email:    "Alex@example.com",
		Password: "Valid1!x",
	})
	assert.NoError(t, err)

	// Username and email come back normalized; the return type has no
	// password or hash field at all.
	assert.Equal(t, schemas.UserReturn{Username: "alex", Email: "alex@example.com"}, out)

	// The persisted row holds the digest, never the plaintext.
	stored, err := repositories.NewGORMUserRepository(db).GetByUsername("alex")
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Equal(t, "hashed-digest", stored.Password)

	mockHasher.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	uowFactory, _ := newUoWFactory(t)
	mockHasher := new(MockPasswordHasher)
	authService := services.NewAuthService(uowFactory, mockHasher, newTestCodec(), nil)

	mockHasher.On("Hash", mock.Anything).Return("hashed-digest", nil)

	_, err := authService.Register(context.Background(), schemas.UserCreate{
		Username: "alex", Email: "alex@example.com", Password: "Valid1!x",
	})
	assert.NoError(t, err)

	// Conflicting username, fresh email: reported as a username conflict,
	// case-insensitively.
	_, err = authService.Register(context.Background(), schemas.UserCreate{
		Username: "ALEX", Email: "other@example.com", Password: "Valid1!x",
	})
	var fieldErr *apperrors.UniqueFieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)
	assert.Equal(t, "alex", fieldErr.Value)

	// Conflict on both fields still reports username: the username check
	// always runs first.
	_, err = authService.Register(context.Background(), schemas.UserCreate{
		Username: "alex", Email: "alex@example.com", Password: "Valid1!x",
	})
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	uowFactory, _ := newUoWFactory(t)
	mockHasher := new(MockPasswordHasher)
	authService := services.NewAuthService(uowFactory, mockHasher, newTestCodec(), nil)

	mockHasher.On("Hash", mock.Anything).Return("hashed-digest", nil)

	_, err := authService.Register(context.Background(), schemas.UserCreate{
		Username: "alex", Email: "alex@example.com", Password: "Valid1!x",
	})
	assert.NoError(t, err)

	_, err = authService.Register(context.Background(), schemas.UserCreate{
		Username: "bob", Email: "Alex@example.com", Password: "Valid1!x",
	})
	var fieldErr *apperrors.UniqueFieldError
	assert.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "email", fieldErr.Field)
}

func TestAuthService_Register_PublisherFailureDoesNotFail(t *testing.T) {
	uowFactory, db := newUoWFactory(t)
	mockHasher := new(MockPasswordHasher)
	mockPublisher := new(MockEventPublisher)
	authService := services.NewAuthService(uowFactory, mockHasher, newTestCodec(), mockPublisher)

	mockHasher.On("Hash", mock.Anything).Return("hashed-digest", nil)
	mockPublisher.On("PublishUserRegistered", mock.Anything).Return(assert.AnError).Once()

	out, err := authService.Register(context.Background(), schemas.UserCreate{
		Username: "alex", Email: "alex@example.com", Password: "Valid1!x",
	})
	assert.NoError(t, err)
	assert.Equal(t, "alex", out.Username)

	// The registration committed despite the broker failure.
	stored, err := repositories.NewGORMUserRepository(db).GetByUsername("alex")
	assert.NoError(t, err)
	assert.NotNil(t, stored)
	mockPublisher.AssertExpectations(t)
}

func TestAuthService_Authenticate(t *testing.T) {
	uowFactory, _ := newUoWFactory(t)
	mockHasher := new(MockPasswordHasher)
	authService := services.NewAuthService(uowFactory, mockHasher, newTestCodec(), nil)

	mockHasher.On("Hash", "Valid1!x").Return("hashed-digest", nil).Once()
	_, err := authService.Register(context.Background(), schemas.UserCreate{
		Username: "alex", Email: "alex@example.com", Password: "Valid1!x",
	})
	assert.NoError(t, err)

	// Successful login, with the username normalized on the way in.
	mockHasher.On("Verify", "Valid1!x", "hashed-digest").Return(true).Once()
	username, err := authService.Authenticate(context.Background(), "ALEX", "Valid1!x")
	assert.NoError(t, err)
	assert.Equal(t, "alex", username)

	// Wrong password.
	mockHasher.On("Verify", "wrong", "hashed-digest").Return(false).Once()
	_, err = authService.Authenticate(context.Background(), "alex", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	mockHasher.AssertExpectations(t)
}

func TestAuthService_Authenticate_UnknownUser(t *testing.T) {
	uowFactory, _ := newUoWFactory(t)
	mockHasher := new(MockPasswordHasher)
	authService := services.NewAuthService(uowFactory, mockHasher, newTestCodec(), nil)

	_, err := authService.Authenticate(context.Background(), "nobody", "Valid1!x")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// Password verification must never run when the user does not exist.
	mockHasher.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}

func TestAuthService_IssueToken(t *testing.T) {
	codec := newTestCodec()
	authService := services.NewAuthService(nil, nil, codec, nil)

	token, err := authService.IssueToken("alex")
	assert.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)

	claims, err := codec.Verify(token.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "alex", claims["sub"])
}
