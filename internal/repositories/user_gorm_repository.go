package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"valuta/internal/apperrors"
	"valuta/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository. It is
// bound to whatever handle it was constructed with, normally the
// transaction owned by a unit of work.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create inserts the user and returns it with the assigned identifier.
// A duplicate username or email that slipped past the pre-checks
// surfaces as apperrors.ErrUniqueConstraint. Requires the gorm handle to
// be opened with TranslateError enabled.
func (r *GORMUserRepository) Create(user *models.User) (*models.User, error) {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrUniqueConstraint
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username. Returns (nil, nil) when no
// such user exists.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username %s: %w", username, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when no such
// user exists.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}
