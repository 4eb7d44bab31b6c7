package repositories

import "valuta/internal/models"

// UserRepository defines the interface for user data access. Lookups
// return (nil, nil) when no row matches; inputs are expected to be
// already lowercased by the caller.
type UserRepository interface {
	Create(user *models.User) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}
