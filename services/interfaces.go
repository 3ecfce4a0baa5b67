package services

import (
	"context"

	"github.com/Yuki-gilty/drone-manager/models"
)

// UserRepository defines the user data access the auth service needs
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// CreateDroneType is used to seed a new account.
	CreateDroneType(ctx context.Context, userID string, dt *models.DroneType) error
}

// SessionStore defines the interface for session management
type SessionStore interface {
	Create(ctx context.Context, userID, username string) (*models.Session, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
