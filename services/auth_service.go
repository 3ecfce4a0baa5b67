package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Yuki-gilty/drone-manager/database"
	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultDroneTypes are created for every new account.
var DefaultDroneTypes = []string{"5inch", "Whoop", "FPV Wing"}

// AuthService handles authentication business logic
type AuthService struct {
	users        UserRepository
	sessionStore SessionStore
	validator    *validator.Validator
	logger       *slog.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(users UserRepository, sessionStore SessionStore, v *validator.Validator, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:        users,
		sessionStore: sessionStore,
		validator:    v,
		logger:       logger,
	}
}

// Register creates the account, seeds its drone types and logs it in.
func (as *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *models.Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := as.validator.Validate(&req); err != nil {
		return nil, nil, invalid(err)
	}

	existing, err := as.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := as.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, nil, ErrUsernameTaken
		}
		return nil, nil, err
	}

	for _, name := range DefaultDroneTypes {
		dt := &models.DroneType{ID: uuid.New().String(), Name: name, DefaultParts: []models.DefaultPart{}}
		if err := as.users.CreateDroneType(ctx, user.ID, dt); err != nil {
			// the account is usable without its seed data
			as.logger.Warn("seed drone type failed", "user_id", user.ID, "type", name, "error", err)
		}
	}

	sess, err := as.sessionStore.Create(ctx, user.ID, user.Username)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

// Login checks the password and opens a new session.
func (as *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, *models.Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := as.validator.Validate(&req); err != nil {
		return nil, nil, invalid(err)
	}

	user, err := as.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	sess, err := as.sessionStore.Create(ctx, user.ID, user.Username)
	if err != nil {
		return nil, nil, err
	}
	return user, sess, nil
}

// Logout destroys the session
func (as *AuthService) Logout(ctx context.Context, sessionID string) error {
	return as.sessionStore.Delete(ctx, sessionID)
}

// Me returns the user behind an authenticated request.
func (as *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := as.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
