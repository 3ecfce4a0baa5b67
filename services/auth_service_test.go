package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/Yuki-gilty/drone-manager/remote"
	"github.com/Yuki-gilty/drone-manager/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ==================== MOCKS ====================

// MockUserRepository is a mock implementation of UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

var _ UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreateDroneType(ctx context.Context, userID string, dt *models.DroneType) error {
	args := m.Called(ctx, userID, dt)
	return args.Error(0)
}

// MockSessionStore is a mock implementation of SessionStore interface
type MockSessionStore struct {
	mock.Mock
}

var _ SessionStore = (*MockSessionStore)(nil)

func (m *MockSessionStore) Create(ctx context.Context, userID, username string) (*models.Session, error) {
	args := m.Called(ctx, userID, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// ==================== TESTS ====================

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	sess := &models.Session{ID: "session123", ExpiresAt: time.Now().Add(time.Hour)}

	tests := []struct {
		name      string
		req       models.RegisterRequest
		mockSetup func(*MockUserRepository, *MockSessionStore)
		wantKind  error
	}{
		{
			name: "Success - Creates user, seeds types and opens session",
			req:  models.RegisterRequest{Username: "  pilot ", Password: "password123"},
			mockSetup: func(repo *MockUserRepository, store *MockSessionStore) {
				repo.On("GetUserByUsername", ctx, "pilot").Return(nil, nil)
				repo.On("CreateUser", ctx, mock.MatchedBy(func(u *models.User) bool {
					return u.Username == "pilot" && bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")) == nil
				})).Return(nil)
				for _, name := range DefaultDroneTypes {
					name := name
					repo.On("CreateDroneType", ctx, mock.Anything, mock.MatchedBy(func(dt *models.DroneType) bool {
						return dt.Name == name
					})).Return(nil).Once()
				}
				store.On("Create", ctx, mock.Anything, "pilot").Return(sess, nil)
			},
		},
		{
			name: "Success - Seed failure does not fail registration",
			req:  models.RegisterRequest{Username: "pilot", Password: "password123"},
			mockSetup: func(repo *MockUserRepository, store *MockSessionStore) {
				repo.On("GetUserByUsername", ctx, "pilot").Return(nil, nil)
				repo.On("CreateUser", ctx, mock.Anything).Return(nil)
				repo.On("CreateDroneType", ctx, mock.Anything, mock.Anything).Return(errors.New("disk full"))
				store.On("Create", ctx, mock.Anything, "pilot").Return(sess, nil)
			},
		},
		{
			name:     "Error - Short password",
			req:      models.RegisterRequest{Username: "pilot", Password: "short"},
			wantKind: remote.ErrValidation,
		},
		{
			name:     "Error - Username with spaces",
			req:      models.RegisterRequest{Username: "top pilot", Password: "password123"},
			wantKind: remote.ErrValidation,
		},
		{
			name: "Error - Username taken",
			req:  models.RegisterRequest{Username: "pilot", Password: "password123"},
			mockSetup: func(repo *MockUserRepository, store *MockSessionStore) {
				repo.On("GetUserByUsername", ctx, "pilot").Return(&models.User{ID: "u1"}, nil)
			},
			wantKind: remote.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			store := new(MockSessionStore)
			if tt.mockSetup != nil {
				tt.mockSetup(repo, store)
			}

			service := NewAuthService(repo, store, validator.New(), nil)
			user, got, err := service.Register(ctx, tt.req)

			if tt.wantKind != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantKind), "got %v", err)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "pilot", user.Username)
				assert.NotEmpty(t, user.ID)
				assert.Equal(t, sess, got)
			}

			repo.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := &models.User{ID: "u1", Username: "pilot", PasswordHash: hashed(t, "password123")}
	sess := &models.Session{ID: "session123", UserID: "u1"}

	tests := []struct {
		name      string
		req       models.LoginRequest
		mockSetup func(*MockUserRepository, *MockSessionStore)
		wantErr   error
	}{
		{
			name: "Success - Correct password",
			req:  models.LoginRequest{Username: "pilot", Password: "password123"},
			mockSetup: func(repo *MockUserRepository, store *MockSessionStore) {
				repo.On("GetUserByUsername", ctx, "pilot").Return(user, nil)
				store.On("Create", ctx, "u1", "pilot").Return(sess, nil)
			},
		},
		{
			name: "Error - Wrong password",
			req:  models.LoginRequest{Username: "pilot", Password: "nope-nope"},
			mockSetup: func(repo *MockUserRepository, store *MockSessionStore) {
				repo.On("GetUserByUsername", ctx, "pilot").Return(user, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "Error - Unknown user",
			req:  models.LoginRequest{Username: "ghost", Password: "password123"},
			mockSetup: func(repo *MockUserRepository, store *MockSessionStore) {
				repo.On("GetUserByUsername", ctx, "ghost").Return(nil, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "Error - Session store fails",
			req:  models.LoginRequest{Username: "pilot", Password: "password123"},
			mockSetup: func(repo *MockUserRepository, store *MockSessionStore) {
				repo.On("GetUserByUsername", ctx, "pilot").Return(user, nil)
				store.On("Create", ctx, "u1", "pilot").Return(nil, errors.New("redis down"))
			},
			wantErr: errors.New("redis down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			store := new(MockSessionStore)
			tt.mockSetup(repo, store)

			service := NewAuthService(repo, store, validator.New(), nil)
			gotUser, gotSess, err := service.Login(ctx, tt.req)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
			} else {
				require.NoError(t, err)
				assert.Equal(t, user, gotUser)
				assert.Equal(t, sess, gotSess)
			}

			repo.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	store := new(MockSessionStore)
	store.On("Delete", ctx, "session123").Return(nil)

	service := &AuthService{sessionStore: store}
	assert.NoError(t, service.Logout(ctx, "session123"))
	store.AssertExpectations(t)
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("GetUserByID", ctx, "u1").Return(&models.User{ID: "u1", Username: "pilot"}, nil)
	repo.On("GetUserByID", ctx, "gone").Return(nil, nil)

	service := &AuthService{users: repo}

	user, err := service.Me(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "pilot", user.Username)

	_, err = service.Me(ctx, "gone")
	assert.True(t, errors.Is(err, remote.ErrAuthRequired))
}
