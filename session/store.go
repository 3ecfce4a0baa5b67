package session

import (
	"context"
	"sync"
	"time"

	"github.com/Yuki-gilty/drone-manager/models"
	"github.com/google/uuid"
)

const DefaultTTL = 30 * 24 * time.Hour

// Store keeps server-side sessions keyed by the session cookie value.
type Store interface {
	Create(ctx context.Context, userID, username string) (*models.Session, error)
	// Get returns (nil, nil) for unknown or expired sessions.
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Touch(ctx context.Context, sess *models.Session) error
	Delete(ctx context.Context, sessionID string) error
}

func newSession(userID, username string, ttl time.Duration, now time.Time) *models.Session {
	return &models.Session{
		ID:         uuid.New().String(),
		UserID:     userID,
		Username:   username,
		ExpiresAt:  now.Add(ttl),
		CreatedAt:  now,
		LastUsedAt: now,
	}
}

// MemoryStore is a process-local Store. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, userID, username string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newSession(userID, username, s.ttl, s.now())
	s.sessions[sess.ID] = sess
	copied := *sess
	return &copied, nil
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[sessionID]
	if !exists || sess.Expired(s.now()) {
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

func (s *MemoryStore) Touch(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.sessions[sess.ID]
	if !exists {
		return nil
	}
	stored.LastUsedAt = s.now()
	sess.LastUsedAt = stored.LastUsedAt
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

// CleanupExpired drops expired sessions and reports how many were removed.
func (s *MemoryStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine runs CleanupExpired every interval until ctx is done.
func (s *MemoryStore) StartCleanupRoutine(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired()
			}
		}
	}()
}
