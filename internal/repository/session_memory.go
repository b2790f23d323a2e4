package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Dan9191/autosmc/internal/models"
)

// SessionRepositoryMemory is an in-memory SessionRepository
type SessionRepositoryMemory struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	now      func() time.Time
}

// NewSessionRepositoryMemory creates an empty session store
func NewSessionRepositoryMemory() *SessionRepositoryMemory {
	return &SessionRepositoryMemory{
		sessions: make(map[string]models.Session),
		now:      time.Now,
	}
}

// Create opens a new empty session
func (r *SessionRepositoryMemory) Create(_ context.Context) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	s := models.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.sessions[s.ID] = s
	return &s, nil
}

// Get returns a copy of the stored session
func (r *SessionRepositoryMemory) Get(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return &s, nil
}

// Save replaces the stored session and bumps UpdatedAt
func (r *SessionRepositoryMemory) Save(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, session.ID)
	}
	session.UpdatedAt = r.now()
	r.sessions[session.ID] = *session
	return nil
}

// Delete removes a session
func (r *SessionRepositoryMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(r.sessions, id)
	return nil
}

// PurgeIdle removes sessions not updated within maxIdle
func (r *SessionRepositoryMemory) PurgeIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-maxIdle)
	removed := 0
	for id, s := range r.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}
