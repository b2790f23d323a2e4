package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Dan9191/autosmc/internal/models"
)

// ErrSessionNotFound is returned for an unknown or expired session ID
var ErrSessionNotFound = errors.New("session not found")

// Cache stores lookup responses keyed by request path
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SessionRepository stores the selection state of each selector panel
type SessionRepository interface {
	Create(ctx context.Context) (*models.Session, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	Delete(ctx context.Context, id string) error
}
