// Package store persists live interview sessions. Sessions are short-lived
// working state, so they live in Redis with a TTL; finished reports go to
// the relational reports store instead.
package store

import (
	"context"
	"errors"

	"github.com/Sopan777/ENIGMA-2.0-TEAM-TURING/internal/models"
)

var ErrNotFound = errors.New("session not found")

// SessionStore is the persistence contract for in-progress sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.LiveSession) error
	Get(ctx context.Context, id string) (*models.LiveSession, error)
	// GetByJoinCode resolves the recruiter-facing 6-digit code to a session.
	GetByJoinCode(ctx context.Context, joinCode string) (*models.LiveSession, error)
	Update(ctx context.Context, session *models.LiveSession) error
	Delete(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}
