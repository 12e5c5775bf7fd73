package game

import (
	"context"
	"errors"

	"github.com/halfmove/chessduel/internal/domain"
)

var (
	// ErrSessionNotFound is returned by Load for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrVersionConflict is returned by Save when the stored session changed
	// since the caller loaded it.
	ErrVersionConflict = errors.New("session version conflict")
)

// Repository stores sessions keyed by id with optimistic versioning. Save
// succeeds only when the stored version equals the session's loaded Version;
// a new session saves with Version zero. On success the stored version is
// incremented. A successful Save must be durably committed before returning
// so the next Load on the same session reads it.
type Repository interface {
	Load(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
}

// ResultArchiver records finished games in long-term storage. It is invoked
// at most once per session, after the result is set.
type ResultArchiver interface {
	ArchiveResult(ctx context.Context, session *domain.Session) error
}
