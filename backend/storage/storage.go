package storage

import (
	"context"
	"errors"

	"eduledger/backend/models"
)

var (
	ErrNotFound      = errors.New("storage: record not found")
	ErrAlreadyExists = errors.New("storage: record already exists")
)

// UserStore holds one aggregate record per username. Create rejects a
// duplicate username with ErrAlreadyExists instead of merging, so
// registration can never overwrite existing history. Upsert replaces the
// stored aggregate wholesale.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, username string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
	All(ctx context.Context) ([]models.User, error)
}

// EventStore is the append-only activity ledger. Within a user, ByUser
// returns events in append order; no cross-user ordering is guaranteed.
type EventStore interface {
	Append(ctx context.Context, event *models.Event) error
	ByUser(ctx context.Context, username string) ([]models.Event, error)
	All(ctx context.Context) ([]models.Event, error)
}

type LessonStore interface {
	Append(ctx context.Context, rec *models.LessonCompletion) error
	ByUser(ctx context.Context, username string) ([]models.LessonCompletion, error)
	All(ctx context.Context) ([]models.LessonCompletion, error)
}

type ExerciseStore interface {
	Append(ctx context.Context, rec *models.ExerciseCompletion) error
	ByUser(ctx context.Context, username string) ([]models.ExerciseCompletion, error)
	All(ctx context.Context) ([]models.ExerciseCompletion, error)
}

type SessionStore interface {
	Append(ctx context.Context, rec *models.Session) error
	ByUser(ctx context.Context, username string) ([]models.Session, error)
}

// Backend is the storage collaborator the ledger core is built against.
// Transact runs fn against a view of the backend such that either all of
// fn's writes become visible together or none do. Readers running outside
// the transaction never observe a partially applied recorder operation.
type Backend interface {
	Users() UserStore
	Events() EventStore
	Lessons() LessonStore
	Exercises() ExerciseStore
	Sessions() SessionStore
	Transact(ctx context.Context, fn func(tx Backend) error) error
}
