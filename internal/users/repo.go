package users

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("user not found")

// Repo persists users keyed by session subject.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}

var (
	_ Repo = (*MemoryRepo)(nil)
	_ Repo = (*PGRepo)(nil)
)
