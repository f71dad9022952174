// Package storage declares the persistence contract shared by the
// PostgreSQL, JSON-file and in-memory backends, together with the
// sentinel errors the backends report.
package storage

import (
	"context"
	"errors"

	"github.com/akarasev/shurl/internal/models"
	"github.com/akarasev/shurl/internal/user"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write violates a uniqueness constraint
// (duplicate username or duplicate short code).
var ErrConflict = errors.New("record already exists")

// Storage is the persistence contract of the service.
// Every operation touches at most one record; uniqueness of usernames
// and short codes is enforced by the backend.
type Storage interface {
	CreateUser(ctx context.Context, usr *user.User) (*user.User, error)

	FindUserByUsername(ctx context.Context, username string) (*user.User, error)

	CreateLink(ctx context.Context, link *models.Link) (*models.Link, error)

	FindLinkByShortCode(ctx context.Context, shortCode string) (*models.Link, error)

	FindLinkByID(ctx context.Context, id string) (*models.Link, error)

	ListLinksByOwner(ctx context.Context, ownerID string) ([]models.Link, error)

	DeleteLinkByID(ctx context.Context, id string) error

	Ping(ctx context.Context) error

	Close() error
}
