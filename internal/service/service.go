// Package service implements the business operations of the shortener:
// account registration and login, link creation, listing, deletion and
// short-code resolution.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/akarasev/shurl/internal/auth"
	"github.com/akarasev/shurl/internal/db/storage"
	"github.com/akarasev/shurl/internal/models"
	"github.com/akarasev/shurl/internal/shortkey"
	"github.com/akarasev/shurl/internal/user"
)

// TriesToGenerateUniqueKey bounds the regeneration loop on a short-code
// collision before the operation is given up as a server error.
const TriesToGenerateUniqueKey = 10

var (
	// ErrUserExists is returned when the requested username is taken.
	ErrUserExists = errors.New("user already exists")

	// ErrUserNotFound is returned when logging in with an unknown username.
	ErrUserNotFound = errors.New("user does not exist")

	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidURL is returned when the submitted string is not a URL.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrLinkNotFound is returned for an unknown link, and deliberately
	// also when the link exists but belongs to another user.
	ErrLinkNotFound = errors.New("URL not found")
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (*user.User, error)
	FindUserByUsername(ctx context.Context, username string) (*user.User, error)
}

type linkKeeper interface {
	CreateLink(ctx context.Context, link *models.Link) (*models.Link, error)
	FindLinkByShortCode(ctx context.Context, shortCode string) (*models.Link, error)
	FindLinkByID(ctx context.Context, id string) (*models.Link, error)
	ListLinksByOwner(ctx context.Context, ownerID string) ([]models.Link, error)
	DeleteLinkByID(ctx context.Context, id string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type serviceStorage interface {
	userKeeper
	linkKeeper
	pinger
}

type tokenIssuer interface {
	IssueToken(userID string) (string, error)
}

// Service holds the dependencies of the business operations.
type Service struct {
	db           serviceStorage
	tokens       tokenIssuer
	shortURLBase string
}

// New constructs a Service over the given storage and token issuer.
func New(db serviceStorage, tokens tokenIssuer, shortURLBase string) *Service {
	return &Service{
		db:           db,
		tokens:       tokens,
		shortURLBase: shortURLBase,
	}
}

// Register creates an account with a bcrypt-hashed password and returns
// a freshly issued token for it.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	_, err := s.db.FindUserByUsername(ctx, username)
	if err == nil {
		return "", ErrUserExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("checking username: %w", err)
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	created, err := s.db.CreateUser(ctx, &user.User{
		Username:     username,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return "", ErrUserExists
		}
		return "", fmt.Errorf("creating user: %w", err)
	}

	return s.tokens.IssueToken(created.ID)
}

// Login verifies the credentials and returns a freshly issued token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	usr, err := s.db.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("finding user: %w", err)
	}

	if !auth.VerifyPassword(usr.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	return s.tokens.IssueToken(usr.ID)
}

// Shorten validates the URL, generates a short code and stores the link
// under the caller's ID. A short-code collision triggers regeneration up
// to TriesToGenerateUniqueKey times.
func (s *Service) Shorten(ctx context.Context, originalURL, ownerID string) (*models.Link, error) {
	if !isValidURL(originalURL) {
		return nil, ErrInvalidURL
	}

	for i := 0; i < TriesToGenerateUniqueKey; i++ {
		link, err := s.db.CreateLink(ctx, &models.Link{
			OriginalURL: originalURL,
			ShortCode:   shortkey.Generate(),
			OwnerID:     ownerID,
		})
		if errors.Is(err, storage.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("creating link: %w", err)
		}

		return link, nil
	}

	return nil, errors.New("the number of attempts to generate a unique key has been exceeded")
}

// UserLinks returns every link owned by the given user.
func (s *Service) UserLinks(ctx context.Context, ownerID string) ([]models.Link, error) {
	return s.db.ListLinksByOwner(ctx, ownerID)
}

// DeleteLink removes the link when it exists and belongs to the caller.
// A foreign or unknown link is reported as ErrLinkNotFound either way,
// so existence does not leak to non-owners.
func (s *Service) DeleteLink(ctx context.Context, linkID, callerID string) error {
	link, err := s.db.FindLinkByID(ctx, linkID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("finding link: %w", err)
	}

	if link.OwnerID != callerID {
		return ErrLinkNotFound
	}

	if err := s.db.DeleteLinkByID(ctx, linkID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrLinkNotFound
		}
		return fmt.Errorf("deleting link: %w", err)
	}

	return nil
}

// Resolve returns the original URL stored under the short code.
func (s *Service) Resolve(ctx context.Context, shortCode string) (string, error) {
	link, err := s.db.FindLinkByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrLinkNotFound
		}
		return "", fmt.Errorf("finding link: %w", err)
	}

	return link.OriginalURL, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// ShortURL builds the full short URL from a short code.
func (s *Service) ShortURL(shortCode string) string {
	return s.shortURLBase + "/" + shortCode
}

func isValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil &&
		(u.Scheme == "http" || u.Scheme == "https") &&
		u.Host != ""
}
