package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarasev/shurl/internal/auth"
	"github.com/akarasev/shurl/internal/db/memorystorage"
	"github.com/akarasev/shurl/internal/shortkey"
)

const shortURLBase = "http://localhost:8080"

func newTestService(t *testing.T) (*Service, *auth.Auth) {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	theAuth := auth.New([]byte("test-secret"), time.Hour)

	return New(db, theAuth, shortURLBase), theAuth
}

func TestRegisterAndLogin(t *testing.T) {
	svc, theAuth := newTestService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := theAuth.VerifyToken(token)
	require.NoError(t, err)
	assert.NotEmpty(t, userID)

	_, err = svc.Register(ctx, "alice", "another")
	assert.ErrorIs(t, err, ErrUserExists)

	loginToken, err := svc.Login(ctx, "alice", "secret1")
	require.NoError(t, err)

	loginUserID, err := theAuth.VerifyToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, userID, loginUserID)

	_, err = svc.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "bob", "secret1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestShortenAndResolve(t *testing.T) {
	svc, theAuth := newTestService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	userID, err := theAuth.VerifyToken(token)
	require.NoError(t, err)

	_, err = svc.Shorten(ctx, "not a url", userID)
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = svc.Shorten(ctx, "example.com", userID)
	assert.ErrorIs(t, err, ErrInvalidURL, "URL without a scheme should be rejected")

	link, err := svc.Shorten(ctx, "https://example.com", userID)
	require.NoError(t, err)
	assert.Len(t, link.ShortCode, shortkey.Length)
	assert.Equal(t, userID, link.OwnerID)
	assert.Equal(t, shortURLBase+"/"+link.ShortCode, svc.ShortURL(link.ShortCode))

	originalURL, err := svc.Resolve(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", originalURL)

	_, err = svc.Resolve(ctx, "missing")
	assert.ErrorIs(t, err, ErrLinkNotFound)
}

func TestUserLinksAndDelete(t *testing.T) {
	svc, theAuth := newTestService(t)
	ctx := context.Background()

	aliceToken, err := svc.Register(ctx, "alice", "secret1")
	require.NoError(t, err)
	aliceID, err := theAuth.VerifyToken(aliceToken)
	require.NoError(t, err)

	bobToken, err := svc.Register(ctx, "bob", "secret2")
	require.NoError(t, err)
	bobID, err := theAuth.VerifyToken(bobToken)
	require.NoError(t, err)

	link, err := svc.Shorten(ctx, "https://example.com", aliceID)
	require.NoError(t, err)

	links, err := svc.UserLinks(ctx, aliceID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, link.ID, links[0].ID)

	links, err = svc.UserLinks(ctx, bobID)
	require.NoError(t, err)
	assert.Empty(t, links)

	// A non-owner must not be able to delete the link, nor learn that
	// it exists.
	err = svc.DeleteLink(ctx, link.ID, bobID)
	assert.ErrorIs(t, err, ErrLinkNotFound)

	_, err = svc.Resolve(ctx, link.ShortCode)
	assert.NoError(t, err, "the link should survive a non-owner delete attempt")

	err = svc.DeleteLink(ctx, link.ID, aliceID)
	require.NoError(t, err)

	links, err = svc.UserLinks(ctx, aliceID)
	require.NoError(t, err)
	assert.Empty(t, links)

	err = svc.DeleteLink(ctx, link.ID, aliceID)
	assert.ErrorIs(t, err, ErrLinkNotFound)
}
