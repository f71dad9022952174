// Package auth covers the two credential mechanisms of the service:
// bcrypt password hashing and signed, time-limited JWTs. It also provides
// the middleware guarding the protected routes, which resolves the token
// from the x-auth-token header into a user ID stored in the request context.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/akarasev/shurl/internal/models"
)

// TokenHeader is the request header carrying the auth token.
const TokenHeader = "x-auth-token"

// ErrInvalidToken is returned for a malformed, tampered or expired token.
var ErrInvalidToken = errors.New("invalid token")

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds a user-specific identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// Auth issues and verifies tokens signed with a server-held secret.
type Auth struct {
	signingSecret []byte
	tokenTTL      time.Duration
}

// New creates an Auth with the given signing secret and token lifetime.
func New(signingSecret []byte, tokenTTL time.Duration) *Auth {
	return &Auth{
		signingSecret: signingSecret,
		tokenTTL:      tokenTTL,
	}
}

// HashPassword returns the bcrypt hash of the plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the hash.
// The comparison is delegated to bcrypt and is constant-time.
func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken creates a signed JWT embedding the subject user ID,
// expiring after the configured lifetime.
func (a *Auth) IssueToken(userID string) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(a.signingSecret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return tokenString, nil
}

// VerifyToken parses and validates the token and returns the embedded
// user ID. Any structural, signature or expiry problem is reported as
// ErrInvalidToken.
func (a *Auth) VerifyToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.signingSecret, nil
		},
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	return claims.UserID, nil
}

// RequireAuth is the middleware guarding protected routes. It reads the
// x-auth-token header, verifies the token and stores the resolved user ID
// in the request context. The embedded user ID is trusted as-is; there is
// no existence re-check against the store.
func (a *Auth) RequireAuth(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		tokenString := request.Header.Get(TokenHeader)
		if tokenString == "" {
			writeUnauthorized(response, "Authorization denied")
			return
		}

		userID, err := a.VerifyToken(tokenString)
		if err != nil {
			writeUnauthorized(response, "Token is not valid")
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, userID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext extracts the authenticated user ID placed into the
// context by RequireAuth.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

func writeUnauthorized(response http.ResponseWriter, msg string) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(response).Encode(models.ErrorResponse{Msg: msg})
}
