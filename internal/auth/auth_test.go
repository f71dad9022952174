package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, VerifyPassword(hash, "secret1"))
	assert.False(t, VerifyPassword(hash, "secret2"))
	assert.False(t, VerifyPassword("not a hash", "secret1"))
}

func TestIssueAndVerifyToken(t *testing.T) {
	theAuth := New([]byte(testSecret), time.Hour)

	token, err := theAuth.IssueToken("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := theAuth.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", userID)
}

func TestVerifyExpiredToken(t *testing.T) {
	theAuth := New([]byte(testSecret), -time.Minute)

	token, err := theAuth.IssueToken("user-42")
	require.NoError(t, err)

	_, err = theAuth.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTamperedToken(t *testing.T) {
	theAuth := New([]byte(testSecret), time.Hour)

	token, err := theAuth.IssueToken("user-42")
	require.NoError(t, err)

	_, err = theAuth.VerifyToken(token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)

	otherAuth := New([]byte("another-secret"), time.Hour)
	foreignToken, err := otherAuth.IssueToken("user-42")
	require.NoError(t, err)

	_, err = theAuth.VerifyToken(foreignToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequireAuth(t *testing.T) {
	theAuth := New([]byte(testSecret), time.Hour)

	token, err := theAuth.IssueToken("user-42")
	require.NoError(t, err)

	var seenUserID string
	handler := theAuth.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID, _ = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	testCases := []struct {
		name         string
		token        string
		expectedCode int
		expectedMsg  string
	}{
		{
			name:         "no token",
			token:        "",
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  "Authorization denied",
		},
		{
			name:         "tampered token",
			token:        token + "x",
			expectedCode: http.StatusUnauthorized,
			expectedMsg:  "Token is not valid",
		},
		{
			name:         "valid token",
			token:        token,
			expectedCode: http.StatusOK,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			seenUserID = ""

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if testCase.token != "" {
				request.Header.Set(TokenHeader, testCase.token)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, request)

			result := w.Result()
			defer result.Body.Close()

			assert.Equal(t, testCase.expectedCode, result.StatusCode)

			if testCase.expectedMsg != "" {
				var body struct {
					Msg string `json:"msg"`
				}
				require.NoError(t, json.NewDecoder(result.Body).Decode(&body))
				assert.Equal(t, testCase.expectedMsg, body.Msg)
			} else {
				assert.Equal(t, "user-42", seenUserID)
			}
		})
	}
}
