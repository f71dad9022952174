// Package user defines the user model used for authentication
// and link ownership throughout the application.
package user

// User represents a registered account.
// PasswordHash holds the bcrypt hash of the password, never the plaintext.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Username is unique across all users and immutable after registration.
	Username string `json:"username"`

	// PasswordHash is never exposed through the API; it is only
	// serialized into the storage documents.
	PasswordHash string `json:"passwordHash"`
}
