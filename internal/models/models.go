package models

// CredentialsRequest is the body of both the register and the login endpoints.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued auth token.
type TokenResponse struct {
	Token string `json:"token"`
}

// ShortenRequest is the body of the shorten endpoint.
type ShortenRequest struct {
	OriginalURL string `json:"originalUrl" validate:"required,url"`
}

// ShortenResponse carries the generated short code.
type ShortenResponse struct {
	ShortURL string `json:"shortUrl"`
}

// ErrorResponse is the uniform error body returned by every endpoint.
type ErrorResponse struct {
	Msg string `json:"msg"`
}

// MessageResponse is returned by endpoints that only report success.
type MessageResponse struct {
	Msg string `json:"msg"`
}

// Link is a stored shortened-link record.
type Link struct {
	// ID is the unique identifier of the link, meaning a UUID.
	ID string `json:"id"`

	OriginalURL string `json:"originalUrl"`

	// ShortCode is unique across all links.
	ShortCode string `json:"shortUrl"`

	// OwnerID references the user the link belongs to.
	OwnerID string `json:"userId"`
}
