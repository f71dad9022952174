// Package router wires the HTTP API: the public register, login and
// redirect endpoints and the token-protected link management endpoints.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akarasev/shurl/internal/auth"
	"github.com/akarasev/shurl/internal/gzippedhttp"
	"github.com/akarasev/shurl/internal/logger"
	"github.com/akarasev/shurl/internal/models"
	"github.com/akarasev/shurl/internal/service"
)

type shortener interface {
	Register(ctx context.Context, username, password string) (string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Shorten(ctx context.Context, originalURL, ownerID string) (*models.Link, error)
	UserLinks(ctx context.Context, ownerID string) ([]models.Link, error)
	DeleteLink(ctx context.Context, linkID, callerID string) error
	Resolve(ctx context.Context, shortCode string) (string, error)
	Ping(ctx context.Context) error
	ShortURL(shortCode string) string
}

type authenticator interface {
	RequireAuth(h http.Handler) http.Handler
}

// Router holds the handler dependencies.
type Router struct {
	service  shortener
	validate *validator.Validate
}

// New builds the chi router with logging and gzip middleware applied to
// every route and the auth gate applied to the protected group.
func New(svc shortener, theAuth authenticator) *chi.Mux {
	r := &Router{
		service:  svc,
		validate: validator.New(),
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipRequest,
		gzippedhttp.GzipResponse,
	)

	router.Route("/api", func(api chi.Router) {
		api.Post("/user/register", r.PostRegister)
		api.Post("/user/login", r.PostLogin)

		api.Group(func(protected chi.Router) {
			protected.Use(theAuth.RequireAuth)
			protected.Post("/url/shorten", r.PostShorten)
			protected.Get("/url", r.GetUserURLs)
			protected.Delete("/url/{id}", r.DeleteURL)
		})
	})

	router.Get("/ping", r.GetPing)
	router.Get("/{short}", r.GetRedirectToOriginalURL)

	return router
}

// PostRegister handles POST /api/user/register.
func (r *Router) PostRegister(response http.ResponseWriter, request *http.Request) {
	var creds models.CredentialsRequest
	if err := json.NewDecoder(request.Body).Decode(&creds); err != nil {
		writeError(response, http.StatusBadRequest, "Please enter all fields")
		return
	}

	if creds.Username == "" || creds.Password == "" {
		writeError(response, http.StatusBadRequest, "Please enter all fields")
		return
	}

	token, err := r.service.Register(request.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			writeError(response, http.StatusBadRequest, "User already exists")
			return
		}

		logger.Log.Errorw("registering user", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(response, http.StatusOK, models.TokenResponse{Token: token})
}

// PostLogin handles POST /api/user/login.
func (r *Router) PostLogin(response http.ResponseWriter, request *http.Request) {
	var creds models.CredentialsRequest
	if err := json.NewDecoder(request.Body).Decode(&creds); err != nil {
		writeError(response, http.StatusBadRequest, "Please enter all fields")
		return
	}

	if creds.Username == "" || creds.Password == "" {
		writeError(response, http.StatusBadRequest, "Please enter all fields")
		return
	}

	token, err := r.service.Login(request.Context(), creds.Username, creds.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(response, http.StatusBadRequest, "User does not exist")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(response, http.StatusBadRequest, "Invalid credentials")
		default:
			logger.Log.Errorw("logging user in", zap.Error(err))
			writeError(response, http.StatusInternalServerError, "Server error")
		}
		return
	}

	writeJSON(response, http.StatusOK, models.TokenResponse{Token: token})
}

// PostShorten handles POST /api/url/shorten.
func (r *Router) PostShorten(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeError(response, http.StatusUnauthorized, "Authorization denied")
		return
	}

	var req models.ShortenRequest
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		writeError(response, http.StatusBadRequest, "Invalid URL")
		return
	}

	if err := r.validate.Struct(req); err != nil {
		writeError(response, http.StatusBadRequest, "Invalid URL")
		return
	}

	link, err := r.service.Shorten(request.Context(), req.OriginalURL, userID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidURL) {
			writeError(response, http.StatusBadRequest, "Invalid URL")
			return
		}

		logger.Log.Errorw("shortening URL", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(response, http.StatusOK, models.ShortenResponse{
		ShortURL: r.service.ShortURL(link.ShortCode),
	})
}

// GetUserURLs handles GET /api/url.
func (r *Router) GetUserURLs(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeError(response, http.StatusUnauthorized, "Authorization denied")
		return
	}

	links, err := r.service.UserLinks(request.Context(), userID)
	if err != nil {
		logger.Log.Errorw("listing user links", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(response, http.StatusOK, links)
}

// DeleteURL handles DELETE /api/url/{id}.
func (r *Router) DeleteURL(response http.ResponseWriter, request *http.Request) {
	userID, ok := auth.UserIDFromContext(request.Context())
	if !ok {
		writeError(response, http.StatusUnauthorized, "Authorization denied")
		return
	}

	linkID := chi.URLParam(request, "id")

	err := r.service.DeleteLink(request.Context(), linkID, userID)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			writeError(response, http.StatusNotFound, "URL not found")
			return
		}

		logger.Log.Errorw("deleting link", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(response, http.StatusOK, models.MessageResponse{Msg: "URL deleted successfully"})
}

// GetRedirectToOriginalURL handles GET /{short}.
func (r *Router) GetRedirectToOriginalURL(response http.ResponseWriter, request *http.Request) {
	shortCode := chi.URLParam(request, "short")

	originalURL, err := r.service.Resolve(request.Context(), shortCode)
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) {
			writeError(response, http.StatusNotFound, "URL not found")
			return
		}

		logger.Log.Errorw("resolving short code", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Server error")
		return
	}

	http.Redirect(response, request, originalURL, http.StatusTemporaryRedirect)
}

// GetPing handles GET /ping and reports storage health.
func (r *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := r.service.Ping(request.Context()); err != nil {
		logger.Log.Errorw("pinging storage", zap.Error(err))
		writeError(response, http.StatusInternalServerError, "Server error")
		return
	}

	response.WriteHeader(http.StatusOK)
}

func writeJSON(response http.ResponseWriter, status int, body interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)
	if err := json.NewEncoder(response).Encode(body); err != nil {
		logger.Log.Errorw("encoding response", zap.Error(err))
	}
}

func writeError(response http.ResponseWriter, status int, msg string) {
	writeJSON(response, status, models.ErrorResponse{Msg: msg})
}
