// internal/app/system/auth/auth.go
//
// Package auth authenticates requests. Clients present a bearer token in
// the Authorization header; the middleware validates it, loads the user it
// names, and puts the user in the request context for handlers downstream.
// Inactive and since-deleted users fail authentication even with a valid
// token.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	userstore "github.com/dalemusser/memberhub/internal/app/store/users"
	"github.com/dalemusser/memberhub/internal/app/system/credentials"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ErrUnauthenticated is returned by helpers that need a signed-in user
// when the request carries none.
var ErrUnauthenticated = errors.New("not signed in")

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// Middleware validates bearer tokens and resolves them to users.
type Middleware struct {
	sessions *credentials.Sessions
	users    *userstore.Store
	log      *zap.Logger
}

func NewMiddleware(sessions *credentials.Sessions, users *userstore.Store, log *zap.Logger) *Middleware {
	return &Middleware{sessions: sessions, users: users, log: log}
}

// CurrentUser returns the authenticated user from the request context.
func CurrentUser(r *http.Request) (*models.User, bool) {
	u, ok := r.Context().Value(currentUserKey).(*models.User)
	return u, ok
}

// CurrentUserID returns the authenticated user's id, or ErrUnauthenticated.
func CurrentUserID(r *http.Request) (primitive.ObjectID, error) {
	u, ok := CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, ErrUnauthenticated
	}
	return u.ID, nil
}

// LoadUser is optional authentication: a valid token puts the user in
// context, anything else passes the request through anonymous. Routes that
// need a user add RequireSignedIn after it.
func (m *Middleware) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := m.sessions.Validate(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		u, err := m.users.GetByID(r.Context(), id)
		if err != nil {
			if !errors.Is(err, userstore.ErrNotFound) {
				m.log.Error("load user for token", zap.Error(err))
			}
			next.ServeHTTP(w, r)
			return
		}
		if !u.IsActive() {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, WithUser(r, u))
	})
}

// RequireSignedIn rejects requests with no authenticated user in context.
// It must run after LoadUser.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser returns a request whose context carries u as the current user.
// Handlers use it indirectly through LoadUser; tests use it directly.
func WithUser(r *http.Request, u *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
