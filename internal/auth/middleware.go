package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"fsm-backend/internal/models"
)

type contextKey string

const identityKey contextKey = "fsm_identity"

var (
	// ErrUnauthorized covers every credential fault: bad or expired token,
	// missing subject, unknown or inactive user. One error so callers cannot
	// tell the causes apart.
	ErrUnauthorized = errors.New("could not validate credentials")

	// ErrStoreUnavailable is an infrastructure fault, not a credential fault.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// UserStore is the slice of storage the auth package needs.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
}

// Authenticator resolves bearer tokens into authenticated identities. The
// identity is rebuilt from a live store read on every request, never cached.
type Authenticator struct {
	users  UserStore
	tokens *TokenManager
}

func NewAuthenticator(users UserStore, tokens *TokenManager) *Authenticator {
	return &Authenticator{users: users, tokens: tokens}
}

// Resolve decodes the token, re-reads the user record and returns the
// public identity. The password hash never leaves this function.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*models.PublicUser, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	user, err := a.users.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, ErrStoreUnavailable
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive {
		return nil, ErrUnauthorized
	}

	return user.Public(), nil
}

// Middleware gates a route on a valid bearer token. Authentication is
// attempted once per request; rejections short-circuit with a generic body.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			unauthorized(w)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			unauthorized(w)
			return
		}

		identity, err := a.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrStoreUnavailable) {
				http.Error(w, "Database unavailable", http.StatusInternalServerError)
				return
			}
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func IdentityFromContext(ctx context.Context) (*models.PublicUser, bool) {
	identity, ok := ctx.Value(identityKey).(*models.PublicUser)
	return identity, ok
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "Could not validate credentials", http.StatusUnauthorized)
}
