package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/templui/drive/internal/ctxkeys"
	"github.com/templui/drive/internal/handler"
	"github.com/templui/drive/internal/model"
	"github.com/templui/drive/internal/service"
)

// Authenticator resolves a bearer token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// AuthMiddleware reads an "Authorization: Bearer" token and adds the user to
// the context if it is valid. Requests without a valid token continue
// anonymously; RequireAuth decides whether that is allowed.
func AuthMiddleware(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := auth.Authenticate(r.Context(), token)
			if errors.Is(err, service.ErrUnauthorized) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				handler.Error(w, r, err)
				return
			}

			ctx := ctxkeys.WithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth answers 401 UNAUTHORIZED unless a principal is present
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			handler.Error(w, r, service.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
