/*Package access provides utilities for access control
 */
package access

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"

	"github.com/relabs-tech/jobly/core/errs"
	"github.com/relabs-tech/jobly/core/logger"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

// the predefined context key
const (
	contextKeyAuthorization contextKey = "_authorization_"
)

/*Authorization is a context object which stores the authenticated caller's
claims.

Authorizations are added to a request context by the JWT middleware with

  ctx = auth.ContextWithAuthorization(ctx)

and retrieved in handlers with

  auth := AuthorizationFromContext(ctx)

A nil authorization means the request is anonymous.
*/
type Authorization struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// ContextWithAuthorization returns a new context with this authorization added to it
func (a *Authorization) ContextWithAuthorization(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKeyAuthorization, a)
}

// AuthorizationFromContext retrieves an authorization from the context
func AuthorizationFromContext(ctx context.Context) *Authorization {
	a, ok := ctx.Value(contextKeyAuthorization).(*Authorization)
	if ok {
		return a
	}
	return nil
}

type tokenClaims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// NewToken signs the authorization's claims into a HS256 token. This is
// what /auth/token and /auth/register hand back to the caller.
func NewToken(auth *Authorization, secret string) (string, error) {
	claims := tokenClaims{
		Username: auth.Username,
		IsAdmin:  auth.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature of tokenString and returns the
// authorization stored inside.
func ParseToken(tokenString, secret string) (*Authorization, error) {
	claims := tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errs.New(errs.KindUnauthorized, "invalid token")
	}
	return &Authorization{Username: claims.Username, IsAdmin: claims.IsAdmin}, nil
}

// NewJwtMiddleware returns a middleware handler to validate JWT bearer
// token, accepted as "Authorization: Bearer" header.
//
// Requests without a token pass through anonymously; the per-route guards
// decide whether that is acceptable. A token that is present but invalid
// ends the request with http.StatusUnauthorized.
func NewJwtMiddleware(secret string) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth := AuthorizationFromContext(r.Context()); auth != nil { // already authorized?
				h.ServeHTTP(w, r)
				return
			}

			tokenString := ""
			bearer := r.Header.Get("Authorization")
			if len(bearer) > 0 && bearer != "null" {
				if len(bearer) >= 8 && strings.ToLower(bearer[:7]) == "bearer " {
					tokenString = bearer[7:]
				} else {
					tokenString = bearer
				}
			}
			if len(tokenString) == 0 {
				h.ServeHTTP(w, r) // no token no auth, moving on
				return
			}

			auth, err := ParseToken(tokenString, secret)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := auth.ContextWithAuthorization(r.Context())
			ctx, _ = logger.ContextWithLoggerIdentity(ctx, auth.Username)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EnsureLoggedIn fails with an unauthorized error unless the context
// carries an authorization.
func EnsureLoggedIn(ctx context.Context) error {
	if AuthorizationFromContext(ctx) == nil {
		return errs.New(errs.KindUnauthorized, "authentication required")
	}
	return nil
}

// EnsureAdmin fails with an unauthorized error unless the caller is an admin.
func EnsureAdmin(ctx context.Context) error {
	auth := AuthorizationFromContext(ctx)
	if auth == nil || !auth.IsAdmin {
		return errs.New(errs.KindUnauthorized, "admin privileges required")
	}
	return nil
}

// EnsureSelfOrAdmin fails with an unauthorized error unless the caller is
// an admin or the user named by username.
func EnsureSelfOrAdmin(ctx context.Context, username string) error {
	auth := AuthorizationFromContext(ctx)
	if auth == nil || (!auth.IsAdmin && auth.Username != username) {
		return errs.New(errs.KindUnauthorized, "unauthorized")
	}
	return nil
}
