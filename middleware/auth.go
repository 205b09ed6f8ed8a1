package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Dosada05/courtsched/models"
	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const (
	userContextKey       contextKey = "user"
	tokenContextKey      contextKey = "token"
	queryTokenContextKey contextKey = "query_token"
)

var errMissingToken = errors.New("missing bearer token")

// Authenticate verifies an HS256 bearer token from the Authorization header and stores its
// claims and raw value in the context.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return authenticate(secret, bearerToken)
}

// AuthenticateWebSocket is Authenticate for websocket upgrades. Browsers cannot set headers
// on an upgrade, so a ?token= query parameter is accepted when the header is absent.
func AuthenticateWebSocket(secret string) func(http.Handler) http.Handler {
	return authenticate(secret, func(r *http.Request) (string, error) {
		if r.Header.Get("Authorization") == "" {
			if t := queryToken(r); t != "" {
				return t, nil
			}
		}
		return bearerToken(r)
	})
}

// StashQueryToken removes ?token= from the request URL before anything logs it. The value is
// kept in the context for AuthenticateWebSocket. Install it ahead of the request logger.
func StashQueryToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if !q.Has("token") {
			next.ServeHTTP(w, r)
			return
		}
		t := q.Get("token")
		q.Del("token")
		r = r.Clone(context.WithValue(r.Context(), queryTokenContextKey, t))
		r.URL.RawQuery = q.Encode()
		r.RequestURI = r.URL.RequestURI()
		next.ServeHTTP(w, r)
	})
}

func authenticate(secret string, extract func(*http.Request) (string, error)) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := extract(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			claims := jwt.MapClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			ctx = context.WithValue(ctx, tokenContextKey, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Authorize lets the request through only for the listed roles. It must run after Authenticate.
func Authorize(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := GetUserRoleFromContext(r.Context())
			if err != nil {
				writeError(w, http.StatusUnauthorized, "failed to identify current user role")
				return
			}
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "operation not allowed for the current user")
		})
	}
}

// GetTokenFromContext returns the raw bearer token accepted by Authenticate.
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok && token != ""
}

// WithClaims is used by tests and internal callers to fake an authenticated request.
func WithClaims(ctx context.Context, claims jwt.MapClaims, token string) context.Context {
	ctx = context.WithValue(ctx, userContextKey, claims)
	return context.WithValue(ctx, tokenContextKey, token)
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("authorization header must be 'Bearer <token>'")
	}
	return strings.TrimSpace(token), nil
}

func queryToken(r *http.Request) string {
	if t, ok := r.Context().Value(queryTokenContextKey).(string); ok && t != "" {
		return t
	}
	return r.URL.Query().Get("token")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
