/**
 * @description
 * Session middleware. SessionGuard applies the browser-navigation rules:
 * unauthenticated users are redirected away from protected pages,
 * authenticated users away from the signin/signup pages, and an invalid
 * cookie is always cleared. RequireSession guards the JSON API with 401s
 * and injects the verified claims into the request context.
 */
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the HTTP-only cookie holding the session JWT.
const SessionCookieName = "accessToken"

// Page paths gated by SessionGuard. Protected patterns match the path
// itself and any sub-path; auth pages match exactly.
var (
	protectedPatterns = []string{
		"/dashboard",
		"/chat",
		"/payment",
		"/zone",
		"/trader",
		"/update-password",
	}
	authPages = []string{"/signin", "/signup"}
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	roleKey   contextKey = "role"
)

// SessionClaims are the verified claims of a session token.
type SessionClaims struct {
	UserID string
	Role   string
}

// parseSessionToken verifies an HS256 session JWT, including expiry, and
// extracts the claims.
func parseSessionToken(secret []byte, tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &SessionClaims{UserID: sub, Role: role}, nil
}

func isProtectedPath(path string) bool {
	for _, p := range protectedPatterns {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isAuthPage(path string) bool {
	for _, p := range authPages {
		if path == p {
			return true
		}
	}
	return false
}

// isNavigation reports whether the request is a browser page navigation, as
// opposed to an API or websocket call. Only navigations get redirect
// semantics; everything else falls through to RequireSession.
func isNavigation(r *http.Request) bool {
	return r.Method == http.MethodGet && strings.Contains(r.Header.Get("Accept"), "text/html")
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// SessionGuard gates page navigations before any content is served.
func SessionGuard(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isNavigation(r) {
				next.ServeHTTP(w, r)
				return
			}

			path := r.URL.Path
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				if isProtectedPath(path) {
					http.Redirect(w, r, "/signin", http.StatusSeeOther)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := parseSessionToken(key, cookie.Value)
			if err != nil {
				// Stale client state: drop the cookie everywhere. Staying on
				// an auth page avoids a redirect loop back to /signin.
				clearSessionCookie(w)
				if isAuthPage(path) {
					next.ServeHTTP(w, r)
					return
				}
				http.Redirect(w, r, "/signin", http.StatusSeeOther)
				return
			}

			if isAuthPage(path) {
				http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), claims)))
		})
	}
}

// RequireSession guards API routes. The token is read from the session
// cookie, falling back to a bearer Authorization header.
func RequireSession(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := ""
			if cookie, err := r.Cookie(SessionCookieName); err == nil {
				tokenString = cookie.Value
			}
			if tokenString == "" {
				authHeader := r.Header.Get("Authorization")
				if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
					tokenString = parts[1]
				}
			}
			if tokenString == "" {
				respondError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := parseSessionToken(key, tokenString)
			if err != nil {
				clearSessionCookie(w)
				respondError(w, http.StatusUnauthorized, "Session expired or invalid")
				return
			}

			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), claims)))
		})
	}
}

func withSession(ctx context.Context, claims *SessionClaims) context.Context {
	ctx = context.WithValue(ctx, userIDKey, claims.UserID)
	return context.WithValue(ctx, roleKey, claims.Role)
}

// UserIDFromContext returns the authenticated user id, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// RoleFromContext returns the authenticated user's role, if present.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok && role != ""
}
