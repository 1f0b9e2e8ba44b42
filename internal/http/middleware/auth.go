package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"practice-api/internal/http/respond"
	"practice-api/internal/models"
)

type TokenVerifier interface {
	Verify(token string) (*models.Claims, error)
}

type claimsKey struct{}

func WithClaims(ctx context.Context, c *models.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*models.Claims)
	return c, ok && c != nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Authenticate requires a valid bearer token and stores its claims in the
// request context. A missing token is 401, a bad or expired one 403.
func Authenticate(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				log.Printf("AUTH_DENIED | ip=%s path=%s reason=missing_token", clientIP(r), r.URL.Path)
				respond.Error(w, http.StatusUnauthorized, "Access token required")
				return
			}

			claims, err := v.Verify(token)
			if err != nil {
				log.Printf("AUTH_DENIED | ip=%s path=%s reason=invalid_token", clientIP(r), r.URL.Path)
				respond.Error(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole must be mounted after Authenticate.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "Access token required")
				return
			}

			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Printf("AUTH_DENIED | user=%s role=%s path=%s reason=insufficient_role", claims.ID, claims.Role, r.URL.Path)
			respond.Error(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}
